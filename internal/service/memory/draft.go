package memory

import "github.com/sandevgo/glimpse/internal/core"

// DraftFromClassification turns a normalized classification into a memory draft.
// Suggested links become draft links; the graph drops the ones that don't resolve.
func DraftFromClassification(text string, conv core.Conversation, c core.NarrativeClassification) core.MemoryDraft {
	return core.MemoryDraft{
		Text:         text,
		Observation:  c.Observation,
		Conversation: &conv,
		Context: core.MemoryContext{
			FocusArea:       c.FocusArea,
			UserState:       c.UserState,
			SceneDetails:    c.SceneDetails,
			InteractionType: c.InteractionType,
		},
		Importance:     c.Importance,
		EmotionScore:   c.EmotionScore,
		LinkedMemories: append([]string{}, c.SuggestedLinks...),
	}
}
