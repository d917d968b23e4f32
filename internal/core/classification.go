package core

import "context"

// NarrativeClassification is the bounded interpretation of one interaction.
// It is never persisted.
type NarrativeClassification struct {
	Observation     string   `json:"observation"`
	UserState       string   `json:"user_state,omitempty"`
	SceneDetails    string   `json:"scene_details,omitempty"`
	Importance      float64  `json:"importance"`
	EmotionScore    float64  `json:"emotion_score"`
	FocusArea       string   `json:"focus_area"`
	InteractionType string   `json:"interaction_type"`
	SuggestedLinks  []string `json:"suggested_links"`
}

type ClassificationService interface {
	Classify(ctx context.Context, text, userContext string) NarrativeClassification
	ClassifyBatch(ctx context.Context, texts []string) []NarrativeClassification
	Similarity(ctx context.Context, a, b string) float64
}

// PromptTemplate holds the six template slots used by prompt assembly.
type PromptTemplate struct {
	System            string
	Context           string
	MemoryPrefix      string
	MemorySuffix      string
	PersonalityPrefix string
	PersonalitySuffix string
}

// Prompt is the ordered [system, context, user] triple.
type Prompt [3]string

func (p Prompt) System() string  { return p[0] }
func (p Prompt) Context() string { return p[1] }
func (p Prompt) User() string    { return p[2] }
