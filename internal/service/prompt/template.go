package prompt

import "github.com/sandevgo/glimpse/internal/core"

const (
	PlaceholderPersonality = "{{personality}}"
	PlaceholderContext     = "{{context}}"
)

// DefaultTemplate is used unless the caller supplies a whole template of its own.
func DefaultTemplate() core.PromptTemplate {
	return core.PromptTemplate{
		System: "You are an AI companion with a persistent memory of past conversations.\n\n" +
			"Your personality:\n" + PlaceholderPersonality + "\n\n" +
			"Current context: " + PlaceholderContext + "\n\n" +
			"Stay in character, draw on relevant memories when they help, and never invent memories you do not have.",
		Context:           "Conversation context: " + PlaceholderContext,
		MemoryPrefix:      "\n\nRelevant memories:\n",
		MemorySuffix:      "\n",
		PersonalityPrefix: "\n\nPersonality reminder:\n",
		PersonalitySuffix: "\n",
	}
}
