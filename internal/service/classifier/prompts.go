package classifier

import "fmt"

const classifyInstruction = `Analyze the interaction below and describe it as a memory.
Respond with a single JSON object and nothing else. Fields:
- "observation": one sentence describing what happened, written as a narrator
- "user_state": the user's apparent mood or condition
- "scene_details": notable details of the setting or situation
- "importance": number from 0 to 1, how worth remembering this is
- "emotion_score": number from -1 (very negative) to 1 (very positive)
- "focus_area": short topic label, e.g. "work", "family", "health"
- "interaction_type": e.g. "question", "story", "small_talk", "request"
- "suggested_links": array of memory ids this relates to, or []

`

const similarityInstruction = `Rate how semantically similar the two texts are.
Respond with only a number between 0 and 1, where 0 is unrelated and 1 is identical in meaning.

Text A: %s
Text B: %s`

func buildClassifyPrompt(text, userContext string) string {
	if userContext == "" {
		return classifyInstruction + fmt.Sprintf("Interaction:\n%s", text)
	}
	return classifyInstruction + fmt.Sprintf("Interaction:\nUser: %s\nAgent: %s", userContext, text)
}

func buildSimilarityPrompt(a, b string) string {
	return fmt.Sprintf(similarityInstruction, a, b)
}
