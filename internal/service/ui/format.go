package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/glimpse/internal/core"
)

const previewLen = 60

// MemoryBadge is the one-line note printed after a remembered chat turn.
func MemoryBadge(m core.Memory) string {
	focus := m.Context.FocusArea
	if focus == "" {
		focus = "general"
	}
	return fmt.Sprintf("[remembered %s · importance %.2f · emotion %+.2f · %s]",
		shortID(m.ID), m.Importance, m.EmotionScore, focus)
}

// MemoryRow renders a memory for list output.
func MemoryRow(m core.Memory) string {
	emotion := fmt.Sprintf("%+.2f", m.EmotionScore)
	switch {
	case m.EmotionScore > 0:
		emotion = PositiveStyle.Render(emotion)
	case m.EmotionScore < 0:
		emotion = NegativeStyle.Render(emotion)
	}

	return fmt.Sprintf("%s  %s  %.2f  %s  %s%s",
		UsageStyle.Render(shortID(m.ID)),
		DescStyle.Render(m.CreatedAt.Local().Format(time.DateOnly)),
		m.Importance,
		emotion,
		Preview(m.Text),
		links(m.LinkedMemories),
	)
}

// MemoryDetail renders every field of a memory.
func MemoryDetail(m core.Memory) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.ID))
	b.WriteString("\n")

	field := func(name, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%s %s\n", FlagStyle.Render(fmt.Sprintf("%-14s", name+":")), value)
	}
	field("ref", m.GlimpseRef)
	field("text", m.Text)
	field("observation", m.Observation)
	field("importance", fmt.Sprintf("%.2f", m.Importance))
	field("emotion", fmt.Sprintf("%+.2f", m.EmotionScore))
	field("focus", m.Context.FocusArea)
	field("interaction", m.Context.InteractionType)
	field("user state", m.Context.UserState)
	field("scene", m.Context.SceneDetails)
	field("created", m.CreatedAt.Local().Format(time.DateTime))
	if m.LastAccessed != nil {
		field("accessed", m.LastAccessed.Local().Format(time.DateTime))
	}
	field("links", strings.Join(m.LinkedMemories, ", "))
	for i, u := range m.Conversation.UserMessages {
		field(fmt.Sprintf("user[%d]", i), u)
	}
	for i, a := range m.Conversation.AgentMessages {
		field(fmt.Sprintf("agent[%d]", i), a)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Preview flattens text to one line and cuts it at a rune boundary.
func Preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= previewLen {
		return text
	}
	return string(runes[:previewLen-1]) + "…"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func links(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return DescStyle.Render(fmt.Sprintf("  (%d links)", len(ids)))
}
