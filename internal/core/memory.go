package core

import (
	"context"
	"time"
)

// Memory is a single remembered interaction.
// ID, GlimpseRef and CreatedAt are assigned by the graph store and never change.
type Memory struct {
	ID             string         `json:"id"`
	GlimpseRef     string         `json:"glimpse_ref"`
	Text           string         `json:"text"`
	Observation    string         `json:"observation"`
	Conversation   Conversation   `json:"conversation"`
	Context        MemoryContext  `json:"context"`
	Importance     float64        `json:"importance"`
	EmotionScore   float64        `json:"emotion_score"`
	LinkedMemories []string       `json:"linked_memories"`
	CreatedAt      time.Time      `json:"created_at"`
	LastAccessed   *time.Time     `json:"last_accessed,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

type Conversation struct {
	AgentMessages []string `json:"agent_messages"`
	UserMessages  []string `json:"user_messages"`
}

type MemoryContext struct {
	FocusArea       string         `json:"focus_area,omitempty"`
	UserState       string         `json:"user_state,omitempty"`
	SceneDetails    string         `json:"scene_details,omitempty"`
	InteractionType string         `json:"interaction_type,omitempty"`
	Extra           map[string]any `json:"extra,omitempty"`
}

// HasLink reports whether id is in the memory's link set.
func (m Memory) HasLink(id string) bool {
	for _, l := range m.LinkedMemories {
		if l == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can't mutate store-owned slices and maps.
func (m Memory) Clone() Memory {
	c := m
	c.Conversation = Conversation{
		AgentMessages: append([]string{}, m.Conversation.AgentMessages...),
		UserMessages:  append([]string{}, m.Conversation.UserMessages...),
	}
	c.LinkedMemories = append([]string{}, m.LinkedMemories...)
	if m.LastAccessed != nil {
		t := *m.LastAccessed
		c.LastAccessed = &t
	}
	c.Metadata = cloneMap(m.Metadata)
	c.Context.Extra = cloneMap(m.Context.Extra)
	return c
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// MemoryDraft is the caller-supplied part of a new memory.
type MemoryDraft struct {
	Text           string
	Observation    string
	Conversation   *Conversation
	Context        MemoryContext
	Importance     float64
	EmotionScore   float64
	LinkedMemories []string
	Metadata       map[string]any
}

// MemoryPatch lists the mutable fields of a memory. Nil fields are left untouched.
// Identity fields and the link set are not patchable.
type MemoryPatch struct {
	Text         *string
	Observation  *string
	Conversation *Conversation
	Context      *MemoryContext
	Importance   *float64
	EmotionScore *float64
	LastAccessed *time.Time
	Metadata     map[string]any
}

// SearchCriteria filters and limits a memory search. Zero values disable a predicate.
type SearchCriteria struct {
	Query               string
	ImportanceThreshold *float64
	EmotionThreshold    *float64
	FocusArea           string
	StartDate           *time.Time
	EndDate             *time.Time
	Limit               int

	// Personality overrides the stored profile during prompt assembly.
	Personality *AgentPersonality
}

// Edge is a derived, non-persisted link between two memories.
type Edge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

type MemoryEventType string

const (
	MemoryEventCreate MemoryEventType = "create"
	MemoryEventUpdate MemoryEventType = "update"
	MemoryEventDelete MemoryEventType = "delete"
	MemoryEventLink   MemoryEventType = "link"
)

// MemoryEvent is emitted after every successful mutation.
type MemoryEvent struct {
	Type     MemoryEventType `json:"type"`
	Memory   Memory          `json:"memory"`
	LinkedTo string          `json:"linked_to,omitempty"`
}

// MemoryService is the memory capability exposed to collaborators.
type MemoryService interface {
	Create(ctx context.Context, draft MemoryDraft) (Memory, error)
	Update(ctx context.Context, id string, patch MemoryPatch) (Memory, error)
	Delete(ctx context.Context, id string) error
	Link(ctx context.Context, sourceID, targetID string) error
	Search(ctx context.Context, criteria SearchCriteria) ([]Memory, error)
	Get(ctx context.Context, id string) (Memory, bool, error)
	GetAll(ctx context.Context) ([]Memory, error)
}

func Float(v float64) *float64 {
	return &v
}

// ClampImportance bounds v to [0,1]. NaN becomes 0.
func ClampImportance(v float64) float64 {
	return clamp(v, 0, 1)
}

// ClampEmotion bounds v to [-1,1]. NaN becomes 0.
func ClampEmotion(v float64) float64 {
	return clamp(v, -1, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v != v {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
