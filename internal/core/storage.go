package core

import "context"

// MemoryRepository persists the full memory collection. Save replaces everything.
type MemoryRepository interface {
	LoadMemories(ctx context.Context) ([]Memory, error)
	SaveMemories(ctx context.Context, memories []Memory) error
}

// PersonalityRepository persists a single profile.
// LoadPersonality returns nil and no error when nothing was saved yet.
type PersonalityRepository interface {
	LoadPersonality(ctx context.Context) (*AgentPersonality, error)
	SavePersonality(ctx context.Context, p AgentPersonality) error
}

type SnapshotRepository interface {
	MemoryRepository
	PersonalityRepository
	Close() error
}
