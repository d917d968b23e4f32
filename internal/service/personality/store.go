package personality

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/sandevgo/glimpse/internal/core"
	"github.com/sandevgo/glimpse/pkg/log"
)

// Default is the profile used when nothing has been persisted yet.
func Default() core.AgentPersonality {
	return core.AgentPersonality{
		ID:          "agent-default",
		Name:        core.GlimpseName,
		Description: "A thoughtful companion that remembers what matters to you.",
		Traits: map[string]float64{
			"empathy":   0.8,
			"humor":     0.5,
			"curiosity": 0.7,
		},
		Values: []string{"honesty", "kindness", "growth"},
		Communication: core.Communication{
			Style:    "conversational",
			Tone:     "warm",
			Patterns: []string{},
		},
	}
}

// Store owns the single agent profile. Every mutation persists the whole profile;
// a failed write leaves the previous profile in place.
type Store struct {
	repo core.PersonalityRepository

	mu      sync.Mutex
	current core.AgentPersonality
	loaded  bool
}

func NewStore(repo core.PersonalityRepository) *Store {
	return &Store{repo: repo}
}

// Get returns the profile, initialising it to Default on first access.
func (s *Store) Get(ctx context.Context) (core.AgentPersonality, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx); err != nil {
		return core.AgentPersonality{}, err
	}
	return s.current.Clone(), nil
}

// Update deep-merges patch into the profile. The id is never changed.
func (s *Store) Update(ctx context.Context, patch core.PersonalityPatch) (core.AgentPersonality, error) {
	for name, v := range patch.Traits {
		if err := validateTrait(name, v); err != nil {
			return core.AgentPersonality{}, err
		}
	}

	var out core.AgentPersonality
	err := s.mutate(ctx, "update", func(p *core.AgentPersonality) {
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		for name, v := range patch.Traits {
			p.Traits[name] = v
		}
		if patch.Values != nil {
			p.Values = append([]string{}, patch.Values...)
		}
		if patch.Communication != nil {
			mergeCommunication(&p.Communication, *patch.Communication)
		}
		out = p.Clone()
	})
	return out, err
}

// UpdateTrait sets a single trait. Values outside [0,1] are rejected, not clamped.
func (s *Store) UpdateTrait(ctx context.Context, name string, value float64) error {
	if err := validateTrait(name, value); err != nil {
		return err
	}
	return s.mutate(ctx, "update trait", func(p *core.AgentPersonality) {
		p.Traits[name] = value
	})
}

func (s *Store) AddValue(ctx context.Context, value string) error {
	return s.mutate(ctx, "add value", func(p *core.AgentPersonality) {
		if !slices.Contains(p.Values, value) {
			p.Values = append(p.Values, value)
		}
	})
}

func (s *Store) RemoveValue(ctx context.Context, value string) error {
	return s.mutate(ctx, "remove value", func(p *core.AgentPersonality) {
		p.Values = slices.DeleteFunc(p.Values, func(v string) bool { return v == value })
	})
}

// UpdateCommunicationStyle shallow-merges patch into the communication descriptor.
func (s *Store) UpdateCommunicationStyle(ctx context.Context, patch core.CommunicationPatch) error {
	return s.mutate(ctx, "update communication", func(p *core.AgentPersonality) {
		mergeCommunication(&p.Communication, patch)
	})
}

func (s *Store) mutate(ctx context.Context, op string, apply func(p *core.AgentPersonality)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx); err != nil {
		return err
	}

	next := s.current.Clone()
	apply(&next)
	next.ID = s.current.ID

	if err := s.repo.SavePersonality(ctx, next); err != nil {
		return fmt.Errorf("%s: persist personality: %w", op, err)
	}
	s.current = next

	log.Component(ctx, "personality").Debug().Str("op", op).Msg("personality updated")
	return nil
}

func (s *Store) ensureLoadedLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	stored, err := s.repo.LoadPersonality(ctx)
	if err != nil {
		return fmt.Errorf("load personality: %w", err)
	}

	if stored == nil {
		s.current = Default()
		log.Component(ctx, "personality").Debug().Msg("no stored personality, using default")
	} else {
		s.current = stored.Clone()
		if s.current.ID == "" {
			s.current.ID = Default().ID
		}
		// Out-of-range traits never reach a prompt; the next save drops them for good.
		for name, v := range s.current.Traits {
			if err := validateTrait(name, v); err != nil {
				log.Component(ctx, "personality").Warn().Err(err).Msg("dropping stored trait")
				delete(s.current.Traits, name)
			}
		}
	}
	s.loaded = true
	return nil
}

func validateTrait(name string, v float64) error {
	if name == "" {
		return fmt.Errorf("trait name is empty: %w", core.ErrValidation)
	}
	if v != v || v < 0 || v > 1 {
		return fmt.Errorf("trait %q value %v outside [0,1]: %w", name, v, core.ErrValidation)
	}
	return nil
}

func mergeCommunication(c *core.Communication, patch core.CommunicationPatch) {
	if patch.Style != nil {
		c.Style = *patch.Style
	}
	if patch.Tone != nil {
		c.Tone = *patch.Tone
	}
	if patch.Patterns != nil {
		c.Patterns = append([]string{}, patch.Patterns...)
	}
}
