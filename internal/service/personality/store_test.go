package personality

import (
	"context"
	"errors"
	"testing"

	"github.com/sandevgo/glimpse/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	stored  *core.AgentPersonality
	saves   int
	loadErr error
	saveErr error
}

func (r *fakeRepo) LoadPersonality(ctx context.Context) (*core.AgentPersonality, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	if r.stored == nil {
		return nil, nil
	}
	p := r.stored.Clone()
	return &p, nil
}

func (r *fakeRepo) SavePersonality(ctx context.Context, p core.AgentPersonality) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.stored = &p
	return nil
}

func strPtr(s string) *string { return &s }

func TestStore_GetInitialisesDefault(t *testing.T) {
	repo := &fakeRepo{}
	s := NewStore(repo)

	p, err := s.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Default(), p)
	assert.Contains(t, p.Traits, "empathy")
	assert.Contains(t, p.Traits, "humor")
	assert.Contains(t, p.Traits, "curiosity")
	assert.Equal(t, 0, repo.saves)
}

func TestStore_GetLoadsPersisted(t *testing.T) {
	stored := Default()
	stored.ID = "agent-7"
	stored.Name = "Wren"
	s := NewStore(&fakeRepo{stored: &stored})

	p, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "agent-7", p.ID)
	assert.Equal(t, "Wren", p.Name)
}

func TestStore_GetDropsOutOfRangeStoredTraits(t *testing.T) {
	stored := Default()
	stored.Traits["empathy"] = 7
	stored.Traits["humor"] = -0.1
	repo := &fakeRepo{stored: &stored}
	s := NewStore(repo)

	p, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, p.Traits, "empathy")
	assert.NotContains(t, p.Traits, "humor")
	assert.Equal(t, 0.7, p.Traits["curiosity"])
	assert.Equal(t, 7.0, repo.stored.Traits["empathy"], "the stored record is not touched on read")
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore(&fakeRepo{})
	ctx := context.Background()

	p, err := s.Get(ctx)
	require.NoError(t, err)
	p.Traits["empathy"] = 0
	p.Values[0] = "tampered"

	again, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.8, again.Traits["empathy"])
	assert.Equal(t, "honesty", again.Values[0])
}

func TestStore_LoadFailure(t *testing.T) {
	loadErr := errors.New("locked")
	s := NewStore(&fakeRepo{loadErr: loadErr})

	_, err := s.Get(context.Background())
	assert.ErrorIs(t, err, loadErr)
}

func TestStore_UpdateDeepMergesAndKeepsID(t *testing.T) {
	repo := &fakeRepo{}
	s := NewStore(repo)

	p, err := s.Update(context.Background(), core.PersonalityPatch{
		Name:   strPtr("Wren"),
		Traits: map[string]float64{"patience": 0.9, "humor": 0.1},
		Communication: &core.CommunicationPatch{
			Tone: strPtr("playful"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "agent-default", p.ID)
	assert.Equal(t, "Wren", p.Name)
	assert.Equal(t, Default().Description, p.Description)
	assert.Equal(t, map[string]float64{"empathy": 0.8, "humor": 0.1, "curiosity": 0.7, "patience": 0.9}, p.Traits)
	assert.Equal(t, "conversational", p.Communication.Style)
	assert.Equal(t, "playful", p.Communication.Tone)
	assert.Equal(t, 1, repo.saves)
	assert.Equal(t, p, *repo.stored)
}

func TestStore_UpdateRejectsOutOfRangeTraits(t *testing.T) {
	repo := &fakeRepo{}
	s := NewStore(repo)

	_, err := s.Update(context.Background(), core.PersonalityPatch{
		Name:   strPtr("ignored"),
		Traits: map[string]float64{"humor": -0.1},
	})
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Equal(t, 0, repo.saves)

	p, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.GlimpseName, p.Name)
}

func TestStore_UpdateTrait(t *testing.T) {
	repo := &fakeRepo{}
	s := NewStore(repo)
	ctx := context.Background()

	require.NoError(t, s.UpdateTrait(ctx, "empathy", 1))
	require.NoError(t, s.UpdateTrait(ctx, "stubbornness", 0))

	p, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.Traits["empathy"])
	assert.Equal(t, 0.0, p.Traits["stubbornness"])
	assert.Equal(t, 2, repo.saves)
}

func TestStore_UpdateTraitOutOfRange(t *testing.T) {
	repo := &fakeRepo{}
	s := NewStore(repo)
	ctx := context.Background()

	err := s.UpdateTrait(ctx, "empathy", 1.5)
	assert.ErrorIs(t, err, core.ErrValidation)

	p, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.8, p.Traits["empathy"])
	assert.Equal(t, 0, repo.saves)
}

func TestStore_Values(t *testing.T) {
	repo := &fakeRepo{}
	s := NewStore(repo)
	ctx := context.Background()

	require.NoError(t, s.AddValue(ctx, "patience"))
	require.NoError(t, s.AddValue(ctx, "patience"))
	require.NoError(t, s.RemoveValue(ctx, "kindness"))
	require.NoError(t, s.RemoveValue(ctx, "not-there"))

	p, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"honesty", "growth", "patience"}, p.Values)
	assert.Equal(t, 4, repo.saves)
}

func TestStore_UpdateCommunicationStyle(t *testing.T) {
	s := NewStore(&fakeRepo{})
	ctx := context.Background()

	require.NoError(t, s.UpdateCommunicationStyle(ctx, core.CommunicationPatch{
		Style:    strPtr("concise"),
		Patterns: []string{"asks follow-up questions"},
	}))

	p, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "concise", p.Communication.Style)
	assert.Equal(t, "warm", p.Communication.Tone)
	assert.Equal(t, []string{"asks follow-up questions"}, p.Communication.Patterns)
}

func TestStore_SaveFailureKeepsPreviousProfile(t *testing.T) {
	saveErr := errors.New("read-only")
	repo := &fakeRepo{saveErr: saveErr}
	s := NewStore(repo)
	ctx := context.Background()

	err := s.AddValue(ctx, "courage")
	assert.ErrorIs(t, err, saveErr)

	p, err := s.Get(ctx)
	require.NoError(t, err)
	assert.NotContains(t, p.Values, "courage")
}
