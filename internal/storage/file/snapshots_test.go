package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandevgo/glimpse/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshots_Missing(t *testing.T) {
	s, err := NewSnapshots(filepath.Join(t.TempDir(), "snapshots"), "default")
	require.NoError(t, err)
	ctx := context.Background()

	memories, err := s.LoadMemories(ctx)
	require.NoError(t, err)
	assert.Nil(t, memories)

	p, err := s.LoadPersonality(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSnapshots_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSnapshots(dir, "alice")
	require.NoError(t, err)
	ctx := context.Background()

	memories := []core.Memory{{
		ID:             "a",
		GlimpseRef:     "glimpse_a",
		Text:           "hello",
		Conversation:   core.Conversation{AgentMessages: []string{}, UserMessages: []string{"hello"}},
		LinkedMemories: []string{},
		Importance:     0.4,
		CreatedAt:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Metadata:       map[string]any{"source": "cli"},
	}}
	require.NoError(t, s.SaveMemories(ctx, memories))

	personality := core.AgentPersonality{ID: "agent-default", Name: "Glimpse", Traits: map[string]float64{"humor": 0.5}}
	require.NoError(t, s.SavePersonality(ctx, personality))

	gotMemories, err := s.LoadMemories(ctx)
	require.NoError(t, err)
	assert.Equal(t, memories, gotMemories)

	gotPersonality, err := s.LoadPersonality(ctx)
	require.NoError(t, err)
	require.NotNil(t, gotPersonality)
	assert.Equal(t, personality, *gotPersonality)

	assert.FileExists(t, filepath.Join(dir, "memories_alice.json"))
	assert.FileExists(t, filepath.Join(dir, "personality_alice.json"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp files must not be left behind")
}

func TestSnapshots_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "memories_default.json"), []byte("{not json"), 0644))

	s, err := NewSnapshots(dir, "default")
	require.NoError(t, err)

	_, err = s.LoadMemories(context.Background())
	assert.ErrorContains(t, err, "memories_default.json")
}

func TestSnapshots_SaveNilWritesEmptyArray(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSnapshots(dir, "default")
	require.NoError(t, err)

	require.NoError(t, s.SaveMemories(context.Background(), nil))

	data, err := os.ReadFile(filepath.Join(dir, "memories_default.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
