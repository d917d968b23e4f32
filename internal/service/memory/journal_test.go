package memory

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sandevgo/glimpse/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) count(s string) int {
	return strings.Count(b.String(), s)
}

func subscribers(g *Graph) int {
	g.subsMu.Lock()
	defer g.subsMu.Unlock()
	return len(g.subs)
}

func TestJournal_LogsMutations(t *testing.T) {
	g, _ := newTestGraph(t)

	var buf syncBuffer
	ctx := zerolog.New(&buf).WithContext(context.Background())

	j := NewJournal(g, 8)
	done := make(chan error, 1)
	go func() { done <- j.Start(ctx) }()

	require.Eventually(t, func() bool { return subscribers(g) == 1 }, time.Second, 5*time.Millisecond)

	a, err := g.Create(ctx, core.MemoryDraft{Text: "first"})
	require.NoError(t, err)
	b, err := g.Create(ctx, core.MemoryDraft{Text: "second"})
	require.NoError(t, err)
	require.NoError(t, g.Link(ctx, a.ID, b.ID))

	require.Eventually(t, func() bool { return buf.count("memory changed") == 3 }, time.Second, 5*time.Millisecond)

	require.NoError(t, j.Shutdown(ctx))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("journal did not stop")
	}

	out := buf.String()
	assert.Contains(t, out, `"event":"create"`)
	assert.Contains(t, out, `"event":"link"`)
	assert.Contains(t, out, `"linked_to":"`+b.ID+`"`)
	assert.Contains(t, out, `"component":"memory_journal"`)
	assert.Equal(t, 0, subscribers(g))
}

func TestJournal_StopsOnContext(t *testing.T) {
	g, _ := newTestGraph(t)
	ctx, cancel := context.WithCancel(context.Background())

	j := NewJournal(g, 0)
	done := make(chan error, 1)
	go func() { done <- j.Start(ctx) }()

	require.Eventually(t, func() bool { return subscribers(g) == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("journal did not stop")
	}
	assert.Equal(t, 0, subscribers(g))
}
