package memory

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sandevgo/glimpse/internal/core"
	"github.com/sandevgo/glimpse/pkg/log"
)

// Journal writes every graph mutation to the context logger.
// It runs as a background service alongside the chat loop.
type Journal struct {
	graph  *Graph
	buffer int

	mu     sync.Mutex
	cancel func()
}

func NewJournal(graph *Graph, buffer int) *Journal {
	return &Journal{graph: graph, buffer: buffer}
}

// Start blocks until ctx is done or Shutdown is called.
func (j *Journal) Start(ctx context.Context) error {
	events, cancel := j.graph.Subscribe(j.buffer)

	j.mu.Lock()
	j.cancel = cancel
	j.mu.Unlock()
	defer cancel()

	logger := log.Component(ctx, "memory_journal")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			record(logger, ev)
		}
	}
}

func (j *Journal) Shutdown(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel != nil {
		j.cancel()
	}
	return nil
}

func record(logger *zerolog.Logger, ev core.MemoryEvent) {
	e := logger.Info().
		Str("event", string(ev.Type)).
		Str("memory_id", ev.Memory.ID).
		Str("glimpse_ref", ev.Memory.GlimpseRef)
	if ev.LinkedTo != "" {
		e = e.Str("linked_to", ev.LinkedTo)
	}
	e.Msg("memory changed")
}
