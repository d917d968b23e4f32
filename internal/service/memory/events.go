package memory

import (
	"context"

	"github.com/sandevgo/glimpse/internal/core"
	"github.com/sandevgo/glimpse/pkg/log"
)

const defaultEventBuffer = 64

// Subscribe returns a channel receiving every successful mutation and a func that
// stops delivery and closes the channel. Delivery never blocks the mutator: when the
// buffer is full the event is dropped for that subscriber.
func (g *Graph) Subscribe(buffer int) (<-chan core.MemoryEvent, func()) {
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	ch := make(chan core.MemoryEvent, buffer)

	g.subsMu.Lock()
	id := g.nextSub
	g.nextSub++
	g.subs[id] = ch
	g.subsMu.Unlock()

	cancel := func() {
		g.subsMu.Lock()
		defer g.subsMu.Unlock()
		if _, ok := g.subs[id]; ok {
			delete(g.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

func (g *Graph) emit(ctx context.Context, ev core.MemoryEvent) {
	g.subsMu.Lock()
	defer g.subsMu.Unlock()

	for id, ch := range g.subs {
		select {
		case ch <- ev:
		default:
			log.Component(ctx, "memory_graph").Warn().
				Int("subscriber", id).
				Str("event", string(ev.Type)).
				Str("memory_id", ev.Memory.ID).
				Msg("subscriber buffer full, event dropped")
		}
	}
}
