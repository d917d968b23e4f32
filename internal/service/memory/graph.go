package memory

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/sandevgo/glimpse/internal/core"
	"github.com/sandevgo/glimpse/pkg/log"
)

const glimpsePrefix = "glimpse_"

// Graph owns the memory collection and its symmetric link relation.
// Every mutation writes the full snapshot back to the repository before returning;
// a failed write rolls the in-memory change back.
type Graph struct {
	repo core.MemoryRepository

	mu     sync.RWMutex
	nodes  map[string]core.Memory
	order  []string
	refs   map[string]struct{}
	loaded bool

	subsMu  sync.Mutex
	subs    map[int]chan core.MemoryEvent
	nextSub int

	now    func() time.Time
	newID  func() string
	newRef func() string
}

type Option func(*Graph)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Graph) {
		g.now = now
	}
}

// WithIDGenerators overrides identifier and glimpse reference generation.
func WithIDGenerators(newID, newRef func() string) Option {
	return func(g *Graph) {
		g.newID = newID
		g.newRef = newRef
	}
}

func NewGraph(repo core.MemoryRepository, opts ...Option) *Graph {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	var entropyMu sync.Mutex

	g := &Graph{
		repo:  repo,
		nodes: make(map[string]core.Memory),
		refs:  make(map[string]struct{}),
		subs:  make(map[int]chan core.MemoryEvent),
		now:   time.Now,
		newID: uuid.NewString,
		newRef: func() string {
			entropyMu.Lock()
			defer entropyMu.Unlock()
			return glimpsePrefix + strings.ToLower(ulid.MustNew(ulid.Now(), entropy).String())
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Load replaces the in-memory collection with the persisted snapshot.
func (g *Graph) Load(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loadLocked(ctx)
}

func (g *Graph) loadLocked(ctx context.Context) error {
	memories, err := g.repo.LoadMemories(ctx)
	if err != nil {
		return fmt.Errorf("load memories: %w", err)
	}

	g.nodes = make(map[string]core.Memory, len(memories))
	g.refs = make(map[string]struct{}, len(memories))
	g.order = make([]string, 0, len(memories))

	repaired := 0
	for _, m := range memories {
		if _, dup := g.nodes[m.ID]; dup || m.ID == "" {
			repaired++
			continue
		}
		m = m.Clone()
		m.Importance = core.ClampImportance(m.Importance)
		m.EmotionScore = core.ClampEmotion(m.EmotionScore)
		if _, taken := g.refs[m.GlimpseRef]; taken || m.GlimpseRef == "" {
			m.GlimpseRef = g.uniqueRef()
			repaired++
		}
		g.nodes[m.ID] = m
		g.refs[m.GlimpseRef] = struct{}{}
		g.order = append(g.order, m.ID)
	}
	repaired += g.repairLinksLocked()
	g.loaded = true

	logger := log.Component(ctx, "memory_graph")
	if repaired > 0 {
		logger.Warn().Int("repaired", repaired).Msg("stored memories needed repair")
	}
	logger.Debug().Int("count", len(g.order)).Msg("memories loaded")
	return nil
}

// repairLinksLocked drops self, dangling and duplicate links, then adds the missing
// reverse direction of every surviving link. It returns the number of changes.
func (g *Graph) repairLinksLocked() int {
	changes := 0
	for _, id := range g.order {
		m := g.nodes[id]
		valid := g.validLinks(id, m.LinkedMemories)
		changes += len(m.LinkedMemories) - len(valid)
		m.LinkedMemories = valid
		g.nodes[id] = m
	}
	for _, id := range g.order {
		for _, target := range g.nodes[id].LinkedMemories {
			if !g.nodes[target].HasLink(id) {
				g.addLinkLocked(target, id)
				changes++
			}
		}
	}
	return changes
}

// Flush writes the current collection to the repository.
// A graph that was never loaded has nothing to write.
func (g *Graph) Flush(ctx context.Context) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.loaded {
		return nil
	}
	if err := g.repo.SaveMemories(ctx, g.snapshotLocked()); err != nil {
		return fmt.Errorf("persist memories: %w", err)
	}
	return nil
}

func (g *Graph) ensureLoaded(ctx context.Context) error {
	g.mu.RLock()
	loaded := g.loaded
	g.mu.RUnlock()
	if loaded {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.loaded {
		return nil
	}
	return g.loadLocked(ctx)
}

func (g *Graph) Create(ctx context.Context, draft core.MemoryDraft) (core.Memory, error) {
	if err := g.ensureLoaded(ctx); err != nil {
		return core.Memory{}, err
	}

	g.mu.Lock()
	m := core.Memory{
		ID:           g.uniqueID(),
		GlimpseRef:   g.uniqueRef(),
		Text:         draft.Text,
		Observation:  draft.Observation,
		Context:      draft.Context,
		Importance:   core.ClampImportance(draft.Importance),
		EmotionScore: core.ClampEmotion(draft.EmotionScore),
		CreatedAt:    g.now(),
		Metadata:     draft.Metadata,
	}
	if draft.Conversation != nil {
		m.Conversation = *draft.Conversation
	}
	m = m.Clone()
	m.LinkedMemories = g.validLinks(m.ID, draft.LinkedMemories)

	cp := g.checkpoint()
	g.nodes[m.ID] = m
	g.refs[m.GlimpseRef] = struct{}{}
	g.order = append(g.order, m.ID)
	for _, target := range m.LinkedMemories {
		g.addLinkLocked(target, m.ID)
	}

	if err := g.commitLocked(ctx, cp); err != nil {
		g.mu.Unlock()
		return core.Memory{}, fmt.Errorf("create memory: %w", err)
	}
	created := m.Clone()
	g.mu.Unlock()

	log.Component(ctx, "memory_graph").Debug().Str("id", created.ID).Msg("memory created")
	g.emit(ctx, core.MemoryEvent{Type: core.MemoryEventCreate, Memory: created})
	return created, nil
}

// Update merges patch into the stored memory. Identity fields are never touched.
func (g *Graph) Update(ctx context.Context, id string, patch core.MemoryPatch) (core.Memory, error) {
	if err := g.ensureLoaded(ctx); err != nil {
		return core.Memory{}, err
	}

	g.mu.Lock()
	existing, ok := g.nodes[id]
	if !ok {
		g.mu.Unlock()
		return core.Memory{}, fmt.Errorf("update memory %q: %w", id, core.ErrNotFound)
	}

	m := applyPatch(existing.Clone(), patch)
	m.ID = existing.ID
	m.GlimpseRef = existing.GlimpseRef
	m.CreatedAt = existing.CreatedAt

	cp := g.checkpoint()
	g.nodes[id] = m

	if err := g.commitLocked(ctx, cp); err != nil {
		g.mu.Unlock()
		return core.Memory{}, fmt.Errorf("update memory %q: %w", id, err)
	}
	updated := m.Clone()
	g.mu.Unlock()

	log.Component(ctx, "memory_graph").Debug().Str("id", id).Msg("memory updated")
	g.emit(ctx, core.MemoryEvent{Type: core.MemoryEventUpdate, Memory: updated})
	return updated, nil
}

// Delete removes the memory and strips its id from every remaining link set.
func (g *Graph) Delete(ctx context.Context, id string) error {
	if err := g.ensureLoaded(ctx); err != nil {
		return err
	}

	g.mu.Lock()
	removed, ok := g.nodes[id]
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("delete memory %q: %w", id, core.ErrNotFound)
	}

	cp := g.checkpoint()
	delete(g.nodes, id)
	delete(g.refs, removed.GlimpseRef)
	g.order = removeString(g.order, id)

	for _, other := range g.order {
		m := g.nodes[other]
		if !m.HasLink(id) {
			continue
		}
		m = m.Clone()
		m.LinkedMemories = removeString(m.LinkedMemories, id)
		g.nodes[other] = m
	}

	if err := g.commitLocked(ctx, cp); err != nil {
		g.mu.Unlock()
		return fmt.Errorf("delete memory %q: %w", id, err)
	}
	g.mu.Unlock()

	log.Component(ctx, "memory_graph").Debug().Str("id", id).Msg("memory deleted")
	g.emit(ctx, core.MemoryEvent{Type: core.MemoryEventDelete, Memory: removed.Clone()})
	return nil
}

// Link connects two memories in both directions. Linking an existing pair is a no-op
// for the link sets but still persists and emits.
func (g *Graph) Link(ctx context.Context, sourceID, targetID string) error {
	if err := g.ensureLoaded(ctx); err != nil {
		return err
	}

	g.mu.Lock()
	for _, id := range []string{sourceID, targetID} {
		if _, ok := g.nodes[id]; !ok {
			g.mu.Unlock()
			return fmt.Errorf("link %q -> %q: memory %q: %w", sourceID, targetID, id, core.ErrNotFound)
		}
	}
	if sourceID == targetID {
		g.mu.Unlock()
		return fmt.Errorf("link memory %q to itself: %w", sourceID, core.ErrValidation)
	}

	cp := g.checkpoint()
	g.addLinkLocked(sourceID, targetID)
	g.addLinkLocked(targetID, sourceID)

	if err := g.commitLocked(ctx, cp); err != nil {
		g.mu.Unlock()
		return fmt.Errorf("link %q -> %q: %w", sourceID, targetID, err)
	}
	source := g.nodes[sourceID].Clone()
	g.mu.Unlock()

	log.Component(ctx, "memory_graph").Debug().
		Str("source", sourceID).
		Str("target", targetID).
		Msg("memories linked")
	g.emit(ctx, core.MemoryEvent{Type: core.MemoryEventLink, Memory: source, LinkedTo: targetID})
	return nil
}

// Search filters the live collection.
func (g *Graph) Search(ctx context.Context, criteria core.SearchCriteria) ([]core.Memory, error) {
	all, err := g.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(all, criteria), nil
}

// SearchIn filters an explicitly supplied collection, e.g. a previous search result.
func (g *Graph) SearchIn(records []core.Memory, criteria core.SearchCriteria) []core.Memory {
	return Filter(records, criteria)
}

// Get returns the memory and touches its last-accessed time. A failed touch write
// is logged and rolled back; the read itself still succeeds.
func (g *Graph) Get(ctx context.Context, id string) (core.Memory, bool, error) {
	if err := g.ensureLoaded(ctx); err != nil {
		return core.Memory{}, false, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	m, ok := g.nodes[id]
	if !ok {
		return core.Memory{}, false, nil
	}

	cp := g.checkpoint()
	touched := m.Clone()
	now := g.now()
	touched.LastAccessed = &now
	g.nodes[id] = touched

	if err := g.commitLocked(ctx, cp); err != nil {
		log.Component(ctx, "memory_graph").Warn().Err(err).Str("id", id).Msg("failed to persist access time")
		return m.Clone(), true, nil
	}
	return touched.Clone(), true, nil
}

// GetAll returns every memory in insertion order.
func (g *Graph) GetAll(ctx context.Context) ([]core.Memory, error) {
	if err := g.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.snapshotLocked(), nil
}

// Edges derives the undirected edge set; each pair appears once, weighted by the
// mean importance of its ends.
func (g *Graph) Edges(ctx context.Context) ([]core.Edge, error) {
	if err := g.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := make(map[[2]string]struct{})
	var edges []core.Edge
	for _, id := range g.order {
		from := g.nodes[id]
		for _, to := range from.LinkedMemories {
			key := [2]string{id, to}
			if to < id {
				key = [2]string{to, id}
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			edges = append(edges, core.Edge{
				From:   id,
				To:     to,
				Weight: (from.Importance + g.nodes[to].Importance) / 2,
			})
		}
	}
	return edges, nil
}

type checkpoint struct {
	nodes map[string]core.Memory
	order []string
	refs  map[string]struct{}
}

// Stored memories are replaced, never mutated in place, so a shallow copy is enough.
func (g *Graph) checkpoint() checkpoint {
	cp := checkpoint{
		nodes: make(map[string]core.Memory, len(g.nodes)),
		order: append([]string{}, g.order...),
		refs:  make(map[string]struct{}, len(g.refs)),
	}
	for k, v := range g.nodes {
		cp.nodes[k] = v
	}
	for k := range g.refs {
		cp.refs[k] = struct{}{}
	}
	return cp
}

func (g *Graph) commitLocked(ctx context.Context, cp checkpoint) error {
	if err := g.repo.SaveMemories(ctx, g.snapshotLocked()); err != nil {
		g.nodes, g.order, g.refs = cp.nodes, cp.order, cp.refs
		return fmt.Errorf("persist memories: %w", err)
	}
	return nil
}

func (g *Graph) snapshotLocked() []core.Memory {
	out := make([]core.Memory, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id].Clone())
	}
	return out
}

func (g *Graph) addLinkLocked(from, to string) {
	m := g.nodes[from]
	if m.HasLink(to) {
		return
	}
	m = m.Clone()
	m.LinkedMemories = append(m.LinkedMemories, to)
	g.nodes[from] = m
}

// validLinks keeps existing, distinct ids other than self.
func (g *Graph) validLinks(self string, ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == self {
			continue
		}
		if _, ok := g.nodes[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (g *Graph) uniqueID() string {
	for {
		id := g.newID()
		if _, taken := g.nodes[id]; !taken {
			return id
		}
	}
}

func (g *Graph) uniqueRef() string {
	for {
		ref := g.newRef()
		if _, taken := g.refs[ref]; !taken {
			return ref
		}
	}
}

func applyPatch(m core.Memory, p core.MemoryPatch) core.Memory {
	if p.Text != nil {
		m.Text = *p.Text
	}
	if p.Observation != nil {
		m.Observation = *p.Observation
	}
	if p.Conversation != nil {
		m.Conversation = core.Conversation{
			AgentMessages: append([]string{}, p.Conversation.AgentMessages...),
			UserMessages:  append([]string{}, p.Conversation.UserMessages...),
		}
	}
	if p.Context != nil {
		m.Context = *p.Context
		m.Context.Extra = mergeMaps(nil, p.Context.Extra)
	}
	if p.Importance != nil {
		m.Importance = core.ClampImportance(*p.Importance)
	}
	if p.EmotionScore != nil {
		m.EmotionScore = core.ClampEmotion(*p.EmotionScore)
	}
	if p.LastAccessed != nil {
		t := *p.LastAccessed
		m.LastAccessed = &t
	}
	if p.Metadata != nil {
		m.Metadata = mergeMaps(m.Metadata, p.Metadata)
	}
	return m
}

func mergeMaps(base, over map[string]any) map[string]any {
	if base == nil && over == nil {
		return nil
	}
	out := make(map[string]any, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

func removeString(in []string, s string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
