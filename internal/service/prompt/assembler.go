package prompt

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sandevgo/glimpse/internal/core"
	"github.com/sandevgo/glimpse/pkg/log"
	"github.com/sandevgo/glimpse/pkg/tokens"
	"golang.org/x/sync/errgroup"
)

const (
	defaultImportanceFloor = 0.5
	defaultMemoryLimit     = 5

	undefinedMarker = "undefined"
	noValuesMarker  = "No specific values defined"
	memoryDateFmt   = "1/2/2006"
)

type MemorySearcher interface {
	Search(ctx context.Context, criteria core.SearchCriteria) ([]core.Memory, error)
}

type PersonalityProvider interface {
	Get(ctx context.Context) (core.AgentPersonality, error)
}

// DefaultCriteria is used by Build when the caller passes no criteria.
func DefaultCriteria() core.SearchCriteria {
	return core.SearchCriteria{
		ImportanceThreshold: core.Float(defaultImportanceFloor),
		Limit:               defaultMemoryLimit,
	}
}

type Assembler struct {
	memories    MemorySearcher
	personality PersonalityProvider
	template    core.PromptTemplate
	location    *time.Location
}

type Option func(*Assembler)

func WithTemplate(t core.PromptTemplate) Option {
	return func(a *Assembler) {
		a.template = t
	}
}

// WithLocation sets the zone memory dates are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(a *Assembler) {
		a.location = loc
	}
}

func NewAssembler(memories MemorySearcher, personality PersonalityProvider, opts ...Option) *Assembler {
	a := &Assembler{
		memories:    memories,
		personality: personality,
		template:    DefaultTemplate(),
		location:    time.Local,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Build returns the [system, context, user] prompt. Memories and the personality are
// fetched concurrently; a personality carried by criteria skips the lookup.
func (a *Assembler) Build(ctx context.Context, userMessage, convContext string, criteria *core.SearchCriteria) (core.Prompt, error) {
	c := DefaultCriteria()
	if criteria != nil {
		c = *criteria
	}

	var (
		memories    []core.Memory
		personality core.AgentPersonality
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := a.memories.Search(gctx, c)
		if err != nil {
			return fmt.Errorf("search memories: %w", err)
		}
		memories = found
		return nil
	})
	if c.Personality != nil {
		personality = c.Personality.Clone()
	} else {
		g.Go(func() error {
			p, err := a.personality.Get(gctx)
			if err != nil {
				return fmt.Errorf("get personality: %w", err)
			}
			personality = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return core.Prompt{}, err
	}

	block := FormatPersonality(personality)

	system := strings.NewReplacer(
		PlaceholderPersonality, block,
		PlaceholderContext, convContext,
	).Replace(a.template.System)

	var b strings.Builder
	b.WriteString(strings.ReplaceAll(a.template.Context, PlaceholderContext, convContext))
	if len(memories) > 0 {
		b.WriteString(a.template.MemoryPrefix)
		b.WriteString(a.formatMemories(memories))
		b.WriteString(a.template.MemorySuffix)
	}
	b.WriteString(a.template.PersonalityPrefix)
	b.WriteString(block)
	b.WriteString(a.template.PersonalitySuffix)

	log.Component(ctx, "assembler").Debug().
		Int("memories", len(memories)).
		Str("personality", personality.ID).
		Msg("prompt assembled")

	return core.Prompt{system, b.String(), userMessage}, nil
}

// FormatPersonality renders the profile as a text block. Traits are sorted by name.
func FormatPersonality(p core.AgentPersonality) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	fmt.Fprintf(&b, "Description: %s\n", p.Description)

	b.WriteString("Traits:\n")
	names := make([]string, 0, len(p.Traits))
	for name := range p.Traits {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %s\n", name, formatNumber(p.Traits[name]))
	}

	values := noValuesMarker
	if len(p.Values) > 0 {
		values = strings.Join(p.Values, ", ")
	}
	fmt.Fprintf(&b, "Values: %s\n", values)

	b.WriteString("Communication:\n")
	fmt.Fprintf(&b, "- Style: %s\n", orUndefined(p.Communication.Style))
	fmt.Fprintf(&b, "- Tone: %s\n", orUndefined(p.Communication.Tone))
	fmt.Fprintf(&b, "- Patterns: %s", orUndefined(strings.Join(p.Communication.Patterns, ", ")))
	return b.String()
}

// FormatMemory renders one memory as a single line.
func FormatMemory(m core.Memory, loc *time.Location) string {
	return fmt.Sprintf("[%s] %s (importance: %s, emotion: %s)",
		m.CreatedAt.In(loc).Format(memoryDateFmt),
		m.Text,
		formatNumber(m.Importance),
		formatNumber(m.EmotionScore),
	)
}

func (a *Assembler) formatMemories(memories []core.Memory) string {
	lines := make([]string, 0, len(memories))
	for _, m := range memories {
		lines = append(lines, FormatMemory(m, a.location))
	}
	return strings.Join(lines, "\n")
}

// Tokens estimates the size of the assembled prompt.
func Tokens(p core.Prompt) int {
	total := 0
	for _, part := range p {
		n, _ := tokens.Count(part)
		total += n
	}
	return total
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orUndefined(s string) string {
	if s == "" {
		return undefinedMarker
	}
	return s
}
