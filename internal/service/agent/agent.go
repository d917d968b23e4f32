package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sandevgo/glimpse/internal/core"
	"github.com/sandevgo/glimpse/internal/service/memory"
	"github.com/sandevgo/glimpse/pkg/log"
)

const (
	defaultHistoryWindow = 6
	emptyContext         = "Start of conversation."
)

type ChatProvider interface {
	Chat(ctx context.Context, history []core.Message) (core.Message, error)
}

type PromptBuilder interface {
	Build(ctx context.Context, userMessage, convContext string, criteria *core.SearchCriteria) (core.Prompt, error)
}

type Classifier interface {
	Classify(ctx context.Context, text, userContext string) core.NarrativeClassification
}

type MemoryCreator interface {
	Create(ctx context.Context, draft core.MemoryDraft) (core.Memory, error)
}

// Turn is the outcome of one exchange.
type Turn struct {
	Reply          string
	Classification core.NarrativeClassification
	// Memory is nil when storing the exchange failed.
	Memory *core.Memory
}

// Agent answers a user message with memory-aware prompts and remembers the exchange.
type Agent struct {
	ai         ChatProvider
	prompts    PromptBuilder
	classifier Classifier
	memories   MemoryCreator

	HistoryWindow int

	mu      sync.Mutex
	history []core.Message
}

func NewAgent(ai ChatProvider, prompts PromptBuilder, classifier Classifier, memories MemoryCreator) *Agent {
	return &Agent{
		ai:            ai,
		prompts:       prompts,
		classifier:    classifier,
		memories:      memories,
		HistoryWindow: defaultHistoryWindow,
	}
}

// Run builds the prompt, asks the model, then classifies and stores the exchange.
// A failure to store the memory is logged; the reply is still returned.
func (a *Agent) Run(ctx context.Context, input string) (Turn, error) {
	logger := log.Component(ctx, "agent")

	prompt, err := a.prompts.Build(ctx, input, a.conversationContext(), nil)
	if err != nil {
		return Turn{}, fmt.Errorf("build prompt: %w", err)
	}

	reply, err := a.ai.Chat(ctx, []core.Message{
		{Role: core.RoleSystem, Content: prompt.System()},
		{Role: core.RoleSystem, Content: prompt.Context()},
		{Role: core.RoleUser, Content: prompt.User()},
	})
	if err != nil {
		return Turn{}, fmt.Errorf("ai chat error: %w", err)
	}

	a.remember(core.Message{Role: core.RoleUser, Content: input}, reply)

	turn := Turn{Reply: reply.Content}
	turn.Classification = a.classifier.Classify(ctx, reply.Content, input)

	conv := core.Conversation{
		AgentMessages: []string{reply.Content},
		UserMessages:  []string{input},
	}
	m, err := a.memories.Create(ctx, memory.DraftFromClassification(input, conv, turn.Classification))
	if err != nil {
		logger.Error().Err(err).Msg("failed to store memory")
		return turn, nil
	}
	turn.Memory = &m

	logger.Debug().
		Str("memory_id", m.ID).
		Float64("importance", m.Importance).
		Str("focus_area", m.Context.FocusArea).
		Msg("exchange remembered")
	return turn, nil
}

// Reset forgets the in-session history. Stored memories are untouched.
func (a *Agent) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
}

func (a *Agent) remember(msgs ...core.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.history = append(a.history, msgs...)
	if over := len(a.history) - a.HistoryWindow; a.HistoryWindow > 0 && over > 0 {
		a.history = append([]core.Message(nil), a.history[over:]...)
	}
}

func (a *Agent) conversationContext() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.history) == 0 {
		return emptyContext
	}

	var b strings.Builder
	b.WriteString("Recent conversation:")
	for _, m := range a.history {
		role := "User"
		if m.Role == core.RoleAssistant {
			role = "Agent"
		}
		fmt.Fprintf(&b, "\n%s: %s", role, m.Content)
	}
	return b.String()
}
