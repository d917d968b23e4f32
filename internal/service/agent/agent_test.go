package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sandevgo/glimpse/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	seen  [][]core.Message
	reply string
	err   error
}

func (f *fakeChat) Chat(ctx context.Context, history []core.Message) (core.Message, error) {
	f.seen = append(f.seen, history)
	if f.err != nil {
		return core.Message{}, f.err
	}
	return core.Message{Role: core.RoleAssistant, Content: f.reply}, nil
}

type fakePrompts struct {
	contexts []string
	err      error
}

func (f *fakePrompts) Build(ctx context.Context, userMessage, convContext string, criteria *core.SearchCriteria) (core.Prompt, error) {
	f.contexts = append(f.contexts, convContext)
	if f.err != nil {
		return core.Prompt{}, f.err
	}
	return core.Prompt{"SYSTEM", "CONTEXT:" + convContext, userMessage}, nil
}

type fakeClassifier struct {
	text, userContext string
}

func (f *fakeClassifier) Classify(ctx context.Context, text, userContext string) core.NarrativeClassification {
	f.text, f.userContext = text, userContext
	return core.NarrativeClassification{
		Observation:     "user asked about plants",
		Importance:      1.7,
		EmotionScore:    0.2,
		FocusArea:       "hobbies",
		InteractionType: "question",
		SuggestedLinks:  []string{"m0"},
	}
}

type fakeMemories struct {
	drafts []core.MemoryDraft
	err    error
}

func (f *fakeMemories) Create(ctx context.Context, draft core.MemoryDraft) (core.Memory, error) {
	f.drafts = append(f.drafts, draft)
	if f.err != nil {
		return core.Memory{}, f.err
	}
	return core.Memory{ID: "m1", Text: draft.Text, Importance: core.ClampImportance(draft.Importance)}, nil
}

func TestAgent_Run(t *testing.T) {
	chat := &fakeChat{reply: "Water it weekly."}
	prompts := &fakePrompts{}
	cls := &fakeClassifier{}
	mem := &fakeMemories{}
	a := NewAgent(chat, prompts, cls, mem)

	turn, err := a.Run(context.Background(), "How often should I water a fern?")
	require.NoError(t, err)

	assert.Equal(t, "Water it weekly.", turn.Reply)
	require.NotNil(t, turn.Memory)
	assert.Equal(t, "m1", turn.Memory.ID)

	require.Len(t, chat.seen, 1)
	assert.Equal(t, []core.Message{
		{Role: core.RoleSystem, Content: "SYSTEM"},
		{Role: core.RoleSystem, Content: "CONTEXT:" + emptyContext},
		{Role: core.RoleUser, Content: "How often should I water a fern?"},
	}, chat.seen[0])

	assert.Equal(t, "Water it weekly.", cls.text)
	assert.Equal(t, "How often should I water a fern?", cls.userContext)

	require.Len(t, mem.drafts, 1)
	d := mem.drafts[0]
	assert.Equal(t, "How often should I water a fern?", d.Text)
	assert.Equal(t, "user asked about plants", d.Observation)
	assert.Equal(t, "hobbies", d.Context.FocusArea)
	assert.Equal(t, []string{"m0"}, d.LinkedMemories)
	require.NotNil(t, d.Conversation)
	assert.Equal(t, []string{"Water it weekly."}, d.Conversation.AgentMessages)
	assert.Equal(t, []string{"How often should I water a fern?"}, d.Conversation.UserMessages)
}

func TestAgent_RunCarriesRecentHistory(t *testing.T) {
	prompts := &fakePrompts{}
	a := NewAgent(&fakeChat{reply: "ok"}, prompts, &fakeClassifier{}, &fakeMemories{})
	a.HistoryWindow = 2
	ctx := context.Background()

	for _, in := range []string{"one", "two", "three"} {
		_, err := a.Run(ctx, in)
		require.NoError(t, err)
	}

	require.Len(t, prompts.contexts, 3)
	assert.Equal(t, emptyContext, prompts.contexts[0])
	assert.Equal(t, "Recent conversation:\nUser: one\nAgent: ok", prompts.contexts[1])
	assert.Equal(t, "Recent conversation:\nUser: two\nAgent: ok", prompts.contexts[2])

	a.Reset()
	_, err := a.Run(ctx, "four")
	require.NoError(t, err)
	assert.Equal(t, emptyContext, prompts.contexts[3])
}

func TestAgent_RunKeepsReplyWhenMemoryFails(t *testing.T) {
	mem := &fakeMemories{err: errors.New("disk full")}
	a := NewAgent(&fakeChat{reply: "hello"}, &fakePrompts{}, &fakeClassifier{}, mem)

	turn, err := a.Run(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", turn.Reply)
	assert.Nil(t, turn.Memory)
}

func TestAgent_RunErrors(t *testing.T) {
	promptErr := errors.New("store offline")
	mem := &fakeMemories{}
	a := NewAgent(&fakeChat{reply: "x"}, &fakePrompts{err: promptErr}, &fakeClassifier{}, mem)
	_, err := a.Run(context.Background(), "hi")
	assert.ErrorIs(t, err, promptErr)

	chatErr := errors.New("rate limited")
	a = NewAgent(&fakeChat{err: chatErr}, &fakePrompts{}, &fakeClassifier{}, mem)
	_, err = a.Run(context.Background(), "hi")
	assert.ErrorIs(t, err, chatErr)
	assert.True(t, strings.HasPrefix(err.Error(), "ai chat error"))

	assert.Empty(t, mem.drafts)
}
