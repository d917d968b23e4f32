package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sandevgo/glimpse/internal/core"
)

const anthropicMaxTokens = 4096

type Anthropic struct {
	client anthropic.Client
	model  string
}

// NewAnthropic creates the provider. SDK-level retries are disabled; retries are
// layered on top by Retrying.
func NewAnthropic(apiKey, model, baseURL string, timeout time.Duration) *Anthropic {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Anthropic{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

// Chat sends history to the Messages API. System messages are joined into the
// top-level system prompt since the API has no system role.
func (a *Anthropic) Chat(ctx context.Context, history []core.Message) (core.Message, error) {
	var (
		system   []anthropic.TextBlockParam
		messages []anthropic.MessageParam
	)
	for _, m := range history {
		switch m.Role {
		case core.RoleSystem:
			if strings.TrimSpace(m.Content) != "" {
				system = append(system, anthropic.TextBlockParam{Text: m.Content})
			}
		case core.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: anthropicMaxTokens,
		Messages:  messages,
	}
	if len(system) > 0 {
		params.System = system
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return core.Message{}, fmt.Errorf("anthropic chat: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return core.Message{Role: core.RoleAssistant, Content: text.String()}, nil
}

func (a *Anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	return complete(ctx, a.Chat, prompt)
}

func (a *Anthropic) Models(ctx context.Context) ([]core.Model, error) {
	var models []core.Model

	iter := a.client.Models.ListAutoPaging(ctx, anthropic.ModelListParams{})
	for iter.Next() {
		m := iter.Current()
		models = append(models, core.Model{
			ID:   m.ID,
			Name: m.DisplayName,
			// ContextLength is not provided by the Anthropic models API
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("fetch models: %w", err)
	}
	return models, nil
}
