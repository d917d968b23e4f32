package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sandevgo/glimpse/internal/config"
	"github.com/sandevgo/glimpse/internal/core"
	"github.com/sandevgo/glimpse/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAICompatible_Complete(t *testing.T) {
	var got struct {
		Model    string         `json:"model"`
		Messages []core.Message `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "glimpse", r.Header.Get("X-Title"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"{\"importance\":0.4}"}}]}`)
	}))
	defer srv.Close()

	p := NewOpenAICompatible(OpenAICompatibleConfig{
		BaseURL:      srv.URL,
		APIKey:       "secret",
		Model:        "test-model",
		AuthHeader:   "Authorization",
		AuthPrefix:   "Bearer ",
		ExtraHeaders: map[string]string{"X-Title": "glimpse"},
	})

	out, err := p.Complete(context.Background(), "classify this")
	require.NoError(t, err)
	assert.Equal(t, `{"importance":0.4}`, out)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, []core.Message{{Role: core.RoleUser, Content: "classify this"}}, got.Messages)
}

func TestOpenAICompatible_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, "overloaded")
	}))
	defer srv.Close()

	p := NewCustomOpenAI(srv.URL, "", "m", time.Second)
	_, err := p.Chat(context.Background(), []core.Message{{Role: core.RoleUser, Content: "hi"}})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	assert.Equal(t, "overloaded", statusErr.Body)
	assert.True(t, IsTransient(err))
}

func TestOpenAICompatible_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	_, err := NewCustomOpenAI(srv.URL, "k", "m", 0).Complete(context.Background(), "x")
	assert.ErrorContains(t, err, "empty choices")
}

func TestOpenAICompatible_Models(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		io.WriteString(w, `{"data":[{"id":"a/b","name":"Model B","context_length":8192},{"id":"c"}]}`)
	}))
	defer srv.Close()

	models, err := NewCustomOpenAI(srv.URL, "k", "m", 0).Models(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []core.Model{
		{ID: "a/b", Name: "Model B", ContextLength: 8192},
		{ID: "c", Name: "c"},
	}, models)
}

func TestOllama_Models(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		io.WriteString(w, `{"models":[{"name":"llama3:8b"}]}`)
	}))
	defer srv.Close()

	models, err := NewOllama(srv.URL, "", "llama3:8b", 0).Models(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []core.Model{{ID: "llama3:8b", Name: "llama3:8b", ContextLength: ollamaContextLength}}, models)
}

func TestOpenAI_ChatAndModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/v1/chat/completions":
			var req struct {
				Model    string `json:"model"`
				Messages []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"messages"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "gpt-test", req.Model)
			if assert.Len(t, req.Messages, 2) {
				assert.Equal(t, "system", req.Messages[0].Role)
			}
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"}]}`)
		case "/v1/models":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"object":"list","data":[{"id":"gpt-test","object":"model"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewOpenAI("sk-test", "gpt-test", srv.URL+"/v1", time.Second)
	ctx := context.Background()

	msg, err := p.Chat(ctx, []core.Message{
		{Role: core.RoleSystem, Content: "be brief"},
		{Role: core.RoleUser, Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, core.Message{Role: core.RoleAssistant, Content: "hello"}, msg)

	models, err := p.Models(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Model{{ID: "gpt-test", Name: "gpt-test"}}, models)
}

func TestOpenAI_ClientErrorIsNotTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"message":"bad model","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	_, err := NewOpenAI("sk", "nope", srv.URL+"/v1", time.Second).Complete(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, IsTransient(err))
}

func TestAnthropic_Chat(t *testing.T) {
	var got struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		System    []struct {
			Text string `json:"text"`
		} `json:"system"`
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ak-test", r.Header.Get("X-Api-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-test",
			"content":[{"type":"text","text":"hello "},{"type":"text","text":"there"}],
			"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":2}}`)
	}))
	defer srv.Close()

	p := NewAnthropic("ak-test", "claude-test", srv.URL, time.Second)
	msg, err := p.Chat(context.Background(), []core.Message{
		{Role: core.RoleSystem, Content: "system one"},
		{Role: core.RoleSystem, Content: "system two"},
		{Role: core.RoleUser, Content: "hi"},
	})
	require.NoError(t, err)

	assert.Equal(t, "hello there", msg.Content)
	assert.Equal(t, core.RoleAssistant, msg.Role)
	assert.Equal(t, "claude-test", got.Model)
	assert.Equal(t, anthropicMaxTokens, got.MaxTokens)
	require.Len(t, got.System, 2)
	assert.Equal(t, "system two", got.System[1].Text)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestAnthropic_RateLimitIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`)
	}))
	defer srv.Close()

	_, err := NewAnthropic("ak", "claude-test", srv.URL, time.Second).Complete(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

type flakyProvider struct {
	failures int
	err      error
	calls    int
}

func (f *flakyProvider) Chat(ctx context.Context, history []core.Message) (core.Message, error) {
	f.calls++
	if f.calls <= f.failures {
		return core.Message{}, f.err
	}
	return core.Message{Role: core.RoleAssistant, Content: history[len(history)-1].Content + "!"}, nil
}

func (f *flakyProvider) Complete(ctx context.Context, prompt string) (string, error) {
	return complete(ctx, f.Chat, prompt)
}

func (f *flakyProvider) Models(ctx context.Context) ([]core.Model, error) {
	return nil, nil
}

func fastRetry(n int) *retry.Config {
	return &retry.Config{
		MaxRetries:    n,
		BackoffFactor: 1,
		InitialDelay:  time.Millisecond,
		MaxDelay:      time.Millisecond,
	}
}

func TestRetrying_RecoversFromTransientErrors(t *testing.T) {
	inner := &flakyProvider{failures: 2, err: &StatusError{Code: http.StatusBadGateway}}
	p := NewRetrying(inner, fastRetry(3))

	out, err := p.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi!", out)
	assert.Equal(t, 3, inner.calls)
}

func TestRetrying_StopsOnClientError(t *testing.T) {
	inner := &flakyProvider{failures: 5, err: &StatusError{Code: http.StatusUnauthorized}}
	p := NewRetrying(inner, fastRetry(3))

	_, err := p.Complete(context.Background(), "hi")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 1, inner.calls)
}

func TestRetrying_GivesUp(t *testing.T) {
	inner := &flakyProvider{failures: 10, err: errors.New("connection refused")}
	p := NewRetrying(inner, fastRetry(2))

	_, err := p.Complete(context.Background(), "hi")
	assert.EqualError(t, err, "connection refused")
	assert.Equal(t, 3, inner.calls)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(errors.New("dial tcp: connection refused")))
	assert.True(t, IsTransient(&StatusError{Code: http.StatusTooManyRequests}))
	assert.True(t, IsTransient(&StatusError{Code: http.StatusInternalServerError}))
	assert.False(t, IsTransient(&StatusError{Code: http.StatusNotFound}))
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     config.LLMConfig
		wantErr string
		check   func(t *testing.T, p core.AIProvider)
	}{
		{
			name: "openrouter without retries",
			cfg:  config.LLMConfig{Provider: ProviderOpenRouter, Model: "m"},
			check: func(t *testing.T, p core.AIProvider) {
				assert.IsType(t, &OpenRouter{}, p)
			},
		},
		{
			name: "anthropic with retries",
			cfg:  config.LLMConfig{Provider: ProviderAnthropic, Model: "m", MaxRetries: 2},
			check: func(t *testing.T, p core.AIProvider) {
				r, ok := p.(*Retrying)
				require.True(t, ok)
				assert.IsType(t, &Anthropic{}, r.next)
			},
		},
		{name: "custom needs base url", cfg: config.LLMConfig{Provider: ProviderCustom}, wantErr: "CUSTOM_OPENAI_BASE_URL"},
		{name: "unknown provider", cfg: config.LLMConfig{Provider: "carrier-pigeon"}, wantErr: "unknown llm provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(ctx, &tt.cfg)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}
