package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/sandevgo/glimpse/internal/core"
	"github.com/sandevgo/glimpse/pkg/log"
	"github.com/sandevgo/glimpse/pkg/retry"
	"github.com/sashabaranov/go-openai"
)

// Retrying retries transient transport failures of the wrapped provider with
// exponential backoff. Client errors (4xx other than 429) are returned at once.
type Retrying struct {
	next    core.AIProvider
	retrier *retry.Retrier
}

func NewRetrying(next core.AIProvider, cfg *retry.Config) *Retrying {
	c := *cfg
	if c.Retryable == nil {
		c.Retryable = IsTransient
	}
	return &Retrying{
		next:    next,
		retrier: retry.NewRetrier(&c),
	}
}

func (r *Retrying) Chat(ctx context.Context, history []core.Message) (core.Message, error) {
	var out core.Message
	attempt := 0
	err := r.retrier.Do(ctx, func() error {
		attempt++
		if attempt > 1 {
			log.Component(ctx, "llm").Debug().Int("attempt", attempt).Msg("retrying chat")
		}
		msg, err := r.next.Chat(ctx, history)
		if err != nil {
			return err
		}
		out = msg
		return nil
	})
	return out, err
}

func (r *Retrying) Complete(ctx context.Context, prompt string) (string, error) {
	return complete(ctx, r.Chat, prompt)
}

func (r *Retrying) Models(ctx context.Context) ([]core.Model, error) {
	var out []core.Model
	err := r.retrier.Do(ctx, func() error {
		models, err := r.next.Models(ctx)
		if err != nil {
			return err
		}
		out = models
		return nil
	})
	return out, err
}

// IsTransient reports whether err is worth retrying: rate limits, server errors
// and failures that never produced a status code.
func IsTransient(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return transientStatus(statusErr.Code)
	}

	var openaiAPIErr *openai.APIError
	if errors.As(err, &openaiAPIErr) {
		return transientStatus(openaiAPIErr.HTTPStatusCode)
	}

	var openaiReqErr *openai.RequestError
	if errors.As(err, &openaiReqErr) {
		return transientStatus(openaiReqErr.HTTPStatusCode)
	}

	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return transientStatus(anthropicErr.StatusCode)
	}

	return true
}

func transientStatus(code int) bool {
	return code == 0 || code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
