package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/glimpse/internal/config"
	"github.com/sandevgo/glimpse/internal/core"
	"github.com/sandevgo/glimpse/pkg/log"
	"github.com/sandevgo/glimpse/pkg/retry"
)

const (
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderCustom     = "custom"
)

// NewProvider creates the configured AIProvider, wrapped with transport retries
// when LLM_MAX_RETRIES > 0.
func NewProvider(ctx context.Context, cfg *config.LLMConfig) (core.AIProvider, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	var provider core.AIProvider
	switch cfg.Provider {
	case ProviderOpenAI:
		provider = NewOpenAI(cfg.OpenAIAPIKey, cfg.Model, "", cfg.Timeout)
	case ProviderAnthropic:
		provider = NewAnthropic(cfg.AnthropicAPIKey, cfg.Model, "", cfg.Timeout)
	case ProviderOpenRouter:
		provider = NewOpenRouter(cfg.OpenRouterAPIKey, cfg.Model, cfg.Timeout)
	case ProviderOllama:
		provider = NewOllama(cfg.OllamaBaseURL, cfg.OllamaAPIKey, cfg.Model, cfg.Timeout)
	case ProviderCustom:
		if cfg.CustomOpenAIBaseURL == "" {
			return nil, fmt.Errorf("custom provider requires CUSTOM_OPENAI_BASE_URL")
		}
		provider = NewCustomOpenAI(cfg.CustomOpenAIBaseURL, cfg.CustomOpenAIAPIKey, cfg.Model, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}

	if cfg.MaxRetries <= 0 {
		return provider, nil
	}

	logger := log.Component(ctx, "llm")
	rc := retry.NewDefaultConfig()
	rc.MaxRetries = cfg.MaxRetries
	rc.OnRetry = func(attempt int, err error, wait time.Duration) {
		logger.Warn().Err(err).
			Str("provider", cfg.Provider).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("llm request failed, retrying")
	}
	return NewRetrying(provider, rc), nil
}
