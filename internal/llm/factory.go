package llm

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/answer-cli/internal/config"
	"github.com/sells-group/answer-cli/internal/cost"
	"github.com/sells-group/answer-cli/internal/resilience"
	"github.com/sells-group/answer-cli/pkg/anthropic"
	"github.com/sells-group/answer-cli/pkg/openai"
)

// Detect picks a provider from the credentials present in cfg, in priority
// order aggregator, openai, anthropic, gemini. It returns "" when none is
// configured.
func Detect(cfg *config.Config) string {
	switch {
	case cfg.Aggregator.Key != "" && cfg.Aggregator.BaseURL != "":
		return config.ProviderAggregator
	case cfg.OpenAI.Key != "":
		return config.ProviderOpenAI
	case cfg.Anthropic.Key != "":
		return config.ProviderAnthropic
	case cfg.Gemini.Key != "":
		return config.ProviderGemini
	default:
		return ""
	}
}

// New builds the configured provider and wraps it with retries, a circuit
// breaker and the optional rate limit. llm.provider selects a provider
// explicitly; when empty the provider is detected from the keys present.
func New(ctx context.Context, cfg *config.Config) (Completer, error) {
	provider := cfg.LLM.Provider
	if provider == "" {
		provider = Detect(cfg)
	}

	base, model, err := newProvider(ctx, cfg, provider)
	if err != nil {
		return nil, err
	}

	rc := cfg.Resilience
	retry := resilience.FromRetryConfig(provider, rc.MaxAttempts, rc.InitialBackoffMs, rc.MaxBackoffMs, rc.Multiplier, rc.Jitter)
	breaker := resilience.NewCircuitBreaker(resilience.FromCircuitConfig(provider, rc.FailureThreshold, rc.ResetTimeoutSecs))

	zap.L().Info("llm: provider selected",
		zap.String("provider", provider),
		zap.String("model", model),
		zap.Float64("requests_per_second", rc.RequestsPerSecond),
	)

	return Resilient(base, ResilientOptions{
		Retry:   retry,
		Breaker: breaker,
		Limiter: resilience.NewAdaptiveLimiter(rc.RequestsPerSecond, rc.Burst),
		Timeout: time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	}), nil
}

func newProvider(ctx context.Context, cfg *config.Config, provider string) (Completer, string, error) {
	calc := cost.NewCalculator(cfg.Rates())

	pick := func(providerModel string) Options {
		opts := Options{
			Model:       providerModel,
			MaxTokens:   int64(cfg.LLM.MaxTokens),
			Temperature: &cfg.LLM.Temperature,
		}
		if cfg.LLM.Model != "" {
			opts.Model = cfg.LLM.Model
		}
		return opts
	}

	switch provider {
	case config.ProviderAggregator:
		if cfg.Aggregator.Key == "" || cfg.Aggregator.BaseURL == "" {
			return nil, "", eris.Wrap(ErrNoProvider, "llm: aggregator needs key and base_url")
		}
		opts := pick(cfg.Aggregator.Model)
		client := openai.NewClient(cfg.Aggregator.Key,
			openai.WithBaseURL(cfg.Aggregator.BaseURL),
			openai.WithModel(opts.Model),
		)
		return NewOpenAI(client, provider, opts, calc), opts.Model, nil

	case config.ProviderOpenAI:
		if cfg.OpenAI.Key == "" {
			return nil, "", eris.Wrap(ErrNoProvider, "llm: openai key not set")
		}
		opts := pick(cfg.OpenAI.Model)
		client := openai.NewClient(cfg.OpenAI.Key,
			openai.WithBaseURL(cfg.OpenAI.BaseURL),
			openai.WithModel(opts.Model),
		)
		return NewOpenAI(client, provider, opts, calc), opts.Model, nil

	case config.ProviderAnthropic:
		if cfg.Anthropic.Key == "" {
			return nil, "", eris.Wrap(ErrNoProvider, "llm: anthropic key not set")
		}
		opts := pick(cfg.Anthropic.Model)
		return NewAnthropic(anthropic.NewClient(cfg.Anthropic.Key), opts, calc), opts.Model, nil

	case config.ProviderGemini:
		if cfg.Gemini.Key == "" {
			return nil, "", eris.Wrap(ErrNoProvider, "llm: gemini key not set")
		}
		opts := pick(cfg.Gemini.Model)
		c, err := NewGemini(ctx, cfg.Gemini.Key, opts, calc)
		if err != nil {
			return nil, "", err
		}
		return c, opts.Model, nil

	case "":
		return nil, "", ErrNoProvider

	default:
		return nil, "", eris.Errorf("llm: unknown provider %q", provider)
	}
}
