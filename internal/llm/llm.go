// Package llm provides the text-generation capability used by the answer
// pipeline: a single-call Completer interface, provider adapters, a
// resilience wrapper and a config-driven factory.
package llm

import (
	"context"

	"go.uber.org/zap"
)

// Completer turns a rendered prompt into model text. Implementations own
// model selection, retries and rate limits; callers see either text or a
// failure.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Options are the generation settings shared by every provider.
type Options struct {
	Model       string
	MaxTokens   int64
	Temperature *float64
}

func logUsage(provider, model string, input, output int, usd float64) {
	zap.L().Info("llm: cost attribution",
		zap.String("provider", provider),
		zap.String("model", model),
		zap.Int("input_tokens", input),
		zap.Int("output_tokens", output),
		zap.Float64("estimated_cost_usd", usd),
	)
}
