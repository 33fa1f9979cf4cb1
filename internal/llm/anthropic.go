package llm

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/answer-cli/internal/cost"
	"github.com/sells-group/answer-cli/pkg/anthropic"
)

type anthropicCompleter struct {
	client anthropic.Client
	opts   Options
	calc   *cost.Calculator
}

// NewAnthropic returns a Completer backed by the Anthropic Messages API.
func NewAnthropic(client anthropic.Client, opts Options, calc *cost.Calculator) Completer {
	return &anthropicCompleter{client: client, opts: opts, calc: calc}
}

func (a *anthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.opts.Model,
		MaxTokens:   a.opts.MaxTokens,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: a.opts.Temperature,
	})
	if err != nil {
		if apiErr, ok := anthropic.AsAPIError(err); ok {
			err = classify(err, apiErr.StatusCode, apiErr.RetryAfter)
		}
		return "", eris.Wrap(err, "llm: anthropic complete")
	}

	u := resp.Usage
	logUsage("anthropic", a.opts.Model, int(u.InputTokens), int(u.OutputTokens),
		a.calc.Cached(a.opts.Model, int(u.InputTokens), int(u.OutputTokens),
			int(u.CacheCreationInputTokens), int(u.CacheReadInputTokens)))

	return resp.Text(), nil
}
