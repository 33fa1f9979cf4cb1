package llm

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/answer-cli/internal/cost"
	"github.com/sells-group/answer-cli/pkg/openai"
)

type openAICompleter struct {
	client   openai.Client
	provider string
	opts     Options
	calc     *cost.Calculator
}

// NewOpenAI returns a Completer backed by an OpenAI-compatible
// /chat/completions endpoint. provider names the endpoint in logs
// ("openai" or "aggregator").
func NewOpenAI(client openai.Client, provider string, opts Options, calc *cost.Calculator) Completer {
	return &openAICompleter{client: client, provider: provider, opts: opts, calc: calc}
}

func (o *openAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       o.opts.Model,
		Messages:    []openai.Message{{Role: "user", Content: prompt}},
		Temperature: o.opts.Temperature,
	}
	if o.opts.MaxTokens > 0 {
		maxTokens := int(o.opts.MaxTokens)
		req.MaxTokens = &maxTokens
	}

	resp, err := o.client.ChatCompletion(ctx, req)
	if err != nil {
		if se, ok := openai.AsStatusError(err); ok {
			err = classify(err, se.StatusCode, se.RetryAfter)
		}
		return "", eris.Wrapf(err, "llm: %s complete", o.provider)
	}

	text, err := resp.Text()
	if err != nil {
		return "", eris.Wrapf(err, "llm: %s complete", o.provider)
	}

	model := resp.Model
	if model == "" {
		model = o.opts.Model
	}
	logUsage(o.provider, model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens,
		o.calc.Tokens(model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens))

	return text, nil
}
