package llm

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"

	"github.com/sells-group/answer-cli/internal/cost"
)

// contentGenerator is the subset of *genai.Models the Gemini adapter uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type geminiCompleter struct {
	models contentGenerator
	opts   Options
	calc   *cost.Calculator
}

// NewGemini returns a Completer backed by the Gemini API.
func NewGemini(ctx context.Context, apiKey string, opts Options, calc *cost.Calculator) (Completer, error) {
	if apiKey == "" {
		return nil, eris.New("llm: gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, eris.Wrap(err, "llm: create gemini client")
	}
	return newGemini(client.Models, opts, calc), nil
}

func newGemini(models contentGenerator, opts Options, calc *cost.Calculator) *geminiCompleter {
	return &geminiCompleter{models: models, opts: opts, calc: calc}
}

func (g *geminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if g.opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(g.opts.MaxTokens)
	}
	if g.opts.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*g.opts.Temperature))
	}

	resp, err := g.models.GenerateContent(ctx, g.opts.Model, genai.Text(prompt), cfg)
	if err != nil {
		if code, ok := geminiStatus(err); ok {
			err = classify(err, code, "")
		}
		return "", eris.Wrap(err, "llm: gemini complete")
	}
	if len(resp.Candidates) == 0 {
		return "", eris.New("llm: gemini returned no candidates")
	}

	if u := resp.UsageMetadata; u != nil {
		in, out := int(u.PromptTokenCount), int(u.CandidatesTokenCount)
		logUsage("gemini", g.opts.Model, in, out, g.calc.Tokens(g.opts.Model, in, out))
	}

	return resp.Text(), nil
}

func geminiStatus(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code, true
	}
	return 0, false
}
