package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/sells-group/answer-cli/internal/cost"
	"github.com/sells-group/answer-cli/internal/resilience"
)

type fakeGenerator struct {
	gotModel  string
	gotPrompt string
	gotConfig *genai.GenerateContentConfig
	resp      *genai.GenerateContentResponse
	err       error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.gotModel = model
	f.gotConfig = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.gotPrompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: text}}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     120,
			CandidatesTokenCount: 12,
		},
	}
}

func TestGemini_Complete(t *testing.T) {
	temp := 0.0
	gen := &fakeGenerator{resp: textResponse("[1_1]")}
	c := newGemini(gen, Options{Model: "gemini-2.5-flash", MaxTokens: 1024, Temperature: &temp},
		cost.NewCalculator(cost.DefaultRates()))

	out, err := c.Complete(context.Background(), "Вопрос")
	require.NoError(t, err)
	assert.Equal(t, "[1_1]", out)
	assert.Equal(t, "gemini-2.5-flash", gen.gotModel)
	assert.Equal(t, "Вопрос", gen.gotPrompt)
	require.NotNil(t, gen.gotConfig)
	assert.Equal(t, int32(1024), gen.gotConfig.MaxOutputTokens)
	require.NotNil(t, gen.gotConfig.Temperature)
	assert.InDelta(t, 0.0, *gen.gotConfig.Temperature, 0.0001)
}

func TestGemini_NoCandidates(t *testing.T) {
	gen := &fakeGenerator{resp: &genai.GenerateContentResponse{}}
	_, err := newGemini(gen, Options{Model: "gemini-2.5-flash"}, nil).Complete(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestGemini_ErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantTransient bool
	}{
		{"unavailable", genai.APIError{Code: 503, Message: "unavailable"}, true},
		{"wrapped rate limit", fmt.Errorf("call: %w", genai.APIError{Code: 429}), true},
		{"invalid argument", genai.APIError{Code: 400}, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{err: tt.err}
			_, err := newGemini(gen, Options{Model: "m"}, nil).Complete(context.Background(), "p")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "llm: gemini complete")
			assert.Equal(t, tt.wantTransient, resilience.IsTransient(err))
		})
	}
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", Options{}, nil)
	require.Error(t, err)
}
