package cost

import "maps"

// Rates maps a model name to its token pricing.
type Rates map[string]ModelRate

// ModelRate holds per-model token pricing (per million tokens).
type ModelRate struct {
	Input         float64 `yaml:"input" mapstructure:"input"`
	Output        float64 `yaml:"output" mapstructure:"output"`
	CacheWriteMul float64 `yaml:"cache_write_mul" mapstructure:"cache_write_mul"`
	CacheReadMul  float64 `yaml:"cache_read_mul" mapstructure:"cache_read_mul"`
}

// Calculator computes costs for model usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Tokens computes the cost of a call that consumed input and output tokens.
// Unknown models cost 0.
func (c *Calculator) Tokens(model string, input, output int) float64 {
	return c.Cached(model, input, output, 0, 0)
}

// Cached computes the cost of a call that also wrote or read prompt cache
// entries. Cache tokens are priced as input tokens scaled by the model's
// multipliers.
func (c *Calculator) Cached(model string, input, output, cacheWrite, cacheRead int) float64 {
	if c == nil {
		return 0
	}
	rate, ok := c.rates[model]
	if !ok {
		return 0
	}

	inCost := (float64(input) / 1e6) * rate.Input
	outCost := (float64(output) / 1e6) * rate.Output
	cwCost := (float64(cacheWrite) / 1e6) * rate.Input * rate.CacheWriteMul
	crCost := (float64(cacheRead) / 1e6) * rate.Input * rate.CacheReadMul

	return inCost + outCost + cwCost + crCost
}

// Known reports whether the calculator has a rate for model.
func (c *Calculator) Known(model string) bool {
	if c == nil {
		return false
	}
	_, ok := c.rates[model]
	return ok
}

// Merge returns a copy of r with overrides applied on top.
func (r Rates) Merge(overrides Rates) Rates {
	out := make(Rates, len(r)+len(overrides))
	maps.Copy(out, r)
	maps.Copy(out, overrides)
	return out
}

// DefaultRates returns the default pricing rates.
func DefaultRates() Rates {
	return Rates{
		"claude-haiku-4-5-20251001": {
			Input: 0.80, Output: 4.00,
			CacheWriteMul: 1.25, CacheReadMul: 0.1,
		},
		"claude-sonnet-4-5-20250929": {
			Input: 3.00, Output: 15.00,
			CacheWriteMul: 1.25, CacheReadMul: 0.1,
		},
		"claude-opus-4-6": {
			Input: 15.00, Output: 75.00,
			CacheWriteMul: 1.25, CacheReadMul: 0.1,
		},
		"gpt-4o":                {Input: 2.50, Output: 10.00, CacheReadMul: 0.5},
		"gpt-4o-mini":           {Input: 0.15, Output: 0.60, CacheReadMul: 0.5},
		"gemini-2.5-flash":      {Input: 0.30, Output: 2.50},
		"gemini-2.5-pro":        {Input: 1.25, Output: 10.00},
		"gemini-2.5-flash-lite": {Input: 0.10, Output: 0.40},
	}
}
