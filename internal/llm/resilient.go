package llm

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/answer-cli/internal/resilience"
)

// ResilientOptions configures the wrapper returned by Resilient. A nil
// Breaker or Limiter disables that layer; a zero Timeout leaves attempts
// bounded only by the caller's context.
type ResilientOptions struct {
	Retry   resilience.RetryConfig
	Breaker *resilience.CircuitBreaker
	Limiter *resilience.AdaptiveLimiter
	Timeout time.Duration
}

type resilientCompleter struct {
	next Completer
	opts ResilientOptions
}

// Resilient wraps c so that each call waits on the rate limiter, runs
// through the circuit breaker, and is retried with backoff on transient
// failures. An open circuit fails fast without retrying.
func Resilient(c Completer, opts ResilientOptions) Completer {
	return &resilientCompleter{next: c, opts: opts}
}

func (r *resilientCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return resilience.DoVal(ctx, r.opts.Retry, func(ctx context.Context) (string, error) {
		if err := r.opts.Limiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "llm: rate limit wait")
		}

		out, err := r.attempt(ctx, prompt)
		switch {
		case err == nil:
			r.opts.Limiter.OnSuccess()
		case resilience.IsRateLimited(err):
			r.opts.Limiter.OnRateLimit()
		}
		return out, err
	})
}

func (r *resilientCompleter) attempt(ctx context.Context, prompt string) (string, error) {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}
	if r.opts.Breaker == nil {
		return r.next.Complete(ctx, prompt)
	}
	return resilience.ExecuteVal(ctx, r.opts.Breaker, func(ctx context.Context) (string, error) {
		return r.next.Complete(ctx, prompt)
	})
}
