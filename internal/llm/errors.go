package llm

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/answer-cli/internal/resilience"
)

// ErrNoProvider is returned by New when no provider has credentials.
var ErrNoProvider = eris.New("llm: no provider configured")

// classify marks provider errors carrying a retryable HTTP status as
// transient so the retry and breaker layers can act on them.
func classify(err error, status int, retryAfter string) error {
	if !resilience.IsTransientHTTPStatus(status) {
		return err
	}
	return resilience.NewTransientError(err, status).
		WithRetryAfter(resilience.ParseRetryAfter(retryAfter, time.Now()))
}
