package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/answer-cli/internal/config"
	"github.com/sells-group/answer-cli/internal/llm"
	"github.com/sells-group/answer-cli/internal/parse"
	"github.com/sells-group/answer-cli/internal/pipeline"
	"github.com/sells-group/answer-cli/internal/prompt"
	"github.com/sells-group/answer-cli/internal/resilience"
	"github.com/sells-group/answer-cli/internal/store"
)

// answerEnv holds everything the answer/batch/serve/mcp commands need.
type answerEnv struct {
	Store   store.Store // nil when persistence is disabled
	Prompts *prompt.Store
	Service *pipeline.Service

	stopWatch context.CancelFunc
}

// Close stops the prompt watcher and releases the store.
func (e *answerEnv) Close() {
	if e.stopWatch != nil {
		e.stopWatch()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initService validates the config for mode, then builds the completer,
// prompt store, parser and (unless noStore) the run store. Callers should
// defer env.Close().
func initService(ctx context.Context, mode string, noStore bool) (*answerEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	completer, err := llm.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	prompts, err := prompt.NewStore(cfg.Prompts.Path)
	if err != nil {
		return nil, err
	}

	env := &answerEnv{Prompts: prompts}
	if cfg.Prompts.Watch {
		watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		env.stopWatch = cancel
		go func() {
			if err := prompts.Watch(watchCtx); err != nil {
				zap.L().Warn("prompt watcher stopped", zap.Error(err))
			}
		}()
	}

	if !noStore {
		st, err := openStore(ctx)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.Store = st
	}

	env.Service = pipeline.NewService(completer, prompts, parse.NewParser(cfg.Phrases), env.Store)
	return env, nil
}

// openStore opens the configured store and applies migrations.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initStore connects to the run store. Postgres connections are retried
// since the database may still be starting.
func initStore(ctx context.Context, sc config.StoreConfig) (store.Store, error) {
	switch sc.Driver {
	case config.DriverSQLite:
		dsn := sc.DatabaseURL
		if dsn == "" {
			dsn = "answers.db"
		}
		return store.NewSQLite(dsn)
	case config.DriverPostgres:
		retry := resilience.RetryConfig{
			MaxAttempts:    5,
			InitialBackoff: 500 * time.Millisecond,
			MaxBackoff:     10 * time.Second,
			Multiplier:     2,
			JitterFraction: 0.25,
			ShouldRetry:    func(error) bool { return true },
			OnRetry:        resilience.RetryLogger("postgres", "connect"),
		}
		return resilience.DoVal(ctx, retry, func(ctx context.Context) (store.Store, error) {
			return store.NewPostgres(ctx, sc.DatabaseURL, &store.PoolConfig{
				MaxConns: sc.MaxConns,
				MinConns: sc.MinConns,
			})
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", sc.Driver)
	}
}
