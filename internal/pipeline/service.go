package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/answer-cli/internal/llm"
	"github.com/sells-group/answer-cli/internal/model"
	"github.com/sells-group/answer-cli/internal/parse"
	"github.com/sells-group/answer-cli/internal/prompt"
	"github.com/sells-group/answer-cli/internal/store"
)

// ErrInvalidRequest is returned for requests that fail validation.
var ErrInvalidRequest = eris.New("pipeline: invalid request")

// Request is one question with its candidate documents.
type Request struct {
	Question  string           `json:"question"`
	Context   string           `json:"context,omitempty"`
	Documents []model.Document `json:"documents"`
}

// Validate checks that the question is set and every document id is well formed.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return eris.Wrap(ErrInvalidRequest, "question is required")
	}
	if err := model.ValidateDocuments(r.Documents); err != nil {
		return eris.Wrap(ErrInvalidRequest, err.Error())
	}
	return nil
}

func (r Request) input() model.RunInput {
	ids := make([]string, 0, len(r.Documents))
	for _, d := range r.Documents {
		ids = append(ids, d.ID)
	}
	return model.RunInput{
		Question:      r.Question,
		Context:       r.Context,
		DocumentIDs:   ids,
		DocumentCount: len(r.Documents),
	}
}

// Service answers requests and records each one as a run. It is safe for
// concurrent use: every request gets its own Orchestrator.
type Service struct {
	completer llm.Completer
	renderer  prompt.Renderer
	parser    *parse.Parser
	store     store.Store
}

// NewService creates a Service. A nil parser uses the default phrases; a nil
// store disables run persistence.
func NewService(c llm.Completer, r prompt.Renderer, p *parse.Parser, st store.Store) *Service {
	if p == nil {
		p = parse.Default()
	}
	return &Service{completer: c, renderer: r, parser: p, store: st}
}

// Answer runs the pipeline for req. Invalid requests return
// ErrInvalidRequest and no run. When the pipeline fails, the failed run is
// returned together with the error.
func (s *Service) Answer(ctx context.Context, req Request) (*model.Run, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	run, err := s.createRun(ctx, req.input())
	if err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("run_id", run.ID))
	log.Info("pipeline: starting run", zap.Int("documents", len(req.Documents)))

	start := time.Now()
	orch := NewOrchestrator(s.completer, s.renderer, req.Documents,
		WithParser(s.parser),
		WithStageHook(func(ctx context.Context, stage Stage) {
			s.setStatus(ctx, run, stage.RunStatus())
		}),
	)

	res, err := orch.RunWithContext(ctx, req.Question, req.Context)
	if err != nil {
		run.Status = model.RunStatusFailed
		run.Error = err.Error()
		run.UpdatedAt = time.Now().UTC()
		if s.store != nil {
			// The request context may already be canceled.
			if failErr := s.store.FailRun(context.WithoutCancel(ctx), run.ID, run.Error); failErr != nil {
				log.Warn("pipeline: failed to record run failure", zap.Error(failErr))
			}
		}
		return run, err
	}

	result := &model.RunResult{
		Answer:           res.Answer,
		CitedDocumentIDs: AggregateSources(res.Extraction.Records),
		Stages:           res.Stages,
		DurationMs:       time.Since(start).Milliseconds(),
	}
	if s.store != nil {
		if err := s.store.CompleteRun(ctx, run.ID, result); err != nil {
			err = eris.Wrap(err, "pipeline: complete run")
			run.Status = model.RunStatusFailed
			run.Error = err.Error()
			run.UpdatedAt = time.Now().UTC()
			if failErr := s.store.FailRun(context.WithoutCancel(ctx), run.ID, run.Error); failErr != nil {
				log.Warn("pipeline: failed to record run failure", zap.Error(failErr))
			}
			return run, err
		}
	}

	run.Status = model.RunStatusComplete
	run.Result = result
	run.UpdatedAt = time.Now().UTC()
	log.Info("pipeline: run complete",
		zap.String("answer_kind", string(res.Answer.Kind)),
		zap.Int64("duration_ms", result.DurationMs),
	)
	return run, nil
}

func (s *Service) createRun(ctx context.Context, input model.RunInput) (*model.Run, error) {
	if s.store == nil {
		now := time.Now().UTC()
		return &model.Run{
			ID:        uuid.New().String(),
			Input:     input,
			Status:    model.RunStatusQueued,
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}
	run, err := s.store.CreateRun(ctx, input)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	return run, nil
}

func (s *Service) setStatus(ctx context.Context, run *model.Run, status model.RunStatus) {
	run.Status = status
	if s.store == nil {
		return
	}
	if err := s.store.UpdateRunStatus(ctx, run.ID, status); err != nil {
		zap.L().Warn("pipeline: failed to update status",
			zap.String("run_id", run.ID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
}
