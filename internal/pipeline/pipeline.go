// Package pipeline chains the selection, extraction and synthesis stages
// into one cited answer.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/answer-cli/internal/llm"
	"github.com/sells-group/answer-cli/internal/model"
	"github.com/sells-group/answer-cli/internal/parse"
	"github.com/sells-group/answer-cli/internal/prompt"
)

// StageHook is called before each stage starts.
type StageHook func(ctx context.Context, stage Stage)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithParser sets the parser used for model replies. The parser's
// no-information phrase is also what sentinel contexts render as.
func WithParser(p *parse.Parser) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.parser = p
		}
	}
}

// WithStageHook registers a hook called before each stage.
func WithStageHook(h StageHook) Option {
	return func(o *Orchestrator) { o.hook = h }
}

// Orchestrator runs the three stages for one document set. It owns its
// Index; build a new Orchestrator per request.
type Orchestrator struct {
	completer llm.Completer
	renderer  prompt.Renderer
	index     *model.Index
	parser    *parse.Parser
	hook      StageHook
}

// NewOrchestrator binds a completer, a template renderer and the candidate
// documents for one request.
func NewOrchestrator(c llm.Completer, r prompt.Renderer, docs []model.Document, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		completer: c,
		renderer:  r,
		index:     model.NewIndex(docs),
		parser:    parse.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Index returns the document index bound to this orchestrator.
func (o *Orchestrator) Index() *model.Index { return o.index }

// Run answers question against the bound documents. Stage 1 sees every
// candidate document.
func (o *Orchestrator) Run(ctx context.Context, question string) (*model.Result, error) {
	return o.RunWithContext(ctx, question, "")
}

// RunWithContext answers question, using candidates verbatim as the
// selection-stage context when non-empty. A completer or template failure
// aborts the run and no partial result is returned.
func (o *Orchestrator) RunWithContext(ctx context.Context, question, candidates string) (*model.Result, error) {
	log := zap.L().With(zap.Int("documents", o.index.Len()))
	phrase := o.parser.Phrases().NoInformation

	if candidates == "" {
		candidates = FormatCandidates(o.index)
	}
	stageCtx := model.TextContext(candidates)

	result := &model.Result{}
	for stage := StageSelect; stage != StageDone; stage = stage.Next() {
		if o.hook != nil {
			o.hook(ctx, stage)
		}

		start := time.Now()
		reply, err := o.complete(ctx, stage, question, stageCtx)
		if err != nil {
			log.Error("pipeline: stage failed",
				zap.String("stage", stage.String()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Error(err),
			)
			return nil, eris.Wrapf(err, "pipeline: %s stage", stage)
		}

		trace := model.StageResult{
			Name:   stage.String(),
			Status: model.StageStatusComplete,
			Reply:  reply,
		}

		switch stage {
		case StageSelect:
			result.Selection = o.parser.Selection(reply)
			stageCtx = FilterContext(result.Selection, o.index, phrase)
			trace.Metadata = map[string]any{
				"kind":     string(result.Selection.Kind),
				"selected": len(result.Selection.IDs),
			}
		case StageExtract:
			result.Extraction = o.parser.Extraction(reply)
			stageCtx = FormatCitations(result.Extraction, phrase)
			trace.Metadata = map[string]any{
				"kind":    string(result.Extraction.Kind),
				"records": len(result.Extraction.Records),
			}
		case StageSynthesize:
			result.Answer = o.parser.Synthesis(reply)
			trace.Metadata = map[string]any{
				"kind":    string(result.Answer.Kind),
				"sources": len(result.Answer.SourceDocumentIDs),
			}
		}

		trace.Duration = time.Since(start).Milliseconds()
		result.Stages = append(result.Stages, trace)
		log.Info("pipeline: stage complete",
			zap.String("stage", stage.String()),
			zap.Int64("duration_ms", trace.Duration),
			zap.Any("metadata", trace.Metadata),
		)
	}

	if result.Answer.IsParseFailure() {
		log.Warn("pipeline: synthesis reply did not match the answer format")
	}
	return result, nil
}

func (o *Orchestrator) complete(ctx context.Context, stage Stage, question string, stageCtx model.Context) (string, error) {
	text, err := o.renderer.Render(stage.Template(), map[string]string{
		prompt.VarQuestion: question,
		prompt.VarContext:  stageCtx.String(),
	})
	if err != nil {
		return "", eris.Wrap(err, "render prompt")
	}
	reply, err := o.completer.Complete(ctx, text)
	if err != nil {
		return "", eris.Wrap(err, "complete")
	}
	return reply, nil
}
