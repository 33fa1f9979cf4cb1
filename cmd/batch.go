package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/answer-cli/internal/config"
	"github.com/sells-group/answer-cli/internal/model"
	"github.com/sells-group/answer-cli/internal/pipeline"
)

// maxLineBytes bounds a single JSONL request line.
const maxLineBytes = 16 << 20

var (
	batchInput       string
	batchConcurrency int
	batchNoStore     bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Answer every request in a JSONL file",
	Long:  "Each input line is {question, context?, documents}. Lines run concurrently; each prints one JSON result line.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		f, err := os.Open(batchInput)
		if err != nil {
			return eris.Wrap(err, "open batch input")
		}
		defer f.Close() //nolint:errcheck

		reqs, err := readRequests(f)
		if err != nil {
			return err
		}

		env, err := initService(ctx, config.ModeAnswer, batchNoStore)
		if err != nil {
			return err
		}
		defer env.Close()

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrent
		}

		summary, err := processBatch(ctx, reqs, concurrency, env.Service, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if summary.Failed > 0 {
			return eris.Errorf("batch: %d of %d requests failed", summary.Failed, summary.Total)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchInput, "input", "", "JSONL file of requests (required)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "parallel requests (default from config)")
	batchCmd.Flags().BoolVar(&batchNoStore, "no-store", false, "do not record runs")
	_ = batchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(batchCmd)
}

// batchRequest is one decoded input line.
type batchRequest struct {
	Line    int
	Request pipeline.Request
}

// batchResult is one output line.
type batchResult struct {
	Line  int        `json:"line"`
	Run   *model.Run `json:"run,omitempty"`
	Error string     `json:"error,omitempty"`
}

// batchSummary counts the outcome of a batch.
type batchSummary struct {
	Total     int
	Succeeded int64
	Failed    int64
}

// readRequests parses one request per non-blank line, keeping the line
// number each came from.
func readRequests(r io.Reader) ([]batchRequest, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var reqs []batchRequest
	line := 0
	for sc.Scan() {
		line++
		text := sc.Bytes()
		if len(bytes.TrimSpace(text)) == 0 {
			continue
		}
		var req pipeline.Request
		if err := json.Unmarshal(text, &req); err != nil {
			return nil, eris.Wrapf(err, "batch: decode line %d", line)
		}
		reqs = append(reqs, batchRequest{Line: line, Request: req})
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "batch: read input")
	}
	return reqs, nil
}

// processBatch answers reqs with at most concurrency in flight. A failed
// request is logged and counted; it never aborts the batch.
func processBatch(ctx context.Context, reqs []batchRequest, concurrency int, svc answerer, out io.Writer) (batchSummary, error) {
	summary := batchSummary{Total: len(reqs)}
	if len(reqs) == 0 {
		zap.L().Info("batch: no requests found")
		return summary, nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	zap.L().Info("batch: processing",
		zap.Int("requests", len(reqs)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var (
		succeeded, failed atomic.Int64
		mu                sync.Mutex
	)
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)

	for _, req := range reqs {
		g.Go(func() error {
			res := batchResult{Line: req.Line}
			log := zap.L().With(zap.Int("line", res.Line))

			run, err := svc.Answer(gctx, req.Request)
			res.Run = run
			if err != nil {
				failed.Add(1)
				res.Error = err.Error()
				log.Error("batch: request failed", zap.Error(err))
			} else {
				succeeded.Add(1)
				log.Info("batch: request complete",
					zap.String("run_id", run.ID),
					zap.String("answer_kind", string(run.Result.Answer.Kind)),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			if err := enc.Encode(res); err != nil {
				return eris.Wrap(err, "batch: write result")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, eris.Wrap(err, "batch: process")
	}

	summary.Succeeded = succeeded.Load()
	summary.Failed = failed.Load()
	zap.L().Info("batch: complete",
		zap.Int64("succeeded", summary.Succeeded),
		zap.Int64("failed", summary.Failed),
	)
	return summary, nil
}
