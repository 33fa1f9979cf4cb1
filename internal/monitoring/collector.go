// Package monitoring summarizes recorded runs and raises alerts when the
// failure or no-information rate crosses a threshold.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/answer-cli/internal/model"
	"github.com/sells-group/answer-cli/internal/store"
)

// maxSnapshotRuns caps how many runs one snapshot reads.
const maxSnapshotRuns = 10000

// MetricsSnapshot holds a point-in-time view of run health.
type MetricsSnapshot struct {
	Total    int `json:"total"`
	Complete int `json:"complete"`
	Failed   int `json:"failed"`
	InFlight int `json:"in_flight"`

	// Outcome of completed runs. NoInformation counts runs where selection
	// or extraction returned the sentinel; those runs are also Answers.
	Answers       int `json:"answers"`
	NoInformation int `json:"no_information"`
	ParseFailures int `json:"parse_failures"`

	FailRate          float64 `json:"fail_rate"`
	NoInformationRate float64 `json:"no_information_rate"`
	AvgDurationMs     int64   `json:"avg_duration_ms"`

	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// RunLister is the part of store.Store the collector reads.
type RunLister interface {
	ListRuns(ctx context.Context, filter store.RunFilter) ([]model.Run, error)
}

// Collector gathers metrics from the run store.
type Collector struct {
	store RunLister
}

// NewCollector creates a new metrics collector.
func NewCollector(st RunLister) *Collector {
	return &Collector{store: st}
}

// Collect gathers a snapshot of runs created within the lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	now := time.Now().UTC()
	snap := &MetricsSnapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   now,
	}

	runs, err := c.store.ListRuns(ctx, store.RunFilter{
		CreatedAfter: now.Add(-time.Duration(lookbackHours) * time.Hour),
		Limit:        maxSnapshotRuns,
	})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list runs")
	}

	snap.Total = len(runs)
	var totalDuration int64
	for _, r := range runs {
		switch r.Status {
		case model.RunStatusComplete:
			snap.Complete++
		case model.RunStatusFailed:
			snap.Failed++
		default:
			snap.InFlight++
		}
		if r.Status != model.RunStatusComplete || r.Result == nil {
			continue
		}

		totalDuration += r.Result.DurationMs
		if r.Result.Answer.IsParseFailure() {
			snap.ParseFailures++
		} else {
			snap.Answers++
		}
		if reportedNoInformation(r.Result.Stages) {
			snap.NoInformation++
		}
	}

	if finished := snap.Complete + snap.Failed; finished > 0 {
		snap.FailRate = float64(snap.Failed) / float64(finished)
	}
	if snap.Complete > 0 {
		snap.NoInformationRate = float64(snap.NoInformation) / float64(snap.Complete)
		snap.AvgDurationMs = totalDuration / int64(snap.Complete)
	}
	return snap, nil
}

// reportedNoInformation reports whether any stage trace carries the
// no-information kind.
func reportedNoInformation(stages []model.StageResult) bool {
	for _, st := range stages {
		if kind, _ := st.Metadata["kind"].(string); kind == string(model.KindNoInformation) {
			return true
		}
	}
	return false
}
