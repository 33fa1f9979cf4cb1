package model

import "time"

// RunStatus represents the current state of an answer run.
type RunStatus string

const (
	RunStatusQueued       RunStatus = "queued"
	RunStatusSelecting    RunStatus = "selecting"
	RunStatusExtracting   RunStatus = "extracting"
	RunStatusSynthesizing RunStatus = "synthesizing"
	RunStatusComplete     RunStatus = "complete"
	RunStatusFailed       RunStatus = "failed"
)

// RunInput is the request recorded when a run is created.
type RunInput struct {
	Question      string   `json:"question"`
	Context       string   `json:"context,omitempty"`
	DocumentIDs   []string `json:"document_ids"`
	DocumentCount int      `json:"document_count"`
}

// Run represents a single question answered against one document set.
type Run struct {
	ID        string     `json:"id"`
	Input     RunInput   `json:"input"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult holds the final outcome of a run.
type RunResult struct {
	Answer FinalAnswer `json:"answer"`

	// CitedDocumentIDs is the deduplicated set of documents referenced by the
	// extraction stage. It is informational and never feeds Answer.
	CitedDocumentIDs []string      `json:"cited_document_ids"`
	Stages           []StageResult `json:"stages"`
	DurationMs       int64         `json:"duration_ms"`
}

// Result is what one orchestrator invocation produces.
type Result struct {
	Selection  Selection     `json:"selection"`
	Extraction Extraction    `json:"extraction"`
	Answer     FinalAnswer   `json:"answer"`
	Stages     []StageResult `json:"stages"`
}

// StageStatus represents the outcome of a single stage.
type StageStatus string

const (
	StageStatusComplete StageStatus = "complete"
	StageStatusFailed   StageStatus = "failed"
)

// StageResult traces one render → complete → parse step.
type StageResult struct {
	Name     string         `json:"name"`
	Status   StageStatus    `json:"status"`
	Duration int64          `json:"duration_ms"`
	Reply    string         `json:"reply,omitempty"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
