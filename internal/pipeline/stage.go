package pipeline

import (
	"github.com/sells-group/answer-cli/internal/model"
	"github.com/sells-group/answer-cli/internal/prompt"
)

// Stage is a position in the fixed Select → Extract → Synthesize sequence.
type Stage int

const (
	StageSelect Stage = iota
	StageExtract
	StageSynthesize
	StageDone
)

// String returns the stage name used in traces and logs.
func (s Stage) String() string {
	switch s {
	case StageSelect:
		return "select"
	case StageExtract:
		return "extract"
	case StageSynthesize:
		return "synthesize"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// Next returns the following stage. Done is terminal.
func (s Stage) Next() Stage {
	if s >= StageDone {
		return StageDone
	}
	return s + 1
}

// Template returns the prompt template id rendered for the stage.
func (s Stage) Template() string {
	switch s {
	case StageSelect:
		return prompt.Selection
	case StageExtract:
		return prompt.Extraction
	case StageSynthesize:
		return prompt.Synthesis
	default:
		return ""
	}
}

// RunStatus returns the run status reported while the stage is active.
func (s Stage) RunStatus() model.RunStatus {
	switch s {
	case StageSelect:
		return model.RunStatusSelecting
	case StageExtract:
		return model.RunStatusExtracting
	case StageSynthesize:
		return model.RunStatusSynthesizing
	default:
		return model.RunStatusComplete
	}
}
