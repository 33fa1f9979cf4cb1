package pipeline

import (
	"strings"

	"github.com/sells-group/answer-cli/internal/model"
)

// FormatCitations renders extraction records as the synthesis-stage context:
// one "[sentence, id]" line per record, in extraction order. The sentinel
// passes through unchanged.
func FormatCitations(ext model.Extraction, phrase string) model.Context {
	if ext.IsNoInformation() {
		return model.NoInformationContext(phrase)
	}

	lines := make([]string, 0, len(ext.Records))
	for _, r := range ext.Records {
		lines = append(lines, "["+r.Sentence+", "+r.DocumentID+"]")
	}
	return model.TextContext(strings.Join(lines, "\n"))
}
