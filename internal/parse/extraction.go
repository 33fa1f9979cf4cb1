package parse

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/answer-cli/internal/model"
)

// Extraction returns the [sentence, id] citations in an extraction reply.
// Sentences never span lines; a citation broken across a line is dropped.
func (p *Parser) Extraction(text string) model.Extraction {
	if strings.Contains(text, p.phrases.NoInformation) {
		return model.NoExtraction()
	}

	matches := citationPattern.FindAllStringSubmatch(text, -1)
	records := make([]model.ExtractionRecord, 0, len(matches))
	for _, m := range matches {
		records = append(records, model.ExtractionRecord{
			Sentence:   strings.TrimSpace(m[1]),
			DocumentID: strings.TrimSpace(m[2]),
		})
	}

	if open := strings.Count(text, "["); open > len(records) {
		zap.L().Debug("parse: unmatched citation brackets dropped",
			zap.Int("brackets", open),
			zap.Int("citations", len(records)),
		)
	}

	return model.ExtractedRecords(records)
}
