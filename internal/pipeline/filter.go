package pipeline

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/answer-cli/internal/model"
)

// documentHeader introduces each document block in stage context. The
// wording matches the upstream prompts.
const documentHeader = "Из документа %s (заголовок: %s):"

// blockSeparator separates document blocks.
const blockSeparator = "\n\n"

// FilterContext builds the extraction-stage context from a selection.
// The sentinel passes through unchanged. Otherwise each selected id is looked
// up in order; unknown ids are skipped. An empty selection, or one where no
// id resolves, yields empty text rather than the sentinel.
func FilterContext(sel model.Selection, idx *model.Index, phrase string) model.Context {
	if sel.IsNoInformation() {
		return model.NoInformationContext(phrase)
	}

	blocks := make([]string, 0, len(sel.IDs))
	for _, id := range sel.IDs {
		doc, ok := idx.Lookup(id)
		if !ok {
			zap.L().Debug("pipeline: selected document not in candidate set", zap.String("doc_id", id))
			continue
		}
		blocks = append(blocks, formatDocument(doc))
	}
	return model.TextContext(strings.Join(blocks, blockSeparator))
}

// FormatCandidates renders every indexed document, in input order, with the
// same block layout FilterContext uses.
func FormatCandidates(idx *model.Index) string {
	docs := idx.Documents()
	blocks := make([]string, 0, len(docs))
	for _, d := range docs {
		blocks = append(blocks, formatDocument(d))
	}
	return strings.Join(blocks, blockSeparator)
}

func formatDocument(d model.Document) string {
	return fmt.Sprintf(documentHeader, d.ID, d.Title) + "\n" + d.Body
}
