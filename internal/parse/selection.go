package parse

import (
	"strings"

	"github.com/sells-group/answer-cli/internal/model"
)

// Selection returns the document identifiers named in a selection reply, in
// order of appearance and with duplicates kept. A reply naming nothing yields
// an empty, non-sentinel selection.
func (p *Parser) Selection(text string) model.Selection {
	if strings.Contains(text, p.phrases.NoInformation) {
		return model.NoSelection()
	}
	return model.SelectedIDs(identifierPattern.FindAllString(text, -1))
}
