package pipeline

import (
	"sort"

	"github.com/sells-group/answer-cli/internal/model"
)

// AggregateSources returns the distinct document ids referenced by records,
// sorted as strings: "10_1" sorts before "2_1".
//
// The final answer's sources come from the synthesis reply, not from here.
// Service records this list next to the answer for auditing.
func AggregateSources(records []model.ExtractionRecord) []string {
	seen := make(map[string]struct{}, len(records))
	ids := make([]string, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.DocumentID]; ok {
			continue
		}
		seen[r.DocumentID] = struct{}{}
		ids = append(ids, r.DocumentID)
	}
	sort.Strings(ids)
	return ids
}
