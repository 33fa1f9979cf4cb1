package model

import (
	"encoding/json"
	"regexp"

	"github.com/rotisserie/eris"
)

// documentIDPattern is the full-string shape of a document identifier.
var documentIDPattern = regexp.MustCompile(`^\d+_\d+$`)

// Document is a candidate document supplied by the retrieval service.
// The pipeline only reads it.
type Document struct {
	ID    string `json:"doc_id"`
	Title string `json:"title"`
	Body  string `json:"paragraph"`
}

// UnmarshalJSON accepts both the retrieval payload field names
// (doc_id, paragraph) and the short aliases (id, body).
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw struct {
		DocID     string `json:"doc_id"`
		ID        string `json:"id"`
		Title     string `json:"title"`
		Paragraph string `json:"paragraph"`
		Body      string `json:"body"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.ID = raw.DocID
	if d.ID == "" {
		d.ID = raw.ID
	}
	d.Title = raw.Title
	d.Body = raw.Paragraph
	if d.Body == "" {
		d.Body = raw.Body
	}
	return nil
}

// Validate reports whether the document identifier has the <int>_<int> shape.
func (d Document) Validate() error {
	if !documentIDPattern.MatchString(d.ID) {
		return eris.Errorf("document id %q does not match <int>_<int>", d.ID)
	}
	return nil
}

// ValidateDocuments validates every document in the set.
func ValidateDocuments(docs []Document) error {
	for i, d := range docs {
		if err := d.Validate(); err != nil {
			return eris.Wrapf(err, "document %d", i)
		}
	}
	return nil
}

// Index maps document identifiers to documents for one request.
// It is built once and never mutated afterwards.
type Index struct {
	byID  map[string]Document
	order []string
}

// NewIndex builds an Index from the candidate set. When an identifier repeats,
// the later document wins but keeps the position of the first occurrence.
func NewIndex(docs []Document) *Index {
	idx := &Index{
		byID:  make(map[string]Document, len(docs)),
		order: make([]string, 0, len(docs)),
	}
	for _, d := range docs {
		if _, seen := idx.byID[d.ID]; !seen {
			idx.order = append(idx.order, d.ID)
		}
		idx.byID[d.ID] = d
	}
	return idx
}

// Lookup returns the document with the given identifier.
func (idx *Index) Lookup(id string) (Document, bool) {
	d, ok := idx.byID[id]
	return d, ok
}

// Documents returns the indexed documents in input order.
func (idx *Index) Documents() []Document {
	out := make([]Document, 0, len(idx.order))
	for _, id := range idx.order {
		out = append(out, idx.byID[id])
	}
	return out
}

// Len returns the number of distinct documents.
func (idx *Index) Len() int {
	return len(idx.order)
}
