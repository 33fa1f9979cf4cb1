package model

// Kind tags stage outputs that may carry the "no information" sentinel.
type Kind string

const (
	// KindData means the stage produced structured data (possibly empty).
	KindData Kind = "data"
	// KindNoInformation means the model reported nothing relevant.
	KindNoInformation Kind = "no_information"
)

// Selection is the parsed output of the selection stage.
type Selection struct {
	Kind Kind     `json:"kind"`
	IDs  []string `json:"ids,omitempty"`
}

// SelectedIDs builds a data selection. A nil slice is normalized to empty.
func SelectedIDs(ids []string) Selection {
	if ids == nil {
		ids = []string{}
	}
	return Selection{Kind: KindData, IDs: ids}
}

// NoSelection is the sentinel selection.
func NoSelection() Selection {
	return Selection{Kind: KindNoInformation}
}

// IsNoInformation reports whether the selection is the sentinel.
func (s Selection) IsNoInformation() bool { return s.Kind == KindNoInformation }

// ExtractionRecord asserts that a sentence is supported by a document.
type ExtractionRecord struct {
	Sentence   string `json:"sentence"`
	DocumentID string `json:"doc_id"`
}

// Extraction is the parsed output of the extraction stage.
type Extraction struct {
	Kind    Kind               `json:"kind"`
	Records []ExtractionRecord `json:"records,omitempty"`
}

// ExtractedRecords builds a data extraction. A nil slice is normalized to empty.
func ExtractedRecords(records []ExtractionRecord) Extraction {
	if records == nil {
		records = []ExtractionRecord{}
	}
	return Extraction{Kind: KindData, Records: records}
}

// NoExtraction is the sentinel extraction.
func NoExtraction() Extraction {
	return Extraction{Kind: KindNoInformation}
}

// IsNoInformation reports whether the extraction is the sentinel.
func (e Extraction) IsNoInformation() bool { return e.Kind == KindNoInformation }

// Context is the text handed to a stage template as its context variable.
// It is either rendered data or the sentinel; Sentinel holds the phrase used
// when rendering the latter.
type Context struct {
	Kind     Kind   `json:"kind"`
	Text     string `json:"text,omitempty"`
	Sentinel string `json:"-"`
}

// TextContext wraps rendered stage context.
func TextContext(text string) Context {
	return Context{Kind: KindData, Text: text}
}

// NoInformationContext wraps the sentinel, rendered as phrase.
func NoInformationContext(phrase string) Context {
	return Context{Kind: KindNoInformation, Sentinel: phrase}
}

// IsNoInformation reports whether the context is the sentinel.
func (c Context) IsNoInformation() bool { return c.Kind == KindNoInformation }

// String returns what a template sees for this context.
func (c Context) String() string {
	if c.IsNoInformation() {
		return c.Sentinel
	}
	return c.Text
}

// AnswerKind tags the final record.
type AnswerKind string

const (
	AnswerKindAnswer       AnswerKind = "answer"
	AnswerKindParseFailure AnswerKind = "parse_failure"
)

// ParseFailureMessage is attached to every parse-failure record.
const ParseFailureMessage = "Failed to parse the final answer."

// FinalAnswer is the structured result of the synthesis stage.
type FinalAnswer struct {
	Kind              AnswerKind `json:"kind"`
	Title             string     `json:"title,omitempty"`
	Text              string     `json:"text,omitempty"`
	SourceDocumentIDs []string   `json:"source_docs,omitempty"`
	Error             string     `json:"error,omitempty"`
	RawText           string     `json:"raw_output,omitempty"`
}

// NewAnswer builds a successfully parsed answer.
func NewAnswer(title, text string, sources []string) FinalAnswer {
	if sources == nil {
		sources = []string{}
	}
	return FinalAnswer{
		Kind:              AnswerKindAnswer,
		Title:             title,
		Text:              text,
		SourceDocumentIDs: sources,
	}
}

// NewParseFailure carries the untouched model reply.
func NewParseFailure(raw string) FinalAnswer {
	return FinalAnswer{
		Kind:    AnswerKindParseFailure,
		Error:   ParseFailureMessage,
		RawText: raw,
	}
}

// IsParseFailure reports whether the synthesis reply could not be parsed.
func (a FinalAnswer) IsParseFailure() bool { return a.Kind == AnswerKindParseFailure }
