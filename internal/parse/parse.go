// Package parse converts free-text model replies into typed stage results.
//
// Every parser is total: it never returns an error. Replies carrying the
// "no information" phrase map to the sentinel before any pattern matching,
// and a synthesis reply missing one of its labels maps to a parse-failure
// record holding the raw text.
package parse

import (
	"regexp"

	"github.com/sells-group/answer-cli/internal/model"
)

// Upstream phrasing the default prompts ask the model to use.
const (
	DefaultNoInformation = "В базе знаний нет информации"
	DefaultTitleLabel    = "Заголовок:"
	DefaultTextLabel     = "Текст:"
	DefaultSourcesLabel  = "Подробную информацию ищите в документах:"
)

var (
	identifierPattern = regexp.MustCompile(`\d+_\d+`)
	citationPattern   = regexp.MustCompile(`\[(.*?),\s*(\d+_\d+)\]`)
)

// Phrases are the literal strings the parsers look for.
type Phrases struct {
	NoInformation string `yaml:"no_information" mapstructure:"no_information"`
	Title         string `yaml:"title" mapstructure:"title"`
	Text          string `yaml:"text" mapstructure:"text"`
	Sources       string `yaml:"sources" mapstructure:"sources"`
}

// DefaultPhrases returns the upstream-compatible phrase set.
func DefaultPhrases() Phrases {
	return Phrases{
		NoInformation: DefaultNoInformation,
		Title:         DefaultTitleLabel,
		Text:          DefaultTextLabel,
		Sources:       DefaultSourcesLabel,
	}
}

func (p Phrases) withDefaults() Phrases {
	d := DefaultPhrases()
	if p.NoInformation == "" {
		p.NoInformation = d.NoInformation
	}
	if p.Title == "" {
		p.Title = d.Title
	}
	if p.Text == "" {
		p.Text = d.Text
	}
	if p.Sources == "" {
		p.Sources = d.Sources
	}
	return p
}

// Parser holds a phrase set and the label patterns compiled from it.
// A Parser is immutable and safe for concurrent use.
type Parser struct {
	phrases   Phrases
	titleRe   *regexp.Regexp
	sourcesRe *regexp.Regexp
}

// NewParser compiles a Parser. Empty phrases fall back to the defaults.
func NewParser(p Phrases) *Parser {
	p = p.withDefaults()
	return &Parser{
		phrases:   p,
		titleRe:   regexp.MustCompile(regexp.QuoteMeta(p.Title) + `\s*(.*)`),
		sourcesRe: regexp.MustCompile(regexp.QuoteMeta(p.Sources) + `\s*(.*)`),
	}
}

// Phrases returns the effective phrase set.
func (p *Parser) Phrases() Phrases { return p.phrases }

// NoInformationContext returns the sentinel context rendered with this
// parser's phrase.
func (p *Parser) NoInformationContext() model.Context {
	return model.NoInformationContext(p.phrases.NoInformation)
}

var defaultParser = NewParser(DefaultPhrases())

// Default returns the parser built from DefaultPhrases.
func Default() *Parser { return defaultParser }

// Selection parses a selection reply with the default phrases.
func Selection(text string) model.Selection { return defaultParser.Selection(text) }

// Extraction parses an extraction reply with the default phrases.
func Extraction(text string) model.Extraction { return defaultParser.Extraction(text) }

// Synthesis parses a synthesis reply with the default phrases.
func Synthesis(text string) model.FinalAnswer { return defaultParser.Synthesis(text) }
