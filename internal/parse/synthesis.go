package parse

import (
	"strings"

	"github.com/sells-group/answer-cli/internal/model"
)

// Synthesis builds the final answer from the title, text and sources labels.
// If any label is missing the raw reply is returned as a parse failure.
func (p *Parser) Synthesis(text string) model.FinalAnswer {
	title, ok := p.title(text)
	if !ok {
		return model.NewParseFailure(text)
	}
	body, ok := p.body(text)
	if !ok {
		return model.NewParseFailure(text)
	}
	sources, ok := p.sources(text)
	if !ok {
		return model.NewParseFailure(text)
	}
	return model.NewAnswer(title, body, sources)
}

func (p *Parser) title(text string) (string, bool) {
	m := p.titleRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// body returns everything after the text label up to the next title or
// sources label.
func (p *Parser) body(text string) (string, bool) {
	i := strings.Index(text, p.phrases.Text)
	if i < 0 {
		return "", false
	}
	rest := text[i+len(p.phrases.Text):]
	end := len(rest)
	for _, label := range []string{p.phrases.Title, p.phrases.Sources} {
		if j := strings.Index(rest, label); j >= 0 && j < end {
			end = j
		}
	}
	return strings.TrimSpace(rest[:end]), true
}

func (p *Parser) sources(text string) ([]string, bool) {
	m := p.sourcesRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	toks := strings.Split(m[1], ",")
	ids := make([]string, len(toks))
	for i, tok := range toks {
		ids[i] = strings.TrimSpace(tok)
	}
	return ids, true
}
