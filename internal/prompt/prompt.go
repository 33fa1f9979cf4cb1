// Package prompt loads the named stage templates and renders them.
package prompt

import (
	_ "embed"
	"sort"
	"strings"
	"text/template"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Template identifiers, one per pipeline stage.
const (
	Selection  = "selection"
	Extraction = "extraction"
	Synthesis  = "synthesis"
)

// Template variable names every stage template must accept.
const (
	VarQuestion = "question"
	VarContext  = "context"
)

// IDs lists the template identifiers in stage order.
var IDs = []string{Selection, Extraction, Synthesis}

// ErrUnknownTemplate is returned when rendering an identifier with no template.
var ErrUnknownTemplate = eris.New("prompt: unknown template")

//go:embed defaults.yaml
var defaultsYAML []byte

// Renderer renders a named template with string variables. Implementations
// must be free of side effects.
type Renderer interface {
	Render(id string, vars map[string]string) (string, error)
}

// entry is one template as stored in the YAML file.
type entry struct {
	Description string `yaml:"description"`
	Template    string `yaml:"template"`
}

// Set is an immutable collection of compiled templates.
type Set struct {
	templates    map[string]*template.Template
	descriptions map[string]string
}

// Defaults returns the built-in template set.
func Defaults() *Set {
	s, err := parse(defaultsYAML, nil)
	if err != nil {
		panic(err)
	}
	return s
}

// Load parses YAML template definitions. Templates missing from data are
// taken from the built-in defaults.
func Load(data []byte) (*Set, error) {
	return parse(data, Defaults())
}

func parse(data []byte, base *Set) (*Set, error) {
	var entries map[string]entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrap(err, "prompt: unmarshal templates")
	}

	s := &Set{
		templates:    make(map[string]*template.Template),
		descriptions: make(map[string]string),
	}
	if base != nil {
		for id, t := range base.templates {
			s.templates[id] = t
			s.descriptions[id] = base.descriptions[id]
		}
	}

	for id, e := range entries {
		if strings.TrimSpace(e.Template) == "" {
			return nil, eris.Errorf("prompt: template %q is empty", id)
		}
		t, err := template.New(id).Option("missingkey=error").Parse(e.Template)
		if err != nil {
			return nil, eris.Wrapf(err, "prompt: parse template %q", id)
		}
		s.templates[id] = t
		s.descriptions[id] = e.Description
	}

	for _, id := range IDs {
		if _, ok := s.templates[id]; !ok {
			return nil, eris.Errorf("prompt: missing template %q", id)
		}
		if _, err := s.Render(id, sampleVars()); err != nil {
			return nil, eris.Wrapf(err, "prompt: template %q must accept only %s and %s", id, VarQuestion, VarContext)
		}
	}
	return s, nil
}

// Render executes the named template.
func (s *Set) Render(id string, vars map[string]string) (string, error) {
	t, ok := s.templates[id]
	if !ok {
		return "", eris.Wrapf(ErrUnknownTemplate, "%q", id)
	}
	var b strings.Builder
	if err := t.Execute(&b, vars); err != nil {
		return "", eris.Wrapf(err, "prompt: render %q", id)
	}
	return b.String(), nil
}

// Names returns the identifiers of all templates in the set, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.templates))
	for id := range s.templates {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}

// Description returns the optional description of a template.
func (s *Set) Description(id string) string {
	return s.descriptions[id]
}

func sampleVars() map[string]string {
	return map[string]string{
		VarQuestion: "sample question",
		VarContext:  "sample context",
	}
}
