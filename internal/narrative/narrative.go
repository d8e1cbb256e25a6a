// Package narrative turns metric groups into prose paragraphs using the
// templates of a locale set.
package narrative

import (
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/katachat/katareport/internal/locale"
	"github.com/katachat/katareport/pkg/models"
)

// ErrGroupMismatch is returned when the groups do not line up with the
// set's paragraph templates.
var ErrGroupMismatch = errors.New("narrative: metric groups do not match template set")

// Composer renders paragraphs for one template set. It is safe for
// concurrent use.
type Composer struct {
	set     *locale.Set
	groups  []*template.Template
	closing *template.Template
}

// Data is what a paragraph template sees.
type Data struct {
	Age     int
	Gender  string
	Country string
	Title   string
	L       []string
	V       []int
}

// NewComposer parses the set's templates.
func NewComposer(set *locale.Set) (*Composer, error) {
	c := &Composer{set: set}
	for i, src := range set.GroupTemplates {
		t, err := parse(fmt.Sprintf("%s/group%d", set.ID, i), src)
		if err != nil {
			return nil, err
		}
		c.groups = append(c.groups, t)
	}
	closing, err := parse(set.ID+"/closing", set.ClosingTemplate)
	if err != nil {
		return nil, err
	}
	c.closing = closing
	return c, nil
}

func parse(name, src string) (*template.Template, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("narrative: parse %s: %w", name, err)
	}
	return t, nil
}

// Compose returns one paragraph per group followed by a closing paragraph.
// An unknown gender token falls back to the set's neutral wording.
func (c *Composer) Compose(age int, gender, country string, groups []models.MetricGroup) ([]string, error) {
	if len(groups) != len(c.groups) {
		return nil, fmt.Errorf("%w: got %d groups, want %d", ErrGroupMismatch, len(groups), len(c.groups))
	}

	base := Data{Age: age, Gender: c.set.GenderLabel(gender), Country: strings.TrimSpace(country)}
	paragraphs := make([]string, 0, len(groups)+1)
	for i, g := range groups {
		if len(g.Values) != len(c.set.Groups[i].Labels) {
			return nil, fmt.Errorf("%w: group %d has %d values, want %d", ErrGroupMismatch, i, len(g.Values), len(c.set.Groups[i].Labels))
		}
		d := base
		d.Title, d.L, d.V = g.Title, g.Labels, g.Values
		p, err := execute(c.groups[i], d)
		if err != nil {
			return nil, err
		}
		paragraphs = append(paragraphs, p)
	}

	closing, err := execute(c.closing, base)
	if err != nil {
		return nil, err
	}
	return append(paragraphs, closing), nil
}

// FromNarrative adopts paragraphs produced together with the metrics (AI
// mode). There must be one per group plus the closing paragraph.
func (c *Composer) FromNarrative(paragraphs []string) ([]string, error) {
	var out []string
	for _, p := range paragraphs {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if want := len(c.groups) + 1; len(out) != want {
		return nil, fmt.Errorf("%w: got %d paragraphs, want %d", ErrGroupMismatch, len(out), want)
	}
	return out, nil
}

func execute(t *template.Template, d Data) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, d); err != nil {
		return "", fmt.Errorf("narrative: execute %s: %w", t.Name(), err)
	}
	return strings.TrimSpace(sb.String()), nil
}
