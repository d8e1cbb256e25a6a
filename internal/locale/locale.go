// Package locale holds the template sets a report can be rendered in. A set
// bundles the metric groups, narrative templates, gender wording, headings
// and footer for one language and audience.
package locale

import (
	"errors"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/katachat/katareport/internal/metrics"
)

// ErrUnknownSet is returned when no template set matches an ID or tag.
var ErrUnknownSet = errors.New("locale: unknown template set")

// IdentityLabels are the field captions of the identity header in the full
// report.
type IdentityLabels struct {
	Name        string
	ChineseName string
	Gender      string
	Country     string
	Birthdate   string
	Phone       string
	Email       string
	Referrer    string
}

// Set is one template set. Sets are built once and treated as read-only.
type Set struct {
	ID       string
	Language language.Tag
	// LanguageName is the language as named in an LLM prompt.
	LanguageName string

	Subject         string
	Title           string
	AnalysisHeading string
	ChartsHeading   string
	Identity        IdentityLabels

	GenderLabels   map[string]string
	GenderFallback string

	Groups []metrics.GroupSpec
	// GroupTemplates has one text/template per group. Templates see
	// .Age .Gender .Country .Title .L (labels) and .V (values).
	GroupTemplates  []string
	ClosingTemplate string

	Footer template.HTML
}

// GenderLabel maps a free-form gender token to the set's wording. Unknown or
// empty tokens map to the fallback.
func (s *Set) GenderLabel(token string) string {
	key := cases.Fold().String(strings.TrimSpace(token))
	if label, ok := s.GenderLabels[key]; ok {
		return label
	}
	return s.GenderFallback
}

// Validate checks that the set is internally consistent.
func (s *Set) Validate() error {
	if s.ID == "" {
		return errors.New("locale: set has no ID")
	}
	if err := metrics.ValidateSpecs(s.Groups); err != nil {
		return fmt.Errorf("locale %s: %w", s.ID, err)
	}
	if len(s.GroupTemplates) != len(s.Groups) {
		return fmt.Errorf("locale %s: %d group templates for %d groups", s.ID, len(s.GroupTemplates), len(s.Groups))
	}
	for i, src := range append(append([]string(nil), s.GroupTemplates...), s.ClosingTemplate) {
		if _, err := texttemplate.New("p").Option("missingkey=error").Parse(src); err != nil {
			return fmt.Errorf("locale %s: template %d: %w", s.ID, i, err)
		}
	}
	return nil
}

// Registry indexes template sets by ID and by language.
type Registry struct {
	sets    map[string]*Set
	order   []string
	matcher language.Matcher
	byTag   []*Set
}

// NewRegistry validates and registers sets. For language matching, the
// first set registered for a language wins.
func NewRegistry(sets ...*Set) (*Registry, error) {
	r := &Registry{sets: make(map[string]*Set, len(sets))}
	var tags []language.Tag
	for _, s := range sets {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.sets[s.ID]; dup {
			return nil, fmt.Errorf("locale: duplicate set %q", s.ID)
		}
		r.sets[s.ID] = s
		r.order = append(r.order, s.ID)

		seen := false
		for _, t := range tags {
			if t == s.Language {
				seen = true
				break
			}
		}
		if !seen {
			tags = append(tags, s.Language)
			r.byTag = append(r.byTag, s)
		}
	}
	if len(tags) > 0 {
		r.matcher = language.NewMatcher(tags)
	}
	return r, nil
}

// Default returns a registry holding the built-in sets.
func Default() *Registry {
	r, err := NewRegistry(ZhChild(), EnChild(), EnEmployee())
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the set with the given ID.
func (r *Registry) Lookup(id string) (*Set, error) {
	if s, ok := r.sets[id]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSet, id)
}

// Match resolves a BCP 47 tag such as "zh-Hans-SG" or "en-US" to a set.
func (r *Registry) Match(tag string) (*Set, error) {
	if r.matcher == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSet, tag)
	}
	t, err := language.Parse(tag)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnknownSet, tag, err)
	}
	_, idx, conf := r.matcher.Match(t)
	if conf == language.No {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSet, tag)
	}
	return r.byTag[idx], nil
}

// Resolve accepts either a set ID or a language tag.
func (r *Registry) Resolve(key string) (*Set, error) {
	if s, err := r.Lookup(key); err == nil {
		return s, nil
	}
	return r.Match(key)
}

// IDs returns set IDs in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}
