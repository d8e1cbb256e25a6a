// Package metrics produces the metric groups shown in a report: labelled
// integer percentages, either sampled uniformly at random or requested from
// an LLM.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/katachat/katareport/pkg/models"
)

// ErrInvalidSpec is returned when a group specification cannot be sampled.
var ErrInvalidSpec = errors.New("metrics: invalid group spec")

// LabelSpec is one metric label with its inclusive sampling range.
type LabelSpec struct {
	Name string
	Min  int
	Max  int
}

// GroupSpec describes one metric group.
type GroupSpec struct {
	Title  string
	Labels []LabelSpec
}

// LabelNames returns the label names in order.
func (g GroupSpec) LabelNames() []string {
	names := make([]string, len(g.Labels))
	for i, l := range g.Labels {
		names[i] = l.Name
	}
	return names
}

// Subject is what the generator knows about the person being reported on.
type Subject struct {
	Age     int
	Gender  string
	Country string
	// Language names the language narrative should be written in.
	Language string
}

// Result holds generated groups and, in AI mode, the narrative that came
// with them.
type Result struct {
	Groups    []models.MetricGroup
	Narrative []string
}

// Generator produces metric groups for a subject.
type Generator interface {
	Generate(ctx context.Context, subject Subject, specs []GroupSpec) (Result, error)
}

// ValidateSpecs checks that every group has labels and that every range is
// ordered and lies within 0..100.
func ValidateSpecs(specs []GroupSpec) error {
	if len(specs) == 0 {
		return fmt.Errorf("%w: no groups", ErrInvalidSpec)
	}
	for _, g := range specs {
		if len(g.Labels) == 0 {
			return fmt.Errorf("%w: group %q has no labels", ErrInvalidSpec, g.Title)
		}
		for _, l := range g.Labels {
			if l.Min > l.Max {
				return fmt.Errorf("%w: %s/%s min %d > max %d", ErrInvalidSpec, g.Title, l.Name, l.Min, l.Max)
			}
			if l.Min < 0 || l.Max > 100 {
				return fmt.Errorf("%w: %s/%s range %d..%d outside 0..100", ErrInvalidSpec, g.Title, l.Name, l.Min, l.Max)
			}
		}
	}
	return nil
}

// RandomGenerator samples each label independently and uniformly from its
// inclusive range. Values are not normalised.
type RandomGenerator struct {
	// IntN returns a value in [0, n). Defaults to math/rand/v2.IntN.
	IntN func(n int) int
}

// NewRandomGenerator returns a generator backed by the global source.
func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{IntN: rand.IntN}
}

// Generate implements Generator.
func (g *RandomGenerator) Generate(_ context.Context, _ Subject, specs []GroupSpec) (Result, error) {
	if err := ValidateSpecs(specs); err != nil {
		return Result{}, err
	}
	intN := rand.IntN
	if g != nil && g.IntN != nil {
		intN = g.IntN
	}

	groups := make([]models.MetricGroup, len(specs))
	for i, spec := range specs {
		values := make([]int, len(spec.Labels))
		for j, l := range spec.Labels {
			values[j] = l.Min + intN(l.Max-l.Min+1)
		}
		groups[i] = models.MetricGroup{
			Title:  spec.Title,
			Labels: spec.LabelNames(),
			Values: values,
		}
	}
	return Result{Groups: groups}, nil
}
