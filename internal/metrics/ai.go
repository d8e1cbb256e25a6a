package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/katachat/katareport/internal/llm"
	"github.com/katachat/katareport/pkg/models"
)

// ErrGeneration is returned when AI mode cannot produce usable metrics.
// It is terminal: there is no fallback to random sampling.
var ErrGeneration = errors.New("metrics: generation failed")

// Limiter throttles outbound LLM calls.
type Limiter interface {
	Wait(ctx context.Context) error
}

// AIGenerator asks an LLM for metric values and an accompanying narrative.
type AIGenerator struct {
	Provider    llm.Provider
	Limiter     Limiter // optional
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

type aiPayload struct {
	Groups []struct {
		Title  string   `json:"title"`
		Labels []string `json:"labels"`
		Values []int    `json:"values"`
	} `json:"groups"`
	Narrative string `json:"narrative"`
}

const aiSystemPrompt = `You write short, warm profile reports. Reply with a single JSON object only:
{"groups":[{"title":string,"labels":[string],"values":[int]}],"narrative":string}
Keep the groups, titles and labels exactly as given, in the same order. Every value is an integer percentage from 0 to 100.
The narrative has one paragraph per group followed by one closing paragraph, separated by blank lines.`

// Generate implements Generator.
func (g *AIGenerator) Generate(ctx context.Context, subject Subject, specs []GroupSpec) (Result, error) {
	if err := ValidateSpecs(specs); err != nil {
		return Result{}, err
	}
	if g.Provider == nil {
		return Result{}, fmt.Errorf("%w: no provider configured", ErrGeneration)
	}
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}
	if g.Limiter != nil {
		if err := g.Limiter.Wait(ctx); err != nil {
			return Result{}, fmt.Errorf("%w: rate limited: %w", ErrGeneration, err)
		}
	}

	resp, err := g.Provider.Chat(ctx,
		[]llm.Message{llm.SystemMessage(aiSystemPrompt), llm.UserMessage(g.prompt(subject, specs))},
		&llm.ChatOptions{Temperature: g.Temperature, MaxTokens: g.MaxTokens, JSON: true})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrGeneration, g.Provider.Name(), err)
	}

	return parseAIResult(resp.Content, specs)
}

func (g *AIGenerator) prompt(subject Subject, specs []GroupSpec) string {
	var sb strings.Builder
	lang := subject.Language
	if lang == "" {
		lang = "English"
	}
	fmt.Fprintf(&sb, "Write in %s.\n", lang)
	fmt.Fprintf(&sb, "Subject: age %d, gender %q, country %q.\n", subject.Age, subject.Gender, subject.Country)
	sb.WriteString("Groups:\n")
	for _, spec := range specs {
		fmt.Fprintf(&sb, "- %s:", spec.Title)
		for i, l := range spec.Labels {
			if i > 0 {
				sb.WriteString(",")
			}
			fmt.Fprintf(&sb, " %s (typical %d-%d)", l.Name, l.Min, l.Max)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// parseAIResult decodes the model reply and checks it against specs.
func parseAIResult(content string, specs []GroupSpec) (Result, error) {
	var payload aiPayload
	if err := json.Unmarshal([]byte(stripFences(content)), &payload); err != nil {
		return Result{}, fmt.Errorf("%w: malformed JSON: %w", ErrGeneration, err)
	}
	if len(payload.Groups) != len(specs) {
		return Result{}, fmt.Errorf("%w: got %d groups, want %d", ErrGeneration, len(payload.Groups), len(specs))
	}

	groups := make([]models.MetricGroup, len(specs))
	for i, spec := range specs {
		got := payload.Groups[i]
		if len(got.Values) != len(spec.Labels) {
			return Result{}, fmt.Errorf("%w: group %q has %d values, want %d", ErrGeneration, spec.Title, len(got.Values), len(spec.Labels))
		}
		for _, v := range got.Values {
			if v < 0 || v > 100 {
				return Result{}, fmt.Errorf("%w: group %q value %d outside 0..100", ErrGeneration, spec.Title, v)
			}
		}
		// Titles and labels come from the spec so the chart layout is stable.
		groups[i] = models.MetricGroup{
			Title:  spec.Title,
			Labels: spec.LabelNames(),
			Values: append([]int(nil), got.Values...),
		}
	}

	narrative := splitParagraphs(payload.Narrative)
	if len(narrative) != len(specs)+1 {
		return Result{}, fmt.Errorf("%w: narrative has %d paragraphs, want %d", ErrGeneration, len(narrative), len(specs)+1)
	}
	return Result{Groups: groups, Narrative: narrative}, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
