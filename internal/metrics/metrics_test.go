package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katachat/katareport/internal/infra"
	"github.com/katachat/katareport/internal/llm"
)

var testSpecs = []GroupSpec{
	{Title: "Learning style", Labels: []LabelSpec{{"Visual", 50, 80}, {"Auditory", 20, 50}, {"Kinesthetic", 20, 40}}},
	{Title: "Engagement", Labels: []LabelSpec{{"Daily review", 40, 70}, {"Solo", 30, 60}, {"Group", 20, 50}}},
	{Title: "Confidence", Labels: []LabelSpec{{"Math", 40, 90}, {"Reading", 40, 80}, {"Focus", 30, 70}}},
}

// ── ValidateSpecs ──

func TestValidateSpecs(t *testing.T) {
	require.NoError(t, ValidateSpecs(testSpecs))

	tests := []struct {
		name  string
		specs []GroupSpec
	}{
		{"empty", nil},
		{"no labels", []GroupSpec{{Title: "x"}}},
		{"min above max", []GroupSpec{{Title: "x", Labels: []LabelSpec{{"a", 60, 50}}}}},
		{"negative", []GroupSpec{{Title: "x", Labels: []LabelSpec{{"a", -1, 50}}}}},
		{"above 100", []GroupSpec{{Title: "x", Labels: []LabelSpec{{"a", 50, 101}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateSpecs(tt.specs), ErrInvalidSpec)
		})
	}
}

// ── RandomGenerator ──

func TestRandomGeneratorWithinRange(t *testing.T) {
	g := NewRandomGenerator()
	for i := 0; i < 500; i++ {
		res, err := g.Generate(context.Background(), Subject{Age: 9}, testSpecs)
		require.NoError(t, err)
		require.Len(t, res.Groups, 3)
		assert.Empty(t, res.Narrative)
		for gi, group := range res.Groups {
			require.Equal(t, group.Len(), len(group.Values))
			for li, v := range group.Values {
				l := testSpecs[gi].Labels[li]
				assert.GreaterOrEqual(t, v, l.Min)
				assert.LessOrEqual(t, v, l.Max)
			}
		}
	}
}

func TestRandomGeneratorBounds(t *testing.T) {
	low := &RandomGenerator{IntN: func(int) int { return 0 }}
	high := &RandomGenerator{IntN: func(n int) int { return n - 1 }}

	lo, err := low.Generate(context.Background(), Subject{}, testSpecs)
	require.NoError(t, err)
	hi, err := high.Generate(context.Background(), Subject{}, testSpecs)
	require.NoError(t, err)

	assert.Equal(t, []int{50, 20, 20}, lo.Groups[0].Values)
	assert.Equal(t, []int{80, 50, 40}, hi.Groups[0].Values)
	assert.Equal(t, []string{"Visual", "Auditory", "Kinesthetic"}, lo.Groups[0].Labels)
	assert.Equal(t, "Confidence", hi.Groups[2].Title)
}

func TestRandomGeneratorNoNormalisation(t *testing.T) {
	g := &RandomGenerator{IntN: func(n int) int { return n - 1 }}
	res, err := g.Generate(context.Background(), Subject{}, testSpecs)
	require.NoError(t, err)

	sum := 0
	for _, v := range res.Groups[0].Values {
		sum += v
	}
	assert.Equal(t, 170, sum)
}

func TestRandomGeneratorSingletonRange(t *testing.T) {
	g := NewRandomGenerator()
	res, err := g.Generate(context.Background(), Subject{}, []GroupSpec{{Title: "x", Labels: []LabelSpec{{"a", 42, 42}}}})
	require.NoError(t, err)
	assert.Equal(t, []int{42}, res.Groups[0].Values)
}

func TestRandomGeneratorConcurrent(t *testing.T) {
	var zero *RandomGenerator
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := zero.Generate(context.Background(), Subject{}, testSpecs)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

// ── AIGenerator ──

type stubProvider struct {
	content string
	err     error
	got     []llm.Message
	opts    *llm.ChatOptions
	wait    bool
}

func (s *stubProvider) Name() string { return "stub" }
func (s *stubProvider) Ping(ctx context.Context) error { return nil }
func (s *stubProvider) Chat(ctx context.Context, msgs []llm.Message, opts *llm.ChatOptions) (*llm.Response, error) {
	s.got, s.opts = msgs, opts
	if s.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Content: s.content}, nil
}

const goodReply = "```json\n" + `{"groups":[
 {"title":"Learning style","labels":["Visual","Auditory","Kinesthetic"],"values":[70,30,25]},
 {"title":"Engagement","labels":["Daily review","Solo","Group"],"values":[55,45,35]},
 {"title":"Confidence","labels":["Math","Reading","Focus"],"values":[80,60,50]}],
 "narrative":"First.\n\nSecond.\n\nThird.\n\nClosing."}` + "\n```"

func TestAIGenerator(t *testing.T) {
	p := &stubProvider{content: goodReply}
	g := &AIGenerator{Provider: p, Temperature: 0.7, MaxTokens: 800}

	res, err := g.Generate(context.Background(), Subject{Age: 9, Gender: "男", Country: "新加坡", Language: "Chinese"}, testSpecs)
	require.NoError(t, err)

	assert.Equal(t, []int{70, 30, 25}, res.Groups[0].Values)
	assert.Equal(t, []int{80, 60, 50}, res.Groups[2].Values)
	assert.Equal(t, []string{"First.", "Second.", "Third.", "Closing."}, res.Narrative)

	require.Len(t, p.got, 2)
	assert.Contains(t, p.got[1].Content, "age 9")
	assert.Contains(t, p.got[1].Content, "Chinese")
	assert.Contains(t, p.got[1].Content, "Visual (typical 50-80)")
	assert.True(t, p.opts.JSON)
	assert.Equal(t, 800, p.opts.MaxTokens)
}

func TestAIGeneratorFailures(t *testing.T) {
	tests := []struct {
		name string
		p    *stubProvider
	}{
		{"provider error", &stubProvider{err: llm.ErrRateLimit}},
		{"malformed", &stubProvider{content: "not json"}},
		{"wrong group count", &stubProvider{content: `{"groups":[{"values":[1,2,3]}]}`}},
		{"wrong label count", &stubProvider{content: `{"groups":[{"values":[1,2]},{"values":[1,2,3]},{"values":[1,2,3]}]}`}},
		{"out of range", &stubProvider{content: `{"groups":[{"values":[1,2,300]},{"values":[1,2,3]},{"values":[1,2,3]}]}`}},
		{"single paragraph narrative", &stubProvider{content: `{"groups":[{"values":[1,2,3]},{"values":[1,2,3]},{"values":[1,2,3]}],"narrative":"only one paragraph"}`}},
		{"missing narrative", &stubProvider{content: `{"groups":[{"values":[1,2,3]},{"values":[1,2,3]},{"values":[1,2,3]}]}`}},
		{"extra paragraph", &stubProvider{content: `{"groups":[{"values":[1,2,3]},{"values":[1,2,3]},{"values":[1,2,3]}],"narrative":"a\n\nb\n\nc\n\nd\n\ne"}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &AIGenerator{Provider: tt.p}
			_, err := g.Generate(context.Background(), Subject{}, testSpecs)
			assert.ErrorIs(t, err, ErrGeneration)
		})
	}
}

func TestAIGeneratorProviderErrorIsWrapped(t *testing.T) {
	g := &AIGenerator{Provider: &stubProvider{err: llm.ErrRateLimit}}
	_, err := g.Generate(context.Background(), Subject{}, testSpecs)
	assert.True(t, errors.Is(err, llm.ErrRateLimit))
}

func TestAIGeneratorTimeout(t *testing.T) {
	g := &AIGenerator{Provider: &stubProvider{wait: true}, Timeout: 10 * time.Millisecond}
	_, err := g.Generate(context.Background(), Subject{}, testSpecs)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type blockedLimiter struct{}

func (blockedLimiter) Wait(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestAIGeneratorLimiter(t *testing.T) {
	p := &stubProvider{content: goodReply}
	g := &AIGenerator{Provider: p, Limiter: blockedLimiter{}, Timeout: 10 * time.Millisecond}
	_, err := g.Generate(context.Background(), Subject{}, testSpecs)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Nil(t, p.got, "provider must not be called while rate limited")

	g.Limiter = infra.PerMinute(10)
	_, err = g.Generate(context.Background(), Subject{}, testSpecs)
	assert.NoError(t, err)
}

func TestAIGeneratorNoProvider(t *testing.T) {
	_, err := (&AIGenerator{}).Generate(context.Background(), Subject{}, testSpecs)
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("  {\"a\":1} "))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}```"))
}
