// Package pipeline runs one report request end to end: resolve the age,
// generate metrics, compose the narrative, render both documents and hand
// the full report to the delivery gateway in the background.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/katachat/katareport/internal/birthdate"
	"github.com/katachat/katareport/internal/delivery"
	"github.com/katachat/katareport/internal/infra"
	"github.com/katachat/katareport/internal/locale"
	"github.com/katachat/katareport/internal/metrics"
	"github.com/katachat/katareport/internal/narrative"
	"github.com/katachat/katareport/internal/report"
	"github.com/katachat/katareport/pkg/models"
	"github.com/katachat/katareport/pkg/utils"
)

// Options configure an Analyzer. Registry, Generator and Gateway are
// required.
type Options struct {
	Registry        *locale.Registry
	Generator       metrics.Generator
	Gateway         delivery.Gateway
	ChartStyle      string
	Clock           utils.Clock
	DeliveryTimeout time.Duration
	Logger          *zap.Logger
	Collectors      *infra.Collectors
	// NewID returns report IDs. Defaults to uuid v4.
	NewID func() string
}

// Result is a successfully analyzed request.
type Result struct {
	Report    *models.Report
	Documents report.Documents
}

// Response returns the JSON body for the widget.
func (r *Result) Response() models.AnalyzeResponse {
	return models.AnalyzeResponse{
		ReportID: r.Report.ID,
		Metrics:  r.Report.Groups,
		Analysis: r.Documents.Summary,
	}
}

// Analyzer is safe for concurrent use. Requests share only read-only
// template sets.
type Analyzer struct {
	registry  *locale.Registry
	generator metrics.Generator
	gateway   delivery.Gateway
	resolver  *birthdate.Resolver
	clock     utils.Clock
	timeout   time.Duration
	logger    *zap.Logger
	stats     *infra.Collectors
	newID     func() string

	composers map[string]*narrative.Composer
	renderers map[string]*report.Renderer

	inflight sync.WaitGroup
}

// New builds an Analyzer and pre-parses every template set's templates.
func New(opts Options) (*Analyzer, error) {
	if opts.Registry == nil || opts.Generator == nil || opts.Gateway == nil {
		return nil, errors.New("pipeline: registry, generator and gateway are required")
	}
	if opts.Clock == nil {
		opts.Clock = utils.NowSGT
	}
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.NewString() }
	}

	a := &Analyzer{
		registry:  opts.Registry,
		generator: opts.Generator,
		gateway:   opts.Gateway,
		resolver:  birthdate.NewResolver(opts.Clock),
		clock:     opts.Clock,
		timeout:   opts.DeliveryTimeout,
		logger:    opts.Logger.Named("pipeline"),
		stats:     opts.Collectors,
		newID:     opts.NewID,
		composers: make(map[string]*narrative.Composer),
		renderers: make(map[string]*report.Renderer),
	}
	for _, id := range opts.Registry.IDs() {
		set, err := opts.Registry.Lookup(id)
		if err != nil {
			return nil, err
		}
		c, err := narrative.NewComposer(set)
		if err != nil {
			return nil, err
		}
		r, err := report.NewRenderer(set, report.Options{Style: opts.ChartStyle, Clock: opts.Clock})
		if err != nil {
			return nil, err
		}
		a.composers[id], a.renderers[id] = c, r
	}
	return a, nil
}

// Analyze runs the pipeline for one submission using the template set named
// by setKey (a set ID or a language tag). On success the full report has
// been dispatched for delivery; the delivery outcome never affects the
// result.
func (a *Analyzer) Analyze(ctx context.Context, setKey string, req models.SubmissionRequest) (*Result, error) {
	start := time.Now()
	res, setID, err := a.analyze(ctx, setKey, req)
	if err != nil {
		a.stats.Report(setID, outcome(err))
		a.logger.Warn("analyze failed",
			zap.String("set", setID),
			zap.String("kind", KindOf(err).String()),
			zap.Error(err))
		return nil, err
	}
	a.stats.ObserveRender(time.Since(start))
	a.stats.Report(setID, infra.OutcomeOK)

	a.Dispatch(ctx, res.Report.ID, a.subject(setID), res.Documents.Full)
	a.logger.Info("report rendered",
		zap.String("report_id", res.Report.ID),
		zap.String("set", setID),
		zap.Int("age", res.Report.Age),
		zap.Duration("duration", time.Since(start)))
	return res, nil
}

func (a *Analyzer) analyze(ctx context.Context, setKey string, req models.SubmissionRequest) (*Result, string, error) {
	set, err := a.registry.Resolve(setKey)
	if err != nil {
		return nil, "unknown", newError(KindInput, "select_set", fmt.Sprintf("unknown template set %q", setKey), err)
	}

	if missing := req.MissingBirthdateFields(); len(missing) > 0 {
		return nil, set.ID, newError(KindInput, "resolve_age", "missing birthdate fields: "+strings.Join(missing, ", "), nil)
	}
	born, err := a.resolver.ResolveDate(req.DOBDay.Value, req.DOBMonth, req.DOBYear.Value)
	if err != nil {
		return nil, set.ID, newError(KindInput, "resolve_age", birthdateMessage(err, req.DOBMonth), err)
	}

	gen, err := a.generator.Generate(ctx, metrics.Subject{
		Age:      born.Age,
		Gender:   req.Gender,
		Country:  req.Country,
		Language: set.LanguageName,
	}, set.Groups)
	if err != nil {
		if errors.Is(err, metrics.ErrGeneration) {
			return nil, set.ID, newError(KindGeneration, "generate", "metrics generation failed", err)
		}
		return nil, set.ID, newError(KindRender, "generate", "metrics generation failed", err)
	}

	composer := a.composers[set.ID]
	var paragraphs []string
	if len(gen.Narrative) > 0 {
		paragraphs, err = composer.FromNarrative(gen.Narrative)
	} else {
		paragraphs, err = composer.Compose(born.Age, req.Gender, req.Country, gen.Groups)
	}
	if err != nil {
		return nil, set.ID, newError(KindRender, "compose", "narrative composition failed", err)
	}

	rep := &models.Report{
		ID:          a.newID(),
		TemplateSet: set.ID,
		Age:         born.Age,
		Birthdate:   born.Birthdate,
		Paragraphs:  paragraphs,
		Groups:      gen.Groups,
		Footer:      string(set.Footer),
		CreatedAt:   a.clock(),
	}

	docs, err := a.renderers[set.ID].Render(report.Input{
		ReportID:   rep.ID,
		Identity:   req.Identity(),
		Paragraphs: paragraphs,
		Groups:     gen.Groups,
	})
	if err != nil {
		return nil, set.ID, newError(KindRender, "render", "report rendering failed", err)
	}

	return &Result{Report: rep, Documents: docs}, set.ID, nil
}

func (a *Analyzer) subject(setID string) string {
	set, err := a.registry.Lookup(setID)
	if err != nil {
		return setID
	}
	return set.Subject
}

// Dispatch sends html in the background. The attempt is detached from the
// caller's cancellation and bounded by the configured timeout; failures are
// logged and counted, never returned.
func (a *Analyzer) Dispatch(ctx context.Context, reportID, subject, html string) {
	a.inflight.Add(1)
	a.stats.DeliveryStarted()
	detached := context.WithoutCancel(ctx)
	go func() {
		defer a.inflight.Done()
		ctx, cancel := context.WithTimeout(detached, a.timeout)
		defer cancel()
		a.stats.DeliveryFinished(a.Deliver(ctx, reportID, subject, html))
	}()
}

// Deliver makes one synchronous delivery attempt and logs the outcome.
func (a *Analyzer) Deliver(ctx context.Context, reportID, subject, html string) error {
	if err := a.gateway.Send(ctx, subject, html); err != nil {
		derr := newError(KindDelivery, "deliver", "report delivery failed", err)
		a.logger.Error("delivery failed",
			zap.String("report_id", reportID),
			zap.String("gateway", a.gateway.Name()),
			zap.Error(derr))
		return derr
	}
	a.logger.Info("report delivered",
		zap.String("report_id", reportID),
		zap.String("gateway", a.gateway.Name()))
	return nil
}

// Drain waits for in-flight deliveries or until ctx is done.
func (a *Analyzer) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TemplateSets lists the available set IDs.
func (a *Analyzer) TemplateSets() []string {
	return a.registry.IDs()
}

func birthdateMessage(err error, month string) string {
	switch {
	case errors.Is(err, birthdate.ErrUnrecognizedMonth):
		return fmt.Sprintf("unrecognized month %q", strings.TrimSpace(month))
	case errors.Is(err, birthdate.ErrInvalidCalendarDate):
		return "birthdate is not a valid calendar date"
	case errors.Is(err, birthdate.ErrFutureBirthdate):
		return "birthdate is in the future"
	default:
		return "invalid birthdate"
	}
}

func outcome(err error) string {
	switch KindOf(err) {
	case KindInput:
		return infra.OutcomeInputError
	case KindGeneration:
		return infra.OutcomeGenerationError
	default:
		return infra.OutcomeRenderError
	}
}
