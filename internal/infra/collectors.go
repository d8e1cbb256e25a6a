package infra

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for katareport_reports_total.
const (
	OutcomeOK              = "ok"
	OutcomeInputError      = "input_error"
	OutcomeGenerationError = "generation_error"
	OutcomeRenderError     = "render_error"
)

// Result labels for katareport_delivery_total.
const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// Collectors groups the service's prometheus metrics on a private registry.
type Collectors struct {
	registry *prometheus.Registry

	reports  *prometheus.CounterVec
	delivery *prometheus.CounterVec
	render   prometheus.Histogram
	inflight prometheus.Gauge
}

// NewCollectors registers the service metrics plus the Go and process
// collectors on a new registry.
func NewCollectors() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "katareport",
			Name:      "reports_total",
			Help:      "Reports requested, by template set and outcome.",
		}, []string{"set", "outcome"}),
		delivery: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "katareport",
			Name:      "delivery_total",
			Help:      "Report delivery attempts, by result.",
		}, []string{"result"}),
		render: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "katareport",
			Name:      "render_seconds",
			Help:      "Time from request to rendered documents.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "katareport",
			Name:      "deliveries_in_flight",
			Help:      "Deliveries dispatched and not yet finished.",
		}),
	}
	c.registry.MustRegister(
		c.reports, c.delivery, c.render, c.inflight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the underlying registry for tests and gathering.
func (c *Collectors) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Report counts one finished request. Nil receivers are no-ops.
func (c *Collectors) Report(set, outcome string) {
	if c == nil {
		return
	}
	c.reports.WithLabelValues(set, outcome).Inc()
}

// ObserveRender records how long a report took to render.
func (c *Collectors) ObserveRender(d time.Duration) {
	if c == nil {
		return
	}
	c.render.Observe(d.Seconds())
}

// DeliveryStarted marks a delivery as in flight.
func (c *Collectors) DeliveryStarted() {
	if c == nil {
		return
	}
	c.inflight.Inc()
}

// DeliveryFinished records a delivery result and clears it from in flight.
func (c *Collectors) DeliveryFinished(err error) {
	if c == nil {
		return
	}
	c.inflight.Dec()
	if err != nil {
		c.delivery.WithLabelValues(DeliveryFailed).Inc()
		return
	}
	c.delivery.WithLabelValues(DeliverySent).Inc()
}
