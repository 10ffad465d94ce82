// Package metrics exposes simulation and scan activity as Prometheus
// metrics.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/san-kum/biosim/internal/engine"
)

const (
	OutcomeOK          = "ok"
	OutcomeInvalid     = "invalid_config"
	OutcomeCanceled    = "canceled"
	OutcomeNonFinite   = "non_finite"
	OutcomeOtherFailed = "error"
)

// Collector implements engine.Observer and scan.Observer.
type Collector struct {
	gatherer prometheus.Gatherer

	Simulations *prometheus.CounterVec
	Durations   *prometheus.HistogramVec
	Steps       prometheus.Histogram
	ScanPoints  prometheus.Counter
}

// NewCollector registers the biosim metrics against reg, defaulting to the
// global registry when nil. Registering twice on the same registry reuses the
// existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	sims, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "biosim_simulations_total",
		Help: "Simulations run, labeled by integration method and outcome.",
	}, []string{"method", "outcome"}), "biosim_simulations_total")
	if err != nil {
		return nil, err
	}

	durations, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "biosim_simulation_duration_seconds",
		Help:    "Wall-clock time of one simulation in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	}, []string{"method"}), "biosim_simulation_duration_seconds")
	if err != nil {
		return nil, err
	}

	steps, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "biosim_simulation_steps",
		Help:    "Integration steps requested per simulation.",
		Buckets: prometheus.ExponentialBuckets(10, 10, 7),
	}), "biosim_simulation_steps")
	if err != nil {
		return nil, err
	}

	points, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "biosim_scan_points_total",
		Help: "Scan points completed.",
	}), "biosim_scan_points_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:    gatherer,
		Simulations: sims,
		Durations:   durations,
		Steps:       steps,
		ScanPoints:  points,
	}, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			return c, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return c, err
	}
	return c, nil
}

// Outcome maps a Simulate error to its outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, engine.ErrInvalidConfig):
		return OutcomeInvalid
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	case errors.Is(err, engine.ErrNonFinite):
		return OutcomeNonFinite
	default:
		return OutcomeOtherFailed
	}
}

func (c *Collector) ObserveRun(r engine.Run) {
	if c == nil {
		return
	}
	c.Simulations.WithLabelValues(r.Method, Outcome(r.Err)).Inc()
	if r.Err != nil {
		return
	}
	c.Durations.WithLabelValues(r.Method).Observe(r.Elapsed.Seconds())
	c.Steps.Observe(float64(r.Steps))
}

func (c *Collector) ObservePoint(string, float64) {
	if c == nil {
		return
	}
	c.ScanPoints.Inc()
}

// WriteText dumps every gathered family in the text exposition format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.gatherer.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
