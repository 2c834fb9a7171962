package observability

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SimCollector holds the Prometheus series a flight run feeds. It satisfies
// sim.MetricsRecorder and its methods are no-ops on a nil receiver.
type SimCollector struct {
	gatherer prometheus.Gatherer

	StepsTotal       prometheus.Counter
	EventsTotal      *prometheus.CounterVec
	ActivationsTotal *prometheus.CounterVec
	ActiveMotors     prometheus.Gauge
	RunDurations     *prometheus.HistogramVec
}

// NewSimCollector registers the simulator metrics on reg, or on the default
// registry when reg is nil. Collectors already present on reg are reused, so
// two collectors built on one registry share their series.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &SimCollector{gatherer: gatherer}
	var err error
	if c.StepsTotal, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "motorsim_steps_total",
		Help: "Flight time steps advanced.",
	})); err != nil {
		return nil, err
	}
	if c.EventsTotal, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "motorsim_flight_events_total",
		Help: "Flight events processed, by event type.",
	}, []string{"type"})); err != nil {
		return nil, err
	}
	if c.ActivationsTotal, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "motorsim_activations_total",
		Help: "Predicates that fired, by kind: ignition, deployment or separation.",
	}, []string{"kind"})); err != nil {
		return nil, err
	}
	if c.ActiveMotors, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "motorsim_active_motors",
		Help: "Motors burning in the most recently advanced flight.",
	})); err != nil {
		return nil, err
	}
	if c.RunDurations, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "motorsim_run_duration_seconds",
		Help:    "Wall-clock time of complete flight runs, by outcome.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2.5, 12),
	}, []string{"outcome"})); err != nil {
		return nil, err
	}
	return c, nil
}

// register adds col to reg, returning the collector already registered
// under the same descriptor when there is one of the same type.
func register[C prometheus.Collector](reg prometheus.Registerer, col C) (C, error) {
	err := reg.Register(col)
	if err == nil {
		return col, nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return col, err
	}
	existing, ok := are.ExistingCollector.(C)
	if !ok {
		return col, fmt.Errorf("observability: collector %T registered with an incompatible type", are.ExistingCollector)
	}
	return existing, nil
}

// Gatherer is the registry the collector reports through.
func (c *SimCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler serves the gatherer in the Prometheus exposition format.
func (c *SimCollector) Handler() http.Handler {
	gatherer := c.Gatherer()
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveStep counts one time step.
func (c *SimCollector) ObserveStep() {
	if c == nil || c.StepsTotal == nil {
		return
	}
	c.StepsTotal.Inc()
}

// ObserveEvent counts a processed flight event.
func (c *SimCollector) ObserveEvent(eventType string) {
	if c == nil || c.EventsTotal == nil {
		return
	}
	c.EventsTotal.WithLabelValues(eventType).Inc()
}

// ObserveActivation counts a predicate that fired.
func (c *SimCollector) ObserveActivation(kind string) {
	if c == nil || c.ActivationsTotal == nil {
		return
	}
	c.ActivationsTotal.WithLabelValues(kind).Inc()
}

// SetActiveMotors updates the burning-motor gauge.
func (c *SimCollector) SetActiveMotors(n int) {
	if c == nil || c.ActiveMotors == nil {
		return
	}
	c.ActiveMotors.Set(float64(n))
}

// ObserveRun records the duration of a finished run.
func (c *SimCollector) ObserveRun(d time.Duration, err error) {
	if c == nil || c.RunDurations == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.RunDurations.WithLabelValues(outcome).Observe(d.Seconds())
}
