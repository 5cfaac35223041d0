// Package metrics exposes scheduler activity as Prometheus metrics.
// It has no dependencies on sched/ so the engine can import it.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the scheduler's Prometheus metrics. A nil *Collector is
// valid and records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Admissions         *prometheus.CounterVec // label: mode (shared|probed)
	SchedulingFailures *prometheus.CounterVec // label: reason
	Executions         *prometheus.CounterVec // label: outcome (executed|failed)
	PendingRequests    prometheus.Gauge
	ReservedLinks      prometheus.Gauge
	CurrentTimeslot    prometheus.Gauge
	ProbeDistance      prometheus.Histogram
}

// NewCollector registers scheduler metrics against reg. Metrics already
// registered with a compatible type are reused.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	admissions, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qnet_scheduler_admissions_total",
		Help: "Requests admitted into a timeslot, by admission mode.",
	}, []string{"mode"}), "qnet_scheduler_admissions_total")
	if err != nil {
		return nil, err
	}

	failures, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qnet_scheduler_scheduling_failures_total",
		Help: "Admission attempts that found no route or no free timeslot.",
	}, []string{"reason"}), "qnet_scheduler_scheduling_failures_total")
	if err != nil {
		return nil, err
	}

	executions, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qnet_scheduler_executions_total",
		Help: "Executed requests by outcome.",
	}, []string{"outcome"}), "qnet_scheduler_executions_total")
	if err != nil {
		return nil, err
	}

	pending, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "qnet_scheduler_pending_requests",
		Help: "Requests waiting for admission.",
	}), "qnet_scheduler_pending_requests")
	if err != nil {
		return nil, err
	}

	reserved, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "qnet_scheduler_reserved_links",
		Help: "Directional links currently holding a reservation.",
	}), "qnet_scheduler_reserved_links")
	if err != nil {
		return nil, err
	}

	timeslot, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "qnet_scheduler_current_timeslot",
		Help: "Current value of the simulation clock.",
	}), "qnet_scheduler_current_timeslot")
	if err != nil {
		return nil, err
	}

	probe, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "qnet_scheduler_probe_distance_timeslots",
		Help:    "Distance between the attempted timeslot and the free timeslot found by probing.",
		Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
	}), "qnet_scheduler_probe_distance_timeslots")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:           gatherer,
		Admissions:         admissions,
		SchedulingFailures: failures,
		Executions:         executions,
		PendingRequests:    pending,
		ReservedLinks:      reserved,
		CurrentTimeslot:    timeslot,
		ProbeDistance:      probe,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *Collector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveAdmission counts an admission; probe distance is recorded for probed admissions.
func (c *Collector) ObserveAdmission(shared bool, probeDistance int) {
	if c == nil {
		return
	}
	if shared {
		c.Admissions.WithLabelValues("shared").Inc()
		return
	}
	c.Admissions.WithLabelValues("probed").Inc()
	c.ProbeDistance.Observe(float64(probeDistance))
}

// IncSchedulingFailure counts a failed admission attempt.
func (c *Collector) IncSchedulingFailure(reason string) {
	if c == nil {
		return
	}
	c.SchedulingFailures.WithLabelValues(reason).Inc()
}

// ObserveExecution counts an execution outcome.
func (c *Collector) ObserveExecution(success bool) {
	if c == nil {
		return
	}
	if success {
		c.Executions.WithLabelValues("executed").Inc()
		return
	}
	c.Executions.WithLabelValues("failed").Inc()
}

// SetState updates the point-in-time gauges.
func (c *Collector) SetState(pending, reservedLinks, timeslot int) {
	if c == nil {
		return
	}
	c.PendingRequests.Set(float64(pending))
	c.ReservedLinks.Set(float64(reservedLinks))
	c.CurrentTimeslot.Set(float64(timeslot))
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}
