// Package metrics exposes the runtime's Prometheus instrumentation:
// tick duration, live entity/component counts, and event-dispatch
// counters, grounded on the pack's shared convention of a
// prometheus/client_golang registry wired straight into the core loop
// rather than bolted on afterward.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"forgekernel/internal/core/ecs"
)

// Collector bundles the gauges and counters one Registry/EventManager
// pair reports. Register it with a prometheus.Registerer once at
// startup, then call ObserveTick, ObserveCounts and ObserveEvents once
// per tick.
type Collector struct {
	tickDuration   prometheus.Histogram
	entityCount    prometheus.Gauge
	componentCount *prometheus.GaugeVec
	eventsPublished prometheus.Counter
	eventsDispatched prometheus.Counter
	handlerErrors   prometheus.Counter
}

// NewCollector builds a Collector; call MustRegister(reg) to expose it.
func NewCollector() *Collector {
	return &Collector{
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "forgekernel",
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock duration of one tick (bindings, systems, deletions, clock advance).",
			Buckets:   prometheus.DefBuckets,
		}),
		entityCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "forgekernel",
			Name:      "entities_alive",
			Help:      "Number of live entities in the registry.",
		}),
		componentCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "forgekernel",
			Name:      "component_count",
			Help:      "Number of entities carrying each registered component type.",
		}, []string{"component"}),
		eventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "forgekernel",
			Name:      "events_published_total",
			Help:      "Total events published through the event manager.",
		}),
		eventsDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "forgekernel",
			Name:      "events_dispatched_total",
			Help:      "Total handler invocations across all published events.",
		}),
		handlerErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "forgekernel",
			Name:      "event_handler_errors_total",
			Help:      "Total errors returned by an event handler.",
		}),
	}
}

// MustRegister registers every metric in c with reg, panicking on a
// duplicate registration the way the pack's own metrics setup code does.
func (c *Collector) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		c.tickDuration,
		c.entityCount,
		c.componentCount,
		c.eventsPublished,
		c.eventsDispatched,
		c.handlerErrors,
	)
}

// ObserveTick records one tick's duration in seconds.
func (c *Collector) ObserveTick(seconds float64) {
	c.tickDuration.Observe(seconds)
}

// ObserveCounts updates the entity and per-component gauges by walking
// componentKeys against r. Call once per tick, or on whatever cadence
// the caller's scrape interval needs.
func (c *Collector) ObserveCounts(r *ecs.Registry, aliveCount int, componentKeys []ecs.ComponentType) {
	c.entityCount.Set(float64(aliveCount))
	for _, key := range componentKeys {
		c.componentCount.WithLabelValues(string(key)).Set(float64(r.Count(key)))
	}
}

// ObserveEvents copies an EventManager's Stats into the counters. Since
// prometheus.Counter only moves forward, call it with cumulative totals
// (ecs.Stats is already cumulative) and let Add reconcile the delta.
func (c *Collector) ObserveEvents(prevPublished, prevDispatched, prevErrors *uint64, stats ecs.Stats) {
	c.eventsPublished.Add(float64(stats.Published - *prevPublished))
	c.eventsDispatched.Add(float64(stats.Dispatched - *prevDispatched))
	c.handlerErrors.Add(float64(stats.HandlerErrors - *prevErrors))
	*prevPublished = stats.Published
	*prevDispatched = stats.Dispatched
	*prevErrors = stats.HandlerErrors
}
