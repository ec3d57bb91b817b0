// Package prom exports cache access counters to Prometheus.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// Exporter is a hook that counts the accesses it observes. Attach it to the
// levels and to the hierarchy. All Prometheus metric types are
// goroutine-safe, so one Exporter can observe several hierarchies.
type Exporter struct {
	accesses   *prometheus.CounterVec
	evictions  *prometheus.CounterVec
	mainMemory prometheus.Counter
}

// New constructs an Exporter and registers its metrics with reg
// (nil => prometheus.DefaultRegisterer) under namespace ns.
func New(reg prometheus.Registerer, ns string) *Exporter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	e := &Exporter{
		accesses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "cache_accesses_total",
				Help:      "Cache lookups by level and outcome",
			},
			[]string{"level", "outcome"},
		),
		evictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "cache_evictions_total",
				Help:      "Valid lines overwritten, by level",
			},
			[]string{"level"},
		),
		mainMemory: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "main_memory_accesses_total",
			Help:      "Addresses that missed every level",
		}),
	}
	reg.MustRegister(e.accesses, e.evictions, e.mainMemory)

	return e
}

// Func updates the counters.
func (e *Exporter) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case cache.HookPosAccess:
		d := ctx.Item.(cache.AccessDetail)
		level := ctx.Domain.Name()

		e.accesses.WithLabelValues(level, d.Outcome.String()).Inc()

		if d.Evicted {
			e.evictions.WithLabelValues(level).Inc()
		}
	case cache.HookPosMainMemoryAccess:
		e.mainMemory.Inc()
	}
}

var _ hooking.Hook = (*Exporter)(nil)
