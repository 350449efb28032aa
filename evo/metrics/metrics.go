// Package metrics exports the progress of a run as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/baldhumanity/gridevo/evo"
)

// Observer is an evo.Observer that keeps a set of Prometheus collectors up
// to date. Every series carries a run_id label so several runs can share one
// registry.
type Observer struct {
	generation  prometheus.Gauge
	ratio       prometheus.Gauge
	survivors   prometheus.Gauge
	ticks       prometheus.Counter
	extinctions prometheus.Counter
	moves       *prometheus.CounterVec
}

var _ evo.Observer = (*Observer)(nil)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer, runID string) (*Observer, error) {
	labels := prometheus.Labels{"run_id": runID}
	o := &Observer{
		generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "gridevo_generation",
			Help:        "Index of the last finished generation.",
			ConstLabels: labels,
		}),
		ratio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "gridevo_survival_ratio",
			Help:        "Fraction of the population that survived the last generation.",
			ConstLabels: labels,
		}),
		survivors: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "gridevo_survivors",
			Help:        "Number of agents that survived the last generation.",
			ConstLabels: labels,
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "gridevo_ticks_total",
			Help:        "World ticks simulated.",
			ConstLabels: labels,
		}),
		extinctions: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "gridevo_extinctions_total",
			Help:        "Generations that ended without survivors.",
			ConstLabels: labels,
		}),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "gridevo_moves_total",
			Help:        "Attempted moves by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{o.generation, o.ratio, o.survivors, o.ticks, o.extinctions, o.moves} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// OnTick counts the tick and its move outcomes.
func (o *Observer) OnTick(s *evo.WorldSnapshot) {
	o.ticks.Inc()
	o.moves.WithLabelValues("accepted").Add(float64(s.Moves.Accepted))
	o.moves.WithLabelValues("rejected").Add(float64(s.Moves.Rejected))
}

// OnGeneration publishes the outcome of a finished generation.
func (o *Observer) OnGeneration(r *evo.GenerationResult) {
	o.generation.Set(float64(r.Generation))
	o.ratio.Set(r.SurvivalRatio)
	o.survivors.Set(float64(len(r.Survivors)))
	if r.Extinct {
		o.extinctions.Inc()
	}
}
