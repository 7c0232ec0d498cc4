// Package metrics exposes solver progress as Prometheus metrics.
//
// One Metrics value is registered per process; each run gets its own Observer
// labelled with the route source it searches.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"evosearch/internal/evo"
)

const (
	namespace = "evosearch"
	subsystem = "solver"
)

type Metrics struct {
	Generations  *prometheus.CounterVec
	Evaluations  *prometheus.CounterVec
	Improvements *prometheus.CounterVec
	Diversified  *prometheus.CounterVec
	BestFitness  *prometheus.GaugeVec
	MaxPoolSize  *prometheus.GaugeVec
	Runs         *prometheus.CounterVec
	RunDuration  *prometheus.HistogramVec
}

// New registers the solver metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Generations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "generations_total",
			Help:      "Completed generations across all parent lines",
		}, []string{"source"}),
		Evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "evaluations_total",
			Help:      "Candidate sequences scored by the cost function",
		}, []string{"source"}),
		Improvements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "improvements_total",
			Help:      "New global bests by producing strategy",
		}, []string{"source", "strategy"}),
		Diversified: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "diversifications_total",
			Help:      "Stalled parent lines reseeded from the leaders of every line",
		}, []string{"source"}),
		BestFitness: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "best_fitness",
			Help:      "Fitness of the current global best",
		}, []string{"source"}),
		MaxPoolSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "max_pool_size",
			Help:      "Current bound on parent line size and children per generation",
		}, []string{"source"}),
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "runs_total",
			Help:      "Finished runs by outcome",
		}, []string{"source", "outcome"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "run_duration_seconds",
			Help:      "Wall time of finished runs",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"source"}),
	}
}

// Observer returns an evo.Observer feeding m for one run on source.
func (m *Metrics) Observer(source string) evo.Observer {
	return &runObserver{metrics: m, source: source}
}

// RecordRun counts a finished run.
func (m *Metrics) RecordRun(source string, outcome evo.Outcome, elapsed time.Duration) {
	m.Runs.WithLabelValues(source, string(outcome)).Inc()
	m.RunDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

type runObserver struct {
	metrics     *Metrics
	source      string
	evaluations int
}

func (o *runObserver) GenerationCompleted(stats evo.GenerationStats) {
	o.metrics.Generations.WithLabelValues(o.source).Inc()
	if delta := stats.Evaluations - o.evaluations; delta > 0 {
		o.metrics.Evaluations.WithLabelValues(o.source).Add(float64(delta))
	}
	o.evaluations = stats.Evaluations
	o.metrics.MaxPoolSize.WithLabelValues(o.source).Set(float64(stats.MaxPoolSize))
}

func (o *runObserver) Improved(improvement evo.Improvement) {
	o.metrics.Improvements.WithLabelValues(o.source, improvement.Strategy).Inc()
	o.metrics.BestFitness.WithLabelValues(o.source).Set(improvement.Fitness)
}

func (o *runObserver) Diversified(int, int) {
	o.metrics.Diversified.WithLabelValues(o.source).Inc()
}
