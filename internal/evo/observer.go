package evo

import "time"

// Improvement is reported every time a new global best is found, and once for
// the best individual of the seed population.
type Improvement struct {
	Generation int           `json:"generation"`
	Fitness    float64       `json:"fitness"`
	Genes      string        `json:"genes"`
	Strategy   string        `json:"strategy"`
	Line       int           `json:"line"`
	Elapsed    time.Duration `json:"elapsed"`
}

// GenerationStats summarises one completed generation of the active line.
type GenerationStats struct {
	Generation      int
	Line            int
	Children        int
	Evaluations     int
	BestFitness     float64
	LineBestFitness float64
	LineSize        int
	PoolSize        int
	MaxPoolSize     int
	Elapsed         time.Duration
}

// Observer receives solver events. Calls happen synchronously on the solving
// goroutine.
type Observer interface {
	GenerationCompleted(stats GenerationStats)
	Improved(improvement Improvement)
	Diversified(line, size int)
}

type NopObserver struct{}

func (NopObserver) GenerationCompleted(GenerationStats) {}
func (NopObserver) Improved(Improvement)                {}
func (NopObserver) Diversified(int, int)                {}

// MultiObserver fans events out to several observers in order.
type MultiObserver []Observer

func (m MultiObserver) GenerationCompleted(stats GenerationStats) {
	for _, o := range m {
		o.GenerationCompleted(stats)
	}
}

func (m MultiObserver) Improved(improvement Improvement) {
	for _, o := range m {
		o.Improved(improvement)
	}
}

func (m MultiObserver) Diversified(line, size int) {
	for _, o := range m {
		o.Diversified(line, size)
	}
}
