package evo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// scriptedSource replays queued values and checks each call's bounds.
type scriptedSource struct {
	t      *testing.T
	values []int
	next   int
}

func newScriptedSource(t *testing.T, values ...int) *scriptedSource {
	t.Helper()
	return &scriptedSource{t: t, values: values}
}

func (s *scriptedSource) Next(min, max int) int {
	s.t.Helper()
	require.Less(s.t, s.next, len(s.values), "random source exhausted")
	value := s.values[s.next]
	s.next++
	require.GreaterOrEqual(s.t, value, min, "value below inclusive min")
	require.Less(s.t, value, max, "value not below exclusive max")
	return value
}

func (s *scriptedSource) requireConsumed() {
	s.t.Helper()
	require.Equal(s.t, len(s.values), s.next, "not every scripted value was drawn")
}

// boundsSource records the bounds of every draw and always returns min.
type boundsSource struct {
	bounds [][2]int
}

func (s *boundsSource) Next(min, max int) int {
	s.bounds = append(s.bounds, [2]int{min, max})
	return min
}

// stepClock advances by step on every reading.
type stepClock struct {
	now  time.Time
	step time.Duration
}

func newStepClock(step time.Duration) *stepClock {
	return &stepClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), step: step}
}

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

// hammingCost scores the number of positions differing from target.
func hammingCost(target string) CostFunc {
	return func(genes string) (float64, error) {
		diff := 0
		for i := range genes {
			if genes[i] != target[i] {
				diff++
			}
		}
		return float64(diff), nil
	}
}

// recordingObserver keeps every event it receives.
type recordingObserver struct {
	generations  []GenerationStats
	improvements []Improvement
	diversified  []int
}

func (o *recordingObserver) GenerationCompleted(stats GenerationStats) {
	o.generations = append(o.generations, stats)
}

func (o *recordingObserver) Improved(improvement Improvement) {
	o.improvements = append(o.improvements, improvement)
}

func (o *recordingObserver) Diversified(line, _ int) {
	o.diversified = append(o.diversified, line)
}
