package evo

import "math/rand"

// RandomSource yields uniform integers in [min, max).
//
// Every strategy draws from the source in a fixed order so a scripted source can
// replay an exact child.
type RandomSource interface {
	Next(min, max int) int
}

// MathRandSource adapts math/rand to RandomSource.
type MathRandSource struct {
	rng *rand.Rand
}

func NewRandomSource(seed int64) *MathRandSource {
	return &MathRandSource{rng: rand.New(rand.NewSource(seed))}
}

// Next returns min when the range is empty.
func (s *MathRandSource) Next(min, max int) int {
	if max <= min {
		return min
	}
	return min + s.rng.Intn(max-min)
}
