package route

import (
	"fmt"
	"math"

	"evosearch/internal/evo"
)

// missingPenalty is charged per point the route never visits.
const missingPenalty = 1000

// RouteLength is the closed tour length, returning from the last symbol to the first.
func RouteLength(source Source, genes string) float64 {
	if len(genes) < 2 {
		return 0
	}
	total := 0.0
	for i := 0; i < len(genes); i++ {
		total += source.Distance(genes[i], genes[(i+1)%len(genes)])
	}
	return total
}

// Cost is the integer route score: 1000 per missing point plus the floored length.
func Cost(source Source, genes string) int {
	return missingPenalty*missingPoints(source, genes) + int(math.Floor(RouteLength(source, genes)))
}

func missingPoints(source Source, genes string) int {
	seen := make(map[byte]struct{}, len(genes))
	for i := 0; i < len(genes); i++ {
		seen[genes[i]] = struct{}{}
	}
	return len(source.Alphabet()) - len(seen)
}

// Fitness scores genes as the excess over the optimal tour, so the optimal route
// and its rotations and mirrors score exactly 0.
func Fitness(source Source) evo.CostFunc {
	optimal := RouteLength(source, source.OptimalRoute())
	alphabet := source.Alphabet()
	return func(genes string) (float64, error) {
		for i := 0; i < len(genes); i++ {
			if !containsSymbol(alphabet, genes[i]) {
				return 0, fmt.Errorf("route %s: symbol %q is not a point", source.Name(), genes[i])
			}
		}
		excess := missingPenalty*float64(missingPoints(source, genes)) + RouteLength(source, genes) - optimal
		excess = math.Round(excess*1e6) / 1e6
		return math.Max(0, excess), nil
	}
}

func containsSymbol(alphabet string, symbol byte) bool {
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] == symbol {
			return true
		}
	}
	return false
}
