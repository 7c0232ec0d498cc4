package evo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// chain builds root -> strategies[0] -> strategies[1] ... and returns the last node.
func chain(strategies ...Strategy) *Individual {
	node := &Individual{Genes: "root", Strategy: RandomInit{Length: 4}}
	for _, strategy := range strategies {
		node = &Individual{Genes: node.Genes, Strategy: strategy, Parent: node}
	}
	return node
}

func poolNames(pool []Strategy) []string {
	names := make([]string, 0, len(pool))
	for _, strategy := range pool {
		names = append(names, strategy.Name())
	}
	return names
}

func TestBuildStrategyPoolRootOnlyReturnsKnown(t *testing.T) {
	known := DefaultRegistry().Strategies()
	pool := BuildStrategyPool(known, chain())
	require.Equal(t, poolNames(known), poolNames(pool))
}

func TestBuildStrategyPoolWeightsByAncestry(t *testing.T) {
	known := DefaultRegistry().Strategies()
	best := chain(Mutate{}, Mutate{}, Swap{}, Crossover{})

	pool := BuildStrategyPool(known, best)
	require.Equal(t, []string{
		MutateName, CrossoverName, ReverseName, ShiftName, SwapName,
		CrossoverName, SwapName, MutateName, MutateName,
	}, poolNames(pool))
}

func TestBuildStrategyPoolScalesLongAncestry(t *testing.T) {
	known := DefaultRegistry().Strategies()
	var steps []Strategy
	for i := 0; i < 40; i++ {
		steps = append(steps, Mutate{})
	}
	for i := 0; i < 20; i++ {
		steps = append(steps, Swap{})
	}

	pool := BuildStrategyPool(known, chain(steps...))
	require.Len(t, pool, len(known)+15)
	require.LessOrEqual(t, len(pool), len(known)*(1+ancestryWeight))

	counts := map[string]int{}
	for _, name := range poolNames(pool) {
		counts[name]++
	}
	require.Equal(t, 11, counts[MutateName])
	require.Equal(t, 6, counts[SwapName])
	require.Equal(t, 1, counts[ReverseName])
	// most recent strategy comes first among the extras
	require.Equal(t, SwapName, pool[len(known)].Name())
}

func TestBuildStrategyPoolFloorsExtraCopies(t *testing.T) {
	known := DefaultRegistry().Strategies()
	var steps []Strategy
	for i := 0; i < 9; i++ {
		steps = append(steps, Mutate{})
	}
	for i := 0; i < 7; i++ {
		steps = append(steps, Shift{})
	}

	// total 16, scaled to 15: Shift gets floor(105/16)=6, Mutate floor(135/16)=8
	pool := BuildStrategyPool(known, chain(steps...))
	require.Len(t, pool, len(known)+14)
}

func TestBuildStrategyPoolDoesNotMutateKnown(t *testing.T) {
	known := DefaultRegistry().Strategies()
	before := poolNames(known)
	_ = BuildStrategyPool(known[:2], chain(Swap{}, Swap{}))
	require.Equal(t, before, poolNames(known))
}

func TestStrategyCountsIncludesRoot(t *testing.T) {
	counts := StrategyCounts(chain(Mutate{}, Swap{}, Mutate{}))
	require.Equal(t, map[string]int{RandomInitName: 1, MutateName: 2, SwapName: 1}, counts)
}

func TestLineageWalksToRoot(t *testing.T) {
	best := chain(Mutate{}, Reverse{})
	best.Fitness = 3
	lineage := best.Lineage()
	require.Len(t, lineage, 3)
	require.Equal(t, 0, lineage[0].Depth)
	require.Equal(t, ReverseName, lineage[0].Strategy)
	require.Equal(t, float64(3), lineage[0].Fitness)
	require.Equal(t, RandomInitName, lineage[2].Strategy)
	require.Equal(t, 2, lineage[2].Depth)
}
