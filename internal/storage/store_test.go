package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"evosearch/internal/model"
)

// exerciseStore runs the behaviour every backend must share against an
// initialized store.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	later := model.RunRecord{
		VersionedRecord: CurrentVersion(),
		ID:              "run-b",
		CreatedAt:       base.Add(time.Minute),
		Source:          "circle",
		Outcome:         "converged",
		BestGenes:       "abc",
		StrategyCounts:  map[string]int{"Mutate": 3},
	}
	earlier := model.RunRecord{
		VersionedRecord: CurrentVersion(),
		ID:              "run-a",
		CreatedAt:       base,
		Source:          "circle",
		Outcome:         "timed_out",
		BestGenes:       "acb",
		BestFitness:     2,
	}
	for _, run := range []model.RunRecord{later, earlier} {
		require.NoError(t, store.SaveRun(ctx, run), "save run %s", run.ID)
	}

	loaded, ok, err := store.GetRun(ctx, "run-b")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc", loaded.BestGenes)
	require.Equal(t, 3, loaded.StrategyCounts["Mutate"])
	require.True(t, loaded.CreatedAt.Equal(later.CreatedAt))

	_, ok, err = store.GetRun(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"run-a", "run-b"}, runIDs(runs), "runs are listed oldest first")

	improvements := []model.ImprovementRecord{
		{Generation: 1, Fitness: 5, Genes: "cab", Strategy: "RandomInit"},
		{Generation: 3, Fitness: 0, Genes: "abc", Strategy: "Swap", Line: 1},
	}
	require.NoError(t, store.SaveImprovements(ctx, "run-b", improvements))
	loadedImprovements, ok, err := store.GetImprovements(ctx, "run-b")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, improvements, loadedImprovements)

	lineage := []model.LineageRecord{
		{VersionedRecord: CurrentVersion(), Depth: 0, Genes: "abc", Strategy: "Swap", Scored: true},
		{VersionedRecord: CurrentVersion(), Depth: 1, Genes: "cab", Fitness: 5, Strategy: "RandomInit", Scored: true},
	}
	require.NoError(t, store.SaveLineage(ctx, "run-b", lineage))
	loadedLineage, ok, err := store.GetLineage(ctx, "run-b")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, lineage, loadedLineage)

	require.NoError(t, store.DeleteRun(ctx, "run-b"))
	_, ok, _ = store.GetRun(ctx, "run-b")
	require.False(t, ok, "run-b should be deleted")
	_, ok, _ = store.GetImprovements(ctx, "run-b")
	require.False(t, ok, "improvements of run-b should be deleted")
	_, ok, _ = store.GetLineage(ctx, "run-b")
	require.False(t, ok, "lineage of run-b should be deleted")

	runs, err = store.ListRuns(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"run-a"}, runIDs(runs))
}

func runIDs(runs []model.RunRecord) []string {
	ids := make([]string, 0, len(runs))
	for _, run := range runs {
		ids = append(ids, run.ID)
	}
	return ids
}
