package stats

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"evosearch/internal/model"
)

func sampleArtifacts(runID string) RunArtifacts {
	version := model.VersionedRecord{SchemaVersion: 1, CodecVersion: 1}
	return RunArtifacts{
		Config: RunConfig{
			RunID:        runID,
			Source:       "circle",
			Alphabet:     "abc",
			Length:       3,
			ParentLines:  2,
			BudgetMillis: 20000,
			Seed:         1,
			Strategies:   []string{"Mutate", "Swap"},
			Canonical:    true,
		},
		Summary: RunSummary{
			Outcome:        "converged",
			BestGenes:      "abc",
			BestStrategy:   "Swap",
			Generations:    4,
			Evaluations:    30,
			MaxPoolSize:    9,
			ElapsedMillis:  12,
			StrategyCounts: map[string]int{"RandomInit": 1, "Swap": 1},
		},
		Improvements: []model.ImprovementRecord{
			{Generation: 1, Fitness: 3.5, Genes: "acb", Strategy: "RandomInit", ElapsedMillis: 1},
			{Generation: 4, Fitness: 0, Genes: "abc", Strategy: "Swap", Line: 1, ElapsedMillis: 12},
		},
		Lineage: []model.LineageRecord{
			{VersionedRecord: version, Depth: 0, Genes: "abc", Strategy: "Swap", Scored: true},
			{VersionedRecord: version, Depth: 1, Genes: "acb", Fitness: 3.5, Strategy: "RandomInit", Scored: true},
		},
	}
}

func TestWriteAndExportRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "exports")
	artifacts := sampleArtifacts("run-123")

	runDir, err := WriteRunArtifacts(baseDir, artifacts)
	require.NoError(t, err)

	files := []string{"config.json", "summary.json", "improvements.csv", "lineage.json"}
	for _, file := range files {
		require.FileExists(t, filepath.Join(runDir, file))
	}

	exportedDir, err := ExportRunArtifacts(baseDir, "run-123", outDir)
	require.NoError(t, err)
	for _, file := range files {
		require.FileExists(t, filepath.Join(exportedDir, file))
	}

	_, err = ExportRunArtifacts(baseDir, "missing", outDir)
	require.Error(t, err, "export of unknown run should fail")
}

func TestRunArtifactsReadBack(t *testing.T) {
	baseDir := t.TempDir()
	artifacts := sampleArtifacts("run-7")
	_, err := WriteRunArtifacts(baseDir, artifacts)
	require.NoError(t, err)

	cfg, ok, err := ReadRunConfig(baseDir, "run-7")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, artifacts.Config, cfg)

	summary, ok, err := ReadRunSummary(baseDir, "run-7")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, artifacts.Summary, summary)

	improvements, ok, err := ReadImprovements(baseDir, "run-7")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, artifacts.Improvements, improvements)

	lineage, ok, err := ReadLineage(baseDir, "run-7")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, artifacts.Lineage, lineage)

	_, ok, err = ReadRunConfig(baseDir, "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestWriteRunArtifactsRequiresRunID(t *testing.T) {
	_, err := WriteRunArtifacts(t.TempDir(), RunArtifacts{})
	require.Error(t, err)
}

func TestWriteRunArtifactsWithoutImprovements(t *testing.T) {
	baseDir := t.TempDir()
	artifacts := sampleArtifacts("run-empty")
	artifacts.Improvements = nil
	artifacts.Lineage = nil
	_, err := WriteRunArtifacts(baseDir, artifacts)
	require.NoError(t, err)

	improvements, ok, err := ReadImprovements(baseDir, "run-empty")
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, improvements)

	lineage, ok, err := ReadLineage(baseDir, "run-empty")
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, lineage)
}

func TestRunIndexAppendListAndUpsert(t *testing.T) {
	baseDir := t.TempDir()

	entries := []RunIndexEntry{
		{RunID: "run-1", Source: "circle", Outcome: "converged", CreatedAtUTC: "2026-02-10T10:00:00Z"},
		{RunID: "run-2", Source: "circle", Outcome: "timed_out", BestFitness: 3, CreatedAtUTC: "2026-02-10T11:00:00Z"},
	}
	for _, entry := range entries {
		require.NoError(t, AppendRunIndex(baseDir, entry), "append %s", entry.RunID)
	}

	index, err := ListRunIndex(baseDir)
	require.NoError(t, err)
	require.Len(t, index, 2)
	require.Equal(t, "run-2", index[0].RunID, "newest first")
	require.Equal(t, "run-1", index[1].RunID)

	updated := entries[0]
	updated.BestFitness = 0.5
	require.NoError(t, AppendRunIndex(baseDir, updated))
	index, err = ListRunIndex(baseDir)
	require.NoError(t, err)
	require.Len(t, index, 2)
	require.Equal(t, 0.5, index[1].BestFitness)

	require.Error(t, AppendRunIndex(baseDir, RunIndexEntry{}), "run id is required")
}

func TestListRunIndexMissingFile(t *testing.T) {
	index, err := ListRunIndex(t.TempDir())
	require.NoError(t, err)
	require.Empty(t, index)
}
