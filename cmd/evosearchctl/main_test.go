package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"evosearch/internal/model"
	"evosearch/internal/stats"
)

const hexSource = "tsplib:../../internal/route/testdata/hex6"

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestRunThenInspect(t *testing.T) {
	dir := t.TempDir()
	artifacts := filepath.Join(dir, "runs")
	common := []string{"--artifacts-dir", artifacts, "--exports-dir", filepath.Join(dir, "exports")}

	out, err := runCommand(t, append([]string{"run", "--source", hexSource, "--budget", "10s", "--seed", "11"}, common...)...)
	require.NoError(t, err)
	require.Contains(t, out, "outcome=converged")
	require.Contains(t, out, "best_genes=abcdef")

	out, err = runCommand(t, append([]string{"runs", "--json"}, common...)...)
	require.NoError(t, err)
	var entries []stats.RunIndexEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries), out)
	require.Len(t, entries, 1)
	require.Equal(t, "hex6", entries[0].Source)

	out, err = runCommand(t, append([]string{"lineage", "--latest", "--json"}, common...)...)
	require.NoError(t, err)
	var lineage []model.LineageRecord
	require.NoError(t, json.Unmarshal([]byte(out), &lineage))
	require.NotEmpty(t, lineage)
	require.Equal(t, "abcdef", lineage[0].Genes)

	out, err = runCommand(t, append([]string{"improvements", "--run-id", entries[0].RunID}, common...)...)
	require.NoError(t, err)
	require.Contains(t, out, "genes=abcdef")

	out, err = runCommand(t, append([]string{"export", "--latest"}, common...)...)
	require.NoError(t, err)
	require.Contains(t, out, "exported run_id="+entries[0].RunID)
}

func TestBenchmarkCommand(t *testing.T) {
	artifacts := filepath.Join(t.TempDir(), "runs")
	out, err := runCommand(t, "benchmark", "--source", hexSource, "--budget", "10s", "--seed", "3",
		"--runs", "2", "--parallel", "2", "--artifacts-dir", artifacts)
	require.NoError(t, err)
	require.Contains(t, out, "runs=2 converged=2")

	out, err = runCommand(t, "benchmarks", "--artifacts-dir", artifacts)
	require.NoError(t, err)
	require.Contains(t, out, "source=hex6 runs=2")
}

func TestStrategiesCommand(t *testing.T) {
	out, err := runCommand(t, "strategies")
	require.NoError(t, err)
	for _, name := range []string{"Crossover", "Mutate", "Reverse", "Shift", "Swap"} {
		require.Contains(t, out, name)
	}
}

func TestCommandErrors(t *testing.T) {
	dir := t.TempDir()
	cases := map[string][]string{
		"unknown command":    {"evolve"},
		"unknown source":     {"run", "--source", "moon", "--artifacts-dir", dir},
		"zero parent lines":  {"run", "--parent-lines", "0", "--artifacts-dir", dir},
		"bad log level":      {"run", "--log-level", "loud", "--artifacts-dir", dir},
		"run ref missing":    {"lineage", "--artifacts-dir", dir},
		"run ref conflict":   {"export", "--run-id", "x", "--latest", "--artifacts-dir", dir},
		"no runs yet":        {"improvements", "--latest", "--artifacts-dir", dir},
		"zero runs":          {"benchmark", "--runs", "0", "--artifacts-dir", dir},
		"zero limit":         {"runs", "--limit", "0", "--artifacts-dir", dir},
		"unexpected arg":     {"runs", "extra", "--artifacts-dir", dir},
		"bad budget literal": {"run", "--budget", "soon", "--artifacts-dir", dir},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := runCommand(t, args...)
			require.Error(t, err, "args %v", args)
		})
	}
}

func TestRunsCommandWithEmptyIndex(t *testing.T) {
	out, err := runCommand(t, "runs", "--artifacts-dir", t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "no runs found", strings.TrimSpace(out))
}
