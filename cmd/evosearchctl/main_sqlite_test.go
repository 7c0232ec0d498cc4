//go:build sqlite

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunCommandSQLitePersistsLineage(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "evosearch.db")
	// remove the artifacts after the run so lineage has to come from sqlite
	artifacts := filepath.Join(dir, "runs")
	common := []string{"--store", "sqlite", "--db-path", dbPath, "--artifacts-dir", artifacts}

	out, err := runCommand(t, append([]string{"run", "--source", hexSource, "--budget", "10s", "--seed", "21"}, common...)...)
	require.NoError(t, err)
	require.FileExists(t, dbPath)
	var runID string
	for _, field := range strings.Fields(out) {
		if v, ok := strings.CutPrefix(field, "run_id="); ok {
			runID = v
		}
	}
	require.NotEmpty(t, runID, "run id missing from output:\n%s", out)
	require.NoError(t, os.RemoveAll(filepath.Join(artifacts, runID)))

	out, err = runCommand(t, append([]string{"lineage", "--run-id", runID, "--limit", "1"}, common...)...)
	require.NoError(t, err)
	require.Contains(t, out, "depth=0")
	require.Contains(t, out, "genes=abcdef")
}
