package stats

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"evosearch/internal/model"
)

const benchmarksDir = "benchmarks"

// ListBenchmarks returns every stored benchmark summary ordered by id.
func ListBenchmarks(baseDir string) ([]BenchmarkSummary, error) {
	root := filepath.Join(baseDir, benchmarksDir)
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return []BenchmarkSummary{}, nil
		}
		return nil, err
	}

	summaries := make([]BenchmarkSummary, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		summary, ok, err := ReadBenchmarkSummary(baseDir, entry.Name())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].BenchmarkID < summaries[j].BenchmarkID
	})
	return summaries, nil
}

func benchmarkDir(baseDir, id string) string {
	return filepath.Join(baseDir, benchmarksDir, id)
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

func writeBenchmarkRuns(path string, runs []model.RunRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"run_id", "outcome", "best_fitness", "generations", "evaluations", "elapsed_ms", "best_genes"}); err != nil {
		return err
	}
	for _, run := range runs {
		if err := writer.Write([]string{
			run.ID,
			run.Outcome,
			strconv.FormatFloat(run.BestFitness, 'f', -1, 64),
			strconv.Itoa(run.Generations),
			strconv.Itoa(run.Evaluations),
			strconv.FormatInt(run.ElapsedMillis, 10),
			run.BestGenes,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
