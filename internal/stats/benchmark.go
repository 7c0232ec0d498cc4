package stats

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"evosearch/internal/model"
)

const (
	benchmarkSummaryFile = "benchmark_summary.json"
	benchmarkRunsFile    = "benchmark_runs.csv"
)

var ErrNoBenchmarkRuns = errors.New("benchmark has no runs")

// Spread describes one sample of per-run values.
type Spread struct {
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// HistogramBin counts the runs that finished at one best fitness.
type HistogramBin struct {
	Fitness float64 `json:"fitness"`
	Count   int     `json:"count"`
}

type BenchmarkSummary struct {
	BenchmarkID   string         `json:"benchmark_id"`
	Source        string         `json:"source"`
	TotalRuns     int            `json:"total_runs"`
	ConvergedRuns int            `json:"converged_runs"`
	SuccessRate   float64        `json:"success_rate"`
	Fitness       Spread         `json:"fitness"`
	ElapsedMillis Spread         `json:"elapsed_ms"`
	Generations   Spread         `json:"generations"`
	Evaluations   Spread         `json:"evaluations"`
	Histogram     []HistogramBin `json:"histogram"`
	RunIDs        []string       `json:"run_ids"`
}

// SummarizeBenchmark aggregates the final state of repeated runs on one source.
func SummarizeBenchmark(benchmarkID, source string, runs []model.RunRecord) (BenchmarkSummary, error) {
	if len(runs) == 0 {
		return BenchmarkSummary{}, ErrNoBenchmarkRuns
	}

	fitness := make([]float64, 0, len(runs))
	elapsed := make([]float64, 0, len(runs))
	generations := make([]float64, 0, len(runs))
	evaluations := make([]float64, 0, len(runs))
	counts := map[float64]int{}
	summary := BenchmarkSummary{
		BenchmarkID: benchmarkID,
		Source:      source,
		TotalRuns:   len(runs),
		RunIDs:      make([]string, 0, len(runs)),
	}
	for _, run := range runs {
		fitness = append(fitness, run.BestFitness)
		elapsed = append(elapsed, float64(run.ElapsedMillis))
		generations = append(generations, float64(run.Generations))
		evaluations = append(evaluations, float64(run.Evaluations))
		counts[run.BestFitness]++
		if run.BestFitness == 0 {
			summary.ConvergedRuns++
		}
		summary.RunIDs = append(summary.RunIDs, run.ID)
	}

	summary.SuccessRate = float64(summary.ConvergedRuns) / float64(len(runs))
	summary.Fitness = spread(fitness)
	summary.ElapsedMillis = spread(elapsed)
	summary.Generations = spread(generations)
	summary.Evaluations = spread(evaluations)
	summary.Histogram = make([]HistogramBin, 0, len(counts))
	for value, count := range counts {
		summary.Histogram = append(summary.Histogram, HistogramBin{Fitness: value, Count: count})
	}
	sort.Slice(summary.Histogram, func(i, j int) bool {
		return summary.Histogram[i].Fitness < summary.Histogram[j].Fitness
	})
	return summary, nil
}

func spread(values []float64) Spread {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mean, std := stat.MeanStdDev(sorted, nil)
	if len(sorted) < 2 {
		std = 0
	}
	return Spread{
		Mean:   mean,
		Std:    std,
		Min:    floats.Min(sorted),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Max:    floats.Max(sorted),
	}
}

// WriteBenchmarkSummary stores the summary and a per-run series under
// baseDir/benchmarks/<id>.
func WriteBenchmarkSummary(baseDir string, summary BenchmarkSummary, runs []model.RunRecord) (string, error) {
	if summary.BenchmarkID == "" {
		return "", fmt.Errorf("benchmark id is required")
	}
	dir := benchmarkDir(baseDir, summary.BenchmarkID)
	if err := ensureDir(dir); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, benchmarkSummaryFile), summary); err != nil {
		return "", err
	}
	if err := writeBenchmarkRuns(filepath.Join(dir, benchmarkRunsFile), runs); err != nil {
		return "", err
	}
	return dir, nil
}

func ReadBenchmarkSummary(baseDir, benchmarkID string) (BenchmarkSummary, bool, error) {
	var summary BenchmarkSummary
	ok, err := readJSON(filepath.Join(benchmarkDir(baseDir, benchmarkID), benchmarkSummaryFile), &summary)
	return summary, ok, err
}
