package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"evosearch/internal/model"
)

const (
	runIndexFile     = "run_index.json"
	configFile       = "config.json"
	summaryFile      = "summary.json"
	improvementsFile = "improvements.csv"
	lineageFile      = "lineage.json"
)

// RunConfig records the inputs of one search.
type RunConfig struct {
	RunID        string   `json:"run_id"`
	Source       string   `json:"source"`
	Alphabet     string   `json:"alphabet"`
	Length       int      `json:"length"`
	ParentLines  int      `json:"parent_lines"`
	BudgetMillis int64    `json:"budget_ms"`
	Seed         int64    `json:"seed"`
	Strategies   []string `json:"strategies,omitempty"`
	Canonical    bool     `json:"canonical"`
	BenchmarkID  string   `json:"benchmark_id,omitempty"`
}

// RunSummary is the outcome of one search.
type RunSummary struct {
	Outcome        string         `json:"outcome"`
	BestGenes      string         `json:"best_genes"`
	BestFitness    float64        `json:"best_fitness"`
	BestStrategy   string         `json:"best_strategy"`
	Generations    int            `json:"generations"`
	Evaluations    int            `json:"evaluations"`
	MaxPoolSize    int            `json:"max_pool_size"`
	ElapsedMillis  int64          `json:"elapsed_ms"`
	StrategyCounts map[string]int `json:"strategy_counts,omitempty"`
}

type RunArtifacts struct {
	Config       RunConfig                 `json:"config"`
	Summary      RunSummary                `json:"summary"`
	Improvements []model.ImprovementRecord `json:"improvements"`
	Lineage      []model.LineageRecord     `json:"lineage"`
}

type RunIndexEntry struct {
	RunID        string  `json:"run_id"`
	Source       string  `json:"source"`
	Length       int     `json:"length"`
	ParentLines  int     `json:"parent_lines"`
	Seed         int64   `json:"seed"`
	Outcome      string  `json:"outcome"`
	BestFitness  float64 `json:"best_fitness"`
	CreatedAtUTC string  `json:"created_at_utc"`
}

func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, configFile), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, summaryFile), artifacts.Summary); err != nil {
		return "", err
	}
	if err := writeImprovements(filepath.Join(runDir, improvementsFile), artifacts.Improvements); err != nil {
		return "", err
	}
	lineage := artifacts.Lineage
	if lineage == nil {
		lineage = []model.LineageRecord{}
	}
	if err := writeJSON(filepath.Join(runDir, lineageFile), lineage); err != nil {
		return "", err
	}

	return runDir, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns the index newest first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// later appends win ties
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// ExportRunArtifacts copies a run directory to outDir/<runID>.
func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if strings.TrimSpace(runID) == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	for _, file := range []string{configFile, summaryFile, improvementsFile, lineageFile} {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	return dst, nil
}

func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	var cfg RunConfig
	ok, err := readJSON(filepath.Join(baseDir, runID, configFile), &cfg)
	return cfg, ok, err
}

func ReadRunSummary(baseDir, runID string) (RunSummary, bool, error) {
	var summary RunSummary
	ok, err := readJSON(filepath.Join(baseDir, runID, summaryFile), &summary)
	return summary, ok, err
}

func ReadLineage(baseDir, runID string) ([]model.LineageRecord, bool, error) {
	var lineage []model.LineageRecord
	ok, err := readJSON(filepath.Join(baseDir, runID, lineageFile), &lineage)
	return lineage, ok, err
}

var improvementsHeader = []string{"generation", "fitness", "strategy", "line", "elapsed_ms", "genes"}

func writeImprovements(path string, improvements []model.ImprovementRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(improvementsHeader); err != nil {
		return err
	}
	for _, improvement := range improvements {
		if err := writer.Write([]string{
			strconv.Itoa(improvement.Generation),
			strconv.FormatFloat(improvement.Fitness, 'f', -1, 64),
			improvement.Strategy,
			strconv.Itoa(improvement.Line),
			strconv.FormatInt(improvement.ElapsedMillis, 10),
			improvement.Genes,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func ReadImprovements(baseDir, runID string) ([]model.ImprovementRecord, bool, error) {
	path := filepath.Join(baseDir, runID, improvementsFile)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []model.ImprovementRecord{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < len(improvementsHeader) {
		return nil, false, fmt.Errorf("improvements header must have %d columns", len(improvementsHeader))
	}

	improvements := make([]model.ImprovementRecord, 0, 64)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		improvement, err := parseImprovement(record)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", path, err)
		}
		improvements = append(improvements, improvement)
	}
	return improvements, true, nil
}

func parseImprovement(record []string) (model.ImprovementRecord, error) {
	generation, err := strconv.Atoi(record[0])
	if err != nil {
		return model.ImprovementRecord{}, err
	}
	fitness, err := strconv.ParseFloat(record[1], 64)
	if err != nil {
		return model.ImprovementRecord{}, err
	}
	line, err := strconv.Atoi(record[3])
	if err != nil {
		return model.ImprovementRecord{}, err
	}
	elapsed, err := strconv.ParseInt(record[4], 10, 64)
	if err != nil {
		return model.ImprovementRecord{}, err
	}
	return model.ImprovementRecord{
		Generation:    generation,
		Fitness:       fitness,
		Strategy:      record[2],
		Line:          line,
		ElapsedMillis: elapsed,
		Genes:         record[5],
	}, nil
}

func readJSON(path string, value any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, value); err != nil {
		return false, err
	}
	return true, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
