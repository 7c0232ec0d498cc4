package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord summarises one finished search.
type RunRecord struct {
	VersionedRecord
	ID             string         `json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	Source         string         `json:"source"`
	Alphabet       string         `json:"alphabet"`
	Length         int            `json:"length"`
	ParentLines    int            `json:"parent_lines"`
	BudgetMillis   int64          `json:"budget_ms"`
	Seed           int64          `json:"seed"`
	Strategies     []string       `json:"strategies,omitempty"`
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

// ImprovementRecord is one new global best in the order it was found.
type ImprovementRecord struct {
	Generation    int     `json:"generation"`
	Fitness       float64 `json:"fitness"`
	Genes         string  `json:"genes"`
	Strategy      string  `json:"strategy"`
	Line          int     `json:"line"`
	ElapsedMillis int64   `json:"elapsed_ms"`
}

// LineageRecord is one ancestry node of a run's best individual. Depth 0 is the
// best individual itself and the deepest record is the RandomInit root.
type LineageRecord struct {
	VersionedRecord
	Depth    int     `json:"depth"`
	Genes    string  `json:"genes"`
	Fitness  float64 `json:"fitness"`
	Scored   bool    `json:"scored"`
	Strategy string  `json:"strategy"`
}
