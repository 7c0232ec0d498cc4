package evosearch

import (
	"context"
	"fmt"
	"time"

	"evosearch/internal/evo"
	"evosearch/internal/model"
	"evosearch/internal/route"
	"evosearch/internal/stats"
	"evosearch/internal/storage"
)

// indexTimeLayout keeps fixed width so index timestamps sort lexically.
const indexTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func runRecord(id string, createdAt time.Time, req RunRequest, source route.Source, result evo.Result) model.RunRecord {
	return model.RunRecord{
		VersionedRecord: storage.CurrentVersion(),
		ID:              id,
		CreatedAt:       createdAt,
		Source:          source.Name(),
		Alphabet:        source.Alphabet(),
		Length:          len(source.Alphabet()),
		ParentLines:     req.ParentLines,
		BudgetMillis:    req.Budget.Milliseconds(),
		Seed:            req.Seed,
		Strategies:      req.Strategies,
		Outcome:         string(result.Outcome),
		BestGenes:       result.Genes,
		BestFitness:     result.Fitness,
		BestStrategy:    result.Strategy,
		Generations:     result.Generations,
		Evaluations:     result.Evaluations,
		MaxPoolSize:     result.MaxPoolSize,
		ElapsedMillis:   result.Elapsed.Milliseconds(),
		StrategyCounts:  result.StrategyCounts,
	}
}

func improvementRecords(improvements []evo.Improvement) []model.ImprovementRecord {
	out := make([]model.ImprovementRecord, 0, len(improvements))
	for _, improvement := range improvements {
		out = append(out, model.ImprovementRecord{
			Generation:    improvement.Generation,
			Fitness:       improvement.Fitness,
			Genes:         improvement.Genes,
			Strategy:      improvement.Strategy,
			Line:          improvement.Line,
			ElapsedMillis: improvement.Elapsed.Milliseconds(),
		})
	}
	return out
}

func lineageRecords(steps []evo.LineageStep) []model.LineageRecord {
	out := make([]model.LineageRecord, 0, len(steps))
	for _, step := range steps {
		out = append(out, model.LineageRecord{
			VersionedRecord: storage.CurrentVersion(),
			Depth:           step.Depth,
			Genes:           step.Genes,
			Fitness:         step.Fitness,
			Scored:          step.Scored,
			Strategy:        step.Strategy,
		})
	}
	return out
}

// persist writes a finished run to the store, the artifact tree and the run
// index. It detaches from ctx cancellation so an interrupted run is still kept.
func (c *Client) persist(ctx context.Context, run model.RunRecord, req RunRequest, result evo.Result) (string, error) {
	ctx = context.WithoutCancel(ctx)
	improvements := improvementRecords(result.Improvements)
	lineage := lineageRecords(result.Lineage)

	if err := c.store.SaveRun(ctx, run); err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	if err := c.store.SaveImprovements(ctx, run.ID, improvements); err != nil {
		return "", fmt.Errorf("save improvements: %w", err)
	}
	if err := c.store.SaveLineage(ctx, run.ID, lineage); err != nil {
		return "", fmt.Errorf("save lineage: %w", err)
	}

	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:        run.ID,
			Source:       run.Source,
			Alphabet:     run.Alphabet,
			Length:       run.Length,
			ParentLines:  run.ParentLines,
			BudgetMillis: run.BudgetMillis,
			Seed:         run.Seed,
			Strategies:   run.Strategies,
			Canonical:    !req.Raw,
			BenchmarkID:  req.benchmarkID,
		},
		Summary: stats.RunSummary{
			Outcome:        run.Outcome,
			BestGenes:      run.BestGenes,
			BestFitness:    run.BestFitness,
			BestStrategy:   run.BestStrategy,
			Generations:    run.Generations,
			Evaluations:    run.Evaluations,
			MaxPoolSize:    run.MaxPoolSize,
			ElapsedMillis:  run.ElapsedMillis,
			StrategyCounts: run.StrategyCounts,
		},
		Improvements: improvements,
		Lineage:      lineage,
	})
	if err != nil {
		return "", fmt.Errorf("write artifacts: %w", err)
	}

	c.indexMu.Lock()
	defer c.indexMu.Unlock()
	if err := stats.AppendRunIndex(c.artifactsDir, stats.RunIndexEntry{
		RunID:        run.ID,
		Source:       run.Source,
		Length:       run.Length,
		ParentLines:  run.ParentLines,
		Seed:         run.Seed,
		Outcome:      run.Outcome,
		BestFitness:  run.BestFitness,
		CreatedAtUTC: run.CreatedAt.UTC().Format(indexTimeLayout),
	}); err != nil {
		return "", fmt.Errorf("update run index: %w", err)
	}
	return runDir, nil
}
