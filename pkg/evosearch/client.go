// Package evosearch runs route searches and keeps their history: every run is
// stored, written out as artifacts and indexed so it can be listed, inspected
// and exported later.
package evosearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"evosearch/internal/evo"
	"evosearch/internal/metrics"
	"evosearch/internal/model"
	"evosearch/internal/route"
	"evosearch/internal/stats"
	"evosearch/internal/storage"
)

const (
	defaultArtifactsDir = "runs"
	defaultExportsDir   = "exports"
	defaultDBPath       = "evosearch.db"
	defaultRunsLimit    = 20
	defaultBenchRuns    = 10
)

var (
	ErrRunNotFound = errors.New("run not found")
	ErrNoRuns      = errors.New("no runs available")
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
	ExportsDir   string
	Logger       *slog.Logger
	// Registerer receives solver metrics; nil disables them.
	Registerer prometheus.Registerer
}

type Client struct {
	store   storage.Store
	logger  *slog.Logger
	metrics *metrics.Metrics

	artifactsDir string
	exportsDir   string

	initOnce sync.Once
	initErr  error
	// indexMu serialises read-modify-write of the run index file.
	indexMu sync.Mutex
}

type RunRequest struct {
	// Source is "circle" or "tsplib:<path without extension>".
	Source      string
	ParentLines int
	Budget      time.Duration
	// Seed 0 picks a time based seed.
	Seed       int64
	Strategies []string
	// Raw disables canonicalization of rotations and mirror images.
	Raw           bool
	OnImprovement func(evo.Improvement)
	// Observer receives solver events next to the client's metrics.
	Observer evo.Observer

	benchmarkID string
}

type RunSummary struct {
	RunID        string
	Source       string
	ArtifactsDir string
	Seed         int64
	Result       evo.Result
}

type BenchmarkRequest struct {
	Run      RunRequest
	Runs     int
	Parallel int
}

type BenchmarkReport struct {
	Summary   stats.BenchmarkSummary
	Directory string
	Runs      []RunSummary
}

type RunsRequest struct {
	Limit int
}

type RunRef struct {
	RunID  string
	Latest bool
}

type ExportRequest struct {
	RunRef
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	client := &Client{
		store:        store,
		logger:       logger,
		artifactsDir: artifactsDir,
		exportsDir:   exportsDir,
	}
	if opts.Registerer != nil {
		client.metrics = metrics.New(opts.Registerer)
	}
	return client, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	c.initOnce.Do(func() {
		c.initErr = c.store.Init(ctx)
	})
	return c.initErr
}

// Strategies lists the variation strategies a run can be restricted to.
func (c *Client) Strategies() []string {
	return evo.DefaultRegistry().Names()
}

// Run performs one search and persists it. A canceled ctx still stores the
// best result found so far and returns it together with the context error.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}
	req = req.withDefaults()
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}

	source, err := route.Resolve(req.Source)
	if err != nil {
		return RunSummary{}, err
	}
	registry := evo.DefaultRegistry()
	if len(req.Strategies) > 0 {
		registry, err = registry.Subset(req.Strategies...)
		if err != nil {
			return RunSummary{}, err
		}
	}
	canonicalize := evo.Canonicalize
	if req.Raw {
		canonicalize = evo.Identity
	}

	runID := uuid.NewString()
	logger := c.logger.With("run_id", runID, "source", source.Name())
	var observers evo.MultiObserver
	if c.metrics != nil {
		observers = append(observers, c.metrics.Observer(source.Name()))
	}
	if req.Observer != nil {
		observers = append(observers, req.Observer)
	}

	solver, err := evo.NewSolver(evo.Config{
		Length:        len(source.Alphabet()),
		Alphabet:      source.Alphabet(),
		Cost:          route.Fitness(source),
		OnImprovement: req.OnImprovement,
		Budget:        req.Budget,
		ParentLines:   req.ParentLines,
		Canonicalize:  canonicalize,
		Registry:      registry,
		Seed:          req.Seed,
		Logger:        logger,
		Observer:      observers,
	})
	if err != nil {
		return RunSummary{}, err
	}

	createdAt := time.Now().UTC()
	logger.Info("run started", "budget", req.Budget, "parent_lines", req.ParentLines, "seed", req.Seed)
	result, solveErr := solver.Solve(ctx)
	if solveErr != nil && result.Genes == "" {
		return RunSummary{}, solveErr
	}
	if c.metrics != nil {
		c.metrics.RecordRun(source.Name(), result.Outcome, result.Elapsed)
	}

	runDir, err := c.persist(ctx, runRecord(runID, createdAt, req, source, result), req, result)
	if err != nil {
		return RunSummary{}, err
	}
	logger.Info("run finished",
		"outcome", result.Outcome,
		"fitness", result.Fitness,
		"generations", result.Generations,
		"elapsed", result.Elapsed,
	)

	summary := RunSummary{
		RunID:        runID,
		Source:       source.Name(),
		ArtifactsDir: runDir,
		Seed:         req.Seed,
		Result:       result,
	}
	if solveErr != nil {
		return summary, fmt.Errorf("run %s: %w", runID, solveErr)
	}
	return summary, nil
}

// Benchmark repeats a run and summarises the outcomes. Explicit seeds are
// offset per run so repetitions differ.
func (c *Client) Benchmark(ctx context.Context, req BenchmarkRequest) (BenchmarkReport, error) {
	if req.Runs <= 0 {
		req.Runs = defaultBenchRuns
	}
	if req.Parallel <= 0 {
		req.Parallel = 1
	}
	if err := c.Init(ctx); err != nil {
		return BenchmarkReport{}, err
	}
	req.Run = req.Run.withDefaults()
	source, err := route.Resolve(req.Run.Source)
	if err != nil {
		return BenchmarkReport{}, err
	}

	benchmarkID := uuid.NewString()
	summaries := make([]RunSummary, req.Runs)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(req.Parallel)
	for i := 0; i < req.Runs; i++ {
		run := req.Run
		run.benchmarkID = benchmarkID
		run.OnImprovement = nil
		run.Observer = nil
		if run.Seed != 0 {
			run.Seed += int64(i)
		}
		g.Go(func() error {
			summary, err := c.Run(gCtx, run)
			if err != nil {
				return fmt.Errorf("benchmark run %d: %w", i+1, err)
			}
			summaries[i] = summary
			c.logger.Info("benchmark run finished",
				"benchmark_id", benchmarkID,
				"round", i+1,
				"fitness", summary.Result.Fitness,
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BenchmarkReport{}, err
	}

	records := make([]model.RunRecord, 0, len(summaries))
	for _, summary := range summaries {
		run := req.Run
		run.Seed = summary.Seed
		records = append(records, runRecord(summary.RunID, time.Time{}, run, source, summary.Result))
	}
	benchSummary, err := stats.SummarizeBenchmark(benchmarkID, source.Name(), records)
	if err != nil {
		return BenchmarkReport{}, err
	}
	dir, err := stats.WriteBenchmarkSummary(c.artifactsDir, benchSummary, records)
	if err != nil {
		return BenchmarkReport{}, err
	}
	return BenchmarkReport{Summary: benchSummary, Directory: dir, Runs: summaries}, nil
}

func (c *Client) Benchmarks(_ context.Context) ([]stats.BenchmarkSummary, error) {
	return stats.ListBenchmarks(c.artifactsDir)
}

// Runs lists indexed runs, newest first.
func (c *Client) Runs(_ context.Context, req RunsRequest) ([]stats.RunIndexEntry, error) {
	if req.Limit <= 0 {
		req.Limit = defaultRunsLimit
	}
	entries, err := stats.ListRunIndex(c.artifactsDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}
	return entries, nil
}

// Lineage returns the ancestry of a run's best individual, best first. The
// store is consulted first, then the run's artifacts.
func (c *Client) Lineage(ctx context.Context, ref RunRef, limit int) ([]model.LineageRecord, error) {
	if limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(ref)
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}

	lineage, ok, err := c.store.GetLineage(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		lineage, ok, err = stats.ReadLineage(c.artifactsDir, runID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: lineage for %s", ErrRunNotFound, runID)
	}
	if limit > 0 && len(lineage) > limit {
		lineage = lineage[:limit]
	}
	return lineage, nil
}

// Improvements returns a run's improvement history in the order found.
func (c *Client) Improvements(ctx context.Context, ref RunRef) ([]model.ImprovementRecord, error) {
	runID, err := c.resolveRunID(ref)
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}

	improvements, ok, err := c.store.GetImprovements(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		improvements, ok, err = stats.ReadImprovements(c.artifactsDir, runID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: improvements for %s", ErrRunNotFound, runID)
	}
	return improvements, nil
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	runID, err := c.resolveRunID(req.RunRef)
	if err != nil {
		return ExportSummary{}, err
	}
	outDir := req.OutDir
	if outDir == "" {
		outDir = c.exportsDir
	}
	exportedDir, err := stats.ExportRunArtifacts(c.artifactsDir, runID, outDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

func (c *Client) resolveRunID(ref RunRef) (string, error) {
	if ref.RunID != "" && ref.Latest {
		return "", errors.New("use either run id or latest")
	}
	if ref.RunID != "" {
		return ref.RunID, nil
	}
	if !ref.Latest {
		return "", errors.New("run id or latest is required")
	}
	entries, err := stats.ListRunIndex(c.artifactsDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", ErrNoRuns
	}
	return entries[0].RunID, nil
}

func (req RunRequest) withDefaults() RunRequest {
	if req.Budget <= 0 {
		req.Budget = evo.DefaultBudget
	}
	if req.ParentLines <= 0 {
		req.ParentLines = evo.DefaultParentLines
	}
	return req
}
