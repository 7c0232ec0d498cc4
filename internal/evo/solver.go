package evo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"
	"unicode/utf8"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidFitness  = errors.New("invalid fitness")
)

const (
	DefaultParentLines = 2
	DefaultBudget      = 20 * time.Second

	// seedPoolFactor times the alphabet size is the initial pool size.
	seedPoolFactor = 3
	// duplicateLimitFactor times the pool size bounds consecutive rejected
	// candidates before a batch is cut short.
	duplicateLimitFactor = 100
)

// CostFunc scores a candidate. Lower is better and 0 is a perfect solution.
type CostFunc func(genes string) (float64, error)

// ImprovementFunc is invoked for every new global best.
type ImprovementFunc func(improvement Improvement)

type Outcome string

const (
	OutcomeConverged Outcome = "converged"
	OutcomeTimedOut  Outcome = "timed_out"
	OutcomeCanceled  Outcome = "canceled"
)

type Config struct {
	Length        int
	Alphabet      string
	Cost          CostFunc
	OnImprovement ImprovementFunc
	// Budget bounds the time since the stopwatch was last reset.
	Budget       time.Duration
	ParentLines  int
	Canonicalize CanonicalizeFunc
	Registry     *Registry
	Random       RandomSource
	Seed         int64
	Now          func() time.Time
	Logger       *slog.Logger
	Observer     Observer
}

type Result struct {
	Genes          string         `json:"genes"`
	Fitness        float64        `json:"fitness"`
	Strategy       string         `json:"strategy"`
	Outcome        Outcome        `json:"outcome"`
	Generations    int            `json:"generations"`
	Evaluations    int            `json:"evaluations"`
	MaxPoolSize    int            `json:"max_pool_size"`
	Elapsed        time.Duration  `json:"elapsed"`
	Improvements   []Improvement  `json:"improvements"`
	Lineage        []LineageStep  `json:"lineage"`
	StrategyCounts map[string]int `json:"strategy_counts"`
}

// Solver runs the multi-line evolutionary search. A Solver must not be used by
// several goroutines at once; run independent searches on separate instances.
type Solver struct {
	cfg        Config
	randomInit RandomInit
	known      []Strategy
}

func NewSolver(cfg Config) (*Solver, error) {
	if cfg.Length < 1 {
		return nil, fmt.Errorf("%w: target length must be >= 1, got %d", ErrInvalidArgument, cfg.Length)
	}
	if cfg.Alphabet == "" {
		return nil, fmt.Errorf("%w: alphabet is required", ErrInvalidArgument)
	}
	if err := validateAlphabet(cfg.Alphabet); err != nil {
		return nil, err
	}
	if cfg.Cost == nil {
		return nil, fmt.Errorf("%w: cost function is required", ErrInvalidArgument)
	}
	if cfg.Budget <= 0 {
		return nil, fmt.Errorf("%w: time budget must be > 0, got %s", ErrInvalidArgument, cfg.Budget)
	}
	if cfg.ParentLines < 0 {
		return nil, fmt.Errorf("%w: parent lines must be >= 1, got %d", ErrInvalidArgument, cfg.ParentLines)
	}
	if cfg.ParentLines == 0 {
		cfg.ParentLines = DefaultParentLines
	}
	if cfg.Canonicalize == nil {
		cfg.Canonicalize = Identity
	}
	if cfg.Registry == nil {
		cfg.Registry = DefaultRegistry()
	}
	if cfg.Registry.Len() == 0 {
		return nil, fmt.Errorf("%w: at least one strategy is required", ErrInvalidArgument)
	}
	if cfg.Random == nil {
		cfg.Random = NewRandomSource(cfg.Seed)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Observer == nil {
		cfg.Observer = NopObserver{}
	}

	return &Solver{
		cfg:        cfg,
		randomInit: RandomInit{Length: cfg.Length},
		known:      cfg.Registry.Strategies(),
	}, nil
}

// validateAlphabet requires distinct single-byte ASCII symbols, since
// strategies draw symbols by byte index.
func validateAlphabet(alphabet string) error {
	var seen [utf8.RuneSelf]bool
	for i := 0; i < len(alphabet); i++ {
		symbol := alphabet[i]
		if symbol >= utf8.RuneSelf {
			return fmt.Errorf("%w: alphabet symbols must be single-byte ASCII, got byte %#x at %d", ErrInvalidArgument, symbol, i)
		}
		if seen[symbol] {
			return fmt.Errorf("%w: alphabet repeats symbol %q", ErrInvalidArgument, symbol)
		}
		seen[symbol] = true
	}
	return nil
}

// Solve seeds the parent lines and evolves them until a perfect solution is
// found or the budget runs out. A canceled ctx stops the search at the next
// generation boundary; the best result so far is returned with ctx.Err().
func (s *Solver) Solve(ctx context.Context) (Result, error) {
	r := &search{
		Solver:  s,
		seen:    map[string]struct{}{},
		started: s.cfg.Now(),
	}
	if err := r.initialize(); err != nil {
		return Result{}, err
	}

	for {
		if r.best.Fitness == 0 {
			return r.result(OutcomeConverged), nil
		}
		if r.elapsed() > s.cfg.Budget {
			return r.result(OutcomeTimedOut), nil
		}
		if err := ctx.Err(); err != nil {
			return r.result(OutcomeCanceled), err
		}
		if err := r.evolve(); err != nil {
			return Result{}, err
		}
	}
}

// search holds the state of one Solve call.
type search struct {
	*Solver

	lines        []*ParentLine
	seen         map[string]struct{}
	best         *Individual
	maxPoolSize  int
	current      int
	generation   int
	evaluations  int
	improvements []Improvement
	started      time.Time
}

func (r *search) initialize() error {
	target := len(r.cfg.Alphabet) * seedPoolFactor
	limit := target * duplicateLimitFactor
	seed := make([]*Individual, 0, target)
	for misses := 0; len(seed) < target && misses < limit; {
		candidate, _ := r.randomInit.CreateChild(nil, nil, r.cfg.Alphabet, r.cfg.Random)
		candidate.Genes = r.cfg.Canonicalize(candidate.Genes)
		if !r.markSeen(candidate.Genes) {
			misses++
			continue
		}
		misses = 0
		seed = append(seed, candidate)
	}
	for _, individual := range seed {
		if err := r.score(individual); err != nil {
			return err
		}
	}
	sort.SliceStable(seed, byFitness(seed))

	r.maxPoolSize = target
	r.lines = make([]*ParentLine, r.cfg.ParentLines)
	for i := range r.lines {
		r.lines[i] = newParentLine(seed, append([]Strategy(nil), r.known...))
	}
	r.best = seed[0]
	r.generation = 1
	r.cfg.Logger.Debug("seeded parent lines",
		"lines", len(r.lines),
		"seed_size", len(seed),
		"best_fitness", r.best.Fitness,
	)
	r.report(r.best, 0)
	return nil
}

func (r *search) evolve() error {
	lineIndex := r.current
	line := r.lines[lineIndex]

	children := r.generateChildren(line)
	for _, child := range children {
		if err := r.score(child); err != nil {
			return err
		}
		if child.Fitness < r.best.Fitness {
			r.best = child
			line.setPool(BuildStrategyPool(r.known, child))
			if depth := len(child.Ancestors()); depth > r.maxPoolSize {
				r.maxPoolSize = depth
			}
			r.report(child, lineIndex)
			if len(r.lines) == 1 {
				// single-line mode measures the budget from the last improvement
				r.started = r.cfg.Now()
			}
		}
	}
	line.Merge(children, r.maxPoolSize)

	r.cfg.Observer.GenerationCompleted(GenerationStats{
		Generation:      r.generation,
		Line:            lineIndex,
		Children:        len(children),
		Evaluations:     r.evaluations,
		BestFitness:     r.best.Fitness,
		LineBestFitness: line.Best().Fitness,
		LineSize:        line.Len(),
		PoolSize:        len(line.Pool()),
		MaxPoolSize:     r.maxPoolSize,
		Elapsed:         r.elapsed(),
	})

	r.selectNextLine(lineIndex)
	r.generation++
	return nil
}

// generateChildren draws up to maxPoolSize new, unseen children from line.
// Parent pairs alternate: the previous primary parent becomes the next donor.
func (r *search) generateChildren(line *ParentLine) []*Individual {
	parents := line.individuals
	pool := line.pool
	target := r.maxPoolSize
	limit := target * duplicateLimitFactor
	children := make([]*Individual, 0, target)

	parentB := r.cfg.Random.Next(0, len(parents))
	for misses := 0; len(children) < target && misses < limit; {
		parentA := r.pickOther(parentB, len(parents))
		strategy := pool[r.cfg.Random.Next(0, len(pool))]
		child, ok := strategy.CreateChild(parents[parentA], parents[parentB], r.cfg.Alphabet, r.cfg.Random)
		parentB = parentA
		if !ok {
			misses++
			continue
		}
		child.Genes = r.cfg.Canonicalize(child.Genes)
		if !r.markSeen(child.Genes) {
			misses++
			continue
		}
		misses = 0
		children = append(children, child)
	}
	return children
}

// pickOther draws an index in [0, n) different from exclude when n > 1.
func (r *search) pickOther(exclude, n int) int {
	if n < 2 {
		return exclude
	}
	idx := r.cfg.Random.Next(0, n-1)
	if idx >= exclude {
		idx++
	}
	return idx
}

// selectNextLine rotates to the previous line while progress is being made,
// otherwise it reseeds the stalled line from the leaders of every line.
func (r *search) selectNextLine(lineIndex int) {
	line := r.lines[lineIndex]
	if len(r.lines) == 1 {
		return
	}
	if line.Best().Fitness == r.best.Fitness || r.elapsed() < r.cfg.Budget/2 {
		r.current = (lineIndex - 1 + len(r.lines)) % len(r.lines)
		return
	}

	line.Replace(pooledLeaders(r.lines, diversifyTop))
	line.Merge(nil, r.maxPoolSize)
	r.cfg.Logger.Debug("diversified stalled line",
		"line", lineIndex,
		"generation", r.generation,
		"size", line.Len(),
		"line_best", line.Best().Fitness,
	)
	r.cfg.Observer.Diversified(lineIndex, line.Len())
}

func (r *search) score(individual *Individual) error {
	fitness, err := r.cfg.Cost(individual.Genes)
	if err != nil {
		return fmt.Errorf("score %q: %w", individual.Genes, err)
	}
	if math.IsNaN(fitness) {
		return fmt.Errorf("%w: cost of %q is NaN", ErrInvalidFitness, individual.Genes)
	}
	individual.Fitness = fitness
	individual.Scored = true
	r.evaluations++
	return nil
}

// markSeen records genes and reports whether they were new.
func (r *search) markSeen(genes string) bool {
	if _, ok := r.seen[genes]; ok {
		return false
	}
	r.seen[genes] = struct{}{}
	return true
}

func (r *search) report(individual *Individual, line int) {
	improvement := Improvement{
		Generation: r.generation,
		Fitness:    individual.Fitness,
		Genes:      individual.Genes,
		Strategy:   individual.StrategyName(),
		Line:       line,
		Elapsed:    r.elapsed(),
	}
	r.improvements = append(r.improvements, improvement)
	r.cfg.Logger.Info("improved",
		"generation", improvement.Generation,
		"fitness", improvement.Fitness,
		"strategy", improvement.Strategy,
		"line", line,
	)
	r.cfg.Observer.Improved(improvement)
	if r.cfg.OnImprovement != nil {
		r.cfg.OnImprovement(improvement)
	}
}

func (r *search) elapsed() time.Duration {
	return r.cfg.Now().Sub(r.started)
}

func (r *search) result(outcome Outcome) Result {
	return Result{
		Genes:          r.cfg.Canonicalize(r.best.Genes),
		Fitness:        r.best.Fitness,
		Strategy:       r.best.StrategyName(),
		Outcome:        outcome,
		Generations:    r.generation - 1,
		Evaluations:    r.evaluations,
		MaxPoolSize:    r.maxPoolSize,
		Elapsed:        r.elapsed(),
		Improvements:   append([]Improvement(nil), r.improvements...),
		Lineage:        r.best.Lineage(),
		StrategyCounts: StrategyCounts(r.best),
	}
}

// Solve is the plain entry point: it searches for a length-symbol sequence over
// alphabet minimising cost and returns the canonical best genes.
func Solve(
	length int,
	alphabet string,
	cost CostFunc,
	onImprovement func(generation int, fitness float64, genes, strategy string),
	budgetSeconds float64,
	parentLines int,
	canonicalize CanonicalizeFunc,
) (string, error) {
	cfg := Config{
		Length:       length,
		Alphabet:     alphabet,
		Cost:         cost,
		Budget:       time.Duration(budgetSeconds * float64(time.Second)),
		ParentLines:  parentLines,
		Canonicalize: canonicalize,
		Seed:         time.Now().UnixNano(),
	}
	if onImprovement != nil {
		cfg.OnImprovement = func(i Improvement) {
			onImprovement(i.Generation, i.Fitness, i.Genes, i.Strategy)
		}
	}
	solver, err := NewSolver(cfg)
	if err != nil {
		return "", err
	}
	result, err := solver.Solve(context.Background())
	if err != nil {
		return "", err
	}
	return result.Genes, nil
}
