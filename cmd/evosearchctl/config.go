package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"evosearch/pkg/evosearch"
)

// searchConfig is the YAML form of a run or benchmark request. Absent keys
// leave the flag values alone.
type searchConfig struct {
	Source      *string  `yaml:"source"`
	ParentLines *int     `yaml:"parent_lines"`
	Budget      *string  `yaml:"budget"`
	Seed        *int64   `yaml:"seed"`
	Strategies  []string `yaml:"strategies"`
	Raw         *bool    `yaml:"raw"`
	Runs        *int     `yaml:"runs"`
	Parallel    *int     `yaml:"parallel"`
}

// searchFlags are the flag values behind run and benchmark.
type searchFlags struct {
	configPath  string
	source      string
	parentLines int
	budget      time.Duration
	seed        int64
	strategies  []string
	raw         bool
	runs        int
	parallel    int
}

func loadSearchConfig(path string) (searchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return searchConfig{}, err
	}
	var cfg searchConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return searchConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// resolve layers flag defaults, then the config file, then flags set on the
// command line.
func (f searchFlags) resolve(set *pflag.FlagSet) (searchFlags, error) {
	if f.configPath == "" {
		return f, nil
	}
	cfg, err := loadSearchConfig(f.configPath)
	if err != nil {
		return searchFlags{}, err
	}

	out := f
	if cfg.Source != nil && !set.Changed("source") {
		out.source = *cfg.Source
	}
	if cfg.ParentLines != nil && !set.Changed("parent-lines") {
		out.parentLines = *cfg.ParentLines
	}
	if cfg.Budget != nil && !set.Changed("budget") {
		budget, err := time.ParseDuration(*cfg.Budget)
		if err != nil {
			return searchFlags{}, fmt.Errorf("config budget: %w", err)
		}
		out.budget = budget
	}
	if cfg.Seed != nil && !set.Changed("seed") {
		out.seed = *cfg.Seed
	}
	if cfg.Strategies != nil && !set.Changed("strategy") {
		out.strategies = cfg.Strategies
	}
	if cfg.Raw != nil && !set.Changed("raw") {
		out.raw = *cfg.Raw
	}
	if cfg.Runs != nil && !set.Changed("runs") {
		out.runs = *cfg.Runs
	}
	if cfg.Parallel != nil && !set.Changed("parallel") {
		out.parallel = *cfg.Parallel
	}
	return out, nil
}

func (f searchFlags) validate() error {
	if f.parentLines <= 0 {
		return errors.New("parent-lines must be > 0")
	}
	if f.budget <= 0 {
		return errors.New("budget must be > 0")
	}
	return nil
}

func (f searchFlags) runRequest() evosearch.RunRequest {
	return evosearch.RunRequest{
		Source:      f.source,
		ParentLines: f.parentLines,
		Budget:      f.budget,
		Seed:        f.seed,
		Strategies:  f.strategies,
		Raw:         f.raw,
	}
}

func bindSearchFlags(set *pflag.FlagSet, f *searchFlags) {
	set.StringVar(&f.configPath, "config", "", "optional YAML file with search settings; explicit flags win")
	set.StringVar(&f.source, "source", "circle", "point source: circle|tsplib:<path without extension>")
	set.IntVar(&f.parentLines, "parent-lines", 2, "number of independent parent lines")
	set.DurationVar(&f.budget, "budget", 20*time.Second, "time budget without improvement")
	set.Int64Var(&f.seed, "seed", 0, "rng seed (0 picks one from the clock)")
	set.StringSliceVar(&f.strategies, "strategy", nil, "restrict variation to these strategies (repeatable)")
	set.BoolVar(&f.raw, "raw", false, "disable rotation and mirror canonicalization")
}
