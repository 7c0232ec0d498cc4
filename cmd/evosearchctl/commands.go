package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"evosearch/internal/evo"
	"evosearch/pkg/evosearch"
)

func newRunCmd(g *globals) *cobra.Command {
	var flags searchFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one search and store it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolved, err := flags.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			if err := resolved.validate(); err != nil {
				return err
			}
			reg, stopMetrics, err := g.startMetrics()
			if err != nil {
				return err
			}
			defer stopMetrics()

			client, err := g.client(reg)
			if err != nil {
				return err
			}
			defer client.Close()

			req := resolved.runRequest()
			if interactive(g.stderr) {
				req.OnImprovement = progressPrinter(g.stderr)
			}
			summary, runErr := client.Run(cmd.Context(), req)
			if summary.RunID == "" {
				return runErr
			}
			if err := g.printRun(summary); err != nil {
				return err
			}
			return runErr
		},
	}
	bindSearchFlags(cmd.Flags(), &flags)
	return cmd
}

func newBenchmarkCmd(g *globals) *cobra.Command {
	var flags searchFlags
	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Repeat a search and summarise the outcomes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolved, err := flags.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			if err := resolved.validate(); err != nil {
				return err
			}
			if resolved.runs <= 0 {
				return errors.New("runs must be > 0")
			}
			if resolved.parallel <= 0 {
				return errors.New("parallel must be > 0")
			}
			reg, stopMetrics, err := g.startMetrics()
			if err != nil {
				return err
			}
			defer stopMetrics()

			client, err := g.client(reg)
			if err != nil {
				return err
			}
			defer client.Close()

			report, err := client.Benchmark(cmd.Context(), evosearch.BenchmarkRequest{
				Run:      resolved.runRequest(),
				Runs:     resolved.runs,
				Parallel: resolved.parallel,
			})
			if err != nil {
				return err
			}
			if g.jsonOut {
				return writeJSON(g.stdout, report.Summary)
			}
			s := report.Summary
			fmt.Fprintf(g.stdout, "benchmark_id=%s source=%s runs=%d converged=%d success_rate=%.2f\n",
				s.BenchmarkID, s.Source, s.TotalRuns, s.ConvergedRuns, s.SuccessRate)
			fmt.Fprintf(g.stdout, "fitness mean=%.6f std=%.6f min=%.6f median=%.6f max=%.6f\n",
				s.Fitness.Mean, s.Fitness.Std, s.Fitness.Min, s.Fitness.Median, s.Fitness.Max)
			fmt.Fprintf(g.stdout, "elapsed mean=%s median=%s max=%s\n",
				millis(s.ElapsedMillis.Mean), millis(s.ElapsedMillis.Median), millis(s.ElapsedMillis.Max))
			fmt.Fprintf(g.stdout, "evaluations mean=%s\n", humanize.Comma(int64(s.Evaluations.Mean)))
			fmt.Fprintf(g.stdout, "artifacts_dir=%s\n", report.Directory)
			return nil
		},
	}
	bindSearchFlags(cmd.Flags(), &flags)
	cmd.Flags().IntVar(&flags.runs, "runs", 10, "number of repeated runs")
	cmd.Flags().IntVar(&flags.parallel, "parallel", 1, "runs executed concurrently")
	return cmd
}

func newRunsCmd(g *globals) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return errors.New("limit must be > 0")
			}
			client, err := g.client(nil)
			if err != nil {
				return err
			}
			defer client.Close()

			entries, err := client.Runs(cmd.Context(), evosearch.RunsRequest{Limit: limit})
			if err != nil {
				return err
			}
			if g.jsonOut {
				return writeJSON(g.stdout, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(g.stdout, "no runs found")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(g.stdout, "run_id=%s created=%s source=%s seed=%d lines=%d outcome=%s best_fitness=%.6f\n",
					e.RunID, age(e.CreatedAtUTC), e.Source, e.Seed, e.ParentLines, e.Outcome, e.BestFitness)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "max runs to list")
	return cmd
}

func newLineageCmd(g *globals) *cobra.Command {
	var (
		ref   evosearch.RunRef
		limit int
	)
	cmd := &cobra.Command{
		Use:   "lineage",
		Short: "Show the ancestry of a run's best route",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				limit = 0
			}
			client, err := g.client(nil)
			if err != nil {
				return err
			}
			defer client.Close()

			lineage, err := client.Lineage(cmd.Context(), ref, limit)
			if err != nil {
				return err
			}
			if g.jsonOut {
				return writeJSON(g.stdout, lineage)
			}
			for _, record := range lineage {
				fitness := "-"
				if record.Scored {
					fitness = fmt.Sprintf("%.6f", record.Fitness)
				}
				fmt.Fprintf(g.stdout, "depth=%d strategy=%s fitness=%s genes=%s\n",
					record.Depth, record.Strategy, fitness, record.Genes)
			}
			return nil
		},
	}
	bindRunRef(cmd, &ref)
	cmd.Flags().IntVar(&limit, "limit", 50, "max lineage rows to print (<=0 for all)")
	return cmd
}

func newImprovementsCmd(g *globals) *cobra.Command {
	var ref evosearch.RunRef
	cmd := &cobra.Command{
		Use:   "improvements",
		Short: "Show the improvement history of a run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := g.client(nil)
			if err != nil {
				return err
			}
			defer client.Close()

			history, err := client.Improvements(cmd.Context(), ref)
			if err != nil {
				return err
			}
			if g.jsonOut {
				return writeJSON(g.stdout, history)
			}
			for _, record := range history {
				fmt.Fprintf(g.stdout, "generation=%s line=%d elapsed=%s strategy=%s fitness=%.6f genes=%s\n",
					humanize.Comma(int64(record.Generation)), record.Line,
					time.Duration(record.ElapsedMillis)*time.Millisecond,
					record.Strategy, record.Fitness, record.Genes)
			}
			return nil
		},
	}
	bindRunRef(cmd, &ref)
	return cmd
}

func newExportCmd(g *globals) *cobra.Command {
	var (
		ref    evosearch.RunRef
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy a run's artifacts to an export directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := g.client(nil)
			if err != nil {
				return err
			}
			defer client.Close()

			exported, err := client.Export(cmd.Context(), evosearch.ExportRequest{RunRef: ref, OutDir: outDir})
			if err != nil {
				return err
			}
			if g.jsonOut {
				return writeJSON(g.stdout, exported)
			}
			fmt.Fprintf(g.stdout, "exported run_id=%s dir=%s\n", exported.RunID, exported.Directory)
			return nil
		},
	}
	bindRunRef(cmd, &ref)
	cmd.Flags().StringVar(&outDir, "out", "", "export destination (defaults to --exports-dir)")
	return cmd
}

func newBenchmarksCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "benchmarks",
		Short: "List stored benchmark summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := g.client(nil)
			if err != nil {
				return err
			}
			defer client.Close()

			summaries, err := client.Benchmarks(cmd.Context())
			if err != nil {
				return err
			}
			if g.jsonOut {
				return writeJSON(g.stdout, summaries)
			}
			if len(summaries) == 0 {
				fmt.Fprintln(g.stdout, "no benchmarks found")
				return nil
			}
			for _, s := range summaries {
				fmt.Fprintf(g.stdout, "benchmark_id=%s source=%s runs=%d success_rate=%.2f mean_fitness=%.6f\n",
					s.BenchmarkID, s.Source, s.TotalRuns, s.SuccessRate, s.Fitness.Mean)
			}
			return nil
		},
	}
}

func newStrategiesCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the variation strategies a search can use",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			names := evo.DefaultRegistry().Names()
			if g.jsonOut {
				return writeJSON(g.stdout, names)
			}
			for _, name := range names {
				fmt.Fprintln(g.stdout, name)
			}
			return nil
		},
	}
}

func bindRunRef(cmd *cobra.Command, ref *evosearch.RunRef) {
	cmd.Flags().StringVar(&ref.RunID, "run-id", "", "run id")
	cmd.Flags().BoolVar(&ref.Latest, "latest", false, "use the most recent run from the run index")
	cmd.MarkFlagsMutuallyExclusive("run-id", "latest")
	cmd.MarkFlagsOneRequired("run-id", "latest")
}

func (g *globals) printRun(summary evosearch.RunSummary) error {
	if g.jsonOut {
		return writeJSON(g.stdout, struct {
			RunID        string     `json:"run_id"`
			Source       string     `json:"source"`
			Seed         int64      `json:"seed"`
			ArtifactsDir string     `json:"artifacts_dir"`
			Result       evo.Result `json:"result"`
		}{summary.RunID, summary.Source, summary.Seed, summary.ArtifactsDir, summary.Result})
	}
	r := summary.Result
	fmt.Fprintf(g.stdout, "run_id=%s source=%s seed=%d outcome=%s\n", summary.RunID, summary.Source, summary.Seed, r.Outcome)
	fmt.Fprintf(g.stdout, "best_genes=%s best_fitness=%.6f strategy=%s\n", r.Genes, r.Fitness, r.Strategy)
	fmt.Fprintf(g.stdout, "generations=%s evaluations=%s max_pool=%d elapsed=%s\n",
		humanize.Comma(int64(r.Generations)), humanize.Comma(int64(r.Evaluations)), r.MaxPoolSize, r.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(g.stdout, "artifacts_dir=%s\n", summary.ArtifactsDir)
	return nil
}

func progressPrinter(w io.Writer) func(evo.Improvement) {
	return func(i evo.Improvement) {
		fmt.Fprintf(w, "%8s  gen %-7s line %d  %-10s %12.6f  %s\n",
			i.Elapsed.Round(time.Millisecond), humanize.Comma(int64(i.Generation)), i.Line, i.Strategy, i.Fitness, i.Genes)
	}
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func millis(ms float64) time.Duration {
	return (time.Duration(ms) * time.Millisecond).Round(time.Millisecond)
}

// age renders an index timestamp relative to now, falling back to the raw text.
func age(createdAtUTC string) string {
	created, err := time.Parse(time.RFC3339Nano, createdAtUTC)
	if err != nil {
		return createdAtUTC
	}
	return fmt.Sprintf("%q", humanize.Time(created))
}
