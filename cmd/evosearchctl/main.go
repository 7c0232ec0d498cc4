package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"evosearch/internal/storage"
	"evosearch/pkg/evosearch"
)

const (
	defaultArtifactsDir = "runs"
	defaultExportsDir   = "exports"
	defaultDBPath       = "evosearch.db"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// globals holds the flags shared by every command.
type globals struct {
	stdout io.Writer
	stderr io.Writer

	storeKind    string
	dbPath       string
	artifactsDir string
	exportsDir   string
	logLevel     string
	metricsAddr  string
	jsonOut      bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globals{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:           "evosearchctl",
		Short:         "Evolve routes through point sets and inspect past runs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&g.storeKind, "store", storage.DefaultStoreKind, "store backend: memory|sqlite")
	flags.StringVar(&g.dbPath, "db-path", defaultDBPath, "sqlite database path")
	flags.StringVar(&g.artifactsDir, "artifacts-dir", defaultArtifactsDir, "directory holding run artifacts and the run index")
	flags.StringVar(&g.exportsDir, "exports-dir", defaultExportsDir, "default export destination")
	flags.StringVar(&g.logLevel, "log-level", "warn", "log level: debug|info|warn|error")
	flags.StringVar(&g.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while searching")
	flags.BoolVar(&g.jsonOut, "json", false, "emit JSON instead of key=value lines")

	root.AddCommand(
		newRunCmd(g),
		newBenchmarkCmd(g),
		newRunsCmd(g),
		newLineageCmd(g),
		newImprovementsCmd(g),
		newExportCmd(g),
		newBenchmarksCmd(g),
		newStrategiesCmd(g),
	)
	return root
}

func (g *globals) logger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(g.logLevel))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", g.logLevel)
	}
	return slog.New(slog.NewTextHandler(g.stderr, &slog.HandlerOptions{Level: level})), nil
}

// client opens the run history. reg may be nil when no metrics are wanted.
func (g *globals) client(reg prometheus.Registerer) (*evosearch.Client, error) {
	logger, err := g.logger()
	if err != nil {
		return nil, err
	}
	return evosearch.New(evosearch.Options{
		StoreKind:    g.storeKind,
		DBPath:       g.dbPath,
		ArtifactsDir: g.artifactsDir,
		ExportsDir:   g.exportsDir,
		Logger:       logger,
		Registerer:   reg,
	})
}

// interactive reports whether w is a terminal.
func interactive(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
