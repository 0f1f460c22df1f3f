// Command fapsolve runs the two-stage facility arrangement solver: an
// MC/GMC heuristic followed by a warm-started full MILP, over an instance
// described by a YAML file (pkg/catalog.InstanceConfig).
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/fapsolve/pkg/arrangement"
	"github.com/dshills/fapsolve/pkg/catalog"
	"github.com/dshills/fapsolve/pkg/export"
	"github.com/dshills/fapsolve/pkg/faerrors"
	"github.com/dshills/fapsolve/pkg/logging"
	"github.com/dshills/fapsolve/pkg/milp"
	"github.com/dshills/fapsolve/pkg/orchestrator"
	"github.com/dshills/fapsolve/pkg/rng"
	"github.com/dshills/fapsolve/pkg/solver"
	"github.com/dshills/fapsolve/pkg/solverdriver"
	"github.com/dshills/fapsolve/pkg/warmstart"
)

const version = "0.1.0"

// flags mirrors §6 Configuration plus the CLI-only plumbing (input path,
// output directory, export format).
type flags struct {
	configPath  string
	outputDir   string
	format      string
	threads     int
	generations int
	workload    uint64
	maxAttempts int
	alpha       float64
	seed        uint64
	verbose     bool
}

func main() {
	f := &flags{}

	root := &cobra.Command{
		Use:     "fapsolve",
		Short:   "Solve a facility arrangement problem instance",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f)
		},
	}

	root.Flags().StringVar(&f.configPath, "config", "", "path to the YAML instance file (required)")
	root.Flags().StringVar(&f.outputDir, "output", ".", "output directory for exported results")
	root.Flags().StringVar(&f.format, "format", "json", "export format: json, svg, or all")
	root.Flags().IntVar(&f.threads, "threads", 0, "sampling worker count (0 = auto)")
	root.Flags().IntVar(&f.generations, "generations", 1, "GMC generation count (1 = plain MC)")
	root.Flags().Uint64Var(&f.workload, "workload", 200, "samples per worker per generation")
	root.Flags().IntVar(&f.maxAttempts, "max-attempts", 50, "placement resample attempts before giving up on a subject")
	root.Flags().Float64Var(&f.alpha, "alpha", milp.DefaultAlpha, "objective weight in [0,2] between purchase cost and transport cost")
	root.Flags().Uint64Var(&f.seed, "seed", 1, "master PRNG seed")
	root.Flags().BoolVar(&f.verbose, "verbose", false, "enable verbose logging")
	root.MarkFlagRequired("config")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f *flags) error {
	sink := logging.NewZerologSink(os.Stderr)

	if f.threads <= 0 {
		f.threads = runtime.GOMAXPROCS(0)
	}
	if f.generations < 1 {
		return fmt.Errorf("%w: --generations must be >= 1", faerrors.ErrInputInvalid)
	}
	validFormats := map[string]bool{"json": true, "svg": true, "all": true}
	if !validFormats[f.format] {
		return fmt.Errorf("%w: --format must be one of json, svg, all", faerrors.ErrInputInvalid)
	}

	instCfg, err := catalog.LoadInstanceFile(f.configPath)
	if err != nil {
		return fmt.Errorf("loading instance: %w", err)
	}
	layout, cat, flow, err := instCfg.Build()
	if err != nil {
		return fmt.Errorf("building instance: %w", err)
	}

	if f.verbose {
		sink.Info(fmt.Sprintf("loaded instance: %d points, %d types, %d flow pairs", layout.Len(), cat.Len(), len(flow.Pairs())))
	}

	if err := os.MkdirAll(f.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	env := solver.NewGonumEnv()
	defer env.Close()

	heuristicStart := time.Now()
	heuristicCfg := orchestrator.Config{
		ThreadCount:     f.threads,
		GenerationCount: f.generations,
		Workload:        f.workload,
		MaxAttempts:     f.maxAttempts,
		Seeds:           rng.NewSeedSequence(f.seed),
	}
	heuristicResult, err := orchestrator.Run(ctx, layout, cat, flow, env, heuristicCfg, sink)
	heuristicDuration := time.Since(heuristicStart)

	final := arrangement.New(layout, cat)
	if err != nil {
		sink.Warning(fmt.Sprintf("heuristic produced no feasible arrangement, full MILP will start cold: %v", err))
	} else {
		sink.Info(fmt.Sprintf("heuristic best cost=%.6f in %s", heuristicResult.Cost, heuristicDuration))
		final = heuristicResult.Best
	}

	model, err := milp.Build(env, layout, cat, flow, f.alpha)
	if err != nil {
		return fmt.Errorf("building full MILP: %w", err)
	}
	if heuristicResult != nil {
		model.Solver.SetStart(warmstart.Build(heuristicResult.Best, model.Handles))
	}

	report, err := solverdriver.Run(ctx, sink, model, final, f.threads)
	if err != nil {
		return fmt.Errorf("solving full MILP: %w", err)
	}

	baseName := fmt.Sprintf("fapsolve_%d", f.seed)
	if f.format == "json" || f.format == "all" {
		path := filepath.Join(f.outputDir, baseName+".json")
		if err := export.SaveJSONToFile(final, path); err != nil {
			return fmt.Errorf("exporting JSON: %w", err)
		}
		if f.verbose {
			sink.Info("wrote " + path)
		}
	}
	if f.format == "svg" || f.format == "all" {
		path := filepath.Join(f.outputDir, baseName+".svg")
		opts := export.DefaultSVGOptions()
		opts.Title = fmt.Sprintf("Facility Arrangement (seed=%d)", f.seed)
		if err := export.SaveSVGToFile(final, path, opts); err != nil {
			return fmt.Errorf("exporting SVG: %w", err)
		}
		if f.verbose {
			sink.Info("wrote " + path)
		}
	}

	fmt.Printf("solved: init=%s solve=%s objective=%.6f\n", report.InitDuration, report.SolveDuration, report.Objective)
	return nil
}
