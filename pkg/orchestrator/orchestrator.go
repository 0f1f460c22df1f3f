// Package orchestrator implements the MC/GMC orchestrator (§4.7): a
// generational, concurrent sampling loop over the placer (pkg/placer) and
// Routing LP (pkg/routing), reduced by argmin to a single best Arrangement.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/dshills/fapsolve/pkg/arrangement"
	"github.com/dshills/fapsolve/pkg/catalog"
	"github.com/dshills/fapsolve/pkg/faerrors"
	"github.com/dshills/fapsolve/pkg/geometry"
	"github.com/dshills/fapsolve/pkg/logging"
	"github.com/dshills/fapsolve/pkg/placer"
	"github.com/dshills/fapsolve/pkg/rng"
	"github.com/dshills/fapsolve/pkg/routing"
	"github.com/dshills/fapsolve/pkg/solver"
)

// Config mirrors the §6 Configuration fields the orchestrator accepts.
type Config struct {
	ThreadCount     int // 0 => runtime.GOMAXPROCS(0)
	GenerationCount int // >= 1; 1 => plain MC
	Workload        uint64
	MaxAttempts     int
	Seeds           rng.SeedSequence
}

// Result is the orchestrator's final answer: the best arrangement found
// across every generation and worker, and its Routing LP cost.
type Result struct {
	Best *arrangement.Arrangement
	Cost float64
}

// workerOutcome is one worker's best (cost, arrangement) for a generation;
// a nil Arrangement means every sample in that worker's workload failed
// (area- or routing-infeasible) and should not participate in the
// reduction.
type workerOutcome struct {
	workerID int
	cost     float64
	arr      *arrangement.Arrangement
}

// Run executes the full MC/GMC loop (§4.7) and returns the best arrangement
// found, or an error if every sample across every generation failed.
func Run(ctx context.Context, layout *geometry.Layout, cat *catalog.TypeCatalog, flow *catalog.FlowDemand, env solver.Env, cfg Config, logger logging.Logger) (*Result, error) {
	if cfg.GenerationCount < 1 {
		return nil, fmt.Errorf("%w: generation_count must be >= 1", faerrors.ErrInputInvalid)
	}
	threads := cfg.ThreadCount
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}

	best := arrangement.New(layout, cat)
	bestCost := math.Inf(1)
	haveBest := false

	for gen := 0; gen < cfg.GenerationCount; gen++ {
		outcomes := make([]workerOutcome, threads)
		var wg sync.WaitGroup

		for w := 0; w < threads; w++ {
			wg.Add(1)
			go func(worker int) {
				defer wg.Done()
				seed := cfg.Seeds.For(gen, worker)
				workerRNG := rng.NewRNG(seed, fmt.Sprintf("gen%d/worker%d", gen, worker), nil)

				outcomes[worker] = runWorker(ctx, gen, worker, best, haveBest, cat, flow, env, cfg, workerRNG, logger)
			}(w)
		}
		wg.Wait()

		select {
		case <-ctx.Done():
			if haveBest {
				return &Result{Best: best, Cost: bestCost}, nil
			}
			return nil, ctx.Err()
		default:
		}

		// Reduction: argmin across workers, ties broken by worker id (§4.7,
		// §5 "commutes and is associative").
		for _, oc := range outcomes {
			if oc.arr == nil {
				continue
			}
			if !haveBest || oc.cost < bestCost {
				best = oc.arr
				bestCost = oc.cost
				haveBest = true
			}
		}
	}

	if !haveBest {
		return nil, fmt.Errorf("%w: every sample across every generation failed", faerrors.ErrAreaInfeasible)
	}
	return &Result{Best: best, Cost: bestCost}, nil
}

func runWorker(ctx context.Context, gen, worker int, sharedBest *arrangement.Arrangement, haveSharedBest bool, cat *catalog.TypeCatalog, flow *catalog.FlowDemand, env solver.Env, cfg Config, r *rng.RNG, logger logging.Logger) workerOutcome {
	var (
		localBest     *arrangement.Arrangement
		localBestCost float64
		haveLocal     bool
		processed     uint64
		successful    uint64
		skipped       uint64
	)

	for i := uint64(0); i < cfg.Workload; i++ {
		select {
		case <-ctx.Done():
			return workerOutcome{workerID: worker, cost: localBestCost, arr: localBest}
		default:
		}

		var (
			sample  *arrangement.Arrangement
			toPlace map[string]uint64
		)
		if gen == 0 || !haveSharedBest {
			sample = arrangement.New(sharedBest.Layout(), cat)
			toPlace = placer.InitialCounts(cat)
		} else {
			sample, toPlace = placer.Fix(sharedBest, cat, gen, r, cfg.MaxAttempts)
		}

		processed++
		if err := placer.Place(sample, cat, toPlace, r, cfg.MaxAttempts); err != nil {
			skipped++
			continue
		}

		result, err := routing.Solve(ctx, env, sample, flow, 1)
		if err != nil {
			if errors.Is(err, faerrors.ErrRoutingInfeasible) {
				skipped++
				continue
			}
			skipped++
			continue
		}
		successful++

		if !haveLocal || result.Cost < localBestCost {
			localBest = sample
			localBestCost = result.Cost
			haveLocal = true
		}

		if processed%100 == 0 && logger != nil {
			logger.Info(fmt.Sprintf("generation=%d worker=%d seed=%d processed=%d successful=%d skipped=%d current_best_cost=%v", gen, worker, r.Seed(), processed, successful, skipped, localBestCost))
		}
	}

	return workerOutcome{workerID: worker, cost: localBestCost, arr: localBest}
}

