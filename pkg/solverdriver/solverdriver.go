// Package solverdriver implements the Solver driver (§4.10): hands the
// Full MILP over to the external solver, redirects its output through the
// Logger sink, times initialisation and solve separately, and reports a
// one-line summary plus the final objective.
package solverdriver

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/fapsolve/pkg/arrangement"
	"github.com/dshills/fapsolve/pkg/logging"
	"github.com/dshills/fapsolve/pkg/milp"
)

// Report is the timing and outcome summary the driver emits after a run.
type Report struct {
	InitDuration  time.Duration
	SolveDuration time.Duration
	Objective     float64
}

// Run solves m against arr, streaming solver output through logger and
// timing setup versus the solve call itself (§4.10 "timings for init and
// solve separately"). Model construction and warm-start submission are done
// by the caller before Run is called, so InitDuration covers only setting
// the solver's thread limit and output redirection.
func Run(ctx context.Context, logger logging.Logger, m *milp.Model, arr *arrangement.Arrangement, threads int) (*Report, error) {
	initStart := time.Now()
	m.Solver.SetThreads(threads)
	if logger != nil {
		m.Solver.SetOutput(logger.SolverOutput())
	}
	initDuration := time.Since(initStart)

	solveStart := time.Now()
	obj, err := milp.Solve(ctx, m, arr)
	solveDuration := time.Since(solveStart)

	if err != nil {
		if logger != nil {
			logger.Error(fmt.Sprintf("solver driver: %v", err))
		}
		return &Report{InitDuration: initDuration, SolveDuration: solveDuration}, err
	}

	report := &Report{InitDuration: initDuration, SolveDuration: solveDuration, Objective: obj}
	if logger != nil {
		logger.Info(fmt.Sprintf("solved: init=%s solve=%s objective=%.6f", initDuration, solveDuration, obj))
	}
	return report, nil
}
