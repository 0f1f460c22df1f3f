// Package faerrors defines the error taxonomy shared across the facility
// arrangement solver (§7): input validation failures, per-sample heuristic
// failures, and the fatal failures that abort a full-MILP run.
package faerrors

import "errors"

// ErrInputInvalid flags a malformed problem instance: name collisions,
// negative capacity, a FlowDemand pair referencing an unknown type, or an
// alpha outside [0, 2]. Surfaced before sampling starts; always fatal.
var ErrInputInvalid = errors.New("facility arrangement: invalid input")

// ErrAreaInfeasible flags a placer failure: it could not place every
// required subject within max_attempts resamples. Counted per-sample by the
// orchestrator, never propagated as fatal.
var ErrAreaInfeasible = errors.New("facility arrangement: placement cannot respect area capacity")

// ErrRoutingInfeasible flags a Routing LP with no feasible flow for the
// fixed placement it was built from. Counted per-sample, never propagated.
var ErrRoutingInfeasible = errors.New("facility arrangement: routing LP is infeasible")

// ErrFullMILPInfeasible flags that the complete instance — every placement,
// routing, and purchase decision together — has no feasible solution. This
// is fatal: no amount of heuristic search can repair an infeasible MILP.
var ErrFullMILPInfeasible = errors.New("facility arrangement: full MILP is infeasible")

// ErrSolverError flags a fault in the external MILP solver (unbounded model,
// solver crash, hardware/timeout failure not covered by infeasibility).
// Always fatal; never retried.
var ErrSolverError = errors.New("facility arrangement: solver error")

// ErrLoggerError flags that the logger sink could not be opened or written
// to. Reported once; the sink then degrades to a no-op (§7).
var ErrLoggerError = errors.New("facility arrangement: logger error")
