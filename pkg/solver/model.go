// Package solver is the internal façade over an external MILP solver (§6).
// The facility arrangement core never talks to a concrete solver SDK
// directly: it builds Models out of Vars, LinExprs and Constraints, and the
// façade is free to route that to whatever backend is available. The only
// backend shipped here is gonum-based (see backend_gonum.go), chosen because
// it is the only mixed-integer solving code present anywhere in the
// retrieval pack (gonum.org/v1/gonum/optimize/convex/lp plus a
// branch-and-bound search grounded on the pack's jjhbw-GoMILP reference).
package solver

import "context"

// Sense is the optimisation direction of a Model's objective.
type Sense int

const (
	// Minimize is the only sense the core ever needs (§4.6, §4.8: both the
	// Routing LP and the full MILP minimise a cost).
	Minimize Sense = iota
)

// Op is a constraint relational operator.
type Op int

const (
	LE Op = iota // <=
	EQ           // =
	GE           // >=
)

// Var is an opaque handle to a decision variable. Handles are stable across
// a Model's lifetime: code that builds a Model can store Vars alongside an
// Arrangement (§9, "handles must be stored alongside the arrangement during
// construction") and use them later to submit a warm start or to read back
// a solved value.
type Var struct {
	id   int
	name string
}

// Term is one `coefficient * variable` addend of a linear expression.
type Term struct {
	Var  Var
	Coef float64
}

// LinExpr is a sum of Terms plus a constant, e.g. 3*x - 2*y + 7.
type LinExpr struct {
	Terms    []Term
	Constant float64
}

// Expr builds a LinExpr from (coef, var) pairs, e.g.
// Expr(T(2, x), T(-1, y)).
func Expr(terms ...Term) LinExpr {
	return LinExpr{Terms: terms}
}

// T is shorthand for constructing a Term.
func T(coef float64, v Var) Term { return Term{Var: v, Coef: coef} }

// Plus returns a new LinExpr with c added to the constant term.
func (e LinExpr) Plus(c float64) LinExpr {
	e.Constant += c
	return e
}

// Status is the outcome of a Solve call (§6: "query status (optimal,
// feasible, infeasible, unbounded, error)").
type Status int

const (
	StatusOptimal Status = iota
	StatusFeasible
	StatusInfeasible
	StatusUnbounded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "error"
	}
}

// StartPoint is one (variable, value) pair of a warm start (§6, §4.9).
type StartPoint struct {
	Var   Var
	Value float64
}

// Model is the façade's view of a single MILP/LP instance: construct
// variables and constraints, set an objective, solve, then read back
// values. Implementations are not expected to be safe for concurrent use by
// multiple goroutines on the same Model instance (§5: "Solver environments:
// one per invocation, not shared across threads").
type Model interface {
	// AddVar declares a non-negative variable with the given (generous)
	// upper bound. integer selects whether it is constrained to integral
	// values at solve time.
	AddVar(name string, upper float64, integer bool) Var

	// AddConstr adds `lhs op rhs` (both sides are LinExprs; rhs is usually
	// a bare constant wrapped via Expr()).
	AddConstr(lhs LinExpr, op Op, rhs LinExpr) error

	// SetObjective installs the objective expression and sense.
	SetObjective(expr LinExpr, sense Sense)

	// SetStart submits a list of (variable, value) pairs as an advisory
	// starting point (§4.9: "submit it as a check-feasibility starting
	// point. The warm-start is advisory: solver may repair or reject it").
	SetStart(points []StartPoint)

	// SetThreads limits solver-internal parallelism (§6: "the core sets 1
	// per Routing-LP worker").
	SetThreads(n int)

	// SetOutput redirects solver logging output; passing nil silences it.
	SetOutput(w OutputSink)

	// Solve runs the solver, honoring ctx cancellation/deadline.
	Solve(ctx context.Context) (Status, error)

	// ObjValue returns the objective value of the last Solve call.
	ObjValue() float64

	// Value returns the solved value of v from the last Solve call.
	Value(v Var) float64
}

// OutputSink receives solver log lines (§6: "redirect output to an
// externally provided stream").
type OutputSink interface {
	Write(p []byte) (int, error)
}

// Env constructs Models. One Env per invocation; Envs are not shared across
// goroutines (§5).
type Env interface {
	NewModel(name string) Model
	Close() error
}
