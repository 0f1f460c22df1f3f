package solver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// gonumEnv is the only Env this package ships. It exists purely so callers
// get the same construct-env/construct-model shape the contract describes
// (§6); gonum itself has no notion of an environment.
type gonumEnv struct{}

// NewGonumEnv constructs the façade's gonum-backed Env.
func NewGonumEnv() Env { return &gonumEnv{} }

func (e *gonumEnv) NewModel(name string) Model {
	return &gonumModel{name: name, threads: 1}
}

func (e *gonumEnv) Close() error { return nil }

type varInfo struct {
	name    string
	upper   float64
	integer bool
}

type constraint struct {
	lhs LinExpr
	op  Op
	rhs LinExpr
}

// gonumModel is a branch-and-bound MILP solver built on top of
// gonum.org/v1/gonum/optimize/convex/lp.Simplex. The relaxation-plus-search
// structure (convert inequalities to an equality system with slack
// variables, then branch on the most fractional integer variable) is
// grounded on the retrieval pack's jjhbw-GoMILP reference implementation;
// the LP solve itself is gonum's, not a hand-rolled simplex.
type gonumModel struct {
	name    string
	vars    []varInfo
	cons    []constraint
	obj     LinExpr
	sense   Sense
	start   []StartPoint
	threads int
	output  OutputSink

	status   Status
	objValue float64
	values   []float64
}

func (m *gonumModel) AddVar(name string, upper float64, integer bool) Var {
	id := len(m.vars)
	m.vars = append(m.vars, varInfo{name: name, upper: upper, integer: integer})
	return Var{id: id, name: name}
}

func (m *gonumModel) AddConstr(lhs LinExpr, op Op, rhs LinExpr) error {
	for _, t := range lhs.Terms {
		if t.Var.id < 0 || t.Var.id >= len(m.vars) {
			return fmt.Errorf("solver: constraint references unknown variable %q", t.Var.name)
		}
	}
	for _, t := range rhs.Terms {
		if t.Var.id < 0 || t.Var.id >= len(m.vars) {
			return fmt.Errorf("solver: constraint references unknown variable %q", t.Var.name)
		}
	}
	m.cons = append(m.cons, constraint{lhs: lhs, op: op, rhs: rhs})
	return nil
}

func (m *gonumModel) SetObjective(expr LinExpr, sense Sense) {
	m.obj = expr
	m.sense = sense
}

func (m *gonumModel) SetStart(points []StartPoint) { m.start = points }

func (m *gonumModel) SetThreads(n int) {
	if n < 1 {
		n = 1
	}
	m.threads = n
}

func (m *gonumModel) SetOutput(w OutputSink) { m.output = w }

func (m *gonumModel) ObjValue() float64 { return m.objValue }

func (m *gonumModel) Value(v Var) float64 {
	if v.id < 0 || v.id >= len(m.values) {
		return 0
	}
	return m.values[v.id]
}

func (m *gonumModel) logf(format string, args ...any) {
	if m.output == nil {
		return
	}
	fmt.Fprintf(m.output, format+"\n", args...)
}

// node is one branch-and-bound subproblem: tightened bounds on top of the
// model's declared variable bounds.
type node struct {
	lo, hi []float64
}

const (
	bnbNodeLimit = 20000
	bnbTol       = 1e-7
)

var errRelaxationInfeasible = errors.New("solver: lp relaxation infeasible")

func (m *gonumModel) Solve(ctx context.Context) (Status, error) {
	n := len(m.vars)
	root := node{lo: make([]float64, n), hi: make([]float64, n)}
	for i, v := range m.vars {
		root.hi[i] = v.upper
	}

	c := m.objectiveCoeffs()

	var (
		incumbentObj = math.Inf(1)
		incumbentX   []float64
		haveIncumbent bool
	)

	queue := []node{root}
	nodesExplored := 0

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			m.status = StatusError
			return m.status, ctx.Err()
		default:
		}

		nodesExplored++
		if nodesExplored > bnbNodeLimit {
			m.logf("solver: node limit %d reached, returning best incumbent found", bnbNodeLimit)
			break
		}

		cur := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		obj, x, err := m.solveRelaxation(c, cur)
		if err != nil {
			continue // this branch is infeasible or singular; prune
		}
		if haveIncumbent && obj >= incumbentObj-bnbTol {
			continue // bound: relaxation can't beat the incumbent
		}

		branchVar, frac := m.mostFractional(x)
		if branchVar < 0 {
			// integer-feasible: this is a candidate incumbent.
			incumbentObj = obj
			incumbentX = x
			haveIncumbent = true
			m.logf("solver: incumbent obj=%.6f after %d nodes", obj, nodesExplored)
			continue
		}
		_ = frac

		floorVal := math.Floor(x[branchVar])
		left := cloneNode(cur)
		left.hi[branchVar] = floorVal
		right := cloneNode(cur)
		right.lo[branchVar] = floorVal + 1
		queue = append(queue, left, right)
	}

	if !haveIncumbent {
		m.status = StatusInfeasible
		return m.status, nil
	}

	m.status = StatusOptimal
	m.values = incumbentX
	m.objValue = incumbentObj
	return m.status, nil
}

func cloneNode(n node) node {
	lo := make([]float64, len(n.lo))
	hi := make([]float64, len(n.hi))
	copy(lo, n.lo)
	copy(hi, n.hi)
	return node{lo: lo, hi: hi}
}

// mostFractional returns the index of the integer variable furthest from an
// integral value, or -1 if every integer variable is already integral
// within tolerance.
func (m *gonumModel) mostFractional(x []float64) (int, float64) {
	best := -1
	bestFrac := bnbTol
	for i, v := range m.vars {
		if !v.integer {
			continue
		}
		frac := x[i] - math.Floor(x[i])
		dist := math.Min(frac, 1-frac)
		if dist > bestFrac {
			best = i
			bestFrac = dist
		}
	}
	return best, bestFrac
}

func (m *gonumModel) objectiveCoeffs() []float64 {
	c := make([]float64, len(m.vars))
	for _, t := range m.obj.Terms {
		c[t.Var.id] += t.Coef
	}
	return c
}

// solveRelaxation converts the node's bounded, possibly-inequality system
// into the pure equality-plus-slack-variables form lp.Simplex expects, then
// solves it and slices the slack columns back off (grounded on
// jjhbw-GoMILP's toInitialSubproblem/convertToEqualities pattern).
func (m *gonumModel) solveRelaxation(c []float64, nd node) (float64, []float64, error) {
	n := len(m.vars)

	var rows [][]float64
	var rhs []float64

	addRow := func(coeffs []float64, b float64, op Op) {
		row := make([]float64, n)
		copy(row, coeffs)
		switch op {
		case EQ:
			rows = append(rows, row)
			rhs = append(rhs, b)
		case LE:
			rows = append(rows, appendSlack(row, 1))
			rhs = append(rhs, b)
		case GE:
			rows = append(rows, appendSlack(row, -1))
			rhs = append(rhs, b)
		}
	}

	for _, con := range m.cons {
		coeffs := make([]float64, n)
		b := con.rhs.Constant - con.lhs.Constant
		for _, t := range con.lhs.Terms {
			coeffs[t.Var.id] += t.Coef
		}
		for _, t := range con.rhs.Terms {
			coeffs[t.Var.id] -= t.Coef
		}
		addRow(coeffs, b, con.op)
	}

	// Variable bounds as explicit rows: x_i <= hi_i, x_i >= lo_i (when
	// tighter than the implicit [0, +inf) gonum's lp.Simplex assumes).
	for i := range m.vars {
		row := make([]float64, n)
		row[i] = 1
		addRow(row, nd.hi[i], LE)
		if nd.lo[i] > 0 {
			addRow(row, nd.lo[i], GE)
		}
	}

	total := n + len(rows) // at most one slack column per inequality row
	A := mat.NewDense(len(rows), total, nil)
	for i, row := range rows {
		for j := 0; j < n; j++ {
			A.Set(i, j, row[j])
		}
		if len(row) > n {
			// row's slack coefficient sits at column n+i, unique per row.
			A.Set(i, n+i, row[n])
		}
	}

	cFull := make([]float64, total)
	copy(cFull, c)

	minVal, x, err := lp.Simplex(cFull, A, rhs, 0, nil)
	if err != nil {
		return 0, nil, errRelaxationInfeasible
	}
	return minVal, x[:n], nil
}

// appendSlack returns row with one extra trailing coefficient for a slack
// (sign +1) or surplus (sign -1) variable local to that row.
func appendSlack(row []float64, sign float64) []float64 {
	out := make([]float64, len(row)+1)
	copy(out, row)
	out[len(row)] = sign
	return out
}
