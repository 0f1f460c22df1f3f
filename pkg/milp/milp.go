// Package milp builds the Full MILP (§4.8): the complete placement-and-
// routing optimisation over every (type, point) combination and, for each
// type pair with non-zero demand, every (point, point) combination,
// including newly purchased subjects, warm-startable from the heuristic's
// best arrangement (pkg/warmstart). Type pairs with zero demand get no flow
// variables.
package milp

import (
	"context"
	"fmt"
	"math"

	"github.com/dshills/fapsolve/pkg/arrangement"
	"github.com/dshills/fapsolve/pkg/catalog"
	"github.com/dshills/fapsolve/pkg/faerrors"
	"github.com/dshills/fapsolve/pkg/geometry"
	"github.com/dshills/fapsolve/pkg/solver"
)

// VarKeyN identifies an n[i,p] variable: subjects of type i at point p.
type VarKeyN struct{ Type, Point string }

// VarKeyG identifies a g[i,p] variable: units of type i produced at p.
type VarKeyG struct{ Type, Point string }

// VarKeyF identifies an f[i,j,p,q] variable: flow of type i->j from p to q.
type VarKeyF struct{ SrcType, DstType, SrcPoint, DstPoint string }

// Handles collects every variable handle built into the model, keyed the
// way the warm-start bridge (pkg/warmstart) needs to address them (§4.9,
// §9 "handles must be stored alongside the arrangement during
// construction").
type Handles struct {
	N  map[VarKeyN]solver.Var
	G  map[VarKeyG]solver.Var
	F  map[VarKeyF]solver.Var
	NT map[string]solver.Var // additional subjects purchased, per type
}

// Model is the built Full MILP: the solver.Model plus the handles needed to
// submit a warm start and read back a solution.
type Model struct {
	Solver  solver.Model
	Handles Handles
}

// DefaultAlpha is the default alpha, the weight of purchase cost against
// transport cost in the objective (§4.8: "min alpha*price_cost +
// (2-alpha)*transport_cost").
const DefaultAlpha = 1.0

// Build constructs the Full MILP for layout/catalog/flow over env, with the
// given alpha in [0,2] (§6 Configuration). It does not solve; call
// Solver.Solve separately so the warm-start bridge can populate SetStart
// first.
func Build(env solver.Env, layout *geometry.Layout, cat *catalog.TypeCatalog, flow *catalog.FlowDemand, alpha float64) (*Model, error) {
	if alpha < 0 || alpha > 2 {
		return nil, fmt.Errorf("%w: alpha must be in [0,2], got %v", faerrors.ErrInputInvalid, alpha)
	}

	model := env.NewModel("full-milp")
	handles := Handles{
		N:  make(map[VarKeyN]solver.Var),
		G:  make(map[VarKeyG]solver.Var),
		F:  make(map[VarKeyF]solver.Var),
		NT: make(map[string]solver.Var),
	}

	points := layout.Names()
	types := cat.Names()

	const bigM = 1e9

	for _, typ := range types {
		for _, p := range points {
			handles.N[VarKeyN{typ, p}] = model.AddVar(fmt.Sprintf("n_%s_%s", typ, p), bigM, true)
			handles.G[VarKeyG{typ, p}] = model.AddVar(fmt.Sprintf("g_%s_%s", typ, p), bigM, true)
		}
		handles.NT[typ] = model.AddVar(fmt.Sprintf("nt_%s", typ), bigM, true)
	}
	for _, pair := range flow.Pairs() {
		for _, p := range points {
			for _, q := range points {
				handles.F[VarKeyF{pair.Src, pair.Dst, p, q}] = model.AddVar(
					fmt.Sprintf("f_%s_%s_%s_%s", pair.Src, pair.Dst, p, q), bigM, true)
			}
		}
	}

	// (1) In-capacity: sum_{j,p} f[j,i,p,q] <= in_capacity[i] * n[i,q]
	for _, typ := range types {
		rec, _ := cat.Type(typ)
		for _, q := range points {
			var terms []solver.Term
			for _, pair := range flow.Pairs() {
				if pair.Dst != typ {
					continue
				}
				for _, p := range points {
					terms = append(terms, solver.T(1, handles.F[VarKeyF{pair.Src, pair.Dst, p, q}]))
				}
			}
			rhs := solver.Expr(solver.T(rec.InCapacity, handles.N[VarKeyN{typ, q}]))
			if err := model.AddConstr(solver.Expr(terms...), solver.LE, rhs); err != nil {
				return nil, fmt.Errorf("milp: in-capacity (%s,%s): %w", typ, q, err)
			}
		}
	}

	// (2) Out-capacity: sum_{j,q} f[i,j,p,q] <= out_capacity[i] * n[i,p]
	for _, typ := range types {
		rec, _ := cat.Type(typ)
		for _, p := range points {
			var terms []solver.Term
			for _, pair := range flow.Pairs() {
				if pair.Src != typ {
					continue
				}
				for _, q := range points {
					terms = append(terms, solver.T(1, handles.F[VarKeyF{pair.Src, pair.Dst, p, q}]))
				}
			}
			rhs := solver.Expr(solver.T(rec.OutCapacity, handles.N[VarKeyN{typ, p}]))
			if err := model.AddConstr(solver.Expr(terms...), solver.LE, rhs); err != nil {
				return nil, fmt.Errorf("milp: out-capacity (%s,%s): %w", typ, p, err)
			}
		}
	}

	// (3) Area: sum_i area[i]*n[i,p] <= capacity[p]
	for _, p := range points {
		pt, _ := layout.Point(p)
		var terms []solver.Term
		for _, typ := range types {
			rec, _ := cat.Type(typ)
			terms = append(terms, solver.T(rec.Area, handles.N[VarKeyN{typ, p}]))
		}
		if err := model.AddConstr(solver.Expr(terms...), solver.LE, solver.Expr().Plus(pt.Capacity)); err != nil {
			return nil, fmt.Errorf("milp: area constraint for %s: %w", p, err)
		}
	}

	// (4) Weak Kirchhoff: sum_{j,q} f[i,j,p,q] <= g[i,p] + sum_{j,q} f[j,i,q,p]
	for _, typ := range types {
		for _, p := range points {
			var outTerms []solver.Term
			for _, pair := range flow.Pairs() {
				if pair.Src != typ {
					continue
				}
				for _, q := range points {
					outTerms = append(outTerms, solver.T(1, handles.F[VarKeyF{pair.Src, pair.Dst, p, q}]))
				}
			}
			rhsTerms := []solver.Term{solver.T(1, handles.G[VarKeyG{typ, p}])}
			for _, pair := range flow.Pairs() {
				if pair.Dst != typ {
					continue
				}
				for _, q := range points {
					rhsTerms = append(rhsTerms, solver.T(1, handles.F[VarKeyF{pair.Src, pair.Dst, q, p}]))
				}
			}
			if err := model.AddConstr(solver.Expr(outTerms...), solver.LE, solver.Expr(rhsTerms...)); err != nil {
				return nil, fmt.Errorf("milp: weak-kirchhoff (%s,%s): %w", typ, p, err)
			}
		}
	}

	// (5) Demand satisfied: sum_{p,q} f[i,j,p,q] = FlowDemand(i,j)
	for _, pair := range flow.Pairs() {
		var terms []solver.Term
		for _, p := range points {
			for _, q := range points {
				terms = append(terms, solver.T(1, handles.F[VarKeyF{pair.Src, pair.Dst, p, q}]))
			}
		}
		demand := flow.Get(pair.Src, pair.Dst)
		if err := model.AddConstr(solver.Expr(terms...), solver.EQ, solver.Expr().Plus(demand)); err != nil {
			return nil, fmt.Errorf("milp: demand (%s,%s): %w", pair.Src, pair.Dst, err)
		}
	}

	// (6) Production target: sum_p g[i,p] = production_target[i]
	for _, typ := range types {
		rec, _ := cat.Type(typ)
		var terms []solver.Term
		for _, p := range points {
			terms = append(terms, solver.T(1, handles.G[VarKeyG{typ, p}]))
		}
		if err := model.AddConstr(solver.Expr(terms...), solver.EQ, solver.Expr().Plus(rec.ProductionTarget)); err != nil {
			return nil, fmt.Errorf("milp: production-target %s: %w", typ, err)
		}
	}

	// (7) Stock balance: sum_p n[i,p] = initially_available[i] + nt[i]
	for _, typ := range types {
		rec, _ := cat.Type(typ)
		var terms []solver.Term
		for _, p := range points {
			terms = append(terms, solver.T(1, handles.N[VarKeyN{typ, p}]))
		}
		rhs := solver.Expr(solver.T(1, handles.NT[typ])).Plus(float64(rec.InitiallyAvailable))
		if err := model.AddConstr(solver.Expr(terms...), solver.EQ, rhs); err != nil {
			return nil, fmt.Errorf("milp: stock-balance %s: %w", typ, err)
		}
	}

	// Objective: min alpha*Σ price[i]*nt[i] + (2-alpha)*Σ distance(p,q)*f[i,j,p,q]
	var objTerms []solver.Term
	for _, typ := range types {
		rec, _ := cat.Type(typ)
		objTerms = append(objTerms, solver.T(alpha*rec.Price, handles.NT[typ]))
	}
	for key, v := range handles.F {
		d := layout.Distance(key.SrcPoint, key.DstPoint)
		objTerms = append(objTerms, solver.T((2-alpha)*d, v))
	}
	model.SetObjective(solver.Expr(objTerms...), solver.Minimize)

	return &Model{Solver: model, Handles: handles}, nil
}

// Solve runs the model and, on success, writes n/g/f values back into arr
// via the arrangement mutation API, returning the objective value; nt
// values are read through Handles.NT and Solver.Value, not written to arr. A
// FullMILPInfeasible result is fatal (§7): the caller should not retry.
func Solve(ctx context.Context, m *Model, arr *arrangement.Arrangement) (float64, error) {
	status, err := m.Solver.Solve(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", faerrors.ErrSolverError, err)
	}
	if status == solver.StatusInfeasible {
		return 0, fmt.Errorf("%w: full MILP has no solution respecting area, capacities, and demands", faerrors.ErrFullMILPInfeasible)
	}
	if status != solver.StatusOptimal && status != solver.StatusFeasible {
		return 0, fmt.Errorf("%w: full MILP solver status %s", faerrors.ErrSolverError, status)
	}

	for key, v := range m.Handles.N {
		arr.SetCount(key.Point, key.Type, uint64(round(m.Solver.Value(v))))
	}
	for key, v := range m.Handles.F {
		arr.SetFlow(key.SrcPoint, catalog.TypePair{Src: key.SrcType, Dst: key.DstType}, key.DstPoint, m.Solver.Value(v))
	}
	for key, v := range m.Handles.G {
		arr.SetProduced(key.Point, key.Type, m.Solver.Value(v))
	}

	return m.Solver.ObjValue(), nil
}

func round(v float64) float64 {
	return math.Floor(v + 0.5)
}
