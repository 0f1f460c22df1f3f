// Package routing builds and solves the Routing LP (§4.6): given a fixed
// placement, find the cheapest feasible flow of objects between placed
// subjects, plus per-point production, or report infeasibility. It is the
// per-sample inner loop of the MC/GMC orchestrator (pkg/orchestrator).
package routing

import (
	"context"
	"fmt"

	"github.com/dshills/fapsolve/pkg/arrangement"
	"github.com/dshills/fapsolve/pkg/catalog"
	"github.com/dshills/fapsolve/pkg/faerrors"
	"github.com/dshills/fapsolve/pkg/solver"
)

// flowKey identifies one f[i,j,p,q] variable.
type flowKey struct {
	srcType, dstType, srcPoint, dstPoint string
}

// prodKey identifies one g[i,p] variable.
type prodKey struct {
	typ, point string
}

// Result is the outcome of a successful Solve: the objective (total
// transport cost) plus enough bookkeeping for the caller to know the run
// happened, since the values themselves are written directly into the
// Arrangement passed to Solve.
type Result struct {
	Cost float64
}

// Solve builds the Routing LP over arr's current placement and flow
// demand, solves it with env, and — on success — writes g (production) and
// f (flow) values back into arr via SetProduced/SetFlow. It never mutates
// counts; only Add/Remove (the placer) does that.
//
// A nil Result with a faerrors.ErrRoutingInfeasible-wrapped error means the
// caller should skip this sample (§4.6 "Outcome: ... Infeasible marker
// otherwise"; §7 "RoutingInfeasible: ... per-sample, counted, not
// propagated").
func Solve(ctx context.Context, env solver.Env, arr *arrangement.Arrangement, flow *catalog.FlowDemand, threads int) (*Result, error) {
	layout := arr.Layout()
	cat := arr.Catalog()

	model := env.NewModel("routing-lp")
	model.SetThreads(threads)

	flowVars := make(map[flowKey]solver.Var)
	prodVars := make(map[prodKey]solver.Var)

	occupied := make(map[string][]string) // typ -> points with count>0
	for _, p := range layout.Names() {
		for _, typ := range cat.Names() {
			if arr.Count(p, typ) > 0 {
				occupied[typ] = append(occupied[typ], p)
			}
		}
	}

	const bigM = 1e9

	for _, pair := range flow.Pairs() {
		demand := flow.Get(pair.Src, pair.Dst)
		if demand <= 0 {
			continue
		}
		for _, p := range occupied[pair.Src] {
			for _, q := range occupied[pair.Dst] {
				key := flowKey{pair.Src, pair.Dst, p, q}
				name := fmt.Sprintf("f_%s_%s_%s_%s", pair.Src, pair.Dst, p, q)
				flowVars[key] = model.AddVar(name, bigM, true)
			}
		}
	}

	for _, typ := range cat.Names() {
		for _, p := range occupied[typ] {
			key := prodKey{typ, p}
			prodVars[key] = model.AddVar(fmt.Sprintf("g_%s_%s", typ, p), bigM, true)
		}
	}

	// (1) In-capacity: sum_{j,p} f[j,i,p,q] <= count[i][q] * in_capacity[i]
	for _, typ := range cat.Names() {
		rec, _ := cat.Type(typ)
		for _, q := range occupied[typ] {
			var terms []solver.Term
			for _, pair := range flow.Pairs() {
				if pair.Dst != typ {
					continue
				}
				for _, p := range occupied[pair.Src] {
					if v, ok := flowVars[flowKey{pair.Src, pair.Dst, p, q}]; ok {
						terms = append(terms, solver.T(1, v))
					}
				}
			}
			if len(terms) == 0 {
				continue
			}
			bound := float64(arr.Count(q, typ)) * rec.InCapacity
			if err := model.AddConstr(solver.Expr(terms...), solver.LE, solver.Expr().Plus(bound)); err != nil {
				return nil, fmt.Errorf("routing: in-capacity constraint for (%s,%s): %w", typ, q, err)
			}
		}
	}

	// (2) Out-capacity: sum_{j,q} f[i,j,p,q] <= count[i][p] * out_capacity[i]
	for _, typ := range cat.Names() {
		rec, _ := cat.Type(typ)
		for _, p := range occupied[typ] {
			var terms []solver.Term
			for _, pair := range flow.Pairs() {
				if pair.Src != typ {
					continue
				}
				for _, q := range occupied[pair.Dst] {
					if v, ok := flowVars[flowKey{pair.Src, pair.Dst, p, q}]; ok {
						terms = append(terms, solver.T(1, v))
					}
				}
			}
			if len(terms) == 0 {
				continue
			}
			bound := float64(arr.Count(p, typ)) * rec.OutCapacity
			if err := model.AddConstr(solver.Expr(terms...), solver.LE, solver.Expr().Plus(bound)); err != nil {
				return nil, fmt.Errorf("routing: out-capacity constraint for (%s,%s): %w", typ, p, err)
			}
		}
	}

	// (4) Weak Kirchhoff: sum_{j,q} f[i,j,p,q] <= g[i,p] + sum_{j,q} f[j,i,q,p]
	for _, typ := range cat.Names() {
		for _, p := range occupied[typ] {
			var outTerms []solver.Term
			for _, pair := range flow.Pairs() {
				if pair.Src != typ {
					continue
				}
				for _, q := range occupied[pair.Dst] {
					if v, ok := flowVars[flowKey{pair.Src, pair.Dst, p, q}]; ok {
						outTerms = append(outTerms, solver.T(1, v))
					}
				}
			}
			if len(outTerms) == 0 {
				continue
			}
			rhsTerms := []solver.Term{solver.T(1, prodVars[prodKey{typ, p}])}
			for _, pair := range flow.Pairs() {
				if pair.Dst != typ {
					continue
				}
				for _, q := range occupied[pair.Src] {
					if v, ok := flowVars[flowKey{pair.Src, pair.Dst, q, p}]; ok {
						rhsTerms = append(rhsTerms, solver.T(1, v))
					}
				}
			}
			if err := model.AddConstr(solver.Expr(outTerms...), solver.LE, solver.Expr(rhsTerms...)); err != nil {
				return nil, fmt.Errorf("routing: weak-kirchhoff constraint for (%s,%s): %w", typ, p, err)
			}
		}
	}

	// (5) Demand satisfied: sum_{p,q} f[i,j,p,q] = FlowDemand(i,j)
	for _, pair := range flow.Pairs() {
		demand := flow.Get(pair.Src, pair.Dst)
		if demand <= 0 {
			continue
		}
		var terms []solver.Term
		for _, p := range occupied[pair.Src] {
			for _, q := range occupied[pair.Dst] {
				if v, ok := flowVars[flowKey{pair.Src, pair.Dst, p, q}]; ok {
					terms = append(terms, solver.T(1, v))
				}
			}
		}
		if len(terms) == 0 {
			return nil, fmt.Errorf("%w: demand %s->%s=%v has no candidate route under this placement", faerrors.ErrRoutingInfeasible, pair.Src, pair.Dst, demand)
		}
		if err := model.AddConstr(solver.Expr(terms...), solver.EQ, solver.Expr().Plus(demand)); err != nil {
			return nil, fmt.Errorf("routing: demand constraint for (%s,%s): %w", pair.Src, pair.Dst, err)
		}
	}

	// (6) Production target: sum_p g[i,p] = max(out-in, 0), per the
	// heuristic's implicit Kirchhoff tie (§9 Open Question).
	for _, typ := range cat.Names() {
		points := occupied[typ]
		if len(points) == 0 {
			continue
		}
		var terms []solver.Term
		for _, p := range points {
			terms = append(terms, solver.T(1, prodVars[prodKey{typ, p}]))
		}
		target := flow.ImpliedProductionTarget(typ)
		if err := model.AddConstr(solver.Expr(terms...), solver.EQ, solver.Expr().Plus(target)); err != nil {
			return nil, fmt.Errorf("routing: production-target constraint for %s: %w", typ, err)
		}
	}

	// Objective: minimise sum distance(p,q) * f[i,j,p,q]
	var objTerms []solver.Term
	for key, v := range flowVars {
		d := layout.Distance(key.srcPoint, key.dstPoint)
		objTerms = append(objTerms, solver.T(d, v))
	}
	model.SetObjective(solver.Expr(objTerms...), solver.Minimize)

	status, err := model.Solve(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", faerrors.ErrRoutingInfeasible, err)
	}
	if status == solver.StatusInfeasible {
		return nil, fmt.Errorf("%w: no feasible routing for this placement", faerrors.ErrRoutingInfeasible)
	}
	if status != solver.StatusOptimal && status != solver.StatusFeasible {
		return nil, fmt.Errorf("%w: routing LP solver status %s", faerrors.ErrSolverError, status)
	}

	for key, v := range flowVars {
		arr.SetFlow(key.srcPoint, catalog.TypePair{Src: key.srcType, Dst: key.dstType}, key.dstPoint, model.Value(v))
	}
	for key, v := range prodVars {
		arr.SetProduced(key.point, key.typ, model.Value(v))
	}

	return &Result{Cost: model.ObjValue()}, nil
}
