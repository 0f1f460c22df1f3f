// Package warmstart implements the Warm-start bridge (§4.9): translating
// the heuristic's best Arrangement into a starting variable assignment for
// the Full MILP (pkg/milp), submitted to the solver as an advisory
// check-feasibility point.
package warmstart

import (
	"github.com/dshills/fapsolve/pkg/arrangement"
	"github.com/dshills/fapsolve/pkg/catalog"
	"github.com/dshills/fapsolve/pkg/milp"
	"github.com/dshills/fapsolve/pkg/solver"
)

// Build reads heuristic's placement, production, and flow state and
// returns the (variable, value) pairs for every n, g, and f variable of
// the Full MILP (handles), leaving nt to the solver (§4.9: "nt is left to
// the solver"). Missing entries default to 0, matching the heuristic's
// sparse occupancy against the full MILP's dense variable set.
func Build(heuristic *arrangement.Arrangement, handles milp.Handles) []solver.StartPoint {
	var points []solver.StartPoint

	for key, v := range handles.N {
		count := heuristic.Count(key.Point, key.Type)
		if count == 0 {
			continue
		}
		points = append(points, solver.StartPoint{Var: v, Value: float64(count)})
	}

	for key, v := range handles.G {
		produced := heuristic.Produced(key.Point, key.Type)
		if produced == 0 {
			continue
		}
		points = append(points, solver.StartPoint{Var: v, Value: produced})
	}

	for key, v := range handles.F {
		flow := heuristic.Flow(key.SrcPoint, catalog.TypePair{Src: key.SrcType, Dst: key.DstType}, key.DstPoint)
		if flow == 0 {
			continue
		}
		points = append(points, solver.StartPoint{Var: v, Value: flow})
	}

	return points
}
