package solverdriver

import (
	"context"
	"math"
	"testing"

	"github.com/dshills/fapsolve/pkg/arrangement"
	"github.com/dshills/fapsolve/pkg/catalog"
	"github.com/dshills/fapsolve/pkg/geometry"
	"github.com/dshills/fapsolve/pkg/logging"
	"github.com/dshills/fapsolve/pkg/milp"
	"github.com/dshills/fapsolve/pkg/solver"
)

func TestRunReportsTimingsAndObjective(t *testing.T) {
	layout, err := geometry.Grid(1, 1, 1, 5)
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	cat, err := catalog.NewTypeCatalog(map[string]catalog.Type{"A": {Area: 1}})
	if err != nil {
		t.Fatalf("NewTypeCatalog: %v", err)
	}
	flow, err := catalog.NewFlowDemand(nil, cat)
	if err != nil {
		t.Fatalf("NewFlowDemand: %v", err)
	}

	env := solver.NewGonumEnv()
	model, err := milp.Build(env, layout, cat, flow, milp.DefaultAlpha)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	arr := arrangement.New(layout, cat)
	var sink logging.NoopSink
	report, err := Run(context.Background(), sink, model, arr, 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.InitDuration < 0 || report.SolveDuration < 0 {
		t.Fatalf("negative duration in report: %+v", report)
	}
	if math.Abs(report.Objective) > 1e-9 {
		t.Fatalf("objective = %v, want 0 for zero-demand instance", report.Objective)
	}
}
