package catalog

import "testing"

func TestNewTypeCatalogRejectsNegativeFields(t *testing.T) {
	_, err := NewTypeCatalog(map[string]Type{
		"A": {InCapacity: -1},
	})
	if err == nil {
		t.Fatalf("expected error for negative in_capacity")
	}
}

func TestNewTypeCatalogDeterministicNames(t *testing.T) {
	cat, err := NewTypeCatalog(map[string]Type{
		"C": {Area: 1},
		"A": {Area: 1},
		"B": {Area: 1},
	})
	if err != nil {
		t.Fatalf("NewTypeCatalog: %v", err)
	}
	names := cat.Names()
	want := []string{"A", "B", "C"}
	for i, w := range want {
		if names[i] != w {
			t.Fatalf("names[%d] = %q, want %q", i, names[i], w)
		}
	}
}

func TestFlowDemandRejectsUnknownType(t *testing.T) {
	cat, _ := NewTypeCatalog(map[string]Type{"A": {}})
	_, err := NewFlowDemand(map[TypePair]float64{{Src: "A", Dst: "B"}: 1}, cat)
	if err == nil {
		t.Fatalf("expected error for unknown dst type")
	}
}

func TestFlowDemandAbsentIsZero(t *testing.T) {
	cat, _ := NewTypeCatalog(map[string]Type{"A": {}, "B": {}})
	fd, err := NewFlowDemand(map[TypePair]float64{{Src: "A", Dst: "B"}: 5}, cat)
	if err != nil {
		t.Fatalf("NewFlowDemand: %v", err)
	}
	if got := fd.Get("B", "A"); got != 0 {
		t.Fatalf("absent pair should be 0, got %v", got)
	}
	if got := fd.Get("A", "B"); got != 5 {
		t.Fatalf("Get(A,B) = %v, want 5", got)
	}
}

func TestImpliedProductionTarget(t *testing.T) {
	cat, _ := NewTypeCatalog(map[string]Type{"A": {}, "B": {}, "C": {}})
	fd, err := NewFlowDemand(map[TypePair]float64{
		{Src: "A", Dst: "B"}: 100,
		{Src: "B", Dst: "C"}: 25,
		{Src: "C", Dst: "B"}: 10,
	}, cat)
	if err != nil {
		t.Fatalf("NewFlowDemand: %v", err)
	}
	if got := fd.ImpliedProductionTarget("A"); got != 100 {
		t.Fatalf("A production target = %v, want 100", got)
	}
	// B: out=25, in=100+10=110 -> max(25-110,0) = 0
	if got := fd.ImpliedProductionTarget("B"); got != 0 {
		t.Fatalf("B production target = %v, want 0", got)
	}
}

func TestLoadInstanceBytesRoundTrip(t *testing.T) {
	doc := []byte(`
metric:
  order: 1
points:
  p1: {x: 0, y: 0, capacity: 10}
  p2: {x: 3, y: 0, capacity: 10}
types:
  A: {out_capacity: 25, area: 2, initially_available: 2}
  B: {in_capacity: 60, area: 3, initially_available: 3}
flows:
  - {src: A, dst: B, qty: 100}
`)
	cfg, err := LoadInstanceBytes(doc)
	if err != nil {
		t.Fatalf("LoadInstanceBytes: %v", err)
	}
	layout, tcat, fd, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if layout.Len() != 2 {
		t.Fatalf("expected 2 points, got %d", layout.Len())
	}
	if tcat.Len() != 2 {
		t.Fatalf("expected 2 types, got %d", tcat.Len())
	}
	if got := fd.Get("A", "B"); got != 100 {
		t.Fatalf("fd.Get(A,B) = %v, want 100", got)
	}
}
