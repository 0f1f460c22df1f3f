package geometry

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestMinkowskiIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		order := rapid.Uint16Range(1, 8).Draw(t, "order")
		x := rapid.Float64Range(-1000, 1000).Draw(t, "x")
		y := rapid.Float64Range(-1000, 1000).Draw(t, "y")
		m := Minkowski{Order: order}
		p := Point{X: x, Y: y, Capacity: 1}

		if d := m.Distance(p, p); d != 0 {
			t.Fatalf("distance(p,p) = %v, want 0", d)
		}
	})
}

func TestMinkowskiSymmetryAndNonNegativity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		order := rapid.SampledFrom([]uint16{OrderInfinity, 1, 2, 3, 7}).Draw(t, "order")
		p := Point{X: rapid.Float64Range(-500, 500).Draw(t, "px"), Y: rapid.Float64Range(-500, 500).Draw(t, "py")}
		q := Point{X: rapid.Float64Range(-500, 500).Draw(t, "qx"), Y: rapid.Float64Range(-500, 500).Draw(t, "qy")}
		m := Minkowski{Order: order}

		dpq := m.Distance(p, q)
		dqp := m.Distance(q, p)

		if dpq < 0 {
			t.Fatalf("distance must be non-negative, got %v", dpq)
		}
		if math.Abs(dpq-dqp) > 1e-9 {
			t.Fatalf("distance not symmetric: d(p,q)=%v d(q,p)=%v", dpq, dqp)
		}
	})
}

func TestChebyshevClosedForm(t *testing.T) {
	m := Chebyshev()
	p := Point{X: 0, Y: 0}
	q := Point{X: 3, Y: -5}
	if got := m.Distance(p, q); got != 5 {
		t.Fatalf("Chebyshev(0,0 -> 3,-5) = %v, want 5", got)
	}
}

func TestManhattanClosedForm(t *testing.T) {
	m := Manhattan()
	p := Point{X: 0, Y: 0}
	q := Point{X: 3, Y: -5}
	if got := m.Distance(p, q); got != 8 {
		t.Fatalf("Manhattan(0,0 -> 3,-5) = %v, want 8", got)
	}
}

func TestGridDeterministicNaming(t *testing.T) {
	l, err := Grid(3, 3, 10, 5)
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	names := l.Names()
	if len(names) != 9 {
		t.Fatalf("expected 9 points, got %d", len(names))
	}
	want := []string{"(0,0)", "(0,1)", "(0,2)", "(1,0)", "(1,1)", "(1,2)", "(2,0)", "(2,1)", "(2,2)"}
	for i, w := range want {
		if names[i] != w {
			t.Fatalf("names[%d] = %q, want %q", i, names[i], w)
		}
	}
}

func TestLayoutUnknownPointPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown point name")
		}
	}()
	l, _ := Grid(1, 1, 1, 1)
	l.Distance("(0,0)", "nope")
}

func TestNewLayoutRejectsEmpty(t *testing.T) {
	if _, err := NewLayout(map[string]Point{}, Manhattan()); err == nil {
		t.Fatalf("expected error for empty point set")
	}
}

func TestNewLayoutRejectsNilMetric(t *testing.T) {
	if _, err := NewLayout(map[string]Point{"a": {}}, nil); err == nil {
		t.Fatalf("expected error for nil metric")
	}
}
