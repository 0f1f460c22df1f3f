package catalog

import (
	"fmt"
	"sort"

	"github.com/dshills/fapsolve/pkg/faerrors"
)

// TypePair identifies a required flow from Src type to Dst type.
type TypePair struct {
	Src string
	Dst string
}

// FlowDemand is a mapping keyed by (src_type, dst_type) to a required total
// flow. An absent pair is equivalent to zero demand (§3).
type FlowDemand struct {
	demand map[TypePair]float64
	pairs  []TypePair // cached, sorted by (Src, Dst), zero-demand entries excluded
}

// NewFlowDemand validates that every referenced type exists in catalog and
// that no demand is negative, then wraps the table. Zero-valued entries are
// dropped (absent ≡ zero, §3) so downstream iteration only visits real
// demand.
func NewFlowDemand(demand map[TypePair]float64, catalog *TypeCatalog) (*FlowDemand, error) {
	cp := make(map[TypePair]float64, len(demand))
	pairs := make([]TypePair, 0, len(demand))
	for pair, qty := range demand {
		if !catalog.Has(pair.Src) {
			return nil, fmt.Errorf("%w: flow demand references unknown src type %q", faerrors.ErrInputInvalid, pair.Src)
		}
		if !catalog.Has(pair.Dst) {
			return nil, fmt.Errorf("%w: flow demand references unknown dst type %q", faerrors.ErrInputInvalid, pair.Dst)
		}
		if qty < 0 {
			return nil, fmt.Errorf("%w: flow demand(%s,%s) must be >= 0, got %v", faerrors.ErrInputInvalid, pair.Src, pair.Dst, qty)
		}
		if qty == 0 {
			continue
		}
		cp[pair] = qty
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Src != pairs[j].Src {
			return pairs[i].Src < pairs[j].Src
		}
		return pairs[i].Dst < pairs[j].Dst
	})
	return &FlowDemand{demand: cp, pairs: pairs}, nil
}

// Get returns the required flow for (src, dst), or 0 if absent.
func (f *FlowDemand) Get(src, dst string) float64 {
	return f.demand[TypePair{Src: src, Dst: dst}]
}

// Pairs returns the non-zero demand pairs in deterministic order.
func (f *FlowDemand) Pairs() []TypePair {
	out := make([]TypePair, len(f.pairs))
	copy(out, f.pairs)
	return out
}

// OutDemand returns the sum of demand originating at src, Σ_j demand(src,j).
func (f *FlowDemand) OutDemand(src string) float64 {
	var total float64
	for pair, qty := range f.demand {
		if pair.Src == src {
			total += qty
		}
	}
	return total
}

// InDemand returns the sum of demand terminating at dst, Σ_j demand(j,dst).
func (f *FlowDemand) InDemand(dst string) float64 {
	var total float64
	for pair, qty := range f.demand {
		if pair.Dst == dst {
			total += qty
		}
	}
	return total
}

// ImpliedProductionTarget computes max(Σ_j demand(i,j) - Σ_j demand(j,i), 0)
// for type i, the quantity the Routing LP (C6) ties produced units to via
// its constraint 6 (§4.6, §9 "Kirchhoff in heuristic vs MILP"). Callers that
// want the heuristic and full MILP to agree (so the warm-start is accepted,
// §9) should set Type.ProductionTarget to this value.
func (f *FlowDemand) ImpliedProductionTarget(typeName string) float64 {
	v := f.OutDemand(typeName) - f.InDemand(typeName)
	if v < 0 {
		return 0
	}
	return v
}
