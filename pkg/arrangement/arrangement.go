// Package arrangement models the mutable placement state of a facility
// arrangement problem run: subject counts per (type, point), produced units,
// and routed flows (§3 Arrangement). Arrangements are created empty from a
// Layout, mutated by the placer and by solver readback, and cloned freely
// between concurrent sampling workers.
package arrangement

import (
	"fmt"

	"github.com/dshills/fapsolve/pkg/catalog"
	"github.com/dshills/fapsolve/pkg/geometry"
)

// Arrangement carries a reference to its Layout plus per-point subject
// counts, per-point production, and per-point outgoing flows (§3). All maps
// are keyed first by point name so per-point operations (Add, Remove,
// RemainingArea) are O(1).
type Arrangement struct {
	layout  *geometry.Layout
	catalog *catalog.TypeCatalog

	counts    map[string]map[string]uint64  // point -> type -> count
	produced  map[string]map[string]float64 // point -> type -> produced units
	flows     map[string]map[catalog.TypePair]map[string]float64
	remaining map[string]float64 // point -> remaining area, kept in sync by Add/Remove
}

// New creates an empty Arrangement over layout, with area accounting driven
// by catalog's per-type Area field.
func New(layout *geometry.Layout, cat *catalog.TypeCatalog) *Arrangement {
	a := &Arrangement{
		layout:    layout,
		catalog:   cat,
		counts:    make(map[string]map[string]uint64, layout.Len()),
		produced:  make(map[string]map[string]float64, layout.Len()),
		flows:     make(map[string]map[catalog.TypePair]map[string]float64, layout.Len()),
		remaining: make(map[string]float64, layout.Len()),
	}
	for _, name := range layout.Names() {
		pt, _ := layout.Point(name)
		a.remaining[name] = pt.Capacity
		a.counts[name] = make(map[string]uint64)
	}
	return a
}

// Layout returns the arrangement's underlying layout.
func (a *Arrangement) Layout() *geometry.Layout { return a.layout }

// Catalog returns the arrangement's type catalog.
func (a *Arrangement) Catalog() *catalog.TypeCatalog { return a.catalog }

// RemainingArea returns capacity(point) - Σ_t count[t][point]*area[t] (§3
// derived quantity). Zero for an unknown point.
func (a *Arrangement) RemainingArea(point string) float64 {
	return a.remaining[point]
}

// Count returns the number of subjects of typeName placed at point.
func (a *Arrangement) Count(point, typeName string) uint64 {
	byType, ok := a.counts[point]
	if !ok {
		return 0
	}
	return byType[typeName]
}

// Add places one subject of typeName at point, succeeding iff
// RemainingArea(point) >= type.Area (§4.3). On success it decrements the
// point's remaining area and increments the count; on failure it leaves the
// arrangement unchanged.
func (a *Arrangement) Add(point, typeName string) (bool, error) {
	ty, ok := a.catalog.Type(typeName)
	if !ok {
		return false, fmt.Errorf("arrangement: unknown type %q", typeName)
	}
	if !a.layout.Has(point) {
		return false, fmt.Errorf("arrangement: unknown point %q", point)
	}
	if a.remaining[point] < ty.Area {
		return false, nil
	}
	a.remaining[point] -= ty.Area
	if a.counts[point] == nil {
		a.counts[point] = make(map[string]uint64)
	}
	a.counts[point][typeName]++
	return true, nil
}

// Remove takes one subject of typeName off point, incrementing the point's
// remaining area. It is a no-op if no such subject is currently placed
// there (§4.3).
func (a *Arrangement) Remove(point, typeName string) {
	byType, ok := a.counts[point]
	if !ok || byType[typeName] == 0 {
		return
	}
	ty, ok := a.catalog.Type(typeName)
	if !ok {
		return
	}
	byType[typeName]--
	a.remaining[point] += ty.Area
}

// SetCount directly sets the number of typeName subjects at point,
// recomputing remaining area from scratch rather than gating on it. Used to
// record a full-MILP solution's n[i,p] values, which already satisfy the
// area constraint (§4.8 constraint 3) by construction, unlike Add, which
// enforces it one subject at a time.
func (a *Arrangement) SetCount(point, typeName string, count uint64) {
	ty, ok := a.catalog.Type(typeName)
	if !ok {
		return
	}
	if a.counts[point] == nil {
		a.counts[point] = make(map[string]uint64)
	}
	prev := a.counts[point][typeName]
	a.counts[point][typeName] = count
	a.remaining[point] += float64(prev) * ty.Area
	a.remaining[point] -= float64(count) * ty.Area
}

// Subjects returns the total number of placed subjects across all types and
// points.
func (a *Arrangement) Subjects() uint64 {
	var total uint64
	for _, byType := range a.counts {
		for _, n := range byType {
			total += n
		}
	}
	return total
}

// SubjectsOfType returns the total number of placed subjects of typeName
// across all points.
func (a *Arrangement) SubjectsOfType(typeName string) uint64 {
	var total uint64
	for _, byType := range a.counts {
		total += byType[typeName]
	}
	return total
}

// Points returns the names of the points that currently hold at least one
// subject, in no particular order, useful for building Routing LP variables
// without scanning the whole layout (§4.6). TypesAt gives a point's
// occupied types.
func (a *Arrangement) Points() []string {
	out := make([]string, 0, len(a.counts))
	for point, byType := range a.counts {
		occupied := false
		for _, n := range byType {
			if n > 0 {
				occupied = true
				break
			}
		}
		if occupied {
			out = append(out, point)
		}
	}
	return out
}

// TypesAt returns the type names with a non-zero count at point.
func (a *Arrangement) TypesAt(point string) []string {
	byType, ok := a.counts[point]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(byType))
	for t, n := range byType {
		if n > 0 {
			out = append(out, t)
		}
	}
	return out
}

// SetProduced records produced[typeName][point] = units, overwriting any
// prior value. Used by Routing LP / MILP readback (§4.6, §4.8).
func (a *Arrangement) SetProduced(point, typeName string, units float64) {
	if a.produced[point] == nil {
		a.produced[point] = make(map[string]float64)
	}
	a.produced[point][typeName] = units
}

// Produced returns produced[typeName][point], 0 if never set.
func (a *Arrangement) Produced(point, typeName string) float64 {
	byType, ok := a.produced[point]
	if !ok {
		return 0
	}
	return byType[typeName]
}

// SetFlow records flow[srcType,dstType][fromPoint][toPoint] = units,
// overwriting any prior value.
func (a *Arrangement) SetFlow(fromPoint string, pair catalog.TypePair, toPoint string, units float64) {
	if a.flows[fromPoint] == nil {
		a.flows[fromPoint] = make(map[catalog.TypePair]map[string]float64)
	}
	if a.flows[fromPoint][pair] == nil {
		a.flows[fromPoint][pair] = make(map[string]float64)
	}
	a.flows[fromPoint][pair][toPoint] = units
}

// Flow returns flow[srcType,dstType][fromPoint][toPoint], 0 if never set.
func (a *Arrangement) Flow(fromPoint string, pair catalog.TypePair, toPoint string) float64 {
	byPair, ok := a.flows[fromPoint]
	if !ok {
		return 0
	}
	byDest, ok := byPair[pair]
	if !ok {
		return 0
	}
	return byDest[toPoint]
}

// FlowEntry is one (fromPoint, pair, toPoint) triple with its recorded
// flow, as returned by AllFlows.
type FlowEntry struct {
	From string
	Pair catalog.TypePair
	To   string
	Flow float64
}

// AllFlows returns every recorded non-zero flow entry, in no particular
// order; callers that need determinism should sort the result.
func (a *Arrangement) AllFlows() []FlowEntry {
	var out []FlowEntry
	for from, byPair := range a.flows {
		for pair, byDest := range byPair {
			for to, f := range byDest {
				if f != 0 {
					out = append(out, FlowEntry{From: from, Pair: pair, To: to, Flow: f})
				}
			}
		}
	}
	return out
}

// Clone returns a deep copy sharing the same (read-only) Layout and
// TypeCatalog pointers but with independently mutable state, cheap enough
// for workers to clone once per sample (§4.3).
func (a *Arrangement) Clone() *Arrangement {
	clone := &Arrangement{
		layout:    a.layout,
		catalog:   a.catalog,
		counts:    make(map[string]map[string]uint64, len(a.counts)),
		produced:  make(map[string]map[string]float64, len(a.produced)),
		flows:     make(map[string]map[catalog.TypePair]map[string]float64, len(a.flows)),
		remaining: make(map[string]float64, len(a.remaining)),
	}
	for point, byType := range a.counts {
		cp := make(map[string]uint64, len(byType))
		for t, n := range byType {
			cp[t] = n
		}
		clone.counts[point] = cp
	}
	for point, byType := range a.produced {
		cp := make(map[string]float64, len(byType))
		for t, n := range byType {
			cp[t] = n
		}
		clone.produced[point] = cp
	}
	for from, byPair := range a.flows {
		cpPair := make(map[catalog.TypePair]map[string]float64, len(byPair))
		for pair, byDest := range byPair {
			cpDest := make(map[string]float64, len(byDest))
			for to, f := range byDest {
				cpDest[to] = f
			}
			cpPair[pair] = cpDest
		}
		clone.flows[from] = cpPair
	}
	for point, rem := range a.remaining {
		clone.remaining[point] = rem
	}
	return clone
}
