// Package catalog holds the two read-only tables that describe what can be
// placed and what must flow: the subject TypeCatalog (§3 Type, TypeCatalog)
// and the pairwise FlowDemand table. Both are constructed once from input
// and are safe to share, unlocked, across sampling workers (§5).
package catalog

import (
	"fmt"
	"sort"

	"github.com/dshills/fapsolve/pkg/faerrors"
)

// Type is a subject type record: the per-unit capacities that bound the
// Routing LP and full MILP, the production target the full MILP must hit
// exactly, the stock already on hand, and the unit purchase price.
type Type struct {
	InCapacity         float64
	OutCapacity        float64
	ProductionTarget   float64
	Area               float64
	InitiallyAvailable uint64
	Price              float64
}

// Validate rejects a Type with negative fields; InitiallyAvailable is
// unsigned so it cannot be negative by construction.
func (t Type) Validate(name string) error {
	switch {
	case t.InCapacity < 0:
		return fmt.Errorf("%w: type %q: in_capacity must be >= 0", faerrors.ErrInputInvalid, name)
	case t.OutCapacity < 0:
		return fmt.Errorf("%w: type %q: out_capacity must be >= 0", faerrors.ErrInputInvalid, name)
	case t.ProductionTarget < 0:
		return fmt.Errorf("%w: type %q: production_target must be >= 0", faerrors.ErrInputInvalid, name)
	case t.Area < 0:
		return fmt.Errorf("%w: type %q: area must be >= 0", faerrors.ErrInputInvalid, name)
	case t.Price < 0:
		return fmt.Errorf("%w: type %q: price must be >= 0", faerrors.ErrInputInvalid, name)
	}
	return nil
}

// TypeCatalog is a deterministic-iteration mapping from type name to Type.
type TypeCatalog struct {
	types map[string]Type
	names []string
}

// NewTypeCatalog validates and wraps a name->Type map. The map is copied.
func NewTypeCatalog(types map[string]Type) (*TypeCatalog, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("%w: type catalog must have at least one type", faerrors.ErrInputInvalid)
	}
	cp := make(map[string]Type, len(types))
	names := make([]string, 0, len(types))
	for name, ty := range types {
		if name == "" {
			return nil, fmt.Errorf("%w: type name must not be empty", faerrors.ErrInputInvalid)
		}
		if err := ty.Validate(name); err != nil {
			return nil, err
		}
		cp[name] = ty
		names = append(names, name)
	}
	sort.Strings(names)
	return &TypeCatalog{types: cp, names: names}, nil
}

// Names returns type names in deterministic (sorted) order.
func (c *TypeCatalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Type looks up a type by name.
func (c *TypeCatalog) Type(name string) (Type, bool) {
	t, ok := c.types[name]
	return t, ok
}

// Len returns the number of types in the catalog.
func (c *TypeCatalog) Len() int { return len(c.names) }

// Has reports whether a type name exists in this catalog.
func (c *TypeCatalog) Has(name string) bool {
	_, ok := c.types[name]
	return ok
}
