package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dshills/fapsolve/pkg/faerrors"
	"github.com/dshills/fapsolve/pkg/geometry"
)

// InstanceConfig is the YAML-serialisable description of a full problem
// instance: the layout, the type catalog, and the flow demand table. It is
// parsed with gopkg.in/yaml.v3 and validated before a run starts, following
// the load-then-validate idiom of the teacher's config and theme loaders.
type InstanceConfig struct {
	Metric MetricCfg          `yaml:"metric"`
	Points map[string]PointCfg `yaml:"points"`
	Types  map[string]TypeCfg  `yaml:"types"`
	Flows  []FlowCfg           `yaml:"flows"`
}

// MetricCfg selects the distance metric. Order 0 means Chebyshev
// (geometry.OrderInfinity); any other value in [1,255] is a Minkowski order.
type MetricCfg struct {
	Order uint16 `yaml:"order"`
}

// PointCfg is the YAML form of a geometry.Point.
type PointCfg struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Capacity float64 `yaml:"capacity"`
}

// TypeCfg is the YAML form of a Type. ProductionTarget is passed through
// unchanged: when it is left out it stays zero, and it is not derived from
// the flow table (FlowDemand.ImpliedProductionTarget computes that value).
type TypeCfg struct {
	InCapacity         float64 `yaml:"in_capacity"`
	OutCapacity        float64 `yaml:"out_capacity"`
	ProductionTarget   float64 `yaml:"production_target"`
	Area               float64 `yaml:"area"`
	InitiallyAvailable uint64  `yaml:"initially_available"`
	Price              float64 `yaml:"price"`
}

// FlowCfg is one (src, dst) -> quantity entry of the FlowDemand table.
type FlowCfg struct {
	Src string  `yaml:"src"`
	Dst string  `yaml:"dst"`
	Qty float64 `yaml:"qty"`
}

// LoadInstanceFile reads and parses a YAML instance file from disk.
func LoadInstanceFile(path string) (*InstanceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading instance file: %w", err)
	}
	return LoadInstanceBytes(data)
}

// LoadInstanceBytes parses a YAML instance document from memory; useful for
// tests and programmatic instance construction.
func LoadInstanceBytes(data []byte) (*InstanceConfig, error) {
	var cfg InstanceConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("catalog: parsing instance YAML: %w", err)
	}
	return &cfg, nil
}

// Build turns a parsed InstanceConfig into the validated triple the solver
// pipeline operates on: a Layout, a TypeCatalog, and a FlowDemand.
func (c *InstanceConfig) Build() (*geometry.Layout, *TypeCatalog, *FlowDemand, error) {
	points := make(map[string]geometry.Point, len(c.Points))
	for name, p := range c.Points {
		pt, err := geometry.NewPoint(p.X, p.Y, p.Capacity)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: point %q: %v", faerrors.ErrInputInvalid, name, err)
		}
		points[name] = pt
	}

	order := c.Metric.Order
	layout, err := geometry.NewLayout(points, geometry.Minkowski{Order: order})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", faerrors.ErrInputInvalid, err)
	}

	types := make(map[string]Type, len(c.Types))
	for name, tc := range c.Types {
		types[name] = Type{
			InCapacity:         tc.InCapacity,
			OutCapacity:        tc.OutCapacity,
			ProductionTarget:   tc.ProductionTarget,
			Area:               tc.Area,
			InitiallyAvailable: tc.InitiallyAvailable,
			Price:              tc.Price,
		}
	}
	tcat, err := NewTypeCatalog(types)
	if err != nil {
		return nil, nil, nil, err
	}

	demand := make(map[TypePair]float64, len(c.Flows))
	for _, f := range c.Flows {
		demand[TypePair{Src: f.Src, Dst: f.Dst}] += f.Qty
	}
	fd, err := NewFlowDemand(demand, tcat)
	if err != nil {
		return nil, nil, nil, err
	}

	return layout, tcat, fd, nil
}
