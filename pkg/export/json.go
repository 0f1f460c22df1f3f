package export

import (
	"encoding/json"
	"os"

	"github.com/dshills/fapsolve/pkg/arrangement"
)

// Snapshot is a flattened, JSON-friendly view of an Arrangement, built
// entirely through its public read API (Arrangement itself carries no json
// tags, since its internal maps are keyed by value types unsuited to JSON
// object keys).
type Snapshot struct {
	Points []PointSnapshot `json:"points"`
	Flows  []FlowSnapshot  `json:"flows"`
}

// PointSnapshot is one layout point's occupancy and production.
type PointSnapshot struct {
	Name          string             `json:"name"`
	Capacity      float64            `json:"capacity"`
	RemainingArea float64            `json:"remaining_area"`
	Counts        map[string]uint64  `json:"counts"`
	Produced      map[string]float64 `json:"produced,omitempty"`
}

// FlowSnapshot is one recorded (src_type, dst_type, from, to) flow entry.
type FlowSnapshot struct {
	SrcType string  `json:"src_type"`
	DstType string  `json:"dst_type"`
	From    string  `json:"from"`
	To      string  `json:"to"`
	Flow    float64 `json:"flow"`
}

// BuildSnapshot reads arr through its public API into a Snapshot.
func BuildSnapshot(arr *arrangement.Arrangement) Snapshot {
	cat := arr.Catalog()
	layout := arr.Layout()

	snap := Snapshot{}
	for _, name := range layout.Names() {
		pt, _ := layout.Point(name)
		ps := PointSnapshot{
			Name:          name,
			Capacity:      pt.Capacity,
			RemainingArea: arr.RemainingArea(name),
			Counts:        make(map[string]uint64),
			Produced:      make(map[string]float64),
		}
		for _, typ := range cat.Names() {
			if n := arr.Count(name, typ); n > 0 {
				ps.Counts[typ] = n
			}
			if p := arr.Produced(name, typ); p != 0 {
				ps.Produced[typ] = p
			}
		}
		if len(ps.Produced) == 0 {
			ps.Produced = nil
		}
		snap.Points = append(snap.Points, ps)
	}

	for _, e := range arr.AllFlows() {
		snap.Flows = append(snap.Flows, FlowSnapshot{
			SrcType: e.Pair.Src,
			DstType: e.Pair.Dst,
			From:    e.From,
			To:      e.To,
			Flow:    e.Flow,
		})
	}

	return snap
}

// ExportJSON serializes arr's snapshot to JSON with indentation.
func ExportJSON(arr *arrangement.Arrangement) ([]byte, error) {
	return json.MarshalIndent(BuildSnapshot(arr), "", "  ")
}

// ExportJSONCompact serializes arr's snapshot to JSON without indentation.
func ExportJSONCompact(arr *arrangement.Arrangement) ([]byte, error) {
	return json.Marshal(BuildSnapshot(arr))
}

// SaveJSONToFile exports arr to a JSON file with indentation.
func SaveJSONToFile(arr *arrangement.Arrangement, filepath string) error {
	data, err := ExportJSON(arr)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, data, 0644)
}

// SaveJSONCompactToFile exports arr to a compact JSON file.
func SaveJSONCompactToFile(arr *arrangement.Arrangement, filepath string) error {
	data, err := ExportJSONCompact(arr)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, data, 0644)
}
