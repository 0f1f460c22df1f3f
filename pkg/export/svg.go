// Package export renders a solved Arrangement to disk: an SVG plan view
// (grounded on the teacher's pkg/export/svg.go force-directed-lite circular
// layout) and a JSON dump for external tooling.
package export

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"sort"

	svg "github.com/ajstarks/svgo"

	"github.com/dshills/fapsolve/pkg/arrangement"
)

// SVGOptions configures SVG visualization export.
type SVGOptions struct {
	Width       int    // Canvas width in pixels
	Height      int    // Canvas height in pixels
	ShowLabels  bool   // Show point name and occupancy labels
	ShowLegend  bool   // Show legend explaining type colors
	ShowStats   bool   // Show arrangement statistics
	NodeRadius  int    // Base radius of point nodes (default: 20)
	EdgeWidth   int    // Max width of flow lines (default: 4)
	Margin      int    // Canvas margin in pixels (default: 60)
	Title       string // Optional title for the visualization
}

// DefaultSVGOptions returns sensible default SVG export options.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:      1200,
		Height:     900,
		ShowLabels: true,
		ShowLegend: true,
		ShowStats:  true,
		NodeRadius: 20,
		EdgeWidth:  4,
		Margin:     60,
		Title:      "Facility Arrangement",
	}
}

// ExportSVG renders arr's points (sized by area capacity, shaded by
// occupancy) and flows (line width proportional to flow volume) to SVG.
func ExportSVG(arr *arrangement.Arrangement, opts SVGOptions) ([]byte, error) {
	if arr == nil {
		return nil, fmt.Errorf("export: arrangement cannot be nil")
	}

	if opts.Width <= 0 {
		opts.Width = 1200
	}
	if opts.Height <= 0 {
		opts.Height = 900
	}
	if opts.NodeRadius <= 0 {
		opts.NodeRadius = 20
	}
	if opts.EdgeWidth <= 0 {
		opts.EdgeWidth = 4
	}
	if opts.Margin <= 0 {
		opts.Margin = 60
	}

	buf := new(bytes.Buffer)
	canvas := svg.New(buf)
	canvas.Start(opts.Width, opts.Height)
	canvas.Rect(0, 0, opts.Width, opts.Height, "fill:#1a1a2e")

	positions := calculateLayout(arr, opts)
	colors := assignTypeColors(arr.Catalog().Names())

	drawFlows(canvas, arr, positions, opts)
	drawPoints(canvas, arr, positions, colors, opts)
	if opts.ShowLabels {
		drawPointLabels(canvas, arr, positions, opts)
	}
	if opts.ShowLegend {
		drawLegend(canvas, colors, opts)
	}
	if opts.Title != "" || opts.ShowStats {
		drawHeader(canvas, arr, opts)
	}

	canvas.End()
	return buf.Bytes(), nil
}

// SaveSVGToFile generates an SVG visualization and saves it to a file.
func SaveSVGToFile(arr *arrangement.Arrangement, filepath string, opts SVGOptions) error {
	data, err := ExportSVG(arr, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, data, 0644)
}

type position struct {
	X, Y float64
}

// calculateLayout places every layout point on a circle, the same
// dependency-free placeholder the teacher used before a real force-directed
// pass; a facility's point coordinates are already meaningful (unlike a
// dungeon graph's rooms), so this is for rendering only — it ignores
// geometry.Point's own X/Y so overlapping real coordinates don't collapse
// the drawing.
func calculateLayout(arr *arrangement.Arrangement, opts SVGOptions) map[string]position {
	positions := make(map[string]position)
	names := arr.Layout().Names()
	if len(names) == 0 {
		return positions
	}

	drawWidth := float64(opts.Width - 2*opts.Margin - 2*opts.NodeRadius)
	drawHeight := float64(opts.Height - 2*opts.Margin - 2*opts.NodeRadius - 100)

	centerX := float64(opts.Width) / 2
	centerY := float64(opts.Height-100) / 2
	radius := math.Min(drawWidth, drawHeight) / 2.5

	angleStep := 2 * math.Pi / float64(len(names))
	for i, name := range names {
		angle := float64(i) * angleStep
		positions[name] = position{
			X: centerX + radius*math.Cos(angle),
			Y: centerY + radius*math.Sin(angle),
		}
	}
	return positions
}

var palette = []string{
	"#48bb78", "#f56565", "#ffd700", "#9f7aea", "#4299e1",
	"#ed8936", "#38b2ac", "#ecc94b", "#805ad5", "#718096",
}

// assignTypeColors gives each type name a stable color from palette, in
// sorted-name order so the same catalog always maps the same way.
func assignTypeColors(typeNames []string) map[string]string {
	out := make(map[string]string, len(typeNames))
	names := append([]string(nil), typeNames...)
	sort.Strings(names)
	for i, name := range names {
		out[name] = palette[i%len(palette)]
	}
	return out
}

// drawFlows renders every recorded flow as a line between its two points,
// width scaled by volume relative to the largest flow in the arrangement.
func drawFlows(canvas *svg.SVG, arr *arrangement.Arrangement, positions map[string]position, opts SVGOptions) {
	entries := arr.AllFlows()
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].From != entries[j].From {
			return entries[i].From < entries[j].From
		}
		if entries[i].To != entries[j].To {
			return entries[i].To < entries[j].To
		}
		return entries[i].Pair.Src < entries[j].Pair.Src
	})

	var maxFlow float64
	for _, e := range entries {
		if e.Flow > maxFlow {
			maxFlow = e.Flow
		}
	}
	if maxFlow == 0 {
		return
	}

	for _, e := range entries {
		from, fromOK := positions[e.From]
		to, toOK := positions[e.To]
		if !fromOK || !toOK || e.From == e.To {
			continue
		}
		width := 1 + int(float64(opts.EdgeWidth-1)*e.Flow/maxFlow)
		canvas.Line(
			int(from.X), int(from.Y), int(to.X), int(to.Y),
			fmt.Sprintf("stroke:#4299e1;stroke-width:%d;opacity:0.6", width),
		)
		drawArrow(canvas, from, to, "#4299e1")
	}
}

func drawArrow(canvas *svg.SVG, from, to position, color string) {
	midX := (from.X + to.X) / 2
	midY := (from.Y + to.Y) / 2
	dx := to.X - from.X
	dy := to.Y - from.Y
	angle := math.Atan2(dy, dx)

	const arrowSize = 8.0
	tip := position{X: midX + arrowSize*math.Cos(angle), Y: midY + arrowSize*math.Sin(angle)}
	left := position{X: midX + arrowSize*math.Cos(angle+2.8), Y: midY + arrowSize*math.Sin(angle+2.8)}
	right := position{X: midX + arrowSize*math.Cos(angle-2.8), Y: midY + arrowSize*math.Sin(angle-2.8)}

	xs := []int{int(tip.X), int(left.X), int(right.X)}
	ys := []int{int(tip.Y), int(left.Y), int(right.Y)}
	canvas.Polygon(xs, ys, fmt.Sprintf("fill:%s", color))
}

// drawPoints renders every layout point as a circle sized by area capacity
// and shaded by its dominant occupying type (the type with the most area
// used at that point).
func drawPoints(canvas *svg.SVG, arr *arrangement.Arrangement, positions map[string]position, colors map[string]string, opts SVGOptions) {
	for _, name := range arr.Layout().Names() {
		pos, ok := positions[name]
		if !ok {
			continue
		}
		pt, _ := arr.Layout().Point(name)
		radius := nodeRadius(pt.Capacity, opts.NodeRadius)

		color := dominantTypeColor(arr, name, colors)
		canvas.Circle(int(pos.X), int(pos.Y), radius,
			fmt.Sprintf("fill:%s;stroke:#fff;stroke-width:2;opacity:0.9", color))

		used := pt.Capacity - arr.RemainingArea(name)
		if pt.Capacity > 0 {
			fill := used / pt.Capacity
			inner := int(float64(radius) * math.Min(fill, 1))
			if inner > 0 {
				canvas.Circle(int(pos.X), int(pos.Y), inner,
					"fill:#1a1a2e;opacity:0.35")
			}
		}
	}
}

func nodeRadius(capacity float64, base int) int {
	scale := 1 + math.Log1p(capacity)/6
	return int(float64(base) * scale)
}

func dominantTypeColor(arr *arrangement.Arrangement, point string, colors map[string]string) string {
	var (
		best     string
		bestArea float64
	)
	cat := arr.Catalog()
	for _, typ := range cat.Names() {
		rec, _ := cat.Type(typ)
		area := float64(arr.Count(point, typ)) * rec.Area
		if area > bestArea {
			bestArea = area
			best = typ
		}
	}
	if best == "" {
		return "#4a5568"
	}
	return colors[best]
}

func drawPointLabels(canvas *svg.SVG, arr *arrangement.Arrangement, positions map[string]position, opts SVGOptions) {
	for _, name := range arr.Layout().Names() {
		pos, ok := positions[name]
		if !ok {
			continue
		}
		pt, _ := arr.Layout().Point(name)
		radius := nodeRadius(pt.Capacity, opts.NodeRadius)
		labelY := int(pos.Y) + radius + 15

		canvas.Text(int(pos.X), labelY, name,
			"text-anchor:middle;font-size:11px;font-family:monospace;fill:#e2e8f0;font-weight:500")
		canvas.Text(int(pos.X), labelY+14,
			fmt.Sprintf("%d subj", totalSubjectsAt(arr, name)),
			"text-anchor:middle;font-size:10px;font-family:monospace;fill:#a0aec0")
	}
}

func totalSubjectsAt(arr *arrangement.Arrangement, point string) uint64 {
	var total uint64
	for _, typ := range arr.Catalog().Names() {
		total += arr.Count(point, typ)
	}
	return total
}

func drawLegend(canvas *svg.SVG, colors map[string]string, opts SVGOptions) {
	legendX := opts.Width - opts.Margin - 180
	legendY := opts.Margin + 20

	height := 50 + 22*len(colors)
	canvas.Rect(legendX-10, legendY-15, 190, height,
		"fill:#2d3748;stroke:#4a5568;stroke-width:1;opacity:0.95;rx:5")

	canvas.Text(legendX, legendY, "Subject Types", "font-size:14px;font-weight:bold;fill:#e2e8f0")
	legendY += 25

	names := make([]string, 0, len(colors))
	for name := range colors {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		canvas.Circle(legendX+8, legendY, 8, fmt.Sprintf("fill:%s;stroke:#fff;stroke-width:1", colors[name]))
		canvas.Text(legendX+25, legendY+4, name, "font-size:11px;fill:#cbd5e0")
		legendY += 22
	}
}

func drawHeader(canvas *svg.SVG, arr *arrangement.Arrangement, opts SVGOptions) {
	headerY := 25
	if opts.Title != "" {
		canvas.Text(opts.Width/2, headerY, opts.Title,
			"text-anchor:middle;font-size:20px;font-weight:bold;fill:#e2e8f0;font-family:sans-serif")
		headerY += 30
	}

	if opts.ShowStats {
		stats := fmt.Sprintf("Points: %d | Subjects: %d | Flows: %d",
			arr.Layout().Len(), arr.Subjects(), len(arr.AllFlows()))
		canvas.Text(opts.Width/2, headerY, stats,
			"text-anchor:middle;font-size:12px;fill:#a0aec0;font-family:monospace")
	}
}
