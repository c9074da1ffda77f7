package heatmap

import (
	"fmt"

	"github.com/kiranshivaraju/slabscan/internal/analysis"
	"github.com/kiranshivaraju/slabscan/pkg/models"
)

// Cell is one coloured square of the heatmap.
type Cell struct {
	Row   int     `json:"row"`
	Col   int     `json:"col"`
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Z     float64 `json:"z"`
	Color RGBA    `json:"-"`
	CSS   string  `json:"color"`
	Title string  `json:"title"`
}

// LegendEntry explains one colour band.
type LegendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Heatmap is the pixel layout of a square deviation grid.
type Heatmap struct {
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	GridSize   int           `json:"grid_size"`
	CellWidth  int           `json:"cell_width"`
	CellHeight int           `json:"cell_height"`
	Cells      []Cell        `json:"cells"`
	Legend     []LegendEntry `json:"legend"`
}

// Legend lists the bands in display order.
var Legend = []LegendEntry{
	{Label: "> +2mm (High)", Color: High.Hex()},
	{Label: "±2mm (Good)", Color: Good.Hex()},
	{Label: "< -2mm (Low)", Color: Low.Hex()},
}

// Layout arranges points on a gridSize×gridSize grid inside width×height pixels.
// The point count must be a non-zero perfect square; cells keep input order.
func Layout(points []models.ScanPoint, width, height int) (Heatmap, error) {
	if width <= 0 || height <= 0 {
		return Heatmap{}, fmt.Errorf("%w: heatmap size must be positive, got %dx%d", models.ErrInvalidInput, width, height)
	}
	k, err := analysis.GridSize(len(points))
	if err != nil {
		return Heatmap{}, err
	}

	cw, ch := width/k, height/k
	if cw == 0 || ch == 0 {
		return Heatmap{}, fmt.Errorf("%w: %dx%d pixels cannot hold a %d-cell grid", models.ErrInvalidInput, width, height, k)
	}

	cells := make([]Cell, len(points))
	for i, p := range points {
		row, col := i/k, i%k
		c := ColorFor(p.Z)
		cells[i] = Cell{
			Row:   row,
			Col:   col,
			X:     col * cw,
			Y:     row * ch,
			Z:     p.Z,
			Color: c,
			CSS:   c.CSS(),
			Title: fmt.Sprintf("Deviation: %.1fmm", p.Z),
		}
	}

	legend := make([]LegendEntry, len(Legend))
	copy(legend, Legend)

	return Heatmap{
		Width:      width,
		Height:     height,
		GridSize:   k,
		CellWidth:  cw,
		CellHeight: ch,
		Cells:      cells,
		Legend:     legend,
	}, nil
}
