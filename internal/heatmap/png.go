package heatmap

import (
	"fmt"
	"image/color"
	"io"

	"github.com/kiranshivaraju/slabscan/pkg/models"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// pngDPI makes one vg pixel equal one image pixel, so a W×H heatmap
// encodes to a W×H image.
const pngDPI = 96

var background = color.RGBA{R: 15, G: 23, B: 42, A: 255}

// RenderPNG draws the heatmap and its legend as a PNG image of hm.Width×hm.Height pixels.
func RenderPNG(w io.Writer, hm Heatmap) error {
	if hm.GridSize == 0 || len(hm.Cells) == 0 {
		return fmt.Errorf("%w: empty heatmap", models.ErrInvalidInput)
	}

	p := plot.New()
	p.HideAxes()
	p.BackgroundColor = background
	p.Add(cellGrid{hm: hm})

	for _, e := range []struct {
		label string
		c     RGBA
	}{
		{Legend[0].Label, High},
		{Legend[1].Label, Good},
		{Legend[2].Label, Low},
	} {
		p.Legend.Add(e.label, swatch{c: e.c})
	}
	p.Legend.Top = false
	p.Legend.Left = false
	p.Legend.XOffs = -vg.Points(4)
	p.Legend.YOffs = vg.Points(4)
	p.Legend.TextStyle.Color = color.White

	width := vg.Length(hm.Width) * vg.Inch / pngDPI
	height := vg.Length(hm.Height) * vg.Inch / pngDPI
	c := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(pngDPI))
	p.Draw(draw.New(c))

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("encode heatmap png: %w", err)
	}
	return nil
}

// cellGrid is a plot.Plotter that fills one square per cell, row 0 at the top.
type cellGrid struct {
	hm Heatmap
}

func (g cellGrid) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	k := g.hm.GridSize
	for _, cell := range g.hm.Cells {
		x0, x1 := trX(float64(cell.Col)), trX(float64(cell.Col+1))
		y0, y1 := trY(float64(k-cell.Row-1)), trY(float64(k-cell.Row))
		c.FillPolygon(cell.Color, []vg.Point{
			{X: x0, Y: y0},
			{X: x1, Y: y0},
			{X: x1, Y: y1},
			{X: x0, Y: y1},
		})
	}
}

func (g cellGrid) DataRange() (xmin, xmax, ymin, ymax float64) {
	k := float64(g.hm.GridSize)
	return 0, k, 0, k
}

// swatch draws a solid legend thumbnail.
type swatch struct {
	c RGBA
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.c, c.ClipPolygonY(pts))
}

var (
	_ plot.Plotter     = cellGrid{}
	_ plot.DataRanger  = cellGrid{}
	_ plot.Thumbnailer = swatch{}
)
