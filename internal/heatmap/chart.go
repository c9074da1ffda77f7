package heatmap

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/kiranshivaraju/slabscan/internal/analysis"
	"github.com/kiranshivaraju/slabscan/pkg/models"
)

// RenderHTML writes an interactive chart page of the heatmap, one series per band.
func RenderHTML(w io.Writer, hm Heatmap, title string) error {
	if hm.GridSize == 0 || len(hm.Cells) == 0 {
		return fmt.Errorf("%w: empty heatmap", models.ErrInvalidInput)
	}

	k := hm.GridSize
	bands := map[string][]opts.ScatterData{}
	for _, c := range hm.Cells {
		band := analysis.Classify(c.Z)
		bands[band] = append(bands[band], opts.ScatterData{
			Name:  c.Title,
			Value: []interface{}{c.Col, k - 1 - c.Row, math.Round(c.Z*10) / 10},
		})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Theme:     "dark",
			Width:     fmt.Sprintf("%dpx", hm.Width+160),
			Height:    fmt.Sprintf("%dpx", hm.Height+160),
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("grid=%dx%d cells", k, k)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -1, Max: k, Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -1, Max: k, Name: "Y", NameLocation: "middle", NameGap: 30}),
	)

	series := []struct {
		band  string
		label string
		color RGBA
	}{
		{analysis.BandHigh, Legend[0].Label, High},
		{analysis.BandGood, Legend[1].Label, Good},
		{analysis.BandLow, Legend[2].Label, Low},
	}
	for _, s := range series {
		scatter.AddSeries(s.label, bands[s.band],
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.color.Hex()}),
		)
	}

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("render heatmap chart: %w", err)
	}
	return nil
}
