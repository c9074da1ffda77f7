// Package heatmap lays out and renders deviation heatmaps.
package heatmap

import (
	"fmt"
	"math"
	"strconv"

	"github.com/kiranshivaraju/slabscan/pkg/models"
)

// RGBA is a colour with 8-bit channels and a fractional alpha in [0, 1].
type RGBA struct {
	R, G, B uint8
	A       float64
}

var (
	// Good is the flat band (Tailwind green-500).
	Good = RGBA{R: 34, G: 197, B: 94, A: 1}
	// High is the base colour of high spots (red-500).
	High = RGBA{R: 239, G: 68, B: 68, A: 1}
	// Low is the base colour of low spots (blue-500).
	Low = RGBA{R: 59, G: 130, B: 246, A: 1}
)

const (
	fullScaleMM = 10.0
	alphaFloor  = 0.2
)

// ColorFor maps a deviation to its cell colour. Within ±2 mm the cell is
// solid green; outside it the red or blue alpha grows with |z| up to 10 mm.
func ColorFor(z float64) RGBA {
	if math.Abs(z) < models.GoodBandMM {
		return Good
	}
	base := Low
	if z > 0 {
		base = High
	}
	base.A = alphaFor(math.Abs(z))
	return base
}

func alphaFor(absZ float64) float64 {
	intensity := math.Min(255, math.Floor(absZ/fullScaleMM*255))
	return math.Min(1, intensity/255+alphaFloor)
}

// CSS renders the colour as a CSS rgba() value.
func (c RGBA) CSS() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// Hex renders the opaque base colour as #rrggbb.
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGBA implements color.Color with alpha-premultiplied channels.
func (c RGBA) RGBA() (r, g, b, a uint32) {
	a = uint32(math.Round(c.A * 0xffff))
	r = uint32(c.R) * 0x101 * a / 0xffff
	g = uint32(c.G) * 0x101 * a / 0xffff
	b = uint32(c.B) * 0x101 * a / 0xffff
	return r, g, b, a
}
