// Package scan simulates a LiDAR capture of a slab surface.
package scan

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/kiranshivaraju/slabscan/pkg/models"
)

const (
	terrainFrequency = 0.3
	terrainAmplitude = 5.0
	noiseSpan        = 4.0
)

// Generate returns gridSize² synthetic samples in row-major order.
// The deviation is a smooth sin·cos terrain plus uniform noise in [-2, 2) mm.
func Generate(gridSize int, rng *rand.Rand) ([]models.ScanPoint, error) {
	if gridSize <= 0 {
		return nil, fmt.Errorf("%w: grid size must be positive, got %d", models.ErrInvalidInput, gridSize)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	points := make([]models.ScanPoint, 0, gridSize*gridSize)
	for y := 0; y < gridSize; y++ {
		for x := 0; x < gridSize; x++ {
			terrain := math.Sin(float64(x)*terrainFrequency) * math.Cos(float64(y)*terrainFrequency) * terrainAmplitude
			noise := (rng.Float64() - 0.5) * noiseSpan
			points = append(points, models.ScanPoint{
				X:         x,
				Y:         y,
				Z:         terrain + noise,
				Intensity: rng.Float64(),
			})
		}
	}
	return points, nil
}

// NewSeededRand returns a deterministic source for reproducible scans.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
