// Package analysis locates the areas of a slab that need remedial work.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/slabscan/pkg/models"
)

// Bands a single deviation can fall into.
const (
	BandGood = "good"
	BandHigh = "high"
	BandLow  = "low"
)

// Classify maps a deviation to its heatmap band.
func Classify(z float64) string {
	switch {
	case math.Abs(z) < models.GoodBandMM:
		return BandGood
	case z > 0:
		return BandHigh
	default:
		return BandLow
	}
}

// OutOfTolerance reports whether z exceeds the standard ±5 mm tolerance.
func OutOfTolerance(z float64) bool {
	return math.Abs(z) > models.ToleranceMM
}

// GridSize returns √n when n is a non-zero perfect square.
func GridSize(n int) (int, error) {
	if n == 0 {
		return 0, fmt.Errorf("%w: no scan points", models.ErrInvalidInput)
	}
	k := int(math.Sqrt(float64(n)))
	for k*k > n {
		k--
	}
	for (k+1)*(k+1) <= n {
		k++
	}
	if k*k != n {
		return 0, fmt.Errorf("%w: %d points do not form a square grid", models.ErrInvalidInput, n)
	}
	return k, nil
}

// FindRegions groups 4-connected cells of the same non-good band into regions.
// Points must be a row-major square grid. Returns regions sorted by
// (Cells DESC, |PeakDeviation| DESC); never nil.
func FindRegions(points []models.ScanPoint) ([]models.DeviationRegion, error) {
	k, err := GridSize(len(points))
	if err != nil {
		return nil, err
	}

	visited := make([]bool, len(points))
	regions := []models.DeviationRegion{}

	for start := range points {
		if visited[start] {
			continue
		}
		band := Classify(points[start].Z)
		if band == BandGood {
			visited[start] = true
			continue
		}

		region := models.DeviationRegion{
			ID:     uuid.New(),
			Kind:   band,
			Bounds: models.Bounds{MinX: k, MinY: k, MaxX: -1, MaxY: -1},
		}
		var sum float64

		queue := []int{start}
		visited[start] = true
		for len(queue) > 0 {
			idx := queue[0]
			queue = queue[1:]

			x, y := idx%k, idx/k
			z := points[idx].Z
			region.Cells++
			sum += z
			if math.Abs(z) > math.Abs(region.PeakDeviation) {
				region.PeakDeviation = z
			}
			region.Bounds.MinX = min(region.Bounds.MinX, x)
			region.Bounds.MinY = min(region.Bounds.MinY, y)
			region.Bounds.MaxX = max(region.Bounds.MaxX, x)
			region.Bounds.MaxY = max(region.Bounds.MaxY, y)

			for _, n := range neighbours(x, y, k) {
				if visited[n] || Classify(points[n].Z) != band {
					continue
				}
				visited[n] = true
				queue = append(queue, n)
			}
		}
		region.MeanDeviation = sum / float64(region.Cells)
		regions = append(regions, region)
	}

	sort.SliceStable(regions, func(i, j int) bool {
		if regions[i].Cells != regions[j].Cells {
			return regions[i].Cells > regions[j].Cells
		}
		return math.Abs(regions[i].PeakDeviation) > math.Abs(regions[j].PeakDeviation)
	})

	return regions, nil
}

func neighbours(x, y, k int) []int {
	out := make([]int, 0, 4)
	if x > 0 {
		out = append(out, y*k+x-1)
	}
	if x < k-1 {
		out = append(out, y*k+x+1)
	}
	if y > 0 {
		out = append(out, (y-1)*k+x)
	}
	if y < k-1 {
		out = append(out, (y+1)*k+x)
	}
	return out
}
