package metrics_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/kiranshivaraju/slabscan/internal/metrics"
	"github.com/kiranshivaraju/slabscan/internal/scan"
	"github.com/kiranshivaraju/slabscan/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var captured = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestAggregate_KnownValues(t *testing.T) {
	points := []models.ScanPoint{
		{X: 0, Y: 0, Z: 1},
		{X: 1, Y: 0, Z: -3},
		{X: 0, Y: 1, Z: 4},
		{X: 1, Y: 1, Z: 0},
	}

	got, err := metrics.Aggregate(points, captured)
	require.NoError(t, err)

	want := models.AnalysisMetrics{
		AverageDeviation: 2,
		MaxDeviation:     4,
		MinDeviation:     -3,
		FlatnessScore:    90,
		Timestamp:        captured,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Aggregate mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	_, err := metrics.Aggregate(nil, captured)
	require.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestAggregate_ScoreClampedAtZero(t *testing.T) {
	points := []models.ScanPoint{{Z: 40}, {Z: -30}, {Z: 25}, {Z: -50}}

	got, err := metrics.Aggregate(points, captured)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.FlatnessScore)
	assert.Equal(t, 36.25, got.AverageDeviation)
}

func TestAggregate_GeneratedScansStayInRange(t *testing.T) {
	for seed := uint64(0); seed < 25; seed++ {
		points, err := scan.Generate(20, scan.NewSeededRand(seed))
		require.NoError(t, err)

		m, err := metrics.Aggregate(points, captured)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, m.AverageDeviation, 0.0)
		assert.GreaterOrEqual(t, m.FlatnessScore, 0.0)
		assert.LessOrEqual(t, m.FlatnessScore, 100.0)
		assert.LessOrEqual(t, m.MinDeviation, m.MaxDeviation)
		assert.LessOrEqual(t, m.AverageDeviation, max(m.MaxDeviation, -m.MinDeviation))
	}
}

func TestFlatnessScore(t *testing.T) {
	assert.Equal(t, 100.0, metrics.FlatnessScore(0))
	assert.InDelta(t, 84.0, metrics.FlatnessScore(3.2), 1e-9)
	assert.Equal(t, 0.0, metrics.FlatnessScore(20))
	assert.Equal(t, 0.0, metrics.FlatnessScore(35))
}
