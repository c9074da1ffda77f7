package scan

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/slabscan/pkg/models"
)

// DefaultDuration is how long a simulated capture takes.
const DefaultDuration = 2500 * time.Millisecond

// Scanner produces simulated scans.
type Scanner struct {
	gridSize int
	duration time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewScanner creates a Scanner. A nil rng uses a randomly seeded source.
func NewScanner(gridSize int, duration time.Duration, rng *rand.Rand) *Scanner {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Scanner{gridSize: gridSize, duration: duration, rng: rng}
}

// GridSize returns the side length of generated grids.
func (s *Scanner) GridSize() int { return s.gridSize }

// Capture waits for the scan duration, generates a grid, and releases the
// camera lease. The lease is released even when the capture is aborted.
func (s *Scanner) Capture(ctx context.Context, lease *Lease) (*models.Scan, error) {
	if lease != nil {
		defer lease.Release()
	}

	if s.duration > 0 {
		timer := time.NewTimer(s.duration)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("scan aborted: %w", ctx.Err())
		case <-timer.C:
		}
	}

	s.mu.Lock()
	points, err := Generate(s.gridSize, s.rng)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return &models.Scan{
		ID:         uuid.New(),
		GridSize:   s.gridSize,
		Points:     points,
		CapturedAt: time.Now().UTC(),
	}, nil
}
