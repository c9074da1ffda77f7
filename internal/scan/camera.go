package scan

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Facing selects which device camera to open.
type Facing string

const (
	FacingEnvironment Facing = "environment"
	FacingUser        Facing = "user"
)

// Track is one media track of a camera stream.
type Track interface {
	Stop()
}

// Stream is a live preview stream. Frames are never read by the service.
type Stream interface {
	ID() string
	Tracks() []Track
}

// Camera opens preview streams on the host device.
type Camera interface {
	Open(ctx context.Context, facing Facing) (Stream, error)
}

// Lease holds an acquired stream until Release is called.
// Release stops every track exactly once, however many times it is called.
type Lease struct {
	stream Stream
	once   sync.Once
}

// Acquire opens a rear-facing stream on cam.
func Acquire(ctx context.Context, cam Camera) (*Lease, error) {
	stream, err := cam.Open(ctx, FacingEnvironment)
	if err != nil {
		return nil, err
	}
	return &Lease{stream: stream}, nil
}

// StreamID returns the identifier of the leased stream.
func (l *Lease) StreamID() string {
	return l.stream.ID()
}

// Release stops all tracks of the stream.
func (l *Lease) Release() {
	l.once.Do(func() {
		for _, t := range l.stream.Tracks() {
			t.Stop()
		}
	})
}

// SimulatedCamera stands in for the device camera. When Denied is set every
// Open fails as if the user refused the permission prompt.
type SimulatedCamera struct {
	Denied bool
}

func (c *SimulatedCamera) Open(ctx context.Context, _ Facing) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.Denied {
		return nil, ErrPermissionDenied
	}
	return &SimulatedStream{id: uuid.NewString(), tracks: []*SimulatedTrack{{}}}, nil
}

// SimulatedStream is the stream handed out by SimulatedCamera.
type SimulatedStream struct {
	id     string
	tracks []*SimulatedTrack
}

func (s *SimulatedStream) ID() string { return s.id }

func (s *SimulatedStream) Tracks() []Track {
	out := make([]Track, len(s.tracks))
	for i, t := range s.tracks {
		out[i] = t
	}
	return out
}

// SimulatedTrack counts how often it was stopped.
type SimulatedTrack struct {
	mu    sync.Mutex
	stops int
}

func (t *SimulatedTrack) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stops++
}

// Stops returns the number of Stop calls.
func (t *SimulatedTrack) Stops() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stops
}

var _ Camera = (*SimulatedCamera)(nil)
