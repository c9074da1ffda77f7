package app

import "sync"

// Session owns the current State. Subscribers receive the latest state after
// each change; a slow subscriber skips intermediate states rather than blocking.
type Session struct {
	mu     sync.Mutex
	state  State
	subs   map[int]chan State
	nextID int
}

// NewSession creates a Session starting at initial.
func NewSession(initial State) *Session {
	return &Session{state: initial, subs: make(map[int]chan State)}
}

// Dispatch applies a and returns the resulting state.
func (s *Session) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Reduce(s.state, a)
	if next.Version == s.state.Version {
		return next
	}
	s.state = next
	for _, ch := range s.subs {
		offer(ch, next)
	}
	return next
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe returns a channel that immediately holds the current state and then
// the latest state after each change. Call cancel to stop; it closes the channel.
func (s *Session) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan State, 1)
	ch <- s.state
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// offer replaces any undelivered state in ch with st. Callers hold the session
// lock, so ch has a single sender.
func offer(ch chan State, st State) {
	select {
	case ch <- st:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- st
}
