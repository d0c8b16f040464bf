package security

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxUploadsPerMinute is the per-actor admission ceiling inside the
// sliding window.
const DefaultMaxUploadsPerMinute = 10

// DefaultRateWindow is the trailing window the limiter looks back over.
const DefaultRateWindow = time.Minute

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter is the admission-control contract the relay consumes. The
// in-memory sliding window below is the single-instance default; a
// deployment spanning several processes can swap in an implementation
// backed by a shared store without touching the gate.
type Limiter interface {
	Allow(ctx context.Context, actor string) (Decision, error)
}

// SlidingWindow keeps per-actor attempt timestamps and admits at most
// limit attempts per trailing window. Check-then-record is one critical
// section so concurrent requests cannot both pass a check only one should.
type SlidingWindow struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	attempts map[string][]time.Time
}

func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	if limit <= 0 {
		limit = DefaultMaxUploadsPerMinute
	}
	if window <= 0 {
		window = DefaultRateWindow
	}
	return &SlidingWindow{
		limit:    limit,
		window:   window,
		now:      time.Now,
		attempts: make(map[string][]time.Time),
	}
}

func (s *SlidingWindow) Allow(ctx context.Context, actor string) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	windowStart := now.Add(-s.window)

	// Prune lazily: entries at or before the window edge are dead.
	live := s.attempts[actor][:0]
	for _, t := range s.attempts[actor] {
		if t.After(windowStart) {
			live = append(live, t)
		}
	}

	d := Decision{Limit: s.limit, ResetAt: now.Add(s.window)}
	if len(live) > 0 {
		d.ResetAt = live[0].Add(s.window)
	}

	if len(live) >= s.limit {
		// Rejected attempts are not recorded.
		s.attempts[actor] = live
		return d, nil
	}

	live = append(live, now)
	s.attempts[actor] = live
	d.Allowed = true
	d.Remaining = s.limit - len(live)
	return d, nil
}
