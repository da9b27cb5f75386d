// Package viewer drives one story viewing session: an ordered queue the
// scheduler advances through on a tick source, pausable by a composable set
// of suspension reasons. Advancing past the last entry closes the session;
// it never wraps back to the start.
package viewer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultDuration is how long a static story plays. Video entries keep the
// default until their real duration is discovered from metadata.
const DefaultDuration = 5 * time.Second

// Reason is one cause of suspension. The session plays iff no reason is
// held; each overlay releases only its own reason, so dismissing one cannot
// resume playback while another is still open.
type Reason int

const (
	ReasonUserHold Reason = iota
	ReasonOverlayOpen
	ReasonInputFocused
)

// Entry is one story in the playback queue.
type Entry struct {
	StoryID int64
	Video   bool
}

// Session is the per-viewing-session state machine. All methods are safe
// for concurrent use, though the intended model is a single tick source.
type Session struct {
	id string

	mu        sync.Mutex
	entries   []Entry
	durations map[int64]time.Duration
	index     int
	elapsed   time.Duration
	reasons   map[Reason]struct{}
	closed    bool

	// gen identifies the timer that currently owns advancement. Starting a
	// ticker or switching index bumps it, so a stale tick can never cause
	// a duplicate advance.
	gen    int
	cancel context.CancelFunc

	// OnClose fires once when the session exits. Optional.
	OnClose func()
}

// NewSession builds a session over the owner's story queue starting at
// index start. Panics are avoided: an out-of-range start clamps to 0.
func NewSession(entries []Entry, start int) *Session {
	if start < 0 || start >= len(entries) {
		start = 0
	}
	return &Session{
		id:        uuid.NewString(),
		entries:   append([]Entry(nil), entries...),
		durations: make(map[int64]time.Duration),
		index:     start,
		reasons:   make(map[Reason]struct{}),
		closed:    len(entries) == 0,
	}
}

func (s *Session) ID() string { return s.id }

// Index returns the current queue position.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Closed reports whether the session has exited.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Playing reports whether the reason set is empty and the session is open.
func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && len(s.reasons) == 0
}

// Suspend adds one reason to the suspension set.
func (s *Session) Suspend(r Reason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reasons[r] = struct{}{}
}

// Resume releases one reason. Playback continues only once every held
// reason has been released.
func (s *Session) Resume(r Reason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reasons, r)
}

// SetDuration records the discovered duration for one story (video
// metadata load). Other entries keep the default.
func (s *Session) SetDuration(storyID int64, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d > 0 {
		s.durations[storyID] = d
	}
}

// SetIndex jumps to a queue position and resets the elapsed accumulator.
// The generation bump orphans any tick already in flight.
func (s *Session) SetIndex(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || i < 0 || i >= len(s.entries) {
		return
	}
	s.index = i
	s.elapsed = 0
	s.gen++
}

// Next advances by exactly one entry, exiting the session at the end.
func (s *Session) Next() {
	s.mu.Lock()
	closed := s.advanceLocked()
	s.mu.Unlock()
	if closed {
		s.fireClose()
	}
}

// Prev steps back one entry, clamping at the start.
func (s *Session) Prev() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.index > 0 {
		s.index--
	}
	s.elapsed = 0
	s.gen++
}

// Tick accumulates elapsed playback time and advances at most one entry
// when the current duration is reached. Ticks while suspended or closed
// are ignored.
func (s *Session) Tick(delta time.Duration) {
	s.mu.Lock()
	closed := s.tickLocked(s.gen, delta)
	s.mu.Unlock()
	if closed {
		s.fireClose()
	}
}

// Start owns advancement on a real ticker until the context ends or the
// session closes. Any previously started ticker is cancelled first: only
// one timer may drive the session at a time.
func (s *Session) Start(ctx context.Context, interval time.Duration) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				closed := s.tickLocked(gen, interval)
				// Exit once closed or orphaned by a newer timer.
				done := closed || s.closed || gen != s.gen
				s.mu.Unlock()
				if closed {
					s.fireClose()
				}
				if done {
					return
				}
			}
		}
	}()
}

// Close exits the session and releases the timer. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	wasClosed := s.closed
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	if !wasClosed {
		s.fireClose()
	}
}

// tickLocked applies one tick from the timer generation gen. Returns true
// when this tick closed the session.
func (s *Session) tickLocked(gen int, delta time.Duration) bool {
	if s.closed || gen != s.gen || len(s.reasons) > 0 {
		return false
	}
	s.elapsed += delta
	if s.elapsed < s.durationLocked() {
		return false
	}
	return s.advanceLocked()
}

func (s *Session) durationLocked() time.Duration {
	if s.index < len(s.entries) {
		if d, ok := s.durations[s.entries[s.index].StoryID]; ok {
			return d
		}
	}
	return DefaultDuration
}

// advanceLocked moves forward exactly one entry. At the last entry the
// session exits instead of wrapping. Returns true when it closed.
func (s *Session) advanceLocked() bool {
	if s.closed {
		return false
	}
	s.elapsed = 0
	if s.index+1 >= len(s.entries) {
		s.closed = true
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
		return true
	}
	s.index++
	return false
}

func (s *Session) fireClose() {
	if s.OnClose != nil {
		s.OnClose()
	}
}
