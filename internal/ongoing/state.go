package ongoing

import (
	"context"
	"sync"
)

// Status of the window's ongoing recording session.
type Status string

const (
	StatusInactive      Status = "inactive"
	StatusRunningActive Status = "running_active"
	StatusRunningPaused Status = "running_paused"
)

// State is per-window shared state for the ongoing session: the
// recording status plus the cancellation handle of the enhancement job
// currently in flight, so a UI cancel action can reach it.
type State struct {
	mu            sync.Mutex
	status        Status
	sessionId     string
	enhanceCancel context.CancelFunc
	enhanceGen    uint64
	subs          map[int]func(prev, curr Status)
	nextSub       int
}

func NewState() *State {
	return &State{
		status: StatusInactive,
		subs:   make(map[int]func(prev, curr Status)),
	}
}

func (s *State) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetStatus transitions the status and notifies subscribers
// synchronously with the previous and current values. Setting the same
// status again still notifies; edge detection is the subscriber's job.
func (s *State) SetStatus(status Status) {
	s.mu.Lock()
	prev := s.status
	s.status = status
	subs := make([]func(prev, curr Status), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(prev, status)
	}
}

// Subscribe registers a status-transition listener. The returned func
// unsubscribes.
func (s *State) Subscribe(fn func(prev, curr Status)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// SetSessionId records which session the ongoing recording targets.
func (s *State) SetSessionId(id string) {
	s.mu.Lock()
	s.sessionId = id
	s.mu.Unlock()
}

func (s *State) SessionId() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionId
}

// SetEnhanceCancel records the cancellation handle of the live
// enhancement job. The returned func clears the handle, but only while
// it is still the registered one: a superseded job clearing on unwind
// must not drop the handle its successor installed.
func (s *State) SetEnhanceCancel(cancel context.CancelFunc) func() {
	s.mu.Lock()
	s.enhanceGen++
	gen := s.enhanceGen
	s.enhanceCancel = cancel
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		if s.enhanceGen == gen {
			s.enhanceCancel = nil
		}
		s.mu.Unlock()
	}
}

// CancelEnhance fires the registered handle. Idempotent and a no-op
// when no job is live.
func (s *State) CancelEnhance() {
	s.mu.Lock()
	cancel := s.enhanceCancel
	s.enhanceCancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
