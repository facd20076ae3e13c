package session

import (
	"context"
	"sync"
	"time"

	"notesync-core/internal/entity"
	"notesync-core/internal/pkg/logger"
	"notesync-core/internal/store"
)

// Snapshot is the reactive state exposed to subscribers: the session
// plus the display-mode selector.
type Snapshot struct {
	Session entity.Session
	ShowRaw bool
}

// Store owns exactly one session in memory. Mutations apply an
// immutable state transition, notify subscribers synchronously, then
// schedule a debounced write of the new snapshot. The transcript words
// are owned by the recorder, not by this store; persistence re-reads
// them from the durable row at fire time instead of trusting the
// in-memory copy.
type Store struct {
	db  store.Database
	log logger.ILogger

	mu      sync.Mutex
	session entity.Session
	showRaw bool
	subs    map[int]func(Snapshot)
	nextSub int
	writes  *writeScheduler
}

func NewStore(session entity.Session, db store.Database, log logger.ILogger, debounce time.Duration) *Store {
	s := &Store{
		db:      db,
		log:     log,
		session: session,
		showRaw: session.EnhancedContent == "",
		subs:    make(map[int]func(Snapshot)),
	}
	s.writes = newWriteScheduler(debounce, s.writeSession, func(err error) {
		// Debounced writes have no caller left to reject; surface the
		// failure without disturbing scheduling for subsequent edits.
		s.log.Error("SessionStore", "Debounced persist failed", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
	})
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Session: s.session, ShowRaw: s.showRaw}
}

// Subscribe registers a listener invoked synchronously on every
// mutation. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
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

// Refresh re-fetches the session from the persistent store and replaces
// in-memory content. No-op when the row was deleted concurrently.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	id := s.session.Id
	s.mu.Unlock()

	row, err := s.db.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if row == nil {
		return nil
	}

	s.mu.Lock()
	s.session = *row
	snap := Snapshot{Session: s.session, ShowRaw: s.showRaw}
	subs := s.listeners()
	s.mu.Unlock()

	notify(subs, snap)
	return nil
}

// SetShowRaw is a pure state transition with no persistence side effect.
func (s *Store) SetShowRaw(showRaw bool) {
	s.mu.Lock()
	s.showRaw = showRaw
	snap := Snapshot{Session: s.session, ShowRaw: s.showRaw}
	subs := s.listeners()
	s.mu.Unlock()

	notify(subs, snap)
}

func (s *Store) UpdateTitle(title string) {
	s.mutate(func(next *entity.Session, showRaw *bool) {
		next.Title = title
	})
}

func (s *Store) UpdateRawNote(note string) {
	s.mutate(func(next *entity.Session, showRaw *bool) {
		next.RawContent = note
	})
}

// UpdateEnhancedNote sets the enhanced content and forces the enhanced
// view as part of the same transition.
func (s *Store) UpdateEnhancedNote(note string) {
	s.mutate(func(next *entity.Session, showRaw *bool) {
		next.EnhancedContent = note
		*showRaw = false
	})
}

// mutate applies a transition to a copy of the session, swaps it in,
// notifies subscribers synchronously, then schedules persistence of the
// new snapshot.
func (s *Store) mutate(apply func(next *entity.Session, showRaw *bool)) {
	s.mu.Lock()
	next := s.session
	showRaw := s.showRaw
	apply(&next, &showRaw)
	s.session = next
	s.showRaw = showRaw
	snap := Snapshot{Session: next, ShowRaw: showRaw}
	subs := s.listeners()
	s.mu.Unlock()

	notify(subs, snap)
	s.writes.Schedule(next)
}

// PersistSession writes a snapshot to the persistent store. Debounced by
// default; force writes immediately and returns the write error. A nil
// snapshot persists the current in-memory session.
func (s *Store) PersistSession(ctx context.Context, snapshot *entity.Session, force bool) error {
	var item entity.Session
	if snapshot != nil {
		item = *snapshot
	} else {
		s.mu.Lock()
		item = s.session
		s.mu.Unlock()
	}

	if force {
		return s.writes.FlushNow(ctx, item)
	}
	s.writes.Schedule(item)
	return nil
}

// Close cancels any pending debounced write.
func (s *Store) Close() {
	s.writes.Stop()
}

// writeSession is the scheduler's write func. It splices the durable
// row's words into the outgoing snapshot before upserting: this store
// must never overwrite the transcript with a stale in-memory copy.
func (s *Store) writeSession(ctx context.Context, snapshot entity.Session) error {
	row, err := s.db.GetSession(ctx, snapshot.Id)
	if err != nil {
		return err
	}
	if row != nil {
		snapshot.Words = row.Words
	} else {
		snapshot.Words = nil
	}
	return s.db.UpsertSession(ctx, snapshot)
}

func (s *Store) listeners() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
