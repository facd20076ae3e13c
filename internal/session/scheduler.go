package session

import (
	"context"
	"sync"
	"time"

	"notesync-core/internal/entity"
)

// writeFunc performs the actual persistent-store write for one snapshot.
type writeFunc func(ctx context.Context, snapshot entity.Session) error

// writeScheduler debounces session writes. Schedule and FlushNow both
// funnel through one mutex-protected "latest pending snapshot" slot, so
// under a burst of edits at most one write fires per debounce window and
// it always carries the most recent snapshot. Intermediate snapshots are
// superseded, never persisted.
type writeScheduler struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending *entity.Session
	write   writeFunc
	onError func(error)
}

func newWriteScheduler(delay time.Duration, write writeFunc, onError func(error)) *writeScheduler {
	return &writeScheduler{
		delay:   delay,
		write:   write,
		onError: onError,
	}
}

// Schedule replaces the pending snapshot and restarts the debounce timer.
func (w *writeScheduler) Schedule(snapshot entity.Session) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = &snapshot
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.fire)
}

func (w *writeScheduler) fire() {
	w.mu.Lock()
	snapshot := w.pending
	w.pending = nil
	w.timer = nil
	w.mu.Unlock()

	if snapshot == nil {
		// A FlushNow raced the timer and already took the snapshot.
		return
	}

	if err := w.write(context.Background(), *snapshot); err != nil && w.onError != nil {
		w.onError(err)
	}
}

// FlushNow cancels any pending debounce and writes the given snapshot
// immediately. The error propagates to the caller.
func (w *writeScheduler) FlushNow(ctx context.Context, snapshot entity.Session) error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = nil
	w.mu.Unlock()

	return w.write(ctx, snapshot)
}

// Stop cancels any pending write without firing it.
func (w *writeScheduler) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = nil
}
