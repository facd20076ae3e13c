package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"notesync-core/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type writeRecorder struct {
	mu     sync.Mutex
	writes []entity.Session
	err    error
}

func (r *writeRecorder) write(ctx context.Context, snapshot entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.writes = append(r.writes, snapshot)
	return nil
}

func (r *writeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.writes)
}

func (r *writeRecorder) last() entity.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes[len(r.writes)-1]
}

func TestSchedulerCoalescesBurst(t *testing.T) {
	rec := &writeRecorder{}
	w := newWriteScheduler(30*time.Millisecond, rec.write, nil)

	for i := 0; i < 10; i++ {
		w.Schedule(entity.Session{Id: "s1", RawContent: string(rune('a' + i))})
	}

	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "j", rec.last().RawContent)

	// No second write appears later.
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestSchedulerFlushNowSupersedesPending(t *testing.T) {
	rec := &writeRecorder{}
	w := newWriteScheduler(50*time.Millisecond, rec.write, nil)

	w.Schedule(entity.Session{Id: "s1", RawContent: "pending"})
	err := w.FlushNow(context.Background(), entity.Session{Id: "s1", RawContent: "forced"})
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 1, rec.count())
	assert.Equal(t, "forced", rec.last().RawContent)
}

func TestSchedulerErrorDoesNotBreakScheduling(t *testing.T) {
	rec := &writeRecorder{err: errors.New("db down")}
	var gotErr error
	var mu sync.Mutex
	w := newWriteScheduler(10*time.Millisecond, rec.write, func(err error) {
		mu.Lock()
		gotErr = err
		mu.Unlock()
	})

	w.Schedule(entity.Session{Id: "s1", RawContent: "first"})
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gotErr != nil
	}, time.Second, 5*time.Millisecond)

	// Store recovers; the next edit persists normally.
	rec.mu.Lock()
	rec.err = nil
	rec.mu.Unlock()

	w.Schedule(entity.Session{Id: "s1", RawContent: "second"})
	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "second", rec.last().RawContent)
}

func TestSchedulerStopCancelsPending(t *testing.T) {
	rec := &writeRecorder{}
	w := newWriteScheduler(20*time.Millisecond, rec.write, nil)

	w.Schedule(entity.Session{Id: "s1"})
	w.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, rec.count())
}
