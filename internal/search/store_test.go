package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"notesync-core/internal/entity"
	"notesync-core/internal/pkg/logger"
	"notesync-core/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowDB wraps the memory store, counting session lookups and delaying
// configured queries to provoke out-of-order completion.
type slowDB struct {
	*memory.Database
	mu      sync.Mutex
	delays  map[string]time.Duration
	queries []string
}

func newSlowDB() *slowDB {
	return &slowDB{
		Database: memory.NewDatabase(),
		delays:   make(map[string]time.Duration),
	}
}

func (d *slowDB) ListSessions(ctx context.Context, userId, query string, limit int) ([]entity.Session, error) {
	d.mu.Lock()
	d.queries = append(d.queries, query)
	delay := d.delays[query]
	d.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	return d.Database.ListSessions(ctx, userId, query, limit)
}

func (d *slowDB) sessionQueries() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.queries))
	copy(out, d.queries)
	return out
}

func TestInputDebouncesToSingleSearch(t *testing.T) {
	db := newSlowDB()
	s := NewStore(db, logger.NewNopLogger(), "user-1", 30*time.Millisecond, nil)

	for _, q := range []string{"q", "qu", "qua", "quar", "quart"} {
		s.SetInputQuery(q)
	}
	assert.Equal(t, "quart", s.Query(), "input updates immediately")

	require.Eventually(t, func() bool { return len(db.sessionQueries()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"quart"}, db.sessionQueries())

	time.Sleep(90 * time.Millisecond)
	assert.Len(t, db.sessionQueries(), 1, "only one search per quiescence period")
}

func TestStaleResultIsDropped(t *testing.T) {
	db := newSlowDB()
	db.PutHuman(entity.Human{Id: "h1", FullName: "Quark"})
	db.delays["slow"] = 80 * time.Millisecond

	s := NewStore(db, logger.NewNopLogger(), "user-1", 30*time.Millisecond, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.PerformSearch(context.Background(), "slow")
	}()
	time.Sleep(20 * time.Millisecond)
	go func() {
		defer wg.Done()
		s.PerformSearch(context.Background(), "quark")
	}()
	wg.Wait()

	// The newer search's result stands even though the older one
	// finished last.
	matches := s.Matches()
	require.Len(t, matches, 1)
	assert.Equal(t, KindHuman, matches[0].Kind)
	assert.False(t, s.IsLoading())
}

func TestMergeOrderAndKinds(t *testing.T) {
	db := newSlowDB()
	require.NoError(t, db.UpsertSession(context.Background(), entity.Session{Id: "s1", Title: "Roadmap review", UserId: "user-1"}))
	db.PutEvent(entity.CalendarEvent{Id: "e1", Name: "Roadmap sync", UserId: "user-1"})
	db.PutHuman(entity.Human{Id: "h1", FullName: "Rhoda Mapes"})
	db.PutOrganization(entity.Organization{Id: "o1", Name: "Roadmap Inc"})

	s := NewStore(db, logger.NewNopLogger(), "user-1", 30*time.Millisecond, nil)
	s.PerformSearch(context.Background(), "roadmap")

	matches := s.Matches()
	require.Len(t, matches, 3)
	assert.Equal(t, KindSession, matches[0].Kind)
	assert.Equal(t, KindEvent, matches[1].Kind)
	assert.Equal(t, KindOrganization, matches[2].Kind)
}

func TestClearSearchRestoresNavigation(t *testing.T) {
	db := newSlowDB()
	var navigated []string
	s := NewStore(db, logger.NewNopLogger(), "user-1", 10*time.Millisecond, func(path string) {
		navigated = append(navigated, path)
	})

	s.SetLocation("/app/note/s1")
	s.PerformSearch(context.Background(), "anything")
	s.SetInputQuery("pending input")

	s.ClearSearch()

	assert.Equal(t, "", s.Query())
	assert.Empty(t, s.Matches())
	assert.False(t, s.IsLoading())
	assert.Equal(t, []string{"/app/note/s1"}, navigated)

	// The pending debounce was cancelled with the clear.
	time.Sleep(40 * time.Millisecond)
	assert.Empty(t, db.sessionQueries()[1:], "no search fires after clear")
}
