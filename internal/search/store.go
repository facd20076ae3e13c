package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"notesync-core/internal/entity"
	"notesync-core/internal/pkg/logger"
	"notesync-core/internal/store"

	"golang.org/x/sync/errgroup"
)

type Kind string

const (
	KindSession      Kind = "session"
	KindEvent        Kind = "event"
	KindHuman        Kind = "human"
	KindOrganization Kind = "organization"
)

// Match is one search result tagged by entity kind.
type Match struct {
	Kind Kind
	Item interface{}
}

// Per-kind result limits for the fan-out.
const (
	sessionLimit = 10
	eventLimit   = 5
	humanLimit   = 3
	orgLimit     = 3
)

// Store debounces raw input into aggregate searches across sessions,
// calendar events, people and organizations. The debounce timer is
// owned per instance, and every search carries a monotonic sequence
// number: only the latest issued search may apply its result, so a slow
// early response can never overwrite a newer one.
type Store struct {
	db       store.Database
	log      logger.ILogger
	userId   string
	debounce time.Duration
	navigate func(path string)

	mu        sync.Mutex
	query     string
	matches   []Match
	isLoading bool
	location  string
	previous  string
	timer     *time.Timer
	seq       uint64
}

func NewStore(db store.Database, log logger.ILogger, userId string, debounce time.Duration, navigate func(path string)) *Store {
	if debounce == 0 {
		debounce = 300 * time.Millisecond
	}
	return &Store{
		db:       db,
		log:      log,
		userId:   userId,
		debounce: debounce,
		navigate: navigate,
	}
}

func (s *Store) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

func (s *Store) Matches() []Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Match, len(s.matches))
	copy(out, s.matches)
	return out
}

func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

// SetLocation records the current navigation path so a search can
// restore it when cleared.
func (s *Store) SetLocation(path string) {
	s.mu.Lock()
	s.location = path
	s.mu.Unlock()
}

// SetInputQuery updates the displayed input immediately and restarts
// the debounce timer. Each call cancels the previous pending timer, so
// at most one aggregate search fires per quiescence period.
func (s *Store) SetInputQuery(query string) {
	s.mu.Lock()
	s.query = query
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.PerformSearch(context.Background(), query)
	})
	s.mu.Unlock()
}

// PerformSearch fans out parallel lookups and merges the results into
// one kind-tagged ordered list. A result is applied only when its
// sequence number is still the latest issued.
func (s *Store) PerformSearch(ctx context.Context, query string) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.isLoading = true
	if s.location != "" && containsNote(s.location) {
		s.previous = s.location
	}
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)

	var (
		sessions []entity.Session
		events   []entity.CalendarEvent
		humans   []entity.Human
		orgs     []entity.Organization
	)

	g.Go(func() error {
		rows, err := s.db.ListSessions(gctx, s.userId, query, sessionLimit)
		if err != nil {
			return err
		}
		sessions = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.db.ListEvents(gctx, s.userId, query, eventLimit)
		if err != nil {
			return err
		}
		events = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.db.ListHumans(gctx, query, humanLimit)
		if err != nil {
			return err
		}
		humans = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.db.ListOrganizations(gctx, query, orgLimit)
		if err != nil {
			return err
		}
		orgs = rows
		return nil
	})

	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		// A newer search was issued while this one was in flight;
		// drop the stale result.
		return
	}
	s.isLoading = false

	if err != nil {
		s.log.Error("Search", "Aggregate search failed", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return
	}

	matches := make([]Match, 0, len(sessions)+len(events)+len(humans)+len(orgs))
	for _, row := range sessions {
		matches = append(matches, Match{Kind: KindSession, Item: row})
	}
	for _, row := range events {
		matches = append(matches, Match{Kind: KindEvent, Item: row})
	}
	for _, row := range humans {
		matches = append(matches, Match{Kind: KindHuman, Item: row})
	}
	for _, row := range orgs {
		matches = append(matches, Match{Kind: KindOrganization, Item: row})
	}
	s.matches = matches
}

// ClearSearch stops any pending debounce, resets the store and
// restores the navigation state saved before the search began.
func (s *Store) ClearSearch() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++ // invalidate in-flight searches
	s.query = ""
	s.matches = nil
	s.isLoading = false
	previous := s.previous
	s.previous = ""
	navigate := s.navigate
	s.mu.Unlock()

	if previous != "" && navigate != nil {
		navigate(previous)
	}
}

func containsNote(path string) bool {
	return strings.Contains(path, "note")
}
