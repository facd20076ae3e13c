package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"notesync-core/internal/entity"

	"github.com/patrickmn/go-cache"
)

// Database is an in-process implementation of the store contract backed
// by go-cache. It backs tests and the window simulator; the real
// application talks to the durable store over IPC instead.
type Database struct {
	items *cache.Cache
}

func NewDatabase() *Database {
	return &Database{
		items: cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

func sessionKey(id string) string     { return "session:" + id }
func wordsKey(id string) string       { return "words:" + id }
func humanKey(id string) string       { return "human:" + id }
func orgKey(id string) string         { return "org:" + id }
func eventKey(id string) string       { return "event:" + id }
func participantKey(id string) string { return "participants:" + id }

func (d *Database) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	if x, found := d.items.Get(sessionKey(id)); found {
		s := x.(entity.Session)
		return &s, nil
	}
	return nil, nil
}

func (d *Database) UpsertSession(ctx context.Context, session entity.Session) error {
	d.items.Set(sessionKey(session.Id), session, cache.NoExpiration)
	return nil
}

func (d *Database) DeleteSession(ctx context.Context, id string) error {
	d.items.Delete(sessionKey(id))
	return nil
}

func (d *Database) GetWords(ctx context.Context, sessionId string) ([]entity.Word, error) {
	if x, found := d.items.Get(wordsKey(sessionId)); found {
		return x.([]entity.Word), nil
	}
	// Fall back to the words stored on the session row itself.
	if x, found := d.items.Get(sessionKey(sessionId)); found {
		return x.(entity.Session).Words, nil
	}
	return nil, nil
}

// SetWords seeds transcript words independently from the session row,
// the way the recorder writes them.
func (d *Database) SetWords(sessionId string, words []entity.Word) {
	d.items.Set(wordsKey(sessionId), words, cache.NoExpiration)
}

func (d *Database) SessionListParticipants(ctx context.Context, sessionId string) ([]entity.Human, error) {
	if x, found := d.items.Get(participantKey(sessionId)); found {
		return x.([]entity.Human), nil
	}
	return nil, nil
}

func (d *Database) SetParticipants(sessionId string, humans []entity.Human) {
	d.items.Set(participantKey(sessionId), humans, cache.NoExpiration)
}

func (d *Database) GetConfig(ctx context.Context) (*entity.Config, error) {
	if x, found := d.items.Get("config"); found {
		c := x.(entity.Config)
		return &c, nil
	}
	return nil, nil
}

func (d *Database) SetConfig(config entity.Config) {
	d.items.Set("config", config, cache.NoExpiration)
}

func (d *Database) PutHuman(human entity.Human) {
	d.items.Set(humanKey(human.Id), human, cache.NoExpiration)
}

func (d *Database) PutOrganization(org entity.Organization) {
	d.items.Set(orgKey(org.Id), org, cache.NoExpiration)
}

func (d *Database) PutEvent(event entity.CalendarEvent) {
	d.items.Set(eventKey(event.Id), event, cache.NoExpiration)
}

func (d *Database) ListSessions(ctx context.Context, userId, query string, limit int) ([]entity.Session, error) {
	var out []entity.Session
	for key, item := range d.items.Items() {
		if !strings.HasPrefix(key, "session:") {
			continue
		}
		s := item.Object.(entity.Session)
		if userId != "" && s.UserId != userId {
			continue
		}
		if matches(query, s.Title, s.RawContent, s.EnhancedContent) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return clip(out, limit), nil
}

func (d *Database) ListEvents(ctx context.Context, userId, query string, limit int) ([]entity.CalendarEvent, error) {
	var out []entity.CalendarEvent
	for key, item := range d.items.Items() {
		if !strings.HasPrefix(key, "event:") {
			continue
		}
		e := item.Object.(entity.CalendarEvent)
		if userId != "" && e.UserId != userId {
			continue
		}
		if matches(query, e.Name, e.Note) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return clip(out, limit), nil
}

func (d *Database) ListHumans(ctx context.Context, query string, limit int) ([]entity.Human, error) {
	var out []entity.Human
	for key, item := range d.items.Items() {
		if !strings.HasPrefix(key, "human:") {
			continue
		}
		h := item.Object.(entity.Human)
		if matches(query, h.FullName, h.Email) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return clip(out, limit), nil
}

func (d *Database) ListOrganizations(ctx context.Context, query string, limit int) ([]entity.Organization, error) {
	var out []entity.Organization
	for key, item := range d.items.Items() {
		if !strings.HasPrefix(key, "org:") {
			continue
		}
		o := item.Object.(entity.Organization)
		if matches(query, o.Name, o.Description) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return clip(out, limit), nil
}

func matches(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func clip[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
