package store

import (
	"context"

	"notesync-core/internal/entity"
)

// Database is the contract presented by the persistent store. The store
// itself lives outside this core; every call crosses a process or IPC
// boundary and may fail.
type Database interface {
	// GetSession returns nil, nil when the row does not exist.
	GetSession(ctx context.Context, id string) (*entity.Session, error)
	UpsertSession(ctx context.Context, session entity.Session) error
	GetWords(ctx context.Context, sessionId string) ([]entity.Word, error)
	SessionListParticipants(ctx context.Context, sessionId string) ([]entity.Human, error)
	GetConfig(ctx context.Context) (*entity.Config, error)

	ListSessions(ctx context.Context, userId, query string, limit int) ([]entity.Session, error)
	ListEvents(ctx context.Context, userId, query string, limit int) ([]entity.CalendarEvent, error)
	ListHumans(ctx context.Context, query string, limit int) ([]entity.Human, error)
	ListOrganizations(ctx context.Context, query string, limit int) ([]entity.Organization, error)
}
