package gormdb

import (
	"context"
	"fmt"

	"notesync-core/internal/entity"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Database adapts the durable Postgres store to the core's contract.
type Database struct {
	db *gorm.DB
}

func Open(dsn string) (*Database, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &Database{db: db}, nil
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

// Migrate creates the backing tables. Intended for the simulator and
// fresh installs; the desktop app ships its own migrations.
func (d *Database) Migrate() error {
	return d.db.AutoMigrate(
		&entity.Session{},
		&entity.Human{},
		&entity.Organization{},
		&entity.CalendarEvent{},
		&entity.Config{},
		&sessionParticipant{},
	)
}

// sessionParticipant joins sessions to humans.
type sessionParticipant struct {
	SessionId string `gorm:"primaryKey"`
	HumanId   string `gorm:"primaryKey"`
}

func (d *Database) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	var row entity.Session
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (d *Database) UpsertSession(ctx context.Context, session entity.Session) error {
	return d.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&session).Error
}

func (d *Database) GetWords(ctx context.Context, sessionId string) ([]entity.Word, error) {
	row, err := d.GetSession(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return row.Words, nil
}

func (d *Database) SessionListParticipants(ctx context.Context, sessionId string) ([]entity.Human, error) {
	var humans []entity.Human
	err := d.db.WithContext(ctx).
		Joins("JOIN session_participants sp ON sp.human_id = humans.id").
		Where("sp.session_id = ?", sessionId).
		Find(&humans).Error
	if err != nil {
		return nil, err
	}
	return humans, nil
}

func (d *Database) GetConfig(ctx context.Context) (*entity.Config, error) {
	var row entity.Config
	if err := d.db.WithContext(ctx).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (d *Database) ListSessions(ctx context.Context, userId, query string, limit int) ([]entity.Session, error) {
	var rows []entity.Session
	q := d.db.WithContext(ctx).Model(&entity.Session{})
	if userId != "" {
		q = q.Where("user_id = ?", userId)
	}
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where("title ILIKE ? OR raw_memo_html ILIKE ? OR enhanced_memo_html ILIKE ?", pattern, pattern, pattern)
	}
	if err := q.Order("id").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *Database) ListEvents(ctx context.Context, userId, query string, limit int) ([]entity.CalendarEvent, error) {
	var rows []entity.CalendarEvent
	q := d.db.WithContext(ctx).Model(&entity.CalendarEvent{})
	if userId != "" {
		q = q.Where("user_id = ?", userId)
	}
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where("name ILIKE ? OR note ILIKE ?", pattern, pattern)
	}
	if err := q.Order("id").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *Database) ListHumans(ctx context.Context, query string, limit int) ([]entity.Human, error) {
	var rows []entity.Human
	q := d.db.WithContext(ctx).Model(&entity.Human{})
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where("full_name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	if err := q.Order("id").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *Database) ListOrganizations(ctx context.Context, query string, limit int) ([]entity.Organization, error) {
	var rows []entity.Organization
	q := d.db.WithContext(ctx).Model(&entity.Organization{})
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if err := q.Order("id").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
