package entity

import (
	"time"
)

// Session is a meeting note: user-authored raw content, an optional
// AI-enhanced rewrite of it, and the recording transcript.
type Session struct {
	Id              string `gorm:"primaryKey"`
	Title           string
	RawContent      string `gorm:"column:raw_memo_html"`
	EnhancedContent string `gorm:"column:enhanced_memo_html"`
	Words           []Word `gorm:"serializer:json"`
	CalendarEventId *string
	CreatedAt       time.Time
	RecordStart     *time.Time
	RecordEnd       *time.Time
	UserId          string `gorm:"index"`
}

// Word is a single transcript token with its timestamp range.
type Word struct {
	Text      string  `json:"text"`
	StartMs   int64   `json:"start_ms"`
	EndMs     int64   `json:"end_ms"`
	SpeakerId *string `json:"speaker_id,omitempty"`
}
