package entity

import "time"

type CalendarEvent struct {
	Id        string `gorm:"primaryKey"`
	Name      string
	Note      string
	StartDate time.Time
	EndDate   time.Time
	UserId    string `gorm:"index"`
}
