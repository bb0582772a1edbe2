package model

import (
	"fmt"
	"time"
)

// Task is a single unit of work tracked by the bot.
type Task struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Title       string `gorm:"not null"`
	Description string
	Done        bool `gorm:"default:false;index"`
	StartTime   time.Time
	EndTime     *time.Time
}

// String renders the one-line summary used in listings and digests.
func (t Task) String() string {
	return fmt.Sprintf("%d - %s", t.ID, t.Title)
}
