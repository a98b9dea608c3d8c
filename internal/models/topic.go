package models

import (
	"time"
)

// Topic is a top-level discussion category. Topics are created once and
// never edited or deleted.
type Topic struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Slug        string    `gorm:"not null;uniqueIndex" json:"slug"` // lowercase letters and hyphens
	Description string    `gorm:"type:text;not null" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
