package models

import (
	"time"
)

type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"not null" json:"username"` // Username can be modified
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"`        // Hash
	Avatar      string    `json:"avatar"`                   // URL from OAuth profile, or emoji fallback
	GoogleID    string    `gorm:"index" json:"google_id"`   // Google OAuth ID
	GoogleEmail string    `gorm:"index" json:"google_email"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	// No DeletedAt for hard delete
}
