package models

import (
	"time"
)

type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Pid       string    `gorm:"uniqueIndex;size:8;not null" json:"pid"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	TopicID   uint      `gorm:"not null;index" json:"topic_id"`
	Topic     Topic     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"topic"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Filled by queries, not stored
	CommentCount int `gorm:"-" json:"comment_count"`
}
