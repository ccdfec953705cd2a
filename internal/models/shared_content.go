package models

import (
	"time"
)

type SharedContent struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"not null;index" json:"user_id"`
	Title       string    `json:"title"`
	ContentType string    `json:"content_type"`
	Body        string    `json:"body"`
	Likes       int       `gorm:"not null;default:0" json:"likes"`
	CreatedAt   time.Time `json:"created_at"`
}
