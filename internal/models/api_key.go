package models

import (
	"time"

	"gorm.io/gorm"
)

// APIKey lets a lesson backend report activity for UserID. Only the SHA-256
// of the key is stored; Prefix identifies it in listings.
type APIKey struct {
	gorm.Model
	UserID     string     `json:"user_id" gorm:"not null;index"`
	KeyHash    string     `json:"-" gorm:"not null;uniqueIndex"`
	Prefix     string     `json:"prefix"`
	Name       string     `json:"name"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}
