package models

import (
	"time"
)

// User mirrors the identity provider's account so leaderboards can show names.
// ID is the provider's subject (a UUID).
type User struct {
	ID          string `gorm:"primaryKey"`
	Email       string
	DisplayName string
	AvatarURL   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
