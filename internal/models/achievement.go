package models

import (
	"time"
)

// UserAchievement is one row of the award ledger. The composite unique index on
// (user_id, badge_key) is what guarantees a badge is granted at most once.
// Rows are append-only.
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        string    `gorm:"not null;uniqueIndex:idx_user_badge" json:"user_id"`
	BadgeKey      string    `gorm:"not null;uniqueIndex:idx_user_badge" json:"badge_key"`
	PointsAwarded int       `gorm:"not null" json:"points_awarded"`
	Category      string    `gorm:"not null" json:"category"`
	EarnedAt      time.Time `gorm:"not null;index" json:"earned_at"`
}

// UserPoints is a grouped sum over UserAchievement rows.
type UserPoints struct {
	UserID      string
	TotalPoints int
}
