package models

import (
	"time"

	"gorm.io/gorm"
)

type LessonProgress struct {
	gorm.Model
	UserID         string    `json:"user_id" gorm:"not null;uniqueIndex:idx_user_subject_grade"`
	Subject        string    `json:"subject" gorm:"not null;uniqueIndex:idx_user_subject_grade"`
	Grade          string    `json:"grade" gorm:"not null;uniqueIndex:idx_user_subject_grade"`
	Attempted      int       `json:"attempted"`
	Correct        int       `json:"correct"`
	StreakDays     int       `json:"streak_days"`
	LastActivityAt time.Time `json:"last_activity_at"`
}
