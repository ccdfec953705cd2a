package achievements

import (
	"context"

	"github.com/edusphere/edusphere-api/internal/models"
	"gorm.io/gorm"
)

type ProgressRecord struct {
	Subject    string
	Attempted  int
	Correct    int
	StreakDays int
}

type ShareRecord struct {
	Likes int
}

type ProgressSource interface {
	ListProgress(ctx context.Context, userID string) ([]ProgressRecord, error)
}

type ShareSource interface {
	ListShares(ctx context.Context, userID string) ([]ShareRecord, error)
}

// ActivityStore reads lesson progress and shared content rows.
type ActivityStore struct {
	db *gorm.DB
}

func NewActivityStore(db *gorm.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

func (s *ActivityStore) ListProgress(ctx context.Context, userID string) ([]ProgressRecord, error) {
	var rows []ProgressRecord
	err := s.db.WithContext(ctx).
		Model(&models.LessonProgress{}).
		Select("subject, attempted, correct, streak_days").
		Where("user_id = ?", userID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *ActivityStore) ListShares(ctx context.Context, userID string) ([]ShareRecord, error) {
	var rows []ShareRecord
	err := s.db.WithContext(ctx).
		Model(&models.SharedContent{}).
		Select("likes").
		Where("user_id = ?", userID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
