package achievements

import (
	"context"
	"fmt"
	"time"

	"github.com/edusphere/edusphere-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger is the append-only record of granted badges.
type Ledger interface {
	// Award inserts rec unless (UserID, BadgeKey) already exists. created is
	// false when the row was already present.
	Award(ctx context.Context, rec models.UserAchievement) (created bool, err error)
	ListBadges(ctx context.Context, userID string) (map[string]struct{}, error)
	ListAwards(ctx context.Context, userID string) ([]models.UserAchievement, error)
	TotalPointsAllUsers(ctx context.Context) ([]models.UserPoints, error)
}

type GormLedger struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db, now: time.Now}
}

// Award relies on the idx_user_badge unique index; there is no prior existence
// check, so concurrent callers cannot both create a row.
func (l *GormLedger) Award(ctx context.Context, rec models.UserAchievement) (bool, error) {
	rec.ID = 0
	if rec.EarnedAt.IsZero() {
		rec.EarnedAt = l.now()
	}
	// Stored in UTC so earned_at ordering matches wall-clock ordering.
	rec.EarnedAt = rec.EarnedAt.UTC()

	res := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_key"}},
			DoNothing: true,
		}).
		Create(&rec)
	if res.Error != nil {
		return false, fmt.Errorf("%w: award %s to %s: %v", ErrStorageUnavailable, rec.BadgeKey, rec.UserID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (l *GormLedger) ListBadges(ctx context.Context, userID string) (map[string]struct{}, error) {
	var keys []string
	err := l.db.WithContext(ctx).
		Model(&models.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("badge_key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list badges: %v", ErrStorageUnavailable, err)
	}

	out := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		out[k] = struct{}{}
	}
	return out, nil
}

func (l *GormLedger) ListAwards(ctx context.Context, userID string) ([]models.UserAchievement, error) {
	awards := []models.UserAchievement{}
	err := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Order("id DESC").
		Find(&awards).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list awards: %v", ErrStorageUnavailable, err)
	}
	return awards, nil
}

// TotalPointsAllUsers sums points per user in the database. Users come back in
// the order their first award was written.
func (l *GormLedger) TotalPointsAllUsers(ctx context.Context) ([]models.UserPoints, error) {
	var rows []struct {
		UserID      string
		TotalPoints int
		FirstID     uint
	}
	err := l.db.WithContext(ctx).
		Model(&models.UserAchievement{}).
		Select("user_id, SUM(points_awarded) AS total_points, MIN(id) AS first_id").
		Group("user_id").
		Order("first_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: total points: %v", ErrStorageUnavailable, err)
	}

	totals := make([]models.UserPoints, 0, len(rows))
	for _, r := range rows {
		totals = append(totals, models.UserPoints{UserID: r.UserID, TotalPoints: r.TotalPoints})
	}
	return totals, nil
}
