// Package achievements turns user activity into badge awards: it aggregates
// activity into a snapshot, checks it against the badge catalog and appends
// newly earned badges to the award ledger.
package achievements

import (
	"context"
	"errors"
	"fmt"

	"github.com/edusphere/edusphere-api/internal/badges"
	"github.com/edusphere/edusphere-api/internal/logger"
	"github.com/edusphere/edusphere-api/internal/models"
)

type Evaluator struct {
	catalog    *badges.Catalog
	aggregator *Aggregator
	ledger     Ledger
	log        *logger.Logger
}

func NewEvaluator(catalog *badges.Catalog, aggregator *Aggregator, ledger Ledger, baseLog *logger.Logger) *Evaluator {
	return &Evaluator{
		catalog:    catalog,
		aggregator: aggregator,
		ledger:     ledger,
		log:        baseLog.With("service", "Evaluator"),
	}
}

// Evaluate awards every automatic badge the user now qualifies for and returns
// the ones that were actually created by this call. When an award fails, the
// badges created before it are returned together with the error.
func (e *Evaluator) Evaluate(ctx context.Context, userID string) ([]badges.Badge, error) {
	snapshot, err := e.aggregator.Aggregate(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Only skips work; the unique index in the ledger decides what is new.
	earned, err := e.ledger.ListBadges(ctx, userID)
	if err != nil {
		return nil, err
	}

	awarded := []badges.Badge{}
	for _, b := range e.catalog.All() {
		if _, ok := earned[b.Key]; ok || !b.Automatic() {
			continue
		}
		if !b.Eligible(snapshot) {
			continue
		}

		created, err := e.ledger.Award(ctx, awardRecord(userID, b))
		if err != nil {
			return awarded, err
		}
		if created {
			e.log.Info("badge awarded", "user_id", userID, "badge", b.Key, "points", b.Points)
			awarded = append(awarded, b)
		}
	}
	return awarded, nil
}

// AwardManually grants a badge regardless of its predicate. It returns false
// when the user already holds it.
func (e *Evaluator) AwardManually(ctx context.Context, userID, badgeKey string) (bool, error) {
	b, err := e.catalog.Lookup(badgeKey)
	if err != nil {
		if errors.Is(err, badges.ErrBadgeNotFound) {
			return false, fmt.Errorf("%w: %s", ErrUnknownBadge, badgeKey)
		}
		return false, err
	}

	created, err := e.ledger.Award(ctx, awardRecord(userID, b))
	if err != nil {
		return false, err
	}
	if created {
		e.log.Info("badge awarded manually", "user_id", userID, "badge", b.Key, "points", b.Points)
	}
	return created, nil
}

// ListAwards returns the user's awards, most recent first.
func (e *Evaluator) ListAwards(ctx context.Context, userID string) ([]models.UserAchievement, error) {
	return e.ledger.ListAwards(ctx, userID)
}

// EarnedKeys is used to annotate the catalog for a user.
func (e *Evaluator) EarnedKeys(ctx context.Context, userID string) (map[string]struct{}, error) {
	return e.ledger.ListBadges(ctx, userID)
}

func (e *Evaluator) Catalog() *badges.Catalog {
	return e.catalog
}

func awardRecord(userID string, b badges.Badge) models.UserAchievement {
	return models.UserAchievement{
		UserID:        userID,
		BadgeKey:      b.Key,
		PointsAwarded: b.Points,
		Category:      string(b.Category),
	}
}
