package achievements

import (
	"context"
	"fmt"

	"github.com/edusphere/edusphere-api/internal/badges"
	"golang.org/x/sync/errgroup"
)

const (
	highAccuracyMinAttempted = 10
	highAccuracyRatio        = 0.9
)

// BuildSnapshot reduces raw activity into the aggregate used by badge predicates.
func BuildSnapshot(progress []ProgressRecord, shares []ShareRecord) badges.Snapshot {
	var s badges.Snapshot
	subjects := make(map[string]struct{}, len(progress))

	for _, p := range progress {
		s.TotalAttempted += p.Attempted
		s.TotalCorrect += p.Correct
		if p.StreakDays > s.MaxStreakDays {
			s.MaxStreakDays = p.StreakDays
		}
		subjects[p.Subject] = struct{}{}

		if p.Attempted > 0 && p.Correct == p.Attempted {
			s.PerfectLessonRecorded = true
		}
		if p.Attempted >= highAccuracyMinAttempted &&
			float64(p.Correct)/float64(p.Attempted) >= highAccuracyRatio {
			s.HighAccuracyLessonCount++
		}
	}
	s.SubjectsTried = len(subjects)

	s.SharesCount = len(shares)
	for _, sh := range shares {
		s.TotalLikesReceived += sh.Likes
	}
	return s
}

type Aggregator struct {
	progress ProgressSource
	shares   ShareSource
}

func NewAggregator(progress ProgressSource, shares ShareSource) *Aggregator {
	return &Aggregator{progress: progress, shares: shares}
}

// Aggregate always reads fresh data. A user with no activity gets a zero snapshot.
func (a *Aggregator) Aggregate(ctx context.Context, userID string) (badges.Snapshot, error) {
	var (
		progress []ProgressRecord
		shares   []ShareRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		progress, err = a.progress.ListProgress(gctx, userID)
		if err != nil {
			return fmt.Errorf("%w: list progress: %v", ErrStorageUnavailable, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		shares, err = a.shares.ListShares(gctx, userID)
		if err != nil {
			return fmt.Errorf("%w: list shares: %v", ErrStorageUnavailable, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return badges.Snapshot{}, err
	}

	return BuildSnapshot(progress, shares), nil
}
