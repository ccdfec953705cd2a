// Package leaderboard ranks users by the points recorded in the award ledger.
package leaderboard

import (
	"context"
	"sort"

	"github.com/edusphere/edusphere-api/internal/models"
	"gorm.io/gorm"
)

type Entry struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	TotalPoints int    `json:"total_points"`
	Rank        int    `json:"rank"`
}

type Standing struct {
	TotalPoints int `json:"total_points"`
	Rank        int `json:"rank"`
	TotalUsers  int `json:"total_users"`
}

// PointsSource returns per-user totals in first-seen order.
type PointsSource interface {
	TotalPointsAllUsers(ctx context.Context) ([]models.UserPoints, error)
}

type Directory interface {
	DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error)
}

type Service struct {
	points    PointsSource
	directory Directory
}

// NewService builds a leaderboard. directory may be nil.
func NewService(points PointsSource, directory Directory) *Service {
	return &Service{points: points, directory: directory}
}

// TopN returns the n highest-scoring users. Ranks are positions in the sorted
// list, so equal totals still get distinct ranks and the user seen first wins.
func (s *Service) TopN(ctx context.Context, n int) ([]Entry, error) {
	ranked, err := s.ranked(ctx)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	if n < len(ranked) {
		ranked = ranked[:n]
	}

	if s.directory != nil && len(ranked) > 0 {
		ids := make([]string, len(ranked))
		for i, e := range ranked {
			ids[i] = e.UserID
		}
		names, err := s.directory.DisplayNames(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range ranked {
			ranked[i].DisplayName = names[ranked[i].UserID]
		}
	}
	return ranked, nil
}

// RankOf returns nil when the user has never been awarded a badge.
func (s *Service) RankOf(ctx context.Context, userID string) (*Standing, error) {
	ranked, err := s.ranked(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range ranked {
		if e.UserID == userID {
			return &Standing{TotalPoints: e.TotalPoints, Rank: e.Rank, TotalUsers: len(ranked)}, nil
		}
	}
	return nil, nil
}

func (s *Service) ranked(ctx context.Context) ([]Entry, error) {
	totals, err := s.points.TotalPointsAllUsers(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(totals))
	for i, t := range totals {
		entries[i] = Entry{UserID: t.UserID, TotalPoints: t.TotalPoints}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalPoints > entries[j].TotalPoints
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

type UserDirectory struct {
	db *gorm.DB
}

func NewUserDirectory(db *gorm.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

func (d *UserDirectory) DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	var users []models.User
	if err := d.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.DisplayName
	}
	return names, nil
}
