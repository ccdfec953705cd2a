package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/edusphere/edusphere-api/internal/auth"
	"github.com/edusphere/edusphere-api/internal/leaderboard"
	"github.com/google/uuid"
)

type LeaderboardHandler struct {
	service      *leaderboard.Service
	authHandler  *auth.AuthHandler
	defaultLimit int
	maxLimit     int
}

func NewLeaderboardHandler(service *leaderboard.Service, authHandler *auth.AuthHandler, defaultLimit, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		service:      service,
		authHandler:  authHandler,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

type LeaderboardRequest struct {
	Limit int `query:"limit" doc:"Number of entries to return" minimum:"0"`
}

type LeaderboardResponse struct {
	Body struct {
		Entries []leaderboard.Entry `json:"entries"`
	}
}

func (h *LeaderboardHandler) HandleTop(ctx context.Context, input *LeaderboardRequest) (*LeaderboardResponse, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = h.defaultLimit
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}

	entries, err := h.service.TopN(ctx, limit)
	if err != nil {
		return nil, apiError(err)
	}

	res := &LeaderboardResponse{}
	res.Body.Entries = entries
	return res, nil
}

type StandingResponse struct {
	Body leaderboard.Standing
}

type UserStandingRequest struct {
	UserID string `path:"id" doc:"User ID"`
}

func (h *LeaderboardHandler) HandleUserStanding(ctx context.Context, input *UserStandingRequest) (*StandingResponse, error) {
	if _, err := uuid.Parse(input.UserID); err != nil {
		return nil, huma.Error400BadRequest("Invalid user ID")
	}
	return h.standing(ctx, input.UserID)
}

type MyStandingRequest struct {
	auth.AuthInput
}

func (h *LeaderboardHandler) HandleMyStanding(ctx context.Context, input *MyStandingRequest) (*StandingResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	return h.standing(ctx, userID)
}

func (h *LeaderboardHandler) standing(ctx context.Context, userID string) (*StandingResponse, error) {
	st, err := h.service.RankOf(ctx, userID)
	if err != nil {
		return nil, apiError(err)
	}
	if st == nil {
		return nil, huma.Error404NotFound("User has no awards yet")
	}
	return &StandingResponse{Body: *st}, nil
}
