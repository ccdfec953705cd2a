package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/edusphere/edusphere-api/internal/achievements"
	"github.com/edusphere/edusphere-api/internal/auth"
	"github.com/edusphere/edusphere-api/internal/badges"
	"github.com/edusphere/edusphere-api/internal/logger"
	"github.com/edusphere/edusphere-api/internal/models"
	"github.com/edusphere/edusphere-api/internal/notifier"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AchievementHandler struct {
	db          *gorm.DB
	evaluator   *achievements.Evaluator
	notifier    notifier.Notifier
	authHandler *auth.AuthHandler
	log         *logger.Logger
}

func NewAchievementHandler(db *gorm.DB, evaluator *achievements.Evaluator, n notifier.Notifier, authHandler *auth.AuthHandler, baseLog *logger.Logger) *AchievementHandler {
	if n == nil {
		n = notifier.NopNotifier{}
	}
	return &AchievementHandler{
		db:          db,
		evaluator:   evaluator,
		notifier:    n,
		authHandler: authHandler,
		log:         baseLog.With("handler", "AchievementHandler"),
	}
}

type BadgeBody struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Points      int    `json:"points"`
	Category    string `json:"category"`
	Requirement string `json:"requirement"`
	Automatic   bool   `json:"automatic"`
	Earned      bool   `json:"earned"`
}

func badgeBody(b badges.Badge, earned bool) BadgeBody {
	return BadgeBody{
		Key:         b.Key,
		Name:        b.Name,
		Description: b.Description,
		Icon:        b.Icon,
		Points:      b.Points,
		Category:    string(b.Category),
		Requirement: b.Requirement,
		Automatic:   b.Automatic(),
		Earned:      earned,
	}
}

type AwardBody struct {
	BadgeKey      string    `json:"badge_key"`
	Name          string    `json:"name"`
	Icon          string    `json:"icon"`
	PointsAwarded int       `json:"points_awarded"`
	Category      string    `json:"category"`
	EarnedAt      time.Time `json:"earned_at"`
}

// apiError maps engine errors onto HTTP errors.
// storageError reports a failed write or read outside the ledger the same way
// ledger failures are reported.
func storageError(op string, err error) error {
	return apiError(fmt.Errorf("%w: %s: %w", achievements.ErrStorageUnavailable, op, err))
}

func apiError(err error) error {
	switch {
	case errors.Is(err, achievements.ErrUnknownBadge):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, achievements.ErrStorageUnavailable):
		return huma.Error503ServiceUnavailable("Storage unavailable, try again later")
	default:
		return huma.Error500InternalServerError("Internal error: " + err.Error())
	}
}

type ListBadgesRequest struct {
	auth.AuthInput
}

type ListBadgesResponse struct {
	Body []BadgeBody
}

// HandleListBadges returns the catalog. Authenticated callers also see which
// badges they hold.
func (h *AchievementHandler) HandleListBadges(ctx context.Context, input *ListBadgesRequest) (*ListBadgesResponse, error) {
	earned := map[string]struct{}{}
	if userID, err := h.authHandler.Authorize(ctx, input.AuthInput); err == nil {
		earned, err = h.evaluator.EarnedKeys(ctx, userID)
		if err != nil {
			return nil, apiError(err)
		}
	}

	all := h.evaluator.Catalog().All()
	res := &ListBadgesResponse{Body: make([]BadgeBody, 0, len(all))}
	for _, b := range all {
		_, ok := earned[b.Key]
		res.Body = append(res.Body, badgeBody(b, ok))
	}
	return res, nil
}

type EvaluateRequest struct {
	auth.AuthInput
}

type EvaluateResponse struct {
	Body struct {
		Awarded      []BadgeBody `json:"awarded"`
		PointsEarned int         `json:"points_earned"`
	}
}

func (h *AchievementHandler) HandleEvaluate(ctx context.Context, input *EvaluateRequest) (*EvaluateResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	awarded, err := h.evaluateAndNotify(ctx, userID)
	if err != nil {
		return nil, apiError(err)
	}
	return evaluateResponse(awarded), nil
}

func evaluateResponse(awarded []badges.Badge) *EvaluateResponse {
	res := &EvaluateResponse{}
	res.Body.Awarded = make([]BadgeBody, 0, len(awarded))
	for _, b := range awarded {
		res.Body.Awarded = append(res.Body.Awarded, badgeBody(b, true))
		res.Body.PointsEarned += b.Points
	}
	return res
}

// evaluateAndNotify runs evaluation and announces every new badge, including
// those written before an evaluation error since later runs will not report
// them again. A failed announcement is logged and otherwise ignored.
func (h *AchievementHandler) evaluateAndNotify(ctx context.Context, userID string) ([]badges.Badge, error) {
	awarded, err := h.evaluator.Evaluate(ctx, userID)
	if err != nil {
		h.log.Error("evaluation failed", "user_id", userID, "awarded_before_failure", len(awarded), "error", err)
	}
	if len(awarded) > 0 {
		name := h.displayName(ctx, userID)
		for _, b := range awarded {
			if nerr := h.notifier.NotifyBadge(userID, name, b); nerr != nil {
				h.log.Warn("failed to send badge notification", "user_id", userID, "badge", b.Key, "error", nerr)
			}
		}
	}
	return awarded, err
}

func (h *AchievementHandler) displayName(ctx context.Context, userID string) string {
	var user models.User
	if err := h.db.WithContext(ctx).Select("display_name").First(&user, "id = ?", userID).Error; err != nil {
		return ""
	}
	return user.DisplayName
}

type ListAwardsResponse struct {
	Body []AwardBody
}

func (h *AchievementHandler) listAwards(ctx context.Context, userID string) (*ListAwardsResponse, error) {
	awards, err := h.evaluator.ListAwards(ctx, userID)
	if err != nil {
		return nil, apiError(err)
	}

	catalog := h.evaluator.Catalog()
	res := &ListAwardsResponse{Body: make([]AwardBody, 0, len(awards))}
	for _, a := range awards {
		body := AwardBody{
			BadgeKey:      a.BadgeKey,
			PointsAwarded: a.PointsAwarded,
			Category:      a.Category,
			EarnedAt:      a.EarnedAt,
		}
		if b, err := catalog.Lookup(a.BadgeKey); err == nil {
			body.Name = b.Name
			body.Icon = b.Icon
		}
		res.Body = append(res.Body, body)
	}
	return res, nil
}

type ListMyAwardsRequest struct {
	auth.AuthInput
}

func (h *AchievementHandler) HandleListMyAwards(ctx context.Context, input *ListMyAwardsRequest) (*ListAwardsResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	return h.listAwards(ctx, userID)
}

type ListUserAwardsRequest struct {
	UserID string `path:"id" doc:"User ID"`
}

func (h *AchievementHandler) HandleListUserAwards(ctx context.Context, input *ListUserAwardsRequest) (*ListAwardsResponse, error) {
	if _, err := uuid.Parse(input.UserID); err != nil {
		return nil, huma.Error400BadRequest("Invalid user ID")
	}
	return h.listAwards(ctx, input.UserID)
}

type GrantAchievementRequest struct {
	auth.AuthInput
	Body struct {
		UserID   string `json:"user_id" doc:"User to grant the badge to" required:"true"`
		BadgeKey string `json:"badge_key" doc:"Catalog key of the badge" required:"true"`
	}
}

type GrantAchievementResponse struct {
	Body struct {
		Awarded bool   `json:"awarded"`
		Message string `json:"message"`
	}
}

// HandleGrantAchievement is the manual award path, limited to admins.
func (h *AchievementHandler) HandleGrantAchievement(ctx context.Context, input *GrantAchievementRequest) (*GrantAchievementResponse, error) {
	grantorID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if !h.authHandler.IsAdmin(grantorID) {
		return nil, huma.Error403Forbidden("Access denied: only admins can grant badges")
	}
	if _, err := uuid.Parse(input.Body.UserID); err != nil {
		return nil, huma.Error400BadRequest("Invalid user ID")
	}

	created, err := h.evaluator.AwardManually(ctx, input.Body.UserID, input.Body.BadgeKey)
	if err != nil {
		return nil, apiError(err)
	}

	res := &GrantAchievementResponse{}
	res.Body.Awarded = created
	if !created {
		res.Body.Message = "Badge already granted to this user"
		return res, nil
	}

	res.Body.Message = "Badge granted"
	if b, err := h.evaluator.Catalog().Lookup(input.Body.BadgeKey); err == nil {
		if err := h.notifier.NotifyBadge(input.Body.UserID, h.displayName(ctx, input.Body.UserID), b); err != nil {
			h.log.Warn("failed to send badge notification", "user_id", input.Body.UserID, "badge", b.Key, "error", err)
		}
	}
	h.log.Info("manual grant", "grantor", grantorID, "user_id", input.Body.UserID, "badge", input.Body.BadgeKey)
	return res, nil
}
