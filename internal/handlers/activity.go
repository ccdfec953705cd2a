package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/edusphere/edusphere-api/internal/auth"
	"github.com/edusphere/edusphere-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ActivityHandler struct {
	db           *gorm.DB
	authHandler  *auth.AuthHandler
	achievements *AchievementHandler
	now          func() time.Time
}

func NewActivityHandler(db *gorm.DB, authHandler *auth.AuthHandler, achievements *AchievementHandler) *ActivityHandler {
	return &ActivityHandler{db: db, authHandler: authHandler, achievements: achievements, now: time.Now}
}

// nextStreak advances a day streak. Activity on the same UTC day keeps it,
// the following day extends it, anything later starts over.
func nextStreak(streak int, last, now time.Time) int {
	if streak <= 0 || last.IsZero() {
		return 1
	}
	lastDay := last.UTC().Truncate(24 * time.Hour)
	today := now.UTC().Truncate(24 * time.Hour)
	switch days := int(today.Sub(lastDay).Hours() / 24); {
	case days <= 0:
		return streak
	case days == 1:
		return streak + 1
	default:
		return 1
	}
}

type RecordProgressRequest struct {
	auth.AuthInput
	Body struct {
		Subject   string `json:"subject" doc:"Subject of the lesson" required:"true" minLength:"1"`
		Grade     string `json:"grade" doc:"Grade level of the lesson" required:"true" minLength:"1"`
		Attempted int    `json:"attempted" doc:"Questions attempted in this session" minimum:"0"`
		Correct   int    `json:"correct" doc:"Questions answered correctly in this session" minimum:"0"`
	}
}

type ProgressBody struct {
	Subject        string    `json:"subject"`
	Grade          string    `json:"grade"`
	Attempted      int       `json:"attempted"`
	Correct        int       `json:"correct"`
	StreakDays     int       `json:"streak_days"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

type RecordProgressResponse struct {
	Body struct {
		Progress ProgressBody `json:"progress"`
		Awarded  []BadgeBody  `json:"awarded"`
	}
}

// HandleRecordProgress adds a lesson result to the caller's progress row.
// Lesson backends may call it with an integration key.
func (h *ActivityHandler) HandleRecordProgress(ctx context.Context, input *RecordProgressRequest) (*RecordProgressResponse, error) {
	userID, err := h.authHandler.AuthorizeIntegration(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if input.Body.Correct > input.Body.Attempted {
		return nil, huma.Error400BadRequest("Correct answers cannot exceed attempted questions")
	}

	subject := strings.ToLower(strings.TrimSpace(input.Body.Subject))
	grade := strings.TrimSpace(input.Body.Grade)
	now := h.now()

	var progress models.LessonProgress
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Make sure the row exists, then lock it; concurrent first lessons
		// for the same subject and grade land on one row.
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "subject"}, {Name: "grade"}},
			DoNothing: true,
		}).Create(&models.LessonProgress{UserID: userID, Subject: subject, Grade: grade}).Error
		if err != nil {
			return err
		}
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND subject = ? AND grade = ?", userID, subject, grade).
			First(&progress).Error
		if err != nil {
			return err
		}

		streak := nextStreak(progress.StreakDays, progress.LastActivityAt, now)
		err = tx.Model(&progress).Updates(map[string]any{
			"attempted":        gorm.Expr("attempted + ?", input.Body.Attempted),
			"correct":          gorm.Expr("correct + ?", input.Body.Correct),
			"streak_days":      streak,
			"last_activity_at": now,
		}).Error
		if err != nil {
			return err
		}
		progress.Attempted += input.Body.Attempted
		progress.Correct += input.Body.Correct
		progress.StreakDays = streak
		progress.LastActivityAt = now
		return nil
	})
	if err != nil {
		return nil, storageError("recording progress", err)
	}

	awarded, err := h.achievements.evaluateAndNotify(ctx, userID)
	if err != nil {
		return nil, apiError(err)
	}

	res := &RecordProgressResponse{}
	res.Body.Progress = ProgressBody{
		Subject:        progress.Subject,
		Grade:          progress.Grade,
		Attempted:      progress.Attempted,
		Correct:        progress.Correct,
		StreakDays:     progress.StreakDays,
		LastActivityAt: progress.LastActivityAt,
	}
	res.Body.Awarded = evaluateResponse(awarded).Body.Awarded
	return res, nil
}

type ShareContentRequest struct {
	auth.AuthInput
	Body struct {
		Title       string `json:"title" doc:"Title of the shared content" required:"true" minLength:"1"`
		ContentType string `json:"content_type" doc:"Kind of content, e.g. story or quiz"`
		Body        string `json:"body" doc:"The shared content"`
	}
}

type ShareContentResponse struct {
	Body struct {
		Share   models.SharedContent `json:"share"`
		Awarded []BadgeBody          `json:"awarded"`
	}
}

func (h *ActivityHandler) HandleShare(ctx context.Context, input *ShareContentRequest) (*ShareContentResponse, error) {
	userID, err := h.authHandler.AuthorizeIntegration(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	share := models.SharedContent{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       input.Body.Title,
		ContentType: input.Body.ContentType,
		Body:        input.Body.Body,
	}
	if err := h.db.WithContext(ctx).Create(&share).Error; err != nil {
		return nil, storageError("sharing content", err)
	}

	awarded, err := h.achievements.evaluateAndNotify(ctx, userID)
	if err != nil {
		return nil, apiError(err)
	}

	res := &ShareContentResponse{}
	res.Body.Share = share
	res.Body.Awarded = evaluateResponse(awarded).Body.Awarded
	return res, nil
}

type LikeShareRequest struct {
	auth.AuthInput
	ID string `path:"id" doc:"Shared content ID"`
}

type LikeShareResponse struct {
	Body struct {
		Likes int `json:"likes"`
	}
}

// HandleLike counts a like and re-evaluates the owner, not the caller.
func (h *ActivityHandler) HandleLike(ctx context.Context, input *LikeShareRequest) (*LikeShareResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	var share models.SharedContent
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.SharedContent{}).
			Where("id = ?", input.ID).
			Update("likes", gorm.Expr("likes + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&share, "id = ?", input.ID).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, huma.Error404NotFound("Shared content not found")
	}
	if err != nil {
		return nil, storageError("liking content", err)
	}

	if _, err := h.achievements.evaluateAndNotify(ctx, share.UserID); err != nil {
		return nil, apiError(err)
	}

	res := &LikeShareResponse{}
	res.Body.Likes = share.Likes
	return res, nil
}
