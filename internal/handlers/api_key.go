package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/edusphere/edusphere-api/internal/auth"
	"github.com/edusphere/edusphere-api/internal/models"
	"gorm.io/gorm"
)

const (
	integrationKeyPrefix = "esk_"
	// Characters of the key kept in plain text so owners can tell keys apart.
	integrationKeyShown = len(integrationKeyPrefix) + 8
	maxIntegrationKeys  = 10
)

// IntegrationKeyHandler issues the keys lesson backends use to report
// progress and shares for their owner. A key can never manage keys or grant
// badges; only the key's hash is persisted.
type IntegrationKeyHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
	now         func() time.Time
}

func NewIntegrationKeyHandler(db *gorm.DB, authHandler *auth.AuthHandler) *IntegrationKeyHandler {
	return &IntegrationKeyHandler{db: db, authHandler: authHandler, now: time.Now}
}

func newIntegrationKey() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return integrationKeyPrefix + hex.EncodeToString(raw), nil
}

type IntegrationKeyBody struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix" doc:"Leading characters of the key"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

func integrationKeyBody(k models.APIKey) IntegrationKeyBody {
	return IntegrationKeyBody{
		ID:         k.ID,
		Name:       k.Name,
		Prefix:     k.Prefix,
		CreatedAt:  k.CreatedAt,
		ExpiresAt:  k.ExpiresAt,
		LastUsedAt: k.LastUsedAt,
	}
}

type CreateIntegrationKeyRequest struct {
	auth.AuthInput
	Body struct {
		Name      string     `json:"name" doc:"Lesson backend using this key" required:"true" minLength:"1" maxLength:"100"`
		ExpiresAt *time.Time `json:"expires_at,omitempty" doc:"Optional expiry, must be in the future"`
	}
}

type CreateIntegrationKeyResponse struct {
	Body struct {
		IntegrationKeyBody
		Key string `json:"key" doc:"The full key. It is only returned once."`
	}
}

func (h *IntegrationKeyHandler) HandleCreate(ctx context.Context, input *CreateIntegrationKeyRequest) (*CreateIntegrationKeyResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if input.Body.ExpiresAt != nil && !input.Body.ExpiresAt.After(h.now()) {
		return nil, huma.Error400BadRequest("Expiry must be in the future")
	}

	var count int64
	if err := h.db.WithContext(ctx).Model(&models.APIKey{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, storageError("counting integration keys", err)
	}
	if count >= maxIntegrationKeys {
		return nil, huma.Error409Conflict(fmt.Sprintf("At most %d integration keys per user", maxIntegrationKeys))
	}

	key, err := newIntegrationKey()
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate key")
	}
	record := models.APIKey{
		UserID:    userID,
		KeyHash:   auth.HashAPIKey(key),
		Prefix:    key[:integrationKeyShown],
		Name:      input.Body.Name,
		ExpiresAt: input.Body.ExpiresAt,
	}
	if err := h.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, storageError("storing integration key", err)
	}

	res := &CreateIntegrationKeyResponse{}
	res.Body.IntegrationKeyBody = integrationKeyBody(record)
	res.Body.Key = key
	return res, nil
}

type ListIntegrationKeysRequest struct {
	auth.AuthInput
}

type ListIntegrationKeysResponse struct {
	Body []IntegrationKeyBody
}

func (h *IntegrationKeyHandler) HandleList(ctx context.Context, input *ListIntegrationKeysRequest) (*ListIntegrationKeysResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var keys []models.APIKey
	if err := h.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&keys).Error; err != nil {
		return nil, storageError("listing integration keys", err)
	}

	body := make([]IntegrationKeyBody, 0, len(keys))
	for _, k := range keys {
		body = append(body, integrationKeyBody(k))
	}
	return &ListIntegrationKeysResponse{Body: body}, nil
}

type RevokeIntegrationKeyRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

// HandleRevoke deletes one of the caller's keys. Keys owned by someone else
// are reported as missing.
func (h *IntegrationKeyHandler) HandleRevoke(ctx context.Context, input *RevokeIntegrationKeyRequest) (*struct{}, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	res := h.db.WithContext(ctx).Where("id = ? AND user_id = ?", input.ID, userID).Delete(&models.APIKey{})
	if res.Error != nil {
		return nil, storageError("revoking integration key", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, huma.Error404NotFound("Integration key not found")
	}
	return nil, nil
}
