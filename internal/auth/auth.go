package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/edusphere/edusphere-api/internal/config"
	"github.com/edusphere/edusphere-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CookieName    = "auth_token"
	TokenDuration = 24 * time.Hour
)

// Claims follows the identity provider's access token layout: the user ID is
// the subject, profile fields live in user_metadata.
type Claims struct {
	Email        string         `json:"email,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

type Identity struct {
	UserID      string
	Email       string
	DisplayName string
}

type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

// AuthInput is embedded in every operation that needs a caller.
type AuthInput struct {
	Cookie        string `header:"Cookie"`
	Authorization string `header:"Authorization"`
	APIKey        string `header:"X-API-KEY"`
}

func (h *AuthHandler) GenerateToken(userID string) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

func (h *AuthHandler) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(h.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("invalid subject %q", claims.Subject)
	}
	return claims, nil
}

// Authorize resolves the caller's user ID for operations that need a signed-in
// user. API keys are refused here; see AuthorizeIntegration.
func (h *AuthHandler) Authorize(ctx context.Context, in AuthInput) (string, error) {
	return h.authorize(ctx, in, false)
}

// AuthorizeIntegration also accepts API keys. It guards the activity
// reporting operations that lesson backends call on a user's behalf.
func (h *AuthHandler) AuthorizeIntegration(ctx context.Context, in AuthInput) (string, error) {
	return h.authorize(ctx, in, true)
}

func (h *AuthHandler) authorize(ctx context.Context, in AuthInput, allowAPIKey bool) (string, error) {
	// Prefer what the middleware already put in the context.
	if userID, ok := ctx.Value(UserIDKey).(string); ok && userID != "" {
		if ViaAPIKey(ctx) && !allowAPIKey {
			return "", errAPIKeyNotAllowed()
		}
		return userID, nil
	}
	id, err := h.identify(ctx, in, allowAPIKey)
	if err != nil {
		return "", err
	}
	return id.UserID, nil
}

func errAPIKeyNotAllowed() error {
	return huma.Error403Forbidden("Forbidden: API keys may only report activity")
}

func (h *AuthHandler) identify(ctx context.Context, in AuthInput, allowAPIKey bool) (*Identity, error) {
	if in.APIKey != "" || ViaAPIKey(ctx) {
		if !allowAPIKey {
			return nil, errAPIKeyNotAllowed()
		}
		userID, err := h.userForAPIKey(ctx, in.APIKey)
		if err != nil {
			return nil, huma.Error401Unauthorized("Unauthorized: " + err.Error())
		}
		return &Identity{UserID: userID}, nil
	}

	tokenString := bearerToken(in.Authorization)
	if tokenString == "" {
		tokenString = cookieValue(in.Cookie, CookieName)
	}
	if tokenString == "" {
		return nil, huma.Error401Unauthorized("Unauthorized: No token found")
	}

	claims, err := h.ParseToken(tokenString)
	if err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized: Invalid token")
	}
	return identityFromClaims(claims), nil
}

// HashAPIKey is what gets stored; the plain key is only shown once at creation.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func (h *AuthHandler) userForAPIKey(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("missing API key")
	}
	var keyModel models.APIKey
	if err := h.db.WithContext(ctx).Where("key_hash = ?", HashAPIKey(key)).First(&keyModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errors.New("unknown API key")
		}
		return "", err
	}
	if keyModel.ExpiresAt != nil && time.Now().After(*keyModel.ExpiresAt) {
		return "", errors.New("API key expired")
	}
	h.db.WithContext(ctx).Model(&keyModel).Update("last_used_at", time.Now())
	return keyModel.UserID, nil
}

func identityFromClaims(c *Claims) *Identity {
	id := &Identity{UserID: c.Subject, Email: c.Email}
	for _, k := range []string{"full_name", "name", "user_name"} {
		if v, ok := c.UserMetadata[k].(string); ok && v != "" {
			id.DisplayName = v
			break
		}
	}
	if id.DisplayName == "" && id.Email != "" {
		id.DisplayName = strings.SplitN(id.Email, "@", 2)[0]
	}
	return id
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func cookieValue(header, name string) string {
	if header == "" {
		return ""
	}
	cookies, err := http.ParseCookie(header)
	if err != nil {
		return ""
	}
	for _, c := range cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

type MeResponse struct {
	Body struct {
		ID          string `json:"id"`
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		AvatarURL   string `json:"avatar_url"`
		IsAdmin     bool   `json:"is_admin"`
	}
}

// HandleMe returns the caller and keeps the local user directory in sync with
// the token's profile fields.
func (h *AuthHandler) HandleMe(ctx context.Context, input *AuthInput) (*MeResponse, error) {
	id, err := h.identify(ctx, *input, false)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := h.db.WithContext(ctx).FirstOrInit(&user, models.User{ID: id.UserID}).Error; err != nil {
		return nil, huma.Error500InternalServerError("Database error")
	}
	if id.Email != "" {
		user.Email = id.Email
	}
	if id.DisplayName != "" {
		user.DisplayName = id.DisplayName
	}
	if err := h.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to save user")
	}

	resp := &MeResponse{}
	resp.Body.ID = user.ID
	resp.Body.Email = user.Email
	resp.Body.DisplayName = user.DisplayName
	resp.Body.AvatarURL = user.AvatarURL
	resp.Body.IsAdmin = h.cfg.IsAdmin(user.ID)
	return resp, nil
}

func (h *AuthHandler) IsAdmin(userID string) bool {
	return h.cfg.IsAdmin(userID)
}
