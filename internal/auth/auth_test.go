package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/edusphere/edusphere-api/internal/config"
	"github.com/edusphere/edusphere-api/internal/models"
	"github.com/edusphere/edusphere-api/internal/testutil"
	"github.com/golang-jwt/jwt/v5"
)

func TestHandleMe(t *testing.T) {
	db := testutil.DB(t)

	cfg := &config.Config{JWTSecret: "test-secret", AdminUserIDs: []string{testUserID}}
	handler := NewAuthHandler(cfg, db)

	t.Run("Authenticated", func(t *testing.T) {
		claims := Claims{
			Email:        "ada@example.com",
			UserMetadata: map[string]any{"full_name": "Ada Lovelace"},
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   testUserID,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))

		resp, err := handler.HandleMe(context.Background(), &AuthInput{Authorization: "Bearer " + token})
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}
		if resp.Body.DisplayName != "Ada Lovelace" {
			t.Errorf("expected display name Ada Lovelace, got %s", resp.Body.DisplayName)
		}
		if !resp.Body.IsAdmin {
			t.Errorf("expected admin flag")
		}

		var user models.User
		if err := db.First(&user, "id = ?", testUserID).Error; err != nil {
			t.Fatalf("expected user row: %v", err)
		}
		if user.Email != "ada@example.com" {
			t.Errorf("expected email ada@example.com, got %s", user.Email)
		}
	})

	t.Run("Cookie", func(t *testing.T) {
		token, _ := handler.GenerateToken(testUserID)
		resp, err := handler.HandleMe(context.Background(), &AuthInput{Cookie: "theme=dark; auth_token=" + token})
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}
		if resp.Body.ID != testUserID {
			t.Errorf("expected id %s, got %s", testUserID, resp.Body.ID)
		}
		// Profile fields from the earlier token are kept.
		if resp.Body.DisplayName != "Ada Lovelace" {
			t.Errorf("expected display name to be kept, got %s", resp.Body.DisplayName)
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		_, err := handler.HandleMe(context.Background(), &AuthInput{})
		if err == nil {
			t.Fatal("expected error for unauthenticated request, got nil")
		}
	})
}

func TestAuthorize_APIKey(t *testing.T) {
	db := testutil.DB(t)
	handler := NewAuthHandler(&config.Config{JWTSecret: "test-secret"}, db)

	expired := time.Now().Add(-time.Hour)
	db.Create(&models.APIKey{UserID: testUserID, KeyHash: HashAPIKey("live-key"), Name: "lesson-backend"})
	db.Create(&models.APIKey{UserID: testUserID, KeyHash: HashAPIKey("old-key"), Name: "old", ExpiresAt: &expired})

	userID, err := handler.AuthorizeIntegration(context.Background(), AuthInput{APIKey: "live-key"})
	if err != nil {
		t.Fatalf("AuthorizeIntegration returned error: %v", err)
	}
	if userID != testUserID {
		t.Errorf("expected %s, got %s", testUserID, userID)
	}

	var key models.APIKey
	db.Where("key_hash = ?", HashAPIKey("live-key")).First(&key)
	if key.LastUsedAt == nil {
		t.Errorf("expected last_used_at to be set")
	}

	if _, err := handler.AuthorizeIntegration(context.Background(), AuthInput{APIKey: "old-key"}); err == nil {
		t.Error("expected expired key to be rejected")
	}
	if _, err := handler.AuthorizeIntegration(context.Background(), AuthInput{APIKey: "nope"}); err == nil {
		t.Error("expected unknown key to be rejected")
	}
}

func TestAuthorize_RejectsAPIKeys(t *testing.T) {
	db := testutil.DB(t)
	handler := NewAuthHandler(&config.Config{JWTSecret: "test-secret"}, db)
	db.Create(&models.APIKey{UserID: testUserID, KeyHash: HashAPIKey("live-key"), Name: "lesson-backend"})

	_, err := handler.Authorize(context.Background(), AuthInput{APIKey: "live-key"})
	if statusOf(err) != http.StatusForbidden {
		t.Errorf("expected 403 for API key on a user operation, got %v", err)
	}

	// Same when the middleware already identified the key.
	ctx := context.WithValue(context.Background(), UserIDKey, testUserID)
	ctx = context.WithValue(ctx, viaAPIKeyKey, true)
	_, err = handler.Authorize(ctx, AuthInput{})
	if statusOf(err) != http.StatusForbidden {
		t.Errorf("expected 403 for API key caller in context, got %v", err)
	}
	if userID, err := handler.AuthorizeIntegration(ctx, AuthInput{}); err != nil || userID != testUserID {
		t.Errorf("expected integration access for %s, got %q, %v", testUserID, userID, err)
	}

	_, err = handler.HandleMe(context.Background(), &AuthInput{APIKey: "live-key"})
	if statusOf(err) != http.StatusForbidden {
		t.Errorf("expected 403 from /me with an API key, got %v", err)
	}
}

func statusOf(err error) int {
	var se huma.StatusError
	if errors.As(err, &se) {
		return se.GetStatus()
	}
	return 0
}

func TestCookieValue(t *testing.T) {
	if got := cookieValue("theme=dark; auth_token=abc", CookieName); got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
	if got := cookieValue("theme=dark", CookieName); got != "" {
		t.Errorf("expected empty value, got %q", got)
	}
	if got := cookieValue("", CookieName); got != "" {
		t.Errorf("expected empty value, got %q", got)
	}
}

func TestAuthorize_PrefersContext(t *testing.T) {
	handler := NewAuthHandler(&config.Config{JWTSecret: "test-secret"}, nil)
	ctx := context.WithValue(context.Background(), UserIDKey, testUserID)

	userID, err := handler.Authorize(ctx, AuthInput{})
	if err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}
	if userID != testUserID {
		t.Errorf("expected %s, got %s", testUserID, userID)
	}
}

func TestParseToken_RejectsNonUUIDSubject(t *testing.T) {
	handler := NewAuthHandler(&config.Config{JWTSecret: "test-secret"}, nil)
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))

	if _, err := handler.ParseToken(token); err == nil {
		t.Error("expected error for non-UUID subject")
	}
}
