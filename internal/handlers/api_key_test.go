package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/edusphere/edusphere-api/internal/auth"
	"github.com/edusphere/edusphere-api/internal/badges"
	"github.com/edusphere/edusphere-api/internal/models"
	"github.com/go-chi/chi/v5"
)

func createKey(t *testing.T, env *testEnv, as auth.AuthInput, name string) *CreateIntegrationKeyResponse {
	t.Helper()
	req := &CreateIntegrationKeyRequest{AuthInput: as}
	req.Body.Name = name
	resp, err := env.handlers.Keys.HandleCreate(context.Background(), req)
	if err != nil {
		t.Fatalf("HandleCreate returned error: %v", err)
	}
	return resp
}

func TestIntegrationKeys_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createKey(t, env, env.learnerAuth, "math-backend")
	key := created.Body.Key
	if !strings.HasPrefix(key, "esk_") || !strings.HasPrefix(key, created.Body.Prefix) {
		t.Errorf("unexpected key %q with prefix %q", key, created.Body.Prefix)
	}

	var stored models.APIKey
	if err := env.db.First(&stored, created.Body.ID).Error; err != nil {
		t.Fatalf("failed to load key: %v", err)
	}
	if stored.KeyHash != auth.HashAPIKey(key) || strings.Contains(stored.KeyHash, key) {
		t.Errorf("expected only the key hash to be stored, got %q", stored.KeyHash)
	}

	list, err := env.handlers.Keys.HandleList(ctx, &ListIntegrationKeysRequest{AuthInput: env.learnerAuth})
	if err != nil {
		t.Fatalf("HandleList returned error: %v", err)
	}
	if len(list.Body) != 1 || list.Body[0].Prefix != created.Body.Prefix {
		t.Errorf("unexpected listing %+v", list.Body)
	}

	// Another user cannot revoke it.
	_, err = env.handlers.Keys.HandleRevoke(ctx, &RevokeIntegrationKeyRequest{AuthInput: env.adminAuth, ID: created.Body.ID})
	if statusOf(err) != http.StatusNotFound {
		t.Errorf("expected 404 revoking someone else's key, got %v", err)
	}

	if _, err := env.handlers.Keys.HandleRevoke(ctx, &RevokeIntegrationKeyRequest{AuthInput: env.learnerAuth, ID: created.Body.ID}); err != nil {
		t.Fatalf("HandleRevoke returned error: %v", err)
	}
	_, err = env.handlers.Activity.HandleShare(ctx, &ShareContentRequest{AuthInput: auth.AuthInput{APIKey: key}})
	if statusOf(err) != http.StatusUnauthorized {
		t.Errorf("expected 401 for a revoked key, got %v", err)
	}
}

func TestIntegrationKeys_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := &CreateIntegrationKeyRequest{AuthInput: env.learnerAuth}
	req.Body.Name = "stale"
	past := time.Now().Add(-time.Minute)
	req.Body.ExpiresAt = &past
	if _, err := env.handlers.Keys.HandleCreate(ctx, req); statusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400 for past expiry, got %v", err)
	}

	for i := 0; i < maxIntegrationKeys; i++ {
		createKey(t, env, env.learnerAuth, "backend")
	}
	req.Body.ExpiresAt = nil
	if _, err := env.handlers.Keys.HandleCreate(ctx, req); statusOf(err) != http.StatusConflict {
		t.Errorf("expected 409 past the key limit, got %v", err)
	}
}

func TestIntegrationKeys_ReportActivity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	keyAuth := auth.AuthInput{APIKey: createKey(t, env, env.learnerAuth, "lesson-backend").Body.Key}

	progress := &RecordProgressRequest{AuthInput: keyAuth}
	progress.Body.Subject = "math"
	progress.Body.Grade = "5"
	progress.Body.Attempted = 4
	progress.Body.Correct = 3
	resp, err := env.handlers.Activity.HandleRecordProgress(ctx, progress)
	if err != nil {
		t.Fatalf("HandleRecordProgress with key returned error: %v", err)
	}
	if got := awardedKeys(resp.Body.Awarded); len(got) != 1 || got[0] != badges.KeyFirstLesson {
		t.Errorf("expected [first_lesson], got %v", got)
	}

	share := &ShareContentRequest{AuthInput: keyAuth}
	share.Body.Title = "Times tables"
	shareResp, err := env.handlers.Activity.HandleShare(ctx, share)
	if err != nil {
		t.Fatalf("HandleShare with key returned error: %v", err)
	}
	if shareResp.Body.Share.UserID != learnerID {
		t.Errorf("expected share owned by %s, got %s", learnerID, shareResp.Body.Share.UserID)
	}

	var stored models.APIKey
	env.db.Where("key_hash = ?", auth.HashAPIKey(keyAuth.APIKey)).First(&stored)
	if stored.LastUsedAt == nil {
		t.Error("expected last_used_at to be recorded")
	}
}

func TestIntegrationKeys_CannotActAsOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	adminKey := auth.AuthInput{APIKey: createKey(t, env, env.adminAuth, "admin-tools").Body.Key}

	grant := &GrantAchievementRequest{AuthInput: adminKey}
	grant.Body.UserID = learnerID
	grant.Body.BadgeKey = badges.KeyCommunityStar
	if _, err := env.handlers.Achievement.HandleGrantAchievement(ctx, grant); statusOf(err) != http.StatusForbidden {
		t.Errorf("expected 403 granting with a key, got %v", err)
	}

	create := &CreateIntegrationKeyRequest{AuthInput: adminKey}
	create.Body.Name = "minted"
	if _, err := env.handlers.Keys.HandleCreate(ctx, create); statusOf(err) != http.StatusForbidden {
		t.Errorf("expected 403 minting with a key, got %v", err)
	}
	if _, err := env.handlers.Keys.HandleList(ctx, &ListIntegrationKeysRequest{AuthInput: adminKey}); statusOf(err) != http.StatusForbidden {
		t.Errorf("expected 403 listing with a key, got %v", err)
	}
	if _, err := env.handlers.Keys.HandleRevoke(ctx, &RevokeIntegrationKeyRequest{AuthInput: adminKey, ID: 1}); statusOf(err) != http.StatusForbidden {
		t.Errorf("expected 403 revoking with a key, got %v", err)
	}

	var count int64
	env.db.Model(&models.UserAchievement{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no awards, got %d", count)
	}
}

func TestIntegrationKeys_Routes(t *testing.T) {
	env := newTestEnv(t)
	key := createKey(t, env, env.adminAuth, "admin-tools").Body.Key
	r := chi.NewRouter()
	RegisterRoutes(r, env.cfg, env.handlers)

	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, "/progress", `{"subject":"art","grade":"2","attempted":1,"correct":1}`, http.StatusOK},
		{http.MethodPost, "/shares", `{"title":"Colour wheel","content_type":"poster","body":"red, yellow, blue"}`, http.StatusOK},
		{http.MethodPost, "/admin/achievements/award", `{"user_id":"` + learnerID + `","badge_key":"early_bird"}`, http.StatusForbidden},
		{http.MethodPost, "/api-keys", `{"name":"minted"}`, http.StatusForbidden},
		{http.MethodGet, "/api-keys", "", http.StatusForbidden},
		{http.MethodGet, "/achievements", "", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			req.Header.Set("X-API-KEY", key)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rr.Code, rr.Body.String())
			}
		})
	}
}
