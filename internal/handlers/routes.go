package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/edusphere/edusphere-api/internal/auth"
	"github.com/edusphere/edusphere-api/internal/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Auth        *auth.AuthHandler
	Achievement *AchievementHandler
	Activity    *ActivityHandler
	Leaderboard *LeaderboardHandler
	Keys        *IntegrationKeyHandler
}

func secured(o *huma.Operation) {
	o.Security = []map[string][]string{{"bearerAuth": {}}, {"cookieAuth": {}}}
}

// integration marks operations lesson backends may call with an X-API-KEY.
func integration(o *huma.Operation) {
	o.Security = []map[string][]string{{"bearerAuth": {}}, {"cookieAuth": {}}, {"apiKeyAuth": {}}}
}

func RegisterRoutes(r *chi.Mux, cfg *config.Config, h Handlers) huma.API {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-KEY"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(h.Auth.AuthMiddleware)

	// Initialize Huma API
	humaConfig := huma.DefaultConfig("EduSphere API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearerAuth": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.CookieName,
		},
		"apiKeyAuth": {
			Type: "apiKey",
			In:   "header",
			Name: "X-API-KEY",
		},
	}
	api := humachi.New(r, humaConfig)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	huma.Get(api, "/badges", h.Achievement.HandleListBadges)
	huma.Get(api, "/users/{id}/achievements", h.Achievement.HandleListUserAwards)
	huma.Get(api, "/leaderboard", h.Leaderboard.HandleTop)
	huma.Get(api, "/leaderboard/users/{id}", h.Leaderboard.HandleUserStanding)

	// Protected routes
	huma.Get(api, "/me", h.Auth.HandleMe, secured)
	huma.Get(api, "/achievements", h.Achievement.HandleListMyAwards, secured)
	huma.Post(api, "/achievements/evaluate", h.Achievement.HandleEvaluate, secured)
	huma.Post(api, "/admin/achievements/award", h.Achievement.HandleGrantAchievement, secured)
	huma.Get(api, "/leaderboard/me", h.Leaderboard.HandleMyStanding, secured)

	huma.Post(api, "/progress", h.Activity.HandleRecordProgress, integration)
	huma.Post(api, "/shares", h.Activity.HandleShare, integration)
	huma.Post(api, "/shares/{id}/like", h.Activity.HandleLike, secured)

	huma.Post(api, "/api-keys", h.Keys.HandleCreate, secured)
	huma.Get(api, "/api-keys", h.Keys.HandleList, secured)
	huma.Delete(api, "/api-keys/{id}", h.Keys.HandleRevoke, secured)

	return api
}
