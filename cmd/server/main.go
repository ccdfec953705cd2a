package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/edusphere/edusphere-api/internal/achievements"
	"github.com/edusphere/edusphere-api/internal/auth"
	"github.com/edusphere/edusphere-api/internal/badges"
	"github.com/edusphere/edusphere-api/internal/config"
	"github.com/edusphere/edusphere-api/internal/database"
	"github.com/edusphere/edusphere-api/internal/handlers"
	"github.com/edusphere/edusphere-api/internal/leaderboard"
	"github.com/edusphere/edusphere-api/internal/logger"
	"github.com/edusphere/edusphere-api/internal/notifier"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	logg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	// Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		logg.Fatal("database init failed", "error", err)
	}

	var badgeNotifier notifier.Notifier = notifier.NopNotifier{}
	if cfg.DiscordBotToken != "" {
		discordNotifier, err := notifier.NewDiscordNotifier(cfg.DiscordBotToken, cfg.DiscordNotificationsChannelID, logg)
		if err != nil {
			logg.Warn("Discord notifier not initialized", "error", err)
		} else {
			badgeNotifier = discordNotifier
		}
	}

	// Achievement engine
	catalog := badges.Default()
	activity := achievements.NewActivityStore(db)
	ledger := achievements.NewGormLedger(db)
	evaluator := achievements.NewEvaluator(catalog, achievements.NewAggregator(activity, activity), ledger, logg)
	board := leaderboard.NewService(ledger, leaderboard.NewUserDirectory(db))

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db)
	achievementHandler := handlers.NewAchievementHandler(db, evaluator, badgeNotifier, authHandler, logg)

	r := chi.NewRouter()
	handlers.RegisterRoutes(r, cfg, handlers.Handlers{
		Auth:        authHandler,
		Achievement: achievementHandler,
		Activity:    handlers.NewActivityHandler(db, authHandler, achievementHandler),
		Leaderboard: handlers.NewLeaderboardHandler(board, authHandler, cfg.LeaderboardDefaultLimit, cfg.LeaderboardMaxLimit),
		Keys:        handlers.NewIntegrationKeyHandler(db, authHandler),
	})

	// Start Server
	logg.Info("starting server", "port", cfg.Port, "badges", catalog.Len(), "driver", cfg.DatabaseDriver)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		logg.Fatal("server stopped", "error", err)
	}
}
