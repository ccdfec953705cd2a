package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port                          string   `mapstructure:"PORT"`
	DatabaseDriver                string   `mapstructure:"DATABASE_DRIVER"`
	DatabasePath                  string   `mapstructure:"DATABASE_PATH"`
	DatabaseURL                   string   `mapstructure:"DATABASE_URL"`
	JWTSecret                     string   `mapstructure:"JWT_SECRET"`
	AdminUserIDs                  []string `mapstructure:"ADMIN_USER_IDS"`
	EnableCORS                    bool     `mapstructure:"ENABLE_CORS"`
	CORSAllowedOrigins            []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	LogMode                       string   `mapstructure:"LOG_MODE"`
	LeaderboardDefaultLimit       int      `mapstructure:"LEADERBOARD_DEFAULT_LIMIT"`
	LeaderboardMaxLimit           int      `mapstructure:"LEADERBOARD_MAX_LIMIT"`
	DiscordBotToken               string   `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string   `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
}

// IsAdmin reports whether userID may grant badges manually.
func (c *Config) IsAdmin(userID string) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func LoadConfig() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_PATH", "edusphere.db")
	viper.SetDefault("LOG_MODE", "development")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	viper.SetDefault("LEADERBOARD_DEFAULT_LIMIT", 10)
	viper.SetDefault("LEADERBOARD_MAX_LIMIT", 100)

	viper.BindEnv("DATABASE_URL")
	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("ADMIN_USER_IDS")
	viper.BindEnv("ENABLE_CORS")
	viper.BindEnv("CORS_ALLOWED_ORIGINS")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	if config.LeaderboardMaxLimit <= 0 {
		config.LeaderboardMaxLimit = 100
	}
	if config.LeaderboardDefaultLimit <= 0 || config.LeaderboardDefaultLimit > config.LeaderboardMaxLimit {
		config.LeaderboardDefaultLimit = 10
	}

	return &config
}
