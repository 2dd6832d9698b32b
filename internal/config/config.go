package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	// Outbound email channel (Resend-compatible HTTP API)
	EmailAPIURL string
	EmailAPIKey string
	EmailFrom   string

	// Chat-bot integration
	BotAPIBase       string
	BotToken         string
	BotWebhookSecret string

	LeaderboardWindowDays int
	LeaderboardCacheTTL   time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: getEnv("MEILISEARCH_HOST", "http://localhost:7700"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		EmailAPIURL: getEnv("EMAIL_API_URL", "https://api.resend.com/emails"),
		EmailAPIKey: os.Getenv("EMAIL_API_KEY"),
		EmailFrom:   getEnv("EMAIL_FROM", "FitLog <noreply@fitlog.app>"),

		BotAPIBase:       getEnv("BOT_API_BASE", "https://api.telegram.org"),
		BotToken:         os.Getenv("BOT_TOKEN"),
		BotWebhookSecret: os.Getenv("BOT_WEBHOOK_SECRET"),
	}

	windowDays, err := strconv.Atoi(getEnv("LEADERBOARD_WINDOW_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEADERBOARD_WINDOW_DAYS: %w", err)
	}
	cfg.LeaderboardWindowDays = windowDays

	cfg.LeaderboardCacheTTL, err = time.ParseDuration(getEnv("LEADERBOARD_CACHE_TTL", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEADERBOARD_CACHE_TTL: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
