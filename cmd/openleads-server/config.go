package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/openleads/openleads"
	"github.com/openleads/openleads/mail"
)

type serverConfig struct {
	Addr           string
	AllowedOrigins []string

	RedisAddr     string
	RedisPassword string

	DatabaseURL string

	Mail mail.Config

	Engine openleads.Config
}

// loadConfig reads .env (if present) and the environment. Secrets have no
// defaults; the process refuses to start without them.
func loadConfig() (serverConfig, error) {
	_ = godotenv.Load()

	cfg := serverConfig{
		Addr:           envOr("ADDR", ":8080"),
		AllowedOrigins: []string{envOr("CORS_ORIGIN", "http://localhost:3000")},
		RedisAddr:      envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Engine:         openleads.DefaultConfig(),
	}

	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL required")
	}

	access := os.Getenv("JWT_ACCESS_SECRET")
	refresh := os.Getenv("JWT_REFRESH_SECRET")
	if access == "" || refresh == "" {
		return cfg, fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET required")
	}
	cfg.Engine.JWT.AccessSecret = []byte(access)
	cfg.Engine.JWT.RefreshSecret = []byte(refresh)

	// Cookies are Secure everywhere except explicit local development.
	if os.Getenv("ENV") == "development" {
		cfg.Engine.Cookie.Secure = false
		cfg.Engine.Cookie.SameSite = http.SameSiteLaxMode
	}

	port, err := strconv.Atoi(envOr("SMTP_PORT", "587"))
	if err != nil {
		return cfg, fmt.Errorf("SMTP_PORT: %w", err)
	}
	cfg.Mail = mail.Config{
		Host:     envOr("SMTP_HOST", "localhost"),
		Port:     port,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     envOr("SMTP_FROM", "no-reply@openleads.app"),
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
