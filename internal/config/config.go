package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set")

type Config struct {
	Env   string
	Port  int
	DBURL string

	JWTSecret      string
	SessionTTL     time.Duration
	VerifyTokenTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AdminEmail    string
	AdminUsername string
	AdminPassword string

	CORSAllowedOrigins []string

	OTLPEndpoint string

	// prefix for links in verification emails
	VerifyBaseURL string
}

func Load() (Config, error) {
	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 8080)

	// the store address is the one piece of config the process cannot run without
	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		return Config{}, ErrMissingDatabaseURL
	}

	cfg := Config{
		Env:   env,
		Port:  port,
		DBURL: dbURL,

		JWTSecret:      os.Getenv("JWT_SECRET"),
		SessionTTL:     24 * time.Hour,
		VerifyTokenTTL: time.Duration(getEnvInt("VERIFY_TOKEN_TTL_MINUTES", 60)) * time.Minute,

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),

		VerifyBaseURL: getEnv("VERIFY_BASE_URL", "http://localhost:3000"),
	}

	return cfg, nil
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")

	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)

		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}
