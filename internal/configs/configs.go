package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

type Config struct {
	AppURL                 string
	DatabaseDSN            string
	RedisAddr              string
	SessionKeyPrefix       string
	SessionTTLMinutes      int
	JWTSecret              string
	UploadDir              string
	RateLimit              int
	JanitorIntervalSeconds int
	JanitorMinAgeSeconds   int
	ShutdownTimeoutSeconds int
}

func Load() Config {
	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8080")
	redisHost := getEnv("REDIS_HOST", "127.0.0.1")
	redisPort := getEnv("REDIS_PORT", "6379")

	cfg := Config{
		AppURL:                 fmt.Sprintf("%s:%s", appHost, appPort),
		DatabaseDSN:            getEnv("DATABASE_DSN", "taskboard.db"),
		RedisAddr:              fmt.Sprintf("%s:%s", redisHost, redisPort),
		SessionKeyPrefix:       getEnv("SESSION_KEY_PREFIX", "taskboard_session"),
		SessionTTLMinutes:      getEnvAsInt("SESSION_TTL_MINUTES", 720),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		UploadDir:              getEnv("UPLOAD_DIR", "uploads"),
		RateLimit:              getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
		JanitorIntervalSeconds: getEnvAsInt("ATTACHMENT_JANITOR_INTERVAL_SECONDS", 300),
		JanitorMinAgeSeconds:   getEnvAsInt("ATTACHMENT_JANITOR_MIN_AGE_SECONDS", 3600),
		ShutdownTimeoutSeconds: getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 20),
	}

	validate(cfg)
	return cfg
}

func validate(cfg Config) {
	if cfg.AppURL == "" {
		log.Fatal("APP_URL must not be empty (e.g. 127.0.0.1:8080)")
	}
	if cfg.DatabaseDSN == "" {
		log.Fatal("DATABASE_DSN must not be empty")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must not be empty")
	}
	if cfg.SessionTTLMinutes <= 0 {
		log.Fatal("SESSION_TTL_MINUTES must be greater than 0")
	}
	if cfg.UploadDir == "" {
		log.Fatal("UPLOAD_DIR must not be empty")
	}
	if cfg.RateLimit <= 0 {
		log.Fatal("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if cfg.JanitorIntervalSeconds <= 0 {
		log.Fatal("ATTACHMENT_JANITOR_INTERVAL_SECONDS must be greater than 0")
	}
	if cfg.JanitorMinAgeSeconds <= 0 {
		log.Fatal("ATTACHMENT_JANITOR_MIN_AGE_SECONDS must be greater than 0")
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid integer value for %s", key)
		}
		return i
	}
	return defaultVal
}
