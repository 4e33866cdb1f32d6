package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr                string
	DatabaseURL         string
	JWTSecret           string
	TokenTTL            time.Duration
	Environment         string
	SeedFounderEmail    string
	SeedFounderPassword string
	EmailFrom           string
	EmailEnabled        bool
	SMTPHost            string
	SMTPPort            int
	SMTPUser            string
	SMTPPassword        string
	SMTPUseTLS          bool
	RunMigrations       bool
	RunSeed             bool
	MigrationsDir       string
	MaxBodyBytes        int64
	RateLimitPerMinute  int

	// Leave policy knobs. Defaults mirror the company handbook:
	// 18 annual days, 14 medical days, 6 carryforward days granted when
	// at least 10 annual days are still unused at year end.
	AnnualAllocation      int
	MedicalAllocation     int
	CarryforwardLimit     int
	CarryforwardThreshold int

	SchedulerEnabled  bool
	SchedulerTimezone string
	JobMaxAttempts    int
	JobRetryBackoff   time.Duration

	MetricsEnabled bool
}

func Load() Config {
	return Config{
		Addr:                getEnv("APP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		TokenTTL:            getEnvDuration("TOKEN_TTL", 12*time.Hour),
		Environment:         getEnv("APP_ENV", "development"),
		SeedFounderEmail:    getEnv("SEED_FOUNDER_EMAIL", ""),
		SeedFounderPassword: getEnv("SEED_FOUNDER_PASSWORD", ""),
		EmailFrom:           getEnv("EMAIL_FROM", "no-reply@example.com"),
		EmailEnabled:        getEnvBool("EMAIL_ENABLED", false),
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            getEnvInt("SMTP_PORT", 587),
		SMTPUser:            getEnv("SMTP_USER", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:          getEnvBool("SMTP_USE_TLS", true),
		RunMigrations:       getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:             getEnvBool("RUN_SEED", true),
		MigrationsDir:       getEnv("MIGRATIONS_DIR", "migrations"),
		MaxBodyBytes:        int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		AnnualAllocation:      getEnvInt("ANNUAL_ALLOCATION", 18),
		MedicalAllocation:     getEnvInt("MEDICAL_ALLOCATION", 14),
		CarryforwardLimit:     getEnvInt("CARRYFORWARD_LIMIT", 6),
		CarryforwardThreshold: getEnvInt("CARRYFORWARD_THRESHOLD", 10),

		SchedulerEnabled:  getEnvBool("SCHEDULER_ENABLED", true),
		SchedulerTimezone: getEnv("SCHEDULER_TIMEZONE", "UTC"),
		JobMaxAttempts:    getEnvInt("JOB_MAX_ATTEMPTS", 3),
		JobRetryBackoff:   getEnvDuration("JOB_RETRY_BACKOFF", time.Minute),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedFounderPassword) == "" {
			return fmt.Errorf("SEED_FOUNDER_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	if c.AnnualAllocation <= 0 || c.MedicalAllocation <= 0 {
		return fmt.Errorf("leave allocations must be positive")
	}
	if c.CarryforwardLimit < 0 || c.CarryforwardThreshold < 0 {
		return fmt.Errorf("carryforward settings must not be negative")
	}
	if _, err := time.LoadLocation(c.SchedulerTimezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE is invalid: %w", err)
	}
	if c.JobMaxAttempts < 1 {
		return fmt.Errorf("JOB_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}
