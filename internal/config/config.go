package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string
	Port   string

	DatabaseURL string
	RedisURL    string

	// ServiceToken guards the job trigger endpoints.
	ServiceToken string
	Timezone     *time.Location

	CodeforcesBaseURL string
	PlatformTimeout   time.Duration
	PlatformInterval  time.Duration
	PlatformCacheTTL  time.Duration
	PlatformCacheSize int
	SubmissionWindow  int

	Streak      StreakConfig
	Badge       BadgeConfig
	Duel        DuelConfig
	Sync        SyncConfig
	Jobs        JobsConfig
	TriggerCron string
}

type StreakConfig struct {
	BaseXP     int64
	CapXP      int64
	BatchSize  int
	BatchDelay time.Duration
}

type BadgeConfig struct {
	XP int64
}

type DuelConfig struct {
	WinXP           int64
	ParticipationXP int64
	PendingTTL      time.Duration
	PollDelay       time.Duration
}

type SyncConfig struct {
	BatchSize  int
	BatchDelay time.Duration
}

type JobsConfig struct {
	StateBackend       string // "postgres", "redis" or "memory"
	Timeout            time.Duration
	WarningHour        int
	WarningInterval    time.Duration
	DigestInterval     time.Duration
	DigestLeaderboardN int
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		ServiceToken:      os.Getenv("SERVICE_TOKEN"),
		CodeforcesBaseURL: getEnv("CODEFORCES_BASE_URL", "https://codeforces.com/api"),
		TriggerCron:       getEnv("TRIGGER_CRON", "*/5 * * * *"),
	}

	var err error
	tz := getEnv("APP_TIMEZONE", "UTC")
	cfg.Timezone, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	if cfg.PlatformTimeout, err = parseDuration(getEnv("PLATFORM_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("invalid PLATFORM_TIMEOUT: %w", err)
	}
	if cfg.PlatformInterval, err = parseDuration(getEnv("PLATFORM_MIN_INTERVAL", "2s")); err != nil {
		return nil, fmt.Errorf("invalid PLATFORM_MIN_INTERVAL: %w", err)
	}
	if cfg.PlatformCacheTTL, err = parseDuration(getEnv("PLATFORM_CACHE_TTL", "1m")); err != nil {
		return nil, fmt.Errorf("invalid PLATFORM_CACHE_TTL: %w", err)
	}
	if cfg.PlatformCacheSize, err = getInt("PLATFORM_CACHE_SIZE", 1024); err != nil {
		return nil, err
	}
	if cfg.SubmissionWindow, err = getInt("SUBMISSION_WINDOW", 50); err != nil {
		return nil, err
	}

	if cfg.Streak.BaseXP, err = getInt64("STREAK_BASE_XP", 5); err != nil {
		return nil, err
	}
	if cfg.Streak.CapXP, err = getInt64("STREAK_CAP_XP", 50); err != nil {
		return nil, err
	}
	if cfg.Streak.BatchSize, err = getInt("STREAK_BATCH_SIZE", 20); err != nil {
		return nil, err
	}
	if cfg.Streak.BatchDelay, err = parseDuration(getEnv("STREAK_BATCH_DELAY", "0s")); err != nil {
		return nil, fmt.Errorf("invalid STREAK_BATCH_DELAY: %w", err)
	}

	if cfg.Badge.XP, err = getInt64("BADGE_XP", 50); err != nil {
		return nil, err
	}

	if cfg.Duel.WinXP, err = getInt64("DUEL_WIN_XP", 50); err != nil {
		return nil, err
	}
	if cfg.Duel.ParticipationXP, err = getInt64("DUEL_PARTICIPATION_XP", 10); err != nil {
		return nil, err
	}
	if cfg.Duel.PendingTTL, err = parseDuration(getEnv("DUEL_PENDING_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid DUEL_PENDING_TTL: %w", err)
	}
	if cfg.Duel.PollDelay, err = parseDuration(getEnv("DUEL_POLL_DELAY", "2s")); err != nil {
		return nil, fmt.Errorf("invalid DUEL_POLL_DELAY: %w", err)
	}

	if cfg.Sync.BatchSize, err = getInt("SYNC_BATCH_SIZE", 5); err != nil {
		return nil, err
	}
	if cfg.Sync.BatchDelay, err = parseDuration(getEnv("SYNC_BATCH_DELAY", "2s")); err != nil {
		return nil, fmt.Errorf("invalid SYNC_BATCH_DELAY: %w", err)
	}

	cfg.Jobs.StateBackend = getEnv("JOB_STATE_BACKEND", "postgres")
	if cfg.Jobs.Timeout, err = parseDuration(getEnv("JOB_TIMEOUT", "10m")); err != nil {
		return nil, fmt.Errorf("invalid JOB_TIMEOUT: %w", err)
	}
	if cfg.Jobs.WarningHour, err = getInt("STREAK_WARNING_HOUR", 20); err != nil {
		return nil, err
	}
	if cfg.Jobs.WarningInterval, err = parseDuration(getEnv("STREAK_WARNING_INTERVAL", "23h")); err != nil {
		return nil, fmt.Errorf("invalid STREAK_WARNING_INTERVAL: %w", err)
	}
	if cfg.Jobs.DigestInterval, err = parseDuration(getEnv("WEEKLY_DIGEST_INTERVAL", "144h")); err != nil {
		return nil, fmt.Errorf("invalid WEEKLY_DIGEST_INTERVAL: %w", err)
	}
	if cfg.Jobs.DigestLeaderboardN, err = getInt("WEEKLY_DIGEST_TOP", 5); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getInt64(key string, fallback int64) (int64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
