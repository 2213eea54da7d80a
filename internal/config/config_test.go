package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Streak.BaseXP != 5 || cfg.Streak.CapXP != 50 {
		t.Errorf("streak xp = %d/%d, want 5/50", cfg.Streak.BaseXP, cfg.Streak.CapXP)
	}
	if cfg.Duel.PendingTTL != 24*time.Hour {
		t.Errorf("pending ttl = %s, want 24h", cfg.Duel.PendingTTL)
	}
	if cfg.Jobs.DigestInterval != 144*time.Hour {
		t.Errorf("digest interval = %s, want 144h", cfg.Jobs.DigestInterval)
	}
	if cfg.SubmissionWindow != 50 {
		t.Errorf("submission window = %d, want 50", cfg.SubmissionWindow)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DUEL_WIN_XP", "75")
	t.Setenv("APP_TIMEZONE", "Asia/Kolkata")
	t.Setenv("SYNC_BATCH_DELAY", "500ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Duel.WinXP != 75 {
		t.Errorf("win xp = %d, want 75", cfg.Duel.WinXP)
	}
	if cfg.Timezone.String() != "Asia/Kolkata" {
		t.Errorf("timezone = %s", cfg.Timezone)
	}
	if cfg.Sync.BatchDelay != 500*time.Millisecond {
		t.Errorf("sync delay = %s", cfg.Sync.BatchDelay)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"BADGE_XP":        "lots",
		"APP_TIMEZONE":    "Mars/Olympus",
		"DUEL_POLL_DELAY": "soon",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, val)
			}
		})
	}
}
