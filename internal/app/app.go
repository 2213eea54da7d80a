// Package app wires repositories and services into the job set and the
// handlers shared by the HTTP server and the cron worker.
package app

import (
	"context"
	"log"

	"anoa.com/cpquest/internal/config"

	badgeRepo "anoa.com/cpquest/internal/modules/badge/repository"
	badgeService "anoa.com/cpquest/internal/modules/badge/service"
	duelRepo "anoa.com/cpquest/internal/modules/duel/repository"
	duelService "anoa.com/cpquest/internal/modules/duel/service"
	leaderboardRepo "anoa.com/cpquest/internal/modules/leaderboard/repository"
	leaderboardService "anoa.com/cpquest/internal/modules/leaderboard/service"
	ledgerRepo "anoa.com/cpquest/internal/modules/ledger/repository"
	ledgerService "anoa.com/cpquest/internal/modules/ledger/service"
	notifRepo "anoa.com/cpquest/internal/modules/notification/repository"
	notifService "anoa.com/cpquest/internal/modules/notification/service"
	"anoa.com/cpquest/internal/modules/platform/client"
	syncRepo "anoa.com/cpquest/internal/modules/platform/repository"
	syncService "anoa.com/cpquest/internal/modules/platform/service"
	schedulerRepo "anoa.com/cpquest/internal/modules/scheduler/repository"
	schedulerService "anoa.com/cpquest/internal/modules/scheduler/service"
	streakRepo "anoa.com/cpquest/internal/modules/streak/repository"
	streakService "anoa.com/cpquest/internal/modules/streak/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	JobSyncSubmissions = "sync-submissions"
	JobResolveDuels    = "resolve-duels"
	JobProcessStreaks  = "process-streaks"
	JobStreakWarnings  = "streak-warnings"
	JobWeeklyDigest    = "weekly-digest"
)

type App struct {
	Config *config.Config

	Notifications notifService.NotificationService
	Ledger        ledgerService.LedgerService
	Badges        badgeService.BadgeService
	Streaks       streakService.StreakService
	Sync          syncService.SyncService
	Duels         duelService.DuelService
	Leaderboard   leaderboardService.LeaderboardService
	Runner        schedulerService.Runner
}

func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*App, error) {
	a := &App{Config: cfg}

	a.Notifications = notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), redisClient)
	a.Ledger = ledgerService.NewLedgerService(ledgerRepo.NewLedgerRepository(db), a.Notifications)
	a.Badges = badgeService.NewBadgeService(badgeRepo.NewBadgeRepository(db), a.Ledger, a.Notifications, cfg.Badge.XP, cfg.Timezone)

	a.Streaks = streakService.NewStreakService(streakRepo.NewStreakRepository(db), a.Ledger, a.Badges, a.Notifications, streakService.Options{
		BaseXP:     cfg.Streak.BaseXP,
		CapXP:      cfg.Streak.CapXP,
		BatchSize:  cfg.Streak.BatchSize,
		BatchDelay: cfg.Streak.BatchDelay,
		Location:   cfg.Timezone,
	})

	platform, err := client.NewCachedClient(
		client.NewCodeforcesClient(cfg.CodeforcesBaseURL, cfg.PlatformTimeout, client.WithMinInterval(cfg.PlatformInterval)),
		cfg.PlatformCacheSize, cfg.PlatformCacheTTL,
	)
	if err != nil {
		return nil, err
	}

	a.Sync = syncService.NewSyncService(syncRepo.NewSyncRepository(db), platform, a.Streaks, a.Badges, syncService.Options{
		Window:     cfg.SubmissionWindow,
		BatchSize:  cfg.Sync.BatchSize,
		BatchDelay: cfg.Sync.BatchDelay,
		Location:   cfg.Timezone,
	})

	a.Duels = duelService.NewDuelService(duelRepo.NewDuelRepository(db), platform, a.Ledger, a.Notifications, duelService.Options{
		WinXP:           cfg.Duel.WinXP,
		ParticipationXP: cfg.Duel.ParticipationXP,
		PendingTTL:      cfg.Duel.PendingTTL,
		PollDelay:       cfg.Duel.PollDelay,
		Window:          cfg.SubmissionWindow,
	})

	a.Leaderboard = leaderboardService.NewLeaderboardService(leaderboardRepo.NewLeaderboardRepository(db), a.Notifications, leaderboardService.Options{
		DigestTop: cfg.Jobs.DigestLeaderboardN,
		Location:  cfg.Timezone,
	})

	store, err := schedulerRepo.NewStateStore(cfg.Jobs.StateBackend, db, redisClient)
	if err != nil {
		return nil, err
	}
	a.Runner = schedulerService.NewRunner(store, a.Jobs(), schedulerService.Options{
		Timeout:  cfg.Jobs.Timeout,
		Location: cfg.Timezone,
	})

	return a, nil
}

// Jobs lists the periodic work in trigger order: fresh solves land before
// duels and streaks look at them.
func (a *App) Jobs() []schedulerService.Job {
	return []schedulerService.Job{
		{Name: JobSyncSubmissions, Run: a.syncSubmissions},
		{Name: JobResolveDuels, Run: a.resolveDuels},
		{Name: JobProcessStreaks, Run: a.processStreaks},
		{
			Name:          JobStreakWarnings,
			MinInterval:   a.Config.Jobs.WarningInterval,
			NotBeforeHour: a.Config.Jobs.WarningHour,
			Run:           a.streakWarnings,
		},
		{Name: JobWeeklyDigest, MinInterval: a.Config.Jobs.DigestInterval, Run: a.weeklyDigest},
	}
}

func (a *App) syncSubmissions(ctx context.Context) error {
	sum, err := a.Sync.SyncAll(ctx)
	if err != nil {
		return err
	}
	log.Printf("📥 [Sync] users=%d new_solves=%d failed=%d", sum.Users, sum.NewSolves, sum.Failed)
	return nil
}

func (a *App) resolveDuels(ctx context.Context) error {
	sum, err := a.Duels.ResolveAll(ctx)
	if err != nil {
		return err
	}
	log.Printf("⚔️ [Duels] expired=%d checked=%d completed=%d waiting=%d failed=%d",
		sum.Expired, sum.Checked, sum.Completed, sum.Waiting, sum.Failed)
	return nil
}

func (a *App) processStreaks(ctx context.Context) error {
	sum, err := a.Streaks.ProcessAll(ctx)
	if err != nil {
		return err
	}
	log.Printf("🔥 [Streaks] total=%d continued=%d saved=%d lost=%d skipped=%d failed=%d",
		sum.Total, sum.Continued, sum.Saved, sum.Lost, sum.Skipped, sum.Failed)
	return nil
}

func (a *App) streakWarnings(ctx context.Context) error {
	n, err := a.Streaks.SendWarnings(ctx)
	if err != nil {
		return err
	}
	log.Printf("⏰ [Streaks] warned %d users", n)
	return nil
}

func (a *App) weeklyDigest(ctx context.Context) error {
	_, err := a.Leaderboard.WeeklyDigest(ctx)
	return err
}
