package service

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"anoa.com/cpquest/internal/entity"
	ledgerService "anoa.com/cpquest/internal/modules/ledger/service"
	notifService "anoa.com/cpquest/internal/modules/notification/service"
	streakRepo "anoa.com/cpquest/internal/modules/streak/repository"
	"anoa.com/cpquest/pkg/apperror"
	"anoa.com/cpquest/pkg/batch"
	"anoa.com/cpquest/pkg/calendar"
	"github.com/google/uuid"
)

const (
	maxStreakMultiplier = 10
	shieldEvery         = 7
	warnMinStreak       = 2
	// maxWriteAttempts bounds re-reads when a concurrent writer changes the
	// streak fields between our read and our conditional update.
	maxWriteAttempts = 3
)

// BadgeEvaluator re-checks a user's badges after their streak changed.
type BadgeEvaluator interface {
	CheckAndAward(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type Options struct {
	BaseXP     int64
	CapXP      int64
	BatchSize  int
	BatchDelay time.Duration
	Location   *time.Location
}

// ProcessSummary counts what a daily pass did.
type ProcessSummary struct {
	Total     int
	Continued int
	Saved     int
	Lost      int
	Skipped   int
	Failed    int
}

type StreakService interface {
	// ProcessAll runs the daily pass over every profile not yet processed
	// today. Per-user failures are counted, never propagated.
	ProcessAll(ctx context.Context) (ProcessSummary, error)
	// UpdateStreak records a solve made at solvedAt. Days not after the stored
	// last solve day are a no-op; a future time counts as today.
	UpdateStreak(ctx context.Context, userID uuid.UUID, solvedAt time.Time) (*entity.Profile, error)
	// SendWarnings notifies users whose streak ends at midnight.
	SendWarnings(ctx context.Context) (int, error)
}

type streakService struct {
	repo                streakRepo.StreakRepository
	ledger              ledgerService.LedgerService
	badges              BadgeEvaluator
	notificationService notifService.NotificationService
	opts                Options
	now                 func() time.Time
}

func NewStreakService(repo streakRepo.StreakRepository, ledger ledgerService.LedgerService, badges BadgeEvaluator, notificationService notifService.NotificationService, opts Options) StreakService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = 20
	}
	return &streakService{
		repo:                repo,
		ledger:              ledger,
		badges:              badges,
		notificationService: notificationService,
		opts:                opts,
		now:                 time.Now,
	}
}

type outcome int

const (
	outcomeNone outcome = iota
	outcomeContinued
	outcomeSaved
	outcomeLost
)

// decision is the pure result of comparing a profile against today.
type decision struct {
	outcome    outcome
	transition streakRepo.Transition
	xp         int64
}

func (s *streakService) decide(p entity.Profile, today time.Time) decision {
	d := decision{transition: streakRepo.Transition{
		CurrentStreak:  p.CurrentStreak,
		StreakShields:  p.StreakShields,
		LastLostStreak: p.LastLostStreak,
		LastSolveDate:  p.LastSolveDate,
	}}
	if p.LastSolveDate == nil {
		return d
	}

	yesterday := today.AddDate(0, 0, -1)
	gap := calendar.DaysBetween(*p.LastSolveDate, today)

	switch {
	case gap == 1:
		d.outcome = outcomeContinued
		d.xp = min(s.opts.BaseXP*int64(min(p.CurrentStreak, maxStreakMultiplier)), s.opts.CapXP)
		if p.CurrentStreak > 0 && p.CurrentStreak%shieldEvery == 0 {
			d.transition.StreakShields++
		}
	case gap >= 2 && p.StreakShields > 0:
		// The shield covers the missed day so the next solve continues the streak.
		d.outcome = outcomeSaved
		d.transition.StreakShields--
		d.transition.LastSolveDate = &yesterday
	case gap >= 2 && p.CurrentStreak > 0:
		d.outcome = outcomeLost
		d.transition.LastLostStreak = p.CurrentStreak
		d.transition.CurrentStreak = 0
	}
	return d
}

func (s *streakService) ProcessAll(ctx context.Context) (ProcessSummary, error) {
	today := calendar.DateOf(s.now(), s.opts.Location)

	profiles, err := s.repo.FindUnprocessed(ctx, today)
	if err != nil {
		return ProcessSummary{}, fmt.Errorf("load profiles: %w", err)
	}

	var continued, saved, lost, skipped atomic.Int64
	results := batch.Settle(ctx, profiles, s.opts.BatchSize, s.opts.BatchDelay, func(ctx context.Context, p entity.Profile) error {
		o, applied, err := s.processOne(ctx, p, today)
		if err != nil {
			return err
		}
		if !applied {
			skipped.Add(1)
			return nil
		}
		switch o {
		case outcomeContinued:
			continued.Add(1)
		case outcomeSaved:
			saved.Add(1)
		case outcomeLost:
			lost.Add(1)
		}
		return nil
	})

	for _, r := range results {
		if r.Err != nil {
			log.Printf("❌ [Streak] user %s: %v", r.Item.UserID, r.Err)
		}
	}

	summary := ProcessSummary{
		Total:     len(profiles),
		Continued: int(continued.Load()),
		Saved:     int(saved.Load()),
		Lost:      int(lost.Load()),
		Skipped:   int(skipped.Load()),
		Failed:    batch.Failed(results),
	}
	log.Printf("✅ [Streak] processed %d profiles for %s (continued=%d saved=%d lost=%d failed=%d)",
		summary.Total, calendar.Format(today), summary.Continued, summary.Saved, summary.Lost, summary.Failed)
	return summary, nil
}

// processOne decides, pays, then stamps. The XP reference is keyed by day so a
// retry after a failed stamp cannot pay twice. When a solve lands between the
// read and the stamp, the profile is re-read and decided again.
func (s *streakService) processOne(ctx context.Context, p entity.Profile, today time.Time) (outcome, bool, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		d := s.decide(p, today)

		if d.xp > 0 {
			reason := fmt.Sprintf("Streak day %d", p.CurrentStreak)
			if _, err := s.ledger.AwardXP(ctx, p.UserID, d.xp, reason, "streak_"+calendar.Format(today)); err != nil {
				return d.outcome, false, fmt.Errorf("award streak xp: %w", err)
			}
		}

		applied, err := s.repo.ApplyTransition(ctx, p, today, d.transition)
		if err != nil {
			return d.outcome, false, fmt.Errorf("apply transition: %w", err)
		}
		if applied {
			s.afterTransition(ctx, p, d)
			return d.outcome, true, nil
		}

		fresh, err := s.repo.FindProfile(ctx, p.UserID)
		if err != nil {
			return d.outcome, false, fmt.Errorf("reload profile: %w", err)
		}
		if calendar.Same(fresh.LastStreakProcessed, today) {
			return d.outcome, false, nil
		}
		p = *fresh
	}
	return outcomeNone, false, fmt.Errorf("%w: streak kept changing during the pass", apperror.ErrConflict)
}

func (s *streakService) afterTransition(ctx context.Context, p entity.Profile, d decision) {
	switch d.outcome {
	case outcomeSaved:
		s.notify(ctx, p.UserID, entity.NotifStreakSaved,
			"🛡️ Streak saved!",
			fmt.Sprintf("A shield protected your %d-day streak. %d shield(s) left.", p.CurrentStreak, d.transition.StreakShields),
			map[string]any{"streak": p.CurrentStreak, "shields": d.transition.StreakShields})
	case outcomeLost:
		s.notify(ctx, p.UserID, entity.NotifStreakLost,
			"💔 Streak lost",
			fmt.Sprintf("Your %d-day streak has ended. Solve a problem today to start a new one.", p.CurrentStreak),
			map[string]any{"lost_streak": p.CurrentStreak})
	}

	if s.badges != nil {
		if _, err := s.badges.CheckAndAward(ctx, p.UserID); err != nil {
			log.Printf("⚠️ [Streak] badge check for %s failed: %v", p.UserID, err)
		}
	}
}

func (s *streakService) UpdateStreak(ctx context.Context, userID uuid.UUID, solvedAt time.Time) (*entity.Profile, error) {
	today := calendar.DateOf(s.now(), s.opts.Location)
	day := calendar.DateOf(solvedAt, s.opts.Location)
	if day.After(today) {
		day = today
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		p, err := s.repo.FindProfile(ctx, userID)
		if err != nil {
			return nil, err
		}
		if p.LastSolveDate != nil && !p.LastSolveDate.Before(day) {
			return p, nil
		}

		current := 1
		if p.LastSolveDate != nil && calendar.DaysBetween(*p.LastSolveDate, day) <= 1 {
			current = p.CurrentStreak + 1
		}
		longest := max(p.LongestStreak, current)

		saved, err := s.repo.SaveSolve(ctx, *p, current, longest, day)
		if err != nil {
			return nil, fmt.Errorf("save solve: %w", err)
		}
		if saved {
			p.CurrentStreak = current
			p.LongestStreak = longest
			p.LastSolveDate = &day
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: streak of %s kept changing", apperror.ErrConflict, userID)
}

func (s *streakService) SendWarnings(ctx context.Context) (int, error) {
	today := calendar.DateOf(s.now(), s.opts.Location)

	profiles, err := s.repo.FindAtRisk(ctx, today, warnMinStreak)
	if err != nil {
		return 0, fmt.Errorf("load at-risk profiles: %w", err)
	}

	sent := 0
	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		title := fmt.Sprintf("🔥 Your %d-day streak ends at midnight", p.CurrentStreak)
		body := "Solve any problem today to keep it alive."
		if p.StreakShields > 0 {
			body = fmt.Sprintf("Solve any problem today to keep it alive, or a shield will be used (%d left).", p.StreakShields)
		}
		if s.notify(ctx, p.UserID, entity.NotifStreakWarn, title, body, map[string]any{"streak": p.CurrentStreak}) {
			sent++
		}
	}
	log.Printf("✅ [Streak] sent %d streak warnings", sent)
	return sent, nil
}

func (s *streakService) notify(ctx context.Context, userID uuid.UUID, notifType, title, body string, data map[string]any) bool {
	if s.notificationService == nil {
		return false
	}
	if err := s.notificationService.Notify(ctx, userID, notifType, title, body, data); err != nil {
		log.Printf("⚠️ [Streak] %s notification for %s failed: %v", notifType, userID, err)
		return false
	}
	return true
}
