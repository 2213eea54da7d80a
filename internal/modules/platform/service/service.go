package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"anoa.com/cpquest/internal/entity"
	"anoa.com/cpquest/internal/modules/platform/client"
	syncRepo "anoa.com/cpquest/internal/modules/platform/repository"
	"anoa.com/cpquest/pkg/batch"
	"anoa.com/cpquest/pkg/calendar"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type StreakUpdater interface {
	UpdateStreak(ctx context.Context, userID uuid.UUID, solvedAt time.Time) (*entity.Profile, error)
}

type BadgeEvaluator interface {
	CheckAndAward(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type Options struct {
	Window     int
	BatchSize  int
	BatchDelay time.Duration
	Location   *time.Location
}

type SyncSummary struct {
	Users     int
	NewSolves int
	Failed    int
}

type SyncService interface {
	// SyncAll pulls recent submissions for every linked handle in bounded
	// batches. A platform failure skips that user only.
	SyncAll(ctx context.Context) (SyncSummary, error)
	SyncUser(ctx context.Context, profile entity.Profile) (int, error)
}

type syncService struct {
	repo     syncRepo.SyncRepository
	platform client.Client
	streaks  StreakUpdater
	badges   BadgeEvaluator
	opts     Options
	now      func() time.Time
}

func NewSyncService(repo syncRepo.SyncRepository, platform client.Client, streaks StreakUpdater, badges BadgeEvaluator, opts Options) SyncService {
	if opts.Window <= 0 {
		opts.Window = client.DefaultWindow
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = 5
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &syncService{
		repo:     repo,
		platform: platform,
		streaks:  streaks,
		badges:   badges,
		opts:     opts,
		now:      time.Now,
	}
}

func (s *syncService) SyncAll(ctx context.Context) (SyncSummary, error) {
	profiles, err := s.repo.FindLinkedProfiles(ctx)
	if err != nil {
		return SyncSummary{}, fmt.Errorf("load linked profiles: %w", err)
	}

	newSolves := make([]int, len(profiles))
	index := make(map[uuid.UUID]int, len(profiles))
	for i, p := range profiles {
		index[p.UserID] = i
	}

	results := batch.Settle(ctx, profiles, s.opts.BatchSize, s.opts.BatchDelay, func(ctx context.Context, p entity.Profile) error {
		n, err := s.SyncUser(ctx, p)
		newSolves[index[p.UserID]] = n
		return err
	})

	summary := SyncSummary{Users: len(profiles), Failed: batch.Failed(results)}
	for _, n := range newSolves {
		summary.NewSolves += n
	}
	for _, r := range results {
		if r.Err != nil {
			log.Printf("⚠️ [Sync] %s (%s) skipped: %v", r.Item.Username, r.Item.Handle(), r.Err)
		}
	}
	log.Printf("✅ [Sync] %d users, %d new solves, %d failed", summary.Users, summary.NewSolves, summary.Failed)
	return summary, nil
}

func (s *syncService) SyncUser(ctx context.Context, p entity.Profile) (int, error) {
	handle := p.Handle()
	if handle == "" {
		return 0, nil
	}

	subs, err := s.platform.RecentSubmissions(ctx, handle, s.opts.Window)
	if err != nil {
		return 0, err
	}

	solves := acceptedSolves(p.UserID, subs)
	inserted, err := s.repo.RecordSolves(ctx, solves)
	if err != nil {
		return len(inserted), fmt.Errorf("record solves: %w", err)
	}

	// Streak credit is derived from every solve in the window, not only the
	// newly stored ones, so a failed update is retried on the next sync.
	for _, at := range s.streakDays(solves) {
		if _, err := s.streaks.UpdateStreak(ctx, p.UserID, at); err != nil {
			return len(inserted), fmt.Errorf("update streak: %w", err)
		}
	}

	// Rating is best effort; the solves above are already stored.
	if info, err := s.platform.UserInfo(ctx, handle); err != nil {
		log.Printf("⚠️ [Sync] rating for %s unavailable: %v", handle, err)
	} else if info.Rating > 0 {
		if err := s.repo.UpdateRating(ctx, p.UserID, info.Rating); err != nil {
			log.Printf("⚠️ [Sync] rating update for %s failed: %v", handle, err)
		}
	}

	if s.badges != nil {
		if _, err := s.badges.CheckAndAward(ctx, p.UserID); err != nil {
			log.Printf("⚠️ [Sync] badge check for %s failed: %v", p.UserID, err)
		}
	}
	return len(inserted), nil
}

// streakDays returns the earliest solve time of each local day that can still
// move the streak (yesterday and today), oldest first. A solve from just
// before midnight is often first seen by the sync after it.
func (s *syncService) streakDays(solves []entity.Solve) []time.Time {
	today := calendar.DateOf(s.now(), s.opts.Location)
	yesterday := today.AddDate(0, 0, -1)

	var firsts [2]*time.Time
	for _, solve := range solves {
		var i int
		switch d := calendar.DateOf(solve.SolvedAt, s.opts.Location); {
		case d.Equal(yesterday):
			i = 0
		case d.Equal(today):
			i = 1
		default:
			continue
		}
		if firsts[i] == nil || solve.SolvedAt.Before(*firsts[i]) {
			at := solve.SolvedAt
			firsts[i] = &at
		}
	}

	var days []time.Time
	for _, at := range firsts {
		if at != nil {
			days = append(days, *at)
		}
	}
	return days
}

// acceptedSolves keeps the earliest accepted submission per problem.
// subs is newest first.
func acceptedSolves(userID uuid.UUID, subs []client.Submission) []entity.Solve {
	seen := make(map[string]bool)
	var solves []entity.Solve
	for i := len(subs) - 1; i >= 0; i-- {
		sub := subs[i]
		if !sub.Accepted() || seen[sub.ProblemID] {
			continue
		}
		seen[sub.ProblemID] = true

		tags, _ := json.Marshal(sub.Tags)
		if sub.Tags == nil {
			tags = []byte("[]")
		}
		solves = append(solves, entity.Solve{
			UserID:      userID,
			Platform:    entity.PlatformCodeforces,
			ProblemID:   sub.ProblemID,
			ProblemName: sub.ProblemName,
			Tags:        datatypes.JSON(tags),
			SolvedAt:    sub.SubmittedAt,
		})
	}
	return solves
}
