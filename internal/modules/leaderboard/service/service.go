package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"anoa.com/cpquest/internal/entity"
	leaderboardDto "anoa.com/cpquest/internal/modules/leaderboard/dto"
	leaderboardRepo "anoa.com/cpquest/internal/modules/leaderboard/repository"
	notifService "anoa.com/cpquest/internal/modules/notification/service"
	"anoa.com/cpquest/pkg/apperror"
	"anoa.com/cpquest/pkg/calendar"
)

const (
	TimeframeAllTime = "all_time"
	TimeframeMonthly = "monthly"
	TimeframeWeekly  = "weekly"

	defaultDigestTop = 5
)

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, limit int, timeframe string) ([]leaderboardDto.LeaderboardEntry, error)
	// WeeklyDigest broadcasts the top earners of the past 7 days and returns
	// how many were listed. A week without XP sends nothing.
	WeeklyDigest(ctx context.Context) (int, error)
}

type Options struct {
	DigestTop int
	Location  *time.Location
}

type leaderboardService struct {
	repo                leaderboardRepo.LeaderboardRepository
	notificationService notifService.NotificationService
	opts                Options
	now                 func() time.Time
}

func NewLeaderboardService(repo leaderboardRepo.LeaderboardRepository, notificationService notifService.NotificationService, opts Options) LeaderboardService {
	if opts.DigestTop < 1 {
		opts.DigestTop = defaultDigestTop
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &leaderboardService{
		repo:                repo,
		notificationService: notificationService,
		opts:                opts,
		now:                 time.Now,
	}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, limit int, timeframe string) ([]leaderboardDto.LeaderboardEntry, error) {
	now := s.now()
	weeklySince := now.AddDate(0, 0, -7)

	var (
		standings []leaderboardRepo.Standing
		err       error
	)
	switch timeframe {
	case "", TimeframeAllTime:
		standings, err = s.repo.TopAllTime(ctx, limit, weeklySince)
	case TimeframeWeekly:
		standings, err = s.repo.TopSince(ctx, weeklySince, limit, weeklySince)
	case TimeframeMonthly:
		standings, err = s.repo.TopSince(ctx, now.AddDate(0, -1, 0), limit, weeklySince)
	default:
		return nil, fmt.Errorf("timeframe %q: %w", timeframe, apperror.ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}

	entries := make([]leaderboardDto.LeaderboardEntry, 0, len(standings))
	for i, st := range standings {
		// level always follows all-time XP; the weekly label adds recent activity
		status := GetStatus(st.XP, st.WeeklyXP)
		entries = append(entries, leaderboardDto.LeaderboardEntry{
			UserID:           st.UserID,
			Username:         st.Username,
			CodeforcesHandle: st.CodeforcesHandle,
			Position:         i + 1,
			Score:            st.PeriodXP,
			XP:               st.XP,
			Level:            status.Level,
			Title:            status.Title,
			Progress:         status.Progress,
			WeeklyXP:         status.WeeklyXP,
			WeeklyLabel:      status.WeeklyLabel,
		})
	}
	return entries, nil
}

func (s *leaderboardService) WeeklyDigest(ctx context.Context) (int, error) {
	top, err := s.GetLeaderboard(ctx, s.opts.DigestTop, TimeframeWeekly)
	if err != nil {
		return 0, err
	}
	if len(top) == 0 {
		log.Printf("📭 [WeeklyDigest] No XP earned this week, nothing to send")
		return 0, nil
	}

	weekEnding := calendar.DateOf(s.now(), s.opts.Location)

	var body strings.Builder
	ranking := make([]map[string]any, 0, len(top))
	for _, e := range top {
		fmt.Fprintf(&body, "%d. %s +%d XP", e.Position, e.Username, e.Score)
		if e.WeeklyLabel != "" {
			fmt.Fprintf(&body, " %s", e.WeeklyLabel)
		}
		body.WriteString("\n")
		ranking = append(ranking, map[string]any{
			"position": e.Position,
			"user_id":  e.UserID.String(),
			"username": e.Username,
			"xp":       e.Score,
		})
	}

	title := fmt.Sprintf("🏆 Weekly leaderboard, week ending %s", calendar.Format(weekEnding))
	data := map[string]any{
		"week_ending": calendar.Format(weekEnding),
		"top":         ranking,
	}
	if err := s.notificationService.Broadcast(ctx, entity.NotifWeeklyDigest, title, strings.TrimRight(body.String(), "\n"), data); err != nil {
		return 0, err
	}

	log.Printf("✅ [WeeklyDigest] Broadcast top %d", len(top))
	return len(top), nil
}
