package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/cpquest/internal/entity"
	"anoa.com/cpquest/internal/modules/badge/condition"
	"anoa.com/cpquest/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeRepository interface {
	FindAutoBadges(ctx context.Context) ([]entity.Badge, error)
	FindByID(ctx context.Context, badgeID string) (*entity.Badge, error)
	FindEarnedBadgeIDs(ctx context.Context, userID uuid.UUID) ([]string, error)
	// GrantBadge inserts the user badge and reports whether this call created
	// it. An existing grant is not an error.
	GrantBadge(ctx context.Context, userID uuid.UUID, badgeID string) (bool, error)
	// BuildStats aggregates the user's activity. Solve hours are bucketed in loc.
	BuildStats(ctx context.Context, userID uuid.UUID, loc *time.Location) (condition.Stats, error)
}

type badgeRepository struct {
	db *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

func (r *badgeRepository) FindAutoBadges(ctx context.Context) ([]entity.Badge, error) {
	var badges []entity.Badge
	err := r.db.WithContext(ctx).
		Where("condition_type = ?", entity.BadgeConditionAuto).
		Order("id asc").
		Find(&badges).Error
	return badges, err
}

func (r *badgeRepository) FindByID(ctx context.Context, badgeID string) (*entity.Badge, error) {
	var badge entity.Badge
	if err := r.db.WithContext(ctx).Where("id = ?", badgeID).First(&badge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &badge, nil
}

func (r *badgeRepository) FindEarnedBadgeIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&entity.UserBadge{}).
		Where("user_id = ?", userID).
		Pluck("badge_id", &ids).Error
	return ids, err
}

func (r *badgeRepository) GrantBadge(ctx context.Context, userID uuid.UUID, badgeID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).
		Create(&entity.UserBadge{UserID: userID, BadgeID: badgeID})
	if res.Error != nil {
		if apperror.IsUniqueViolation(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *badgeRepository) BuildStats(ctx context.Context, userID uuid.UUID, loc *time.Location) (condition.Stats, error) {
	var stats condition.Stats
	db := r.db.WithContext(ctx)

	var profile entity.Profile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return stats, apperror.ErrNotFound
		}
		return stats, fmt.Errorf("load profile: %w", err)
	}
	stats.CurrentStreak = profile.CurrentStreak
	stats.LongestStreak = profile.LongestStreak
	stats.RankClimb = profile.RankClimb
	stats.LastLostStreak = profile.LastLostStreak

	// Solves per platform
	type platformCount struct {
		Platform string
		Total    int
	}
	var perPlatform []platformCount
	if err := db.Model(&entity.Solve{}).
		Select("platform, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("platform").
		Scan(&perPlatform).Error; err != nil {
		return stats, fmt.Errorf("count solves: %w", err)
	}
	stats.PlatformSolves = make(map[string]int, len(perPlatform))
	for _, pc := range perPlatform {
		stats.PlatformSolves[pc.Platform] = pc.Total
		stats.TotalSolves += pc.Total
	}

	type hourCount struct {
		Hour  int
		Total int
	}
	var hours []hourCount
	if err := db.Model(&entity.Solve{}).
		Select("EXTRACT(HOUR FROM solved_at AT TIME ZONE ?)::int AS hour, COUNT(*) AS total", loc.String()).
		Where("user_id = ?", userID).
		Group("1").
		Scan(&hours).Error; err != nil {
		return stats, fmt.Errorf("solve hours: %w", err)
	}
	for _, hc := range hours {
		if hc.Hour >= 0 && hc.Hour < 24 {
			stats.SolveHours[hc.Hour] = hc.Total
		}
	}

	counts := []struct {
		dst   *int
		query *gorm.DB
	}{
		{&stats.DailySolves, db.Model(&entity.Solve{}).Select("COUNT(*)").
			Where("user_id = ? AND is_daily", userID)},
		{&stats.UniqueTopics, db.Raw(`SELECT COUNT(DISTINCT tag) FROM solves s,
			jsonb_array_elements_text(CASE WHEN jsonb_typeof(s.tags) = 'array' THEN s.tags ELSE '[]'::jsonb END) AS tag
			WHERE s.user_id = ?`, userID)},
		{&stats.ProblemsShared, db.Model(&entity.ProblemShare{}).Select("COUNT(*)").
			Where("user_id = ?", userID)},
		{&stats.DuelsWon, db.Model(&entity.Duel{}).Select("COUNT(*)").
			Where("winner_id = ? AND status = ?", userID, entity.DuelCompleted)},
		{&stats.BossesDefeated, db.Model(&entity.BossBattleEntry{}).Select("COUNT(*)").
			Where("user_id = ? AND solved_at IS NOT NULL", userID)},
		{&stats.BossFirstSolves, db.Model(&entity.BossBattleEntry{}).Select("COUNT(*)").
			Where("user_id = ? AND placement = 1", userID)},
		{&stats.ResourcesApproved, db.Model(&entity.ResourceSubmission{}).Select("COUNT(*)").
			Where("user_id = ? AND status = ?", userID, entity.ResourceApproved)},
		{&stats.AllQuestWeeks, db.Raw(`SELECT COUNT(*) FROM (
			SELECT week_start FROM quest_assignments WHERE user_id = ?
			GROUP BY week_start HAVING bool_and(completed)) weeks`, userID)},
	}
	for _, c := range counts {
		var n int64
		if err := c.query.Scan(&n).Error; err != nil {
			return stats, fmt.Errorf("aggregate stats: %w", err)
		}
		*c.dst = int(n)
	}

	return stats, nil
}
