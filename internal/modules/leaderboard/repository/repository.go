package repository

import (
	"context"
	"time"

	"anoa.com/cpquest/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Standing is one ranked row. PeriodXP is the XP earned inside the requested
// window; for all-time rankings it equals XP.
type Standing struct {
	UserID           uuid.UUID
	Username         string
	CodeforcesHandle *string
	XP               int64
	PeriodXP         int64
	WeeklyXP         int64
}

type LeaderboardRepository interface {
	TopAllTime(ctx context.Context, limit int, weeklySince time.Time) ([]Standing, error)
	TopSince(ctx context.Context, since time.Time, limit int, weeklySince time.Time) ([]Standing, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

type xpSum struct {
	UserID uuid.UUID
	Score  int64
}

func (r *leaderboardRepository) TopAllTime(ctx context.Context, limit int, weeklySince time.Time) ([]Standing, error) {
	var profiles []entity.Profile
	err := r.db.WithContext(ctx).
		Order("xp DESC").Order("username ASC").
		Limit(limit).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}

	userIDs := make([]uuid.UUID, 0, len(profiles))
	for _, p := range profiles {
		userIDs = append(userIDs, p.UserID)
	}
	weekly, err := r.sumsSince(ctx, userIDs, weeklySince)
	if err != nil {
		return nil, err
	}

	standings := make([]Standing, 0, len(profiles))
	for _, p := range profiles {
		standings = append(standings, Standing{
			UserID:           p.UserID,
			Username:         p.Username,
			CodeforcesHandle: p.CodeforcesHandle,
			XP:               p.XP,
			PeriodXP:         p.XP,
			WeeklyXP:         weekly[p.UserID],
		})
	}
	return standings, nil
}

// TopSince ranks by XP earned since the given instant, still carrying each
// user's all-time XP for level display.
func (r *leaderboardRepository) TopSince(ctx context.Context, since time.Time, limit int, weeklySince time.Time) ([]Standing, error) {
	var results []xpSum
	err := r.db.WithContext(ctx).Model(&entity.XPLog{}).
		Select("user_id, SUM(amount) AS score").
		Where("created_at >= ?", since).
		Group("user_id").
		Having("SUM(amount) > 0").
		Order("score DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	userIDs := make([]uuid.UUID, 0, len(results))
	for _, res := range results {
		userIDs = append(userIDs, res.UserID)
	}

	var profiles []entity.Profile
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, err
	}
	profileMap := make(map[uuid.UUID]entity.Profile, len(profiles))
	for _, p := range profiles {
		profileMap[p.UserID] = p
	}

	weekly, err := r.sumsSince(ctx, userIDs, weeklySince)
	if err != nil {
		return nil, err
	}

	standings := make([]Standing, 0, len(results))
	for _, res := range results {
		p, ok := profileMap[res.UserID]
		if !ok {
			continue
		}
		standings = append(standings, Standing{
			UserID:           p.UserID,
			Username:         p.Username,
			CodeforcesHandle: p.CodeforcesHandle,
			XP:               p.XP,
			PeriodXP:         res.Score,
			WeeklyXP:         weekly[p.UserID],
		})
	}
	return standings, nil
}

func (r *leaderboardRepository) sumsSince(ctx context.Context, userIDs []uuid.UUID, since time.Time) (map[uuid.UUID]int64, error) {
	var rows []xpSum
	err := r.db.WithContext(ctx).Model(&entity.XPLog{}).
		Select("user_id, SUM(amount) AS score").
		Where("user_id IN ? AND created_at >= ?", userIDs, since).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		out[row.UserID] = row.Score
	}
	return out, nil
}
