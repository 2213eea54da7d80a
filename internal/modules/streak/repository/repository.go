package repository

import (
	"context"
	"errors"
	"time"

	"anoa.com/cpquest/internal/entity"
	"anoa.com/cpquest/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transition is the streak state decided for one daily pass.
type Transition struct {
	CurrentStreak  int
	StreakShields  int
	LastLostStreak int
	LastSolveDate  *time.Time
}

type StreakRepository interface {
	FindUnprocessed(ctx context.Context, today time.Time) ([]entity.Profile, error)
	FindProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)
	// ApplyTransition writes t and stamps last_streak_processed = today in one
	// conditional update. It reports false when the profile was already
	// stamped for today or its streak fields no longer match from.
	ApplyTransition(ctx context.Context, from entity.Profile, today time.Time, t Transition) (bool, error)
	// SaveSolve records day as the latest solve day. It reports false when the
	// streak fields no longer match from.
	SaveSolve(ctx context.Context, from entity.Profile, current, longest int, day time.Time) (bool, error)
	FindAtRisk(ctx context.Context, today time.Time, minStreak int) ([]entity.Profile, error)
}

type streakRepository struct {
	db *gorm.DB
}

func NewStreakRepository(db *gorm.DB) StreakRepository {
	return &streakRepository{db: db}
}

func (r *streakRepository) FindUnprocessed(ctx context.Context, today time.Time) ([]entity.Profile, error) {
	var profiles []entity.Profile
	err := r.db.WithContext(ctx).
		Where("last_streak_processed IS NULL OR last_streak_processed <> ?", today).
		Order("user_id").
		Find(&profiles).Error
	return profiles, err
}

func (r *streakRepository) FindProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	var profile entity.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *streakRepository) ApplyTransition(ctx context.Context, from entity.Profile, today time.Time, t Transition) (bool, error) {
	updates := map[string]interface{}{
		"current_streak":        t.CurrentStreak,
		"streak_shields":        t.StreakShields,
		"last_lost_streak":      t.LastLostStreak,
		"last_solve_date":       t.LastSolveDate,
		"last_streak_processed": today,
	}
	res := unchanged(r.db.WithContext(ctx).Model(&entity.Profile{}), from).
		Where("last_streak_processed IS NULL OR last_streak_processed <> ?", today).
		Updates(updates)
	return res.RowsAffected == 1, res.Error
}

func (r *streakRepository) SaveSolve(ctx context.Context, from entity.Profile, current, longest int, day time.Time) (bool, error) {
	res := unchanged(r.db.WithContext(ctx).Model(&entity.Profile{}), from).
		Updates(map[string]interface{}{
			"current_streak":  current,
			"longest_streak":  gorm.Expr("GREATEST(longest_streak, ?)", longest),
			"last_solve_date": day,
		})
	return res.RowsAffected == 1, res.Error
}

// unchanged scopes an update to the profile row while it still holds the
// streak fields read into from.
func unchanged(tx *gorm.DB, from entity.Profile) *gorm.DB {
	tx = tx.Where("user_id = ? AND current_streak = ? AND streak_shields = ?",
		from.UserID, from.CurrentStreak, from.StreakShields)
	if from.LastSolveDate == nil {
		return tx.Where("last_solve_date IS NULL")
	}
	return tx.Where("last_solve_date = ?", *from.LastSolveDate)
}

func (r *streakRepository) FindAtRisk(ctx context.Context, today time.Time, minStreak int) ([]entity.Profile, error) {
	var profiles []entity.Profile
	err := r.db.WithContext(ctx).
		Where("current_streak >= ? AND (last_solve_date IS NULL OR last_solve_date <> ?)", minStreak, today).
		Find(&profiles).Error
	return profiles, err
}
