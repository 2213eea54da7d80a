package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/cpquest/internal/entity"
	"anoa.com/cpquest/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LedgerRepository interface {
	FindProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)
	// AppendAndIncrement inserts the ledger entry and adds its amount to the
	// profile in one transaction, returning the new total and the level stored
	// before this call. The total never drops below zero. It returns
	// apperror.ErrDuplicate, with nothing written, when (user_id, reference_id)
	// already exists.
	AppendAndIncrement(ctx context.Context, log *entity.XPLog) (newXP int64, storedLevel int, err error)
	UpdateLevel(ctx context.Context, userID uuid.UUID, level int) error
	SumSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) FindProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	var profile entity.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ledgerRepository) AppendAndIncrement(ctx context.Context, log *entity.XPLog) (int64, int, error) {
	var profile entity.Profile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(log).Error; err != nil {
			if apperror.IsUniqueViolation(err) {
				return apperror.ErrDuplicate
			}
			return fmt.Errorf("insert xp log: %w", err)
		}

		res := tx.Model(&profile).
			Clauses(clause.Returning{Columns: []clause.Column{{Name: "xp"}, {Name: "level"}}}).
			Where("user_id = ?", log.UserID).
			Update("xp", gorm.Expr("GREATEST(xp + ?, 0)", log.Amount))
		if res.Error != nil {
			return fmt.Errorf("increment xp: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return profile.XP, profile.Level, nil
}

func (r *ledgerRepository) UpdateLevel(ctx context.Context, userID uuid.UUID, level int) error {
	return r.db.WithContext(ctx).Model(&entity.Profile{}).
		Where("user_id = ?", userID).
		Update("level", level).Error
}

func (r *ledgerRepository) SumSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.XPLog{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Scan(&total).Error
	return total, err
}
