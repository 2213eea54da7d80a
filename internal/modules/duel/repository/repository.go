package repository

import (
	"context"
	"errors"
	"time"

	"anoa.com/cpquest/internal/entity"
	"anoa.com/cpquest/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DuelRepository interface {
	Create(ctx context.Context, duel *entity.Duel) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Duel, error)
	FindActive(ctx context.Context) ([]entity.Duel, error)
	FindProfiles(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]entity.Profile, error)
	// ExpirePending moves pending duels created before cutoff to expired and
	// returns them.
	ExpirePending(ctx context.Context, cutoff time.Time) ([]entity.Duel, error)
	// Transition applies updates only while the duel is still in status from.
	// It reports false when another writer got there first.
	Transition(ctx context.Context, id uuid.UUID, from entity.DuelStatus, updates map[string]interface{}) (bool, error)
	// FindUnpaid returns completed duels whose payout was never confirmed.
	FindUnpaid(ctx context.Context) ([]entity.Duel, error)
	// MarkPaid stamps paid_at once and reports whether this call did.
	MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

type duelRepository struct {
	db *gorm.DB
}

func NewDuelRepository(db *gorm.DB) DuelRepository {
	return &duelRepository{db: db}
}

func (r *duelRepository) Create(ctx context.Context, duel *entity.Duel) error {
	return r.db.WithContext(ctx).Create(duel).Error
}

func (r *duelRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Duel, error) {
	var duel entity.Duel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&duel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &duel, nil
}

func (r *duelRepository) FindActive(ctx context.Context) ([]entity.Duel, error) {
	var duels []entity.Duel
	err := r.db.WithContext(ctx).
		Where("status = ?", entity.DuelActive).
		Order("started_at asc").
		Find(&duels).Error
	return duels, err
}

func (r *duelRepository) FindProfiles(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]entity.Profile, error) {
	var profiles []entity.Profile
	if err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]entity.Profile, len(profiles))
	for _, p := range profiles {
		out[p.UserID] = p
	}
	return out, nil
}

func (r *duelRepository) ExpirePending(ctx context.Context, cutoff time.Time) ([]entity.Duel, error) {
	var expired []entity.Duel
	err := r.db.WithContext(ctx).Model(&expired).
		Clauses(clause.Returning{}).
		Where("status = ? AND created_at < ?", entity.DuelPending, cutoff).
		Update("status", entity.DuelExpired).Error
	return expired, err
}

func (r *duelRepository) Transition(ctx context.Context, id uuid.UUID, from entity.DuelStatus, updates map[string]interface{}) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.Duel{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected == 1, res.Error
}

func (r *duelRepository) FindUnpaid(ctx context.Context) ([]entity.Duel, error) {
	var duels []entity.Duel
	err := r.db.WithContext(ctx).
		Where("status = ? AND paid_at IS NULL", entity.DuelCompleted).
		Order("completed_at asc").
		Find(&duels).Error
	return duels, err
}

func (r *duelRepository) MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.Duel{}).
		Where("id = ? AND status = ? AND paid_at IS NULL", id, entity.DuelCompleted).
		Update("paid_at", at)
	return res.RowsAffected == 1, res.Error
}
