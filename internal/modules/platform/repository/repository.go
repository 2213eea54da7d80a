package repository

import (
	"context"

	"anoa.com/cpquest/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SyncRepository interface {
	FindLinkedProfiles(ctx context.Context) ([]entity.Profile, error)
	// RecordSolves inserts solves not seen before and returns only those.
	RecordSolves(ctx context.Context, solves []entity.Solve) ([]entity.Solve, error)
	// UpdateRating stores the latest rating. The first rating seen becomes the
	// baseline rank climb is measured from.
	UpdateRating(ctx context.Context, userID uuid.UUID, rating int) error
}

type syncRepository struct {
	db *gorm.DB
}

func NewSyncRepository(db *gorm.DB) SyncRepository {
	return &syncRepository{db: db}
}

func (r *syncRepository) FindLinkedProfiles(ctx context.Context) ([]entity.Profile, error) {
	var profiles []entity.Profile
	err := r.db.WithContext(ctx).
		Where("codeforces_handle IS NOT NULL AND codeforces_handle <> ''").
		Order("user_id").
		Find(&profiles).Error
	return profiles, err
}

func (r *syncRepository) RecordSolves(ctx context.Context, solves []entity.Solve) ([]entity.Solve, error) {
	var inserted []entity.Solve
	for i := range solves {
		s := solves[i]
		res := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "platform"}, {Name: "problem_id"}},
				DoNothing: true,
			}).
			Create(&s)
		if res.Error != nil {
			return inserted, res.Error
		}
		if res.RowsAffected == 1 {
			inserted = append(inserted, s)
		}
	}
	return inserted, nil
}

func (r *syncRepository) UpdateRating(ctx context.Context, userID uuid.UUID, rating int) error {
	return r.db.WithContext(ctx).Model(&entity.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"platform_rating": rating,
			"baseline_rating": gorm.Expr("CASE WHEN baseline_rating = 0 THEN ? ELSE baseline_rating END", rating),
			"rank_climb":      gorm.Expr("GREATEST(rank_climb, ? - CASE WHEN baseline_rating = 0 THEN ? ELSE baseline_rating END, 0)", rating, rating),
		}).Error
}
