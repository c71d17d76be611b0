package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/posthub/posthub/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type revocationRepository struct {
	db *gorm.DB
}

func NewRevocationRepository(db *gorm.DB) *revocationRepository {
	return &revocationRepository{db: db}
}

// Add inserts a revocation record. Revoking an already-revoked identifier is
// a no-op.
func (r *revocationRepository) Add(ctx context.Context, rec *domain.RevokedToken) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rec).Error
}

func (r *revocationRepository) Contains(ctx context.Context, jti uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.RevokedToken{}).
		Where("jti = ?", jti).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
