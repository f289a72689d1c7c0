package repositories

import (
	"context"
	"time"

	"cleanorder-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// revokedTokenRepository implements RevokedTokenRepository interface
type revokedTokenRepository struct {
	db *gorm.DB
}

// NewRevokedTokenRepository creates a new revoked token repository
func NewRevokedTokenRepository(db *gorm.DB) RevokedTokenRepository {
	return &revokedTokenRepository{db: db}
}

// Create records a revoked token. Revoking twice is not an error.
func (r *revokedTokenRepository) Create(ctx context.Context, token *models.RevokedToken) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(token).Error
}

// Exists checks if a token id has been revoked
func (r *revokedTokenRepository) Exists(ctx context.Context, tokenID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RevokedToken{}).
		Where("token_id = ?", tokenID).
		Count(&count).Error
	return count > 0, err
}

// DeleteExpired deletes rows whose token has expired (cleanup job)
func (r *revokedTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.RevokedToken{})
	return result.RowsAffected, result.Error
}
