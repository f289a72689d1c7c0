package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"cleanorder-api/internal/adapters/persistence/models"
	"cleanorder-api/internal/adapters/persistence/repositories"
	"cleanorder-api/internal/core/domain"
)

// activeCacheTTL bounds how long a "not revoked" answer is served from cache
const activeCacheTTL = time.Minute

// RevocationCache is the fast path in front of the revoked_tokens table
type RevocationCache interface {
	Get(ctx context.Context, tokenID string) (revoked bool, found bool, err error)
	Set(ctx context.Context, tokenID string, revoked bool, ttl time.Duration) error
}

// RevocationService tracks tokens invalidated before their expiry.
// MySQL is the source of truth; the cache is optional and failures fall through.
type RevocationService struct {
	repo   repositories.RevokedTokenRepository
	cache  RevocationCache
	logger *zap.Logger
	now    func() time.Time
}

// NewRevocationService creates a revocation service. cache may be nil.
func NewRevocationService(repo repositories.RevokedTokenRepository, cache RevocationCache, logger *zap.Logger) *RevocationService {
	return &RevocationService{
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// Revoke invalidates the session's token until it expires
func (s *RevocationService) Revoke(ctx context.Context, session domain.Session) error {
	if session.TokenID == "" {
		return nil
	}

	err := s.repo.Create(ctx, &models.RevokedToken{
		TokenID:   session.TokenID,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return err
	}

	if s.cache != nil {
		ttl := session.ExpiresAt.Sub(s.now())
		if err := s.cache.Set(ctx, session.TokenID, true, ttl); err != nil {
			s.logger.Warn("revocation cache write failed", zap.Uint("user_id", session.UserID), zap.Error(err))
		}
	}

	return nil
}

// IsRevoked reports whether tokenID was revoked
func (s *RevocationService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}

	if s.cache != nil {
		revoked, found, err := s.cache.Get(ctx, tokenID)
		if err == nil && found {
			return revoked, nil
		}
		if err != nil {
			s.logger.Warn("revocation cache read failed, using database", zap.Error(err))
		}
	}

	revoked, err := s.repo.Exists(ctx, tokenID)
	if err != nil {
		return false, err
	}

	if s.cache != nil {
		ttl := activeCacheTTL
		if revoked {
			// the row outlives the token; an hour covers the longest token
			ttl = time.Hour
		}
		if err := s.cache.Set(ctx, tokenID, revoked, ttl); err != nil {
			s.logger.Debug("revocation cache backfill failed", zap.Error(err))
		}
	}

	return revoked, nil
}

// PurgeExpired removes revocation rows for tokens that expired on their own
func (s *RevocationService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}
