package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// purgeTimeout bounds a single cleanup run
const purgeTimeout = 30 * time.Second

// Purger deletes revocation rows whose tokens have expired
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// CronService runs background maintenance jobs
type CronService struct {
	cron   *cron.Cron
	purger Purger
	logger *zap.Logger
}

// NewCronService creates a cron service and registers the revocation cleanup on spec
func NewCronService(spec string, purger Purger, logger *zap.Logger) (*CronService, error) {
	s := &CronService{
		cron:   cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		purger: purger,
		logger: logger,
	}

	if _, err := s.cron.AddFunc(spec, s.PurgeRevokedTokens); err != nil {
		return nil, err
	}
	return s, nil
}

// Start launches the scheduler in its own goroutine
func (s *CronService) Start() {
	s.cron.Start()
	s.logger.Info("cron service started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("cron service stopped")
}

// PurgeRevokedTokens deletes expired revocation rows
func (s *CronService) PurgeRevokedTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	deleted, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		s.logger.Error("revoked token cleanup failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("revoked tokens purged", zap.Int64("deleted", deleted))
	}
}
