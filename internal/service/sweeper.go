package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/pantry/backend/internal/models"
)

// ResetTokenSweeper periodically clears password reset tokens past their expiry
type ResetTokenSweeper struct {
	db   *gorm.DB
	cron *cron.Cron
	log  *zap.Logger
	now  func() time.Time
}

func NewResetTokenSweeper(db *gorm.DB, schedule string, log *zap.Logger) (*ResetTokenSweeper, error) {
	s := &ResetTokenSweeper{
		db:   db,
		cron: cron.New(),
		log:  log,
		now:  time.Now,
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *ResetTokenSweeper) Start() {
	s.cron.Start()
	s.log.Info("reset token sweeper started")
}

// Stop waits for a running sweep to finish or ctx to expire
func (s *ResetTokenSweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("reset token sweeper did not stop in time")
	}
}

// Sweep clears every expired reset token and returns how many were cleared
func (s *ResetTokenSweeper) Sweep(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("reset_token IS NOT NULL AND reset_token_expiry < ?", s.now()).
		UpdateColumns(map[string]interface{}{
			"reset_token":        nil,
			"reset_token_expiry": nil,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to sweep reset tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *ResetTokenSweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.Sweep(ctx)
	if err != nil {
		s.log.Error("reset token sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("cleared expired reset tokens", zap.Int64("count", n))
	}
}
