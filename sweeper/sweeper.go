package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const runTimeout = 30 * time.Second

type ExpiredEventDeleter interface {
	DeleteExpiredEvents(ctx context.Context, before int64) (int64, error)
}

// Sweeper periodically deletes events whose booking window closed more than
// the retention period ago.
type Sweeper struct {
	deleter   ExpiredEventDeleter
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time
	cron      *cron.Cron
}

func New(deleter ExpiredEventDeleter, retention time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		deleter:   deleter,
		retention: retention,
		logger:    logger.Named("sweeper"),
		now:       time.Now,
		cron:      cron.New(cron.WithLocation(time.UTC)),
	}
}

// RunOnce performs a single sweep and reports how many events were removed.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	before := s.now().Add(-s.retention).Unix()
	n, err := s.deleter.DeleteExpiredEvents(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired events: %w", err)
	}
	return n, nil
}

// Start schedules the sweep with a standard five-field cron expression or a
// descriptor such as "@daily".
func (s *Sweeper) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		n, err := s.RunOnce(ctx)
		if err != nil {
			s.logger.Error("sweep failed", zap.Error(err))
			return
		}
		s.logger.Info("sweep completed", zap.Int64("deleted", n))
	})
	if err != nil {
		return fmt.Errorf("add cron func: %w", err)
	}
	s.cron.Start()
	s.logger.Info("sweeper started", zap.String("schedule", schedule), zap.Duration("retention", s.retention))
	return nil
}

// Stop halts scheduling. The returned context is done once a running sweep
// has finished.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}
