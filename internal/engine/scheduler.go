package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler triggers engine runs on a cron schedule. A tick that lands
// while the previous run is still in flight is skipped, never queued.
type Scheduler struct {
	cron       *cron.Cron
	engine     *Engine
	logger     *slog.Logger
	runTimeout time.Duration
}

// NewScheduler creates a Scheduler for the given five-field cron spec.
func NewScheduler(e *Engine, spec string, runTimeout time.Duration, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:       cron.New(),
		engine:     e,
		logger:     logger,
		runTimeout: runTimeout,
	}

	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins firing scheduled runs in the background.
func (s *Scheduler) Start() {
	s.logger.Info("scheduler started")
	s.cron.Start()
}

// Stop halts scheduling and waits for an in-flight tick to return.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	_, err := s.engine.Run(ctx)
	if errors.Is(err, ErrRunInProgress) {
		s.logger.Info("scheduled run skipped, previous run still in flight")
		return
	}
	if err != nil {
		s.logger.Error("scheduled run failed", "error", err)
	}
}
