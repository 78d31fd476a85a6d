// Package jobs runs scheduled background work, such as the follow-up call
// sweep, on top of robfig/cron.
package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler registers named jobs against cron expressions. A slow run of a
// job suppresses the next tick instead of stacking up.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds(), cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
			cron.Recover(cron.DefaultLogger),
		)),
		logger:  logger,
		entries: make(map[string]cron.EntryID),
	}
}

func (s *Scheduler) Start() {
	s.logger.Info("job scheduler started")
	s.cron.Start()
}

// Stop halts scheduling. The returned context is done once jobs that were
// already running have finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("job scheduler stopping")
	return s.cron.Stop()
}

// AddJob schedules fn under a unique name. The expression uses the six-field
// cron format with a leading seconds field, e.g. "0 */15 * * * *".
func (s *Scheduler) AddJob(name string, cronExpr string, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	id, err := s.cron.AddFunc(cronExpr, func() {
		s.logger.Info("job starting", zap.String("job", name))
		fn()
		s.logger.Info("job finished", zap.String("job", name))
	})
	if err != nil {
		return fmt.Errorf("schedule job %s: %w", name, err)
	}

	s.entries[name] = id
	s.logger.Info("job scheduled",
		zap.String("job", name),
		zap.String("schedule", cronExpr))
	return nil
}

// RemoveJob unschedules a job by name.
func (s *Scheduler) RemoveJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.entries[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}
	s.cron.Remove(id)
	delete(s.entries, name)
	return nil
}
