// Package scheduler runs the daily ledger update pass on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-tracker/internal/service"
)

// Scheduler manages the scheduled update job.
type Scheduler struct {
	cron            *cron.Cron
	tracker         *service.Tracker
	policy          service.Policy
	log             *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	passTimeout     time.Duration
	onUpdate        func(*service.Portfolio)
	gracefulTimeout time.Duration
}

// NewScheduler creates a scheduler driving the tracker with the given
// policy.
func NewScheduler(tracker *service.Tracker, policy service.Policy, log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logrus.New()
	}
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		tracker:         tracker,
		policy:          policy,
		log:             log,
		jobIDs:          make([]cron.EntryID, 0),
		passTimeout:     10 * time.Minute,
		gracefulTimeout: 30 * time.Second,
	}
}

// OnUpdate registers a callback invoked with the refreshed portfolio after
// every successful pass. Used by the API layer to push updates to websocket
// subscribers.
func (s *Scheduler) OnUpdate(fn func(*service.Portfolio)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = fn
}

// ScheduleDailyUpdate schedules the update pass with the given cron
// expression.
func (s *Scheduler) ScheduleDailyUpdate(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, s.runPass)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.log.WithField("cron", cronExpression).Info("Scheduled daily ledger update")
	return nil
}

func (s *Scheduler) runPass() {
	ctx, cancel := context.WithTimeout(context.Background(), s.passTimeout)
	defer cancel()

	s.log.Info("Starting scheduled ledger update")
	p, err := s.tracker.UpdateLedger(ctx, s.policy)
	if err != nil {
		s.log.WithError(err).Error("Scheduled ledger update failed")
		return
	}

	s.log.WithFields(logrus.Fields{
		"created": p.Created,
		"settled": p.Settled,
		"profit":  p.Summary.Profit,
	}).Info("Scheduled ledger update completed")

	s.mu.RLock()
	fn := s.onUpdate
	s.mu.RUnlock()
	if fn != nil {
		fn(p)
	}
}

// Start begins executing scheduled jobs.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.cron.Start()
	s.isRunning = true
	s.log.Info("Scheduler started")
}

// Stop halts the scheduler, waiting up to the graceful timeout for a
// running pass.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(s.gracefulTimeout):
		s.log.Warn("Scheduler stop timed out with a pass still running")
	}
	s.isRunning = false
	s.log.Info("Scheduler stopped")
}
