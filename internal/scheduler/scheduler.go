// Package scheduler drives the engine's periodic tick: enumerate every
// workspace and process them sequentially, guarded by a singleton flag
// so overlapping ticks are skipped rather than queued. Built on
// github.com/robfig/cron/v3 (grounded on quantumlayer-resilience-fabric's
// services/drift/cmd/drift/main.go cron.New(cron.WithSeconds())+AddFunc+
// Start/Stop wiring) to honor the spec's configurable-cron-expression
// requirement, which the teacher's fixed time.Ticker interval cannot
// express.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/finopsbridge/engine/internal/jobrunner"
	"github.com/finopsbridge/engine/internal/logging"
	"github.com/finopsbridge/engine/internal/store"
)

var log = logging.For("scheduler")

// startupDelay is how long the scheduler waits after Start before firing
// its first, immediate tick.
const startupDelay = 5 * time.Second

// Scheduler ticks on a cron expression, processing every workspace
// sequentially on each tick it is not already running.
type Scheduler struct {
	cronExpr string
	store    *store.Store
	runner   *jobrunner.Runner

	cron    *cron.Cron
	running atomic.Bool
}

// New builds a Scheduler. cronExpr is a standard 5-field cron expression
// (e.g. "*/1 * * * *").
func New(cronExpr string, st *store.Store, runner *jobrunner.Runner) *Scheduler {
	return &Scheduler{cronExpr: cronExpr, store: st, runner: runner}
}

// Start schedules the cron job and, after a 5-second delay, fires one
// immediate tick. It returns once both are scheduled; it does not block.
func (s *Scheduler) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.cronExpr, s.tick); err != nil {
		return err
	}
	s.cron.Start()

	go func() {
		time.Sleep(startupDelay)
		s.tick()
	}()

	return nil
}

// Stop halts the cron trigger. It does not cancel an in-flight tick.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
}

// tick enumerates workspaces and processes them sequentially. Unhandled
// errors are logged and never escape — a failing tick must not stop the
// process or block the next one (§4.7, error taxonomy (f)).
func (s *Scheduler) tick() {
	if !s.running.CompareAndSwap(false, true) {
		log.Warn("tick already running, skipping")
		return
	}
	defer s.running.Store(false)

	workspaces, err := s.store.ListWorkspaces()
	if err != nil {
		log.WithError(err).Error("failed to list workspaces, skipping tick")
		return
	}

	for _, ws := range workspaces {
		if err := s.runner.ProcessWorkspace(context.Background(), ws.ID); err != nil {
			log.WithField("workspace_id", ws.ID).WithError(err).Error("workspace processing failed")
		}
	}
}
