// Package scheduler re-runs the pipeline on a cron schedule. The upstream
// catalog only changes slowly, so the usual deployment refreshes a few
// times a day and serves memoized tables in between.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/basinworks/wellpipe/internal/service"
)

// refreshTimeout bounds one scheduled refresh end to end.
const refreshTimeout = 10 * time.Minute

// Scheduler drives periodic refreshes of the computed tables.
type Scheduler struct {
	cron    *cron.Cron
	service *service.WellService
	entryID cron.EntryID
}

// NewScheduler creates a scheduler for the given service.
func NewScheduler(svc *service.WellService) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		service: svc,
	}
}

// Start registers the refresh job under the given cron expression and
// starts the scheduler.
func (s *Scheduler) Start(spec string) error {
	entryID, err := s.cron.AddFunc(spec, s.runRefresh)
	if err != nil {
		return err
	}
	s.entryID = entryID
	s.cron.Start()
	log.Printf("scheduler: refresh scheduled with spec %q", spec)
	return nil
}

// Stop stops the scheduler, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Printf("scheduler: stopped")
}

// runRefresh invalidates the memoized inputs and rebuilds both tables.
// A failed rebuild keeps the previously published tables in place, so a
// flaky upstream degrades to stale data rather than no data.
func (s *Scheduler) runRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	s.service.Invalidate()
	if _, err := s.service.HarvestWells(ctx); err != nil {
		log.Printf("scheduler: harvest refresh failed, keeping last good table: %v", err)
	}
	if _, err := s.service.RefreshAnalytics(ctx); err != nil {
		log.Printf("scheduler: analytics refresh failed, keeping last good table: %v", err)
	}
}
