// Package schedule wires up the cron job that periodically triggers a
// full pipeline run.
package schedule

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/zzoohub/idea-fork-sub001/internal/pipeline"
)

// Runner is the pipeline surface the scheduler needs.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

// Scheduler wraps robfig/cron and manages the periodic run loop.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	spec   string // cron spec, e.g. "@every 6h"
}

// New creates a scheduler with the given cron spec.
func New(runner Runner, spec string) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		spec:   spec,
	}
}

// Start registers the job and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.tick(ctx)
	})
	if err != nil {
		return fmt.Errorf("registering schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	log.Printf("scheduler started, spec: %s", s.spec)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("scheduler stopped")
}

// tick runs the pipeline once. A tick that lands while a manually
// triggered run is still in progress is skipped, not queued.
func (s *Scheduler) tick(ctx context.Context) {
	result, err := s.runner.Run(ctx)
	if err == pipeline.ErrAlreadyRunning {
		log.Println("scheduled run skipped, another run is in progress")
		return
	}
	if err != nil {
		log.Printf("scheduled run failed: %v", err)
		return
	}
	if result.HasErrors() {
		log.Printf("scheduled run finished with %d stage errors", len(result.Errors))
	}
}
