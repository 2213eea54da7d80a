// Package worker is the in-process periodic trigger. It only decides when to
// call into the job runner; which jobs are due is the runner's business.
package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"anoa.com/cpquest/pkg/apperror"
	"github.com/robfig/cron/v3"
)

// Task is anything the scheduler can fire.
type Task interface {
	// GetName returns the name used in logs.
	GetName() string
	// GetSchedule returns a cron spec such as "*/5 * * * *".
	GetSchedule() string
	Execute(ctx context.Context) error
}

type Scheduler struct {
	cron    *cron.Cron
	tasks   []Task
	timeout time.Duration
}

// NewScheduler builds a scheduler in loc. A tick that arrives while the
// previous one of the same task is still running is skipped.
func NewScheduler(loc *time.Location, timeout time.Duration) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	logger := cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		tasks:   make([]Task, 0),
		timeout: timeout,
	}
}

func (s *Scheduler) Register(task Task) error {
	schedule := task.GetSchedule()
	if schedule == "" {
		return fmt.Errorf("schedule %s: %w: empty cron spec", task.GetName(), apperror.ErrInvalidInput)
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.fire(task) }); err != nil {
		return fmt.Errorf("schedule %s: %w", task.GetName(), err)
	}
	log.Printf("📅 [%s] Scheduled with cron: %s", task.GetName(), schedule)

	s.tasks = append(s.tasks, task)
	return nil
}

func (s *Scheduler) fire(task Task) {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log.Printf("🤖 [%s] Starting scheduled run...", task.GetName())
	if err := task.Execute(ctx); err != nil {
		log.Printf("❌ [%s] Run failed: %v", task.GetName(), err)
	} else {
		log.Printf("✅ [%s] Run completed", task.GetName())
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("🚀 Scheduler started with %d registered tasks", len(s.tasks))
}

// Stop halts new ticks and waits for running ones to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Println("⚠️ Scheduler stop timed out with runs still in flight")
	}
	log.Println("🛑 Scheduler stopped")
}
