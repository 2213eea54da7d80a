package worker

import (
	"context"
	"fmt"
	"log"

	schedulerService "anoa.com/cpquest/internal/modules/scheduler/service"
)

// RunnerTrigger fires the whole job set on every tick.
type RunnerTrigger struct {
	runner   schedulerService.Runner
	schedule string
}

func NewRunnerTrigger(runner schedulerService.Runner, schedule string) *RunnerTrigger {
	return &RunnerTrigger{runner: runner, schedule: schedule}
}

func (t *RunnerTrigger) GetName() string     { return "job-runner" }
func (t *RunnerTrigger) GetSchedule() string { return t.schedule }

// Execute reports an error when any job failed, so the tick is logged as a
// failure; every job has still been attempted.
func (t *RunnerTrigger) Execute(ctx context.Context) error {
	results := t.runner.RunAll(ctx)

	failed := 0
	for _, r := range results {
		switch r.Status {
		case schedulerService.StatusFailure:
			failed++
		case schedulerService.StatusSkipped:
			log.Printf("⏭️ [%s] skipped: %s", r.Name, r.Reason)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(results))
	}
	return nil
}
