package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	schedulerRepo "anoa.com/cpquest/internal/modules/scheduler/repository"
	schedulerService "anoa.com/cpquest/internal/modules/scheduler/service"
	"anoa.com/cpquest/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deadlineTask struct {
	runs        int
	hadDeadline bool
}

func (d *deadlineTask) GetName() string     { return "deadline" }
func (d *deadlineTask) GetSchedule() string { return "@every 1m" }
func (d *deadlineTask) Execute(ctx context.Context) error {
	d.runs++
	_, d.hadDeadline = ctx.Deadline()
	return nil
}

type countingTask struct {
	name, schedule string
	runs           int
}

func (c *countingTask) GetName() string     { return c.name }
func (c *countingTask) GetSchedule() string { return c.schedule }
func (c *countingTask) Execute(context.Context) error {
	c.runs++
	return nil
}

func TestRegister(t *testing.T) {
	s := NewScheduler(time.UTC, 0)

	require.NoError(t, s.Register(&countingTask{name: "trigger", schedule: "*/5 * * * *"}))
	assert.ErrorIs(t, s.Register(&countingTask{name: "manual"}), apperror.ErrInvalidInput)
	assert.Error(t, s.Register(&countingTask{name: "broken", schedule: "every now and then"}))

	assert.Len(t, s.tasks, 1)
	assert.Len(t, s.cron.Entries(), 1)
}

func TestFireAppliesTimeout(t *testing.T) {
	s := NewScheduler(time.UTC, 20*time.Millisecond)
	task := &deadlineTask{}

	s.fire(task)
	assert.True(t, task.hadDeadline)
	assert.Equal(t, 1, task.runs)
}

func TestRunnerTrigger(t *testing.T) {
	runner := schedulerService.NewRunner(schedulerRepo.NewMemoryStateStore(), []schedulerService.Job{
		{Name: "ok", Run: func(context.Context) error { return nil }},
		{Name: "broken", Run: func(context.Context) error { return errors.New("boom") }},
	}, schedulerService.Options{})

	trigger := NewRunnerTrigger(runner, "*/5 * * * *")
	err := trigger.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
}
