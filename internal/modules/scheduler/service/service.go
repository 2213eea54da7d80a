package service

import (
	"context"
	"fmt"
	"log"
	"time"

	schedulerRepo "anoa.com/cpquest/internal/modules/scheduler/repository"
	"anoa.com/cpquest/pkg/apperror"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusSkipped Status = "skipped"
)

// Job is one named periodic task. MinInterval of zero means the job runs on
// every trigger. NotBeforeHour of zero disables the local-hour gate.
type Job struct {
	Name          string
	MinInterval   time.Duration
	NotBeforeHour int
	Run           func(ctx context.Context) error
}

type JobResult struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Reason   string        `json:"reason,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

type JobInfo struct {
	Name          string     `json:"name"`
	MinInterval   string     `json:"min_interval,omitempty"`
	NotBeforeHour int        `json:"not_before_hour,omitempty"`
	LastRunAt     *time.Time `json:"last_run_at,omitempty"`
}

type Options struct {
	// Timeout bounds a single job body. Zero means no per-job deadline.
	Timeout  time.Duration
	Location *time.Location
}

type Runner interface {
	// RunAll runs every registered job in order and reports each outcome.
	RunAll(ctx context.Context) []JobResult
	// Run runs a single job. force bypasses the interval and hour guards.
	Run(ctx context.Context, name string, force bool) (JobResult, error)
	Jobs(ctx context.Context) ([]JobInfo, error)
}

type runner struct {
	store schedulerRepo.JobStateStore
	jobs  []Job
	opts  Options
	now   func() time.Time
}

func NewRunner(store schedulerRepo.JobStateStore, jobs []Job, opts Options) Runner {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &runner{
		store: store,
		jobs:  jobs,
		opts:  opts,
		now:   time.Now,
	}
}

func (r *runner) RunAll(ctx context.Context) []JobResult {
	results := make([]JobResult, 0, len(r.jobs))
	for _, job := range r.jobs {
		results = append(results, r.execute(ctx, job, false))
	}
	return results
}

func (r *runner) Run(ctx context.Context, name string, force bool) (JobResult, error) {
	for _, job := range r.jobs {
		if job.Name == name {
			return r.execute(ctx, job, force), nil
		}
	}
	return JobResult{}, fmt.Errorf("job %q: %w", name, apperror.ErrNotFound)
}

func (r *runner) Jobs(ctx context.Context) ([]JobInfo, error) {
	infos := make([]JobInfo, 0, len(r.jobs))
	for _, job := range r.jobs {
		info := JobInfo{Name: job.Name, NotBeforeHour: job.NotBeforeHour}
		if job.MinInterval > 0 {
			info.MinInterval = job.MinInterval.String()
		}
		last, ok, err := r.store.LastRun(ctx, job.Name)
		if err != nil {
			return nil, err
		}
		if ok {
			info.LastRunAt = &last
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (r *runner) execute(ctx context.Context, job Job, force bool) (res JobResult) {
	start := r.now()
	res = JobResult{Name: job.Name}
	defer func() {
		res.Duration = r.now().Sub(start)
	}()

	if !force {
		if reason, skip, err := r.guard(ctx, job, start); err != nil {
			res.Status = StatusFailure
			res.Reason = fmt.Sprintf("read job state: %v", err)
			log.Printf("❌ [Jobs] %s: %s", job.Name, res.Reason)
			return res
		} else if skip {
			res.Status = StatusSkipped
			res.Reason = reason
			return res
		}
	}

	log.Printf("🤖 [Jobs] %s starting", job.Name)
	if err := r.call(ctx, job); err != nil {
		res.Status = StatusFailure
		res.Reason = err.Error()
		log.Printf("❌ [Jobs] %s failed: %v", job.Name, err)
		return res
	}

	res.Status = StatusSuccess
	if err := r.store.MarkRun(ctx, job.Name, start); err != nil {
		res.Reason = fmt.Sprintf("run not recorded: %v", err)
		log.Printf("⚠️ [Jobs] %s succeeded but state was not saved: %v", job.Name, err)
	}
	log.Printf("✅ [Jobs] %s completed", job.Name)
	return res
}

func (r *runner) guard(ctx context.Context, job Job, now time.Time) (string, bool, error) {
	if job.NotBeforeHour > 0 {
		if h := now.In(r.opts.Location).Hour(); h < job.NotBeforeHour {
			return fmt.Sprintf("not before %02d:00 (now %02d:00)", job.NotBeforeHour, h), true, nil
		}
	}
	if job.MinInterval <= 0 {
		return "", false, nil
	}

	last, ok, err := r.store.LastRun(ctx, job.Name)
	if err != nil {
		return "", false, err
	}
	if ok {
		if since := now.Sub(last); since < job.MinInterval {
			return fmt.Sprintf("last run %s ago, interval %s", since.Round(time.Second), job.MinInterval), true, nil
		}
	}
	return "", false, nil
}

// call runs the body under the per-job timeout and turns a panic into an error
// so the remaining jobs still run.
func (r *runner) call(ctx context.Context, job Job) (err error) {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return job.Run(ctx)
}
