package cron

import "context"

// Job is one unit of scheduled maintenance work, like pruning
// published outbox rows. Run must be safe to call repeatedly; the
// worker retries on the next tick after a failure.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds the jobs the cron worker executes each tick, in
// registration order.
type Registry struct {
	jobs []Job
}

// NewRegistry builds a registry from the given jobs, skipping nils so
// conditionally wired jobs can be passed straight through.
func NewRegistry(jobs ...Job) *Registry {
	registry := &Registry{}
	for _, job := range jobs {
		registry.Register(job)
	}
	return registry
}

// Register appends a job; nil jobs are ignored.
func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	r.jobs = append(r.jobs, job)
}

// Jobs returns a copy so callers cannot reorder the schedule.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}
