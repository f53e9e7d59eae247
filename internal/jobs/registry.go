package jobs

import (
	"fmt"
	"sync"
	"time"
)

// janitorInterval is how often the registry sweeps for evictable jobs.
const janitorInterval = time.Minute

// Job is the mutable shared state for one optimization run. The worker
// writes the artifact path and terminal timestamp; handlers read them.
type Job struct {
	ID      string
	Queue   *Queue
	Created time.Time

	mu       sync.Mutex
	artifact string
	doneAt   time.Time
}

// SetArtifact records the rendered artifact path. The worker calls this
// once, before pushing the complete event, so a download attempted
// after the complete event always finds the path.
func (j *Job) SetArtifact(path string) {
	j.mu.Lock()
	j.artifact = path
	j.mu.Unlock()
}

// Artifact returns the recorded artifact path, if one has been set.
func (j *Job) Artifact() (string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.artifact, j.artifact != ""
}

// finish stamps the terminal time used for TTL eviction.
func (j *Job) finish(now time.Time) {
	j.mu.Lock()
	j.doneAt = now
	j.mu.Unlock()
}

func (j *Job) finishedBefore(cutoff time.Time) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return !j.doneAt.IsZero() && j.doneAt.Before(cutoff)
}

// Registry is the process-wide table of in-flight and recently finished
// jobs. Finished entries are evicted once they outlive the TTL; a zero
// TTL disables eviction and keeps entries for the life of the process.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job

	ttl         time.Duration
	janitorTick *time.Ticker
	janitorStop chan struct{}
}

// NewRegistry creates a registry. When ttl is positive a background
// goroutine sweeps finished jobs; call Stop to halt it.
func NewRegistry(ttl time.Duration) *Registry {
	r := &Registry{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
	if ttl > 0 {
		r.janitorTick = time.NewTicker(janitorInterval)
		r.janitorStop = make(chan struct{})
		go r.janitor()
	}
	return r
}

// Create registers a new job with a fresh queue. Identifiers are
// generated from UUIDs, so a collision here indicates caller error.
func (r *Registry) Create(id string) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[id]; exists {
		return nil, fmt.Errorf("job %s already registered", id)
	}

	job := &Job{ID: id, Queue: NewQueue(), Created: time.Now()}
	r.jobs[id] = job
	return job, nil
}

// Get looks up a job by id.
func (r *Registry) Get(id string) (*Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	return job, ok
}

// Finish marks a job terminal so the janitor can evict it later.
func (r *Registry) Finish(id string) {
	if job, ok := r.Get(id); ok {
		job.finish(time.Now())
	}
}

// Len reports the number of registered jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

// janitor periodically evicts jobs that finished longer than the TTL ago.
func (r *Registry) janitor() {
	for {
		select {
		case <-r.janitorTick.C:
			r.evictFinished(time.Now().Add(-r.ttl))
		case <-r.janitorStop:
			return
		}
	}
}

// evictFinished removes jobs whose terminal time predates cutoff.
func (r *Registry) evictFinished(cutoff time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, job := range r.jobs {
		if job.finishedBefore(cutoff) {
			delete(r.jobs, id)
		}
	}
}

// Stop halts the eviction goroutine. Safe to call when eviction is
// disabled.
func (r *Registry) Stop() {
	if r.janitorTick != nil {
		r.janitorTick.Stop()
		close(r.janitorStop)
	}
}
