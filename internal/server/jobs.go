package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"coverage-sim/internal/simulator"
)

type JobStatus string

const (
	StatusRunning  JobStatus = "running"
	StatusDone     JobStatus = "done"
	StatusError    JobStatus = "error"
	StatusCanceled JobStatus = "canceled"
)

// jobTTL is how long a finished job stays readable before it is pruned.
const jobTTL = time.Hour

// Job is an asynchronous simulation run. Progress is 0-100 and tracks the
// assignment scan, the only stage whose cost grows with customers times
// candidates.
type Job struct {
	ID        string
	DatasetID string
	CreatedAt time.Time

	mu         sync.RWMutex
	status     JobStatus
	progress   int
	logs       []string
	result     *simulator.Result
	err        string
	cancel     context.CancelFunc
	finishedAt time.Time
}

// JobView is a consistent copy of a job's state.
type JobView struct {
	ID        string            `json:"id"`
	DatasetID string            `json:"dataset_id"`
	Status    JobStatus         `json:"status"`
	Progress  int               `json:"progress"`
	Logs      []string          `json:"logs"`
	Error     string            `json:"error,omitempty"`
	Result    *simulator.Result `json:"result,omitempty"`
}

func newJob(datasetID string, cancel context.CancelFunc) *Job {
	return &Job{
		ID:        uuid.New().String(),
		DatasetID: datasetID,
		CreatedAt: time.Now(),
		status:    StatusRunning,
		logs:      []string{},
		cancel:    cancel,
	}
}

func (j *Job) Log(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.logs = append(j.logs, fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), msg))
}

// SetProgress matches calculator.ProgressCallback.
func (j *Job) SetProgress(current, total int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if total > 0 {
		j.progress = int(float64(current) / float64(total) * 100)
	}
}

// Cancel stops a running job. It is a no-op once the job has finished.
func (j *Job) Cancel() {
	j.mu.Lock()
	running := j.status == StatusRunning
	j.mu.Unlock()
	if running {
		j.Log("cancel requested")
		j.cancel()
	}
}

func (j *Job) finish(res *simulator.Result, err error, canceled bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.finishedAt = time.Now()
	ts := j.finishedAt.Format("15:04:05")
	switch {
	case canceled:
		j.status = StatusCanceled
		j.logs = append(j.logs, fmt.Sprintf("[%s] canceled", ts))
	case err != nil:
		j.status = StatusError
		j.err = err.Error()
		j.logs = append(j.logs, fmt.Sprintf("[%s] error: %s", ts, j.err))
	default:
		j.status = StatusDone
		j.result = res
		j.progress = 100
		j.logs = append(j.logs, fmt.Sprintf("[%s] done: %d customers in radius", ts, res.Summary.InRadius))
	}
}

func (j *Job) View() JobView {
	j.mu.RLock()
	defer j.mu.RUnlock()
	logs := make([]string, len(j.logs))
	copy(logs, j.logs)
	return JobView{
		ID:        j.ID,
		DatasetID: j.DatasetID,
		Status:    j.status,
		Progress:  j.progress,
		Logs:      logs,
		Error:     j.err,
		Result:    j.result,
	}
}

// Jobs indexes jobs by id.
type Jobs struct {
	mu    sync.RWMutex
	items map[string]*Job
}

func NewJobs() *Jobs {
	return &Jobs{items: make(map[string]*Job)}
}

func (s *Jobs) add(j *Job) {
	s.mu.Lock()
	s.pruneLocked(j.CreatedAt)
	s.items[j.ID] = j
	s.mu.Unlock()
}

// expired reports whether the job finished more than jobTTL before now.
func (j *Job) expired(now time.Time) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status != StatusRunning && now.Sub(j.finishedAt) > jobTTL
}

func (s *Jobs) pruneLocked(now time.Time) {
	for id, j := range s.items {
		if j.expired(now) {
			delete(s.items, id)
		}
	}
}

// Prune drops finished jobs older than jobTTL. Running jobs are kept.
func (s *Jobs) Prune(now time.Time) {
	s.mu.Lock()
	s.pruneLocked(now)
	s.mu.Unlock()
}

// RemoveDataset cancels and forgets every job started on the dataset.
func (s *Jobs) RemoveDataset(datasetID string) int {
	s.mu.Lock()
	var removed []*Job
	for id, j := range s.items {
		if j.DatasetID == datasetID {
			removed = append(removed, j)
			delete(s.items, id)
		}
	}
	s.mu.Unlock()
	for _, j := range removed {
		j.Cancel()
	}
	return len(removed)
}

func (s *Jobs) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Jobs) Get(id string) (*Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.items[id]
	return j, ok
}
