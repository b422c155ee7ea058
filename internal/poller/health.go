package poller

import (
	"sync"
	"time"
)

// JobStatus is the last known outcome of a job
type JobStatus struct {
	LastSuccess         *time.Time `json:"last_success,omitempty"`
	LastError           string     `json:"last_error,omitempty"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
}

// Health tracks job outcomes for the health endpoint
type Health struct {
	mu   sync.Mutex
	jobs map[string]*JobStatus
}

func NewHealth() *Health {
	return &Health{jobs: make(map[string]*JobStatus)}
}

func (h *Health) register(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.jobs[name]; !ok {
		h.jobs[name] = &JobStatus{}
	}
}

func (h *Health) markSuccess(name string, at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.status(name)
	at = at.UTC()
	s.LastSuccess = &at
	s.LastError = ""
	s.ConsecutiveFailures = 0
}

func (h *Health) markFailure(name string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.status(name)
	s.LastError = err.Error()
	s.ConsecutiveFailures++
}

// status returns the entry for name (caller must hold lock)
func (h *Health) status(name string) *JobStatus {
	s, ok := h.jobs[name]
	if !ok {
		s = &JobStatus{}
		h.jobs[name] = s
	}
	return s
}

// Snapshot returns a copy of every job status
func (h *Health) Snapshot() map[string]JobStatus {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]JobStatus, len(h.jobs))
	for name, s := range h.jobs {
		cp := *s
		if s.LastSuccess != nil {
			t := *s.LastSuccess
			cp.LastSuccess = &t
		}
		out[name] = cp
	}
	return out
}

// Healthy reports whether every job has succeeded at least once and is not
// currently failing
func (h *Health) Healthy() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, s := range h.jobs {
		if s.LastSuccess == nil || s.ConsecutiveFailures > 0 {
			return false
		}
	}
	return true
}
