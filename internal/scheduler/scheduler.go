// ABOUTME: In-process scheduler for deferred message sends
// ABOUTME: Volatile by design; pending sends do not survive a restart
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SendFunc performs the actual delivery when a job fires.
type SendFunc func(ctx context.Context, recipient, text string) error

// Job is a handle to one pending deferred send.
type Job struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Text      string    `json:"text"`
	At        time.Time `json:"at"`
}

// Scheduler holds pending sends keyed by job ID. Jobs fire against the
// process-wide timer wheel and release their handle afterwards; nothing is
// persisted, so a restart drops all pending jobs.
type Scheduler struct {
	send SendFunc

	mu     sync.Mutex
	timers map[string]*time.Timer
	jobs   map[string]Job
}

// New creates a scheduler that delivers via send.
func New(send SendFunc) *Scheduler {
	return &Scheduler{
		send:   send,
		timers: make(map[string]*time.Timer),
		jobs:   make(map[string]Job),
	}
}

// Schedule registers a send to fire at the given wall-clock time and
// returns its handle without blocking. Times in the past are rejected.
func (s *Scheduler) Schedule(recipient, text string, at time.Time) (Job, error) {
	if recipient == "" || text == "" {
		return Job{}, fmt.Errorf("recipient and text are required")
	}
	delay := time.Until(at)
	if delay <= 0 {
		return Job{}, fmt.Errorf("scheduled time %s is in the past", at.Format(time.RFC3339))
	}

	job := Job{
		ID:        uuid.New().String(),
		Recipient: recipient,
		Text:      text,
		At:        at,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	s.timers[job.ID] = time.AfterFunc(delay, func() { s.fire(job) })
	return job, nil
}

// fire delivers the job and releases its handle.
func (s *Scheduler) fire(job Job) {
	s.mu.Lock()
	delete(s.jobs, job.ID)
	delete(s.timers, job.ID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.send(ctx, job.Recipient, job.Text); err != nil {
		log.Printf("Warning: scheduled send %s failed: %v", job.ID, err)
	}
}

// Cancel stops a pending job. It reports whether the job was still pending.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	timer, ok := s.timers[id]
	if !ok {
		return false
	}
	timer.Stop()
	delete(s.timers, id)
	delete(s.jobs, id)
	return true
}

// Pending lists jobs that have not fired yet, soonest first.
func (s *Scheduler) Pending() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].At.Before(jobs[j].At) })
	return jobs
}

// Stop cancels every pending job, for shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
		delete(s.jobs, id)
	}
}
