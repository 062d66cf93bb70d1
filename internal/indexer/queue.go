// Package indexer decouples "content changed" events from the slow,
// rate-limited act of calling an embedding provider. The queue is
// in-memory and not durable: jobs are idempotent re-derivations of a
// document's stored vector, so a lost job is re-triggered by the next edit.
package indexer

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atriumhq/atrium/pkg/models"
)

// Job is one unit of embedding work. Transient and queue-only.
type Job struct {
	Kind       models.DocumentKind
	DocumentID string
	Retries    int
	EnqueuedAt time.Time
}

// Processor performs the embed-and-store operation for one job
type Processor interface {
	Process(ctx context.Context, job Job) error
}

// QueueStatus is a diagnostics snapshot, not a flow-control signal
type QueueStatus struct {
	Pending int  `json:"pending"`
	Active  bool `json:"active"`
}

// Queue is a single-process FIFO with retry. Exactly one worker loop runs
// at a time; enqueue is safe from any request-handling goroutine.
type Queue struct {
	mu         sync.Mutex
	jobs       []Job
	running    bool
	processor  Processor
	events     EventPublisher
	jobDelay   time.Duration
	maxRetries int
}

func NewQueue(processor Processor, events EventPublisher, jobDelay time.Duration, maxRetries int) *Queue {
	return &Queue{
		processor:  processor,
		events:     events,
		jobDelay:   jobDelay,
		maxRetries: maxRetries,
	}
}

// Enqueue appends a job and starts the worker loop if it is idle.
// Fire-and-forget: no handle is returned.
func (q *Queue) Enqueue(kind models.DocumentKind, documentID string) {
	q.mu.Lock()
	q.jobs = append(q.jobs, Job{
		Kind:       kind,
		DocumentID: documentID,
		EnqueuedAt: time.Now().UTC(),
	})
	start := !q.running
	if start {
		q.running = true
	}
	q.mu.Unlock()

	if start {
		go q.drain()
	}
}

// drain pops and processes jobs until the queue is empty. A failed job is
// re-appended to the tail so retries interleave with fresh jobs instead of
// blocking the head on a persistently failing document.
func (q *Queue) drain() {
	ctx := context.Background()

	for {
		q.mu.Lock()
		if len(q.jobs) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		job := q.jobs[0]
		q.jobs = q.jobs[1:]
		q.mu.Unlock()

		if err := q.processor.Process(ctx, job); err != nil {
			q.handleFailure(job, err)
		}

		q.mu.Lock()
		more := len(q.jobs) > 0
		q.mu.Unlock()

		if more {
			time.Sleep(q.jobDelay)
		}
	}
}

func (q *Queue) handleFailure(job Job, err error) {
	if isPermanent(err) {
		log.Printf("indexer: dropping %s job for %s: %v", job.Kind, job.DocumentID, err)
		q.announceDrop(job, err)
		return
	}

	if job.Retries < q.maxRetries {
		job.Retries++
		log.Printf("indexer: %s job for %s failed (attempt %d/%d), requeued: %v",
			job.Kind, job.DocumentID, job.Retries, q.maxRetries+1, err)
		q.mu.Lock()
		q.jobs = append(q.jobs, job)
		q.mu.Unlock()
		return
	}

	// No dead-letter persistence. Search stays slightly stale until the
	// document's next edit re-triggers a job.
	log.Printf("indexer: dropping %s job for %s after %d attempts: %v",
		job.Kind, job.DocumentID, job.Retries+1, err)
	q.announceDrop(job, err)
}

// announceDrop reports a dropped job on the event bus so operators can
// spot documents that repeatedly fail to index. Best-effort.
func (q *Queue) announceDrop(job Job, cause error) {
	if q.events == nil {
		return
	}

	event := models.BaseEvent{
		ID:          uuid.New().String(),
		Type:        models.EventTypeIndexDropped,
		Timestamp:   time.Now().UTC(),
		Source:      "indexer",
		Kind:        job.Kind,
		DocumentID:  job.DocumentID,
		Description: cause.Error(),
		Metadata: map[string]interface{}{
			"attempts": job.Retries + 1,
		},
	}
	if err := q.events.Publish(context.Background(), event); err != nil {
		log.Printf("indexer: failed to publish drop event for %s: %v", job.DocumentID, err)
	}
}

// Status returns the current queue length and worker state
func (q *Queue) Status() QueueStatus {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueueStatus{Pending: len(q.jobs), Active: q.running}
}

// Clear drops all pending jobs. An in-flight job still completes or fails
// normally.
func (q *Queue) Clear() {
	q.mu.Lock()
	dropped := len(q.jobs)
	q.jobs = nil
	q.mu.Unlock()

	if dropped > 0 {
		log.Printf("indexer: cleared %d pending jobs", dropped)
	}
}

// permanentError marks failures that retrying cannot fix
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func markPermanent(err error) error {
	return &permanentError{err: err}
}

func isPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}
