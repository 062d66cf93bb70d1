package indexer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atrium/pkg/models"
)

// recordingProcessor captures every processed job and fails according to
// the configured per-document error.
type recordingProcessor struct {
	mu       sync.Mutex
	jobs     []Job
	failures map[string]error
	failFor  map[string]int
}

func newRecordingProcessor() *recordingProcessor {
	return &recordingProcessor{
		failures: make(map[string]error),
		failFor:  make(map[string]int),
	}
}

func (p *recordingProcessor) Process(ctx context.Context, job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.jobs = append(p.jobs, job)

	if err, ok := p.failures[job.DocumentID]; ok {
		if remaining := p.failFor[job.DocumentID]; remaining != 0 {
			if remaining > 0 {
				p.failFor[job.DocumentID] = remaining - 1
			}
			return err
		}
	}
	return nil
}

// failAlways makes every attempt for the document fail
func (p *recordingProcessor) failAlways(documentID string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[documentID] = err
	p.failFor[documentID] = -1
}

// failTimes makes the first n attempts for the document fail
func (p *recordingProcessor) failTimes(documentID string, n int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[documentID] = err
	p.failFor[documentID] = n
}

func (p *recordingProcessor) processed() []Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Job(nil), p.jobs...)
}

func waitForIdle(t *testing.T, q *Queue) {
	t.Helper()
	require.Eventually(t, func() bool {
		status := q.Status()
		return status.Pending == 0 && !status.Active
	}, 2*time.Second, 5*time.Millisecond)
}

func TestQueueProcessesInOrder(t *testing.T) {
	processor := newRecordingProcessor()
	queue := NewQueue(processor, nil, 0, 3)

	queue.Enqueue(models.KindPage, "page-1")
	queue.Enqueue(models.KindPage, "page-2")
	queue.Enqueue(models.KindTicket, "ticket-1")

	waitForIdle(t, queue)

	jobs := processor.processed()
	require.Len(t, jobs, 3)
	assert.Equal(t, "page-1", jobs[0].DocumentID)
	assert.Equal(t, "page-2", jobs[1].DocumentID)
	assert.Equal(t, "ticket-1", jobs[2].DocumentID)
}

func TestQueueRetriesThenDrops(t *testing.T) {
	processor := newRecordingProcessor()
	processor.failAlways("page-bad", errors.New("provider timeout"))
	queue := NewQueue(processor, nil, 0, 3)

	queue.Enqueue(models.KindPage, "page-bad")

	waitForIdle(t, queue)

	// Initial attempt plus three retries, then the job is dropped.
	jobs := processor.processed()
	assert.Len(t, jobs, 4)
	assert.Equal(t, 0, queue.Status().Pending)
}

func TestQueueRetryGoesToTail(t *testing.T) {
	processor := newRecordingProcessor()
	processor.failTimes("page-flaky", 1, errors.New("provider timeout"))
	queue := NewQueue(processor, nil, 0, 3)

	queue.Enqueue(models.KindPage, "page-flaky")
	queue.Enqueue(models.KindPage, "page-ok")

	waitForIdle(t, queue)

	jobs := processor.processed()
	require.Len(t, jobs, 3)
	// The fresh job completes before the failed one's retry.
	assert.Equal(t, "page-flaky", jobs[0].DocumentID)
	assert.Equal(t, "page-ok", jobs[1].DocumentID)
	assert.Equal(t, "page-flaky", jobs[2].DocumentID)
	assert.Equal(t, 1, jobs[2].Retries)
}

func TestQueuePermanentErrorNotRetried(t *testing.T) {
	processor := newRecordingProcessor()
	processor.failAlways("page-empty", markPermanent(errors.New("nothing to embed")))
	queue := NewQueue(processor, nil, 0, 3)

	queue.Enqueue(models.KindPage, "page-empty")

	waitForIdle(t, queue)

	assert.Len(t, processor.processed(), 1)
}

func TestQueueDropPublishesEvent(t *testing.T) {
	processor := newRecordingProcessor()
	processor.failAlways("page-bad", errors.New("provider timeout"))
	publisher := &capturingPublisher{}
	queue := NewQueue(processor, publisher, 0, 3)

	queue.Enqueue(models.KindPage, "page-bad")

	waitForIdle(t, queue)

	events := publisher.captured()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventTypeIndexDropped, events[0].Type)
	assert.Equal(t, models.KindPage, events[0].Kind)
	assert.Equal(t, "page-bad", events[0].DocumentID)
	assert.Equal(t, 4, events[0].Metadata["attempts"])
}

func TestQueuePermanentDropPublishesEvent(t *testing.T) {
	processor := newRecordingProcessor()
	processor.failAlways("page-empty", markPermanent(errors.New("nothing to embed")))
	publisher := &capturingPublisher{}
	queue := NewQueue(processor, publisher, 0, 3)

	queue.Enqueue(models.KindPage, "page-empty")

	waitForIdle(t, queue)

	events := publisher.captured()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventTypeIndexDropped, events[0].Type)
	assert.Equal(t, 1, events[0].Metadata["attempts"])
}

func TestQueueRestartsAfterDraining(t *testing.T) {
	processor := newRecordingProcessor()
	queue := NewQueue(processor, nil, 0, 3)

	queue.Enqueue(models.KindPage, "page-1")
	waitForIdle(t, queue)

	queue.Enqueue(models.KindPage, "page-2")
	waitForIdle(t, queue)

	assert.Len(t, processor.processed(), 2)
}

func TestQueueClearDropsPending(t *testing.T) {
	release := make(chan struct{})
	processor := &blockingProcessor{release: release}
	queue := NewQueue(processor, nil, 0, 3)

	queue.Enqueue(models.KindPage, "page-1")

	// Wait until the worker picks up the first job, then stack more behind it.
	require.Eventually(t, func() bool {
		return processor.started.Load() > 0
	}, 2*time.Second, time.Millisecond)

	queue.Enqueue(models.KindPage, "page-2")
	queue.Enqueue(models.KindPage, "page-3")
	assert.Equal(t, 2, queue.Status().Pending)

	queue.Clear()
	assert.Equal(t, 0, queue.Status().Pending)

	close(release)
	waitForIdle(t, queue)

	// Only the in-flight job ran; the cleared jobs never did.
	assert.Equal(t, int64(1), processor.started.Load())
}

type blockingProcessor struct {
	started atomic.Int64
	release chan struct{}
}

func (p *blockingProcessor) Process(ctx context.Context, job Job) error {
	p.started.Add(1)
	<-p.release
	return nil
}
