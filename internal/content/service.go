// Package content wires durable document writes to their side effects:
// every persisted change enqueues an embedding job and announces itself on
// the event bus.
package content

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/atriumhq/atrium/internal/events"
	"github.com/atriumhq/atrium/internal/indexer"
	"github.com/atriumhq/atrium/internal/store"
	"github.com/atriumhq/atrium/pkg/models"
)

type Service struct {
	store  *store.Store
	queue  *indexer.Queue
	events events.Publisher
}

func NewService(st *store.Store, queue *indexer.Queue, bus events.Publisher) *Service {
	if bus == nil {
		bus = events.NopPublisher{}
	}
	return &Service{store: st, queue: queue, events: bus}
}

// SaveDraft persists the live draft content and schedules a re-embedding
// of the page. The queue call returns immediately; indexing lag only means
// search is briefly stale.
func (s *Service) SaveDraft(ctx context.Context, pageID, content string) error {
	page, err := s.store.SavePageDraft(ctx, pageID, "", content)
	if err != nil {
		return err
	}

	s.queue.Enqueue(models.KindPage, pageID)

	s.publish(ctx, models.BaseEvent{
		ID:         uuid.New().String(),
		Type:       models.EventTypePageUpdated,
		Timestamp:  time.Now().UTC(),
		Source:     "content",
		Kind:       models.KindPage,
		DocumentID: pageID,
		Metadata: map[string]interface{}{
			"title":          page.Title,
			"content_length": len(content),
		},
	})

	return nil
}

// CreateVersion appends an immutable snapshot and schedules its one-time
// embedding.
func (s *Service) CreateVersion(ctx context.Context, pageID, content, changeDescription string) (*models.PageVersion, error) {
	version, err := s.store.CreatePageVersion(ctx, pageID, content, changeDescription)
	if err != nil {
		return nil, err
	}

	s.queue.Enqueue(models.KindPageVersion, version.ID)

	s.publish(ctx, models.BaseEvent{
		ID:         uuid.New().String(),
		Type:       models.EventTypeVersionCreated,
		Timestamp:  time.Now().UTC(),
		Source:     "content",
		Kind:       models.KindPageVersion,
		DocumentID: version.ID,
		Metadata: map[string]interface{}{
			"page_id":        pageID,
			"version_number": version.VersionNumber,
			"description":    changeDescription,
		},
	})

	return version, nil
}

func (s *Service) publish(ctx context.Context, event models.BaseEvent) {
	if err := s.events.Publish(ctx, event); err != nil {
		log.Printf("content: failed to publish %s event for %s: %v", event.Type, event.DocumentID, err)
	}
}

// Persister adapts Service to the autosave persister contract
type Persister struct {
	Service *Service
}

func (p Persister) SaveDraft(ctx context.Context, pageID, content string) error {
	return p.Service.SaveDraft(ctx, pageID, content)
}

func (p Persister) CreateVersion(ctx context.Context, pageID, content, changeDescription string) error {
	_, err := p.Service.CreateVersion(ctx, pageID, content, changeDescription)
	return err
}
