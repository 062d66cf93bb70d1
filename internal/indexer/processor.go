package indexer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/atriumhq/atrium/internal/ai"
	"github.com/atriumhq/atrium/pkg/models"
)

// Embedder produces a vector plus the name of the model that produced it
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, string, error)
}

// DocumentStore is the subset of the persistence layer the indexer writes
type DocumentStore interface {
	GetPage(ctx context.Context, id string) (*models.Page, error)
	SetPageEmbedding(ctx context.Context, id string, vector []float32, model string) error
	GetPageVersion(ctx context.Context, id string) (*models.PageVersion, error)
	SetPageVersionEmbedding(ctx context.Context, id string, vector []float32, model string) error
	GetTicket(ctx context.Context, id string) (*models.Ticket, error)
	SetTicketEmbedding(ctx context.Context, id string, vector []float32, model string) error
}

// EventPublisher announces completed index work. Optional and best-effort;
// a publish failure never fails the job.
type EventPublisher interface {
	Publish(ctx context.Context, event models.BaseEvent) error
}

// EmbedProcessor loads the target document, embeds its text, and stores
// the resulting vector tagged with the producing model.
type EmbedProcessor struct {
	store    DocumentStore
	embedder Embedder
	events   EventPublisher
}

func NewEmbedProcessor(store DocumentStore, embedder Embedder, events EventPublisher) *EmbedProcessor {
	return &EmbedProcessor{store: store, embedder: embedder, events: events}
}

func (p *EmbedProcessor) Process(ctx context.Context, job Job) error {
	var err error
	switch job.Kind {
	case models.KindPage:
		err = p.embedPage(ctx, job.DocumentID)
	case models.KindPageVersion:
		err = p.embedPageVersion(ctx, job.DocumentID)
	case models.KindTicket:
		err = p.embedTicket(ctx, job.DocumentID)
	default:
		// Kinds are a closed set; an unknown kind is a caller bug.
		err = fmt.Errorf("unknown job kind: %q", job.Kind)
	}

	if err != nil {
		// Empty content stays empty on retry; a vanished document will not
		// reappear. Everything else (transport, provider) is retryable.
		if errors.Is(err, ai.ErrEmptyInput) {
			return markPermanent(err)
		}
		return err
	}

	p.announce(ctx, job)
	return nil
}

func (p *EmbedProcessor) embedPage(ctx context.Context, id string) error {
	page, err := p.store.GetPage(ctx, id)
	if err != nil {
		return err
	}

	vector, model, err := p.embedder.EmbedText(ctx, page.Title+"\n\n"+page.Content)
	if err != nil {
		return err
	}

	return p.store.SetPageEmbedding(ctx, id, vector, model)
}

func (p *EmbedProcessor) embedPageVersion(ctx context.Context, id string) error {
	version, err := p.store.GetPageVersion(ctx, id)
	if err != nil {
		return err
	}

	vector, model, err := p.embedder.EmbedText(ctx, version.Title+"\n\n"+version.Content)
	if err != nil {
		return err
	}

	return p.store.SetPageVersionEmbedding(ctx, id, vector, model)
}

func (p *EmbedProcessor) embedTicket(ctx context.Context, id string) error {
	ticket, err := p.store.GetTicket(ctx, id)
	if err != nil {
		return err
	}

	vector, model, err := p.embedder.EmbedText(ctx, ticket.Title+"\n\n"+ticket.Description)
	if err != nil {
		return err
	}

	return p.store.SetTicketEmbedding(ctx, id, vector, model)
}

func (p *EmbedProcessor) announce(ctx context.Context, job Job) {
	if p.events == nil {
		return
	}

	event := models.BaseEvent{
		ID:         uuid.New().String(),
		Type:       models.EventTypeDocumentIndexed,
		Timestamp:  time.Now().UTC(),
		Source:     "indexer",
		Kind:       job.Kind,
		DocumentID: job.DocumentID,
	}
	if err := p.events.Publish(ctx, event); err != nil {
		log.Printf("indexer: failed to publish indexed event for %s: %v", job.DocumentID, err)
	}
}
