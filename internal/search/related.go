package search

import (
	"context"
	"fmt"

	"github.com/atriumhq/atrium/pkg/models"
)

// TicketStore is the slice of the persistence layer the related-documents
// path reads and, lazily, writes.
type TicketStore interface {
	GetTicket(ctx context.Context, id string) (*models.Ticket, error)
	SetTicketEmbedding(ctx context.Context, id string, vector []float32, model string) error
}

// RelatedForTicket finds pages and versions related to a ticket. If the
// ticket already carries a vector from the current model it is reused
// without a provider call; otherwise one is generated from title plus
// description and persisted back onto the ticket before retrieval. This
// read can therefore write, cost a provider call, and fail with any
// provider error.
func (r *Retriever) RelatedForTicket(ctx context.Context, tickets TicketStore, ticketID string, limit int) ([]models.SearchResult, error) {
	ticket, err := tickets.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	currentModel, err := r.ai.EmbeddingModel(ctx)
	if err != nil {
		return nil, err
	}

	var vector []float32
	model := currentModel

	if ticket.Embedding != nil && ticket.EmbeddingModel == currentModel {
		vector = ticket.Embedding.Slice()
	} else {
		vector, model, err = r.ai.EmbedText(ctx, ticket.Title+"\n\n"+ticket.Description)
		if err != nil {
			return nil, fmt.Errorf("failed to embed ticket %s: %w", ticketID, err)
		}
		if err := tickets.SetTicketEmbedding(ctx, ticketID, vector, model); err != nil {
			return nil, fmt.Errorf("failed to persist ticket embedding: %w", err)
		}
	}

	return r.SearchVector(ctx, vector, model, Options{
		Limit:     limit,
		Threshold: TicketThreshold,
	})
}
