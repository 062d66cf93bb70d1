package search

import (
	"context"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atrium/internal/store"
	"github.com/atriumhq/atrium/pkg/models"
)

type fakeTicketStore struct {
	ticket      *models.Ticket
	savedVector []float32
	savedModel  string
	saves       int
}

func (s *fakeTicketStore) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	if s.ticket == nil {
		return nil, store.ErrNotFound
	}
	return s.ticket, nil
}

func (s *fakeTicketStore) SetTicketEmbedding(ctx context.Context, id string, vector []float32, model string) error {
	s.savedVector = vector
	s.savedModel = model
	s.saves++
	return nil
}

func TestRelatedForTicketEmbedsLazily(t *testing.T) {
	tickets := &fakeTicketStore{
		ticket: &models.Ticket{ID: "ticket-1", Title: "VPN down", Description: "Cannot connect"},
	}
	ai := &fakeAI{vector: []float32{0.3, 0.7}, model: "text-embedding-3-small"}
	retriever := NewRetriever(&fakePools{}, ai)

	_, err := retriever.RelatedForTicket(context.Background(), tickets, "ticket-1", 0)

	require.NoError(t, err)
	assert.Equal(t, 1, ai.calls)
	assert.Equal(t, 1, tickets.saves)
	assert.Equal(t, []float32{0.3, 0.7}, tickets.savedVector)
	assert.Equal(t, "text-embedding-3-small", tickets.savedModel)
}

func TestRelatedForTicketReusesCurrentModelVector(t *testing.T) {
	vec := pgvector.NewVector([]float32{0.3, 0.7})
	tickets := &fakeTicketStore{
		ticket: &models.Ticket{
			ID:             "ticket-1",
			Title:          "VPN down",
			Embedding:      &vec,
			EmbeddingModel: "text-embedding-3-small",
		},
	}
	ai := &fakeAI{model: "text-embedding-3-small"}
	retriever := NewRetriever(&fakePools{}, ai)

	_, err := retriever.RelatedForTicket(context.Background(), tickets, "ticket-1", 0)

	require.NoError(t, err)
	assert.Equal(t, 0, ai.calls)
	assert.Equal(t, 0, tickets.saves)
}

func TestRelatedForTicketReembedsAfterModelSwitch(t *testing.T) {
	vec := pgvector.NewVector([]float32{0.3, 0.7})
	tickets := &fakeTicketStore{
		ticket: &models.Ticket{
			ID:             "ticket-1",
			Title:          "VPN down",
			Embedding:      &vec,
			EmbeddingModel: "text-embedding-ada-002",
		},
	}
	ai := &fakeAI{vector: []float32{1, 0}, model: "text-embedding-3-small"}
	retriever := NewRetriever(&fakePools{}, ai)

	_, err := retriever.RelatedForTicket(context.Background(), tickets, "ticket-1", 0)

	require.NoError(t, err)
	assert.Equal(t, 1, ai.calls)
	assert.Equal(t, "text-embedding-3-small", tickets.savedModel)
}

func TestRelatedForTicketUsesLooserThreshold(t *testing.T) {
	pools := &fakePools{
		pages: []store.PageHit{
			{ID: "page-1", Title: "VPN guide", Distance: 0.72}, // 0.28: below 0.3, above 0.25
		},
	}
	vec := pgvector.NewVector([]float32{1})
	tickets := &fakeTicketStore{
		ticket: &models.Ticket{ID: "ticket-1", Embedding: &vec, EmbeddingModel: "m"},
	}
	retriever := NewRetriever(pools, &fakeAI{model: "m"})

	results, err := retriever.RelatedForTicket(context.Background(), tickets, "ticket-1", 0)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "page-1", results[0].ID)
}
