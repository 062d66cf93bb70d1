package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/atriumhq/atrium/pkg/models"
)

func (s *Store) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.WithContext(ctx).First(&ticket, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load ticket %s: %w", id, err)
	}
	return &ticket, nil
}

func (s *Store) SetTicketEmbedding(ctx context.Context, id string, vector []float32, model string) error {
	now := time.Now().UTC()
	vec := pgvector.NewVector(vector)

	result := s.db.WithContext(ctx).Model(&models.Ticket{}).Where("id = ?", id).Updates(map[string]interface{}{
		"embedding":            &vec,
		"embedding_model":      model,
		"embedding_updated_at": &now,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to store embedding for ticket %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Store) ListTicketIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.Ticket{}).Order("created_at").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return ids, nil
}

// NearestTickets returns tickets ordered by ascending cosine distance
func (s *Store) NearestTickets(ctx context.Context, vector []float32, limit int, model string) ([]TicketHit, error) {
	var hits []TicketHit
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, title, description AS content, embedding <=> ? AS distance
		FROM tickets
		WHERE embedding IS NOT NULL AND embedding_model = ?
		ORDER BY distance ASC
		LIMIT ?`,
		pgvector.NewVector(vector), model, limit,
	).Scan(&hits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query nearest tickets: %w", err)
	}
	return hits, nil
}
