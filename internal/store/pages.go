package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/atriumhq/atrium/pkg/models"
)

var ErrNotFound = errors.New("record not found")

func (s *Store) GetPage(ctx context.Context, id string) (*models.Page, error) {
	var page models.Page
	if err := s.db.WithContext(ctx).First(&page, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load page %s: %w", id, err)
	}
	return &page, nil
}

// SavePageDraft overwrites the live draft content of a page
func (s *Store) SavePageDraft(ctx context.Context, id, title, content string) (*models.Page, error) {
	updates := map[string]interface{}{
		"content":    content,
		"updated_at": time.Now().UTC(),
	}
	if title != "" {
		updates["title"] = title
	}

	result := s.db.WithContext(ctx).Model(&models.Page{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to save draft for page %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.GetPage(ctx, id)
}

// SetPageEmbedding stores a freshly produced vector together with the model
// that produced it and the time it was produced.
func (s *Store) SetPageEmbedding(ctx context.Context, id string, vector []float32, model string) error {
	now := time.Now().UTC()
	vec := pgvector.NewVector(vector)

	result := s.db.WithContext(ctx).Model(&models.Page{}).Where("id = ?", id).Updates(map[string]interface{}{
		"embedding":            &vec,
		"embedding_model":      model,
		"embedding_updated_at": &now,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to store embedding for page %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// CreatePageVersion appends an immutable snapshot of the page's current
// title and the given content, numbered after the latest existing version.
func (s *Store) CreatePageVersion(ctx context.Context, pageID, content, changeDescription string) (*models.PageVersion, error) {
	page, err := s.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}

	var latest int
	if err := s.db.WithContext(ctx).Model(&models.PageVersion{}).
		Where("page_id = ?", pageID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&latest).Error; err != nil {
		return nil, fmt.Errorf("failed to determine version number for page %s: %w", pageID, err)
	}

	version := models.PageVersion{
		ID:                uuid.New().String(),
		PageID:            pageID,
		VersionNumber:     latest + 1,
		Title:             page.Title,
		Content:           content,
		ChangeDescription: changeDescription,
		CreatedAt:         time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(&version).Error; err != nil {
		return nil, fmt.Errorf("failed to create version for page %s: %w", pageID, err)
	}

	return &version, nil
}

func (s *Store) GetPageVersion(ctx context.Context, id string) (*models.PageVersion, error) {
	var version models.PageVersion
	if err := s.db.WithContext(ctx).First(&version, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load page version %s: %w", id, err)
	}
	return &version, nil
}

// SetPageVersionEmbedding is called once, at snapshot indexing time.
// Versions are append-only history; the vector is never refreshed.
func (s *Store) SetPageVersionEmbedding(ctx context.Context, id string, vector []float32, model string) error {
	now := time.Now().UTC()
	vec := pgvector.NewVector(vector)

	result := s.db.WithContext(ctx).Model(&models.PageVersion{}).Where("id = ?", id).Updates(map[string]interface{}{
		"embedding":            &vec,
		"embedding_model":      model,
		"embedding_updated_at": &now,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to store embedding for version %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Store) ListPageIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.Page{}).Order("created_at").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	return ids, nil
}

// PageHit is one nearest-neighbor row from the pages pool
type PageHit struct {
	ID       string
	Title    string
	Content  string
	Distance float64
}

// VersionHit is one nearest-neighbor row from the page-versions pool
type VersionHit struct {
	ID            string
	PageID        string
	VersionNumber int
	Title         string
	Content       string
	Distance      float64
}

// TicketHit is one nearest-neighbor row from the tickets pool
type TicketHit struct {
	ID       string
	Title    string
	Content  string
	Distance float64
}

// NearestPages returns live pages ordered by ascending cosine distance.
// Rows without an embedding, or embedded under a different model than the
// one currently configured, never participate.
func (s *Store) NearestPages(ctx context.Context, vector []float32, limit int, model string) ([]PageHit, error) {
	var hits []PageHit
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, title, content, embedding <=> ? AS distance
		FROM pages
		WHERE embedding IS NOT NULL AND embedding_model = ?
		ORDER BY distance ASC
		LIMIT ?`,
		pgvector.NewVector(vector), model, limit,
	).Scan(&hits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query nearest pages: %w", err)
	}
	return hits, nil
}

// NearestPageVersions returns non-archived version snapshots ordered by
// ascending cosine distance.
func (s *Store) NearestPageVersions(ctx context.Context, vector []float32, limit int, model string) ([]VersionHit, error) {
	var hits []VersionHit
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, page_id, version_number, title, content, embedding <=> ? AS distance
		FROM page_versions
		WHERE embedding IS NOT NULL AND embedding_model = ? AND archived = false
		ORDER BY distance ASC
		LIMIT ?`,
		pgvector.NewVector(vector), model, limit,
	).Scan(&hits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query nearest page versions: %w", err)
	}
	return hits, nil
}
