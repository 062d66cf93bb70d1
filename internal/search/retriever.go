// Package search ranks stored document vectors against a query vector and
// merges hits from multiple content pools into one ordered list.
package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/atriumhq/atrium/internal/ai"
	"github.com/atriumhq/atrium/internal/store"
	"github.com/atriumhq/atrium/pkg/models"
)

const (
	// DefaultLimit is K, the merged result count
	DefaultLimit = 5

	// DefaultThreshold is the minimum similarity for free-text search
	DefaultThreshold = 0.3

	// TicketThreshold is the looser floor for the ticket-relation variant
	TicketThreshold = 0.25

	// excerptLength bounds response payload size, not security
	excerptLength = 500

	// pageOverfetch compensates for post-hoc threshold filtering
	pageOverfetch = 2
)

// PoolStore queries each content pool for its own nearest neighbors,
// ordered by ascending cosine distance.
type PoolStore interface {
	NearestPages(ctx context.Context, vector []float32, limit int, model string) ([]store.PageHit, error)
	NearestPageVersions(ctx context.Context, vector []float32, limit int, model string) ([]store.VersionHit, error)
	NearestTickets(ctx context.Context, vector []float32, limit int, model string) ([]store.TicketHit, error)
}

// AIService is the slice of the ai package the retriever needs
type AIService interface {
	EmbedText(ctx context.Context, text string) ([]float32, string, error)
	EmbeddingModel(ctx context.Context) (string, error)
}

// Options tunes one retrieval call. Zero values mean defaults.
type Options struct {
	Limit          int
	Threshold      float64
	IncludeTickets bool
}

func (o Options) withDefaults() Options {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	return o
}

type Retriever struct {
	pools PoolStore
	ai    AIService
}

func NewRetriever(pools PoolStore, aiService AIService) *Retriever {
	return &Retriever{pools: pools, ai: aiService}
}

// SearchText embeds the query with the current provider and runs a
// multi-pool vector search. A provider failure surfaces as a search
// failure; the layer above degrades to plain substring filtering.
func (r *Retriever) SearchText(ctx context.Context, query string, opts Options) ([]models.SearchResult, error) {
	vector, model, err := r.ai.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return r.SearchVector(ctx, vector, model, opts)
}

// SearchVector queries each pool independently, converts distances to
// similarities, drops rows below the threshold, then merges everything
// into one list sorted by similarity and truncated to K. Only vectors
// produced by the given model participate, so a provider switch never
// compares vectors across embedding spaces.
func (r *Retriever) SearchVector(ctx context.Context, vector []float32, model string, opts Options) ([]models.SearchResult, error) {
	opts = opts.withDefaults()

	pages, err := r.pools.NearestPages(ctx, vector, opts.Limit*pageOverfetch, model)
	if err != nil {
		return nil, fmt.Errorf("failed to search pages pool: %w", err)
	}

	versions, err := r.pools.NearestPageVersions(ctx, vector, opts.Limit, model)
	if err != nil {
		return nil, fmt.Errorf("failed to search versions pool: %w", err)
	}

	results := make([]models.SearchResult, 0, len(pages)+len(versions))

	for _, hit := range pages {
		similarity := 1 - hit.Distance
		if similarity < opts.Threshold {
			continue
		}
		results = append(results, models.SearchResult{
			Kind:       models.KindPage,
			ID:         hit.ID,
			Title:      hit.Title,
			Excerpt:    excerpt(hit.Content),
			Similarity: similarity,
		})
	}

	for _, hit := range versions {
		similarity := 1 - hit.Distance
		if similarity < opts.Threshold {
			continue
		}
		results = append(results, models.SearchResult{
			Kind:       models.KindPageVersion,
			ID:         hit.ID,
			PageID:     hit.PageID,
			Title:      fmt.Sprintf("%s (v%d)", hit.Title, hit.VersionNumber),
			Excerpt:    excerpt(hit.Content),
			Similarity: similarity,
		})
	}

	if opts.IncludeTickets {
		tickets, err := r.pools.NearestTickets(ctx, vector, opts.Limit, model)
		if err != nil {
			return nil, fmt.Errorf("failed to search tickets pool: %w", err)
		}
		for _, hit := range tickets {
			similarity := 1 - hit.Distance
			if similarity < opts.Threshold {
				continue
			}
			results = append(results, models.SearchResult{
				Kind:       models.KindTicket,
				ID:         hit.ID,
				Title:      hit.Title,
				Excerpt:    excerpt(hit.Content),
				Similarity: similarity,
			})
		}
	}

	// One global ranking across pools, not per-pool quotas.
	sort.Slice(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	return results, nil
}

func excerpt(content string) string {
	return ai.TruncateRunes(ai.CleanForEmbedding(content), excerptLength)
}
