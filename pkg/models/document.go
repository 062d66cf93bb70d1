package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// DocumentKind identifies the content pool a document belongs to
type DocumentKind string

const (
	KindPage        DocumentKind = "page"
	KindPageVersion DocumentKind = "pageVersion"
	KindTicket      DocumentKind = "ticket"
)

// PageStatus represents the lifecycle state of a page
type PageStatus string

const (
	PageStatusDraft     PageStatus = "draft"
	PageStatusInReview  PageStatus = "in_review"
	PageStatusPublished PageStatus = "published"
)

// Page is the live, mutable, currently-edited document instance
type Page struct {
	ID                 string           `json:"id" gorm:"primaryKey;type:uuid"`
	Title              string           `json:"title"`
	Content            string           `json:"content"`
	Status             PageStatus       `json:"status" gorm:"index;default:draft"`
	SpaceID            string           `json:"space_id,omitempty" gorm:"index"`
	AuthorID           string           `json:"author_id,omitempty"`
	Embedding          *pgvector.Vector `json:"-" gorm:"type:vector(1536)"`
	EmbeddingModel     string           `json:"-" gorm:"index"`
	EmbeddingUpdatedAt *time.Time       `json:"embedding_updated_at,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// PageVersion is an immutable historical snapshot of a page. Versions are
// append-only; once written a row never changes.
type PageVersion struct {
	ID                 string           `json:"id" gorm:"primaryKey;type:uuid"`
	PageID             string           `json:"page_id" gorm:"index"`
	VersionNumber      int              `json:"version_number"`
	Title              string           `json:"title"`
	Content            string           `json:"content"`
	ChangeDescription  string           `json:"change_description"`
	Archived           bool             `json:"archived" gorm:"index;default:false"`
	Embedding          *pgvector.Vector `json:"-" gorm:"type:vector(1536)"`
	EmbeddingModel     string           `json:"-" gorm:"index"`
	EmbeddingUpdatedAt *time.Time       `json:"embedding_updated_at,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
}

// Ticket is a helpdesk ticket; searched like a page but never versioned
type Ticket struct {
	ID                 string           `json:"id" gorm:"primaryKey;type:uuid"`
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	Status             string           `json:"status" gorm:"index"`
	Category           string           `json:"category,omitempty"`
	RequesterID        string           `json:"requester_id,omitempty"`
	AssigneeID         string           `json:"assignee_id,omitempty"`
	Embedding          *pgvector.Vector `json:"-" gorm:"type:vector(1536)"`
	EmbeddingModel     string           `json:"-" gorm:"index"`
	EmbeddingUpdatedAt *time.Time       `json:"embedding_updated_at,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// SearchResult is one ranked hit returned by semantic search
type SearchResult struct {
	Kind       DocumentKind `json:"kind"`
	ID         string       `json:"id"`
	PageID     string       `json:"page_id,omitempty"` // set for pageVersion hits
	Title      string       `json:"title"`
	Excerpt    string       `json:"excerpt"`
	Similarity float64      `json:"similarity"`
}

// ReindexReport summarizes an administrative reindex run
type ReindexReport struct {
	Processed int `json:"processed"`
	Errors    int `json:"errors"`
}
