package models

import (
	"time"
)

// EventType represents the type of content event
type EventType string

const (
	EventTypePageUpdated     EventType = "page.updated"
	EventTypeVersionCreated  EventType = "version.created"
	EventTypeDocumentIndexed EventType = "document.indexed"
	EventTypeIndexDropped    EventType = "index.job_dropped"
	EventTypeSearchPerformed EventType = "search.performed"
)

// BaseEvent represents the structure shared by all published events.
// Event-specific detail rides in Metadata so one wire shape covers
// every topic.
type BaseEvent struct {
	ID          string                 `json:"id"`
	Type        EventType              `json:"type"`
	Timestamp   time.Time              `json:"timestamp"`
	Source      string                 `json:"source"` // Source system/service
	Actor       string                 `json:"actor,omitempty"`
	Kind        DocumentKind           `json:"kind,omitempty"`
	DocumentID  string                 `json:"document_id,omitempty"`
	Description string                 `json:"description,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
