package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/atriumhq/atrium/internal/ai"
	"github.com/atriumhq/atrium/internal/autosave"
	"github.com/atriumhq/atrium/internal/search"
	"github.com/atriumhq/atrium/internal/store"
	"github.com/atriumhq/atrium/pkg/models"
)

// Search handlers

type SearchRequest struct {
	Query          string  `json:"query"`
	Limit          int     `json:"limit,omitempty"`
	Threshold      float64 `json:"threshold,omitempty"`
	IncludeTickets bool    `json:"include_tickets,omitempty"`
}

func (g *Gateway) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse request body", err.Error())
		return
	}

	if req.Query == "" {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "query is required", "")
		return
	}

	results, err := g.retriever.SearchText(r.Context(), req.Query, search.Options{
		Limit:          req.Limit,
		Threshold:      req.Threshold,
		IncludeTickets: req.IncludeTickets,
	})
	if err != nil {
		writeProviderError(w, "Search failed", err)
		return
	}

	g.announceSearch(r, req.Query, len(results))

	writeSuccessResponse(w, results, &APIMeta{Total: len(results), Limit: req.Limit})
}

// announceSearch publishes a search activity event. Best-effort: a broker
// outage never fails the request.
func (g *Gateway) announceSearch(r *http.Request, query string, resultCount int) {
	event := models.BaseEvent{
		ID:        uuid.New().String(),
		Type:      models.EventTypeSearchPerformed,
		Timestamp: time.Now().UTC(),
		Source:    "api",
		Metadata: map[string]interface{}{
			"query":        query,
			"result_count": resultCount,
		},
	}
	if claims := ClaimsFromContext(r.Context()); claims != nil {
		if sub, ok := claims["sub"].(string); ok {
			event.Actor = sub
		}
	}
	if err := g.events.Publish(r.Context(), event); err != nil {
		log.Printf("Failed to publish search event: %v", err)
	}
}

type ChatRequest struct {
	Query string `json:"query"`
}

func (g *Gateway) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse request body", err.Error())
		return
	}

	if req.Query == "" {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "query is required", "")
		return
	}

	answer, err := g.retriever.Answer(r.Context(), g.chat, req.Query)
	if err != nil {
		writeProviderError(w, "Chat failed", err)
		return
	}

	writeSuccessResponse(w, answer, nil)
}

// Page handlers

func (g *Gateway) handleGetPage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	page, err := g.store.GetPage(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND", "Page not found", "")
			return
		}
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load page", err.Error())
		return
	}

	writeSuccessResponse(w, page, nil)
}

type SaveDraftRequest struct {
	Content string `json:"content"`
}

func (g *Gateway) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req SaveDraftRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse request body", err.Error())
		return
	}

	if err := g.content.SaveDraft(r.Context(), id, req.Content); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND", "Page not found", "")
			return
		}
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save draft", err.Error())
		return
	}

	writeSuccessResponse(w, map[string]string{"status": "saved"}, nil)
}

type CreateVersionRequest struct {
	Content           string `json:"content"`
	ChangeDescription string `json:"change_description"`
}

func (g *Gateway) handleCreateVersion(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req CreateVersionRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse request body", err.Error())
		return
	}

	if req.ChangeDescription == "" {
		req.ChangeDescription = autosave.VersionChangeDescription
	}

	version, err := g.content.CreateVersion(r.Context(), id, req.Content, req.ChangeDescription)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND", "Page not found", "")
			return
		}
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create version", err.Error())
		return
	}

	writeSuccessResponse(w, version, nil)
}

// Autosave session handlers

type EditEventRequest struct {
	Content string `json:"content"`
}

func (g *Gateway) handleEditEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req EditEventRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse request body", err.Error())
		return
	}

	ctrl, err := g.autosave.Session(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND", "Page not found", "")
			return
		}
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to open session", err.Error())
		return
	}

	ctrl.OnEdit(req.Content)
	writeSuccessResponse(w, map[string]string{"save_status": string(ctrl.Status())}, nil)
}

func (g *Gateway) handleSaveNow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	ctrl, err := g.autosave.Session(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND", "Page not found", "")
			return
		}
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to open session", err.Error())
		return
	}

	if err := ctrl.SaveNow(r.Context()); err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "SAVE_FAILED", "Failed to save page", err.Error())
		return
	}

	writeSuccessResponse(w, map[string]string{"save_status": string(ctrl.Status())}, nil)
}

func (g *Gateway) handleSaveStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	ctrl, err := g.autosave.Session(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND", "Page not found", "")
			return
		}
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to open session", err.Error())
		return
	}

	writeSuccessResponse(w, map[string]string{"save_status": string(ctrl.Status())}, nil)
}

func (g *Gateway) handleEndSession(w http.ResponseWriter, r *http.Request) {
	g.autosave.EndSession(mux.Vars(r)["id"])
	writeSuccessResponse(w, map[string]string{"status": "closed"}, nil)
}

// Ticket handlers

func (g *Gateway) handleRelatedDocuments(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	results, err := g.retriever.RelatedForTicket(r.Context(), g.store, id, limit)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND", "Ticket not found", "")
			return
		}
		writeProviderError(w, "Failed to find related documents", err)
		return
	}

	writeSuccessResponse(w, results, &APIMeta{Total: len(results)})
}

// Directory handlers

func (g *Gateway) directoryEnabled(w http.ResponseWriter) bool {
	if g.directory == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "DIRECTORY_DISABLED", "Org directory is not enabled", "")
		return false
	}
	return true
}

func (g *Gateway) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	if !g.directoryEnabled(w) {
		return
	}
	employee, err := g.directory.GetEmployee(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND", "Employee not found", err.Error())
		return
	}
	writeSuccessResponse(w, employee, nil)
}

func (g *Gateway) handleReportingChain(w http.ResponseWriter, r *http.Request) {
	if !g.directoryEnabled(w) {
		return
	}
	chain, err := g.directory.GetReportingChain(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load reporting chain", err.Error())
		return
	}
	writeSuccessResponse(w, chain, &APIMeta{Total: len(chain)})
}

func (g *Gateway) handleDepartmentMembers(w http.ResponseWriter, r *http.Request) {
	if !g.directoryEnabled(w) {
		return
	}
	members, err := g.directory.ListDepartmentMembers(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list department members", err.Error())
		return
	}
	writeSuccessResponse(w, members, &APIMeta{Total: len(members)})
}

func (g *Gateway) handleUpsertEmployee(w http.ResponseWriter, r *http.Request) {
	if !g.directoryEnabled(w) {
		return
	}
	var employee models.Employee
	if err := parseRequestBody(r, &employee); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse request body", err.Error())
		return
	}

	if err := g.directory.UpsertEmployee(r.Context(), employee); err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to upsert employee", err.Error())
		return
	}

	writeSuccessResponse(w, employee, nil)
}

// Admin handlers

func (g *Gateway) handleReindexPages(w http.ResponseWriter, r *http.Request) {
	report, err := g.reindexer.ReindexPages(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to reindex pages", err.Error())
		return
	}
	writeSuccessResponse(w, report, nil)
}

func (g *Gateway) handleReindexTickets(w http.ResponseWriter, r *http.Request) {
	report, err := g.reindexer.ReindexTickets(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to reindex tickets", err.Error())
		return
	}
	writeSuccessResponse(w, report, nil)
}

func (g *Gateway) handleQueueStatus(w http.ResponseWriter, r *http.Request) {
	writeSuccessResponse(w, g.queue.Status(), nil)
}

func (g *Gateway) handleQueueClear(w http.ResponseWriter, r *http.Request) {
	g.queue.Clear()
	writeSuccessResponse(w, g.queue.Status(), nil)
}

func (g *Gateway) handleGetAISettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := g.settings.AIConfig(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load AI settings", err.Error())
		return
	}

	writeSuccessResponse(w, map[string]interface{}{
		"settings":  cfg,
		"providers": g.providers.Providers(),
	}, nil)
}

func (g *Gateway) handleUpdateAISettings(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := parseRequestBody(r, &values); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse request body", err.Error())
		return
	}

	if err := g.settings.Update(r.Context(), values); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_SETTING", "Failed to update settings", err.Error())
		return
	}

	cfg, err := g.settings.AIConfig(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to reload AI settings", err.Error())
		return
	}

	writeSuccessResponse(w, cfg, nil)
}

func (g *Gateway) handleMetrics(w http.ResponseWriter, r *http.Request) {
	g.metrics.mu.Lock()
	defer g.metrics.mu.Unlock()
	writeSuccessResponse(w, g.metrics, nil)
}

// writeProviderError maps AI-layer failures to HTTP statuses: missing or
// bad configuration is the operator's problem (422), an unreachable
// provider is upstream (502).
func writeProviderError(w http.ResponseWriter, message string, err error) {
	var providerErr *ai.ProviderError
	switch {
	case errors.Is(err, ai.ErrMissingCredentials), errors.Is(err, ai.ErrUnknownProvider):
		writeErrorResponse(w, http.StatusUnprocessableEntity, "AI_NOT_CONFIGURED", message, err.Error())
	case errors.Is(err, ai.ErrEmptyInput):
		writeErrorResponse(w, http.StatusBadRequest, "EMPTY_INPUT", message, err.Error())
	case errors.As(err, &providerErr):
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_UNAVAILABLE", message, err.Error())
	default:
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", message, err.Error())
	}
}
