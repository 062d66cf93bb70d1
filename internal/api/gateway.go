// Package api is the HTTP gateway: routing, middleware, and handlers for
// the search, content, ticket, directory, and admin surfaces.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/atriumhq/atrium/internal/ai"
	"github.com/atriumhq/atrium/internal/autosave"
	"github.com/atriumhq/atrium/internal/config"
	"github.com/atriumhq/atrium/internal/content"
	"github.com/atriumhq/atrium/internal/directory"
	"github.com/atriumhq/atrium/internal/events"
	"github.com/atriumhq/atrium/internal/health"
	"github.com/atriumhq/atrium/internal/indexer"
	"github.com/atriumhq/atrium/internal/search"
	"github.com/atriumhq/atrium/internal/settings"
	"github.com/atriumhq/atrium/internal/store"
)

// Gateway represents the API gateway
type Gateway struct {
	server    *http.Server
	router    *mux.Router
	config    config.APIConfig
	jwtSecret string

	store     *store.Store
	content   *content.Service
	retriever *search.Retriever
	chat      search.Completer
	queue     *indexer.Queue
	reindexer *indexer.Reindexer
	autosave  *autosave.Manager
	directory *directory.Service
	settings  *settings.Service
	providers ProviderLister
	health    *health.HealthChecker
	events    events.Publisher

	metrics *GatewayMetrics
}

// ProviderLister reports provider credential status without exposing keys
type ProviderLister interface {
	Providers() []ai.ProviderStatus
}

// Deps bundles the collaborators the gateway routes to
type Deps struct {
	Store     *store.Store
	Content   *content.Service
	Retriever *search.Retriever
	Chat      search.Completer
	Queue     *indexer.Queue
	Reindexer *indexer.Reindexer
	Autosave  *autosave.Manager
	Directory *directory.Service
	Settings  *settings.Service
	Providers ProviderLister
	Health    *health.HealthChecker
	Events    events.Publisher
}

// GatewayMetrics represents gateway metrics
type GatewayMetrics struct {
	mu               sync.Mutex
	RequestsTotal    int64            `json:"requests_total"`
	RequestsByPath   map[string]int64 `json:"requests_by_path"`
	RequestsByMethod map[string]int64 `json:"requests_by_method"`
	RequestsByStatus map[int]int64    `json:"requests_by_status"`
	AverageLatency   time.Duration    `json:"average_latency"`
	LastRequest      time.Time        `json:"last_request"`
}

// NewGateway creates a new API gateway
func NewGateway(cfg config.APIConfig, jwtSecret string, deps Deps) *Gateway {
	router := mux.NewRouter()

	gateway := &Gateway{
		router:    router,
		config:    cfg,
		jwtSecret: jwtSecret,
		store:     deps.Store,
		content:   deps.Content,
		retriever: deps.Retriever,
		chat:      deps.Chat,
		queue:     deps.Queue,
		reindexer: deps.Reindexer,
		autosave:  deps.Autosave,
		directory: deps.Directory,
		settings:  deps.Settings,
		providers: deps.Providers,
		health:    deps.Health,
		events:    deps.Events,
		metrics: &GatewayMetrics{
			RequestsByPath:   make(map[string]int64),
			RequestsByMethod: make(map[string]int64),
			RequestsByStatus: make(map[int]int64),
		},
	}

	if gateway.events == nil {
		gateway.events = events.NopPublisher{}
	}

	gateway.setupRoutes()
	gateway.setupMiddleware()

	gateway.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return gateway
}

// setupRoutes configures all API routes
func (g *Gateway) setupRoutes() {
	api := g.router.PathPrefix("/api/v1").Subrouter()

	// Search and chat
	api.HandleFunc("/search", g.handleSearch).Methods("POST")
	api.HandleFunc("/chat", g.handleChat).Methods("POST")

	// Pages: draft saves, versions, autosave sessions
	pages := api.PathPrefix("/pages").Subrouter()
	pages.HandleFunc("/{id}", g.handleGetPage).Methods("GET")
	pages.HandleFunc("/{id}", g.handleSaveDraft).Methods("PATCH")
	pages.HandleFunc("/{id}/versions", g.handleCreateVersion).Methods("POST")
	pages.HandleFunc("/{id}/edits", g.handleEditEvent).Methods("POST")
	pages.HandleFunc("/{id}/save-now", g.handleSaveNow).Methods("POST")
	pages.HandleFunc("/{id}/save-status", g.handleSaveStatus).Methods("GET")
	pages.HandleFunc("/{id}/session", g.handleEndSession).Methods("DELETE")

	// Tickets
	tickets := api.PathPrefix("/tickets").Subrouter()
	tickets.HandleFunc("/{id}/related", g.handleRelatedDocuments).Methods("GET")

	// Directory
	dir := api.PathPrefix("/directory").Subrouter()
	dir.HandleFunc("/employees/{id}", g.handleGetEmployee).Methods("GET")
	dir.HandleFunc("/employees/{id}/chain", g.handleReportingChain).Methods("GET")
	dir.HandleFunc("/employees", g.handleUpsertEmployee).Methods("PUT")
	dir.HandleFunc("/departments/{id}/members", g.handleDepartmentMembers).Methods("GET")

	// Admin: reindex, queue diagnostics, AI settings
	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/reindex/pages", g.handleReindexPages).Methods("POST")
	admin.HandleFunc("/reindex/tickets", g.handleReindexTickets).Methods("POST")
	admin.HandleFunc("/queue", g.handleQueueStatus).Methods("GET")
	admin.HandleFunc("/queue", g.handleQueueClear).Methods("DELETE")
	admin.HandleFunc("/settings/ai", g.handleGetAISettings).Methods("GET")
	admin.HandleFunc("/settings/ai", g.handleUpdateAISettings).Methods("PUT")

	// Health and metrics
	g.router.HandleFunc("/healthz", g.health.HTTPHandler()).Methods("GET")
	api.HandleFunc("/metrics", g.handleMetrics).Methods("GET")
}

// setupMiddleware configures HTTP middleware
func (g *Gateway) setupMiddleware() {
	if g.config.EnableCORS {
		c := cors.New(cors.Options{
			AllowedOrigins:   g.config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		})
		g.router.Use(c.Handler)
	}

	if g.config.EnableAuth {
		g.router.Use(g.jwtAuthMiddleware)
	}

	g.router.Use(g.metricsMiddleware)
}

// Start starts the API gateway
func (g *Gateway) Start() error {
	log.Printf("Starting API gateway on %s", g.server.Addr)
	return g.server.ListenAndServe()
}

// Stop stops the API gateway
func (g *Gateway) Stop(ctx context.Context) error {
	log.Printf("Stopping API gateway")
	return g.server.Shutdown(ctx)
}

// Response types

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type APIMeta struct {
	Total int `json:"total,omitempty"`
	Limit int `json:"limit,omitempty"`
}

// Helper functions

func writeJSONResponse(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message, details string) {
	writeJSONResponse(w, status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func writeSuccessResponse(w http.ResponseWriter, data interface{}, meta *APIMeta) {
	writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func parseRequestBody(r *http.Request, target interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// Middleware implementations

func (g *Gateway) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		g.updateMetrics(r, wrapped.statusCode, time.Since(start))
	})
}

func (g *Gateway) updateMetrics(r *http.Request, statusCode int, duration time.Duration) {
	g.metrics.mu.Lock()
	defer g.metrics.mu.Unlock()

	g.metrics.RequestsTotal++
	g.metrics.RequestsByPath[r.URL.Path]++
	g.metrics.RequestsByMethod[r.Method]++
	g.metrics.RequestsByStatus[statusCode]++
	g.metrics.LastRequest = time.Now()

	if g.metrics.AverageLatency == 0 {
		g.metrics.AverageLatency = duration
	} else {
		g.metrics.AverageLatency = (g.metrics.AverageLatency + duration) / 2
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
