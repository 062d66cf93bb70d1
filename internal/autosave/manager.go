package autosave

import (
	"context"
	"sync"

	"github.com/atriumhq/atrium/pkg/models"
)

// PageLoader loads the page a new session starts from
type PageLoader interface {
	GetPage(ctx context.Context, id string) (*models.Page, error)
}

// Manager owns one Controller per actively edited page. Sessions are
// created lazily on the first edit event and torn down explicitly when the
// editor navigates away.
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*Controller
	loader    PageLoader
	persister Persister
	cfg       Config
}

func NewManager(loader PageLoader, persister Persister, cfg Config) *Manager {
	return &Manager{
		sessions:  make(map[string]*Controller),
		loader:    loader,
		persister: persister,
		cfg:       cfg,
	}
}

// Session returns the controller for a page, creating it from the page's
// stored content on first use. A page under review starts locked.
func (m *Manager) Session(ctx context.Context, pageID string) (*Controller, error) {
	m.mu.Lock()
	if ctrl, ok := m.sessions[pageID]; ok {
		m.mu.Unlock()
		return ctrl, nil
	}
	m.mu.Unlock()

	page, err := m.loader.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another request may have created the session while we loaded.
	if ctrl, ok := m.sessions[pageID]; ok {
		return ctrl, nil
	}

	locked := page.Status == models.PageStatusInReview
	ctrl := NewController(pageID, page.Content, locked, m.persister, m.cfg)
	m.sessions[pageID] = ctrl
	return ctrl, nil
}

// EndSession closes and removes a page's controller. Pending timers are
// cancelled; an in-flight save still completes.
func (m *Manager) EndSession(pageID string) {
	m.mu.Lock()
	ctrl, ok := m.sessions[pageID]
	if ok {
		delete(m.sessions, pageID)
	}
	m.mu.Unlock()

	if ok {
		ctrl.Close()
	}
}

// Shutdown closes every active session
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Controller)
	m.mu.Unlock()

	for _, ctrl := range sessions {
		ctrl.Close()
	}
}
