// Package autosave translates a stream of edit events into two decoupled
// persistence cadences: a short-debounce draft save and a long-debounce
// immutable version snapshot. The two cadences track independent baselines,
// so a version is only created when content has moved since the previous
// version, no matter how many draft saves happened in between.
package autosave

import (
	"context"
	"log"
	"sync"
	"time"
)

// SaveStatus is reported to the UI for display only; it never gates edits
type SaveStatus string

const (
	StatusSaved   SaveStatus = "saved"
	StatusSaving  SaveStatus = "saving"
	StatusUnsaved SaveStatus = "unsaved"
	StatusError   SaveStatus = "error"
)

// VersionChangeDescription is the fixed description attached to
// debounce-created snapshots.
const VersionChangeDescription = "Autosaved version"

const persistTimeout = 15 * time.Second

// Persister performs the actual draft and version writes
type Persister interface {
	SaveDraft(ctx context.Context, pageID, content string) error
	CreateVersion(ctx context.Context, pageID, content, changeDescription string) error
}

// Config holds the controller timing parameters
type Config struct {
	SaveDebounce     time.Duration
	VersionDebounce  time.Duration
	MinVersionLength int
}

// Controller drives autosave for one page editing session
type Controller struct {
	mu        sync.Mutex
	cfg       Config
	pageID    string
	persister Persister

	status      SaveStatus
	content     string
	lastSaved   string // draft-save baseline
	lastVersion string // version-snapshot baseline, tracked independently
	locked      bool
	closed      bool

	saveTimer    *time.Timer
	versionTimer *time.Timer

	// Monotonic save sequence: a response older than the last applied one
	// is discarded, so out-of-order completions cannot roll back state.
	seq     uint64
	applied uint64
}

// NewController starts a session over the given page content. Initial
// status is saved; both baselines start at the current content.
func NewController(pageID, content string, locked bool, persister Persister, cfg Config) *Controller {
	return &Controller{
		cfg:         cfg,
		pageID:      pageID,
		persister:   persister,
		status:      StatusSaved,
		content:     content,
		lastSaved:   content,
		lastVersion: content,
		locked:      locked,
	}
}

// OnEdit records the current content and resets both debounce timers.
// While the document is locked no edit is save-worthy and no timer is
// scheduled.
func (c *Controller) OnEdit(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.locked {
		return
	}

	c.content = content

	if content != c.lastSaved {
		if c.status != StatusSaving {
			c.status = StatusUnsaved
		}
	} else if c.status == StatusUnsaved {
		c.status = StatusSaved
	}

	c.resetTimersLocked()
}

func (c *Controller) resetTimersLocked() {
	if c.saveTimer == nil {
		c.saveTimer = time.AfterFunc(c.cfg.SaveDebounce, c.saveTimerFired)
	} else {
		c.saveTimer.Reset(c.cfg.SaveDebounce)
	}

	if c.versionTimer == nil {
		c.versionTimer = time.AfterFunc(c.cfg.VersionDebounce, c.versionTimerFired)
	} else {
		c.versionTimer.Reset(c.cfg.VersionDebounce)
	}
}

// saveTimerFired issues a draft save if content still differs from the
// last successfully saved content.
func (c *Controller) saveTimerFired() {
	c.mu.Lock()
	if c.closed || c.locked || c.content == c.lastSaved {
		c.mu.Unlock()
		return
	}
	snapshot := c.content
	c.seq++
	seq := c.seq
	c.status = StatusSaving
	c.mu.Unlock()

	c.persistDraft(snapshot, seq)
}

func (c *Controller) persistDraft(snapshot string, seq uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	err := c.persister.SaveDraft(ctx, c.pageID, snapshot)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq < c.applied {
		// A newer save already landed; this response is stale.
		return
	}
	c.applied = seq

	if err != nil {
		// No retry at this layer; the next debounce cycle retries implicitly.
		log.Printf("autosave: draft save failed for page %s: %v", c.pageID, err)
		c.status = StatusError
		return
	}

	c.lastSaved = snapshot
	if c.content == snapshot {
		c.status = StatusSaved
	} else {
		c.status = StatusUnsaved
	}
}

// versionTimerFired issues a version snapshot if content has moved since
// the previous version and is long enough to be worth keeping.
func (c *Controller) versionTimerFired() {
	c.mu.Lock()
	if c.closed || c.locked {
		c.mu.Unlock()
		return
	}
	snapshot := c.content
	if len(snapshot) <= c.cfg.MinVersionLength || snapshot == c.lastVersion {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := c.persister.CreateVersion(ctx, c.pageID, snapshot, VersionChangeDescription); err != nil {
		log.Printf("autosave: version snapshot failed for page %s: %v", c.pageID, err)
		return
	}

	c.mu.Lock()
	c.lastVersion = snapshot
	c.mu.Unlock()
}

// SaveNow bypasses the debounce and saves immediately. It never forces a
// version snapshot.
func (c *Controller) SaveNow(ctx context.Context) error {
	c.mu.Lock()
	if c.closed || c.locked || c.content == c.lastSaved {
		c.mu.Unlock()
		return nil
	}
	snapshot := c.content
	c.seq++
	seq := c.seq
	c.status = StatusSaving
	c.mu.Unlock()

	err := c.persister.SaveDraft(ctx, c.pageID, snapshot)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq < c.applied {
		return nil
	}
	c.applied = seq

	if err != nil {
		c.status = StatusError
		return err
	}

	c.lastSaved = snapshot
	if c.content == snapshot {
		c.status = StatusSaved
	} else {
		c.status = StatusUnsaved
	}
	return nil
}

// SetLocked marks the document locked (e.g. under review). Locking stops
// pending timers so nothing fires against a locked document.
func (c *Controller) SetLocked(locked bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.locked = locked
	if locked {
		c.stopTimersLocked()
	}
}

// Status reports the current save state
func (c *Controller) Status() SaveStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Close cancels both pending timers so no save fires against a torn-down
// session.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.stopTimersLocked()
}

func (c *Controller) stopTimersLocked() {
	if c.saveTimer != nil {
		c.saveTimer.Stop()
	}
	if c.versionTimer != nil {
		c.versionTimer.Stop()
	}
}
