package autosave

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atrium/pkg/models"
)

type fakeLoader struct {
	pages map[string]*models.Page
	loads int
}

func (l *fakeLoader) GetPage(ctx context.Context, id string) (*models.Page, error) {
	l.loads++
	page, ok := l.pages[id]
	if !ok {
		return nil, context.Canceled
	}
	return page, nil
}

func TestManagerSessionIsPerPage(t *testing.T) {
	loader := &fakeLoader{pages: map[string]*models.Page{
		"page-1": {ID: "page-1", Content: "one", Status: models.PageStatusDraft},
		"page-2": {ID: "page-2", Content: "two", Status: models.PageStatusDraft},
	}}
	manager := NewManager(loader, &fakePersister{}, fastConfig())
	defer manager.Shutdown()

	first, err := manager.Session(context.Background(), "page-1")
	require.NoError(t, err)

	again, err := manager.Session(context.Background(), "page-1")
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, loader.loads)

	other, err := manager.Session(context.Background(), "page-2")
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}

func TestManagerSessionStartsLockedForReview(t *testing.T) {
	loader := &fakeLoader{pages: map[string]*models.Page{
		"page-1": {ID: "page-1", Content: "under review", Status: models.PageStatusInReview},
	}}
	persister := &fakePersister{}
	manager := NewManager(loader, persister, fastConfig())
	defer manager.Shutdown()

	ctrl, err := manager.Session(context.Background(), "page-1")
	require.NoError(t, err)

	ctrl.OnEdit("an edit against a locked page")
	require.NoError(t, ctrl.SaveNow(context.Background()))
	assert.Equal(t, 0, persister.draftCount())
}

func TestManagerEndSessionCreatesFreshControllerNextTime(t *testing.T) {
	loader := &fakeLoader{pages: map[string]*models.Page{
		"page-1": {ID: "page-1", Content: "one", Status: models.PageStatusDraft},
	}}
	manager := NewManager(loader, &fakePersister{}, fastConfig())
	defer manager.Shutdown()

	first, err := manager.Session(context.Background(), "page-1")
	require.NoError(t, err)

	manager.EndSession("page-1")

	second, err := manager.Session(context.Background(), "page-1")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, 2, loader.loads)
}
