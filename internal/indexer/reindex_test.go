package indexer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atrium/pkg/models"
)

type staticLister struct {
	pageIDs   []string
	ticketIDs []string
}

func (l staticLister) ListPageIDs(ctx context.Context) ([]string, error)   { return l.pageIDs, nil }
func (l staticLister) ListTicketIDs(ctx context.Context) ([]string, error) { return l.ticketIDs, nil }

func TestReindexPagesContinuesPastFailures(t *testing.T) {
	processor := newRecordingProcessor()
	processor.failAlways("page-2", errors.New("provider timeout"))
	reindexer := NewReindexer(staticLister{pageIDs: []string{"page-1", "page-2", "page-3"}}, processor)

	report, err := reindexer.ReindexPages(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.ReindexReport{Processed: 2, Errors: 1}, report)
	assert.Len(t, processor.processed(), 3)
}

func TestReindexTickets(t *testing.T) {
	processor := newRecordingProcessor()
	reindexer := NewReindexer(staticLister{ticketIDs: []string{"ticket-1"}}, processor)

	report, err := reindexer.ReindexTickets(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.ReindexReport{Processed: 1, Errors: 0}, report)

	jobs := processor.processed()
	require.Len(t, jobs, 1)
	assert.Equal(t, models.KindTicket, jobs[0].Kind)
}
