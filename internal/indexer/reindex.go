package indexer

import (
	"context"
	"log"

	"github.com/atriumhq/atrium/pkg/models"
)

// IDLister enumerates documents for administrative reindex runs
type IDLister interface {
	ListPageIDs(ctx context.Context) ([]string, error)
	ListTicketIDs(ctx context.Context) ([]string, error)
}

// Reindexer re-embeds whole content pools synchronously, one document at a
// time, continuing past per-document failures. Used after a provider or
// model switch, when every stored vector belongs to the wrong space.
type Reindexer struct {
	lister    IDLister
	processor Processor
}

func NewReindexer(lister IDLister, processor Processor) *Reindexer {
	return &Reindexer{lister: lister, processor: processor}
}

func (r *Reindexer) ReindexPages(ctx context.Context) (models.ReindexReport, error) {
	ids, err := r.lister.ListPageIDs(ctx)
	if err != nil {
		return models.ReindexReport{}, err
	}
	return r.run(ctx, models.KindPage, ids), nil
}

func (r *Reindexer) ReindexTickets(ctx context.Context) (models.ReindexReport, error) {
	ids, err := r.lister.ListTicketIDs(ctx)
	if err != nil {
		return models.ReindexReport{}, err
	}
	return r.run(ctx, models.KindTicket, ids), nil
}

func (r *Reindexer) run(ctx context.Context, kind models.DocumentKind, ids []string) models.ReindexReport {
	var report models.ReindexReport
	for _, id := range ids {
		if err := r.processor.Process(ctx, Job{Kind: kind, DocumentID: id}); err != nil {
			log.Printf("reindex: %s %s failed: %v", kind, id, err)
			report.Errors++
			continue
		}
		report.Processed++
	}
	return report
}
