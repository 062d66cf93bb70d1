package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/atriumhq/atrium/pkg/models"
)

// Completer runs a chat completion with the configured chat provider
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// GeneratedAnswer is a chat answer grounded in search hits
type GeneratedAnswer struct {
	Answer  string                `json:"answer"`
	Sources []models.SearchResult `json:"sources"`
}

const answerSystemPrompt = "You are the assistant for an internal company intranet. " +
	"Answer the question using only the provided excerpts from internal pages and tickets. " +
	"If the excerpts do not contain the answer, say so."

// Answer searches for relevant documents and asks the chat provider to
// answer the question grounded in the top hits.
func (r *Retriever) Answer(ctx context.Context, chat Completer, query string) (*GeneratedAnswer, error) {
	hits, err := r.SearchText(ctx, query, Options{IncludeTickets: true})
	if err != nil {
		return nil, err
	}

	if len(hits) == 0 {
		return &GeneratedAnswer{Answer: "", Sources: nil}, nil
	}

	var sb strings.Builder
	for i, hit := range hits {
		fmt.Fprintf(&sb, "[%d] %s\n%s\n\n", i+1, hit.Title, hit.Excerpt)
	}
	fmt.Fprintf(&sb, "Question: %s", query)

	answer, err := chat.Complete(ctx, answerSystemPrompt, sb.String())
	if err != nil {
		return nil, err
	}

	return &GeneratedAnswer{Answer: answer, Sources: hits}, nil
}
