package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atrium/internal/store"
)

type fakeCompleter struct {
	gotSystem string
	gotUser   string
	answer    string
}

func (c *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	c.gotSystem = system
	c.gotUser = user
	return c.answer, nil
}

func TestAnswerGroundsInSearchHits(t *testing.T) {
	pools := &fakePools{
		pages: []store.PageHit{
			{ID: "page-1", Title: "Guest WiFi", Content: "The guest network password rotates monthly", Distance: 0.1},
		},
	}
	retriever := NewRetriever(pools, &fakeAI{vector: []float32{1}, model: "m"})
	chat := &fakeCompleter{answer: "The guest WiFi password rotates monthly."}

	answer, err := retriever.Answer(context.Background(), chat, "what is the guest wifi password policy")

	require.NoError(t, err)
	assert.Equal(t, "The guest WiFi password rotates monthly.", answer.Answer)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "page-1", answer.Sources[0].ID)

	assert.Contains(t, chat.gotUser, "[1] Guest WiFi")
	assert.Contains(t, chat.gotUser, "rotates monthly")
	assert.Contains(t, chat.gotUser, "Question: what is the guest wifi password policy")
}

func TestAnswerWithNoHitsSkipsChat(t *testing.T) {
	retriever := NewRetriever(&fakePools{}, &fakeAI{vector: []float32{1}, model: "m"})
	chat := &fakeCompleter{answer: "should not be called"}

	answer, err := retriever.Answer(context.Background(), chat, "completely unknown topic")

	require.NoError(t, err)
	assert.Empty(t, answer.Answer)
	assert.Empty(t, answer.Sources)
	assert.Empty(t, chat.gotUser)
}
