package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"eventboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type enricherFixtures struct {
	stats    *fakeStats
	requests *fakeRequestRepo
	comments *fakeCommentRepo
	enricher domain.EventEnricher
}

func newEnricherFixtures() *enricherFixtures {
	f := &enricherFixtures{
		stats:    newFakeStats(),
		requests: newFakeRequestRepo(),
		comments: newFakeCommentRepo(),
	}
	f.enricher = NewEventEnricher(f.stats, f.requests, f.comments, testLogger())
	return f
}

func testEvent(id int64) *domain.Event {
	publishedOn := time.Now().Add(-time.Hour)
	return &domain.Event{
		ID:          id,
		State:       domain.StatePublished,
		PublishedOn: &publishedOn,
		Title:       fmt.Sprintf("Event %d", id),
	}
}

func TestEventEnricher_Enrich(t *testing.T) {
	ctx := context.Background()
	f := newEnricherFixtures()
	events := []*domain.Event{testEvent(1), testEvent(2)}

	f.stats.views[1] = 40
	require.NoError(t, f.requests.Create(ctx, &domain.Request{RequesterID: 10, EventID: 1, Status: domain.RequestConfirmed}))
	require.NoError(t, f.requests.Create(ctx, &domain.Request{RequesterID: 11, EventID: 1, Status: domain.RequestConfirmed}))
	require.NoError(t, f.requests.Create(ctx, &domain.Request{RequesterID: 12, EventID: 1, Status: domain.RequestPending}))
	require.NoError(t, f.comments.Create(ctx, &domain.Comment{AuthorID: 10, EventID: 2, Text: "nice"}))

	details, err := f.enricher.Enrich(ctx, events)
	require.NoError(t, err)
	require.Len(t, details, 2)

	assert.Equal(t, int64(40), details[0].Views)
	assert.Equal(t, 2, details[0].ConfirmedRequests)
	assert.Zero(t, details[0].Comments)

	assert.Zero(t, details[1].Views)
	assert.Zero(t, details[1].ConfirmedRequests)
	assert.Equal(t, 1, details[1].Comments)
}

func TestEventEnricher_Enrich_empty(t *testing.T) {
	f := newEnricherFixtures()
	details, err := f.enricher.Enrich(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, details)
}

// A failing stats collaborator degrades views to zero instead of failing the
// whole read.
func TestEventEnricher_Enrich_statsFailure(t *testing.T) {
	f := newEnricherFixtures()
	f.stats.viewsErr = fmt.Errorf("collector unreachable")

	details, err := f.enricher.Enrich(context.Background(), []*domain.Event{testEvent(1)})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Zero(t, details[0].Views)
}

func TestEventEnricher_Enrich_commentCountFailure(t *testing.T) {
	f := newEnricherFixtures()
	f.comments.countsErr = fmt.Errorf("query failed")

	details, err := f.enricher.Enrich(context.Background(), []*domain.Event{testEvent(1)})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Zero(t, details[0].Comments)
}

// Confirmed counts come from our own ledger; their failure is a real error.
func TestEventEnricher_Enrich_confirmedCountFailure(t *testing.T) {
	f := newEnricherFixtures()
	f.requests.countsErr = fmt.Errorf("query failed")

	_, err := f.enricher.Enrich(context.Background(), []*domain.Event{testEvent(1)})
	require.Error(t, err)
}

func TestSortByViews(t *testing.T) {
	details := []*domain.EventDetails{
		{Event: domain.Event{ID: 1}, Views: 9},
		{Event: domain.Event{ID: 2}, Views: 2},
		{Event: domain.Event{ID: 3}, Views: 2},
		{Event: domain.Event{ID: 4}, Views: 0},
	}
	sortByViews(details)

	got := make([]int64, len(details))
	for i, d := range details {
		got[i] = d.ID
	}
	// Stable: ties keep their original order.
	assert.Equal(t, []int64{4, 2, 3, 1}, got)
}
