package services

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"eventboard/internal/domain"
)

// eventEnricher merges per-event view counts, confirmed-request counts and
// comment counts into response summaries. One batched call per collaborator
// for the whole event set; views and comment counts are best-effort and
// degrade to zero on collaborator failure, confirmed counts come from our own
// ledger and their errors propagate.
type eventEnricher struct {
	stats       domain.StatsService
	requestRepo domain.RequestRepository
	commentRepo domain.CommentRepository
	logger      *slog.Logger
}

func NewEventEnricher(
	stats domain.StatsService,
	requestRepo domain.RequestRepository,
	commentRepo domain.CommentRepository,
	logger *slog.Logger,
) domain.EventEnricher {
	return &eventEnricher{
		stats:       stats,
		requestRepo: requestRepo,
		commentRepo: commentRepo,
		logger:      logger,
	}
}

func (e *eventEnricher) Enrich(ctx context.Context, events []*domain.Event) ([]*domain.EventDetails, error) {
	if len(events) == 0 {
		return []*domain.EventDetails{}, nil
	}
	ids := make([]int64, len(events))
	for i, ev := range events {
		ids[i] = ev.ID
	}

	var (
		views     map[int64]int64
		confirmed map[int64]int
		comments  map[int64]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := e.stats.ViewCounts(gctx, events)
		if err != nil {
			e.logger.WarnContext(gctx, "stats collaborator failed, defaulting views to 0", "err", err)
			return nil
		}
		views = v
		return nil
	})
	g.Go(func() error {
		var err error
		confirmed, err = e.requestRepo.ConfirmedCounts(gctx, ids)
		return err
	})
	g.Go(func() error {
		c, err := e.commentRepo.CountByEvents(gctx, ids)
		if err != nil {
			e.logger.WarnContext(gctx, "comment counts failed, defaulting to 0", "err", err)
			return nil
		}
		comments = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]*domain.EventDetails, len(events))
	for i, ev := range events {
		result[i] = &domain.EventDetails{
			Event:             *ev,
			Views:             views[ev.ID],
			ConfirmedRequests: confirmed[ev.ID],
			Comments:          comments[ev.ID],
		}
	}
	return result, nil
}

// sortByViews re-sorts enriched events by view count ascending. Views are not
// a stored column, so this is a post-query step; the sort is stable to keep
// the storage order among equals.
func sortByViews(details []*domain.EventDetails) {
	sort.SliceStable(details, func(i, j int) bool {
		return details[i].Views < details[j].Views
	})
}
