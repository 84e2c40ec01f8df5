package domain

import "context"

// StatsService is the external statistics collaborator. It records endpoint
// hits and returns unique view counts per event. Callers treat it as
// best-effort: failures degrade to zero counts.
type StatsService interface {
	// RecordHit registers a view of the given request path.
	RecordHit(ctx context.Context, uri, clientIP string) error
	// ViewCounts returns view counts keyed by event id, computed over a time
	// window anchored at the earliest publication timestamp among events.
	ViewCounts(ctx context.Context, events []*Event) (map[int64]int64, error)
}

// EventEnricher combines per-event view counts, confirmed-request counts, and
// comment counts into response-ready summaries. Implementations must batch:
// one collaborator call for the whole event set.
type EventEnricher interface {
	Enrich(ctx context.Context, events []*Event) ([]*EventDetails, error)
}
