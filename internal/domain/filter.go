package domain

import (
	"fmt"
	"time"
)

// EventSort selects the ordering of a public event listing.
type EventSort string

const (
	// SortDefault orders by id ascending (creation order).
	SortDefault EventSort = ""
	// SortEventDate orders by event date descending, pushed to storage.
	SortEventDate EventSort = "EVENT_DATE"
	// SortViews orders by view count ascending. Views are derived data, so
	// this sort is applied in memory after enrichment.
	SortViews EventSort = "VIEWS"
)

// AdminEventFilter narrows the admin event listing. Empty or nil fields are
// omitted from the predicate, not defaulted; an empty filter matches all
// events.
type AdminEventFilter struct {
	Users      []int64
	States     []EventState
	Categories []int64
	RangeStart *time.Time
	RangeEnd   *time.Time
}

// Validate checks the date bounds.
func (f AdminEventFilter) Validate() error {
	return validateRange(f.RangeStart, f.RangeEnd)
}

// PublicEventFilter narrows the public event listing. The public listing is
// always additionally restricted to PUBLISHED events.
type PublicEventFilter struct {
	// Text matches case-insensitively against annotation or description.
	Text       string
	Categories []int64
	Paid       *bool
	RangeStart *time.Time
	RangeEnd   *time.Time
	// OnlyAvailable excludes events whose confirmed count has reached a
	// finite participant limit.
	OnlyAvailable bool
}

// Validate checks the date bounds.
func (f PublicEventFilter) Validate() error {
	return validateRange(f.RangeStart, f.RangeEnd)
}

func validateRange(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return fmt.Errorf("%w: start must be before end", ErrValidation)
	}
	return nil
}
