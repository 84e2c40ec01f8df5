package domain

import (
	"context"
	"time"
)

// EventState is the moderation state of an event.
type EventState string

const (
	StatePending   EventState = "PENDING"
	StatePublished EventState = "PUBLISHED"
	StateCanceled  EventState = "CANCELED"
)

// Valid reports whether s is one of the known event states.
func (s EventState) Valid() bool {
	switch s {
	case StatePending, StatePublished, StateCanceled:
		return true
	}
	return false
}

// StateAction is a requested state transition carried by an update.
type StateAction string

const (
	// Admin actions.
	ActionPublishEvent StateAction = "PUBLISH_EVENT"
	ActionRejectEvent  StateAction = "REJECT_EVENT"
	// Owner actions.
	ActionSendToReview StateAction = "SEND_TO_REVIEW"
	ActionCancelReview StateAction = "CANCEL_REVIEW"
)

// Event represents an event published on the board.
// swagger:model Event
type Event struct {
	ID                int64      `json:"id"`
	Annotation        string     `json:"annotation"`
	Category          Category   `json:"category"`
	Paid              bool       `json:"paid"`
	EventDate         time.Time  `json:"eventDate"`
	Initiator         User       `json:"initiator"`
	Description       string     `json:"description"`
	ParticipantLimit  int        `json:"participantLimit"`
	State             EventState `json:"state"`
	CreatedOn         time.Time  `json:"createdOn"`
	Location          Location   `json:"location"`
	RequestModeration bool       `json:"requestModeration"`
	PublishedOn       *time.Time `json:"publishedOn,omitempty"`
	Title             string     `json:"title"`
}

// NewEventData carries the fields required to create an event.
type NewEventData struct {
	Annotation        string
	CategoryID        int64
	Description       string
	EventDate         time.Time
	Location          GeoPoint
	Paid              bool
	ParticipantLimit  int
	RequestModeration bool
	Title             string
}

// EventUpdate carries a partial update; nil fields are left unchanged.
type EventUpdate struct {
	Annotation        *string
	CategoryID        *int64
	Description       *string
	EventDate         *time.Time
	Location          *GeoPoint
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
	Title             *string
	StateAction       *StateAction
}

// EventDetails is an event enriched with derived, read-only counters.
/// swagger:model EventDetails
type EventDetails struct {
	Event
	Views             int64 `json:"views"`
	ConfirmedRequests int   `json:"confirmedRequests"`
	Comments          int   `json:"comments"`
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	// Update persists all mutable columns of the event.
	Update(ctx context.Context, event *Event) error
	// FindAdmin returns events matching the admin filter, ordered by id.
	FindAdmin(ctx context.Context, filter AdminEventFilter, page Pagination) ([]*Event, error)
	// FindPublic returns PUBLISHED events matching the public filter.
	// Sort by event date is pushed to storage; sort by views is not (views
	// are not a stored column).
	FindPublic(ctx context.Context, filter PublicEventFilter, sort EventSort, page Pagination) ([]*Event, error)
	ListByInitiator(ctx context.Context, initiatorID int64, page Pagination) ([]*Event, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*Event, error)
	ExistsByCategory(ctx context.Context, categoryID int64) (bool, error)
}

// EventService owns the event lifecycle: creation, owner edits, admin
// moderation, and the listing paths.
type EventService interface {
	// Admin.
	GetEventsByAdmin(ctx context.Context, filter AdminEventFilter, page Pagination) ([]*EventDetails, error)
	UpdateEventByAdmin(ctx context.Context, eventID int64, upd EventUpdate) (*EventDetails, error)
	// Owner.
	CreateEvent(ctx context.Context, initiatorID int64, data NewEventData) (*EventDetails, error)
	GetUserEvents(ctx context.Context, initiatorID int64, page Pagination) ([]*EventDetails, error)
	GetUserEvent(ctx context.Context, initiatorID, eventID int64) (*EventDetails, error)
	UpdateEventByOwner(ctx context.Context, initiatorID, eventID int64, upd EventUpdate) (*EventDetails, error)
	// Public. clientIP feeds the statistics hit.
	GetEventsPublic(ctx context.Context, filter PublicEventFilter, sort EventSort, page Pagination, clientIP string) ([]*EventDetails, error)
	GetEventPublic(ctx context.Context, eventID int64, clientIP string) (*EventDetails, error)
}
