package domain

import (
	"context"
	"time"
)

// RequestStatus is the lifecycle status of a participation request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestConfirmed RequestStatus = "CONFIRMED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCanceled  RequestStatus = "CANCELED"
)

// Request represents a user's request to participate in an event.
// swagger:model Request
type Request struct {
	ID          int64         `json:"id"`
	RequesterID int64         `json:"requester"`
	EventID     int64         `json:"event"`
	Status      RequestStatus `json:"status"`
	Created     time.Time     `json:"created"`
}

// RequestDecision asks the event initiator to confirm or reject a batch of
// pending requests, in the order given.
type RequestDecision struct {
	RequestIDs []int64
	Status     RequestStatus // RequestConfirmed or RequestRejected
}

// RequestDecisionResult lists the per-request outcomes in processing order.
// swagger:model RequestDecisionResult
type RequestDecisionResult struct {
	ConfirmedRequests []*Request `json:"confirmedRequests"`
	RejectedRequests  []*Request `json:"rejectedRequests"`
}

// RequestStatusChange is one status write applied by a bulk decision.
type RequestStatusChange struct {
	RequestID int64
	Status    RequestStatus
}

// RequestRepository defines storage operations for participation requests.
type RequestRepository interface {
	// Create inserts req inside a transaction that locks the event row and
	// re-checks the confirmed count against the event's participant limit
	// (0 = unlimited). Returns ErrConflict when the limit is reached.
	Create(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id int64) (*Request, error)
	// GetByIDs returns the found requests keyed by id; missing ids are absent.
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*Request, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]*Request, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*Request, error)
	// ExistsActive reports whether a non-canceled request exists for the
	// (requester, event) pair.
	ExistsActive(ctx context.Context, requesterID, eventID int64) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status RequestStatus) error
	// ApplyStatusChanges writes all changes in one transaction that locks the
	// event row; either all apply or none do.
	ApplyStatusChanges(ctx context.Context, eventID int64, changes []RequestStatusChange) error
	// ConfirmedCounts returns the CONFIRMED request count per event id.
	// Events with no confirmed requests are absent from the map.
	ConfirmedCounts(ctx context.Context, eventIDs []int64) (map[int64]int, error)
}

// RequestService owns the participation ledger.
type RequestService interface {
	GetRequestsByUser(ctx context.Context, userID int64) ([]*Request, error)
	CreateRequest(ctx context.Context, userID, eventID int64) (*Request, error)
	CancelRequest(ctx context.Context, userID, requestID int64) (*Request, error)
	// GetEventRequests lists requests for an event; only its initiator may call.
	GetEventRequests(ctx context.Context, initiatorID, eventID int64) ([]*Request, error)
	// DecideRequests applies a bulk confirm/reject decision for the initiator.
	DecideRequests(ctx context.Context, initiatorID, eventID int64, decision RequestDecision) (*RequestDecisionResult, error)
	// ConfirmedCounts returns the confirmed count per event, 0 when none.
	ConfirmedCounts(ctx context.Context, events []*Event) (map[int64]int, error)
}
