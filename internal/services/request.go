package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventboard/internal/domain"
)

type requestService struct {
	requestRepo domain.RequestRepository
	userRepo    domain.UserRepository
	eventRepo   domain.EventRepository
	logger      *slog.Logger

	// eventLocks serializes the capacity check-then-act per event, so
	// concurrent creations and bulk decisions cannot both consume the last
	// slot. The postgres repository additionally locks the event row.
	eventLocks *keyedLock

	contextTimeout time.Duration
}

func NewRequestService(
	requestRepo domain.RequestRepository,
	userRepo domain.UserRepository,
	eventRepo domain.EventRepository,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RequestService {
	return &requestService{
		requestRepo:    requestRepo,
		userRepo:       userRepo,
		eventRepo:      eventRepo,
		logger:         logger,
		eventLocks:     newKeyedLock(),
		contextTimeout: timeout,
	}
}

func (s *requestService) GetRequestsByUser(ctx context.Context, userID int64) ([]*domain.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}
	requests, err := s.requestRepo.ListByRequester(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

func (s *requestService) CreateRequest(ctx context.Context, userID, eventID int64) (*domain.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	exists, err := s.requestRepo.ExistsActive(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("check duplicate request: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: repeat request for event %d", domain.ErrConflict, eventID)
	}
	if event.Initiator.ID == userID {
		return nil, fmt.Errorf("%w: the initiator cannot request participation in their own event", domain.ErrConflict)
	}
	if event.State != domain.StatePublished {
		return nil, fmt.Errorf("%w: cannot participate in an unpublished event", domain.ErrConflict)
	}

	status := domain.RequestPending
	if !event.RequestModeration || event.ParticipantLimit == 0 {
		status = domain.RequestConfirmed
	}

	unlock := s.eventLocks.Lock(eventID)
	defer unlock()

	if event.ParticipantLimit > 0 {
		confirmed, err := s.confirmedCount(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if confirmed >= event.ParticipantLimit {
			return nil, fmt.Errorf("%w: the event has reached the limit of participation requests", domain.ErrConflict)
		}
	}

	request := &domain.Request{
		RequesterID: userID,
		EventID:     eventID,
		Status:      status,
		Created:     time.Now(),
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("create request: %w", err)
	}
	s.logger.InfoContext(ctx, "request created", "request_id", request.ID, "event_id", eventID, "status", request.Status)
	return request, nil
}

func (s *requestService) CancelRequest(ctx context.Context, userID, requestID int64) (*domain.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	if request.RequesterID != userID {
		return nil, fmt.Errorf("%w: request %d belongs to another user", domain.ErrConflict, requestID)
	}
	// Confirmed participants do not leave through this path.
	if request.Status == domain.RequestConfirmed {
		return nil, fmt.Errorf("%w: request %d is confirmed", domain.ErrConflict, requestID)
	}

	if err := s.requestRepo.UpdateStatus(ctx, requestID, domain.RequestCanceled); err != nil {
		return nil, fmt.Errorf("cancel request: %w", err)
	}
	request.Status = domain.RequestCanceled
	s.logger.InfoContext(ctx, "request canceled", "request_id", requestID)
	return request, nil
}

func (s *requestService) GetEventRequests(ctx context.Context, initiatorID, eventID int64) ([]*domain.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedEvent(ctx, initiatorID, eventID); err != nil {
		return nil, err
	}
	requests, err := s.requestRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

func (s *requestService) DecideRequests(ctx context.Context, initiatorID, eventID int64, decision domain.RequestDecision) (*domain.RequestDecisionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if decision.Status != domain.RequestConfirmed && decision.Status != domain.RequestRejected {
		return nil, fmt.Errorf("%w: decision must be CONFIRMED or REJECTED", domain.ErrValidation)
	}

	event, err := s.ownedEvent(ctx, initiatorID, eventID)
	if err != nil {
		return nil, err
	}
	// Events without moderation auto-confirm; there is nothing to decide.
	if event.ParticipantLimit == 0 || !event.RequestModeration {
		return nil, fmt.Errorf("%w: event %d does not require request moderation", domain.ErrConflict, eventID)
	}

	unlock := s.eventLocks.Lock(eventID)
	defer unlock()

	confirmed, err := s.confirmedCount(ctx, eventID)
	if err != nil {
		return nil, err
	}
	// Remaining capacity is computed once for the whole batch.
	remaining := event.ParticipantLimit - confirmed

	requests, err := s.requestRepo.GetByIDs(ctx, decision.RequestIDs)
	if err != nil {
		return nil, fmt.Errorf("get requests: %w", err)
	}

	result := &domain.RequestDecisionResult{
		ConfirmedRequests: []*domain.Request{},
		RejectedRequests:  []*domain.Request{},
	}
	changes := make([]domain.RequestStatusChange, 0, len(decision.RequestIDs))
	for _, id := range decision.RequestIDs {
		request, ok := requests[id]
		if !ok {
			return nil, fmt.Errorf("%w: request %d", domain.ErrNotFound, id)
		}
		if request.EventID != eventID {
			return nil, fmt.Errorf("%w: request %d", domain.ErrNotFound, id)
		}
		// A single non-pending id aborts the whole batch; nothing below is
		// persisted unless every id passes.
		if request.Status != domain.RequestPending {
			return nil, fmt.Errorf("%w: request %d must have status PENDING", domain.ErrConflict, id)
		}

		status := decision.Status
		if status == domain.RequestConfirmed && remaining == 0 {
			// Limit exhausted mid-batch: the overflow is demoted to
			// REJECTED rather than erroring.
			status = domain.RequestRejected
		}
		request.Status = status
		changes = append(changes, domain.RequestStatusChange{RequestID: id, Status: status})
		if status == domain.RequestConfirmed {
			remaining--
			result.ConfirmedRequests = append(result.ConfirmedRequests, request)
		} else {
			result.RejectedRequests = append(result.RejectedRequests, request)
		}
	}

	if err := s.requestRepo.ApplyStatusChanges(ctx, eventID, changes); err != nil {
		return nil, fmt.Errorf("apply decisions: %w", err)
	}
	s.logger.InfoContext(ctx, "requests decided",
		"event_id", eventID,
		"confirmed", len(result.ConfirmedRequests),
		"rejected", len(result.RejectedRequests),
	)
	return result, nil
}

func (s *requestService) ConfirmedCounts(ctx context.Context, events []*domain.Event) (map[int64]int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ids := make([]int64, len(events))
	for i, event := range events {
		ids[i] = event.ID
	}
	counts, err := s.requestRepo.ConfirmedCounts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("confirmed counts: %w", err)
	}
	// Events with no confirmed requests count as zero.
	for _, id := range ids {
		if _, ok := counts[id]; !ok {
			counts[id] = 0
		}
	}
	return counts, nil
}

func (s *requestService) confirmedCount(ctx context.Context, eventID int64) (int, error) {
	counts, err := s.requestRepo.ConfirmedCounts(ctx, []int64{eventID})
	if err != nil {
		return 0, fmt.Errorf("confirmed counts: %w", err)
	}
	return counts[eventID], nil
}

func (s *requestService) ownedEvent(ctx context.Context, initiatorID, eventID int64) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.Initiator.ID != initiatorID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func (s *requestService) checkUser(ctx context.Context, userID int64) error {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return nil
}
