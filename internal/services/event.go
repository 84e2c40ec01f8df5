package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventboard/internal/domain"
)

type eventService struct {
	eventRepo    domain.EventRepository
	categoryRepo domain.CategoryRepository
	locationRepo domain.LocationRepository
	userRepo     domain.UserRepository
	enricher     domain.EventEnricher
	stats        domain.StatsService
	emailService domain.EmailService
	logger       *slog.Logger

	// Minimum interval between now and the event date on date-changing
	// writes. Owners get the stricter threshold.
	ownerLeadTime time.Duration
	adminLeadTime time.Duration

	contextTimeout time.Duration
}

func NewEventService(
	eventRepo domain.EventRepository,
	categoryRepo domain.CategoryRepository,
	locationRepo domain.LocationRepository,
	userRepo domain.UserRepository,
	enricher domain.EventEnricher,
	stats domain.StatsService,
	emailService domain.EmailService,
	logger *slog.Logger,
	ownerLeadTime, adminLeadTime time.Duration,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		categoryRepo:   categoryRepo,
		locationRepo:   locationRepo,
		userRepo:       userRepo,
		enricher:       enricher,
		stats:          stats,
		emailService:   emailService,
		logger:         logger,
		ownerLeadTime:  ownerLeadTime,
		adminLeadTime:  adminLeadTime,
		contextTimeout: timeout,
	}
}

func (s *eventService) GetEventsByAdmin(ctx context.Context, filter domain.AdminEventFilter, page domain.Pagination) ([]*domain.EventDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := filter.Validate(); err != nil {
		return nil, err
	}
	events, err := s.eventRepo.FindAdmin(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	return s.enricher.Enrich(ctx, events)
}

func (s *eventService) UpdateEventByAdmin(ctx context.Context, eventID int64, upd domain.EventUpdate) (*domain.EventDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	now := time.Now()
	if upd.EventDate != nil && upd.EventDate.Before(now.Add(s.adminLeadTime)) {
		return nil, fmt.Errorf("%w: the event date must be at least %s from now", domain.ErrConflict, s.adminLeadTime)
	}

	var published, rejected bool
	if upd.StateAction != nil {
		switch *upd.StateAction {
		case domain.ActionPublishEvent:
			if event.State != domain.StatePending {
				return nil, fmt.Errorf("%w: event must be pending to publish", domain.ErrConflict)
			}
			event.State = domain.StatePublished
			event.PublishedOn = &now
			published = true
		case domain.ActionRejectEvent:
			if event.State == domain.StatePublished {
				return nil, fmt.Errorf("%w: cannot reject a published event", domain.ErrConflict)
			}
			event.State = domain.StateCanceled
			rejected = true
		default:
			return nil, fmt.Errorf("%w: unknown admin state action %q", domain.ErrValidation, *upd.StateAction)
		}
	}

	if err := s.applyUpdate(ctx, event, upd); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	s.logger.InfoContext(ctx, "event updated by admin", "event_id", event.ID, "state", event.State)

	if published {
		s.notify(ctx, event, true)
	}
	if rejected {
		s.notify(ctx, event, false)
	}
	return s.enrichOne(ctx, event)
}

func (s *eventService) CreateEvent(ctx context.Context, initiatorID int64, data domain.NewEventData) (*domain.EventDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	initiator, err := s.userRepo.GetByID(ctx, initiatorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	now := time.Now()
	if data.EventDate.Before(now.Add(s.ownerLeadTime)) {
		return nil, fmt.Errorf("%w: the event date must be at least %s from now", domain.ErrConflict, s.ownerLeadTime)
	}
	if data.ParticipantLimit < 0 {
		return nil, fmt.Errorf("%w: participant limit must not be negative", domain.ErrValidation)
	}

	category, err := s.getCategory(ctx, data.CategoryID)
	if err != nil {
		return nil, err
	}
	location, err := s.resolveLocation(ctx, data.Location)
	if err != nil {
		return nil, err
	}

	event := &domain.Event{
		Annotation:        data.Annotation,
		Category:          *category,
		Paid:              data.Paid,
		EventDate:         data.EventDate,
		Initiator:         *initiator,
		Description:       data.Description,
		ParticipantLimit:  data.ParticipantLimit,
		State:             domain.StatePending,
		CreatedOn:         now,
		Location:          *location,
		RequestModeration: data.RequestModeration,
		Title:             data.Title,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.InfoContext(ctx, "event created", "event_id", event.ID, "initiator_id", initiatorID)
	return s.enrichOne(ctx, event)
}

func (s *eventService) GetUserEvents(ctx context.Context, initiatorID int64, page domain.Pagination) ([]*domain.EventDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.checkUser(ctx, initiatorID); err != nil {
		return nil, err
	}
	events, err := s.eventRepo.ListByInitiator(ctx, initiatorID, page)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return s.enricher.Enrich(ctx, events)
}

func (s *eventService) GetUserEvent(ctx context.Context, initiatorID, eventID int64) (*domain.EventDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.ownedEvent(ctx, initiatorID, eventID)
	if err != nil {
		return nil, err
	}
	return s.enrichOne(ctx, event)
}

func (s *eventService) UpdateEventByOwner(ctx context.Context, initiatorID, eventID int64, upd domain.EventUpdate) (*domain.EventDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.ownedEvent(ctx, initiatorID, eventID)
	if err != nil {
		return nil, err
	}
	if event.State == domain.StatePublished {
		return nil, fmt.Errorf("%w: only pending or canceled events can be changed", domain.ErrConflict)
	}

	now := time.Now()
	if upd.EventDate != nil && upd.EventDate.Before(now.Add(s.ownerLeadTime)) {
		return nil, fmt.Errorf("%w: the event date must be at least %s from now", domain.ErrConflict, s.ownerLeadTime)
	}

	if upd.StateAction != nil {
		switch *upd.StateAction {
		case domain.ActionSendToReview:
			event.State = domain.StatePending
		case domain.ActionCancelReview:
			event.State = domain.StateCanceled
		default:
			return nil, fmt.Errorf("%w: unknown owner state action %q", domain.ErrValidation, *upd.StateAction)
		}
	}

	if err := s.applyUpdate(ctx, event, upd); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	s.logger.InfoContext(ctx, "event updated by owner", "event_id", event.ID, "state", event.State)
	return s.enrichOne(ctx, event)
}

func (s *eventService) GetEventsPublic(ctx context.Context, filter domain.PublicEventFilter, sort domain.EventSort, page domain.Pagination, clientIP string) ([]*domain.EventDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := filter.Validate(); err != nil {
		return nil, err
	}
	events, err := s.eventRepo.FindPublic(ctx, filter, sort, page)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}

	s.recordHit(ctx, "/events", clientIP)

	details, err := s.enricher.Enrich(ctx, events)
	if err != nil {
		return nil, err
	}
	if sort == domain.SortViews {
		sortByViews(details)
	}
	return details, nil
}

func (s *eventService) GetEventPublic(ctx context.Context, eventID int64, clientIP string) (*domain.EventDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	// Unpublished events are invisible on the public path.
	if event.State != domain.StatePublished {
		return nil, domain.ErrNotFound
	}

	s.recordHit(ctx, fmt.Sprintf("/events/%d", eventID), clientIP)
	return s.enrichOne(ctx, event)
}

// applyUpdate copies the present fields of upd onto event, resolving category
// and location references. The state action is handled by the caller.
func (s *eventService) applyUpdate(ctx context.Context, event *domain.Event, upd domain.EventUpdate) error {
	if upd.Annotation != nil {
		event.Annotation = *upd.Annotation
	}
	if upd.Description != nil {
		event.Description = *upd.Description
	}
	if upd.EventDate != nil {
		event.EventDate = *upd.EventDate
	}
	if upd.Paid != nil {
		event.Paid = *upd.Paid
	}
	if upd.ParticipantLimit != nil {
		if *upd.ParticipantLimit < 0 {
			return fmt.Errorf("%w: participant limit must not be negative", domain.ErrValidation)
		}
		event.ParticipantLimit = *upd.ParticipantLimit
	}
	if upd.RequestModeration != nil {
		event.RequestModeration = *upd.RequestModeration
	}
	if upd.Title != nil {
		event.Title = *upd.Title
	}
	if upd.CategoryID != nil {
		category, err := s.getCategory(ctx, *upd.CategoryID)
		if err != nil {
			return err
		}
		event.Category = *category
	}
	if upd.Location != nil {
		location, err := s.resolveLocation(ctx, *upd.Location)
		if err != nil {
			return err
		}
		event.Location = *location
	}
	return nil
}

func (s *eventService) getCategory(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: category %d", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

// resolveLocation deduplicates locations by exact coordinates: reuse the
// stored row when one matches, insert otherwise. Locations are never updated
// in place.
func (s *eventService) resolveLocation(ctx context.Context, point domain.GeoPoint) (*domain.Location, error) {
	location, err := s.locationRepo.GetByCoordinates(ctx, point.Lat, point.Lon)
	if err == nil {
		return location, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get location: %w", err)
	}
	location = &domain.Location{Lat: point.Lat, Lon: point.Lon}
	if err := s.locationRepo.Create(ctx, location); err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	return location, nil
}

func (s *eventService) ownedEvent(ctx context.Context, initiatorID, eventID int64) (*domain.Event, error) {
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

func (s *eventService) checkUser(ctx context.Context, userID int64) error {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return nil
}

func (s *eventService) enrichOne(ctx context.Context, event *domain.Event) (*domain.EventDetails, error) {
	details, err := s.enricher.Enrich(ctx, []*domain.Event{event})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

// recordHit registers a statistics hit, best-effort.
func (s *eventService) recordHit(ctx context.Context, uri, clientIP string) {
	if err := s.stats.RecordHit(ctx, uri, clientIP); err != nil {
		s.logger.WarnContext(ctx, "failed to record hit", "uri", uri, "err", err)
	}
}

// notify emails the initiator about a moderation outcome, best-effort.
func (s *eventService) notify(ctx context.Context, event *domain.Event, published bool) {
	data := &domain.ModerationEmailData{
		Email:      event.Initiator.Email,
		EventTitle: event.Title,
	}
	var err error
	if published {
		err = s.emailService.SendEventPublished(ctx, data)
	} else {
		err = s.emailService.SendEventRejected(ctx, data)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to send moderation email", "event_id", event.ID, "err", err)
	}
}
