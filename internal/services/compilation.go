package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventboard/internal/domain"
)

type compilationService struct {
	compilationRepo domain.CompilationRepository
	eventRepo       domain.EventRepository
	enricher        domain.EventEnricher
	logger          *slog.Logger
	contextTimeout  time.Duration
}

func NewCompilationService(
	compilationRepo domain.CompilationRepository,
	eventRepo domain.EventRepository,
	enricher domain.EventEnricher,
	logger *slog.Logger,
	timeout time.Duration,
) domain.CompilationService {
	return &compilationService{
		compilationRepo: compilationRepo,
		eventRepo:       eventRepo,
		enricher:        enricher,
		logger:          logger,
		contextTimeout:  timeout,
	}
}

func (s *compilationService) CreateCompilation(ctx context.Context, title string, pinned bool, eventIDs []int64) (*domain.CompilationDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: compilation title must not be blank", domain.ErrValidation)
	}
	if err := s.checkEvents(ctx, eventIDs); err != nil {
		return nil, err
	}

	comp := &domain.Compilation{Title: title, Pinned: pinned, EventIDs: eventIDs}
	if err := s.compilationRepo.Create(ctx, comp); err != nil {
		return nil, fmt.Errorf("create compilation: %w", err)
	}
	s.logger.InfoContext(ctx, "compilation created", "compilation_id", comp.ID)
	return s.details(ctx, comp)
}

func (s *compilationService) UpdateCompilation(ctx context.Context, id int64, upd domain.CompilationUpdate) (*domain.CompilationDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	comp, err := s.compilationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get compilation: %w", err)
	}

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: compilation title must not be blank", domain.ErrValidation)
		}
		comp.Title = title
	}
	if upd.Pinned != nil {
		comp.Pinned = *upd.Pinned
	}
	replaceEvents := upd.EventIDs != nil
	if replaceEvents {
		if err := s.checkEvents(ctx, upd.EventIDs); err != nil {
			return nil, err
		}
		comp.EventIDs = upd.EventIDs
	}

	if err := s.compilationRepo.Update(ctx, comp, replaceEvents); err != nil {
		return nil, fmt.Errorf("update compilation: %w", err)
	}
	return s.details(ctx, comp)
}

func (s *compilationService) DeleteCompilation(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.compilationRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete compilation: %w", err)
	}
	s.logger.InfoContext(ctx, "compilation deleted", "compilation_id", id)
	return nil
}

func (s *compilationService) GetCompilation(ctx context.Context, id int64) (*domain.CompilationDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	comp, err := s.compilationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get compilation: %w", err)
	}
	return s.details(ctx, comp)
}

func (s *compilationService) GetCompilations(ctx context.Context, pinned *bool, page domain.Pagination) ([]*domain.CompilationDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	comps, err := s.compilationRepo.List(ctx, pinned, page)
	if err != nil {
		return nil, fmt.Errorf("list compilations: %w", err)
	}
	result := make([]*domain.CompilationDetails, 0, len(comps))
	for _, comp := range comps {
		details, err := s.details(ctx, comp)
		if err != nil {
			return nil, err
		}
		result = append(result, details)
	}
	return result, nil
}

// checkEvents verifies every referenced event exists.
func (s *compilationService) checkEvents(ctx context.Context, eventIDs []int64) error {
	if len(eventIDs) == 0 {
		return nil
	}
	events, err := s.eventRepo.ListByIDs(ctx, eventIDs)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	found := make(map[int64]bool, len(events))
	for _, ev := range events {
		found[ev.ID] = true
	}
	for _, id := range eventIDs {
		if !found[id] {
			return fmt.Errorf("%w: event %d", domain.ErrNotFound, id)
		}
	}
	return nil
}

// details loads the linked events in stored order and enriches them.
func (s *compilationService) details(ctx context.Context, comp *domain.Compilation) (*domain.CompilationDetails, error) {
	details := &domain.CompilationDetails{
		ID:     comp.ID,
		Title:  comp.Title,
		Pinned: comp.Pinned,
		Events: []*domain.EventDetails{},
	}
	if len(comp.EventIDs) == 0 {
		return details, nil
	}
	events, err := s.eventRepo.ListByIDs(ctx, comp.EventIDs)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	byID := make(map[int64]*domain.Event, len(events))
	for _, ev := range events {
		byID[ev.ID] = ev
	}
	ordered := make([]*domain.Event, 0, len(comp.EventIDs))
	for _, id := range comp.EventIDs {
		if ev, ok := byID[id]; ok {
			ordered = append(ordered, ev)
		}
	}
	enriched, err := s.enricher.Enrich(ctx, ordered)
	if err != nil {
		return nil, fmt.Errorf("enrich events: %w", err)
	}
	details.Events = enriched
	return details, nil
}
