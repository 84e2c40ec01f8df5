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

type categoryService struct {
	categoryRepo   domain.CategoryRepository
	eventRepo      domain.EventRepository
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewCategoryService(
	categoryRepo domain.CategoryRepository,
	eventRepo domain.EventRepository,
	logger *slog.Logger,
	timeout time.Duration,
) domain.CategoryService {
	return &categoryService{
		categoryRepo:   categoryRepo,
		eventRepo:      eventRepo,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *categoryService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name must not be blank", domain.ErrValidation)
	}
	cat := &domain.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, cat); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: category name %q is taken", domain.ErrConflict, name)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.logger.InfoContext(ctx, "category created", "category_id", cat.ID)
	return cat, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id int64, name string) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name must not be blank", domain.ErrValidation)
	}
	cat, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	cat.Name = name
	if err := s.categoryRepo.Update(ctx, cat); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: category name %q is taken", domain.ErrConflict, name)
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return cat, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get category: %w", err)
	}
	inUse, err := s.eventRepo.ExistsByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("check category usage: %w", err)
	}
	if inUse {
		return fmt.Errorf("%w: the category is not empty", domain.ErrConflict)
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.logger.InfoContext(ctx, "category deleted", "category_id", id)
	return nil
}

func (s *categoryService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	cat, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return cat, nil
}

func (s *categoryService) GetCategories(ctx context.Context, page domain.Pagination) ([]*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	cats, err := s.categoryRepo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}
