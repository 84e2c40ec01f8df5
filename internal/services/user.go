package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"eventboard/internal/domain"
)

type userService struct {
	userRepo       domain.UserRepository
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewUserService(userRepo domain.UserRepository, logger *slog.Logger, timeout time.Duration) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *userService) CreateUser(ctx context.Context, name, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: user name must not be blank", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email %q", domain.ErrValidation, email)
	}

	user := &domain.User{Name: name, Email: email}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, fmt.Errorf("%w: email %q is taken", domain.ErrConflict, email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.InfoContext(ctx, "user created", "user_id", user.ID)
	return user, nil
}

func (s *userService) GetUsers(ctx context.Context, ids []int64, page domain.Pagination) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	users, err := s.userRepo.List(ctx, ids, page)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userService) DeleteUser(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.InfoContext(ctx, "user deleted", "user_id", id)
	return nil
}
