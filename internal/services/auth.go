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

const minPasswordLength = 8

type authService struct {
	userRepo       domain.UserRepository
	hasher         domain.PasswordHasher
	issuer         domain.TokenIssuer
	tokenExpiry    time.Duration
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewAuthService(
	userRepo domain.UserRepository,
	hasher domain.PasswordHasher,
	issuer domain.TokenIssuer,
	tokenExpiry time.Duration,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AuthService {
	return &authService{
		userRepo:       userRepo,
		hasher:         hasher,
		issuer:         issuer,
		tokenExpiry:    tokenExpiry,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *authService) SignUp(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", fmt.Errorf("%w: name must not be blank", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", fmt.Errorf("%w: invalid email %q", domain.ErrValidation, email)
	}
	if len(password) < minPasswordLength {
		return nil, "", fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, "", fmt.Errorf("generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Salt:         salt,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, "", fmt.Errorf("%w: email %q is taken", domain.ErrConflict, email)
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	s.logger.InfoContext(ctx, "user signed up", "user_id", user.ID)
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", fmt.Errorf("%w: invalid credentials", domain.ErrForbidden)
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return nil, "", fmt.Errorf("%w: invalid credentials", domain.ErrForbidden)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return user, token, nil
}

func (s *authService) issueToken(user *domain.User) (string, error) {
	roles := []string{"user"}
	if user.Admin {
		roles = append(roles, "admin")
	}
	token, err := s.issuer.Issue(user.ID, user.Email, roles, s.tokenExpiry)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}
