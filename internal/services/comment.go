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

type commentService struct {
	commentRepo    domain.CommentRepository
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewCommentService(
	commentRepo domain.CommentRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	logger *slog.Logger,
	timeout time.Duration,
) domain.CommentService {
	return &commentService{
		commentRepo:    commentRepo,
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *commentService) CreateComment(ctx context.Context, authorID, eventID int64, text string) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text must not be blank", domain.ErrValidation)
	}
	exists, err := s.userRepo.Exists(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.State != domain.StatePublished {
		return nil, fmt.Errorf("%w: cannot comment on an unpublished event", domain.ErrConflict)
	}

	comment := &domain.Comment{
		Text:      text,
		AuthorID:  authorID,
		EventID:   eventID,
		CreatedOn: time.Now(),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	s.logger.InfoContext(ctx, "comment created", "comment_id", comment.ID, "event_id", eventID)
	return comment, nil
}

func (s *commentService) UpdateComment(ctx context.Context, authorID, commentID int64, text string) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text must not be blank", domain.ErrValidation)
	}
	comment, err := s.ownedComment(ctx, authorID, commentID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	comment.Text = text
	comment.EditedOn = &now
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

func (s *commentService) DeleteComment(ctx context.Context, authorID, commentID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedComment(ctx, authorID, commentID); err != nil {
		return err
	}
	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	s.logger.InfoContext(ctx, "comment deleted", "comment_id", commentID)
	return nil
}

func (s *commentService) DeleteCommentByAdmin(ctx context.Context, commentID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete comment: %w", err)
	}
	s.logger.InfoContext(ctx, "comment deleted by admin", "comment_id", commentID)
	return nil
}

func (s *commentService) GetEventComments(ctx context.Context, eventID int64, page domain.Pagination) ([]*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	comments, err := s.commentRepo.ListByEvent(ctx, eventID, page)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (s *commentService) ownedComment(ctx context.Context, authorID, commentID int64) (*domain.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	if comment.AuthorID != authorID {
		return nil, domain.ErrForbidden
	}
	return comment, nil
}
