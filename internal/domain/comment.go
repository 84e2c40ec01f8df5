package domain

import (
	"context"
	"time"
)

// Comment is a user comment on a published event.
// swagger:model Comment
type Comment struct {
	ID        int64      `json:"id"`
	Text      string     `json:"text"`
	AuthorID  int64      `json:"author"`
	EventID   int64      `json:"event"`
	CreatedOn time.Time  `json:"createdOn"`
	EditedOn  *time.Time `json:"editedOn,omitempty"`
}

// CommentRepository defines storage operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
	GetByID(ctx context.Context, id int64) (*Comment, error)
	Update(ctx context.Context, c *Comment) error
	Delete(ctx context.Context, id int64) error
	ListByEvent(ctx context.Context, eventID int64, page Pagination) ([]*Comment, error)
	// CountByEvents returns the comment count per event id; events with no
	// comments are absent from the map.
	CountByEvents(ctx context.Context, eventIDs []int64) (map[int64]int, error)
}

// CommentService owns comment creation and moderation.
type CommentService interface {
	// CreateComment fails with ErrConflict when the event is not published.
	CreateComment(ctx context.Context, authorID, eventID int64, text string) (*Comment, error)
	UpdateComment(ctx context.Context, authorID, commentID int64, text string) (*Comment, error)
	DeleteComment(ctx context.Context, authorID, commentID int64) error
	DeleteCommentByAdmin(ctx context.Context, commentID int64) error
	GetEventComments(ctx context.Context, eventID int64, page Pagination) ([]*Comment, error)
}
