package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"eventboard/internal/domain"
)

type commentRepository struct {
	DB *sql.DB
}

func NewCommentRepository(db *sql.DB) domain.CommentRepository {
	return &commentRepository{
		DB: db,
	}
}

func (r *commentRepository) Create(ctx context.Context, c *domain.Comment) error {
	return r.DB.QueryRowContext(ctx,
		`INSERT INTO comments (text, author_id, event_id, created_on)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		c.Text, c.AuthorID, c.EventID, c.CreatedOn,
	).Scan(&c.ID)
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	c := &domain.Comment{}
	var editedOn sql.NullTime
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, text, author_id, event_id, created_on, edited_on
		 FROM comments WHERE id = $1`, id,
	).Scan(&c.ID, &c.Text, &c.AuthorID, &c.EventID, &c.CreatedOn, &editedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if editedOn.Valid {
		c.EditedOn = &editedOn.Time
	}
	return c, nil
}

func (r *commentRepository) Update(ctx context.Context, c *domain.Comment) error {
	var editedOn sql.NullTime
	if c.EditedOn != nil {
		editedOn = sql.NullTime{Time: *c.EditedOn, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE comments SET text = $1, edited_on = $2 WHERE id = $3`,
		c.Text, editedOn, c.ID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *commentRepository) ListByEvent(ctx context.Context, eventID int64, page domain.Pagination) ([]*domain.Comment, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, text, author_id, event_id, created_on, edited_on
		 FROM comments
		 WHERE event_id = $1
		 ORDER BY created_on DESC
		 LIMIT $2 OFFSET $3`,
		eventID, page.Limit(), page.Offset(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	comments := make([]*domain.Comment, 0)
	for rows.Next() {
		c := &domain.Comment{}
		var editedOn sql.NullTime
		if err := rows.Scan(&c.ID, &c.Text, &c.AuthorID, &c.EventID, &c.CreatedOn, &editedOn); err != nil {
			return nil, err
		}
		if editedOn.Valid {
			c.EditedOn = &editedOn.Time
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *commentRepository) CountByEvents(ctx context.Context, eventIDs []int64) (map[int64]int, error) {
	result := make(map[int64]int, len(eventIDs))
	if len(eventIDs) == 0 {
		return result, nil
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT event_id, COUNT(*)
		 FROM comments
		 WHERE event_id = ANY($1)
		 GROUP BY event_id`,
		pq.Array(eventIDs),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var eventID int64
		var count int
		if err := rows.Scan(&eventID, &count); err != nil {
			return nil, err
		}
		result[eventID] = count
	}
	return result, rows.Err()
}
