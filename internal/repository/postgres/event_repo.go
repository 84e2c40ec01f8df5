package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"eventboard/internal/domain"
)

// eventColumns is the shared projection for event queries, joined with
// category, initiator and location.
const eventColumns = `
	e.id, e.annotation, e.paid, e.event_date, e.description,
	e.participant_limit, e.state, e.created_on, e.request_moderation,
	e.published_on, e.title,
	c.id, c.name,
	u.id, u.name, u.email,
	l.id, l.lat, l.lon`

const eventFrom = `
	FROM events e
	JOIN categories c ON c.id = e.category_id
	JOIN users u ON u.id = e.initiator_id
	JOIN locations l ON l.id = e.location_id`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (annotation, category_id, paid, event_date, initiator_id,
			description, participant_limit, state, created_on, location_id,
			request_moderation, title)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Annotation, e.Category.ID, e.Paid, e.EventDate, e.Initiator.ID,
		e.Description, e.ParticipantLimit, string(e.State), e.CreatedOn,
		e.Location.ID, e.RequestModeration, e.Title,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := `SELECT` + eventColumns + eventFrom + `
	WHERE e.id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET annotation = $1, category_id = $2, paid = $3, event_date = $4,
			description = $5, participant_limit = $6, state = $7,
			location_id = $8, request_moderation = $9, published_on = $10,
			title = $11
		WHERE id = $12
	`
	var publishedOn sql.NullTime
	if e.PublishedOn != nil {
		publishedOn = sql.NullTime{Time: *e.PublishedOn, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx, query,
		e.Annotation, e.Category.ID, e.Paid, e.EventDate, e.Description,
		e.ParticipantLimit, string(e.State), e.Location.ID, e.RequestModeration,
		publishedOn, e.Title, e.ID,
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

func (r *eventRepository) FindAdmin(ctx context.Context, filter domain.AdminEventFilter, page domain.Pagination) ([]*domain.Event, error) {
	var conds []string
	var args []any

	if len(filter.Users) > 0 {
		args = append(args, pq.Array(filter.Users))
		conds = append(conds, fmt.Sprintf("e.initiator_id = ANY($%d)", len(args)))
	}
	if len(filter.States) > 0 {
		states := make([]string, len(filter.States))
		for i, s := range filter.States {
			states[i] = string(s)
		}
		args = append(args, pq.Array(states))
		conds = append(conds, fmt.Sprintf("e.state = ANY($%d)", len(args)))
	}
	if len(filter.Categories) > 0 {
		args = append(args, pq.Array(filter.Categories))
		conds = append(conds, fmt.Sprintf("e.category_id = ANY($%d)", len(args)))
	}
	if filter.RangeStart != nil {
		args = append(args, *filter.RangeStart)
		conds = append(conds, fmt.Sprintf("e.event_date > $%d", len(args)))
	}
	if filter.RangeEnd != nil {
		args = append(args, *filter.RangeEnd)
		conds = append(conds, fmt.Sprintf("e.event_date < $%d", len(args)))
	}

	return r.find(ctx, conds, args, "e.id ASC", page)
}

func (r *eventRepository) FindPublic(ctx context.Context, filter domain.PublicEventFilter, sort domain.EventSort, page domain.Pagination) ([]*domain.Event, error) {
	conds := []string{"e.state = 'PUBLISHED'"}
	var args []any

	if filter.Text != "" {
		args = append(args, "%"+filter.Text+"%")
		conds = append(conds, fmt.Sprintf("(e.annotation ILIKE $%d OR e.description ILIKE $%d)", len(args), len(args)))
	}
	if len(filter.Categories) > 0 {
		args = append(args, pq.Array(filter.Categories))
		conds = append(conds, fmt.Sprintf("e.category_id = ANY($%d)", len(args)))
	}
	if filter.Paid != nil {
		args = append(args, *filter.Paid)
		conds = append(conds, fmt.Sprintf("e.paid = $%d", len(args)))
	}
	if filter.RangeStart != nil {
		args = append(args, *filter.RangeStart)
		conds = append(conds, fmt.Sprintf("e.event_date > $%d", len(args)))
	}
	if filter.RangeEnd != nil {
		args = append(args, *filter.RangeEnd)
		conds = append(conds, fmt.Sprintf("e.event_date < $%d", len(args)))
	}
	// With no explicit window the listing shows upcoming events only.
	if filter.RangeStart == nil && filter.RangeEnd == nil {
		conds = append(conds, "e.event_date > NOW()")
	}
	if filter.OnlyAvailable {
		conds = append(conds, `(e.participant_limit = 0 OR (
			SELECT COUNT(*) FROM requests r
			WHERE r.event_id = e.id AND r.status = 'CONFIRMED'
		) < e.participant_limit)`)
	}

	order := "e.id ASC"
	if sort == domain.SortEventDate {
		order = "e.event_date DESC"
	}
	return r.find(ctx, conds, args, order, page)
}

func (r *eventRepository) find(ctx context.Context, conds []string, args []any, order string, page domain.Pagination) ([]*domain.Event, error) {
	query := `SELECT` + eventColumns + eventFrom
	if len(conds) > 0 {
		query += "\n\tWHERE " + strings.Join(conds, "\n\tAND ")
	}
	args = append(args, page.Limit(), page.Offset())
	query += fmt.Sprintf("\n\tORDER BY %s\n\tLIMIT $%d OFFSET $%d", order, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *eventRepository) ListByInitiator(ctx context.Context, initiatorID int64, page domain.Pagination) ([]*domain.Event, error) {
	query := `SELECT` + eventColumns + eventFrom + `
	WHERE e.initiator_id = $1
	ORDER BY e.id ASC
	LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, initiatorID, page.Limit(), page.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *eventRepository) ListByIDs(ctx context.Context, ids []int64) ([]*domain.Event, error) {
	if len(ids) == 0 {
		return []*domain.Event{}, nil
	}
	query := `SELECT` + eventColumns + eventFrom + `
	WHERE e.id = ANY($1)
	ORDER BY e.id ASC`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *eventRepository) ExistsByCategory(ctx context.Context, categoryID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM events WHERE category_id = $1)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, categoryID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var state string
	var publishedOn sql.NullTime
	err := row.Scan(
		&e.ID, &e.Annotation, &e.Paid, &e.EventDate, &e.Description,
		&e.ParticipantLimit, &state, &e.CreatedOn, &e.RequestModeration,
		&publishedOn, &e.Title,
		&e.Category.ID, &e.Category.Name,
		&e.Initiator.ID, &e.Initiator.Name, &e.Initiator.Email,
		&e.Location.ID, &e.Location.Lat, &e.Location.Lon,
	)
	if err != nil {
		return nil, err
	}
	e.State = domain.EventState(state)
	if publishedOn.Valid {
		e.PublishedOn = &publishedOn.Time
	}
	return e, nil
}

func scanEvents(rows *sql.Rows) ([]*domain.Event, error) {
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
