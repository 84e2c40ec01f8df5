package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventboard/internal/domain"
)

type requestRepository struct {
	DB *sql.DB
}

func NewRequestRepository(db *sql.DB) domain.RequestRepository {
	return &requestRepository{
		DB: db,
	}
}

// Create inserts the request under a row lock on the event so that concurrent
// creations against a near-full event cannot both pass the capacity check.
func (r *requestRepository) Create(ctx context.Context, req *domain.Request) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var limit int
	err = tx.QueryRowContext(ctx,
		`SELECT participant_limit FROM events WHERE id = $1 FOR UPDATE`,
		req.EventID,
	).Scan(&limit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	if limit > 0 {
		var confirmed int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM requests WHERE event_id = $1 AND status = 'CONFIRMED'`,
			req.EventID,
		).Scan(&confirmed)
		if err != nil {
			return err
		}
		if confirmed >= limit {
			return fmt.Errorf("%w: the event has reached the limit of participation requests", domain.ErrConflict)
		}
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO requests (requester_id, event_id, status, created_on)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		req.RequesterID, req.EventID, string(req.Status), req.Created,
	).Scan(&req.ID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *requestRepository) GetByID(ctx context.Context, id int64) (*domain.Request, error) {
	query := `
		SELECT id, requester_id, event_id, status, created_on
		FROM requests
		WHERE id = $1
	`
	req, err := scanRequest(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *requestRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Request, error) {
	result := make(map[int64]*domain.Request, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	query := `
		SELECT id, requester_id, event_id, status, created_on
		FROM requests
		WHERE id = ANY($1)
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result[req.ID] = req
	}
	return result, rows.Err()
}

func (r *requestRepository) ListByRequester(ctx context.Context, requesterID int64) ([]*domain.Request, error) {
	return r.list(ctx, `requester_id = $1`, requesterID)
}

func (r *requestRepository) ListByEvent(ctx context.Context, eventID int64) ([]*domain.Request, error) {
	return r.list(ctx, `event_id = $1`, eventID)
}

func (r *requestRepository) list(ctx context.Context, cond string, arg any) ([]*domain.Request, error) {
	query := `
		SELECT id, requester_id, event_id, status, created_on
		FROM requests
		WHERE ` + cond + `
		ORDER BY id ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reqs := make([]*domain.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func (r *requestRepository) ExistsActive(ctx context.Context, requesterID, eventID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM requests
			WHERE requester_id = $1 AND event_id = $2 AND status <> 'CANCELED'
		)
	`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, requesterID, eventID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *requestRepository) UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE requests SET status = $1 WHERE id = $2`,
		string(status), id,
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

// ApplyStatusChanges writes a bulk decision atomically: the event row is
// locked for the duration so the confirmed count cannot move under the batch,
// and either every change commits or none does.
func (r *requestRepository) ApplyStatusChanges(ctx context.Context, eventID int64, changes []domain.RequestStatusChange) error {
	if len(changes) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	for _, ch := range changes {
		res, err := tx.ExecContext(ctx,
			`UPDATE requests SET status = $1 WHERE id = $2`,
			string(ch.Status), ch.RequestID,
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
	}
	return tx.Commit()
}

func (r *requestRepository) ConfirmedCounts(ctx context.Context, eventIDs []int64) (map[int64]int, error) {
	result := make(map[int64]int, len(eventIDs))
	if len(eventIDs) == 0 {
		return result, nil
	}
	query := `
		SELECT event_id, COUNT(*)
		FROM requests
		WHERE event_id = ANY($1) AND status = 'CONFIRMED'
		GROUP BY event_id
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(eventIDs))
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

func scanRequest(row rowScanner) (*domain.Request, error) {
	req := &domain.Request{}
	var status string
	if err := row.Scan(&req.ID, &req.RequesterID, &req.EventID, &status, &req.Created); err != nil {
		return nil, err
	}
	req.Status = domain.RequestStatus(status)
	return req, nil
}
