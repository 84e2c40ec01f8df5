package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"eventboard/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestRequestRepository_Create(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		request *domain.Request
		mock    func(mock sqlmock.Sqlmock)
		wantID  int64
		wantErr error
	}{
		{
			name: "success under limit",
			request: &domain.Request{
				RequesterID: 7,
				EventID:     3,
				Status:      domain.RequestPending,
				Created:     created,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT participant_limit FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs(int64(3)).
					WillReturnRows(sqlmock.NewRows([]string{"participant_limit"}).AddRow(10))
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM requests WHERE event_id = \$1 AND status = 'CONFIRMED'`).
					WithArgs(int64(3)).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
				mock.ExpectQuery(`INSERT INTO requests`).
					WithArgs(int64(7), int64(3), "PENDING", created).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
				mock.ExpectCommit()
			},
			wantID: 42,
		},
		{
			name: "unlimited event skips the count",
			request: &domain.Request{
				RequesterID: 7,
				EventID:     3,
				Status:      domain.RequestConfirmed,
				Created:     created,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT participant_limit FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs(int64(3)).
					WillReturnRows(sqlmock.NewRows([]string{"participant_limit"}).AddRow(0))
				mock.ExpectQuery(`INSERT INTO requests`).
					WithArgs(int64(7), int64(3), "CONFIRMED", created).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(43)))
				mock.ExpectCommit()
			},
			wantID: 43,
		},
		{
			name: "limit reached",
			request: &domain.Request{
				RequesterID: 7,
				EventID:     3,
				Status:      domain.RequestConfirmed,
				Created:     created,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT participant_limit FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs(int64(3)).
					WillReturnRows(sqlmock.NewRows([]string{"participant_limit"}).AddRow(2))
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM requests WHERE event_id = \$1 AND status = 'CONFIRMED'`).
					WithArgs(int64(3)).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrConflict,
		},
		{
			name: "missing event",
			request: &domain.Request{
				RequesterID: 7,
				EventID:     999,
				Status:      domain.RequestPending,
				Created:     created,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT participant_limit FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs(int64(999)).
					WillReturnError(sql.ErrNoRows)
				mock.ExpectRollback()
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewRequestRepository(db)
			err = repo.Create(ctx, tt.request)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.request.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRequestRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, requester_id, event_id, status, created_on`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "requester_id", "event_id", "status", "created_on"}).
			AddRow(int64(42), int64(7), int64(3), "PENDING", created))

	repo := NewRequestRepository(db)
	req, err := repo.GetByID(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, &domain.Request{
		ID:          42,
		RequesterID: 7,
		EventID:     3,
		Status:      domain.RequestPending,
		Created:     created,
	}, req)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_GetByID_notFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, requester_id, event_id, status, created_on`).
		WithArgs(int64(999)).
		WillReturnError(sql.ErrNoRows)

	repo := NewRequestRepository(db)
	_, err = repo.GetByID(context.Background(), 999)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRequestRepository_ExistsActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(7), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewRequestRepository(db)
	exists, err := repo.ExistsActive(context.Background(), 7, 3)
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE requests SET status = \$1 WHERE id = \$2`).
		WithArgs("CANCELED", int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE requests SET status = \$1 WHERE id = \$2`).
		WithArgs("CANCELED", int64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewRequestRepository(db)
	require.NoError(t, repo.UpdateStatus(context.Background(), 42, domain.RequestCanceled))
	err = repo.UpdateStatus(context.Background(), 999, domain.RequestCanceled)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_ApplyStatusChanges(t *testing.T) {
	ctx := context.Background()
	changes := []domain.RequestStatusChange{
		{RequestID: 1, Status: domain.RequestConfirmed},
		{RequestID: 2, Status: domain.RequestRejected},
	}

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM events WHERE id = \$1 FOR UPDATE`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
		mock.ExpectExec(`UPDATE requests SET status = \$1 WHERE id = \$2`).
			WithArgs("CONFIRMED", int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE requests SET status = \$1 WHERE id = \$2`).
			WithArgs("REJECTED", int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewRequestRepository(db)
		require.NoError(t, repo.ApplyStatusChanges(ctx, 3, changes))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing request rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM events WHERE id = \$1 FOR UPDATE`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
		mock.ExpectExec(`UPDATE requests SET status = \$1 WHERE id = \$2`).
			WithArgs("CONFIRMED", int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		repo := NewRequestRepository(db)
		err = repo.ApplyStatusChanges(ctx, 3, changes)
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRequestRepository(db)
		require.NoError(t, repo.ApplyStatusChanges(ctx, 3, nil))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRequestRepository_ConfirmedCounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT event_id, COUNT\(\*\)`).
		WithArgs(pq.Array([]int64{3, 4})).
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "count"}).
			AddRow(int64(3), 2))

	repo := NewRequestRepository(db)
	counts, err := repo.ConfirmedCounts(context.Background(), []int64{3, 4})
	require.NoError(t, err)
	require.Equal(t, map[int64]int{3: 2}, counts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_ListByEvent(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, requester_id, event_id, status, created_on`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "requester_id", "event_id", "status", "created_on"}).
			AddRow(int64(1), int64(7), int64(3), "PENDING", created).
			AddRow(int64(2), int64(8), int64(3), "CONFIRMED", created))

	repo := NewRequestRepository(db)
	requests, err := repo.ListByEvent(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	require.Equal(t, domain.RequestConfirmed, requests[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
