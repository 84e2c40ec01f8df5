package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"eventboard/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{
		DB: db,
	}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO users (name, email, password_hash, salt, is_admin)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		u.Name, u.Email, u.PasswordHash, u.Salt, u.Admin,
	).Scan(&u.ID)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateEmail
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.get(ctx, `id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.get(ctx, `email = $1`, email)
}

func (r *userRepository) get(ctx context.Context, cond string, arg any) (*domain.User, error) {
	u := &domain.User{}
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, salt, is_admin FROM users WHERE `+cond,
		arg,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Salt, &u.Admin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id,
	).Scan(&exists)
	return exists, err
}

func (r *userRepository) List(ctx context.Context, ids []int64, page domain.Pagination) ([]*domain.User, error) {
	query := `SELECT id, name, email, password_hash, salt, is_admin FROM users`
	args := []any{}
	if len(ids) > 0 {
		query += ` WHERE id = ANY($1)`
		args = append(args, pq.Array(ids))
	}
	args = append(args, page.Limit(), page.Offset())
	if len(ids) > 0 {
		query += ` ORDER BY id ASC LIMIT $2 OFFSET $3`
	} else {
		query += ` ORDER BY id ASC LIMIT $1 OFFSET $2`
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]*domain.User, 0)
	for rows.Next() {
		u := &domain.User{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Salt, &u.Admin); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
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
