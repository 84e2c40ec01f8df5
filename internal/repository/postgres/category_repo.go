package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventboard/internal/domain"
)

type categoryRepository struct {
	DB *sql.DB
}

func NewCategoryRepository(db *sql.DB) domain.CategoryRepository {
	return &categoryRepository{
		DB: db,
	}
}

func (r *categoryRepository) Create(ctx context.Context, cat *domain.Category) error {
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id`,
		cat.Name,
	).Scan(&cat.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: category name already exists", domain.ErrConflict)
	}
	return err
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	cat := &domain.Category{}
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name FROM categories WHERE id = $1`, id,
	).Scan(&cat.ID, &cat.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return cat, nil
}

func (r *categoryRepository) Update(ctx context.Context, cat *domain.Category) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE categories SET name = $1 WHERE id = $2`,
		cat.Name, cat.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: category name already exists", domain.ErrConflict)
	}
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

func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
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

func (r *categoryRepository) List(ctx context.Context, page domain.Pagination) ([]*domain.Category, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name FROM categories ORDER BY id ASC LIMIT $1 OFFSET $2`,
		page.Limit(), page.Offset(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cats := make([]*domain.Category, 0)
	for rows.Next() {
		cat := &domain.Category{}
		if err := rows.Scan(&cat.ID, &cat.Name); err != nil {
			return nil, err
		}
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}

// isUniqueViolation reports whether err is a postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
