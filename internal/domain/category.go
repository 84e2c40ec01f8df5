package domain

import "context"

// Category groups events by topic.
// swagger:model Category
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryRepository defines storage operations for categories.
type CategoryRepository interface {
	// Create inserts the category; a duplicate name returns ErrConflict.
	Create(ctx context.Context, cat *Category) error
	GetByID(ctx context.Context, id int64) (*Category, error)
	Update(ctx context.Context, cat *Category) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page Pagination) ([]*Category, error)
}

// CategoryService owns category administration and public listing.
type CategoryService interface {
	CreateCategory(ctx context.Context, name string) (*Category, error)
	UpdateCategory(ctx context.Context, id int64, name string) (*Category, error)
	// DeleteCategory fails with ErrConflict while events reference the category.
	DeleteCategory(ctx context.Context, id int64) error
	GetCategory(ctx context.Context, id int64) (*Category, error)
	GetCategories(ctx context.Context, page Pagination) ([]*Category, error)
}
