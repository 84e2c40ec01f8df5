package domain

import "context"

// User is an account that can initiate events and request participation.
// swagger:model User
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	// Auth columns, never serialized.
	PasswordHash string `json:"-"`
	Salt         string `json:"-"`
	Admin        bool   `json:"-"`
}

// UserRepository defines storage operations for users.
type UserRepository interface {
	// Create inserts the user; a duplicate email returns ErrDuplicateEmail.
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	// List returns users with the given ids, or a page of all users when ids
	// is empty.
	List(ctx context.Context, ids []int64, page Pagination) ([]*User, error)
	Delete(ctx context.Context, id int64) error
}

// UserService owns user administration.
type UserService interface {
	CreateUser(ctx context.Context, name, email string) (*User, error)
	GetUsers(ctx context.Context, ids []int64, page Pagination) ([]*User, error)
	DeleteUser(ctx context.Context, id int64) error
}
