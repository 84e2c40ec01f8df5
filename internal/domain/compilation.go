package domain

import "context"

// Compilation is a curated, optionally pinned selection of events.
// swagger:model Compilation
type Compilation struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Pinned bool   `json:"pinned"`
	// EventIDs are the linked events in insertion order.
	EventIDs []int64 `json:"-"`
}

// CompilationDetails is a compilation with its events enriched for responses.
// swagger:model CompilationDetails
type CompilationDetails struct {
	ID     int64           `json:"id"`
	Title  string          `json:"title"`
	Pinned bool            `json:"pinned"`
	Events []*EventDetails `json:"events"`
}

// CompilationUpdate carries a partial compilation update; nil fields are left
// unchanged.
type CompilationUpdate struct {
	Title    *string
	Pinned   *bool
	EventIDs []int64
}

// CompilationRepository defines storage operations for compilations.
type CompilationRepository interface {
	Create(ctx context.Context, comp *Compilation) error
	GetByID(ctx context.Context, id int64) (*Compilation, error)
	// Update rewrites the compilation row and, when eventIDs is non-nil,
	// replaces the event links.
	Update(ctx context.Context, comp *Compilation, replaceEvents bool) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, pinned *bool, page Pagination) ([]*Compilation, error)
}

// CompilationService owns compilation administration and public reads.
type CompilationService interface {
	CreateCompilation(ctx context.Context, title string, pinned bool, eventIDs []int64) (*CompilationDetails, error)
	UpdateCompilation(ctx context.Context, id int64, upd CompilationUpdate) (*CompilationDetails, error)
	DeleteCompilation(ctx context.Context, id int64) error
	GetCompilation(ctx context.Context, id int64) (*CompilationDetails, error)
	GetCompilations(ctx context.Context, pinned *bool, page Pagination) ([]*CompilationDetails, error)
}
