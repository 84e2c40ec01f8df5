package domain

// Pagination holds offset-based paging parameters for list queries.
// From is the number of rows to skip; Size is the page size.
type Pagination struct {
	From int
	Size int
}

// Offset returns the row offset, never negative.
func (p Pagination) Offset() int {
	if p.From < 0 {
		return 0
	}
	return p.From
}

// Limit returns the page size, defaulting to 10 when unset.
func (p Pagination) Limit() int {
	if p.Size <= 0 {
		return 10
	}
	return p.Size
}
