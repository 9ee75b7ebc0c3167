package scores

import "context"

// Repo defines persistence operations for score history.
type Repo interface {
	Create(ctx context.Context, rec Record) error
	GetByID(ctx context.Context, userID, id string) (Record, error)
	// ListByUser returns records newest first. Listed records carry no report.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Record, error)
	Stats(ctx context.Context, userID string) (Stats, error)
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// page clamps list paging to [1, maxPageSize] rows from a non-negative offset.
func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
