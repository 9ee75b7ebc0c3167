package scores

import (
	"context"
	"sort"
	"sync"

	"resume-ats/internal/ats"
)

// MemoryRepo stores score history in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Record
	byUser map[string][]Record
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Record),
		byUser: make(map[string][]Record),
	}
}

// Create stores the record.
func (r *MemoryRepo) Create(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[rec.ID] = rec
	r.byUser[rec.UserID] = append(r.byUser[rec.UserID], rec)
	return nil
}

// GetByID returns a record owned by userID.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id]
	if !ok || rec.UserID != userID {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// ListByUser returns records for a user, newest first, without reports.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit, offset = page(limit, offset)

	r.mu.RLock()
	records := append([]Record(nil), r.byUser[userID]...)
	r.mu.RUnlock()

	if len(records) == 0 || offset >= len(records) {
		return []Record{}, nil
	}

	sortNewestFirst(records)

	end := len(records)
	if offset+limit < end {
		end = offset + limit
	}
	out := records[offset:end]
	for i := range out {
		out[i].Report = ats.Report{}
	}
	return out, nil
}

// Stats summarizes a user's history.
func (r *MemoryRepo) Stats(ctx context.Context, userID string) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	r.mu.RLock()
	records := append([]Record(nil), r.byUser[userID]...)
	r.mu.RUnlock()

	if len(records) == 0 {
		return Stats{}, nil
	}
	sortNewestFirst(records)

	st := Stats{Attempts: len(records), LatestScore: records[0].Score}
	total := 0
	for _, rec := range records {
		total += rec.Score
		if rec.Score > st.BestScore {
			st.BestScore = rec.Score
		}
	}
	st.AverageScore = float64(total) / float64(len(records))
	return st, nil
}

// sortNewestFirst orders by CreatedAt descending; ties put the later insert first.
func sortNewestFirst(records []Record) {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}

var _ Repo = (*MemoryRepo)(nil)
