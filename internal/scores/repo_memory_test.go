package scores

import (
	"context"
	"errors"
	"testing"
	"time"

	"resume-ats/internal/ats"
)

func seedMemoryRepo(t *testing.T, repo *MemoryRepo, userID string, scores ...int) {
	t.Helper()
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, score := range scores {
		rec := Record{
			ID:        userID + "-" + string(rune('a'+i)),
			UserID:    userID,
			JobName:   "job",
			Score:     score,
			Report:    ats.Report{Score: score},
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := repo.Create(context.Background(), rec); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
}

func TestMemoryRepoListNewestFirstWithoutReports(t *testing.T) {
	repo := NewMemoryRepo()
	seedMemoryRepo(t, repo, "user-1", 50, 60, 70)
	seedMemoryRepo(t, repo, "user-2", 10)

	records, err := repo.ListByUser(context.Background(), "user-1", 0, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Score != 70 || records[2].Score != 50 {
		t.Fatalf("expected newest first, got %+v", records)
	}
	for _, rec := range records {
		if rec.Report.Score != 0 {
			t.Fatalf("expected listed records without report, got %+v", rec.Report)
		}
	}

	stored, err := repo.GetByID(context.Background(), "user-1", records[0].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Report.Score != 70 {
		t.Fatalf("listing must not clear stored reports, got %+v", stored.Report)
	}
}

func TestMemoryRepoListPaging(t *testing.T) {
	repo := NewMemoryRepo()
	seedMemoryRepo(t, repo, "user-1", 10, 20, 30, 40)

	records, err := repo.ListByUser(context.Background(), "user-1", 2, 1)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(records) != 2 || records[0].Score != 30 || records[1].Score != 20 {
		t.Fatalf("unexpected page: %+v", records)
	}

	records, err = repo.ListByUser(context.Background(), "user-1", 10, 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty page, got %+v", records)
	}
}

func TestMemoryRepoTiesKeepInsertOrder(t *testing.T) {
	repo := NewMemoryRepo()
	at := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"first", "second"} {
		if err := repo.Create(context.Background(), Record{ID: id, UserID: "u", CreatedAt: at}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	records, err := repo.ListByUser(context.Background(), "u", 0, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if records[0].ID != "second" {
		t.Fatalf("expected later insert first, got %s", records[0].ID)
	}
}

func TestMemoryRepoGetByIDOwnership(t *testing.T) {
	repo := NewMemoryRepo()
	seedMemoryRepo(t, repo, "user-1", 50)

	if _, err := repo.GetByID(context.Background(), "user-2", "user-1-a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByID(context.Background(), "user-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepoStats(t *testing.T) {
	repo := NewMemoryRepo()
	seedMemoryRepo(t, repo, "user-1", 80, 40, 60)

	st, err := repo.Stats(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := Stats{Attempts: 3, BestScore: 80, AverageScore: 60, LatestScore: 60}
	if st != want {
		t.Fatalf("expected %+v, got %+v", want, st)
	}
}

func TestMemoryRepoHonorsCancelledContext(t *testing.T) {
	repo := NewMemoryRepo()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := repo.Create(ctx, Record{ID: "x", UserID: "u"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
