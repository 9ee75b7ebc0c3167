package scores

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"resume-ats/internal/ats"
	"resume-ats/internal/scores/cache"
	"resume-ats/internal/shared/util"
)

const (
	testJD     = "We need a Backend engineer with 3+ years experience in Python and PostgreSQL. Python is required."
	testResume = "Senior Python developer, 5 years experience with Python, built services using PostgreSQL, improved throughput by 40%."
)

func testClock() time.Time {
	return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
}

func newTestService(repo Repo, c cache.Cache) *Service {
	svc := NewService(ats.New(ats.WithClock(testClock)), repo, c, 2)
	var mu sync.Mutex
	n := 0
	svc.now = testClock
	svc.newID = func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
	}
	return svc
}

type countingCache struct {
	mu      sync.Mutex
	data    map[string]ats.Report
	gets    int
	sets    int
	failGet bool
	failSet bool
}

func newCountingCache() *countingCache {
	return &countingCache{data: map[string]ats.Report{}}
}

func (c *countingCache) Get(_ context.Context, key string) (ats.Report, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.failGet {
		return ats.Report{}, false, errors.New("cache down")
	}
	r, ok := c.data[key]
	return r, ok, nil
}

func (c *countingCache) Set(_ context.Context, key string, report ats.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if c.failSet {
		return errors.New("cache down")
	}
	c.data[key] = report
	return nil
}

type failingRepo struct {
	*MemoryRepo
}

func (failingRepo) Create(context.Context, Record) error {
	return errors.New("connection refused")
}

func TestServiceScoreStoresRecord(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo, nil)

	rec, err := svc.Score(context.Background(), "user-1", "  Backend Engineer ", testResume, testJD)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if rec.Score != 94 || rec.Report.Score != 94 {
		t.Fatalf("expected score 94, got %d / %d", rec.Score, rec.Report.Score)
	}
	if rec.JobName != "Backend Engineer" {
		t.Fatalf("expected trimmed job name, got %q", rec.JobName)
	}
	if !rec.CreatedAt.Equal(testClock()) {
		t.Fatalf("unexpected createdAt %s", rec.CreatedAt)
	}

	stored, err := repo.GetByID(context.Background(), "user-1", rec.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Report.Breakdown["databases"] != 80 {
		t.Fatalf("expected stored report, got %+v", stored.Report)
	}
}

func TestServiceScoreDefaultsJobName(t *testing.T) {
	svc := newTestService(NewMemoryRepo(), nil)

	rec, err := svc.Score(context.Background(), "guest:abc", "", testResume, testJD)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if rec.JobName != DefaultJobName {
		t.Fatalf("expected %q, got %q", DefaultJobName, rec.JobName)
	}
}

func TestServiceScoreValidation(t *testing.T) {
	svc := newTestService(NewMemoryRepo(), nil)

	tests := []struct {
		name   string
		user   string
		resume string
		jd     string
	}{
		{name: "missing user", user: "", resume: testResume, jd: testJD},
		{name: "blank resume", user: "user-1", resume: "  \n", jd: testJD},
		{name: "blank job description", user: "user-1", resume: testResume, jd: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Score(context.Background(), tt.user, "", tt.resume, tt.jd)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestServiceScoreUsesCache(t *testing.T) {
	c := newCountingCache()
	svc := newTestService(NewMemoryRepo(), c)

	first, err := svc.Score(context.Background(), "user-1", "a", testResume, testJD)
	if err != nil {
		t.Fatalf("first Score: %v", err)
	}
	second, err := svc.Score(context.Background(), "user-1", "b", testResume, testJD)
	if err != nil {
		t.Fatalf("second Score: %v", err)
	}

	if c.gets != 2 || c.sets != 1 {
		t.Fatalf("expected 2 gets and 1 set, got %d gets and %d sets", c.gets, c.sets)
	}
	if first.ID == second.ID {
		t.Fatalf("expected a new history record per score")
	}
	if second.Score != first.Score {
		t.Fatalf("expected cached score %d, got %d", first.Score, second.Score)
	}
}

func TestServiceScoreIgnoresCacheErrors(t *testing.T) {
	c := newCountingCache()
	c.failGet = true
	c.failSet = true
	svc := newTestService(NewMemoryRepo(), c)

	rec, err := svc.Score(context.Background(), "user-1", "", testResume, testJD)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if rec.Score != 94 {
		t.Fatalf("expected engine score 94, got %d", rec.Score)
	}
}

func TestServiceScoreWithRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	svc := newTestService(NewMemoryRepo(), cache.NewRedisCache(client, time.Hour))

	if _, err := svc.Score(context.Background(), "user-1", "", testResume, testJD); err != nil {
		t.Fatalf("Score: %v", err)
	}

	key := cache.DefaultPrefix + "t1:y2026:" + util.ReportKey(testResume, testJD)
	if !mr.Exists(key) {
		t.Fatalf("expected report cached under %s", key)
	}
	if ttl := mr.TTL(key); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %s", ttl)
	}

	rec, err := svc.Score(context.Background(), "user-2", "", testResume, testJD)
	if err != nil {
		t.Fatalf("cached Score: %v", err)
	}
	if rec.Report.Breakdown["programmingLanguages"] != 100 {
		t.Fatalf("expected cached breakdown, got %+v", rec.Report.Breakdown)
	}
}

func TestServiceCacheKeyTracksTaxonomyAndYear(t *testing.T) {
	c := newCountingCache()
	svc := newTestService(NewMemoryRepo(), c)

	if _, err := svc.Score(context.Background(), "user-1", "", testResume, testJD); err != nil {
		t.Fatalf("Score: %v", err)
	}
	base := svc.cacheKey(testResume, testJD)
	if _, ok := c.data[base]; !ok {
		t.Fatalf("expected report cached under %s", base)
	}

	svc.now = func() time.Time { return testClock().AddDate(1, 0, 0) }
	if svc.cacheKey(testResume, testJD) == base {
		t.Fatalf("expected a new key after the year rolls over")
	}

	tax, err := ats.ParseTaxonomy([]byte(`
version: 2
categories:
  - name: langs
    skills:
      - {name: python, variants: [python]}
roles:
  - name: default
    weights:
      - {category: langs, weight: 1}
`))
	if err != nil {
		t.Fatalf("ParseTaxonomy: %v", err)
	}
	other := newTestService(NewMemoryRepo(), c)
	other.Engine = ats.New(ats.WithTaxonomy(tax), ats.WithClock(testClock))
	if other.cacheKey(testResume, testJD) == base {
		t.Fatalf("expected taxonomy version to change the key")
	}

	gets, sets := c.gets, c.sets
	if _, err := other.Score(context.Background(), "user-1", "", testResume, testJD); err != nil {
		t.Fatalf("Score: %v", err)
	}
	if c.gets != gets+1 || c.sets != sets+1 {
		t.Fatalf("expected a cache miss and write for the new taxonomy")
	}
}

func TestServiceScoreStorageFailure(t *testing.T) {
	svc := newTestService(failingRepo{NewMemoryRepo()}, nil)

	_, err := svc.Score(context.Background(), "user-1", "", testResume, testJD)
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestServiceScoreBatchPreservesOrder(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo, nil)

	jobs := []BatchJob{
		{JobName: "Backend", JobDescription: testJD},
		{JobName: "Frontend", JobDescription: "Frontend developer. React is required."},
		{JobName: "", JobDescription: "Accountant wanted"},
	}
	results, err := svc.ScoreBatch(context.Background(), "user-1", testResume, jobs)
	if err != nil {
		t.Fatalf("ScoreBatch: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].JobName != "Backend" || results[1].JobName != "Frontend" || results[2].JobName != DefaultJobName {
		t.Fatalf("unexpected order: %+v", results)
	}
	if results[0].Record.Score != 94 {
		t.Fatalf("expected backend score 94, got %d", results[0].Record.Score)
	}
	if results[1].Record.Report.JobAnalysis.RoleType != "frontend" {
		t.Fatalf("expected frontend analysis, got %s", results[1].Record.Report.JobAnalysis.RoleType)
	}

	st, err := repo.Stats(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Attempts != 3 {
		t.Fatalf("expected 3 stored records, got %d", st.Attempts)
	}
}

func TestServiceScoreBatchValidation(t *testing.T) {
	svc := newTestService(NewMemoryRepo(), nil)

	tooMany := make([]BatchJob, MaxBatchJobs+1)
	for i := range tooMany {
		tooMany[i] = BatchJob{JobDescription: testJD}
	}

	tests := []struct {
		name string
		jobs []BatchJob
	}{
		{name: "no jobs", jobs: nil},
		{name: "too many jobs", jobs: tooMany},
		{name: "blank job description", jobs: []BatchJob{{JobName: "x", JobDescription: " "}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ScoreBatch(context.Background(), "user-1", testResume, tt.jobs)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestServiceGetRejectsMalformedID(t *testing.T) {
	svc := newTestService(NewMemoryRepo(), nil)

	if _, err := svc.Get(context.Background(), "user-1", "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceGetChecksOwner(t *testing.T) {
	svc := newTestService(NewMemoryRepo(), nil)

	rec, err := svc.Score(context.Background(), "user-1", "", testResume, testJD)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if _, err := svc.Get(context.Background(), "user-2", rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user, got %v", err)
	}
	got, err := svc.Get(context.Background(), "user-1", rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Score != rec.Score {
		t.Fatalf("expected score %d, got %d", rec.Score, got.Score)
	}
}

func TestServiceProgressRoundsAverage(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	base := testClock()
	for i, score := range []int{70, 71, 71} {
		rec := Record{ID: fmt.Sprintf("r%d", i), UserID: "user-1", Score: score, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.Create(ctx, rec); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	p, err := svc.Progress(ctx, "user-1")
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	want := Progress{Attempts: 3, LatestScore: 71, BestScore: 71, AverageScore: 70.67}
	if p != want {
		t.Fatalf("expected %+v, got %+v", want, p)
	}

	empty, err := svc.Progress(ctx, "nobody")
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if empty != (Progress{}) {
		t.Fatalf("expected zero progress, got %+v", empty)
	}
}
