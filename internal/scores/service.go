package scores

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"resume-ats/internal/ats"
	"resume-ats/internal/scores/cache"
	"resume-ats/internal/shared/metrics"
	"resume-ats/internal/shared/telemetry"
	"resume-ats/internal/shared/util"
)

const (
	// MaxBatchJobs bounds how many job descriptions one batch may score.
	MaxBatchJobs = 20
	// DefaultJobName labels a score stored without a job name.
	DefaultJobName = "Untitled job"

	defaultConcurrency = 4
)

// Service scores resumes and keeps each caller's history.
type Service struct {
	Engine      *ats.Engine
	Repo        Repo
	Cache       cache.Cache
	Concurrency int

	now   func() time.Time
	newID func() string
}

// NewService constructs a Service. c may be nil to disable report caching.
func NewService(engine *ats.Engine, repo Repo, c cache.Cache, concurrency int) *Service {
	if engine == nil {
		engine = ats.New()
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Service{
		Engine:      engine,
		Repo:        repo,
		Cache:       c,
		Concurrency: concurrency,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Score scores resume against jobDescription and stores the result for userID.
func (s *Service) Score(ctx context.Context, userID, jobName, resume, jobDescription string) (Record, error) {
	if strings.TrimSpace(userID) == "" {
		return Record{}, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if strings.TrimSpace(resume) == "" {
		return Record{}, fmt.Errorf("%w: resumeText is required", ErrValidation)
	}
	if strings.TrimSpace(jobDescription) == "" {
		return Record{}, fmt.Errorf("%w: jobDescription is required", ErrValidation)
	}
	jobName = strings.TrimSpace(jobName)
	if jobName == "" {
		jobName = DefaultJobName
	}

	start := s.clock()()
	metrics.IncScoreStarted()

	report, source, err := s.report(ctx, resume, jobDescription)
	if err != nil {
		metrics.IncScoreFailed("schema")
		return Record{}, err
	}

	rec := Record{
		ID:        s.id(),
		UserID:    userID,
		JobName:   jobName,
		Score:     report.Score,
		Report:    report,
		CreatedAt: s.clock()().UTC(),
	}
	if err := s.Repo.Create(ctx, rec); err != nil {
		metrics.IncScoreFailed("storage")
		telemetry.Error("score.persist.failed", map[string]any{
			"user_id": userID,
			"error":   err,
		})
		return Record{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	elapsed := s.clock()().Sub(start)
	metrics.IncScoreCompleted(source)
	metrics.ObserveScoreDuration(elapsed)
	metrics.ObserveScore(rec.Score)
	telemetry.Info("score.complete", map[string]any{
		"score_id":    rec.ID,
		"user_id":     userID,
		"score":       rec.Score,
		"source":      source,
		"duration_ms": elapsed.Milliseconds(),
	})
	return rec, nil
}

// report returns the cached report for the inputs or runs the engine.
func (s *Service) report(ctx context.Context, resume, jobDescription string) (ats.Report, string, error) {
	key := s.cacheKey(resume, jobDescription)
	if s.Cache != nil {
		cached, ok, err := s.Cache.Get(ctx, key)
		switch {
		case err != nil:
			metrics.IncCacheError()
			telemetry.Warn("score.cache.get_failed", map[string]any{"error": err})
		case ok:
			metrics.IncCacheHit()
			return cached, metrics.SourceCache, nil
		default:
			metrics.IncCacheMiss()
		}
	}

	report := s.Engine.Score(resume, jobDescription)
	if err := ats.ValidateReport(report); err != nil {
		telemetry.Error("score.report.invalid", map[string]any{"error": err})
		return ats.Report{}, "", err
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, key, report); err != nil {
			metrics.IncCacheError()
			telemetry.Warn("score.cache.set_failed", map[string]any{"error": err})
		}
	}
	return report, metrics.SourceEngine, nil
}

// cacheKey scopes the input hash by taxonomy version and calendar year, since
// either one changes the report for the same texts.
func (s *Service) cacheKey(resume, jobDescription string) string {
	return fmt.Sprintf("t%d:y%d:%s", s.Engine.Taxonomy().Version, s.clock()().Year(), util.ReportKey(resume, jobDescription))
}

// ScoreBatch scores one resume against several job descriptions concurrently.
// Results keep the order of jobs; the first failure cancels the rest.
func (s *Service) ScoreBatch(ctx context.Context, userID, resume string, jobs []BatchJob) ([]BatchResult, error) {
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%w: jobs is required", ErrValidation)
	}
	if len(jobs) > MaxBatchJobs {
		return nil, fmt.Errorf("%w: at most %d jobs per batch", ErrValidation, MaxBatchJobs)
	}
	if strings.TrimSpace(resume) == "" {
		return nil, fmt.Errorf("%w: resumeText is required", ErrValidation)
	}
	for i, job := range jobs {
		if strings.TrimSpace(job.JobDescription) == "" {
			return nil, fmt.Errorf("%w: jobs[%d].jobDescription is required", ErrValidation, i)
		}
	}

	results := make([]BatchResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())
	for i, job := range jobs {
		g.Go(func() error {
			rec, err := s.Score(gctx, userID, job.JobName, resume, job.JobDescription)
			if err != nil {
				return err
			}
			results[i] = BatchResult{JobName: rec.JobName, Record: rec}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Get returns one of userID's records with its full report.
func (s *Service) Get(ctx context.Context, userID, id string) (Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Record{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID, id)
}

// List returns userID's history newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Record, error) {
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Progress summarizes userID's history.
func (s *Service) Progress(ctx context.Context, userID string) (Progress, error) {
	st, err := s.Repo.Stats(ctx, userID)
	if err != nil {
		return Progress{}, err
	}
	return Progress{
		Attempts:     st.Attempts,
		LatestScore:  st.LatestScore,
		BestScore:    st.BestScore,
		AverageScore: math.Round(st.AverageScore*100) / 100,
	}, nil
}

func (s *Service) clock() func() time.Time {
	if s.now == nil {
		return time.Now
	}
	return s.now
}

func (s *Service) id() string {
	if s.newID == nil {
		return uuid.NewString()
	}
	return s.newID()
}

func (s *Service) concurrency() int {
	if s.Concurrency <= 0 {
		return defaultConcurrency
	}
	return s.Concurrency
}
