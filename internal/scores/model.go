package scores

import (
	"time"

	"resume-ats/internal/ats"
)

// Record is one stored scoring of a resume against a job description.
type Record struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	JobName   string     `json:"jobName"`
	Score     int        `json:"score"`
	Report    ats.Report `json:"report"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Stats aggregates a user's history.
type Stats struct {
	Attempts     int
	BestScore    int
	AverageScore float64
	LatestScore  int
}

// Progress is the caller-facing view of Stats.
type Progress struct {
	Attempts     int     `json:"attempts"`
	LatestScore  int     `json:"latestScore"`
	BestScore    int     `json:"bestScore"`
	AverageScore float64 `json:"averageScore"`
}

// BatchJob is one job description in a batch request.
type BatchJob struct {
	JobName        string `json:"jobName"`
	JobDescription string `json:"jobDescription"`
}

// BatchResult pairs a batch job with its stored record.
type BatchResult struct {
	JobName string `json:"jobName"`
	Record  Record `json:"-"`
}
