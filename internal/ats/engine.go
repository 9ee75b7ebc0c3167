// Package ats scores resume text against a job description the way an
// applicant tracking system would: skills weighted by how the posting
// emphasizes them, evidence for each skill in the resume, years of
// experience and education level, blended into a 0-100 score with
// suggestions for closing the gaps.
//
// An Engine holds only immutable configuration and is safe for concurrent use.
package ats

import (
	"fmt"
	"runtime/debug"
	"time"
	"unicode/utf8"

	"resume-ats/internal/shared/telemetry"
)

// DefaultMaxInputBytes bounds how much of each document is scanned.
const DefaultMaxInputBytes = 200 * 1024

// Engine runs the scoring pipeline.
type Engine struct {
	tax      *Taxonomy
	maxInput int
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithTaxonomy replaces the embedded taxonomy.
func WithTaxonomy(t *Taxonomy) Option {
	return func(e *Engine) {
		if t != nil {
			e.tax = t
		}
	}
}

// WithMaxInputBytes caps each input; n <= 0 disables the cap.
func WithMaxInputBytes(n int) Option {
	return func(e *Engine) { e.maxInput = n }
}

// WithClock sets the clock used to resolve "present" in date ranges.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New builds an Engine. It panics only if the embedded taxonomy is broken.
func New(opts ...Option) *Engine {
	e := &Engine{maxInput: DefaultMaxInputBytes, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.tax == nil {
		e.tax = MustDefaultTaxonomy()
	}
	return e
}

// Taxonomy returns the taxonomy the engine scores against.
func (e *Engine) Taxonomy() *Taxonomy {
	return e.tax
}

// Score runs the whole pipeline. It never fails: an internal fault yields a
// zeroed report with a single error suggestion.
func (e *Engine) Score(resume, jobDescription string) (report Report) {
	defer func() {
		if rec := recover(); rec != nil {
			telemetry.Error("ats.score.panic", map[string]any{
				"error": fmt.Sprint(rec),
				"stack": string(debug.Stack()),
			})
			report = degradedReport()
		}
	}()

	kw := e.ExtractJobKeywords(jobDescription)
	res := e.AnalyzeResume(resume, kw)
	return Report{
		Score:           res.OverallScore,
		Breakdown:       res.SkillScores,
		Matched:         res.MatchedSkills,
		Suggestions:     res.Suggestions,
		ExperienceScore: res.ExperienceScore,
		EducationScore:  res.EducationScore,
		JobAnalysis:     &kw,
	}
}

// clip truncates s to the input cap without splitting a UTF-8 sequence.
func (e *Engine) clip(s string) string {
	if e.maxInput <= 0 || len(s) <= e.maxInput {
		return s
	}
	n := e.maxInput
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
