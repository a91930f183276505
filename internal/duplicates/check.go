// Package duplicates checks whether stored jobs with the same title and
// company are reposts of one posting.
package duplicates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-linkedin-sweeper/internal/models"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	ErrNoJobs         = errors.New("no jobs matched")
	ErrNoDescriptions = errors.New("no descriptions fetched")
)

const snippetLen = 50

type JobFinder interface {
	GetJobsMatching(ctx context.Context, titlePattern, companyPattern string) ([]models.StoredJob, error)
}

type DescriptionFetcher interface {
	FetchJobDescription(ctx context.Context, jobID string) (string, error)
}

type Comparison struct {
	JobID   string `json:"job_id"`
	Match   bool   `json:"match"`
	Length  int    `json:"length"`
	Snippet string `json:"snippet,omitempty"` // start of the description, set on mismatch
}

type Report struct {
	Jobs        []models.StoredJob `json:"jobs"`
	Missing     []string           `json:"missing"` // jobs whose description could not be fetched
	BaseJobID   string             `json:"base_job_id"`
	BaseLength  int                `json:"base_length"`
	BaseSnippet string             `json:"base_snippet"`
	Comparisons []Comparison       `json:"comparisons"`
}

// AllMatch reports whether every fetched description equals the base one.
func (r Report) AllMatch() bool {
	for _, c := range r.Comparisons {
		if !c.Match {
			return false
		}
	}
	return true
}

type Checker struct {
	finder  JobFinder
	fetcher DescriptionFetcher
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewChecker paces description fetches at one per interval.
func NewChecker(finder JobFinder, fetcher DescriptionFetcher, interval time.Duration, log *zap.Logger) *Checker {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Checker{finder: finder, fetcher: fetcher, limiter: rate.NewLimiter(limit, 1), log: log}
}

func snippet(s string) string {
	r := []rune(s)
	if len(r) > snippetLen {
		r = r[:snippetLen]
	}
	return string(r)
}

// Check compares the descriptions of every stored job matching title and
// company against the first description fetched.
func (c *Checker) Check(ctx context.Context, title, company string) (Report, error) {
	var report Report

	titlePattern := "%" + strings.TrimSpace(title) + "%"
	companyPattern := "%" + strings.TrimSpace(company) + "%"

	jobs, err := c.finder.GetJobsMatching(ctx, titlePattern, companyPattern)
	if err != nil {
		return report, fmt.Errorf("failed to search jobs: %w", err)
	}
	if len(jobs) == 0 {
		return report, fmt.Errorf("%w: title=%q company=%q", ErrNoJobs, title, company)
	}
	report.Jobs = jobs
	c.log.Info("found jobs", zap.Int("count", len(jobs)))

	type fetched struct {
		id   string
		desc string
	}
	var descriptions []fetched

	for _, job := range jobs {
		if err := c.limiter.Wait(ctx); err != nil {
			return report, err
		}
		c.log.Info("fetching description",
			zap.String("job_id", job.JobID),
			zap.String("title", job.Title),
			zap.String("company", job.Company))

		desc, err := c.fetcher.FetchJobDescription(ctx, job.JobID)
		if err != nil || desc == "" {
			c.log.Warn("could not fetch description", zap.String("job_id", job.JobID), zap.Error(err))
			report.Missing = append(report.Missing, job.JobID)
			continue
		}
		descriptions = append(descriptions, fetched{id: job.JobID, desc: desc})
	}

	if len(descriptions) == 0 {
		return report, ErrNoDescriptions
	}

	base := descriptions[0]
	baseTrimmed := strings.TrimSpace(base.desc)
	report.BaseJobID = base.id
	report.BaseLength = len(base.desc)
	report.BaseSnippet = snippet(base.desc)

	for _, d := range descriptions[1:] {
		cmp := Comparison{
			JobID:  d.id,
			Match:  strings.TrimSpace(d.desc) == baseTrimmed,
			Length: len(d.desc),
		}
		if !cmp.Match {
			cmp.Snippet = snippet(d.desc)
		}
		report.Comparisons = append(report.Comparisons, cmp)
	}
	return report, nil
}
