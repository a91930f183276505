// Package runner drives a sweep across search result pages.
package runner

import (
	"context"
	"fmt"
	"time"

	"go-linkedin-sweeper/internal/linkedin"
	"go-linkedin-sweeper/internal/metrics"
	"go-linkedin-sweeper/internal/models"
	"go-linkedin-sweeper/internal/processor"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type StopReason string

const (
	StopEmptyPage StopReason = "empty_page"
	StopMaxPages  StopReason = "max_pages"
	StopLimit     StopReason = "limit_reached"
	StopError     StopReason = "error"
)

type PageSource interface {
	SearchJobs(ctx context.Context, q linkedin.SearchQuery, start int) ([]models.JobListing, error)
}

type PageProcessor interface {
	Process(ctx context.Context, jobs []models.JobListing) (processor.Stats, []models.JobListing, error)
}

type Options struct {
	Query     linkedin.SearchQuery
	PageSize  int
	MaxPages  int // 0 = until an empty page
	LimitJobs int // 0 = unlimited
	PageDelay time.Duration
}

type Summary struct {
	RunID      string              `json:"run_id"`
	Stats      processor.Stats     `json:"stats"`
	Pages      int                 `json:"pages"`
	Dismissed  []models.JobListing `json:"dismissed"`
	StopReason StopReason          `json:"stop_reason"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
}

func (s Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

type Runner struct {
	source  PageSource
	proc    PageProcessor
	metrics *metrics.Metrics
	log     *zap.Logger
	sleep   func(ctx context.Context, d time.Duration) error
	now     func() time.Time
}

func New(source PageSource, proc PageProcessor, m *metrics.Metrics, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		source:  source,
		proc:    proc,
		metrics: m,
		log:     log,
		sleep:   sleepCtx,
		now:     time.Now,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run fetches and processes pages until a stop condition. On error the
// summary covers the pages completed so far.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	if opts.PageSize <= 0 {
		opts.PageSize = 25
	}
	summary := Summary{RunID: uuid.NewString(), StartedAt: r.now()}
	log := r.log.With(zap.String("run_id", summary.RunID))
	log.Info("starting sweep",
		zap.String("keywords", opts.Query.Keywords),
		zap.String("location", opts.Query.Location),
		zap.Int("max_pages", opts.MaxPages),
		zap.Int("limit_jobs", opts.LimitJobs))

	finish := func(reason StopReason, err error) (Summary, error) {
		summary.StopReason = reason
		summary.FinishedAt = r.now()
		tuple := summary.Stats.Tuple()
		log.Info("sweep finished",
			zap.String("stop_reason", string(reason)),
			zap.Int("pages", summary.Pages),
			zap.Ints("stats", tuple[:]),
			zap.Duration("elapsed", summary.Duration()))
		return summary, err
	}

	for page := 0; ; page++ {
		if opts.MaxPages > 0 && page >= opts.MaxPages {
			return finish(StopMaxPages, nil)
		}
		if page > 0 {
			if err := r.sleep(ctx, opts.PageDelay); err != nil {
				return finish(StopError, err)
			}
		}

		start := page * opts.PageSize
		jobs, err := r.source.SearchJobs(ctx, opts.Query, start)
		if err != nil {
			return finish(StopError, fmt.Errorf("failed to fetch page %d: %w", page+1, err))
		}
		if len(jobs) == 0 {
			log.Info("no more jobs", zap.Int("page", page+1))
			return finish(StopEmptyPage, nil)
		}

		if opts.LimitJobs > 0 {
			remaining := opts.LimitJobs - summary.Stats.Processed
			if len(jobs) > remaining {
				jobs = jobs[:remaining]
			}
		}

		began := r.now()
		stats, dismissed, err := r.proc.Process(ctx, jobs)
		summary.Stats.Add(stats)
		summary.Dismissed = append(summary.Dismissed, dismissed...)
		summary.Pages++
		r.metrics.ObservePage(stats, r.now().Sub(began))

		if err != nil {
			return finish(StopError, fmt.Errorf("failed to process page %d: %w", page+1, err))
		}
		log.Info("page done",
			zap.Int("page", page+1),
			zap.Int("start", start),
			zap.Int("processed", stats.Processed),
			zap.Int("dismissed", stats.Dismissed),
			zap.Int("skipped", stats.Skipped),
			zap.Int("failed", stats.Failed))

		if opts.LimitJobs > 0 && summary.Stats.Processed >= opts.LimitJobs {
			return finish(StopLimit, nil)
		}
	}
}
