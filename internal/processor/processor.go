// Package processor turns one page of job listings into dismiss actions.
package processor

import (
	"context"
	"fmt"
	"time"

	"go-linkedin-sweeper/internal/filter"
	"go-linkedin-sweeper/internal/models"

	"go.uber.org/zap"
)

const dismissURNFormat = "urn:li:fsd_jobPostingRelevanceFeedback:urn:li:fsd_jobPosting:%s"

// DismissedStore is the part of the job store a page needs: one lookup and one write.
type DismissedStore interface {
	GetDismissedJobIDs(ctx context.Context, jobIDs []string) (map[string]struct{}, error)
	BatchSaveDismissedJobs(ctx context.Context, records []*models.DismissedJob) (int, error)
}

// Dismisser performs the remote dismiss call for a single job.
type Dismisser interface {
	Dismiss(ctx context.Context, job models.JobListing, dismissURN string) (bool, error)
}

// DismissURN returns the job's own URN or the fallback built from its id.
func DismissURN(job models.JobListing) string {
	if job.DismissURN != "" {
		return job.DismissURN
	}
	return fmt.Sprintf(dismissURNFormat, job.JobID)
}

type Processor struct {
	store     DismissedStore
	client    Dismisser
	blocklist *filter.Blocklist
	log       *zap.Logger
	now       func() time.Time
}

func New(store DismissedStore, client Dismisser, blocklist *filter.Blocklist, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		store:     store,
		client:    client,
		blocklist: blocklist,
		log:       log,
		now:       time.Now,
	}
}

// Process decides and applies the action for every job on the page, in order.
// A failed dismiss only affects its own job. The returned slice holds the
// jobs that were dismissed successfully.
func (p *Processor) Process(ctx context.Context, jobs []models.JobListing) (Stats, []models.JobListing, error) {
	var stats Stats
	if len(jobs) == 0 {
		return stats, nil, nil
	}

	valid := make([]models.JobListing, 0, len(jobs))
	ids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		if !job.Valid() {
			stats.Malformed++
			p.log.Debug("dropping malformed listing", zap.String("title", job.Title))
			continue
		}
		valid = append(valid, job)
		ids = append(ids, job.JobID)
	}
	if len(valid) == 0 {
		return stats, nil, nil
	}

	dismissedIDs, err := p.store.GetDismissedJobIDs(ctx, ids)
	if err != nil {
		return stats, nil, fmt.Errorf("failed to load dismissed job ids: %w", err)
	}

	var dismissed []models.JobListing
	var pending []*models.DismissedJob

	for _, job := range valid {
		stats.Processed++

		decision := p.blocklist.Decide(job, dismissedIDs)
		switch decision.Action {
		case filter.ActionSkip:
			stats.Skipped++
			continue
		case filter.ActionKeep:
			stats.Kept++
			continue
		}

		ok, err := p.client.Dismiss(ctx, job, DismissURN(job))
		if err != nil || !ok {
			stats.Failed++
			stats.Kept++
			p.log.Warn("dismiss failed",
				zap.String("job_id", job.JobID),
				zap.String("title", job.Title),
				zap.String("company", job.Company),
				zap.Error(err))
			continue
		}

		stats.Dismissed++
		if decision.Reason == filter.ReasonCompanyMatch {
			stats.DismissedByCompany++
		} else {
			stats.DismissedByTitle++
		}
		p.log.Info("dismissed job",
			zap.String("job_id", job.JobID),
			zap.String("title", job.Title),
			zap.String("company", job.Company),
			zap.String("reason", string(decision.Reason)),
			zap.String("match", decision.Match))

		dismissed = append(dismissed, job)
		pending = append(pending, &models.DismissedJob{
			JobID:       job.JobID,
			Title:       job.Title,
			Company:     job.Company,
			Location:    job.Location,
			Reason:      decision.DismissReason(),
			DismissedAt: p.now().UTC(),
		})
	}

	records := models.WellFormedDismissed(pending)
	if len(records) > 0 {
		saved, err := p.store.BatchSaveDismissedJobs(ctx, records)
		if err != nil {
			return stats, dismissed, fmt.Errorf("failed to save dismissed jobs: %w", err)
		}
		stats.Saved = saved
	}

	return stats, dismissed, nil
}
