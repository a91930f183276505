package runner

import (
	"context"
	"time"

	"go-linkedin-sweeper/internal/models"
	"go-linkedin-sweeper/internal/processor"

	"golang.org/x/time/rate"
)

// PacedDismisser spaces out consecutive dismiss calls by at least the
// configured interval. One instance is shared by every page of a run.
type PacedDismisser struct {
	next    processor.Dismisser
	limiter *rate.Limiter
}

func NewPacedDismisser(next processor.Dismisser, interval time.Duration) *PacedDismisser {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &PacedDismisser{next: next, limiter: rate.NewLimiter(limit, 1)}
}

func (p *PacedDismisser) Dismiss(ctx context.Context, job models.JobListing, dismissURN string) (bool, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return false, err
	}
	return p.next.Dismiss(ctx, job, dismissURN)
}
