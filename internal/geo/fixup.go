package geo

import (
	"context"
	"fmt"

	"go-linkedin-sweeper/internal/models"

	"go.uber.org/zap"
)

// CandidateStore is the geo_candidates surface of the job store.
type CandidateStore interface {
	GetAllGeoCandidates(ctx context.Context) ([]models.GeoCandidate, error)
	UpdateGeoCandidate(ctx context.Context, id int64, correctedName string) error
	DeleteGeoCandidate(ctx context.Context, id int64) error
}

type FixSummary struct {
	Checked      int `json:"checked"`
	Consistent   int `json:"consistent"`
	Updated      int `json:"updated"`
	Deleted      int `json:"deleted"`
	Skipped      int `json:"skipped"`
	UpdateFailed int `json:"update_failed"`
	DeleteFailed int `json:"delete_failed"`
}

// Changed reports whether the run touched any row.
func (s FixSummary) Changed() bool {
	return s.Updated+s.Deleted+s.UpdateFailed+s.DeleteFailed > 0
}

type pendingUpdate struct {
	id   int64
	name string
}

// FixLocations re-normalizes every geo candidate. Rows whose corrected name
// drifted are updated, rows that cannot be normalized are deleted. A failing
// row is logged and counted, it never stops the rest.
func FixLocations(ctx context.Context, store CandidateStore, log *zap.Logger) (FixSummary, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var summary FixSummary

	candidates, err := store.GetAllGeoCandidates(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to fetch geo candidates: %w", err)
	}
	if len(candidates) == 0 {
		log.Warn("no geo candidates found")
		return summary, nil
	}
	log.Info("checking geo candidates", zap.Int("count", len(candidates)))

	var updates []pendingUpdate
	var deletions []int64

	for _, c := range candidates {
		summary.Checked++
		if c.Name == "" {
			summary.Skipped++
			continue
		}

		normalized, ok := Normalize(c.Name)
		if !ok {
			log.Info("delete candidate: invalid or missing state id",
				zap.Int64("pp_id", c.ID), zap.String("pp_name", c.Name))
			deletions = append(deletions, c.ID)
			continue
		}

		current := ""
		if c.CorrectedName != nil {
			current = *c.CorrectedName
		}
		if normalized == current {
			summary.Consistent++
			continue
		}

		log.Info("update candidate",
			zap.Int64("pp_id", c.ID),
			zap.String("pp_name", c.Name),
			zap.String("normalized", normalized),
			zap.String("was", current))
		updates = append(updates, pendingUpdate{id: c.ID, name: normalized})
	}

	for _, up := range updates {
		if err := store.UpdateGeoCandidate(ctx, up.id, up.name); err != nil {
			log.Error("failed to update candidate", zap.Int64("pp_id", up.id), zap.Error(err))
			summary.UpdateFailed++
			continue
		}
		summary.Updated++
	}

	for _, id := range deletions {
		if err := store.DeleteGeoCandidate(ctx, id); err != nil {
			log.Error("failed to delete candidate", zap.Int64("pp_id", id), zap.Error(err))
			summary.DeleteFailed++
			continue
		}
		summary.Deleted++
	}

	log.Info("geo fix-up finished",
		zap.Int("consistent", summary.Consistent),
		zap.Int("updated", summary.Updated),
		zap.Int("deleted", summary.Deleted),
		zap.Int("skipped", summary.Skipped),
		zap.Int("update_failed", summary.UpdateFailed),
		zap.Int("delete_failed", summary.DeleteFailed))

	return summary, nil
}
