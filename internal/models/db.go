package models

import (
	"strings"
	"time"
)

type DismissReason string

const (
	ReasonTitleMatch   DismissReason = "TITLE"
	ReasonCompanyMatch DismissReason = "COMPANY"
)

// JobListing is one job card as returned by a search page.
type JobListing struct {
	JobID      string `json:"job_id"`
	Title      string `json:"title"`
	Company    string `json:"company"`
	CompanyURL string `json:"company_url,omitempty"`
	Location   string `json:"location"`
	DismissURN string `json:"dismiss_urn,omitempty"` // optional, synthesized when empty
}

// Valid reports whether the listing carries the fields the processor needs.
func (j JobListing) Valid() bool {
	return strings.TrimSpace(j.JobID) != ""
}

type DismissedJob struct {
	JobID       string        `json:"job_id"`
	Title       string        `json:"title"`
	Company     string        `json:"company"`
	Location    string        `json:"location"`
	Reason      DismissReason `json:"reason"`
	DismissedAt time.Time     `json:"dismissed_at"`
}

// WellFormedDismissed drops nil entries and entries without a job id,
// keeping the relative order of the rest.
func WellFormedDismissed(records []*DismissedJob) []*DismissedJob {
	out := make([]*DismissedJob, 0, len(records))
	for _, r := range records {
		if r == nil || strings.TrimSpace(r.JobID) == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// StoredJob is a persisted job matched by title/company search.
type StoredJob struct {
	JobID   string `json:"job_id"`
	Title   string `json:"title"`
	Company string `json:"company"`
}

type GeoCandidate struct {
	ID            int64   `json:"pp_id"`
	Name          string  `json:"pp_name"`
	CorrectedName *string `json:"pp_corrected_name,omitempty"`
}
