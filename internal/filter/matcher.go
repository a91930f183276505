package filter

import (
	"strings"

	"go-linkedin-sweeper/internal/models"
)

type Action int

const (
	ActionKeep Action = iota
	ActionSkip
	ActionDismiss
)

func (a Action) String() string {
	switch a {
	case ActionSkip:
		return "skip"
	case ActionDismiss:
		return "dismiss"
	default:
		return "keep"
	}
}

type Reason string

const (
	ReasonNone         Reason = ""
	ReasonAlreadySeen  Reason = "already_seen"
	ReasonTitleMatch   Reason = "title_match"
	ReasonCompanyMatch Reason = "company_match"
)

// Decision is the per-job verdict. Match holds the keyword or slug that fired.
type Decision struct {
	Action Action
	Reason Reason
	Match  string
}

// DismissReason maps a dismiss decision to its persisted reason.
func (d Decision) DismissReason() models.DismissReason {
	if d.Reason == ReasonCompanyMatch {
		return models.ReasonCompanyMatch
	}
	return models.ReasonTitleMatch
}

// Decide applies the rules in priority order: already dismissed, title keyword, company.
func (b *Blocklist) Decide(job models.JobListing, dismissed map[string]struct{}) Decision {
	if _, ok := dismissed[job.JobID]; ok {
		return Decision{Action: ActionSkip, Reason: ReasonAlreadySeen}
	}

	if kw, ok := b.matchTitle(job.Title); ok {
		return Decision{Action: ActionDismiss, Reason: ReasonTitleMatch, Match: kw}
	}

	if slug, ok := b.matchCompany(job); ok {
		return Decision{Action: ActionDismiss, Reason: ReasonCompanyMatch, Match: slug}
	}

	return Decision{Action: ActionKeep}
}

func (b *Blocklist) matchTitle(title string) (string, bool) {
	lower := strings.ToLower(title)
	for _, kw := range b.titles {
		if strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}

func (b *Blocklist) matchCompany(job models.JobListing) (string, bool) {
	if len(b.companySet) == 0 {
		return "", false
	}
	for _, raw := range []string{job.Company, job.CompanyURL} {
		slug := CompanySlug(raw)
		if slug == "" {
			continue
		}
		if _, ok := b.companySet[slug]; ok {
			return slug, true
		}
	}
	return "", false
}
