package filter

import "strings"

const companyPathMarker = "linkedin.com/company/"

// Blocklist holds the configured dismiss rules, normalized once at construction.
type Blocklist struct {
	titles     []string
	companies  []string
	companySet map[string]struct{}
}

func NewBlocklist(keywords, companies []string) *Blocklist {
	b := &Blocklist{companySet: make(map[string]struct{})}

	seen := make(map[string]bool)
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		//an empty needle would match every title
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		b.titles = append(b.titles, k)
	}

	for _, c := range companies {
		slug := CompanySlug(c)
		if slug == "" {
			continue
		}
		if _, ok := b.companySet[slug]; ok {
			continue
		}
		b.companySet[slug] = struct{}{}
		b.companies = append(b.companies, slug)
	}
	return b
}

// Titles returns the lowercased title keywords.
func (b *Blocklist) Titles() []string { return b.titles }

// Companies returns the company slugs.
func (b *Blocklist) Companies() []string { return b.companies }

// CompanySlug reduces a company name or LinkedIn company URL to its slug.
// "https://www.linkedin.com/company/google/" -> "google"
func CompanySlug(raw string) string {
	s := strings.ToLower(strings.Trim(strings.TrimSpace(raw), "/"))

	if i := strings.Index(s, companyPathMarker); i >= 0 {
		s = s[i+len(companyPathMarker):]
		if j := strings.IndexAny(s, "/?#"); j >= 0 {
			s = s[:j]
		}
	}
	return strings.TrimSpace(s)
}
