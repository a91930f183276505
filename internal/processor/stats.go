package processor

// Stats counts what happened to one page (or, summed, a whole run).
// Processed == Dismissed + Skipped + Kept always holds; a failed dismiss is kept.
type Stats struct {
	Processed          int `json:"processed"`
	Dismissed          int `json:"dismissed"`
	Skipped            int `json:"skipped"`
	DismissedByTitle   int `json:"dismissed_by_title"`
	DismissedByCompany int `json:"dismissed_by_company"`
	Kept               int `json:"kept"`
	Failed             int `json:"failed"`
	Malformed          int `json:"malformed"`
	Saved              int `json:"saved"`
}

// Tuple returns the counters in their fixed reporting order.
func (s Stats) Tuple() [9]int {
	return [9]int{
		s.Processed,
		s.Dismissed,
		s.Skipped,
		s.DismissedByTitle,
		s.DismissedByCompany,
		s.Kept,
		s.Failed,
		s.Malformed,
		s.Saved,
	}
}

func (s *Stats) Add(o Stats) {
	s.Processed += o.Processed
	s.Dismissed += o.Dismissed
	s.Skipped += o.Skipped
	s.DismissedByTitle += o.DismissedByTitle
	s.DismissedByCompany += o.DismissedByCompany
	s.Kept += o.Kept
	s.Failed += o.Failed
	s.Malformed += o.Malformed
	s.Saved += o.Saved
}
