package model

import "time"

// Quote is a single logged quote. A quote belongs to exactly one group
// at creation time and is immutable afterwards.
type Quote struct {
	ID            int64     `json:"id"`
	Text          string    `json:"text"`
	SubjectID     int64     `json:"subject_id"`
	SubjectName   string    `json:"subject_name,omitempty"`
	SubmitterID   int64     `json:"submitter_id"`
	SubmitterName string    `json:"submitter_name,omitempty"`
	GroupID       int64     `json:"group_id"`
	GroupName     string    `json:"group_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Sort orders accepted by the quote listing. Anything else silently
// falls back to SortDateDesc (whitelist, not reject).
const (
	SortDateDesc = "date_desc"
	SortDateAsc  = "date_asc"
	SortPerson   = "person"
)

// NormalizeSort maps a raw sort parameter onto the allow-list.
func NormalizeSort(sort string) string {
	switch sort {
	case SortDateAsc, SortPerson:
		return sort
	default:
		return SortDateDesc
	}
}
