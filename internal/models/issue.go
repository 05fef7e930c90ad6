package models

import "time"

// Issue categories.
const (
	CategoryFacilities    = "Facilities"
	CategoryAcademic      = "Academic"
	CategoryPeerRelations = "Peer Relations"
	CategorySuggestion    = "Suggestion"
	CategoryOther         = "Other"
)

// Categories lists the issue categories in display order.
var Categories = []string{
	CategoryFacilities,
	CategoryAcademic,
	CategoryPeerRelations,
	CategorySuggestion,
	CategoryOther,
}

// MaxTitleLength is the maximum issue title length in characters.
const MaxTitleLength = 100

// SubmittedDateLayout is how submission dates are shown.
const SubmittedDateLayout = "2006-01-02"

// Issue is a submitted school complaint. Issues live only in memory.
type Issue struct {
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Submitter   string    `json:"submitter"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// SubmittedDate returns the submission date formatted for display.
func (i Issue) SubmittedDate() string {
	return i.SubmittedAt.Format(SubmittedDateLayout)
}

// ValidCategory reports whether c is one of Categories.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}
