package models

import "strings"

// Sortable fields accepted by IssueFilter.SortBy.
const (
	SortCreatedAt    = "createdAt"
	SortUpdatedAt    = "updatedAt"
	SortSeverity     = "severity"
	SortStatus       = "status"
	SortTitle        = "title"
	SortAIConfidence = "aiConfidence"
	SortCategory     = "category"
)

var sortFields = map[string]bool{
	SortCreatedAt:    true,
	SortUpdatedAt:    true,
	SortSeverity:     true,
	SortStatus:       true,
	SortTitle:        true,
	SortAIConfidence: true,
	SortCategory:     true,
}

// SortOrder is asc or desc.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// IssueFilter selects and orders issues. Empty fields match everything.
type IssueFilter struct {
	Status   IssueStatus
	Severity Severity
	Category IssueCategory
	SortBy   string
	Order    SortOrder
}

// Normalize fills in the default sort (createdAt, desc) and replaces
// unknown sort fields and orders with their defaults.
func (f IssueFilter) Normalize() IssueFilter {
	if !sortFields[f.SortBy] {
		f.SortBy = SortCreatedAt
	}
	switch SortOrder(strings.ToLower(string(f.Order))) {
	case Asc:
		f.Order = Asc
	default:
		f.Order = Desc
	}
	return f
}

// Matches reports whether issue satisfies every set predicate.
func (f IssueFilter) Matches(issue Issue) bool {
	if f.Status != "" && issue.Status != f.Status {
		return false
	}
	if f.Severity != "" && issue.Severity != f.Severity {
		return false
	}
	if f.Category != "" && issue.Category != f.Category {
		return false
	}
	return true
}
