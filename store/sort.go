package store

import (
	"sort"
	"strings"

	"infrasense-be/models"
)

// sortIssues orders issues in place by the normalized filter. Ties fall
// back to createdAt then ID so results are deterministic.
func sortIssues(issues []models.Issue, filter models.IssueFilter) {
	f := filter.Normalize()
	less := func(a, b models.Issue) int {
		switch f.SortBy {
		case models.SortUpdatedAt:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		case models.SortSeverity:
			return strings.Compare(string(a.Severity), string(b.Severity))
		case models.SortStatus:
			return strings.Compare(string(a.Status), string(b.Status))
		case models.SortTitle:
			return strings.Compare(a.Title, b.Title)
		case models.SortCategory:
			return strings.Compare(string(a.Category), string(b.Category))
		case models.SortAIConfidence:
			switch {
			case a.AIConfidence < b.AIConfidence:
				return -1
			case a.AIConfidence > b.AIConfidence:
				return 1
			}
			return 0
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	sort.SliceStable(issues, func(i, j int) bool {
		c := less(issues[i], issues[j])
		if c == 0 {
			c = issues[i].CreatedAt.Compare(issues[j].CreatedAt)
		}
		if c == 0 {
			c = strings.Compare(issues[i].ID, issues[j].ID)
		}
		if f.Order == models.Asc {
			return c < 0
		}
		return c > 0
	})
}
