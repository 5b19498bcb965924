package models

// SeverityCounts holds issue counts per severity tier.
type SeverityCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// Stats is the aggregate view served to government dashboards.
// Pending counts issues still in the open state.
type Stats struct {
	Total      int            `json:"total"`
	Pending    int            `json:"pending"`
	InProgress int            `json:"inProgress"`
	Resolved   int            `json:"resolved"`
	BySeverity SeverityCounts `json:"bySeverity"`
}
