package models

import (
	"strings"
	"time"
)

// IssueCategory enum
type IssueCategory string

const (
	Road        IssueCategory = "Road"
	Water       IssueCategory = "Water"
	Sanitation  IssueCategory = "Sanitation"
	Electricity IssueCategory = "Electricity"
	Other       IssueCategory = "Other"
)

// IssueStatus enum
type IssueStatus string

const (
	StatusOpen       IssueStatus = "open"
	StatusInProgress IssueStatus = "in-progress"
	StatusResolved   IssueStatus = "resolved"
)

// Severity enum, assigned by the classifier
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Statuses lists every workflow state in lifecycle order.
var Statuses = []IssueStatus{StatusOpen, StatusInProgress, StatusResolved}

// Severities lists every severity tier from least to most urgent.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh}

// Categories lists the accepted issue categories.
var Categories = []IssueCategory{Road, Water, Sanitation, Electricity, Other}

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Issue represents a civic issue reported by a citizen
type Issue struct {
	ID           string        `bson:"-" json:"id"`
	UserID       string        `bson:"userId" json:"userId"`
	Title        string        `bson:"title" json:"title"`
	Description  string        `bson:"description" json:"description"`
	Address      string        `bson:"address" json:"address"`
	Category     IssueCategory `bson:"category" json:"category"`
	Location     Location      `bson:"location" json:"location"`
	ImageURL     *string       `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Status       IssueStatus   `bson:"status" json:"status"`
	Severity     Severity      `bson:"severity" json:"severity"`
	AIConfidence float64       `bson:"aiConfidence" json:"aiConfidence"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt" json:"updatedAt"`
	UpdatedBy    string        `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`

	// Note is set only on records synthesized without a backing store.
	Note string `bson:"-" json:"note,omitempty"`
}

// ParseStatus returns the status named by s. Matching is exact.
func ParseStatus(s string) (IssueStatus, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Valid reports whether s is one of the three workflow states.
func (s IssueStatus) Valid() bool {
	_, ok := ParseStatus(string(s))
	return ok
}

// ParseSeverity maps a classifier label onto the severity enum,
// case-insensitively. Unrecognized or empty labels are medium.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SeverityLow
	case "high":
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

// ParseCategory returns the category named by s, ignoring case.
func ParseCategory(s string) (IssueCategory, bool) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, true
		}
	}
	return "", false
}

// StatusChange is one government status mutation. From lists the states
// the issue may currently be in for the change to apply; empty means any.
type StatusChange struct {
	Status    IssueStatus
	From      []IssueStatus
	UpdatedBy string
	At        time.Time
}

// Allows reports whether an issue currently in cur may take the change.
func (c StatusChange) Allows(cur IssueStatus) bool {
	if len(c.From) == 0 {
		return true
	}
	for _, s := range c.From {
		if s == cur {
			return true
		}
	}
	return false
}
