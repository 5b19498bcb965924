package services

import (
	"context"
	"fmt"

	"infrasense-be/models"
	"infrasense-be/store"
)

// StatsService aggregates issue counts. Nothing is cached.
type StatsService struct {
	store store.IssueStore
}

// NewStatsService returns a stats service over s.
func NewStatsService(s store.IssueStore) *StatsService {
	return &StatsService{store: s}
}

// Compute counts the issues matching filter by status and severity.
// A store in mock mode yields all zeros.
func (s *StatsService) Compute(ctx context.Context, filter models.IssueFilter) (models.Stats, error) {
	if !s.store.Persistent() {
		return models.Stats{}, nil
	}

	issues, err := s.store.List(ctx, filter.Normalize())
	if err != nil {
		return models.Stats{}, fmt.Errorf("compute stats: %w", err)
	}
	return Aggregate(issues), nil
}

// Aggregate counts issues by status and severity.
func Aggregate(issues []models.Issue) models.Stats {
	stats := models.Stats{Total: len(issues)}
	for _, i := range issues {
		switch i.Status {
		case models.StatusOpen:
			stats.Pending++
		case models.StatusInProgress:
			stats.InProgress++
		case models.StatusResolved:
			stats.Resolved++
		}
		switch i.Severity {
		case models.SeverityLow:
			stats.BySeverity.Low++
		case models.SeverityMedium:
			stats.BySeverity.Medium++
		case models.SeverityHigh:
			stats.BySeverity.High++
		}
	}
	return stats
}
