package store

import (
	"context"
	"testing"
	"time"

	"infrasense-be/apperrors"
	"infrasense-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func seed(t *testing.T, s IssueStore) []models.Issue {
	t.Helper()
	fixtures := []models.Issue{
		{Title: "Pothole", Status: models.StatusOpen, Severity: models.SeverityHigh, Category: models.Road, AIConfidence: 0.9},
		{Title: "Leak", Status: models.StatusOpen, Severity: models.SeverityLow, Category: models.Water, AIConfidence: 0.4},
		{Title: "Broken light", Status: models.StatusResolved, Severity: models.SeverityHigh, Category: models.Electricity, AIConfidence: 0.7},
		{Title: "Garbage", Status: models.StatusInProgress, Severity: models.SeverityMedium, Category: models.Sanitation, AIConfidence: 0.5},
		{Title: "Crater", Status: models.StatusOpen, Severity: models.SeverityHigh, Category: models.Road, AIConfidence: 0.8},
	}
	var out []models.Issue
	for i, f := range fixtures {
		f.UserID = "citizen-1"
		f.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		f.UpdatedAt = f.CreatedAt
		created, err := s.Create(context.Background(), f)
		require.NoError(t, err)
		out = append(out, created)
	}
	return out
}

func titles(issues []models.Issue) []string {
	var out []string
	for _, i := range issues {
		out = append(out, i.Title)
	}
	return out
}

func TestMemoryStoreCreateAndGet(t *testing.T) {
	s := NewMemoryStore()
	created, err := s.Create(context.Background(), models.Issue{Title: "Pothole", Note: "stale"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Empty(t, created.Note)
	assert.True(t, s.Persistent())

	got, err := s.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = s.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryStoreListDefaultsToNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s)

	issues, err := s.List(context.Background(), models.IssueFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Crater", "Garbage", "Broken light", "Leak", "Pothole"}, titles(issues))
}

func TestMemoryStoreListFilterConjunction(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s)

	issues, err := s.List(context.Background(), models.IssueFilter{
		Status:   models.StatusOpen,
		Severity: models.SeverityHigh,
		Order:    models.Asc,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pothole", "Crater"}, titles(issues))
	for _, i := range issues {
		assert.Equal(t, models.StatusOpen, i.Status)
		assert.Equal(t, models.SeverityHigh, i.Severity)
	}

	issues, err = s.List(context.Background(), models.IssueFilter{Status: models.StatusOpen, Category: models.Water})
	require.NoError(t, err)
	assert.Equal(t, []string{"Leak"}, titles(issues))

	issues, err = s.List(context.Background(), models.IssueFilter{Status: models.StatusResolved, Severity: models.SeverityLow})
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestMemoryStoreListSortFields(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s)

	issues, err := s.List(context.Background(), models.IssueFilter{SortBy: models.SortAIConfidence, Order: models.Desc})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pothole", "Crater", "Broken light", "Garbage", "Leak"}, titles(issues))

	issues, err = s.List(context.Background(), models.IssueFilter{SortBy: models.SortTitle, Order: models.Asc})
	require.NoError(t, err)
	assert.Equal(t, []string{"Broken light", "Crater", "Garbage", "Leak", "Pothole"}, titles(issues))

	issues, err = s.List(context.Background(), models.IssueFilter{SortBy: "password", Order: "sideways"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Crater", "Garbage", "Broken light", "Leak", "Pothole"}, titles(issues))
}

func TestMemoryStoreUpdateStatus(t *testing.T) {
	s := NewMemoryStore()
	issues := seed(t, s)
	target := issues[0]

	updated, err := s.UpdateStatus(context.Background(), target.ID, models.StatusChange{
		Status: models.StatusResolved, UpdatedBy: "gov-1", At: base.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, updated.Status)
	assert.Equal(t, "gov-1", updated.UpdatedBy)
	assert.Equal(t, base.Add(24*time.Hour), updated.UpdatedAt)
	assert.Equal(t, target.UserID, updated.UserID)
	assert.Equal(t, target.Severity, updated.Severity)
	assert.Equal(t, target.CreatedAt, updated.CreatedAt)

	// A stale clock still moves updatedAt forward.
	again, err := s.UpdateStatus(context.Background(), target.ID, models.StatusChange{
		Status: models.StatusOpen, UpdatedBy: "gov-2", At: base,
	})
	require.NoError(t, err)
	assert.True(t, again.UpdatedAt.After(updated.UpdatedAt))

	_, err = s.UpdateStatus(context.Background(), "missing", models.StatusChange{Status: models.StatusOpen, UpdatedBy: "gov-1", At: base})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryStoreUpdateStatusRejectsUnknownStatus(t *testing.T) {
	s := NewMemoryStore()
	issues := seed(t, s)

	for _, bad := range []models.IssueStatus{"closed", "", "Resolved", "in_progress"} {
		_, err := s.UpdateStatus(context.Background(), issues[1].ID, models.StatusChange{Status: bad, UpdatedBy: "gov-1", At: base.Add(time.Hour)})
		assert.ErrorIs(t, err, apperrors.ErrInvalidStatus, "status %q", bad)
	}

	got, err := s.GetByID(context.Background(), issues[1].ID)
	require.NoError(t, err)
	assert.Equal(t, issues[1], got)
}

func TestMemoryStoreUpdateStatusHonorsSources(t *testing.T) {
	s := NewMemoryStore()
	issues := seed(t, s)
	resolved := issues[2]

	_, err := s.UpdateStatus(context.Background(), resolved.ID, models.StatusChange{
		Status:    models.StatusOpen,
		From:      []models.IssueStatus{models.StatusInProgress},
		UpdatedBy: "gov-1",
		At:        base.Add(48 * time.Hour),
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	got, err := s.GetByID(context.Background(), resolved.ID)
	require.NoError(t, err)
	assert.Equal(t, resolved, got)
}
