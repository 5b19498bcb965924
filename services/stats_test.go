package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"infrasense-be/apperrors"
	"infrasense-be/mocks"
	"infrasense-be/models"
	"infrasense-be/services"
	"infrasense-be/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func fill(t *testing.T, s store.IssueStore, issues ...models.Issue) {
	t.Helper()
	for i, issue := range issues {
		issue.CreatedAt = time.Unix(int64(i), 0)
		issue.UpdatedAt = issue.CreatedAt
		_, err := s.Create(context.Background(), issue)
		require.NoError(t, err)
	}
}

func TestComputeStats(t *testing.T) {
	s := store.NewMemoryStore()
	fill(t, s,
		models.Issue{Status: models.StatusOpen, Severity: models.SeverityHigh},
		models.Issue{Status: models.StatusOpen, Severity: models.SeverityLow},
		models.Issue{Status: models.StatusInProgress, Severity: models.SeverityMedium},
		models.Issue{Status: models.StatusResolved, Severity: models.SeverityHigh},
		models.Issue{Status: models.StatusResolved, Severity: models.SeverityHigh},
	)

	stats, err := services.NewStatsService(s).Compute(context.Background(), models.IssueFilter{})
	require.NoError(t, err)
	assert.Equal(t, models.Stats{
		Total:      5,
		Pending:    2,
		InProgress: 1,
		Resolved:   2,
		BySeverity: models.SeverityCounts{Low: 1, Medium: 1, High: 3},
	}, stats)
}

func TestComputeStatsFiltered(t *testing.T) {
	s := store.NewMemoryStore()
	fill(t, s,
		models.Issue{Status: models.StatusOpen, Severity: models.SeverityHigh},
		models.Issue{Status: models.StatusResolved, Severity: models.SeverityLow},
		models.Issue{Status: models.StatusResolved, Severity: models.SeverityHigh},
	)

	stats, err := services.NewStatsService(s).Compute(context.Background(), models.IssueFilter{Status: models.StatusResolved})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Resolved)
	assert.Zero(t, stats.Pending)
	assert.Zero(t, stats.InProgress)
	assert.Equal(t, models.SeverityCounts{Low: 1, High: 1}, stats.BySeverity)
}

func TestComputeStatsMockMode(t *testing.T) {
	stats, err := services.NewStatsService(store.NewNullStore()).Compute(context.Background(), models.IssueFilter{})
	require.NoError(t, err)
	assert.Equal(t, models.Stats{}, stats)
}

func TestComputeStatsStorageFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := mocks.NewMockIssueStore(ctrl)
	s.EXPECT().Persistent().Return(true)
	s.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, apperrors.Unavailable("find issues", errors.New("timeout")))

	_, err := services.NewStatsService(s).Compute(context.Background(), models.IssueFilter{})
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
}

func TestComputeStatsRecomputesEveryCall(t *testing.T) {
	s := store.NewMemoryStore()
	svc := services.NewStatsService(s)
	fill(t, s, models.Issue{Status: models.StatusOpen, Severity: models.SeverityLow})

	first, err := svc.Compute(context.Background(), models.IssueFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Total)

	fill(t, s, models.Issue{Status: models.StatusOpen, Severity: models.SeverityLow})
	second, err := svc.Compute(context.Background(), models.IssueFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Total)
}
