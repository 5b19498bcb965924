package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"infrasense-be/apperrors"
	"infrasense-be/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestBuildFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, buildFilter(models.IssueFilter{}))
	assert.Equal(t, bson.M{
		"status":   models.StatusOpen,
		"severity": models.SeverityHigh,
	}, buildFilter(models.IssueFilter{Status: models.StatusOpen, Severity: models.SeverityHigh}))
	assert.Equal(t, bson.M{"category": models.Road}, buildFilter(models.IssueFilter{Category: models.Road}))
}

func TestBuildSort(t *testing.T) {
	assert.Equal(t, bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: -1},
	}, buildSort(models.IssueFilter{}))

	assert.Equal(t, bson.D{
		{Key: "severity", Value: 1},
		{Key: "createdAt", Value: 1},
		{Key: "_id", Value: 1},
	}, buildSort(models.IssueFilter{SortBy: "severity", Order: "ASC"}))

	// Field names never reach the driver unless allowlisted.
	assert.Equal(t, "createdAt", buildSort(models.IssueFilter{SortBy: "$where"})[0].Key)
}

func TestStatusUpdateOnlyTouchesStatusFields(t *testing.T) {
	p := statusUpdate(models.StatusChange{Status: models.StatusResolved, UpdatedBy: "gov-1", At: base})
	if assert.Len(t, p, 1) {
		set, ok := p[0][0].Value.(bson.D)
		if assert.True(t, ok) {
			var keys []string
			for _, e := range set {
				keys = append(keys, e.Key)
			}
			assert.Equal(t, []string{"status", "updatedBy", "updatedAt"}, keys)
		}
	}
}

func TestStatusUpdateQuotesCallerStrings(t *testing.T) {
	p := statusUpdate(models.StatusChange{Status: models.StatusOpen, UpdatedBy: "$title", At: base})
	set := p[0][0].Value.(bson.D)

	assert.Equal(t, bson.D{{Key: "$literal", Value: "open"}}, set[0].Value)
	assert.Equal(t, bson.D{{Key: "$literal", Value: "$title"}}, set[1].Value)
}

func TestClassify(t *testing.T) {
	assert.ErrorIs(t, classify("find", mongo.ErrNoDocuments), apperrors.ErrNotFound)
	assert.ErrorIs(t, classify("find", fmt.Errorf("wrapped: %w", context.DeadlineExceeded)), apperrors.ErrStorageUnavailable)

	other := classify("decode", errors.New("cannot decode"))
	assert.NotErrorIs(t, other, apperrors.ErrStorageUnavailable)
	assert.NotErrorIs(t, other, apperrors.ErrNotFound)
}
