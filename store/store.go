// Package store persists issues. MongoStore is the production backend;
// MemoryStore and NullStore let the service run without infrastructure.
package store

//go:generate mockgen -source=store.go -destination=../mocks/mock_store.go -package=mocks

import (
	"context"

	"infrasense-be/models"
)

// IssueStore is the persistence contract for the issues collection.
type IssueStore interface {
	// Create persists issue and returns it with its generated ID.
	Create(ctx context.Context, issue models.Issue) (models.Issue, error)
	// GetByID returns apperrors.ErrNotFound for unknown IDs.
	GetByID(ctx context.Context, id string) (models.Issue, error)
	// List returns issues matching every set filter, in filter order.
	List(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error)
	// UpdateStatus atomically applies change: status, updatedBy and
	// updatedAt are set only while the stored status is in change.From.
	// updatedAt always moves forward past the stored value.
	UpdateStatus(ctx context.Context, id string, change models.StatusChange) (models.Issue, error)
	// Persistent is false for stores that never keep what they are given.
	Persistent() bool
}
