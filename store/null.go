package store

import (
	"context"

	"infrasense-be/apperrors"
	"infrasense-be/models"

	"github.com/google/uuid"
)

const (
	// MockIDPrefix marks IDs synthesized by NullStore.
	MockIDPrefix = "mock-"
	// MockNote is attached to every record NullStore hands back.
	MockNote = "DB not connected"
)

// NullStore is mock mode: writes are acknowledged but never stored.
// Every record it returns carries MockNote; created records also get a
// MockIDPrefix ID.
type NullStore struct{}

// NewNullStore returns the mock-mode store.
func NewNullStore() NullStore { return NullStore{} }

// IsMock reports whether issue was synthesized by NullStore.
func IsMock(issue models.Issue) bool {
	return issue.Note == MockNote
}

func (NullStore) Create(ctx context.Context, issue models.Issue) (models.Issue, error) {
	issue.ID = MockIDPrefix + uuid.NewString()
	issue.Note = MockNote
	return issue, nil
}

func (NullStore) GetByID(ctx context.Context, id string) (models.Issue, error) {
	return models.Issue{}, apperrors.ErrNotFound
}

func (NullStore) List(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	return []models.Issue{}, nil
}

func (NullStore) UpdateStatus(ctx context.Context, id string, change models.StatusChange) (models.Issue, error) {
	if !change.Status.Valid() {
		return models.Issue{}, apperrors.ErrInvalidStatus
	}
	return models.Issue{
		ID:        id,
		Status:    change.Status,
		UpdatedBy: change.UpdatedBy,
		UpdatedAt: change.At,
		Note:      MockNote,
	}, nil
}

func (NullStore) Persistent() bool { return false }
