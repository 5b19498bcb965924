package store

import (
	"context"
	"sync"
	"time"

	"infrasense-be/apperrors"
	"infrasense-be/models"

	"github.com/google/uuid"
)

// MemoryStore keeps issues in process memory. It is persistent for the
// lifetime of the process and safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	issues map[string]models.Issue
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{issues: make(map[string]models.Issue)}
}

func (s *MemoryStore) Create(ctx context.Context, issue models.Issue) (models.Issue, error) {
	issue.ID = uuid.NewString()
	issue.Note = ""

	s.mu.Lock()
	s.issues[issue.ID] = issue
	s.mu.Unlock()
	return issue, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	issue, ok := s.issues[id]
	if !ok {
		return models.Issue{}, apperrors.ErrNotFound
	}
	return issue, nil
}

func (s *MemoryStore) List(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	s.mu.RLock()
	issues := make([]models.Issue, 0, len(s.issues))
	for _, issue := range s.issues {
		if filter.Matches(issue) {
			issues = append(issues, issue)
		}
	}
	s.mu.RUnlock()

	sortIssues(issues, filter)
	return issues, nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id string, change models.StatusChange) (models.Issue, error) {
	if !change.Status.Valid() {
		return models.Issue{}, apperrors.ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issues[id]
	if !ok {
		return models.Issue{}, apperrors.ErrNotFound
	}
	if !change.Allows(issue.Status) {
		return models.Issue{}, apperrors.ErrInvalidTransition
	}
	at := change.At
	if !at.After(issue.UpdatedAt) {
		at = issue.UpdatedAt.Add(time.Millisecond)
	}
	issue.Status = change.Status
	issue.UpdatedBy = change.UpdatedBy
	issue.UpdatedAt = at
	s.issues[id] = issue
	return issue, nil
}

func (s *MemoryStore) Persistent() bool { return true }
