// Package services holds the issue lifecycle state machine and the
// aggregate statistics built over the issue store.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"infrasense-be/apperrors"
	"infrasense-be/authz"
	"infrasense-be/classifier"
	"infrasense-be/models"
	"infrasense-be/store"
)

// transitions is the status workflow. Every state may move to every other
// state, reopening included; a move to the current state only restamps.
var transitions = map[models.IssueStatus][]models.IssueStatus{
	models.StatusOpen:       {models.StatusInProgress, models.StatusResolved},
	models.StatusInProgress: {models.StatusOpen, models.StatusResolved},
	models.StatusResolved:   {models.StatusOpen, models.StatusInProgress},
}

// CanTransition reports whether an issue in from may be set to to.
func CanTransition(from, to models.IssueStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// sourcesOf lists the states from which an issue may move to next.
func sourcesOf(next models.IssueStatus) []models.IssueStatus {
	var from []models.IssueStatus
	for _, cur := range models.Statuses {
		if CanTransition(cur, next) {
			from = append(from, cur)
		}
	}
	return from
}

// SubmitInput is a raw citizen submission. Coordinates arrive as the
// strings posted by the form.
type SubmitInput struct {
	Title       string
	Description string
	Latitude    string
	Longitude   string
	Address     string
	Category    string
	// ImageURL is the public path of an already stored photo.
	ImageURL string
	// ImagePath is the local file handed to the classifier.
	ImagePath string
	// Rejected lists fields the transport could not decode. They are
	// reported alongside the field checks below.
	Rejected []string
}

// IssueService drives issues from submission to resolution.
type IssueService struct {
	store      store.IssueStore
	classifier classifier.Classifier
	logger     *slog.Logger
	now        func() time.Time
}

// NewIssueService wires the lifecycle service.
func NewIssueService(s store.IssueStore, c classifier.Classifier, logger *slog.Logger) *IssueService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IssueService{
		store:      s,
		classifier: c,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source.
func (s *IssueService) WithClock(now func() time.Time) *IssueService {
	s.now = now
	return s
}

// Submit validates a citizen report, classifies it and persists it as open.
func (s *IssueService) Submit(ctx context.Context, caller *models.Identity, in SubmitInput) (models.Issue, error) {
	if caller == nil || caller.UserID == "" {
		return models.Issue{}, apperrors.ErrUnauthenticated
	}

	issue, err := validateSubmission(in)
	if err != nil {
		return models.Issue{}, err
	}

	result := s.classifier.Classify(ctx, classifier.Input{
		ImagePath:   in.ImagePath,
		Description: issue.Description,
	})
	if result.Degraded {
		s.logger.WarnContext(ctx, "classifier degraded, submitting with fallback severity",
			"user_id", caller.UserID,
			"reason", result.Reason,
		)
	}

	now := s.now()
	issue.UserID = caller.UserID
	issue.Status = models.StatusOpen
	issue.Severity = result.Severity
	issue.AIConfidence = result.Confidence
	issue.CreatedAt = now
	issue.UpdatedAt = now

	created, err := s.store.Create(ctx, issue)
	if err != nil {
		return models.Issue{}, fmt.Errorf("create issue: %w", err)
	}
	s.logger.InfoContext(ctx, "issue submitted",
		"issue_id", created.ID,
		"user_id", created.UserID,
		"severity", created.Severity,
		"mock", store.IsMock(created),
	)
	return created, nil
}

// UpdateStatus moves an issue to status on behalf of a government caller.
// Only status, updatedAt and updatedBy change.
func (s *IssueService) UpdateStatus(ctx context.Context, caller *models.Identity, id string, status string) (models.Issue, error) {
	if err := authz.RequireGovernment(caller); err != nil {
		return models.Issue{}, err
	}
	next, ok := models.ParseStatus(status)
	if !ok {
		return models.Issue{}, apperrors.ErrInvalidStatus
	}

	updated, err := s.store.UpdateStatus(ctx, id, models.StatusChange{
		Status:    next,
		From:      sourcesOf(next),
		UpdatedBy: caller.UserID,
		At:        s.now(),
	})
	if err != nil {
		return models.Issue{}, fmt.Errorf("update issue %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "issue status updated",
		"issue_id", id,
		"status", next,
		"updated_by", caller.UserID,
		"role", caller.Role,
	)
	return updated, nil
}

// Get returns one issue.
func (s *IssueService) Get(ctx context.Context, id string) (models.Issue, error) {
	issue, err := s.store.GetByID(ctx, id)
	if err != nil {
		return models.Issue{}, fmt.Errorf("get issue %s: %w", id, err)
	}
	return issue, nil
}

// List returns issues matching filter.
func (s *IssueService) List(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	issues, err := s.store.List(ctx, filter.Normalize())
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	return issues, nil
}

// validateSubmission checks every required field and reports all failures
// at once.
func validateSubmission(in SubmitInput) (models.Issue, error) {
	verr := &apperrors.ValidationError{}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		verr.Add("title")
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		verr.Add("description")
	}
	lat, ok := parseCoordinate(in.Latitude, 90)
	if !ok {
		verr.Add("latitude")
	}
	lng, ok := parseCoordinate(in.Longitude, 180)
	if !ok {
		verr.Add("longitude")
	}

	category := models.Other
	if c := strings.TrimSpace(in.Category); c != "" {
		parsed, ok := models.ParseCategory(c)
		if !ok {
			verr.Add("category")
		}
		category = parsed
	}
	for _, f := range in.Rejected {
		verr.Add(f)
	}

	if err := verr.OrNil(); err != nil {
		return models.Issue{}, err
	}

	address := strings.TrimSpace(in.Address)
	if address == "" {
		address = fmt.Sprintf("%s, %s",
			strconv.FormatFloat(lat, 'f', -1, 64),
			strconv.FormatFloat(lng, 'f', -1, 64))
	}

	issue := models.Issue{
		Title:       title,
		Description: description,
		Address:     address,
		Category:    category,
		Location:    models.Location{Lat: lat, Lng: lng},
	}
	if in.ImageURL != "" {
		url := in.ImageURL
		issue.ImageURL = &url
	}
	return issue, nil
}

func parseCoordinate(raw string, limit float64) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, v >= -limit && v <= limit
}
