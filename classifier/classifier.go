// Package classifier adapts the external ML severity service.
//
// Classification never fails from the caller's point of view: transport
// errors, timeouts and malformed replies degrade to a medium severity with
// zero confidence and set Result.Degraded so the caller can log it.
//
// Classification is synchronous. Moving it onto a queue would mean a new
// Classifier that records the request and returns a pending result; the
// lifecycle service would not change.
package classifier

//go:generate mockgen -source=classifier.go -destination=../mocks/mock_classifier.go -package=mocks

import (
	"context"

	"infrasense-be/models"
)

// Input is what the ML service sees for one submission.
type Input struct {
	// ImagePath is a local file path, empty when no photo was uploaded.
	ImagePath   string
	Description string
}

// Result is the normalized classifier answer.
type Result struct {
	Severity   models.Severity
	Confidence float64
	// Degraded is set when the fallback was used instead of a real answer.
	Degraded bool
	// Reason explains a degraded result for logs.
	Reason string
}

// Classifier assigns a severity to a submission.
type Classifier interface {
	Classify(ctx context.Context, in Input) Result
}

// Degraded returns the fallback result.
func Degraded(reason string) Result {
	return Result{
		Severity:   models.SeverityMedium,
		Confidence: 0,
		Degraded:   true,
		Reason:     reason,
	}
}

// Fallback is used when no ML service is configured.
type Fallback struct{}

func (Fallback) Classify(ctx context.Context, in Input) Result {
	return Degraded("classifier not configured")
}
