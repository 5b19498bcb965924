package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"infrasense-be/models"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultTimeout bounds a single attempt.
	DefaultTimeout = 10 * time.Second
	maxResponse    = 1 << 20
)

// errTransient marks failures worth the single retry.
var errTransient = errors.New("transient classifier failure")

// HTTPClassifier posts multipart {text, image?} to the ML service.
type HTTPClassifier struct {
	url     string
	client  *http.Client
	timeout time.Duration
	// retryWait is the pause before the one retry.
	retryWait time.Duration
}

// Option configures an HTTPClassifier.
type Option func(*HTTPClassifier)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClassifier) { h.client = c }
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClassifier) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithRetryWait sets the pause before retrying a transport failure.
func WithRetryWait(d time.Duration) Option {
	return func(h *HTTPClassifier) { h.retryWait = d }
}

// NewHTTPClassifier returns a classifier for the service at url.
func NewHTTPClassifier(url string, opts ...Option) *HTTPClassifier {
	h := &HTTPClassifier{
		url:       url,
		client:    &http.Client{},
		timeout:   DefaultTimeout,
		retryWait: 250 * time.Millisecond,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// predictResponse accepts both the enveloped reply of the prediction
// service and a flat {severity, confidence} body.
type predictResponse struct {
	Status string `json:"status"`
	Data   *struct {
		FinalSeverity string `json:"final_severity"`
		ImageAnalysis *struct {
			Severity   string  `json:"severity"`
			Confidence float64 `json:"confidence"`
		} `json:"image_analysis"`
	} `json:"data"`
	Severity   string   `json:"severity"`
	Confidence *float64 `json:"confidence"`
}

func (h *HTTPClassifier) Classify(ctx context.Context, in Input) Result {
	body, contentType, err := encodeRequest(in)
	if err != nil {
		return Degraded(fmt.Sprintf("encode request: %v", err))
	}

	var result Result
	op := func() error {
		r, err := h.attempt(ctx, body, contentType)
		if err != nil {
			if errors.Is(err, errTransient) {
				return err
			}
			return backoff.Permanent(err)
		}
		result = r
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(h.retryWait), 1), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return Degraded(err.Error())
	}
	return result
}

func (h *HTTPClassifier) attempt(ctx context.Context, body []byte, contentType string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := h.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", errTransient, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return Result{}, fmt.Errorf("%w: read body: %w", errTransient, err)
	}
	if resp.StatusCode >= 500 {
		return Result{}, fmt.Errorf("%w: status %d", errTransient, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return parseResponse(raw)
}

func parseResponse(raw []byte) (Result, error) {
	var pr predictResponse
	if err := json.Unmarshal(raw, &pr); err != nil {
		return Result{}, fmt.Errorf("malformed response: %w", err)
	}

	var label string
	var confidence float64
	switch {
	case pr.Data != nil:
		if pr.Status != "" && pr.Status != "success" {
			return Result{}, fmt.Errorf("service reported status %q", pr.Status)
		}
		label = pr.Data.FinalSeverity
		if pr.Data.ImageAnalysis != nil {
			if label == "" {
				label = pr.Data.ImageAnalysis.Severity
			}
			confidence = pr.Data.ImageAnalysis.Confidence
		}
	case pr.Severity != "" || pr.Confidence != nil:
		label = pr.Severity
		if pr.Confidence != nil {
			confidence = *pr.Confidence
		}
	default:
		return Result{}, errors.New("malformed response: no severity")
	}

	return Result{
		Severity:   models.ParseSeverity(label),
		Confidence: clamp(confidence),
	}, nil
}

func encodeRequest(in Input) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("text", in.Description); err != nil {
		return nil, "", err
	}
	if in.ImagePath != "" {
		f, err := os.Open(in.ImagePath)
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		part, err := w.CreateFormFile("image", filepath.Base(in.ImagePath))
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func clamp(c float64) float64 {
	switch {
	case math.IsNaN(c), c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
