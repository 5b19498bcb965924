package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"infrasense-be/apperrors"
	"infrasense-be/middlewares"
	"infrasense-be/models"
	"infrasense-be/services"
	"infrasense-be/uploads"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// IssueController serves the public and citizen issue endpoints.
type IssueController struct {
	issues *services.IssueService
	images *uploads.Store
	logger *slog.Logger
}

func NewIssueController(issues *services.IssueService, images *uploads.Store, logger *slog.Logger) *IssueController {
	return &IssueController{issues: issues, images: images, logger: logger}
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateIssue accepts a multipart, urlencoded or JSON submission with an
// optional "image" file part.
func (ic *IssueController) CreateIssue(c *gin.Context) {
	in, err := readSubmission(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var saved uploads.Saved
	fh, err := c.FormFile("image")
	switch {
	case err == nil:
		saved, err = ic.images.Save(fh)
		switch {
		case errors.Is(err, uploads.ErrTooLarge), errors.Is(err, uploads.ErrUnsupportedType):
			in.Rejected = append(in.Rejected, "image")
		case err != nil:
			respondError(c, ic.logger, err)
			return
		default:
			in.ImagePath = saved.Path
			in.ImageURL = saved.URL
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		in.Rejected = append(in.Rejected, "image")
	}

	// A client abort must not roll back a submission already in flight.
	ctx := context.WithoutCancel(c.Request.Context())
	issue, err := ic.issues.Submit(ctx, middlewares.CurrentIdentity(c), in)
	if err != nil {
		if rmErr := ic.images.Remove(saved); rmErr != nil {
			ic.logger.Warn("failed to remove orphaned image", "path", saved.Path, "error", rmErr)
		}
		respondError(c, ic.logger, err)
		return
	}

	c.JSON(http.StatusCreated, issue)
}

// GetIssues lists issues filtered by status, severity and category.
func (ic *IssueController) GetIssues(c *gin.Context) {
	issues, err := ic.issues.List(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		respondError(c, ic.logger, err)
		return
	}
	if issues == nil {
		issues = []models.Issue{}
	}
	c.JSON(http.StatusOK, issues)
}

func (ic *IssueController) GetIssue(c *gin.Context) {
	issue, err := ic.issues.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, ic.logger, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// UpdateIssueStatus sets the workflow status. Routes mount it behind
// RequireGovRole; the service checks the caller again.
func (ic *IssueController) UpdateIssueStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, ic.logger, apperrors.ErrInvalidStatus)
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	issue, err := ic.issues.UpdateStatus(ctx, middlewares.CurrentIdentity(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, ic.logger, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// readSubmission collects the text fields of a submission. JSON values of
// the wrong type land in Rejected so they are reported with the rest.
func readSubmission(c *gin.Context) (services.SubmitInput, error) {
	if c.ContentType() != binding.MIMEJSON {
		return services.SubmitInput{
			Title:       c.PostForm("title"),
			Description: c.PostForm("description"),
			Latitude:    c.PostForm("latitude"),
			Longitude:   c.PostForm("longitude"),
			Address:     c.PostForm("address"),
			Category:    c.PostForm("category"),
		}, nil
	}

	var body map[string]any
	if c.Request.Body != nil {
		dec := json.NewDecoder(c.Request.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return services.SubmitInput{}, err
		}
	}

	var in services.SubmitInput
	in.Title = jsonText(body, "title", &in.Rejected)
	in.Description = jsonText(body, "description", &in.Rejected)
	in.Latitude = jsonCoordinate(body, "latitude", &in.Rejected)
	in.Longitude = jsonCoordinate(body, "longitude", &in.Rejected)
	in.Address = jsonText(body, "address", &in.Rejected)
	in.Category = jsonText(body, "category", &in.Rejected)
	return in, nil
}

func jsonText(body map[string]any, key string, rejected *[]string) string {
	switch v := body[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		*rejected = append(*rejected, key)
		return ""
	}
}

// jsonCoordinate accepts a number or a numeric string; the service parses it.
func jsonCoordinate(body map[string]any, key string, rejected *[]string) string {
	switch v := body[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		*rejected = append(*rejected, key)
		return ""
	}
}

func filterFromQuery(c *gin.Context) models.IssueFilter {
	f := models.IssueFilter{
		Status:   models.IssueStatus(c.Query("status")),
		Severity: models.Severity(c.Query("severity")),
		Category: models.IssueCategory(c.Query("category")),
		SortBy:   c.Query("sortBy"),
		Order:    models.SortOrder(c.Query("order")),
	}
	if cat, ok := models.ParseCategory(c.Query("category")); ok {
		f.Category = cat
	}
	return f.Normalize()
}
