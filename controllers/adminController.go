package controllers

import (
	"net/http"

	"infrasense-be/services"

	"github.com/gin-gonic/gin"
)

// AdminController serves the government dashboard. Every route is mounted
// behind RequireGovRole.
type AdminController struct {
	*IssueController
	stats *services.StatsService
}

func NewAdminController(issues *IssueController, stats *services.StatsService) *AdminController {
	return &AdminController{IssueController: issues, stats: stats}
}

// GetAdminIssues lists issues with the same filters as the public list.
func (ac *AdminController) GetAdminIssues(c *gin.Context) {
	ac.GetIssues(c)
}

func (ac *AdminController) GetAdminStats(c *gin.Context) {
	stats, err := ac.stats.Compute(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (ac *AdminController) UpdateIssueStatusAdmin(c *gin.Context) {
	ac.UpdateIssueStatus(c)
}
