package routes

import (
	"infrasense-be/controllers"
	"infrasense-be/middlewares"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the public and citizen issue routes.
func IssueRoutes(api *gin.RouterGroup, ic *controllers.IssueController, auth gin.HandlerFunc, limiter middlewares.Limiter) {
	issues := api.Group("/issues")
	{
		issues.GET("", ic.GetIssues)
		issues.GET("/:id", ic.GetIssue)
		issues.POST("", auth, middlewares.IssueRateLimiter(limiter), ic.CreateIssue)
		issues.PATCH("/:id/status", auth, middlewares.RequireGovRole(), ic.UpdateIssueStatus)
	}
}
