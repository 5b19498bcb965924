package routes

import (
	"infrasense-be/controllers"
	"infrasense-be/middlewares"

	"github.com/gin-gonic/gin"
)

// AdminRoutes sets up the government dashboard routes.
func AdminRoutes(api *gin.RouterGroup, ac *controllers.AdminController, auth gin.HandlerFunc) {
	admin := api.Group("/admin", auth, middlewares.RequireGovRole())
	{
		admin.GET("/issues", ac.GetAdminIssues)
		admin.GET("/stats", ac.GetAdminStats)
		admin.PATCH("/issues/:id/status", ac.UpdateIssueStatusAdmin)
	}
}
