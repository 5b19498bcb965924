package routes

import (
	"log/slog"
	"net/http"
	"time"

	"infrasense-be/controllers"
	"infrasense-be/middlewares"
	"infrasense-be/services"
	"infrasense-be/store"
	"infrasense-be/uploads"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Store     store.IssueStore
	Issues    *services.IssueService
	Stats     *services.StatsService
	Images    *uploads.Store
	Limiter   middlewares.Limiter
	JWTSecret string
	Logger    *slog.Logger
}

// NewRouter wires middleware, static image serving and every route.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = d.Images.MaxBytes() + 1<<20
	r.Use(gin.Recovery(), middlewares.RequestLogger(d.Logger), cors.New(corsConfig()))

	r.Static("/images", d.Images.Dir())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "InfraSense Backend is running")
	})
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	ic := controllers.NewIssueController(d.Issues, d.Images, d.Logger)
	ac := controllers.NewAdminController(ic, d.Stats)
	auth := middlewares.AuthMiddleware(d.JWTSecret)

	api := r.Group("/api")
	api.GET("/health", controllers.Health(d.Store))
	IssueRoutes(api, ic, auth, d.Limiter)
	AdminRoutes(api, ac, auth)

	return r
}

// corsConfig reflects any origin with credentials, as browser clients on
// arbitrary hosts sign requests with the Authorization header.
func corsConfig() cors.Config {
	return cors.Config{
		AllowOriginFunc:  func(string) bool { return true },
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middlewares.RequestIDHeader},
		ExposeHeaders:    []string{middlewares.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}
