package controllers

import (
	"net/http"

	"infrasense-be/store"

	"github.com/gin-gonic/gin"
)

// Health reports liveness and whether submissions are being persisted.
func Health(s store.IssueStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		database := "connected"
		if !s.Persistent() {
			database = "mock"
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "API is working", "database": database})
	}
}
