package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var startedAt = time.Now()

// HealthCheck reports liveness for the funding portal, including how long the
// process has been up. Load balancers and the frontend's connectivity banner
// both poll this endpoint.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "funding-portal-api",
		"uptime":    time.Since(startedAt).Round(time.Second).String(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
