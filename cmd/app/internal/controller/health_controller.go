package controller

import (
	"context"
	"net/http"
	"time"

	"okurmen-backend/utilities"

	"github.com/gin-gonic/gin"
)

// pingTimeout bounds the store check of one health request.
const pingTimeout = 2 * time.Second

type HealthController struct {
	Ping    func(ctx context.Context) error
	Started time.Time
}

func NewHealthController(ping func(ctx context.Context) error, started time.Time) *HealthController {
	return &HealthController{Ping: ping, Started: started}
}

// Health reports 200 only when the store answers.
func (hc *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	now := time.Now()
	body := gin.H{
		"timestamp": now.UTC().Format(time.RFC3339Nano),
		"uptime":    now.Sub(hc.Started).Seconds(),
	}
	if err := hc.Ping(ctx); err != nil {
		utilities.Warn("health check failed: %v", err)
		body["status"] = "unavailable"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "ok"
	c.JSON(http.StatusOK, body)
}

// APIStatus answers the plain liveness probe under /api/test.
func (hc *HealthController) APIStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "API is working!",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}
