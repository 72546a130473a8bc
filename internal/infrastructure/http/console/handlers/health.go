package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"autogest/internal/core/apperror"
	"autogest/internal/domain/session"
)

// BackendProbe checks the rental backend.
type BackendProbe interface {
	Ping(ctx context.Context) error
	BreakerState() string
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	store   session.Store
	backend BackendProbe
	app     string
	version string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(store session.Store, backend BackendProbe, app, version string) *HealthHandler {
	return &HealthHandler{
		store:   store,
		backend: backend,
		app:     app,
		version: version,
	}
}

// Live handles liveness probe.
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready reports whether session bootstrap has completed.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.store.Loaded() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": map[string]string{
				"session": "loading",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{
			"session": "loaded",
		},
	})
}

// Backend probes the rental backend, like the connection test page.
// GET /health/backend
func (h *HealthHandler) Backend(c *gin.Context) {
	err := h.backend.Ping(c.Request.Context())
	if err != nil {
		body := gin.H{
			"status":  "error",
			"app":     h.app,
			"version": h.version,
			"breaker": h.backend.BreakerState(),
			"error":   err.Error(),
		}
		if appErr, ok := apperror.AsAppError(err); ok {
			body["error"] = appErr.Message
			body["code"] = appErr.Code
			body["details"] = appErr.Details
		}
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"app":     h.app,
		"version": h.version,
		"breaker": h.backend.BreakerState(),
	})
}
