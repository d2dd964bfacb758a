package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizlink-backend/internal/response"
)

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

// SystemHandler serves liveness information.
type SystemHandler struct {
	checks map[string]Pinger
}

// NewSystemHandler creates a new SystemHandler. checks are keyed by dependency name.
func NewSystemHandler(checks map[string]Pinger) *SystemHandler {
	return &SystemHandler{checks: checks}
}

// Health godoc
// GET /health
// Returns 503 when any dependency fails its ping.
func (h *SystemHandler) Health(c *gin.Context) {
	deps := make(map[string]string, len(h.checks))
	status := http.StatusOK
	for name, ping := range h.checks {
		if err := ping(c.Request.Context()); err != nil {
			zerolog.Ctx(c.Request.Context()).Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			deps[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	response.Success(c, status, gin.H{"status": overall, "dependencies": deps})
}
