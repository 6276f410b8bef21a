package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrellis/bank-accounts/internal/core/ports/messaging"
	portsrepo "github.com/fintrellis/bank-accounts/internal/core/ports/repositories"
	"github.com/fintrellis/bank-accounts/internal/middleware"
)

// healthHandler exposes liveness and readiness probes.
type healthHandler struct {
	broker         messaging.Publisher
	outboxRepo     portsrepo.OutboxRepository
	readyThreshold int
}

// registerHealthRoutes registers the health probes at the root.
func registerHealthRoutes(r *gin.Engine, broker messaging.Publisher, outboxRepo portsrepo.OutboxRepository, readyThreshold int) {
	h := &healthHandler{broker: broker, outboxRepo: outboxRepo, readyThreshold: readyThreshold}

	r.GET("/healthz", h.liveness)
	r.GET("/readyz", h.readiness)
}

// liveness reports whether the broker connection is usable.
func (h *healthHandler) liveness(c *gin.Context) {
	if !h.broker.IsAlive() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "broker": "down"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readiness additionally requires the pending outbox backlog to stay under
// the configured threshold. An overflowing backlog means published effects
// are falling behind committed state.
func (h *healthHandler) readiness(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	if !h.broker.IsAlive() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "broker": "down"})
		return
	}

	pending, err := h.outboxRepo.PendingCount(c.Request.Context())
	if err != nil {
		logger.Error("Failed to count pending outbox messages", "error", err.Error())
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "outbox": "unavailable"})
		return
	}

	if pending >= int64(h.readyThreshold) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "pending_outbox": pending})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "pending_outbox": pending})
}
