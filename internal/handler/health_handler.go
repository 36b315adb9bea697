package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/preschool-adp-api/internal/service"
	"github.com/noah-isme/preschool-adp-api/pkg/response"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler exposes observability endpoints.
type HealthHandler struct {
	metrics *service.MetricsService
	db      Pinger
	cache   CachePinger
}

// CachePinger reports whether the cache backend is reachable.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// NewHealthHandler constructs the handler. db and cache may be nil.
func NewHealthHandler(metrics *service.MetricsService, db Pinger, cache CachePinger) *HealthHandler {
	return &HealthHandler{metrics: metrics, db: db, cache: cache}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *HealthHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Summary returns the aggregated counters as JSON.
func (h *HealthHandler) Summary(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}

// Health responds with a generic OK payload for liveness probes.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready checks the database before reporting ready. An unreachable cache
// only degrades the report since option reads fall back to the store.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	body := gin.H{"status": "ready", "cache": "ok"}
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			body["cache"] = "degraded"
		}
	}
	c.JSON(http.StatusOK, body)
}
