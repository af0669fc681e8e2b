package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/distriventas/dv_api/internal/cache"
	"github.com/distriventas/dv_api/internal/utils"
)

// HealthHandler reports service liveness and dependency status.
type HealthHandler struct {
	db    *sqlx.DB
	redis *cache.RedisClient
}

// NewHealthHandler constructs a HealthHandler. redis may be nil when the
// service runs without a cache backend.
func NewHealthHandler(db *sqlx.DB, redis *cache.RedisClient) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	status := gin.H{
		"status": "ok",
		"time":   time.Now().UTC(),
	}

	if err := h.db.PingContext(c.Request.Context()); err != nil {
		status["status"] = "degraded"
		status["database"] = "unreachable"
	} else {
		status["database"] = "ok"
	}

	if h.redis == nil {
		status["cache"] = "disabled"
	} else if err := h.redis.Client().Ping(c.Request.Context()).Err(); err != nil {
		status["cache"] = "unreachable"
	} else {
		status["cache"] = "ok"
	}

	utils.Success(c, 200, "Service health", status)
}
