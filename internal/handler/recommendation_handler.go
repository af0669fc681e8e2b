package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/distriventas/dv_api/internal/jobs"
	"github.com/distriventas/dv_api/internal/models"
	"github.com/distriventas/dv_api/internal/service"
	"github.com/distriventas/dv_api/internal/utils"
)

// RecommendationHandler exposes the business assistant recommendations, both
// synchronously and through background jobs.
type RecommendationHandler struct {
	recService *service.RecommendationService
	queue      jobs.Queue
}

// NewRecommendationHandler constructs a RecommendationHandler. queue may be
// nil when no background queue is configured.
func NewRecommendationHandler(recService *service.RecommendationService, queue jobs.Queue) *RecommendationHandler {
	return &RecommendationHandler{recService: recService, queue: queue}
}

// GetRecommendations handles GET /recommendations. The X-Cache response
// header reports HIT or MISS; force=1 bypasses the cache entirely.
func (h *RecommendationHandler) GetRecommendations(c *gin.Context) {
	params, err := parseRecommendationParams(c)
	if err != nil {
		utils.Error(c, 400, "INVALID_PARAMS", err.Error())
		return
	}
	force := c.Query("force") == "1" || c.Query("force") == "true"

	result, err := h.recService.Generate(c.Request.Context(), params, force)
	if err != nil {
		if err == utils.ErrInvalidWindow {
			utils.Error(c, 400, "INVALID_WINDOW", "startDate and endDate must both be set and exclude horizonDays")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to generate recommendations")
		return
	}

	if result.CacheHit {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	utils.Success(c, 200, "Recommendations generated successfully", result.Payload)
}

// CreateJob handles POST /recommendations/jobs.
func (h *RecommendationHandler) CreateJob(c *gin.Context) {
	if h.queue == nil {
		utils.Error(c, 422, "QUEUE_NOT_CONFIGURED", "Background job queue is not configured")
		return
	}

	params, err := parseRecommendationParams(c)
	if err != nil {
		utils.Error(c, 400, "INVALID_PARAMS", err.Error())
		return
	}

	job, err := h.queue.Enqueue(c.Request.Context(), params)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to enqueue job")
		return
	}
	utils.Success(c, 202, "Job enqueued", gin.H{"jobId": job.ID, "status": job.Status})
}

// GetJob handles GET /recommendations/jobs/:id.
func (h *RecommendationHandler) GetJob(c *gin.Context) {
	if h.queue == nil {
		utils.Error(c, 422, "QUEUE_NOT_CONFIGURED", "Background job queue is not configured")
		return
	}

	job, err := h.queue.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to load job")
		return
	}
	if job == nil {
		utils.Error(c, 404, "JOB_NOT_FOUND", "Job not found")
		return
	}
	utils.Success(c, 200, "Job retrieved successfully", job)
}

// parseRecommendationParams reads the shared query parameters of the
// synchronous and asynchronous endpoints.
func parseRecommendationParams(c *gin.Context) (models.RecommendationJobParams, error) {
	params := models.RecommendationJobParams{}

	if v := c.Query("horizonDays"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return params, errors.New("horizonDays must be a positive integer")
		}
		params.HorizonDays = n
	}
	if v := c.Query("recentDays"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return params, errors.New("recentDays must be a positive integer")
		}
		params.RecentDays = n
	}
	if v := c.Query("startDate"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return params, errors.New("startDate must be YYYY-MM-DD")
		}
		params.StartDate = &t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return params, errors.New("endDate must be YYYY-MM-DD")
		}
		params.EndDate = &t
	}

	return params, nil
}
