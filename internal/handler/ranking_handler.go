package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/distriventas/dv_api/internal/config"
	"github.com/distriventas/dv_api/internal/models"
	"github.com/distriventas/dv_api/internal/service"
	"github.com/distriventas/dv_api/internal/utils"
)

// RankingHandler exposes the distributor revenue ranking.
type RankingHandler struct {
	rankingService *service.RankingService
	ranking        config.RankingConfig
}

// NewRankingHandler constructs a RankingHandler.
func NewRankingHandler(rankingService *service.RankingService, ranking config.RankingConfig) *RankingHandler {
	return &RankingHandler{rankingService: rankingService, ranking: ranking}
}

// GetRanking handles GET /ranking. periodType and asOfDate default to the
// configured periodicity and the current time.
func (h *RankingHandler) GetRanking(c *gin.Context) {
	periodType := models.PeriodType(h.ranking.PeriodType)
	if v := c.Query("periodType"); v != "" {
		periodType = models.PeriodType(v)
	}

	asOf := time.Now()
	if v := c.Query("asOfDate"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			utils.Error(c, 400, "INVALID_DATE", "asOfDate must be YYYY-MM-DD")
			return
		}
		asOf = t
	}

	customDays := 0
	if v := c.Query("customDays"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			utils.Error(c, 400, "INVALID_PERIOD", "customDays must be a positive integer")
			return
		}
		customDays = n
	}

	period, err := h.rankingService.ComputeRanking(c.Request.Context(), asOf, periodType, customDays)
	if err != nil {
		if err == utils.ErrInvalidPeriodType {
			utils.Error(c, 400, "INVALID_PERIOD", "Unknown period type")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to compute ranking")
		return
	}
	utils.Success(c, 200, "Ranking computed successfully", period)
}
