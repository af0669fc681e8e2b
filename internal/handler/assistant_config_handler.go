package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/distriventas/dv_api/internal/models"
	"github.com/distriventas/dv_api/internal/service"
	"github.com/distriventas/dv_api/internal/utils"
)

// AssistantConfigHandler manages the business assistant configuration
// singleton.
type AssistantConfigHandler struct {
	configService *service.AssistantConfigService
}

// NewAssistantConfigHandler constructs an AssistantConfigHandler.
func NewAssistantConfigHandler(configService *service.AssistantConfigService) *AssistantConfigHandler {
	return &AssistantConfigHandler{configService: configService}
}

// GetConfig handles GET /business-assistant/config.
func (h *AssistantConfigHandler) GetConfig(c *gin.Context) {
	cfg, err := h.configService.Snapshot(c.Request.Context())
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to load configuration")
		return
	}
	utils.Success(c, 200, "Configuration retrieved successfully", cfg)
}

// UpdateConfig handles PUT /business-assistant/config. Out-of-range values
// are clamped to safe defaults rather than rejected.
func (h *AssistantConfigHandler) UpdateConfig(c *gin.Context) {
	var req models.BusinessAssistantConfig
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request format")
		return
	}

	cfg, err := h.configService.Update(c.Request.Context(), req)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to update configuration")
		return
	}
	utils.Success(c, 200, "Configuration updated successfully", cfg)
}
