package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/distriventas/dv_api/internal/service"
	"github.com/distriventas/dv_api/internal/utils"
)

// DistributorHandler is the admin surface of the distributor registry.
type DistributorHandler struct {
	distributorService *service.DistributorService
}

// NewDistributorHandler constructs a DistributorHandler.
func NewDistributorHandler(distributorService *service.DistributorService) *DistributorHandler {
	return &DistributorHandler{distributorService: distributorService}
}

// CreateDistributor handles POST /admin/distributors. The API key appears
// only in this response.
func (h *DistributorHandler) CreateDistributor(c *gin.Context) {
	var req service.CreateDistributorInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request format")
		return
	}

	d, err := h.distributorService.Create(req)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to create distributor")
		return
	}
	utils.Success(c, 201, "Distributor created successfully", d)
}

// GetDistributor handles GET /admin/distributors/:id.
func (h *DistributorHandler) GetDistributor(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Invalid distributor ID")
		return
	}

	d, err := h.distributorService.Get(id)
	if err != nil {
		if err == utils.ErrDistributorNotFound {
			utils.Error(c, 404, "DISTRIBUTOR_NOT_FOUND", "Distributor not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve distributor")
		return
	}
	utils.Success(c, 200, "Distributor retrieved successfully", d)
}

// ListDistributors handles GET /admin/distributors.
func (h *DistributorHandler) ListDistributors(c *gin.Context) {
	out, err := h.distributorService.List()
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve distributors")
		return
	}
	utils.Success(c, 200, "Distributors retrieved successfully", out)
}

// RegenerateKey handles POST /admin/distributors/:id/regenerate-key.
func (h *DistributorHandler) RegenerateKey(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Invalid distributor ID")
		return
	}

	apiKey, err := h.distributorService.RegenerateKey(id)
	if err != nil {
		if err == utils.ErrDistributorNotFound {
			utils.Error(c, 404, "DISTRIBUTOR_NOT_FOUND", "Distributor not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to regenerate API key")
		return
	}
	utils.Success(c, 200, "API key regenerated successfully", gin.H{"apiKey": apiKey})
}
