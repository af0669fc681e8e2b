package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/distriventas/dv_api/internal/repository"
	"github.com/distriventas/dv_api/internal/service"
	"github.com/distriventas/dv_api/internal/utils"
)

// SaleHandler exposes the sale ledger: registration, listing and the admin
// repair endpoints.
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler constructs a SaleHandler.
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// CreateSale handles POST /sales on the distributor surface. The sale is
// always attributed to the authenticated distributor.
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req service.CreateSaleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request format")
		return
	}

	distributorID, exists := c.Get("distributor_id")
	if !exists {
		utils.Error(c, 401, "UNAUTHORIZED", "Distributor not authenticated")
		return
	}
	id := distributorID.(int)
	req.DistributorID = &id

	h.createSale(c, req)
}

// CreateAdminSale handles POST /admin/sales. A null distributorId registers a
// house sale.
func (h *SaleHandler) CreateAdminSale(c *gin.Context) {
	var req service.CreateSaleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request format")
		return
	}
	h.createSale(c, req)
}

func (h *SaleHandler) createSale(c *gin.Context, req service.CreateSaleInput) {
	sale, err := h.saleService.CreateSale(c.Request.Context(), req)
	if err != nil {
		switch err {
		case utils.ErrInvalidQuantity:
			utils.Error(c, 400, "INVALID_QUANTITY", "Quantity must be at least 1")
		case utils.ErrProductNotFound:
			utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
		case utils.ErrDistributorNotFound:
			utils.Error(c, 404, "DISTRIBUTOR_NOT_FOUND", "Distributor not found")
		default:
			utils.Error(c, 500, "INTERNAL_ERROR", "Failed to register sale")
		}
		return
	}
	utils.Success(c, 201, "Sale registered successfully", sale)
}

// GetSale handles GET /sales/:id. A distributor may only read its own sales.
func (h *SaleHandler) GetSale(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Invalid sale ID")
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		if err == utils.ErrSaleNotFound {
			utils.Error(c, 404, "SALE_NOT_FOUND", "Sale not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve sale")
		return
	}

	if distributorID, exists := c.Get("distributor_id"); exists {
		if sale.DistributorID == nil || *sale.DistributorID != distributorID.(int) {
			utils.Error(c, 404, "SALE_NOT_FOUND", "Sale not found")
			return
		}
	}

	utils.Success(c, 200, "Sale retrieved successfully", sale)
}

// ListSales handles GET /sales. On the distributor surface the filter is
// pinned to the authenticated distributor.
func (h *SaleHandler) ListSales(c *gin.Context) {
	filter := parseSaleFilter(c)

	if distributorID, exists := c.Get("distributor_id"); exists {
		id := distributorID.(int)
		filter.DistributorID = &id
	}

	sales, total, err := h.saleService.ListSales(c.Request.Context(), filter)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve sales")
		return
	}
	utils.SuccessWithPagination(c, 200, "Sales retrieved successfully", sales, filter.Page, filter.Limit, total)
}

// RecomputeSale handles POST /admin/sales/:id/recompute.
func (h *SaleHandler) RecomputeSale(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Invalid sale ID")
		return
	}

	sale, err := h.saleService.RecomputeSale(c.Request.Context(), id)
	if err != nil {
		if err == utils.ErrSaleNotFound {
			utils.Error(c, 404, "SALE_NOT_FOUND", "Sale not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to recompute sale")
		return
	}
	utils.Success(c, 200, "Sale recomputed successfully", sale)
}

// VerifyIntegrity handles GET /admin/sales/integrity.
func (h *SaleHandler) VerifyIntegrity(c *gin.Context) {
	violations, err := h.saleService.VerifyIntegrity(c.Request.Context())
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Integrity check failed")
		return
	}
	utils.Success(c, 200, "Integrity check completed", gin.H{
		"violations": violations,
		"count":      len(violations),
	})
}

func parseSaleFilter(c *gin.Context) *repository.SaleFilter {
	filter := &repository.SaleFilter{Page: 1, Limit: 20}

	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Page = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			filter.Limit = n
		}
	}
	if v := c.Query("distributorId"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.DistributorID = &n
		}
	}
	if v := c.Query("productId"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.ProductID = &n
		}
	}
	if v := c.Query("paymentStatus"); v != "" {
		filter.PaymentStatus = v
	}
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.From = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.To = &t
		}
	}

	return filter
}
