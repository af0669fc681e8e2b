package handler

import (
	"database/sql"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/distriventas/dv_api/internal/repository"
	"github.com/distriventas/dv_api/internal/utils"
)

// ProductHandler exposes the product catalog.
type ProductHandler struct {
	productRepo *repository.ProductRepository
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(productRepo *repository.ProductRepository) *ProductHandler {
	return &ProductHandler{productRepo: productRepo}
}

// GetProducts handles GET /products with optional category, search and
// pagination.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	page := 1
	limit := 20
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	products, total, err := h.productRepo.GetAllPaged(c.Query("category"), c.Query("search"), page, limit)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve products")
		return
	}
	utils.SuccessWithPagination(c, 200, "Products retrieved successfully", products, page, limit, total)
}

// GetProduct handles GET /products/:id.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Invalid product ID")
		return
	}

	product, err := h.productRepo.GetByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve product")
		return
	}
	utils.Success(c, 200, "Product retrieved successfully", product)
}

// GetCategories handles GET /products/categories.
func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.productRepo.GetDistinctCategories()
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve categories")
		return
	}
	utils.Success(c, 200, "Categories retrieved successfully", categories)
}
