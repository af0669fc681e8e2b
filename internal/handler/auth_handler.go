package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/distriventas/dv_api/internal/service"
	"github.com/distriventas/dv_api/internal/utils"
)

// AuthHandler authenticates admin panel users.
type AuthHandler struct {
	authService *service.AdminAuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(authService *service.AdminAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Email and password are required")
		return
	}

	token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		utils.Error(c, 401, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}
	utils.Success(c, 200, "Login successful", gin.H{"token": token})
}
