package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/distriventas/dv_api/internal/models"
	"github.com/distriventas/dv_api/internal/service"
	"github.com/distriventas/dv_api/internal/utils"
)

// AuthMiddleware handles distributor API key authentication.
type AuthMiddleware struct {
	authService *service.AuthService
}

// NewAuthMiddleware constructs a new AuthMiddleware.
func NewAuthMiddleware(authService *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Handle returns a Gin middleware function that enforces authentication.
func (m *AuthMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			m.handleAuthError(c, "INVALID_TOKEN", "Missing or invalid authorization header")
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		distributor, err := m.authService.Authenticate(token)
		if err != nil || distributor == nil {
			m.handleAuthError(c, "INVALID_TOKEN", "Invalid API token")
			return
		}
		if !distributor.IsActive {
			m.handleAuthError(c, "INVALID_DISTRIBUTOR", "Distributor is not active")
			return
		}

		c.Set("distributor", distributor)
		c.Set("distributor_id", distributor.ID)

		c.Next()
	}
}

func (m *AuthMiddleware) handleAuthError(c *gin.Context, code, message string) {
	utils.Error(c, 401, code, message)
	c.Abort()
}

// GetDistributor returns the authenticated distributor from context.
func GetDistributor(c *gin.Context) *models.Distributor {
	v, _ := c.Get("distributor")
	if v == nil {
		return nil
	}
	return v.(*models.Distributor)
}
