package service

import (
	"database/sql"

	"github.com/distriventas/dv_api/internal/models"
	"github.com/distriventas/dv_api/internal/utils"
)

// AuthDistributorStore resolves distributors by API key.
type AuthDistributorStore interface {
	GetByAPIKey(apiKey string) (*models.Distributor, error)
}

// AuthService authenticates distributors on the sale-write endpoints.
type AuthService struct {
	distributors AuthDistributorStore
}

// NewAuthService constructs an AuthService.
func NewAuthService(distributors AuthDistributorStore) *AuthService {
	return &AuthService{distributors: distributors}
}

// Authenticate returns the active distributor owning the API key.
func (s *AuthService) Authenticate(apiKey string) (*models.Distributor, error) {
	if apiKey == "" {
		return nil, utils.ErrInvalidDistributor
	}
	d, err := s.distributors.GetByAPIKey(apiKey)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrInvalidDistributor
		}
		return nil, err
	}
	return d, nil
}
