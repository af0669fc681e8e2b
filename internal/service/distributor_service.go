package service

import (
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/distriventas/dv_api/internal/models"
	"github.com/distriventas/dv_api/internal/repository"
	"github.com/distriventas/dv_api/internal/utils"
)

// DistributorService manages the distributor registry and API keys.
type DistributorService struct {
	repo *repository.DistributorRepository
}

// NewDistributorService constructs a DistributorService.
func NewDistributorService(repo *repository.DistributorRepository) *DistributorService {
	return &DistributorService{repo: repo}
}

// CreateDistributorInput is the admin payload for registering a distributor.
type CreateDistributorInput struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

// Create registers a distributor and generates its API key. The key is
// returned once in the creation response.
func (s *DistributorService) Create(in CreateDistributorInput) (*models.Distributor, error) {
	apiKey, err := utils.GenerateDistributorKey()
	if err != nil {
		return nil, err
	}

	d := &models.Distributor{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		APIKey:   apiKey,
		IsActive: true,
	}
	if err := s.repo.Create(d); err != nil {
		return nil, err
	}

	log.Info().Int("distributor_id", d.ID).Str("email", d.Email).Msg("Distributor registered")
	return d, nil
}

// Get returns a distributor without its API key.
func (s *DistributorService) Get(id int) (*models.Distributor, error) {
	d, err := s.repo.GetByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrDistributorNotFound
		}
		return nil, err
	}
	d.APIKey = ""
	return d, nil
}

// List returns all distributors without their API keys.
func (s *DistributorService) List() ([]models.Distributor, error) {
	out, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].APIKey = ""
	}
	return out, nil
}

// RegenerateKey replaces a distributor's API key and returns the new key.
func (s *DistributorService) RegenerateKey(id int) (string, error) {
	apiKey, err := utils.GenerateDistributorKey()
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdateAPIKey(id, apiKey); err != nil {
		if err == sql.ErrNoRows {
			return "", utils.ErrDistributorNotFound
		}
		return "", err
	}

	log.Info().Int("distributor_id", id).Msg("Distributor API key regenerated")
	return apiKey, nil
}
