package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/distriventas/dv_api/internal/cache"
	"github.com/distriventas/dv_api/internal/models"
)

// AssistantConfigStore is the persistence seam for the config singleton.
type AssistantConfigStore interface {
	GetOrCreate() (*models.BusinessAssistantConfig, error)
	Replace(cfg *models.BusinessAssistantConfig) error
}

// AssistantConfigService provides versioned snapshots of the business
// assistant configuration. The singleton is read on almost every request and
// written rarely, so snapshots are served from an in-process cache with a
// short TTL; the snapshot is never trusted past that TTL after a write.
// UpdatedAt on the snapshot is the version that recommendation cache keys
// embed, so a config change makes every older key unreachable.
type AssistantConfigService struct {
	repo     AssistantConfigStore
	recCache cache.RecommendationCache
	ttl      time.Duration

	mu        sync.RWMutex
	snapshot  *models.BusinessAssistantConfig
	fetchedAt time.Time
}

// NewAssistantConfigService constructs an AssistantConfigService.
func NewAssistantConfigService(repo AssistantConfigStore, recCache cache.RecommendationCache, snapshotTTL time.Duration) *AssistantConfigService {
	if snapshotTTL <= 0 {
		snapshotTTL = 5 * time.Second
	}
	return &AssistantConfigService{
		repo:     repo,
		recCache: recCache,
		ttl:      snapshotTTL,
	}
}

// Snapshot returns the current configuration, sanitized, serving from the
// in-process cache when fresh.
func (s *AssistantConfigService) Snapshot(ctx context.Context) (models.BusinessAssistantConfig, error) {
	s.mu.RLock()
	if s.snapshot != nil && time.Since(s.fetchedAt) < s.ttl {
		cfg := *s.snapshot
		s.mu.RUnlock()
		return cfg, nil
	}
	s.mu.RUnlock()

	cfg, err := s.repo.GetOrCreate()
	if err != nil {
		return models.BusinessAssistantConfig{}, err
	}
	cfg.Sanitize()

	s.mu.Lock()
	s.snapshot = cfg
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	return *cfg, nil
}

// Update replaces the configuration, refreshes the snapshot and invalidates
// every cached recommendation derived from the previous version.
func (s *AssistantConfigService) Update(ctx context.Context, cfg models.BusinessAssistantConfig) (models.BusinessAssistantConfig, error) {
	cfg.Sanitize()

	if err := s.repo.Replace(&cfg); err != nil {
		return models.BusinessAssistantConfig{}, err
	}

	s.mu.Lock()
	s.snapshot = &cfg
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	if err := s.recCache.Invalidate(ctx); err != nil {
		// The new version in every key already orphans old entries; the bump
		// failing only delays eviction.
		log.Warn().Err(err).Msg("Recommendation cache invalidation failed after config update")
	}

	log.Info().Time("version", cfg.UpdatedAt).Msg("Business assistant config updated")
	return cfg, nil
}
