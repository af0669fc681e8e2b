package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/distriventas/dv_api/internal/cache"
	"github.com/distriventas/dv_api/internal/models"
)

// RecommendationService is the entry point of the recommendation-read path:
// cache gate in front, aggregation and rule evaluation behind it.
type RecommendationService struct {
	assistant *AssistantService
	configSvc *AssistantConfigService
	cache     cache.RecommendationCache
}

// NewRecommendationService constructs a RecommendationService.
func NewRecommendationService(assistant *AssistantService, configSvc *AssistantConfigService, recCache cache.RecommendationCache) *RecommendationService {
	if recCache == nil {
		recCache = cache.NoopRecommendationCache{}
	}
	return &RecommendationService{
		assistant: assistant,
		configSvc: configSvc,
		cache:     recCache,
	}
}

// GenerateResult pairs a payload with whether it came from the cache.
type GenerateResult struct {
	Payload  *models.RecommendationPayload
	CacheHit bool
}

// Generate produces the recommendation payload for the given parameters.
// With force set, the cache is neither read nor written. Cache backend
// failures degrade to recomputation, never to request failure.
func (s *RecommendationService) Generate(ctx context.Context, params models.RecommendationJobParams, force bool) (*GenerateResult, error) {
	cfg, err := s.configSvc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	useCache := cfg.CacheEnabled && !force
	var key string
	if useCache {
		key = s.cache.Key(ctx, cfg.UpdatedAt, params)
		if cached, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			return &GenerateResult{Payload: cached, CacheHit: true}, nil
		} else if err != nil {
			log.Warn().Err(err).Msg("Recommendation cache read failed, recomputing")
		}
	}

	payload, err := s.compute(ctx, params, &cfg)
	if err != nil {
		return nil, err
	}

	if useCache {
		ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
		if err := s.cache.Set(ctx, key, payload, ttl); err != nil {
			log.Warn().Err(err).Msg("Recommendation cache write failed")
		}
	}

	return &GenerateResult{Payload: payload, CacheHit: false}, nil
}

// Invalidate orphans every cached payload. Called after sale writes and
// config updates.
func (s *RecommendationService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("Recommendation cache invalidation failed")
	}
}

func (s *RecommendationService) compute(ctx context.Context, params models.RecommendationJobParams, cfg *models.BusinessAssistantConfig) (*models.RecommendationPayload, error) {
	now := time.Now()
	win, err := s.assistant.ResolveWindow(params, *cfg, now)
	if err != nil {
		return nil, err
	}

	aggregates, err := s.assistant.BuildAggregates(ctx, win, *cfg)
	if err != nil {
		return nil, err
	}

	recs := make([]models.ProductRecommendation, 0, len(aggregates))
	for i := range aggregates {
		recs = append(recs, EvaluateProduct(&aggregates[i], cfg))
	}

	// Most confident primary actions first.
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Primary.Confidence > recs[j].Primary.Confidence
	})

	return &models.RecommendationPayload{
		GeneratedAt: now,
		Window: models.RecommendationWindow{
			StartDate:   win.HorizonStart,
			EndDate:     win.HorizonEnd,
			HorizonDays: win.HorizonDays,
			RecentDays:  win.RecentDays,
		},
		Recommendations: recs,
	}, nil
}
