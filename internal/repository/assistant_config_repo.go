package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/distriventas/dv_api/internal/models"
)

// AssistantConfigRepository handles the business assistant config singleton.
type AssistantConfigRepository struct {
	db *sqlx.DB
}

// NewAssistantConfigRepository creates a new AssistantConfigRepository.
func NewAssistantConfigRepository(db *sqlx.DB) *AssistantConfigRepository {
	return &AssistantConfigRepository{db: db}
}

// GetOrCreate returns the singleton row, inserting the defaults on first read.
func (r *AssistantConfigRepository) GetOrCreate() (*models.BusinessAssistantConfig, error) {
	var cfg models.BusinessAssistantConfig
	err := r.db.Get(&cfg, `SELECT * FROM assistant_config ORDER BY id LIMIT 1`)
	if err == nil {
		return &cfg, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	def := models.DefaultAssistantConfig()
	if err := r.insert(&def); err != nil {
		return nil, err
	}
	return &def, nil
}

// Replace overwrites the singleton with the provided values and refreshes
// updated_at, which serves as the config version.
func (r *AssistantConfigRepository) Replace(cfg *models.BusinessAssistantConfig) error {
	current, err := r.GetOrCreate()
	if err != nil {
		return err
	}
	cfg.ID = current.ID

	const q = `
        UPDATE assistant_config SET
            horizon_days = :horizon_days,
            recent_days = :recent_days,
            days_cover_low_threshold = :days_cover_low_threshold,
            buy_target_days = :buy_target_days,
            low_rotation_units_threshold = :low_rotation_units_threshold,
            high_stock_multiplier = :high_stock_multiplier,
            high_stock_min_units = :high_stock_min_units,
            trend_drop_threshold_pct = :trend_drop_threshold_pct,
            trend_growth_threshold_pct = :trend_growth_threshold_pct,
            min_units_for_growth = :min_units_for_growth,
            margin_low_threshold_pct = :margin_low_threshold_pct,
            target_margin_pct = :target_margin_pct,
            min_margin_after_discount_pct = :min_margin_after_discount_pct,
            price_above_category_pct = :price_above_category_pct,
            price_below_category_pct = :price_below_category_pct,
            decrease_price_pct = :decrease_price_pct,
            increase_price_pct = :increase_price_pct,
            cache_enabled = :cache_enabled,
            cache_ttl_seconds = :cache_ttl_seconds,
            updated_at = NOW()
        WHERE id = :id`

	if _, err := r.db.NamedExec(q, cfg); err != nil {
		return err
	}
	// Re-read to pick up the fresh updated_at (the version).
	fresh, err := r.GetOrCreate()
	if err != nil {
		return err
	}
	*cfg = *fresh
	return nil
}

func (r *AssistantConfigRepository) insert(cfg *models.BusinessAssistantConfig) error {
	const q = `
        INSERT INTO assistant_config (
            horizon_days, recent_days, days_cover_low_threshold, buy_target_days,
            low_rotation_units_threshold, high_stock_multiplier, high_stock_min_units,
            trend_drop_threshold_pct, trend_growth_threshold_pct, min_units_for_growth,
            margin_low_threshold_pct, target_margin_pct, min_margin_after_discount_pct,
            price_above_category_pct, price_below_category_pct,
            decrease_price_pct, increase_price_pct,
            cache_enabled, cache_ttl_seconds
        ) VALUES (
            :horizon_days, :recent_days, :days_cover_low_threshold, :buy_target_days,
            :low_rotation_units_threshold, :high_stock_multiplier, :high_stock_min_units,
            :trend_drop_threshold_pct, :trend_growth_threshold_pct, :min_units_for_growth,
            :margin_low_threshold_pct, :target_margin_pct, :min_margin_after_discount_pct,
            :price_above_category_pct, :price_below_category_pct,
            :decrease_price_pct, :increase_price_pct,
            :cache_enabled, :cache_ttl_seconds
        ) RETURNING id, updated_at`

	rows, err := r.db.NamedQuery(q, cfg)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&cfg.ID, &cfg.UpdatedAt)
	}
	return sql.ErrNoRows
}
