package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/distriventas/dv_api/internal/config"
	"github.com/distriventas/dv_api/internal/models"
	"github.com/distriventas/dv_api/internal/utils"
)

// RankingSaleStore is the slice of the sales ledger the resolver reads.
type RankingSaleStore interface {
	AggregateDistributorRevenue(from, to time.Time) ([]models.RankingEntry, error)
}

// RankingService resolves period boundaries and the revenue ranking of
// distributors inside a period, and maps rank positions to commission tiers.
// It is a pure read-then-compute component: no state is kept between calls,
// so two concurrent resolutions may see slightly different rankings while
// sales are being confirmed. Each sale's commission is fixed at write time,
// which makes that acceptable.
type RankingService struct {
	sales   RankingSaleStore
	ranking config.RankingConfig
}

// NewRankingService constructs a RankingService.
func NewRankingService(sales RankingSaleStore, ranking config.RankingConfig) *RankingService {
	return &RankingService{sales: sales, ranking: ranking}
}

// DefaultTier is the commission tier for unranked distributors and positions
// four and below.
func DefaultTier() models.CommissionTier {
	return models.CommissionTier{DistributorProfitPct: 20, CommissionBonusPct: 0}
}

// TierForPosition maps a 1-based ranking position to its commission tier.
// The table is fixed; it does not scale with the number of participants.
func TierForPosition(position int) models.CommissionTier {
	switch position {
	case 1:
		return models.CommissionTier{DistributorProfitPct: 25, CommissionBonusPct: 5}
	case 2:
		return models.CommissionTier{DistributorProfitPct: 23, CommissionBonusPct: 3}
	case 3:
		return models.CommissionTier{DistributorProfitPct: 21, CommissionBonusPct: 1}
	default:
		return DefaultTier()
	}
}

// ResolvePeriod computes the canonical boundaries of the period containing
// asOf. The end boundary is inclusive (last millisecond of the period).
func (s *RankingService) ResolvePeriod(asOf time.Time, periodType models.PeriodType, customDays int) (time.Time, time.Time, error) {
	loc := asOf.Location()
	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, loc)

	switch periodType {
	case models.PeriodDaily:
		return day, endOf(day.AddDate(0, 0, 1)), nil

	case models.PeriodWeekly:
		// Sunday 00:00:00 through Saturday 23:59:59.999.
		start := day.AddDate(0, 0, -int(day.Weekday()))
		return start, endOf(start.AddDate(0, 0, 7)), nil

	case models.PeriodBiweekly:
		// Floor the day distance to the anchor into 15-day buckets. Floor
		// division (not truncation) keeps back-dated recalculation correct
		// for dates before the anchor.
		anchor := s.ranking.BiweeklyAnchor.In(loc)
		anchorDay := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, loc)
		bucket := floorDiv(daysBetween(anchorDay, day), 15)
		start := anchorDay.AddDate(0, 0, bucket*15)
		return start, endOf(start.AddDate(0, 0, 15)), nil

	case models.PeriodMonthly:
		start := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, loc)
		return start, endOf(start.AddDate(0, 1, 0)), nil

	case models.PeriodCustom:
		if customDays <= 0 {
			customDays = s.ranking.CustomPeriodDays
		}
		if customDays <= 0 {
			return time.Time{}, time.Time{}, utils.ErrInvalidPeriodType
		}
		// Trailing window of customDays ending at asOf.
		return asOf.AddDate(0, 0, -customDays), asOf, nil

	default:
		return time.Time{}, time.Time{}, utils.ErrInvalidPeriodType
	}
}

// ComputeRanking aggregates confirmed distributor sales inside the period
// containing asOf and returns the ordered ranking with tiers attached.
// Revenue ties keep storage order; there is no secondary sort key.
func (s *RankingService) ComputeRanking(ctx context.Context, asOf time.Time, periodType models.PeriodType, customDays int) (*models.RankingPeriod, error) {
	start, end, err := s.ResolvePeriod(asOf, periodType, customDays)
	if err != nil {
		return nil, err
	}

	entries, err := s.sales.AggregateDistributorRevenue(start, end)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].Position = i + 1
		entries[i].Tier = TierForPosition(i + 1)
	}

	return &models.RankingPeriod{
		PeriodType: periodType,
		StartDate:  start,
		EndDate:    end,
		Entries:    entries,
	}, nil
}

// ResolveTier returns the commission tier a distributor holds at asOf under
// the configured periodicity. Distributors with no confirmed sales in the
// period are absent from the ranking and get the default tier.
func (s *RankingService) ResolveTier(ctx context.Context, distributorID int, asOf time.Time) (models.CommissionTier, error) {
	period, err := s.ComputeRanking(ctx, asOf, models.PeriodType(s.ranking.PeriodType), s.ranking.CustomPeriodDays)
	if err != nil {
		return models.CommissionTier{}, err
	}

	for _, e := range period.Entries {
		if e.DistributorID == distributorID {
			return e.Tier, nil
		}
	}

	log.Debug().
		Int("distributor_id", distributorID).
		Time("as_of", asOf).
		Msg("Distributor unranked in period, using default tier")
	return DefaultTier(), nil
}

// endOf turns an exclusive next-period start into an inclusive end boundary.
func endOf(nextStart time.Time) time.Time {
	return nextStart.Add(-time.Millisecond)
}

// daysBetween counts calendar days from a to b. Both are re-projected onto
// UTC midnights first so DST-shortened or -lengthened days cannot skew the
// count.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
