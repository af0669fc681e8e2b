package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distriventas/dv_api/internal/config"
	"github.com/distriventas/dv_api/internal/models"
	"github.com/distriventas/dv_api/internal/utils"
)

type fakeRankingStore struct {
	entries []models.RankingEntry
	lastFom time.Time
	lastTo  time.Time
	calls   int
}

func (f *fakeRankingStore) AggregateDistributorRevenue(from, to time.Time) ([]models.RankingEntry, error) {
	f.lastFom = from
	f.lastTo = to
	f.calls++
	out := make([]models.RankingEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func newTestRankingService(store *fakeRankingStore) *RankingService {
	anchor := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return NewRankingService(store, config.RankingConfig{
		PeriodType:       "monthly",
		BiweeklyAnchor:   anchor,
		CustomPeriodDays: 15,
	})
}

func TestTierForPosition(t *testing.T) {
	assert.Equal(t, models.CommissionTier{DistributorProfitPct: 25, CommissionBonusPct: 5}, TierForPosition(1))
	assert.Equal(t, models.CommissionTier{DistributorProfitPct: 23, CommissionBonusPct: 3}, TierForPosition(2))
	assert.Equal(t, models.CommissionTier{DistributorProfitPct: 21, CommissionBonusPct: 1}, TierForPosition(3))
	assert.Equal(t, DefaultTier(), TierForPosition(4))
	assert.Equal(t, DefaultTier(), TierForPosition(100))
}

func TestResolvePeriodDaily(t *testing.T) {
	svc := newTestRankingService(&fakeRankingStore{})
	asOf := time.Date(2025, 6, 15, 17, 42, 3, 0, time.UTC)

	start, end, err := svc.ResolvePeriod(asOf, models.PeriodDaily, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 6, 15, 23, 59, 59, 999000000, time.UTC), end)
}

func TestResolvePeriodWeeklySundayStart(t *testing.T) {
	svc := newTestRankingService(&fakeRankingStore{})
	// 2025-06-18 is a Wednesday; the containing week starts Sunday 06-15.
	asOf := time.Date(2025, 6, 18, 9, 0, 0, 0, time.UTC)

	start, end, err := svc.ResolvePeriod(asOf, models.PeriodWeekly, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 6, 21, 23, 59, 59, 999000000, time.UTC), end)

	// A Sunday belongs to the week it opens.
	start2, _, err := svc.ResolvePeriod(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), models.PeriodWeekly, 0)
	require.NoError(t, err)
	assert.Equal(t, start, start2)
}

func TestResolvePeriodBiweeklyBuckets(t *testing.T) {
	svc := newTestRankingService(&fakeRankingStore{})

	// Anchor day itself opens bucket zero.
	start, end, err := svc.ResolvePeriod(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), models.PeriodBiweekly, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 1, 15, 23, 59, 59, 999000000, time.UTC), end)

	// Day 15 after the anchor rolls into the next bucket.
	start, _, err = svc.ResolvePeriod(time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), models.PeriodBiweekly, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), start)

	// Dates before the anchor land in negative buckets, not the first one.
	start, end, err = svc.ResolvePeriod(time.Date(2023, 12, 20, 8, 0, 0, 0, time.UTC), models.PeriodBiweekly, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 12, 17, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2023, 12, 31, 23, 59, 59, 999000000, time.UTC), end)
}

func TestResolvePeriodBiweeklyAcrossDSTChange(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2024-03-09 is sixteen calendar days before the anchor, but the
	// spring-forward on 03-10 makes the wall-clock distance 15d23h. The
	// bucket must follow calendar days, placing the date inside
	// [02-24, 03-09] rather than in the bucket that opens on 03-10.
	svc := NewRankingService(&fakeRankingStore{}, config.RankingConfig{
		PeriodType:     "biweekly",
		BiweeklyAnchor: time.Date(2024, 3, 25, 0, 0, 0, 0, loc),
	})
	start, end, err := svc.ResolvePeriod(time.Date(2024, 3, 9, 12, 0, 0, 0, loc), models.PeriodBiweekly, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 24, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2024, 3, 9, 23, 59, 59, 999000000, loc), end)

	// Forward direction: fifteen calendar days after the anchor opens the
	// second bucket even when an hour was lost in between.
	svc = NewRankingService(&fakeRankingStore{}, config.RankingConfig{
		PeriodType:     "biweekly",
		BiweeklyAnchor: time.Date(2024, 3, 1, 0, 0, 0, 0, loc),
	})
	start, _, err = svc.ResolvePeriod(time.Date(2024, 3, 16, 8, 0, 0, 0, loc), models.PeriodBiweekly, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, loc), start)
}

func TestResolvePeriodMonthly(t *testing.T) {
	svc := newTestRankingService(&fakeRankingStore{})

	start, end, err := svc.ResolvePeriod(time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), models.PeriodMonthly, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 2, 28, 23, 59, 59, 999000000, time.UTC), end)
}

func TestResolvePeriodCustomTrailingWindow(t *testing.T) {
	svc := newTestRankingService(&fakeRankingStore{})
	asOf := time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC)

	start, end, err := svc.ResolvePeriod(asOf, models.PeriodCustom, 10)
	require.NoError(t, err)
	assert.Equal(t, asOf.AddDate(0, 0, -10), start)
	assert.Equal(t, asOf, end)

	// Zero days falls back to the configured default (15).
	start, _, err = svc.ResolvePeriod(asOf, models.PeriodCustom, 0)
	require.NoError(t, err)
	assert.Equal(t, asOf.AddDate(0, 0, -15), start)
}

func TestResolvePeriodUnknownType(t *testing.T) {
	svc := newTestRankingService(&fakeRankingStore{})
	_, _, err := svc.ResolvePeriod(time.Now(), models.PeriodType("hourly"), 0)
	assert.ErrorIs(t, err, utils.ErrInvalidPeriodType)
}

func TestComputeRankingAssignsPositionsAndTiers(t *testing.T) {
	store := &fakeRankingStore{entries: []models.RankingEntry{
		{DistributorID: 7, TotalRevenue: 900000},
		{DistributorID: 3, TotalRevenue: 450000},
		{DistributorID: 12, TotalRevenue: 120000},
		{DistributorID: 5, TotalRevenue: 80000},
	}}
	svc := newTestRankingService(store)

	period, err := svc.ComputeRanking(context.Background(), time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), models.PeriodMonthly, 0)
	require.NoError(t, err)
	require.Len(t, period.Entries, 4)

	assert.Equal(t, 1, period.Entries[0].Position)
	assert.Equal(t, 25.0, period.Entries[0].Tier.DistributorProfitPct)
	assert.Equal(t, 2, period.Entries[1].Position)
	assert.Equal(t, 3.0, period.Entries[1].Tier.CommissionBonusPct)
	assert.Equal(t, 3, period.Entries[2].Position)
	assert.Equal(t, 21.0, period.Entries[2].Tier.DistributorProfitPct)
	assert.Equal(t, 4, period.Entries[3].Position)
	assert.Equal(t, DefaultTier(), period.Entries[3].Tier)

	// Aggregation scoped to the resolved boundaries.
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), store.lastFom)
	assert.Equal(t, time.Date(2025, 6, 30, 23, 59, 59, 999000000, time.UTC), store.lastTo)
}

func TestResolveTier(t *testing.T) {
	store := &fakeRankingStore{entries: []models.RankingEntry{
		{DistributorID: 7, TotalRevenue: 900000},
		{DistributorID: 3, TotalRevenue: 450000},
	}}
	svc := newTestRankingService(store)
	asOf := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	tier, err := svc.ResolveTier(context.Background(), 3, asOf)
	require.NoError(t, err)
	assert.Equal(t, 23.0, tier.DistributorProfitPct)

	// Unranked distributors get the default tier, not an error.
	tier, err = svc.ResolveTier(context.Background(), 99, asOf)
	require.NoError(t, err)
	assert.Equal(t, DefaultTier(), tier)
}

func TestResolveTierIdempotentWithinPeriod(t *testing.T) {
	store := &fakeRankingStore{entries: []models.RankingEntry{
		{DistributorID: 7, TotalRevenue: 900000},
	}}
	svc := newTestRankingService(store)
	asOf := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	first, err := svc.ResolveTier(context.Background(), 7, asOf)
	require.NoError(t, err)
	second, err := svc.ResolveTier(context.Background(), 7, asOf.Add(6*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
