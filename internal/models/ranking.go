package models

import "time"

// PeriodType enumerates the supported ranking periodicities.
type PeriodType string

const (
	PeriodDaily    PeriodType = "daily"
	PeriodWeekly   PeriodType = "weekly"
	PeriodBiweekly PeriodType = "biweekly"
	PeriodMonthly  PeriodType = "monthly"
	PeriodCustom   PeriodType = "custom"
)

// CommissionTier is the pair of percentages a ranking position grants.
type CommissionTier struct {
	DistributorProfitPct float64 `json:"distributorProfitPct"`
	CommissionBonusPct   float64 `json:"commissionBonusPct"`
}

// RankingEntry is one row of a period ranking: a distributor with its
// aggregated revenue and the admin profit it generated inside the period.
// Position is 1-based.
type RankingEntry struct {
	DistributorID    int            `db:"distributor_id" json:"distributorId"`
	DistributorName  string         `db:"distributor_name" json:"distributorName"`
	TotalRevenue     float64        `db:"total_revenue" json:"totalRevenue"`
	TotalAdminProfit float64        `db:"total_admin_profit" json:"totalAdminProfit"`
	Position         int            `db:"-" json:"position"`
	Tier             CommissionTier `db:"-" json:"tier"`
}

// RankingPeriod is a derived, never-persisted view: the canonical boundaries
// of the period containing a point in time plus the ordered ranking inside it.
// Recomputing it on demand avoids stale rank state; only terminal period
// winners are snapshotted elsewhere.
type RankingPeriod struct {
	PeriodType PeriodType     `json:"periodType"`
	StartDate  time.Time      `json:"startDate"`
	EndDate    time.Time      `json:"endDate"`
	Entries    []RankingEntry `json:"entries"`
}
