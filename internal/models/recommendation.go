package models

import "time"

// ActionKind enumerates the recommended action variants.
type ActionKind string

const (
	ActionBuyMoreInventory ActionKind = "buy_more_inventory"
	ActionPausePurchases   ActionKind = "pause_purchases"
	ActionDecreasePrice    ActionKind = "decrease_price"
	ActionClearance        ActionKind = "clearance"
	ActionRunPromotion     ActionKind = "run_promotion"
	ActionIncreasePrice    ActionKind = "increase_price"
	ActionReviewMargin     ActionKind = "review_margin"
	ActionKeep             ActionKind = "keep"
)

// Severity grades how urgent an action is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Action is a tagged-variant recommendation: the kind discriminates which of
// the optional detail fields are populated.
type Action struct {
	Kind           ActionKind `json:"action"`
	Severity       Severity   `json:"severity"`
	Confidence     float64    `json:"confidence"`
	Reason         string     `json:"reason,omitempty"`
	SuggestedQty   *int       `json:"suggestedQty,omitempty"`
	SuggestedPct   *float64   `json:"suggestedPct,omitempty"`
	SuggestedPrice *float64   `json:"suggestedPrice,omitempty"`
}

// SalesRollup is an immutable aggregation of sales over one time window.
type SalesRollup struct {
	Units      int     `json:"units"`
	SalesCount int     `json:"salesCount"`
	Revenue    float64 `json:"revenue"`
	Profit     float64 `json:"profit"`
}

// ProductMetrics are the derived per-product signals the rules evaluate.
// DaysCover is nil when the recent sell-through rate is zero: "unknown"
// rather than infinite.
type ProductMetrics struct {
	AvgDailyUnits      float64  `json:"avgDailyUnits"`
	DaysCover          *float64 `json:"daysCover"`
	UnitsGrowthPct     float64  `json:"unitsGrowthPct"`
	RecentMarginPct    float64  `json:"recentMarginPct"`
	PriceVsCategoryPct float64  `json:"priceVsCategoryPct"`
	InventoryValue     float64  `json:"inventoryValue"`
}

// ProductAggregate is the unified per-product dataset built once per request
// and handed to every rule. It joins catalog data with the three windowed
// rollups and the category price baseline.
type ProductAggregate struct {
	ProductID        int      `json:"productId"`
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	PurchasePrice    float64  `json:"purchasePrice"`
	DistributorPrice *float64 `json:"distributorPrice,omitempty"`
	SuggestedPrice   *float64 `json:"suggestedPrice,omitempty"`
	ClientPrice      *float64 `json:"clientPrice,omitempty"`
	WarehouseStock   int      `json:"warehouseStock"`
	StoreStock       int      `json:"storeStock"`
	LowStockAlert    int      `json:"lowStockAlert"`

	Total    SalesRollup `json:"total"`
	Recent   SalesRollup `json:"recent"`
	Previous SalesRollup `json:"previous"`

	// Unit-weighted average sale price inside the recent window; zero when
	// nothing sold recently.
	RecentAvgPrice float64 `json:"recentAvgPrice"`
	// Recent revenue-weighted average price across the product's category.
	CategoryAvgPrice float64 `json:"categoryAvgPrice"`

	Metrics ProductMetrics `json:"metrics"`
}

// ProductRecommendation is the per-product output of the rule engine.
type ProductRecommendation struct {
	ProductID     int            `json:"productId"`
	ProductName   string         `json:"productName"`
	Category      string         `json:"category"`
	Metrics       ProductMetrics `json:"metrics"`
	Actions       []Action       `json:"actions"`
	Primary       Action         `json:"primary"`
	Justification []string       `json:"justification"`
	ImpactScore   float64        `json:"impactScore"`
}

// RecommendationWindow describes the time windows a payload was computed over.
type RecommendationWindow struct {
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	HorizonDays int       `json:"horizonDays"`
	RecentDays  int       `json:"recentDays"`
}

// RecommendationPayload is the cacheable result of one generation run.
type RecommendationPayload struct {
	GeneratedAt     time.Time               `json:"generatedAt"`
	Window          RecommendationWindow    `json:"window"`
	Recommendations []ProductRecommendation `json:"recommendations"`
}
