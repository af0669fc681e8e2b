package service

import (
	"github.com/shopspring/decimal"
)

// ProfitInput carries the write-time inputs of the profit split. For house
// sales (no distributor) DistributorPct must be 0.
type ProfitInput struct {
	Quantity       int
	PurchasePrice  float64
	SalePrice      float64
	DistributorPct float64
	HouseSale      bool
}

// ProfitSplit is the fully derived split. TotalProfit always equals
// DistributorProfit + AdminProfit exactly at currency precision: admin profit
// is computed as the remainder, never rounded independently.
type ProfitSplit struct {
	// DistributorPrice is the per-unit amount the distributor remits
	// upstream: salePrice * (100 - pct) / 100. Zero for house sales.
	DistributorPrice  float64
	DistributorProfit float64
	AdminProfit       float64
	TotalProfit       float64
}

var hundred = decimal.NewFromInt(100)

// ComputeProfitSplit derives the profit split for one sale. It is pure and
// deterministic: invoked exactly once per sale write with the percentage
// resolved at that moment, and re-run by the repair path against the stored
// percentage without consulting the ranking again.
func ComputeProfitSplit(in ProfitInput) ProfitSplit {
	qty := decimal.NewFromInt(int64(in.Quantity))
	sale := decimal.NewFromFloat(in.SalePrice)
	purchase := decimal.NewFromFloat(in.PurchasePrice)

	total := sale.Sub(purchase).Mul(qty).Round(2)

	if in.HouseSale || in.DistributorPct == 0 {
		adminProfit, _ := total.Float64()
		return ProfitSplit{
			DistributorPrice:  0,
			DistributorProfit: 0,
			AdminProfit:       adminProfit,
			TotalProfit:       adminProfit,
		}
	}

	pct := decimal.NewFromFloat(in.DistributorPct)
	distPrice := sale.Mul(hundred.Sub(pct)).Div(hundred).Round(2)
	distProfit := sale.Sub(distPrice).Mul(qty).Round(2)
	adminProfit := total.Sub(distProfit)

	outPrice, _ := distPrice.Float64()
	outDist, _ := distProfit.Float64()
	outAdmin, _ := adminProfit.Float64()
	outTotal, _ := total.Float64()

	return ProfitSplit{
		DistributorPrice:  outPrice,
		DistributorProfit: outDist,
		AdminProfit:       outAdmin,
		TotalProfit:       outTotal,
	}
}
