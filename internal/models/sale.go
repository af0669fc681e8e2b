package models

import "time"

// PaymentStatus enumerates the payment lifecycle of a sale.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
)

// Sale is the ledger record for a single sale. Profit fields are set once by
// the profit split calculator at write time and are never re-derived from the
// ranking afterwards, so historical records stay reproducible even when the
// ranking configuration changes.
//
// A nil DistributorID marks a house sale: the full margin accrues to the
// operator and both distributor profit fields must be zero.
type Sale struct {
	ID                   int           `db:"id" json:"id"`
	DistributorID        *int          `db:"distributor_id" json:"distributorId,omitempty"`
	ProductID            int           `db:"product_id" json:"productId"`
	Quantity             int           `db:"quantity" json:"quantity"`
	PurchasePrice        float64       `db:"purchase_price" json:"purchasePrice"`
	SalePrice            float64       `db:"sale_price" json:"salePrice"`
	CommissionBonusPct   float64       `db:"commission_bonus_pct" json:"commissionBonusPct"`
	DistributorProfitPct float64       `db:"distributor_profit_pct" json:"distributorProfitPct"`
	DistributorProfit    float64       `db:"distributor_profit" json:"distributorProfit"`
	AdminProfit          float64       `db:"admin_profit" json:"adminProfit"`
	TotalProfit          float64       `db:"total_profit" json:"totalProfit"`
	PaymentStatus        PaymentStatus `db:"payment_status" json:"paymentStatus"`
	SaleDate             time.Time     `db:"sale_date" json:"saleDate"`
	CreatedAt            time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time     `db:"updated_at" json:"-"`
}

// IsHouseSale reports whether the sale has no associated distributor.
func (s *Sale) IsHouseSale() bool {
	return s.DistributorID == nil
}
