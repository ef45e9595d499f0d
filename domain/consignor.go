package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Consignor is a vendor whose items the store sells for a commission split.
// CommissionSplit is the consignor's fraction of each line total, 0..1.
type Consignor struct {
	ID              int64           `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	Email           string          `db:"email" json:"email"`
	Phone           string          `db:"phone" json:"phone"`
	CommissionSplit decimal.Decimal `db:"commission_split" json:"commission_split"`
	BoothRent       decimal.Decimal `db:"booth_rent" json:"booth_rent"`
	Active          bool            `db:"active" json:"active"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// BoothRentPayment records a rent payment for a consignor's booth for a
// calendar month (PeriodMonth is YYYY-MM).
type BoothRentPayment struct {
	ID          int64           `db:"id" json:"id"`
	ConsignorID int64           `db:"consignor_id" json:"consignor_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	PeriodMonth string          `db:"period_month" json:"period_month"`
	Method      string          `db:"method" json:"method"`
	Notes       string          `db:"notes" json:"notes"`
	PaidAt      time.Time       `db:"paid_at" json:"paid_at"`
}
