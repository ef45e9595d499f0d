package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payout is a recorded settlement of a consignor's pending commission
// balance. PeriodEnd becomes the boundary for the next calculation.
type Payout struct {
	ID             int64           `db:"id" json:"id"`
	Number         string          `db:"number" json:"number"`
	ConsignorID    int64           `db:"consignor_id" json:"consignor_id"`
	PeriodStart    time.Time       `db:"period_start" json:"period_start"`
	PeriodEnd      time.Time       `db:"period_end" json:"period_end"`
	GrossSales     decimal.Decimal `db:"gross_sales" json:"gross_sales"`
	TaxCollected   decimal.Decimal `db:"tax_collected" json:"tax_collected"`
	ConsignorShare decimal.Decimal `db:"consignor_share" json:"consignor_share"`
	StoreShare     decimal.Decimal `db:"store_share" json:"store_share"`
	ItemCount      int64           `db:"item_count" json:"item_count"`
	SaleCount      int64           `db:"sale_count" json:"sale_count"`
	Method         string          `db:"method" json:"method"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}
