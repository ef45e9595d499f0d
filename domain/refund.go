package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Refund reverses part or all of a sale. Line items are itemized so payout
// calculations can net refunded quantities out of consignor earnings.
type Refund struct {
	ID          int64           `db:"id" json:"id"`
	Number      string          `db:"number" json:"number"`
	SaleID      int64           `db:"sale_id" json:"sale_id"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	TaxAmount   decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	Reason      string          `db:"reason" json:"reason"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// RefundItem is one refunded line, referencing the original sale item.
type RefundItem struct {
	ID         int64           `db:"id" json:"id"`
	RefundID   int64           `db:"refund_id" json:"refund_id"`
	SaleItemID int64           `db:"sale_item_id" json:"sale_item_id"`
	Quantity   int64           `db:"quantity" json:"quantity"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Restocked  bool            `db:"restocked" json:"restocked"`
}
