package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is a completed point-of-sale transaction.
type Sale struct {
	ID             int64           `db:"id" json:"id"`
	Number         string          `db:"number" json:"number"`
	Subtotal       decimal.Decimal `db:"subtotal" json:"subtotal"`
	DiscountType   *string         `db:"discount_type" json:"discount_type,omitempty"`
	DiscountValue  decimal.Decimal `db:"discount_value" json:"discount_value"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	TaxAmount      decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	Total          decimal.Decimal `db:"total" json:"total"`
	PaymentMethod  string          `db:"payment_method" json:"payment_method"`
	EmployeeID     *int64          `db:"employee_id" json:"employee_id,omitempty"`
	CustomerID     *int64          `db:"customer_id" json:"customer_id,omitempty"`
	CompletedAt    time.Time       `db:"completed_at" json:"completed_at"`
}

// SaleItem is one line of a sale. UnitPrice and CommissionSplit are snapshots
// taken at sale time; later edits to the item or consignor do not affect them.
type SaleItem struct {
	ID              int64           `db:"id" json:"id"`
	SaleID          int64           `db:"sale_id" json:"sale_id"`
	ItemID          int64           `db:"item_id" json:"item_id"`
	ConsignorID     int64           `db:"consignor_id" json:"consignor_id"`
	Quantity        int64           `db:"quantity" json:"quantity"`
	UnitPrice       decimal.Decimal `db:"unit_price" json:"unit_price"`
	CommissionSplit decimal.Decimal `db:"commission_split" json:"commission_split"`
	Subtotal        decimal.Decimal `db:"subtotal" json:"subtotal"`
}
