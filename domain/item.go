package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Label states for an item's price tag.
const (
	LabelPending = "pending"
	LabelPrinted = "printed"
)

// Item is a consigned inventory item. Listed items with stock appear on the
// public storefront. Shopify fields are set once the item has been pushed to
// the synced sales channel.
type Item struct {
	ID               int64           `db:"id" json:"id"`
	ConsignorID      int64           `db:"consignor_id" json:"consignor_id"`
	SKU              string          `db:"sku" json:"sku"`
	Name             string          `db:"name" json:"name"`
	Category         string          `db:"category" json:"category"`
	Description      string          `db:"description" json:"description"`
	Price            decimal.Decimal `db:"price" json:"price"`
	Quantity         int64           `db:"quantity" json:"quantity"`
	LabelStatus      string          `db:"label_status" json:"label_status"`
	Listed           bool            `db:"listed" json:"listed"`
	ShopifyProductID *string         `db:"shopify_product_id" json:"shopify_product_id,omitempty"`
	LastSyncedAt     *time.Time      `db:"last_synced_at" json:"last_synced_at,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}
