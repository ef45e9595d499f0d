// Package payout aggregates a consignor's sale line items since their last
// payout into the amounts owed to them and kept by the store.
package payout

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one sale line for a consignor, joined with enough of the parent
// sale to allocate tax proportionally, and netted against any refunds.
type LineItem struct {
	SaleID          int64
	CompletedAt     time.Time
	UnitPrice       decimal.Decimal
	Quantity        int64
	RefundedQty     int64
	RefundedAmount  decimal.Decimal
	CommissionSplit decimal.Decimal
	SaleSubtotal    decimal.Decimal
	SaleTax         decimal.Decimal
}

// Summary is the aggregate owed for a payout period. ConsignorShare and
// StoreShare sum exactly to GrossSales for every line after cent rounding.
type Summary struct {
	GrossSales     decimal.Decimal `json:"gross_sales"`
	TaxCollected   decimal.Decimal `json:"tax_collected"`
	ConsignorShare decimal.Decimal `json:"consignor_share"`
	StoreShare     decimal.Decimal `json:"store_share"`
	ItemCount      int64           `json:"item_count"`
	SaleCount      int64           `json:"sale_count"`
	PeriodStart    time.Time       `json:"period_start"`
	PeriodEnd      time.Time       `json:"period_end"`
}

// Pending returns the line items completed after the last payout boundary.
// A nil boundary (no payout yet) keeps everything.
func Pending(items []LineItem, lastPayout *time.Time) []LineItem {
	if lastPayout == nil {
		return items
	}
	pending := make([]LineItem, 0, len(items))
	for _, it := range items {
		if it.CompletedAt.After(*lastPayout) {
			pending = append(pending, it)
		}
	}
	return pending
}

// Calculate aggregates pending line items into a payout summary ending at
// now. For a consignor's first payout the period starts at the earliest
// pending sale, or at now when there is nothing pending.
func Calculate(items []LineItem, lastPayout *time.Time, now time.Time) Summary {
	pending := Pending(items, lastPayout)

	s := Summary{
		GrossSales:     decimal.Zero,
		TaxCollected:   decimal.Zero,
		ConsignorShare: decimal.Zero,
		StoreShare:     decimal.Zero,
		PeriodEnd:      now,
	}

	sales := make(map[int64]struct{}, len(pending))
	var earliest time.Time

	for _, it := range pending {
		lineTotal := netLineTotal(it)
		consignor := lineTotal.Mul(it.CommissionSplit).Round(2)
		store := lineTotal.Sub(consignor)

		s.GrossSales = s.GrossSales.Add(lineTotal)
		s.ConsignorShare = s.ConsignorShare.Add(consignor)
		s.StoreShare = s.StoreShare.Add(store)
		s.TaxCollected = s.TaxCollected.Add(taxShare(it, lineTotal))

		units := it.Quantity - it.RefundedQty
		if units > 0 {
			s.ItemCount += units
		}
		sales[it.SaleID] = struct{}{}

		if earliest.IsZero() || it.CompletedAt.Before(earliest) {
			earliest = it.CompletedAt
		}
	}
	s.SaleCount = int64(len(sales))

	switch {
	case lastPayout != nil:
		s.PeriodStart = *lastPayout
	case !earliest.IsZero():
		s.PeriodStart = earliest
	default:
		s.PeriodStart = now
	}
	return s
}

// netLineTotal is the gross line value minus whatever has been refunded,
// floored at zero.
func netLineTotal(it LineItem) decimal.Decimal {
	gross := it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))
	net := gross.Sub(it.RefundedAmount)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

// taxShare allocates the sale's tax proportionally to this line's share of
// the sale subtotal.
func taxShare(it LineItem, lineTotal decimal.Decimal) decimal.Decimal {
	if !it.SaleSubtotal.IsPositive() || it.SaleTax.IsZero() {
		return decimal.Zero
	}
	return lineTotal.Div(it.SaleSubtotal).Mul(it.SaleTax).Round(2)
}
