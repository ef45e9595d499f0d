package payout

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func at(day int) time.Time {
	return time.Date(2026, 8, day, 12, 0, 0, 0, time.UTC)
}

func TestCalculate_SingleLine(t *testing.T) {
	// Consignor with a 0.6 split, one pending sale item $10 x 2.
	items := []LineItem{{
		SaleID:          1,
		CompletedAt:     at(3),
		UnitPrice:       d("10"),
		Quantity:        2,
		CommissionSplit: d("0.6"),
		SaleSubtotal:    d("20"),
		SaleTax:         d("1.40"),
	}}

	s := Calculate(items, nil, at(10))

	assert.True(t, s.GrossSales.Equal(d("20")), "gross %s", s.GrossSales)
	assert.True(t, s.ConsignorShare.Equal(d("12")), "consignor %s", s.ConsignorShare)
	assert.True(t, s.StoreShare.Equal(d("8")), "store %s", s.StoreShare)
	assert.True(t, s.TaxCollected.Equal(d("1.40")), "tax %s", s.TaxCollected)
	assert.EqualValues(t, 2, s.ItemCount)
	assert.EqualValues(t, 1, s.SaleCount)
	assert.Equal(t, at(3), s.PeriodStart)
	assert.Equal(t, at(10), s.PeriodEnd)
}

// Shares must sum exactly to the line total after cent rounding, even for
// splits that do not divide evenly.
func TestCalculate_SharesSumExactly(t *testing.T) {
	splits := []string{"0.33", "0.5", "0.6", "0.6667", "0.75", "1", "0"}
	for _, split := range splits {
		items := []LineItem{{
			SaleID:          7,
			CompletedAt:     at(5),
			UnitPrice:       d("9.99"),
			Quantity:        3,
			CommissionSplit: d(split),
			SaleSubtotal:    d("29.97"),
		}}
		s := Calculate(items, nil, at(9))
		sum := s.ConsignorShare.Add(s.StoreShare)
		assert.True(t, sum.Equal(s.GrossSales), "split %s: %s + %s != %s",
			split, s.ConsignorShare, s.StoreShare, s.GrossSales)
	}
}

func TestCalculate_PendingBoundary(t *testing.T) {
	last := at(5)
	items := []LineItem{
		{SaleID: 1, CompletedAt: at(2), UnitPrice: d("10"), Quantity: 1, CommissionSplit: d("0.5"), SaleSubtotal: d("10")},
		{SaleID: 2, CompletedAt: at(6), UnitPrice: d("8"), Quantity: 1, CommissionSplit: d("0.5"), SaleSubtotal: d("8")},
		{SaleID: 3, CompletedAt: at(8), UnitPrice: d("4"), Quantity: 2, CommissionSplit: d("0.5"), SaleSubtotal: d("8")},
	}

	s := Calculate(items, &last, at(10))

	// Only the two sales after the boundary count.
	assert.True(t, s.GrossSales.Equal(d("16")), "gross %s", s.GrossSales)
	assert.EqualValues(t, 2, s.SaleCount)
	assert.EqualValues(t, 3, s.ItemCount)
	assert.Equal(t, last, s.PeriodStart)
}

func TestCalculate_FirstPayoutWithNothingPending(t *testing.T) {
	now := at(15)
	s := Calculate(nil, nil, now)

	assert.Equal(t, now, s.PeriodStart)
	assert.Equal(t, now, s.PeriodEnd)
	assert.True(t, s.GrossSales.IsZero())
	assert.EqualValues(t, 0, s.SaleCount)
}

func TestCalculate_RefundsNetted(t *testing.T) {
	// $10 x 3 with one unit ($10) refunded: net line is $20.
	items := []LineItem{{
		SaleID:          4,
		CompletedAt:     at(4),
		UnitPrice:       d("10"),
		Quantity:        3,
		RefundedQty:     1,
		RefundedAmount:  d("10"),
		CommissionSplit: d("0.6"),
		SaleSubtotal:    d("30"),
		SaleTax:         d("2.10"),
	}}

	s := Calculate(items, nil, at(10))

	assert.True(t, s.GrossSales.Equal(d("20")), "gross %s", s.GrossSales)
	assert.True(t, s.ConsignorShare.Equal(d("12")), "consignor %s", s.ConsignorShare)
	assert.True(t, s.StoreShare.Equal(d("8")), "store %s", s.StoreShare)
	// Tax share follows the net line's proportion of the subtotal.
	assert.True(t, s.TaxCollected.Equal(d("1.40")), "tax %s", s.TaxCollected)
	assert.EqualValues(t, 2, s.ItemCount)
}

func TestCalculate_FullyRefundedLineFloorsAtZero(t *testing.T) {
	items := []LineItem{{
		SaleID:          5,
		CompletedAt:     at(4),
		UnitPrice:       d("10"),
		Quantity:        1,
		RefundedQty:     1,
		RefundedAmount:  d("12"), // over-refund, e.g. goodwill credit
		CommissionSplit: d("0.6"),
		SaleSubtotal:    d("10"),
	}}

	s := Calculate(items, nil, at(10))

	assert.True(t, s.GrossSales.IsZero())
	assert.True(t, s.ConsignorShare.IsZero())
	assert.True(t, s.StoreShare.IsZero())
	assert.EqualValues(t, 0, s.ItemCount)
}

func TestCalculate_ProportionalTax(t *testing.T) {
	// Two consignor lines within one $40 sale carrying $2.80 tax. The
	// consignor's line is half the subtotal, so half the tax.
	items := []LineItem{{
		SaleID:          6,
		CompletedAt:     at(4),
		UnitPrice:       d("20"),
		Quantity:        1,
		CommissionSplit: d("0.5"),
		SaleSubtotal:    d("40"),
		SaleTax:         d("2.80"),
	}}

	s := Calculate(items, nil, at(10))
	assert.True(t, s.TaxCollected.Equal(d("1.40")), "tax %s", s.TaxCollected)
}

func TestPending(t *testing.T) {
	last := at(5)
	items := []LineItem{
		{SaleID: 1, CompletedAt: at(4)},
		{SaleID: 2, CompletedAt: at(5)}, // exactly at the boundary is settled
		{SaleID: 3, CompletedAt: at(6)},
	}

	pending := Pending(items, &last)
	require.Len(t, pending, 1)
	assert.EqualValues(t, 3, pending[0].SaleID)

	assert.Len(t, Pending(items, nil), 3)
}
