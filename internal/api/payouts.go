package api

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"consignpos/m/domain"
	"consignpos/m/internal/payout"
)

// Payout handlers

type payoutLineRow struct {
	SaleID          int64           `db:"sale_id"`
	CompletedAt     time.Time       `db:"completed_at"`
	UnitPrice       decimal.Decimal `db:"unit_price"`
	Quantity        int64           `db:"quantity"`
	RefundedQty     int64           `db:"refunded_qty"`
	RefundedAmount  decimal.Decimal `db:"refunded_amount"`
	CommissionSplit decimal.Decimal `db:"commission_split"`
	SaleSubtotal    decimal.Decimal `db:"sale_subtotal"`
	SaleTax         decimal.Decimal `db:"sale_tax"`
}

// lastPayoutEnd returns the period_end of the consignor's most recent payout,
// or nil when no payout has been recorded yet.
func (h *Handler) lastPayoutEnd(consignorID int64) (*time.Time, error) {
	var end time.Time
	err := h.db.Get(&end, `SELECT period_end FROM payouts WHERE consignor_id = $1 ORDER BY period_end DESC LIMIT 1`, consignorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &end, nil
}

// loadPayoutLines loads a consignor's sale lines after the boundary, netted
// against refunds and joined with the parent sale for tax allocation.
func (h *Handler) loadPayoutLines(consignorID int64, since *time.Time) ([]payout.LineItem, error) {
	query := `SELECT si.sale_id, s.completed_at, si.unit_price, si.quantity, si.commission_split,
			s.subtotal AS sale_subtotal, s.tax_amount AS sale_tax,
			COALESCE(r.qty, 0) AS refunded_qty, COALESCE(r.amt, 0) AS refunded_amount
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		LEFT JOIN (
			SELECT sale_item_id, SUM(quantity) AS qty, SUM(amount) AS amt
			FROM refund_items GROUP BY sale_item_id
		) r ON r.sale_item_id = si.id
		WHERE si.consignor_id = $1`
	args := []any{consignorID}
	if since != nil {
		args = append(args, *since)
		query += ` AND s.completed_at > $2`
	}
	query += ` ORDER BY s.completed_at`

	var rows []payoutLineRow
	if err := h.db.Select(&rows, query, args...); err != nil {
		return nil, err
	}

	lines := make([]payout.LineItem, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, payout.LineItem{
			SaleID:          row.SaleID,
			CompletedAt:     row.CompletedAt,
			UnitPrice:       row.UnitPrice,
			Quantity:        row.Quantity,
			RefundedQty:     row.RefundedQty,
			RefundedAmount:  row.RefundedAmount,
			CommissionSplit: row.CommissionSplit,
			SaleSubtotal:    row.SaleSubtotal,
			SaleTax:         row.SaleTax,
		})
	}
	return lines, nil
}

// pendingSummary computes what the store currently owes a consignor.
func (h *Handler) pendingSummary(consignorID int64) (payout.Summary, error) {
	last, err := h.lastPayoutEnd(consignorID)
	if err != nil {
		return payout.Summary{}, err
	}
	lines, err := h.loadPayoutLines(consignorID, last)
	if err != nil {
		return payout.Summary{}, err
	}
	return payout.Calculate(lines, last, time.Now()), nil
}

func (h *Handler) payoutSummary(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid consignor id")
		return
	}

	summary, err := h.pendingSummary(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to compute payout summary")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

type recordPayoutRequest struct {
	Method string `json:"method"`
}

// recordPayout snapshots the consignor's pending aggregates as a payout. The
// recorded period_end shifts the boundary for the next calculation. There is
// no idempotency guard beyond the insert itself; a double submit records two
// payouts.
func (h *Handler) recordPayout(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid consignor id")
		return
	}

	var req recordPayoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	method := req.Method
	if method == "" {
		method = "check"
	}

	var consignor domain.Consignor
	err = h.db.Get(&consignor, `SELECT id, name, email, phone, commission_split, booth_rent, active, created_at, updated_at FROM consignors WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "consignor not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load consignor")
		return
	}

	summary, err := h.pendingSummary(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to compute payout summary")
		return
	}
	if summary.ConsignorShare.IsZero() && summary.ItemCount == 0 {
		respondError(w, http.StatusBadRequest, "nothing pending to pay out")
		return
	}

	number := uuid.NewString()
	var payoutID int64
	err = h.db.QueryRowx(`INSERT INTO payouts (number, consignor_id, period_start, period_end, gross_sales, tax_collected, consignor_share, store_share, item_count, sale_count, method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`,
		number, id, summary.PeriodStart, summary.PeriodEnd, summary.GrossSales, summary.TaxCollected,
		summary.ConsignorShare, summary.StoreShare, summary.ItemCount, summary.SaleCount, method).Scan(&payoutID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to record payout")
		return
	}

	// Notification is best effort; the payout stands either way.
	if h.mailer.Enabled() && consignor.Email != "" {
		if err := h.mailer.SendPayoutNotice(r.Context(), consignor.Email, consignor.Name, summary.ConsignorShare, summary.PeriodEnd); err != nil {
			log.Printf("payout %s recorded but notification failed: %v", number, err)
		}
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"payout_id": payoutID,
		"number":    number,
		"summary":   summary,
	})
}

const payoutColumns = `id, number, consignor_id, period_start, period_end, gross_sales, tax_collected, consignor_share, store_share, item_count, sale_count, method, created_at`

func (h *Handler) listPayouts(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	var payouts []domain.Payout
	if err := h.db.Select(&payouts, `SELECT `+payoutColumns+` FROM payouts ORDER BY created_at DESC LIMIT 200`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list payouts")
		return
	}
	if payouts == nil {
		payouts = []domain.Payout{}
	}
	respondJSON(w, http.StatusOK, payouts)
}

func (h *Handler) listConsignorPayouts(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid consignor id")
		return
	}
	var payouts []domain.Payout
	if err := h.db.Select(&payouts, `SELECT `+payoutColumns+` FROM payouts WHERE consignor_id = $1 ORDER BY created_at DESC`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list payouts")
		return
	}
	if payouts == nil {
		payouts = []domain.Payout{}
	}
	respondJSON(w, http.StatusOK, payouts)
}
