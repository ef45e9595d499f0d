package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"consignpos/m/domain"
)

// Refund handlers

type refundLineRequest struct {
	SaleItemID int64 `json:"sale_item_id"`
	Quantity   int64 `json:"quantity"`
}

type refundRequest struct {
	Items   []refundLineRequest `json:"items"`
	Restock bool                `json:"restock"`
	Reason  string              `json:"reason"`
}

// createRefund reverses part or all of a sale. Quantities are bounded by what
// was sold minus what earlier refunds already returned. The refund's tax is
// the sale tax allocated proportionally to the refunded amount.
func (h *Handler) createRefund(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	saleID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sale id")
		return
	}

	var req refundRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "no items in refund")
		return
	}

	var sale domain.Sale
	err = h.db.Get(&sale, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, saleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "sale not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load sale")
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback()

	type refundLine struct {
		saleItem domain.SaleItem
		quantity int64
		amount   decimal.Decimal
	}

	lines := make([]refundLine, 0, len(req.Items))
	totalAmount := decimal.Zero
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid quantity for sale item %d", line.SaleItemID))
			return
		}

		var si domain.SaleItem
		err := tx.Get(&si, `SELECT id, sale_id, item_id, consignor_id, quantity, unit_price, commission_split, subtotal
			FROM sale_items WHERE id = $1 AND sale_id = $2`, line.SaleItemID, saleID)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("sale item %d not found on this sale", line.SaleItemID))
			return
		}

		var alreadyRefunded int64
		if err := tx.Get(&alreadyRefunded, `SELECT COALESCE(SUM(quantity), 0) FROM refund_items WHERE sale_item_id = $1`, si.ID); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to check prior refunds")
			return
		}
		if line.Quantity > si.Quantity-alreadyRefunded {
			respondError(w, http.StatusBadRequest,
				fmt.Sprintf("sale item %d: only %d unit(s) remain refundable", si.ID, si.Quantity-alreadyRefunded))
			return
		}

		amount := si.UnitPrice.Mul(decimal.NewFromInt(line.Quantity)).Round(2)
		lines = append(lines, refundLine{saleItem: si, quantity: line.Quantity, amount: amount})
		totalAmount = totalAmount.Add(amount)
	}

	taxAmount := decimal.Zero
	if sale.Subtotal.IsPositive() && !sale.TaxAmount.IsZero() {
		taxAmount = totalAmount.Div(sale.Subtotal).Mul(sale.TaxAmount).Round(2)
	}

	number := uuid.NewString()
	var refundID int64
	err = tx.QueryRowx(`INSERT INTO refunds (number, sale_id, total_amount, tax_amount, reason) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		number, saleID, totalAmount, taxAmount, req.Reason).Scan(&refundID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create refund record")
		return
	}

	for _, line := range lines {
		_, err = tx.Exec(`INSERT INTO refund_items (refund_id, sale_item_id, quantity, amount, restocked) VALUES ($1, $2, $3, $4, $5)`,
			refundID, line.saleItem.ID, line.quantity, line.amount, req.Restock)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to add refund items")
			return
		}
		if req.Restock {
			_, err = tx.Exec(`UPDATE items SET quantity = quantity + $1, updated_at = NOW() WHERE id = $2`,
				line.quantity, line.saleItem.ItemID)
			if err != nil {
				respondError(w, http.StatusInternalServerError, "unable to restock items")
				return
			}
		}
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to finalize refund")
		return
	}

	if req.Restock {
		h.listings.Invalidate()
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"refund_id":    refundID,
		"number":       number,
		"total_amount": totalAmount,
		"tax_amount":   taxAmount,
	})
}

func (h *Handler) listRefunds(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}

	query := `SELECT id, number, sale_id, total_amount, tax_amount, reason, created_at FROM refunds`
	args := []any{}
	if saleID := r.URL.Query().Get("sale_id"); saleID != "" {
		id, err := strconv.ParseInt(saleID, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid sale_id filter")
			return
		}
		args = append(args, id)
		query += ` WHERE sale_id = $1`
	}
	query += ` ORDER BY created_at DESC LIMIT 200`

	var refunds []domain.Refund
	if err := h.db.Select(&refunds, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list refunds")
		return
	}
	if refunds == nil {
		refunds = []domain.Refund{}
	}
	respondJSON(w, http.StatusOK, refunds)
}
