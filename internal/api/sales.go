package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"consignpos/m/domain"
	"consignpos/m/internal/discount"
)

// Sales handlers

type saleLineRequest struct {
	ItemID   int64 `json:"item_id"`
	Quantity int64 `json:"quantity"`
}

type saleDiscountRequest struct {
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}

type saleRequest struct {
	Items         []saleLineRequest    `json:"items"`
	Discount      *saleDiscountRequest `json:"discount,omitempty"`
	PaymentMethod string               `json:"payment_method"`
	EmployeeID    *int64               `json:"employee_id,omitempty"`
	CustomerID    *int64               `json:"customer_id,omitempty"`
}

type saleLine struct {
	item     domain.Item
	split    decimal.Decimal
	quantity int64
	subtotal decimal.Decimal
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}

	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "no items in sale")
		return
	}
	if req.PaymentMethod == "" {
		respondError(w, http.StatusBadRequest, "payment_method is required")
		return
	}

	// Price the cart from current inventory, snapshotting each consignor's
	// commission split.
	lines := make([]saleLine, 0, len(req.Items))
	subtotal := decimal.Zero
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid quantity for item %d", line.ItemID))
			return
		}
		var row struct {
			domain.Item
			Split decimal.Decimal `db:"split"`
		}
		err := h.db.Get(&row, `SELECT i.`+strings.ReplaceAll(itemColumns, ", ", ", i.")+`, c.commission_split AS split
			FROM items i JOIN consignors c ON c.id = i.consignor_id WHERE i.id = $1`, line.ItemID)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("item %d not found", line.ItemID))
			return
		}
		if row.Quantity < line.Quantity {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("insufficient stock for item %d", line.ItemID))
			return
		}
		lineSubtotal := row.Price.Mul(decimal.NewFromInt(line.Quantity)).Round(2)
		lines = append(lines, saleLine{item: row.Item, split: row.Split, quantity: line.Quantity, subtotal: lineSubtotal})
		subtotal = subtotal.Add(lineSubtotal)
	}

	// Discount, validated against the cart subtotal.
	discountAmount := decimal.Zero
	var discountType *string
	discountValue := decimal.Zero
	if req.Discount != nil {
		kind := discount.Kind(req.Discount.Type)
		if verr := discount.Validate(kind, req.Discount.Value, subtotal); verr != nil {
			respondJSON(w, http.StatusBadRequest, map[string]any{
				"error":     verr.Message,
				"suggested": verr.Suggested,
			})
			return
		}
		discountAmount = discount.Amount(kind, req.Discount.Value, subtotal)
		discountType = nullIfEmpty(req.Discount.Type)
		discountValue = req.Discount.Value
	}

	taxable := subtotal.Sub(discountAmount)
	taxAmount := taxable.Mul(h.taxRate).Round(2)
	total := taxable.Add(taxAmount)
	number := uuid.NewString()

	// Card payments clear on the terminal before anything is persisted. A
	// decline leaves no sale behind; an approval followed by a failed insert
	// is surfaced for manual reversal.
	if req.PaymentMethod == "card" {
		if !h.terminal.Enabled() {
			respondError(w, http.StatusServiceUnavailable, "card terminal is not configured")
			return
		}
		if _, err := h.terminal.Charge(r.Context(), total, number); err != nil {
			respondError(w, http.StatusPaymentRequired, err.Error())
			return
		}
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback()

	var saleID int64
	err = tx.QueryRowx(`INSERT INTO sales (number, subtotal, discount_type, discount_value, discount_amount, tax_amount, total, payment_method, employee_id, customer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		number, subtotal, discountType, discountValue, discountAmount, taxAmount, total, req.PaymentMethod, req.EmployeeID, req.CustomerID).Scan(&saleID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create sale record")
		return
	}

	for _, line := range lines {
		_, err = tx.Exec(`INSERT INTO sale_items (sale_id, item_id, consignor_id, quantity, unit_price, commission_split, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			saleID, line.item.ID, line.item.ConsignorID, line.quantity, line.item.Price, line.split, line.subtotal)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to add sale items")
			return
		}

		res, err := tx.Exec(`UPDATE items SET quantity = quantity - $1, updated_at = NOW() WHERE id = $2 AND quantity >= $1`,
			line.quantity, line.item.ID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to update inventory")
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			respondError(w, http.StatusConflict, fmt.Sprintf("stock changed for item %d, sale aborted", line.item.ID))
			return
		}
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to finalize sale")
		return
	}

	h.listings.Invalidate()
	respondJSON(w, http.StatusCreated, map[string]any{
		"sale_id":         saleID,
		"number":          number,
		"subtotal":        subtotal,
		"discount_amount": discountAmount,
		"tax_amount":      taxAmount,
		"total":           total,
	})
}

const saleColumns = `id, number, subtotal, discount_type, discount_value, discount_amount, tax_amount, total, payment_method, employee_id, customer_id, completed_at`

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}

	var (
		args    []any
		clauses []string
	)

	if startDate := strings.TrimSpace(r.URL.Query().Get("start_date")); startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "start_date must be in YYYY-MM-DD format")
			return
		}
		args = append(args, parsed)
		clauses = append(clauses, fmt.Sprintf("completed_at >= $%d", len(args)))
	}
	if endDate := strings.TrimSpace(r.URL.Query().Get("end_date")); endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "end_date must be in YYYY-MM-DD format")
			return
		}
		// End of day: filter below the following midnight.
		args = append(args, parsed.AddDate(0, 0, 1))
		clauses = append(clauses, fmt.Sprintf("completed_at < $%d", len(args)))
	}

	query := `SELECT ` + saleColumns + ` FROM sales`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY completed_at DESC LIMIT 200"

	var sales []domain.Sale
	if err := h.db.Select(&sales, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list sales")
		return
	}
	if sales == nil {
		sales = []domain.Sale{}
	}
	respondJSON(w, http.StatusOK, sales)
}

type saleDetail struct {
	domain.Sale
	Items []domain.SaleItem `json:"items"`
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sale id")
		return
	}

	var sale domain.Sale
	err = h.db.Get(&sale, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "sale not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load sale")
		return
	}

	items, err := h.loadSaleItems(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load sale items")
		return
	}

	respondJSON(w, http.StatusOK, saleDetail{Sale: sale, Items: items})
}

func (h *Handler) loadSaleItems(saleID int64, extra ...int64) ([]domain.SaleItem, error) {
	ids := append([]int64{saleID}, extra...)
	query, args, err := sqlx.In(`SELECT id, sale_id, item_id, consignor_id, quantity, unit_price, commission_split, subtotal
		FROM sale_items WHERE sale_id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	query = h.db.Rebind(query)

	var items []domain.SaleItem
	if err := h.db.Select(&items, query, args...); err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.SaleItem{}
	}
	return items, nil
}
