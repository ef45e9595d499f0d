package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Reporting handlers

type salesTotals struct {
	SaleCount      int64           `db:"sale_count" json:"sale_count"`
	GrossSales     decimal.Decimal `db:"gross_sales" json:"gross_sales"`
	DiscountsGiven decimal.Decimal `db:"discounts_given" json:"discounts_given"`
	TaxCollected   decimal.Decimal `db:"tax_collected" json:"tax_collected"`
	TotalCollected decimal.Decimal `db:"total_collected" json:"total_collected"`
}

const salesTotalsSelect = `SELECT COUNT(*) AS sale_count,
	COALESCE(SUM(subtotal), 0) AS gross_sales,
	COALESCE(SUM(discount_amount), 0) AS discounts_given,
	COALESCE(SUM(tax_amount), 0) AS tax_collected,
	COALESCE(SUM(total), 0) AS total_collected
	FROM sales`

func (h *Handler) salesTotalsBetween(start, end time.Time) (salesTotals, error) {
	var totals salesTotals
	err := h.db.Get(&totals, salesTotalsSelect+` WHERE completed_at >= $1 AND completed_at < $2`, start, end)
	return totals, err
}

// dailySales reports totals for a single day, defaulting to today.
func (h *Handler) dailySales(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}

	day := time.Now()
	if date := r.URL.Query().Get("date"); date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
			return
		}
		day = parsed
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	totals, err := h.salesTotalsBetween(start, end)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to compute daily sales")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"date":   start.Format("2006-01-02"),
		"totals": totals,
	})
}

// monthlySales reports totals for a calendar month, defaulting to the current
// month.
func (h *Handler) monthlySales(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}

	now := time.Now()
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "month must be in YYYY-MM format")
			return
		}
		month = parsed
	}
	end := month.AddDate(0, 1, 0)

	totals, err := h.salesTotalsBetween(month, end)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to compute monthly sales")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"month":  month.Format("2006-01"),
		"totals": totals,
	})
}

// salesReport reports totals over an arbitrary date range.
func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}

	var (
		args    []any
		clauses []string
	)
	if startDate := r.URL.Query().Get("start_date"); startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "start_date must be in YYYY-MM-DD format")
			return
		}
		args = append(args, parsed)
		clauses = append(clauses, fmt.Sprintf("completed_at >= $%d", len(args)))
	}
	if endDate := r.URL.Query().Get("end_date"); endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "end_date must be in YYYY-MM-DD format")
			return
		}
		args = append(args, parsed.AddDate(0, 0, 1))
		clauses = append(clauses, fmt.Sprintf("completed_at < $%d", len(args)))
	}

	query := salesTotalsSelect
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	var totals salesTotals
	if err := h.db.Get(&totals, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to compute sales report")
		return
	}
	respondJSON(w, http.StatusOK, totals)
}

type consignorReportRow struct {
	ConsignorID   int64           `db:"consignor_id" json:"consignor_id"`
	ConsignorName string          `db:"consignor_name" json:"consignor_name"`
	ItemsSold     int64           `db:"items_sold" json:"items_sold"`
	GrossSales    decimal.Decimal `db:"gross_sales" json:"gross_sales"`
	ItemsInStock  int64           `db:"items_in_stock" json:"items_in_stock"`
	PendingShare  decimal.Decimal `db:"-" json:"pending_share"`
}

// consignorReport summarizes per-consignor sales volume, remaining stock and
// the commission balance currently pending payout.
func (h *Handler) consignorReport(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}

	var rows []consignorReportRow
	err := h.db.Select(&rows, `SELECT c.id AS consignor_id, c.name AS consignor_name,
		COALESCE(SUM(si.quantity), 0) AS items_sold,
		COALESCE(SUM(si.subtotal), 0) AS gross_sales,
		COALESCE((SELECT SUM(quantity) FROM items WHERE consignor_id = c.id), 0) AS items_in_stock
		FROM consignors c
		LEFT JOIN sale_items si ON si.consignor_id = c.id
		GROUP BY c.id, c.name
		ORDER BY gross_sales DESC`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to compute consignor report")
		return
	}
	if rows == nil {
		rows = []consignorReportRow{}
	}

	for i := range rows {
		summary, err := h.pendingSummary(rows[i].ConsignorID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to compute pending balances")
			return
		}
		rows[i].PendingShare = summary.ConsignorShare
	}
	respondJSON(w, http.StatusOK, rows)
}
