package api

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"consignpos/m/domain"
)

// Booth rent handlers

var periodMonthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

type boothRentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PeriodMonth string          `json:"period_month"`
	Method      string          `json:"method"`
	Notes       string          `json:"notes"`
}

func (h *Handler) recordBoothRent(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid consignor id")
		return
	}

	var req boothRentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Amount.IsPositive() {
		respondError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if !periodMonthPattern.MatchString(req.PeriodMonth) {
		respondError(w, http.StatusBadRequest, "period_month must be in YYYY-MM format")
		return
	}
	method := req.Method
	if method == "" {
		method = "cash"
	}

	var exists bool
	if err := h.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM consignors WHERE id = $1)`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load consignor")
		return
	}
	if !exists {
		respondError(w, http.StatusNotFound, "consignor not found")
		return
	}

	var paymentID int64
	err = h.db.QueryRowx(`INSERT INTO booth_rent_payments (consignor_id, amount, period_month, method, notes) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		id, req.Amount, req.PeriodMonth, method, req.Notes).Scan(&paymentID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to record booth rent payment")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": paymentID, "period_month": req.PeriodMonth})
}

const boothRentColumns = `id, consignor_id, amount, period_month, method, notes, paid_at`

func (h *Handler) listConsignorBoothRent(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid consignor id")
		return
	}
	var payments []domain.BoothRentPayment
	if err := h.db.Select(&payments, `SELECT `+boothRentColumns+` FROM booth_rent_payments WHERE consignor_id = $1 ORDER BY period_month DESC`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list booth rent payments")
		return
	}
	if payments == nil {
		payments = []domain.BoothRentPayment{}
	}
	respondJSON(w, http.StatusOK, payments)
}

func (h *Handler) listBoothRent(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	query := `SELECT ` + boothRentColumns + ` FROM booth_rent_payments`
	args := []any{}
	if month := r.URL.Query().Get("month"); month != "" {
		if !periodMonthPattern.MatchString(month) {
			respondError(w, http.StatusBadRequest, "month must be in YYYY-MM format")
			return
		}
		args = append(args, month)
		query += ` WHERE period_month = $1`
	}
	query += ` ORDER BY paid_at DESC LIMIT 200`

	var payments []domain.BoothRentPayment
	if err := h.db.Select(&payments, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list booth rent payments")
		return
	}
	if payments == nil {
		payments = []domain.BoothRentPayment{}
	}
	respondJSON(w, http.StatusOK, payments)
}
