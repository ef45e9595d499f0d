package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"consignpos/m/domain"
)

// Consignor handlers

type consignorRequest struct {
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	CommissionSplit decimal.Decimal `json:"commission_split"`
	BoothRent       decimal.Decimal `json:"booth_rent"`
}

func validateConsignor(req consignorRequest) string {
	if req.Name == "" {
		return "name is required"
	}
	if req.CommissionSplit.IsNegative() || req.CommissionSplit.GreaterThan(decimal.NewFromInt(1)) {
		return "commission_split must be between 0 and 1"
	}
	if req.BoothRent.IsNegative() {
		return "booth_rent cannot be negative"
	}
	return ""
}

func (h *Handler) createConsignor(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	var req consignorRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateConsignor(req); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	var id int64
	err := h.db.QueryRowx(`INSERT INTO consignors (name, email, phone, commission_split, booth_rent) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		req.Name, req.Email, req.Phone, req.CommissionSplit, req.BoothRent).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create consignor")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "name": req.Name})
}

func (h *Handler) listConsignors(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	query := `SELECT id, name, email, phone, commission_split, booth_rent, active, created_at, updated_at FROM consignors`
	args := []any{}
	if r.URL.Query().Get("active") == "true" {
		query += ` WHERE active`
	}
	query += ` ORDER BY name`

	var consignors []domain.Consignor
	if err := h.db.Select(&consignors, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list consignors")
		return
	}
	if consignors == nil {
		consignors = []domain.Consignor{}
	}
	respondJSON(w, http.StatusOK, consignors)
}

func (h *Handler) getConsignor(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid consignor id")
		return
	}
	var c domain.Consignor
	err = h.db.Get(&c, `SELECT id, name, email, phone, commission_split, booth_rent, active, created_at, updated_at FROM consignors WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "consignor not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load consignor")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handler) updateConsignor(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid consignor id")
		return
	}
	var req consignorRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateConsignor(req); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := h.db.Exec(`UPDATE consignors SET name = $1, email = $2, phone = $3, commission_split = $4, booth_rent = $5, updated_at = NOW() WHERE id = $6`,
		req.Name, req.Email, req.Phone, req.CommissionSplit, req.BoothRent, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update consignor")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "consignor not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deactivateConsignor(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid consignor id")
		return
	}
	res, err := h.db.Exec(`UPDATE consignors SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to deactivate consignor")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "consignor not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}
