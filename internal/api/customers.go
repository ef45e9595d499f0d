package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"consignpos/m/domain"
)

// Customer handlers

type customerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	var id int64
	err := h.db.QueryRowx(`INSERT INTO customers (name, email, phone) VALUES ($1, $2, $3) RETURNING id`,
		req.Name, req.Email, req.Phone).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create customer")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "name": req.Name})
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	query := `SELECT id, name, email, phone, created_at FROM customers`
	args := []any{}
	if search := r.URL.Query().Get("search"); search != "" {
		args = append(args, "%"+search+"%")
		query += ` WHERE name ILIKE $1 OR email ILIKE $1`
	}
	query += ` ORDER BY name LIMIT 200`

	var customers []domain.Customer
	if err := h.db.Select(&customers, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list customers")
		return
	}
	if customers == nil {
		customers = []domain.Customer{}
	}
	respondJSON(w, http.StatusOK, customers)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	res, err := h.db.Exec(`UPDATE customers SET name = $1, email = $2, phone = $3 WHERE id = $4`,
		req.Name, req.Email, req.Phone, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update customer")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "customer not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
