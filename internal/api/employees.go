package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"consignpos/m/domain"
)

// Employee and time-clock handlers

type employeeRequest struct {
	Name string `json:"name"`
	PIN  string `json:"pin"`
}

func (h *Handler) createEmployee(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	var req employeeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(req.PIN) < 4 || len(req.PIN) > 8 {
		respondError(w, http.StatusBadRequest, "pin must be 4 to 8 digits")
		return
	}
	for _, ch := range req.PIN {
		if ch < '0' || ch > '9' {
			respondError(w, http.StatusBadRequest, "pin must contain only digits")
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to hash pin")
		return
	}

	var id int64
	err = h.db.QueryRowx(`INSERT INTO employees (name, pin_hash) VALUES ($1, $2) RETURNING id`,
		req.Name, string(hash)).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create employee")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "name": req.Name})
}

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	var employees []domain.Employee
	if err := h.db.Select(&employees, `SELECT id, name, pin_hash, active, created_at FROM employees ORDER BY name`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list employees")
		return
	}
	if employees == nil {
		employees = []domain.Employee{}
	}
	respondJSON(w, http.StatusOK, employees)
}

type verifyPINRequest struct {
	EmployeeID int64  `json:"employee_id"`
	PIN        string `json:"pin"`
}

// verifyPIN exchanges an employee's PIN for a short-lived register token. The
// response is the same for a missing employee and a wrong PIN.
func (h *Handler) verifyPIN(w http.ResponseWriter, r *http.Request) {
	var req verifyPINRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var emp domain.Employee
	err := h.db.Get(&emp, `SELECT id, name, pin_hash, active, created_at FROM employees WHERE id = $1 AND active`, req.EmployeeID)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(emp.PinHash), []byte(req.PIN)) != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.generateEmployeeToken(emp.ID, emp.Name)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"token":       token,
		"employee_id": emp.ID,
		"name":        emp.Name,
	})
}

// clockIn opens a shift. An already-open shift is a conflict; the employee
// must clock out first.
func (h *Handler) clockIn(w http.ResponseWriter, r *http.Request) {
	employeeID := employeeIDFromContext(r)

	var openID int64
	err := h.db.Get(&openID, `SELECT id FROM time_entries WHERE employee_id = $1 AND clock_out IS NULL`, employeeID)
	if err == nil {
		respondError(w, http.StatusConflict, "already clocked in")
		return
	}
	if !errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusInternalServerError, "unable to check open shifts")
		return
	}

	var entryID int64
	err = h.db.QueryRowx(`INSERT INTO time_entries (employee_id) VALUES ($1) RETURNING id`, employeeID).Scan(&entryID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to clock in")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"entry_id": entryID})
}

func (h *Handler) clockOut(w http.ResponseWriter, r *http.Request) {
	employeeID := employeeIDFromContext(r)

	res, err := h.db.Exec(`UPDATE time_entries SET clock_out = NOW() WHERE employee_id = $1 AND clock_out IS NULL`, employeeID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to clock out")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusConflict, "no open shift")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "clocked out"})
}

func (h *Handler) listTimeEntries(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid employee id")
		return
	}
	var entries []domain.TimeEntry
	if err := h.db.Select(&entries, `SELECT id, employee_id, clock_in, clock_out FROM time_entries WHERE employee_id = $1 ORDER BY clock_in DESC LIMIT 200`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list time entries")
		return
	}
	if entries == nil {
		entries = []domain.TimeEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}
