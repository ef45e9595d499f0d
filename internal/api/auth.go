package api

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"consignpos/m/domain"
)

// Auth handlers

type registerRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	ConsignorID int64  `json:"consignor_id,omitempty"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		respondError(w, http.StatusBadRequest, "username, email, password and role are required")
		return
	}

	if req.Role != "admin" && req.Role != "vendor" {
		respondError(w, http.StatusBadRequest, "role must be admin or vendor")
		return
	}
	if req.Role == "vendor" && req.ConsignorID <= 0 {
		respondError(w, http.StatusBadRequest, "consignor_id is required for vendor accounts")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure password")
		return
	}

	var consignorID *int64
	if req.Role == "vendor" {
		var exists bool
		if err := h.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM consignors WHERE id = $1)`, req.ConsignorID); err != nil || !exists {
			respondError(w, http.StatusBadRequest, "invalid consignor_id for vendor account")
			return
		}
		consignorID = &req.ConsignorID
	}

	var userID int64
	err = h.db.QueryRowx(`INSERT INTO users (username, email, password, role, consignor_id) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		req.Username, strings.ToLower(req.Email), hashed, req.Role, consignorID).Scan(&userID)
	if err != nil {
		if strings.Contains(err.Error(), "unique constraint") || strings.Contains(err.Error(), "duplicate key") {
			respondError(w, http.StatusConflict, "email already exists")
		} else {
			respondError(w, http.StatusInternalServerError, "db error: "+err.Error())
		}
		return
	}

	token, err := h.generateToken(userID, req.Role, req.ConsignorID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}

	respondJSON(w, http.StatusCreated, authResponse{
		Token: token,
		User: domain.User{
			ID:          userID,
			Username:    req.Username,
			Email:       strings.ToLower(req.Email),
			Role:        req.Role,
			ConsignorID: consignorID,
		},
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var user domain.User
	err := h.db.Get(&user, `SELECT id, username, email, password, role, consignor_id FROM users WHERE email = $1`, strings.ToLower(req.Email))
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	var consignorID int64
	if user.ConsignorID != nil {
		consignorID = *user.ConsignorID
	}
	if user.Role == "vendor" && consignorID <= 0 {
		respondError(w, http.StatusForbidden, "vendor account is not linked to a consignor")
		return
	}

	token, err := h.generateToken(user.ID, user.Role, consignorID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}

	user.Password = ""
	respondJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		NewPassword string `json:"new_password"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "new_password is required")
		return
	}
	uid := userIDFromContext(r)
	if uid <= 0 {
		respondError(w, http.StatusUnauthorized, "invalid session")
		return
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure password")
		return
	}
	if _, err := h.db.Exec(`UPDATE users SET password = $1 WHERE id = $2`, hashed, uid); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update password")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}
