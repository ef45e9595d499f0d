package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"consignpos/m/internal/client"
	"consignpos/m/internal/config"
	"consignpos/m/internal/listing"
)

type ctxKey string

const (
	ctxUserID      ctxKey = "userID"
	ctxRole        ctxKey = "role"
	ctxConsignorID ctxKey = "consignorID"
	ctxEmployeeID  ctxKey = "employeeID"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db       *sqlx.DB
	secret   string
	taxRate  decimal.Decimal
	listings *listing.Cache
	terminal *client.TerminalClient
	shopify  *client.ShopifyClient
	mailer   *client.MailerClient
}

// New constructs a Handler.
func New(db *sqlx.DB, cfg config.Config) *Handler {
	rate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil || rate.IsNegative() {
		log.Printf("invalid TAX_RATE value %q, defaulting to 0", cfg.TaxRate)
		rate = decimal.Zero
	}
	return &Handler{
		db:       db,
		secret:   cfg.Secret,
		taxRate:  rate,
		listings: listing.NewCache(),
		terminal: client.NewTerminalClient(cfg.TerminalURL),
		shopify:  client.NewShopifyClient(cfg.ShopifyURL, cfg.ShopifyToken),
		mailer:   client.NewMailerClient(cfg.MailerURL, cfg.MailerFrom),
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Group(func(protected chi.Router) {
			protected.Use(h.authMiddleware)
			protected.Post("/reset-password", h.resetPassword)
		})
	})

	// Public storefront.
	r.Route("/store", func(r chi.Router) {
		r.Get("/items", h.storeItems)
		r.Get("/items/{id}", h.storeItem)
	})

	// Register PIN login is public; the employee token gates the time clock.
	r.Post("/employees/verify-pin", h.verifyPIN)
	r.Group(func(er chi.Router) {
		er.Use(h.employeeAuthMiddleware)
		er.Post("/time-entries/clock-in", h.clockIn)
		er.Post("/time-entries/clock-out", h.clockOut)
	})

	// Admin dashboard.
	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/consignors", func(r chi.Router) {
			r.Post("/", h.createConsignor)
			r.Get("/", h.listConsignors)
			r.Get("/{id}", h.getConsignor)
			r.Put("/{id}", h.updateConsignor)
			r.Post("/{id}/deactivate", h.deactivateConsignor)
			r.Get("/{id}/payout-summary", h.payoutSummary)
			r.Post("/{id}/payouts", h.recordPayout)
			r.Get("/{id}/payouts", h.listConsignorPayouts)
			r.Post("/{id}/booth-rent", h.recordBoothRent)
			r.Get("/{id}/booth-rent", h.listConsignorBoothRent)
		})

		pr.Route("/items", func(r chi.Router) {
			r.Post("/", h.createItem)
			r.Get("/", h.listItems)
			r.Get("/{id}", h.getItem)
			r.Put("/{id}", h.updateItem)
			r.Delete("/{id}", h.deleteItem)
			r.Put("/bulk", h.bulkUpdateItems)
			r.Post("/{id}/label", h.markLabelPrinted)
			r.Post("/{id}/shopify-sync", h.shopifySync)
		})

		pr.Route("/sales", func(r chi.Router) {
			r.Post("/", h.createSale)
			r.Get("/", h.listSales)
			r.Get("/{id}", h.getSale)
			r.Post("/{id}/refunds", h.createRefund)
		})
		pr.Get("/refunds", h.listRefunds)
		pr.Get("/payouts", h.listPayouts)
		pr.Get("/booth-rent", h.listBoothRent)

		pr.Route("/employees", func(r chi.Router) {
			r.Post("/", h.createEmployee)
			r.Get("/", h.listEmployees)
			r.Get("/{id}/time-entries", h.listTimeEntries)
		})

		pr.Route("/customers", func(r chi.Router) {
			r.Post("/", h.createCustomer)
			r.Get("/", h.listCustomers)
			r.Put("/{id}", h.updateCustomer)
		})

		pr.Route("/reports", func(r chi.Router) {
			r.Get("/sales/daily", h.dailySales)
			r.Get("/sales/monthly", h.monthlySales)
			r.Get("/sales", h.salesReport)
			r.Get("/consignors", h.consignorReport)
		})
	})

	// Vendor portal, scoped to the caller's consignor.
	r.Group(func(vr chi.Router) {
		vr.Use(h.authMiddleware)
		vr.Route("/vendor", func(r chi.Router) {
			r.Get("/items", h.vendorItems)
			r.Get("/earnings", h.vendorEarnings)
			r.Get("/payouts", h.vendorPayouts)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Authentication helpers

type authClaims struct {
	UserID      int64  `json:"user_id"`
	Role        string `json:"role"`
	ConsignorID int64  `json:"consignor_id"`
	jwt.RegisteredClaims
}

type employeeClaims struct {
	EmployeeID int64  `json:"employee_id"`
	Name       string `json:"name"`
	jwt.RegisteredClaims
}

func (h *Handler) generateToken(userID int64, role string, consignorID int64) (string, error) {
	claims := authClaims{
		UserID:      userID,
		Role:        role,
		ConsignorID: consignorID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.secret))
}

// Employee register sessions are short-lived relative to dashboard logins.
func (h *Handler) generateEmployeeToken(employeeID int64, name string) (string, error) {
	claims := employeeClaims{
		EmployeeID: employeeID,
		Name:       name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(10 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.secret))
}

func (h *Handler) parseBearer(r *http.Request, claims jwt.Claims) error {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return errors.New("missing bearer token")
	}
	tokenString := strings.TrimSpace(header[len("Bearer "):])
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(h.secret), nil
	})
	if err != nil || !token.Valid {
		return errors.New("invalid token")
	}
	return nil
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := &authClaims{}
		if err := h.parseBearer(r, claims); err != nil {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
		ctx = context.WithValue(ctx, ctxRole, claims.Role)
		ctx = context.WithValue(ctx, ctxConsignorID, claims.ConsignorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) employeeAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := &employeeClaims{}
		if err := h.parseBearer(r, claims); err != nil {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		if claims.EmployeeID <= 0 {
			respondError(w, http.StatusUnauthorized, "not an employee session")
			return
		}
		ctx := context.WithValue(r.Context(), ctxEmployeeID, claims.EmployeeID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireRole(w http.ResponseWriter, r *http.Request, allowed ...string) bool {
	role := r.Context().Value(ctxRole)
	if role == nil {
		respondError(w, http.StatusUnauthorized, "missing role")
		return false
	}
	current := role.(string)
	for _, allowedRole := range allowed {
		if current == allowedRole {
			return true
		}
	}
	respondError(w, http.StatusForbidden, "insufficient permissions")
	return false
}

func userIDFromContext(r *http.Request) int64 {
	if val := r.Context().Value(ctxUserID); val != nil {
		if id, ok := val.(int64); ok {
			return id
		}
	}
	return 0
}

func consignorIDFromContext(r *http.Request) int64 {
	if val := r.Context().Value(ctxConsignorID); val != nil {
		if id, ok := val.(int64); ok {
			return id
		}
	}
	return 0
}

func employeeIDFromContext(r *http.Request) int64 {
	if val := r.Context().Value(ctxEmployeeID); val != nil {
		if id, ok := val.(int64); ok {
			return id
		}
	}
	return 0
}

// Helpers

func nullIfEmpty(val string) *string {
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
