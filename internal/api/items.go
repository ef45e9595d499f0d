package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"consignpos/m/domain"
	"consignpos/m/internal/bulkedit"
	"consignpos/m/internal/client"
)

// Item handlers

type itemRequest struct {
	ConsignorID int64           `json:"consignor_id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	Listed      bool            `json:"listed"`
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.ConsignorID <= 0 {
		respondError(w, http.StatusBadRequest, "name and consignor_id are required")
		return
	}
	if !req.Price.IsPositive() || req.Quantity < 0 {
		respondError(w, http.StatusBadRequest, "price must be positive and quantity non-negative")
		return
	}

	var exists bool
	if err := h.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM consignors WHERE id = $1 AND active)`, req.ConsignorID); err != nil || !exists {
		respondError(w, http.StatusBadRequest, "invalid consignor_id")
		return
	}

	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		sku = "SKU-" + strings.ToUpper(uuid.NewString()[:8])
	}

	var id int64
	err := h.db.QueryRowx(`INSERT INTO items (consignor_id, sku, name, category, description, price, quantity, listed) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		req.ConsignorID, sku, req.Name, req.Category, req.Description, req.Price, req.Quantity, req.Listed).Scan(&id)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			respondError(w, http.StatusConflict, "sku already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to create item")
		return
	}

	h.listings.Invalidate()
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "sku": sku})
}

const itemColumns = `id, consignor_id, sku, name, category, description, price, quantity, label_status, listed, shopify_product_id, last_synced_at, created_at, updated_at`

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}

	var (
		args    []any
		clauses []string
	)

	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		like := "%" + search + "%"
		args = append(args, like)
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR sku ILIKE $%d)", len(args), len(args)))
	}
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		args = append(args, category)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}
	if consignor := r.URL.Query().Get("consignor_id"); consignor != "" {
		id, err := strconv.ParseInt(consignor, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid consignor_id filter")
			return
		}
		args = append(args, id)
		clauses = append(clauses, fmt.Sprintf("consignor_id = $%d", len(args)))
	}
	if listed := r.URL.Query().Get("listed"); listed != "" {
		args = append(args, listed == "true")
		clauses = append(clauses, fmt.Sprintf("listed = $%d", len(args)))
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY name"

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	var items []domain.Item
	if err := h.db.Select(&items, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list items")
		return
	}
	if items == nil {
		items = []domain.Item{}
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	var item domain.Item
	err = h.db.Get(&item, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "item not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load item")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// updateItem replaces the editable fields of a single item. The write runs in
// a transaction and rolls back entirely on any failure, unlike the bulk path.
func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || !req.Price.IsPositive() || req.Quantity < 0 {
		respondError(w, http.StatusBadRequest, "name, positive price and non-negative quantity are required")
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback()

	if req.ConsignorID > 0 {
		var exists bool
		if err := tx.Get(&exists, `SELECT EXISTS(SELECT 1 FROM consignors WHERE id = $1)`, req.ConsignorID); err != nil || !exists {
			respondError(w, http.StatusBadRequest, "invalid consignor_id")
			return
		}
	}

	res, err := tx.Exec(`UPDATE items SET name = $1, category = $2, description = $3, price = $4, quantity = $5, listed = $6,
			consignor_id = COALESCE(NULLIF($7, 0), consignor_id), updated_at = NOW() WHERE id = $8`,
		req.Name, req.Category, req.Description, req.Price, req.Quantity, req.Listed, req.ConsignorID, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update item")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to finalize update")
		return
	}

	h.listings.Invalidate()
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var referenced bool
	if err := h.db.Get(&referenced, `SELECT EXISTS(SELECT 1 FROM sale_items WHERE item_id = $1)`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to check item references")
		return
	}
	if referenced {
		respondError(w, http.StatusConflict, "item has sales history and cannot be deleted")
		return
	}

	res, err := h.db.Exec(`DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete item")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}

	h.listings.Invalidate()
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Bulk edit

type bulkEditField struct {
	Original any `json:"original"`
	New      any `json:"new"`
}

type bulkEditEntry struct {
	ID     int64                    `json:"id"`
	Fields map[string]bulkEditField `json:"fields"`
}

type bulkEditRequest struct {
	Atomic bool            `json:"atomic"`
	Edits  []bulkEditEntry `json:"edits"`
}

// bulkUpdateItems stages the submitted field changes and commits them as a
// batch. The default policy is best-effort: failed items are reported while
// successful writes stay applied. With atomic=true the batch runs in one
// transaction and rolls back entirely on the first failure.
func (h *Handler) bulkUpdateItems(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	var req bulkEditRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Edits) == 0 {
		respondError(w, http.StatusBadRequest, "no edits submitted")
		return
	}

	staging := bulkedit.NewStaging()
	for _, edit := range req.Edits {
		if edit.ID <= 0 {
			respondError(w, http.StatusBadRequest, "edit entries require an item id")
			return
		}
		for field, change := range edit.Fields {
			staging.Stage(edit.ID, field, change.Original, change.New)
		}
	}

	updates := staging.Snapshot()
	if len(updates) == 0 {
		// Everything staged was a no-op.
		respondJSON(w, http.StatusOK, bulkedit.Result{Success: true, Applied: []int64{}})
		return
	}

	var result bulkedit.Result
	if req.Atomic {
		tx, err := h.db.Beginx()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "database error")
			return
		}
		result = bulkedit.Commit(r.Context(), updates, bulkedit.PolicyAtomic, func(ctx context.Context, u bulkedit.Update) error {
			return applyItemUpdate(ctx, tx, u)
		})
		if result.Success {
			if err := tx.Commit(); err != nil {
				respondError(w, http.StatusInternalServerError, "unable to finalize bulk update")
				return
			}
		} else {
			_ = tx.Rollback()
			result.Applied = []int64{}
		}
	} else {
		result = bulkedit.Commit(r.Context(), updates, bulkedit.PolicyBestEffort, func(ctx context.Context, u bulkedit.Update) error {
			return applyItemUpdate(ctx, h.db, u)
		})
	}

	h.listings.Invalidate()
	respondJSON(w, http.StatusOK, result)
}

// execer covers both *sqlx.DB and *sqlx.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// applyItemUpdate persists one staged update. Field names are whitelisted and
// JSON-decoded values coerced to their column types.
func applyItemUpdate(ctx context.Context, db execer, u bulkedit.Update) error {
	fields := make([]string, 0, len(u.Changes))
	for f := range u.Changes {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var (
		sets []string
		args []any
	)
	for _, f := range fields {
		val, err := coerceItemField(f, u.Changes[f])
		if err != nil {
			return err
		}
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", f, len(args)))
	}
	args = append(args, u.ID)

	query := fmt.Sprintf("UPDATE items SET %s, updated_at = NOW() WHERE id = $%d", strings.Join(sets, ", "), len(args))
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New("not found")
	}
	return nil
}

func coerceItemField(field string, value any) (any, error) {
	switch field {
	case "price":
		num, ok := value.(float64)
		if !ok {
			return nil, fmt.Errorf("price must be a number")
		}
		price := decimal.NewFromFloat(num)
		if !price.IsPositive() {
			return nil, fmt.Errorf("price must be positive")
		}
		return price, nil
	case "quantity":
		num, ok := value.(float64)
		if !ok || num != float64(int64(num)) {
			return nil, fmt.Errorf("quantity must be an integer")
		}
		if num < 0 {
			return nil, fmt.Errorf("quantity cannot be negative")
		}
		return int64(num), nil
	case "consignor_id":
		num, ok := value.(float64)
		if !ok || num != float64(int64(num)) || num <= 0 {
			return nil, fmt.Errorf("consignor_id must be a positive integer")
		}
		return int64(num), nil
	case "listed":
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("listed must be a boolean")
		}
		return b, nil
	case "label_status":
		s, ok := value.(string)
		if !ok || (s != domain.LabelPending && s != domain.LabelPrinted) {
			return nil, fmt.Errorf("label_status must be %q or %q", domain.LabelPending, domain.LabelPrinted)
		}
		return s, nil
	case "name", "category", "description":
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be a string", field)
		}
		if field == "name" && strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("name cannot be empty")
		}
		return s, nil
	default:
		return nil, fmt.Errorf("field %q is not editable", field)
	}
}

func (h *Handler) markLabelPrinted(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	res, err := h.db.Exec(`UPDATE items SET label_status = $1, updated_at = NOW() WHERE id = $2`, domain.LabelPrinted, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update label status")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "label printed"})
}

// shopifySync pushes one item to the synced sales channel and records the
// returned product id and sync time.
func (h *Handler) shopifySync(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	if !h.shopify.Enabled() {
		respondError(w, http.StatusServiceUnavailable, "shopify integration is not configured")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var item domain.Item
	err = h.db.Get(&item, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "item not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load item")
		return
	}

	push := client.InventoryPush{
		SKU:      item.SKU,
		Name:     item.Name,
		Price:    item.Price.StringFixed(2),
		Quantity: item.Quantity,
	}
	if item.ShopifyProductID != nil {
		push.ProductID = *item.ShopifyProductID
	}

	productID, err := h.shopify.PushInventory(r.Context(), push)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	now := time.Now()
	if _, err := h.db.Exec(`UPDATE items SET shopify_product_id = $1, last_synced_at = $2, updated_at = NOW() WHERE id = $3`,
		productID, now, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to record sync metadata")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"product_id": productID, "synced_at": now})
}
