package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"consignpos/m/domain"
)

// Public storefront handlers. No authentication; only listed items with stock
// are visible, and consignor details stay private.

type storeItemView struct {
	ID          int64           `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
}

func toStoreView(item domain.Item) storeItemView {
	return storeItemView{
		ID:          item.ID,
		SKU:         item.SKU,
		Name:        item.Name,
		Category:    item.Category,
		Description: item.Description,
		Price:       item.Price,
		Quantity:    item.Quantity,
	}
}

// storeItems serves the public listing page. Unfiltered requests hit the
// in-memory cache; a search or category filter goes straight to the database.
func (h *Handler) storeItems(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")

	if search == "" && category == "" {
		if items, ok := h.listings.Get(); ok {
			respondJSON(w, http.StatusOK, storeViews(items))
			return
		}
		gen := h.listings.Begin()
		items, err := h.loadListedItems("", "")
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to load listings")
			return
		}
		// A sale or inventory edit during the load invalidates this snapshot;
		// serve it to this request but do not cache it.
		h.listings.Complete(gen, items)
		respondJSON(w, http.StatusOK, storeViews(items))
		return
	}

	items, err := h.loadListedItems(search, category)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load listings")
		return
	}
	respondJSON(w, http.StatusOK, storeViews(items))
}

func storeViews(items []domain.Item) []storeItemView {
	views := make([]storeItemView, 0, len(items))
	for _, item := range items {
		views = append(views, toStoreView(item))
	}
	return views
}

func (h *Handler) loadListedItems(search, category string) ([]domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE listed AND quantity > 0`
	args := []any{}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += ` AND name ILIKE $1`
	}
	if category != "" {
		args = append(args, category)
		query += ` AND category = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY name`

	var items []domain.Item
	if err := h.db.Select(&items, query, args...); err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Item{}
	}
	return items, nil
}

func (h *Handler) storeItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var item domain.Item
	err = h.db.Get(&item, `SELECT `+itemColumns+` FROM items WHERE id = $1 AND listed`, id)
	if err != nil {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}
	respondJSON(w, http.StatusOK, toStoreView(item))
}
