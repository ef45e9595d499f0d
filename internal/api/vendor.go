package api

import (
	"net/http"

	"consignpos/m/domain"
)

// Vendor portal handlers. Every query is scoped to the consignor linked to
// the authenticated vendor account.

func (h *Handler) vendorConsignorID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	if !h.requireRole(w, r, "vendor") {
		return 0, false
	}
	id := consignorIDFromContext(r)
	if id <= 0 {
		respondError(w, http.StatusForbidden, "account is not linked to a consignor")
		return 0, false
	}
	return id, true
}

func (h *Handler) vendorItems(w http.ResponseWriter, r *http.Request) {
	consignorID, ok := h.vendorConsignorID(w, r)
	if !ok {
		return
	}

	var items []domain.Item
	if err := h.db.Select(&items, `SELECT `+itemColumns+` FROM items WHERE consignor_id = $1 ORDER BY name`, consignorID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list items")
		return
	}
	if items == nil {
		items = []domain.Item{}
	}
	respondJSON(w, http.StatusOK, items)
}

// vendorEarnings shows the consignor's pending balance, the same calculation
// the admin payout summary uses.
func (h *Handler) vendorEarnings(w http.ResponseWriter, r *http.Request) {
	consignorID, ok := h.vendorConsignorID(w, r)
	if !ok {
		return
	}

	summary, err := h.pendingSummary(consignorID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to compute earnings")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) vendorPayouts(w http.ResponseWriter, r *http.Request) {
	consignorID, ok := h.vendorConsignorID(w, r)
	if !ok {
		return
	}

	var payouts []domain.Payout
	if err := h.db.Select(&payouts, `SELECT `+payoutColumns+` FROM payouts WHERE consignor_id = $1 ORDER BY created_at DESC`, consignorID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list payouts")
		return
	}
	if payouts == nil {
		payouts = []domain.Payout{}
	}
	respondJSON(w, http.StatusOK, payouts)
}
