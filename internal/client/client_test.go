package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalCharge_Approved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/charges", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req chargeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "21.40", req.Amount)
		assert.Equal(t, "USD", req.Currency)
		assert.NotEmpty(t, req.Reference)

		json.NewEncoder(w).Encode(ChargeResponse{ChargeID: "ch_1", Status: "approved"})
	}))
	defer srv.Close()

	c := NewTerminalClient(srv.URL)
	resp, err := c.Charge(context.Background(), decimal.RequireFromString("21.40"), "sale-abc")
	require.NoError(t, err)
	assert.Equal(t, "ch_1", resp.ChargeID)
}

func TestTerminalCharge_Declined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ChargeResponse{ChargeID: "ch_2", Status: "declined", Message: "insufficient funds"})
	}))
	defer srv.Close()

	c := NewTerminalClient(srv.URL)
	_, err := c.Charge(context.Background(), decimal.RequireFromString("5.00"), "sale-def")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declined")
}

func TestTerminalCharge_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewTerminalClient(srv.URL)
	_, err := c.Charge(context.Background(), decimal.RequireFromString("5.00"), "sale-ghi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestTerminalClient_Enabled(t *testing.T) {
	assert.False(t, NewTerminalClient("").Enabled())
	assert.True(t, NewTerminalClient("http://terminal.local").Enabled())
}

func TestShopifyPushInventory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inventory/push", r.URL.Path)
		assert.Equal(t, "tok_123", r.Header.Get("X-Shopify-Access-Token"))

		var push InventoryPush
		require.NoError(t, json.NewDecoder(r.Body).Decode(&push))
		assert.Equal(t, "SKU-9", push.SKU)
		assert.Equal(t, "14.50", push.Price)

		json.NewEncoder(w).Encode(map[string]string{"product_id": "prod_77"})
	}))
	defer srv.Close()

	c := NewShopifyClient(srv.URL, "tok_123")
	id, err := c.PushInventory(context.Background(), InventoryPush{
		SKU:      "SKU-9",
		Name:     "Brass Lamp",
		Price:    "14.50",
		Quantity: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "prod_77", id)
}

func TestShopifyPushInventory_EmptyProductID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	c := NewShopifyClient(srv.URL, "tok")
	_, err := c.PushInventory(context.Background(), InventoryPush{SKU: "X"})
	require.Error(t, err)
}

func TestMailerSendPayoutNotice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "payouts@store.test", req.From)
		assert.Equal(t, "vendor@example.com", req.To)
		assert.Contains(t, req.Text, "$120.00")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewMailerClient(srv.URL, "payouts@store.test")
	err := c.SendPayoutNotice(context.Background(), "vendor@example.com", "Pat",
		decimal.RequireFromString("120"), timeMustParse(t, "2026-08-01"))
	require.NoError(t, err)
}

func timeMustParse(t *testing.T, s string) time.Time {
	parsed, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return parsed
}
