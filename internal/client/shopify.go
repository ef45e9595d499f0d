package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ShopifyClient pushes listed inventory to the synced Shopify sales channel.
type ShopifyClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewShopifyClient builds a client for the shop's admin API base URL. An
// empty URL disables the integration.
func NewShopifyClient(baseURL, token string) *ShopifyClient {
	return &ShopifyClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// Enabled reports whether a shop is configured.
func (c *ShopifyClient) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// InventoryPush describes one item's listing state for the channel.
type InventoryPush struct {
	ProductID string `json:"product_id,omitempty"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type inventoryPushResponse struct {
	ProductID string `json:"product_id"`
}

// PushInventory creates or updates the item's product on the channel and
// returns the channel's product ID.
func (c *ShopifyClient) PushInventory(ctx context.Context, push InventoryPush) (string, error) {
	headers := map[string]string{"X-Shopify-Access-Token": c.token}
	var out inventoryPushResponse
	err := postJSON(ctx, c.httpClient, c.baseURL+"/inventory/push", headers, push, &out)
	if err != nil {
		return "", fmt.Errorf("shopify push: %w", err)
	}
	if out.ProductID == "" {
		return "", fmt.Errorf("shopify push: empty product id in response")
	}
	return out.ProductID, nil
}
