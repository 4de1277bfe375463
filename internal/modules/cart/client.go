package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RawCart mirrors the storefront's /cart.js response. Prices are in minor
// units. Items stays raw so Normalize can reject non-list shapes itself.
type RawCart struct {
	Token      string          `json:"token"`
	TotalPrice int64           `json:"total_price"`
	Currency   string          `json:"currency"`
	Items      json.RawMessage `json:"items"`
}

type RawItem struct {
	Title        string    `json:"title"`
	ProductTitle string    `json:"product_title"`
	Price        int64     `json:"price"`
	Grams        int       `json:"grams"`
	Quantity     int       `json:"quantity"`
	VariantID    int64     `json:"variant_id"`
	TaxLines     []TaxLine `json:"tax_lines"`
}

type TaxLine struct {
	Price float64 `json:"price"`
	Rate  float64 `json:"rate"`
	Title string  `json:"title"`
}

// Parse decodes a raw /cart.js document. The storefront cart is scoped to
// the shopper's cookie session, so the embedding script captures it
// same-origin and sends it along; the server cannot read it on its own.
func Parse(data []byte) (RawCart, error) {
	var raw RawCart
	if err := json.Unmarshal(data, &raw); err != nil {
		return RawCart{}, fmt.Errorf("parse cart: %w", err)
	}
	return raw, nil
}

// Client fetches a cart document over HTTP. Only useful against dev and
// mock storefronts whose cart endpoint is not cookie-scoped; live opens
// carry the shopper's cart inline (see Parse).
type Client struct {
	HTTP *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{HTTP: &http.Client{Timeout: timeout}}
}

// Fetch GETs https://<shop>/cart.js. Any transport, status or parse
// failure aborts the workflow at the caller; there is no retry here.
func (c *Client) Fetch(ctx context.Context, shopDomain string) (RawCart, error) {
	url := "https://" + strings.TrimSuffix(shopDomain, "/") + "/cart.js"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return RawCart{}, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return RawCart{}, fmt.Errorf("fetch cart: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return RawCart{}, fmt.Errorf("fetch cart: status %d", res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return RawCart{}, fmt.Errorf("fetch cart: %w", err)
	}

	var raw RawCart
	if err := json.Unmarshal(body, &raw); err != nil {
		return RawCart{}, fmt.Errorf("parse cart: %w", err)
	}
	return raw, nil
}
