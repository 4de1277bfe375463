package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Snapshot is the order-shaped view of the cart taken at modal-open time.
// It is rebuilt on every open and never persisted across opens.
type Snapshot struct {
	Total     string     `json:"total"` // major units, two fraction digits
	Currency  string     `json:"currency"`
	LineItems []LineItem `json:"lineItems"`
	Token     string     `json:"token"`
}

type LineItem struct {
	Title     string    `json:"title"`
	Price     float64   `json:"price"` // major units
	Grams     int       `json:"grams"`
	Quantity  int       `json:"quantity"`
	VariantID int64     `json:"variant_id"`
	TaxLines  []TaxLine `json:"tax_lines"`
}

var ErrItemsNotList = errors.New("cart items is not a list; check cart data")

var hundred = decimal.NewFromInt(100)

// Normalize converts minor-unit prices to major units and produces the
// snapshot the composer works from. A cart whose items collection is not
// list-shaped is a data-shape error.
func Normalize(raw RawCart) (Snapshot, error) {
	items, err := decodeItems(raw.Items)
	if err != nil {
		return Snapshot{}, err
	}

	lines := make([]LineItem, 0, len(items))
	for _, it := range items {
		title := it.ProductTitle
		if title == "" {
			title = it.Title
		}
		taxes := it.TaxLines
		if taxes == nil {
			taxes = []TaxLine{}
		}
		price, _ := decimal.NewFromInt(it.Price).Div(hundred).Float64()
		lines = append(lines, LineItem{
			Title:     title,
			Price:     price,
			Grams:     it.Grams, // zero-valued when the storefront omits it
			Quantity:  it.Quantity,
			VariantID: it.VariantID,
			TaxLines:  taxes,
		})
	}

	return Snapshot{
		Total:     decimal.NewFromInt(raw.TotalPrice).Div(hundred).StringFixed(2),
		Currency:  raw.Currency,
		LineItems: lines,
		Token:     raw.Token,
	}, nil
}

func decodeItems(raw json.RawMessage) ([]RawItem, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return []RawItem{}, nil
	}
	if !strings.HasPrefix(trimmed, "[") {
		return nil, ErrItemsNotList
	}
	var items []RawItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("parse cart items: %w", err)
	}
	return items, nil
}
