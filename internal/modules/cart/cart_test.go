package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeConvertsMinorUnits(t *testing.T) {
	raw := RawCart{
		Token:      "tok_123",
		TotalPrice: 1999,
		Currency:   "SAR",
		Items: json.RawMessage(`[
			{"product_title":"Oud Perfume","price":999,"quantity":2,"variant_id":42}
		]`),
	}

	snap, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, "19.99", snap.Total)
	assert.Equal(t, "SAR", snap.Currency)
	assert.Equal(t, "tok_123", snap.Token)

	require.Len(t, snap.LineItems, 1)
	li := snap.LineItems[0]
	assert.Equal(t, "Oud Perfume", li.Title)
	assert.InDelta(t, 9.99, li.Price, 1e-9)
	assert.Equal(t, 2, li.Quantity)
	assert.Equal(t, 0, li.Grams, "missing weight defaults to 0")
	assert.NotNil(t, li.TaxLines)
	assert.Empty(t, li.TaxLines)
}

func TestNormalizeKeepsTaxLinesVerbatim(t *testing.T) {
	raw := RawCart{
		TotalPrice: 1150,
		Currency:   "SAR",
		Items: json.RawMessage(`[
			{"title":"Tea","price":1000,"quantity":1,"variant_id":7,"grams":250,
			 "tax_lines":[{"price":1.5,"rate":0.15,"title":"VAT"}]}
		]`),
	}

	snap, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, snap.LineItems, 1)

	li := snap.LineItems[0]
	assert.Equal(t, "Tea", li.Title, "falls back to title when product_title missing")
	assert.Equal(t, 250, li.Grams)
	require.Len(t, li.TaxLines, 1)
	assert.Equal(t, TaxLine{Price: 1.5, Rate: 0.15, Title: "VAT"}, li.TaxLines[0])
}

func TestNormalizeRejectsNonListItems(t *testing.T) {
	_, err := Normalize(RawCart{Items: json.RawMessage(`{"oops":true}`)})
	require.ErrorIs(t, err, ErrItemsNotList)

	_, err = Normalize(RawCart{Items: json.RawMessage(`"nope"`)})
	require.ErrorIs(t, err, ErrItemsNotList)
}

func TestNormalizeTreatsMissingItemsAsEmpty(t *testing.T) {
	snap, err := Normalize(RawCart{TotalPrice: 0, Currency: "SAR"})
	require.NoError(t, err)
	assert.Empty(t, snap.LineItems)
	assert.Equal(t, "0.00", snap.Total)
}

func TestClientFetch(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cart.js", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"tok_9","total_price":500,"currency":"SAR","items":[]}`))
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client()}
	raw, err := c.Fetch(context.Background(), strings.TrimPrefix(srv.URL, "https://"))
	require.NoError(t, err)
	assert.Equal(t, "tok_9", raw.Token)
	assert.EqualValues(t, 500, raw.TotalPrice)
}

func TestClientFetchNonOKStatus(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client()}
	_, err := c.Fetch(context.Background(), strings.TrimPrefix(srv.URL, "https://"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestClientFetchBadJSON(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client()}
	_, err := c.Fetch(context.Background(), strings.TrimPrefix(srv.URL, "https://"))
	require.Error(t, err)
}

func TestNewClientSetsTimeout(t *testing.T) {
	c := NewClient(3 * time.Second)
	assert.Equal(t, 3*time.Second, c.HTTP.Timeout)
}
