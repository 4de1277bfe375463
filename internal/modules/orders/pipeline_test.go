package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline() *Pipeline {
	p := NewPipeline(2*time.Second, nil)
	p.Backoff = time.Millisecond
	return p
}

func TestSubmitHappyPath(t *testing.T) {
	var createCalls, relayCalls int32

	processor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&createCalls, 1)
		assert.Equal(t, "/cart_update/ekhbqf-c1", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload OrderPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "gid://shopify/Cart/tok_abc", payload.CartID)

		_ = json.NewEncoder(w).Encode(map[string]string{"checkoutUrl": "https://checkout.example/c/1"})
	}))
	defer processor.Close()

	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&relayCalls, 1)

		var rec SubmissionRecord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
		assert.Equal(t, "https://checkout.example/c/1", rec.ShopURL)
		assert.Equal(t, "tok_abc", rec.OrderID)

		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://pay.example/go"})
	}))
	defer relay.Close()

	m := testMerchant()
	m.ProcessorBaseURL = processor.URL
	m.RelayURL = relay.URL

	sess := fullSession()
	url, err := newTestPipeline().Submit(context.Background(), m, sess)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/go", url)
	assert.EqualValues(t, 1, createCalls)
	assert.EqualValues(t, 1, relayCalls)
	assert.Equal(t, "https://checkout.example/c/1", sess.CheckoutURL)
}

func TestSubmitCreateOrderFailureNeverCallsRelay(t *testing.T) {
	processor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer processor.Close()

	var relayCalls int32
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&relayCalls, 1)
	}))
	defer relay.Close()

	m := testMerchant()
	m.ProcessorBaseURL = processor.URL
	m.RelayURL = relay.URL

	sess := fullSession()
	url, err := newTestPipeline().Submit(context.Background(), m, sess)
	require.Error(t, err)
	assert.Empty(t, url)
	assert.EqualValues(t, 0, atomic.LoadInt32(&relayCalls), "relay must not run after a create failure")
	assert.Empty(t, sess.CheckoutURL)
}

func TestSubmitRetriesOnceOn5xx(t *testing.T) {
	var createCalls int32
	processor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&createCalls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"checkoutUrl": "https://checkout.example/c/2"})
	}))
	defer processor.Close()

	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://pay.example/go"})
	}))
	defer relay.Close()

	m := testMerchant()
	m.ProcessorBaseURL = processor.URL
	m.RelayURL = relay.URL

	url, err := newTestPipeline().Submit(context.Background(), m, fullSession())
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/go", url)
	assert.EqualValues(t, 2, atomic.LoadInt32(&createCalls))
}

func TestSubmitDoesNotRetry4xx(t *testing.T) {
	var createCalls int32
	processor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&createCalls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer processor.Close()

	m := testMerchant()
	m.ProcessorBaseURL = processor.URL

	_, err := newTestPipeline().Submit(context.Background(), m, fullSession())
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.True(t, se.Permanent())
	assert.EqualValues(t, 1, atomic.LoadInt32(&createCalls), "4xx is permanent, no retry")
}

func TestSubmitResumesAtRelayAfterEarlierCreateSuccess(t *testing.T) {
	var createCalls int32
	processor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&createCalls, 1)
	}))
	defer processor.Close()

	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var rec SubmissionRecord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
		assert.Equal(t, "https://checkout.example/earlier", rec.ShopURL)
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://pay.example/resume"})
	}))
	defer relay.Close()

	m := testMerchant()
	m.ProcessorBaseURL = processor.URL
	m.RelayURL = relay.URL

	sess := fullSession()
	sess.CheckoutURL = "https://checkout.example/earlier"

	url, err := newTestPipeline().Submit(context.Background(), m, sess)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/resume", url)
	assert.EqualValues(t, 0, atomic.LoadInt32(&createCalls), "no second order is created")
}

func TestSubmitRelayMissingURLIsAnError(t *testing.T) {
	processor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"checkoutUrl": "https://checkout.example/c/3"})
	}))
	defer processor.Close()

	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer relay.Close()

	m := testMerchant()
	m.ProcessorBaseURL = processor.URL
	m.RelayURL = relay.URL

	sess := fullSession()
	_, err := newTestPipeline().Submit(context.Background(), m, sess)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect URL not received")
	assert.Equal(t, "https://checkout.example/c/3", sess.CheckoutURL,
		"checkout URL survives for resume")
}

func TestSubmitCreateMissingCheckoutURLIsAnError(t *testing.T) {
	processor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer processor.Close()

	m := testMerchant()
	m.ProcessorBaseURL = processor.URL

	_, err := newTestPipeline().Submit(context.Background(), m, fullSession())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing checkoutUrl")
}
