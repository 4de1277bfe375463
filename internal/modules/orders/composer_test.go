package orders

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohepalslamat/shopify-front/internal/modules/cart"
	"github.com/sohepalslamat/shopify-front/internal/modules/customer"
	"github.com/sohepalslamat/shopify-front/internal/modules/forms"
	"github.com/sohepalslamat/shopify-front/internal/modules/merchants"
	"github.com/sohepalslamat/shopify-front/internal/modules/session"
)

func testMerchant() merchants.Merchant {
	return merchants.Merchant{
		Code:             "ekhbqf-c1",
		ShopDomain:       "teststore.myshopify.com",
		ProcessorBaseURL: "https://processor.example",
		RelayURL:         "https://relay.example/proxy",
		HookSecret:       "8b67370f4efec2ce70c52a007c542aa4",
	}
}

func fullSession() *session.Checkout {
	prof := customer.Profile{
		Status:     "known",
		CustomerID: 7012345,
		Email:      "sara@example.com",
		Address: &customer.Address{
			ID:        99,
			FirstName: "Sara",
			LastName:  "Alqahtani",
			Phone:     "+966500000000",
			City:      "Riyadh",
			Province:  "Riyadh",
			Country:   "US",
			Zip:       "12345",
			Address1:  "King Fahd Rd 1",
		},
	}
	snap := cart.Snapshot{Total: "19.99", Currency: "SAR", Token: "tok_abc"}
	return session.New("ekhbqf-c1", forms.ModeFull, prof, snap)
}

func TestBuildOrderPayloadFullMode(t *testing.T) {
	p, err := BuildOrderPayload(fullSession())
	require.NoError(t, err)

	assert.Equal(t, "gid://shopify/Cart/tok_abc", p.CartID)
	assert.EqualValues(t, 7012345, p.CustomerID)
	assert.EqualValues(t, 99, p.AddressID)
	assert.Equal(t, "sara@example.com", p.BuyerIdentity.Email)

	require.Len(t, p.BuyerIdentity.DeliveryAddressPreferences, 1)
	addr := p.BuyerIdentity.DeliveryAddressPreferences[0].DeliveryAddress
	assert.Equal(t, "Sara", addr.FirstName)
	assert.Equal(t, "Riyadh", addr.City)
	assert.Equal(t, "12345", addr.Zip)
}

func TestBuildOrderPayloadSimpleModeOmitsAddressBlock(t *testing.T) {
	sess := fullSession()
	sess.Mode = forms.ModeSimple

	p, err := BuildOrderPayload(sess)
	require.NoError(t, err)

	addr := p.BuyerIdentity.DeliveryAddressPreferences[0].DeliveryAddress
	assert.Equal(t, "Sara", addr.FirstName)
	assert.Empty(t, addr.City)
	assert.Empty(t, addr.Zip)
	assert.Empty(t, addr.Address1)
}

func TestBuildOrderPayloadRequiresCartToken(t *testing.T) {
	sess := fullSession()
	sess.Cart = cart.Snapshot{}

	_, err := BuildOrderPayload(sess)
	assert.ErrorIs(t, err, ErrNoCartToken)
}

func TestBuildOrderPayloadRequiresValidForm(t *testing.T) {
	sess := fullSession()
	sess.Form[forms.FieldEmail] = "not-an-email"

	_, err := BuildOrderPayload(sess)
	assert.ErrorIs(t, err, ErrFormNotValid)
}

func TestBuildSubmissionRecordFullMode(t *testing.T) {
	sess := fullSession()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	rec := BuildSubmissionRecord(sess, testMerchant(), "https://checkout.example/c/1", now)

	assert.Equal(t, "tok_abc", rec.OrderID)
	assert.Equal(t, "shopify", rec.ShopType)
	assert.Equal(t, "https://checkout.example/c/1", rec.ShopURL)
	assert.Equal(t,
		"https://processor.example/webhook/8b67370f4efec2ce70c52a007c542aa4/ekhbqf-c1",
		rec.HookURL)
	assert.Equal(t, "SAR", rec.Currency)
	assert.Equal(t, "19.99", rec.Total)
	assert.Equal(t, now.UnixMilli(), rec.Timestamp)
	assert.Equal(t, "https://teststore.myshopify.com/cart", rec.FailURL)
	require.NotNil(t, rec.CustomerID)
	assert.EqualValues(t, 7012345, *rec.CustomerID)

	assert.Equal(t, "US", rec.Country)
	assert.Equal(t, "Riyadh", rec.City)
	assert.Equal(t, "not included", rec.BillingAddress)
	assert.Equal(t, "12345", rec.Postcode)
}

func TestBuildSubmissionRecordSimpleModeSkipsAddressFields(t *testing.T) {
	sess := fullSession()
	sess.Mode = forms.ModeSimple

	rec := BuildSubmissionRecord(sess, testMerchant(), "https://c.example", time.Now())

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"country"`)
	assert.NotContains(t, string(b), `"billing_address"`)
	assert.Contains(t, string(b), `"customer_id"`)
}

func TestBuildSubmissionRecordNullCustomerID(t *testing.T) {
	sess := fullSession()
	sess.Customer = customer.Profile{Status: "known", Email: "x@y.co"}

	rec := BuildSubmissionRecord(sess, testMerchant(), "https://c.example", time.Now())
	require.Nil(t, rec.CustomerID)

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"customer_id":null`)
}
