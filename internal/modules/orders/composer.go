package orders

import (
	"time"

	"github.com/sohepalslamat/shopify-front/internal/modules/forms"
	"github.com/sohepalslamat/shopify-front/internal/modules/merchants"
	"github.com/sohepalslamat/shopify-front/internal/modules/session"
)

// OrderPayload is the create-order request body. Field names follow the
// processor's contract (Shopify cart GID + camelCase buyer identity).
// Composed fresh on every attempt and never mutated afterwards.
type OrderPayload struct {
	BuyerIdentity BuyerIdentity `json:"buyerIdentity"`
	CartID        string        `json:"cartId"`
	CustomerID    int64         `json:"customer_id,omitempty"`
	AddressID     int64         `json:"address_id,omitempty"`
}

type BuyerIdentity struct {
	Phone                      string                      `json:"phone"`
	Email                      string                      `json:"email"`
	DeliveryAddressPreferences []DeliveryAddressPreference `json:"deliveryAddressPreferences"`
}

type DeliveryAddressPreference struct {
	DeliveryAddress DeliveryAddress `json:"deliveryAddress"`
}

type DeliveryAddress struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Address1  string `json:"address1,omitempty"`
	City      string `json:"city,omitempty"`
	Province  string `json:"province,omitempty"`
	Country   string `json:"country,omitempty"`
	Zip       string `json:"zip,omitempty"`
}

// BuildOrderPayload composes the create-order body from the session. It is
// a pure function of the session and refuses to build before the cart
// snapshot exists or while the form fails validation.
func BuildOrderPayload(sess *session.Checkout) (OrderPayload, error) {
	if sess.Cart.Token == "" {
		return OrderPayload{}, ErrNoCartToken
	}
	if len(forms.Validate(sess.Form, sess.Mode)) > 0 {
		return OrderPayload{}, ErrFormNotValid
	}

	f := sess.Form
	addr := DeliveryAddress{
		FirstName: f.Get(forms.FieldFirstName),
		LastName:  f.Get(forms.FieldLastName),
		Phone:     f.Get(forms.FieldPhone),
	}
	if forms.CollectsAddress(sess.Mode) {
		addr.Address1 = f.Get(forms.FieldAddress1)
		addr.City = f.Get(forms.FieldCity)
		addr.Province = f.Get(forms.FieldProvince)
		addr.Country = f.Get(forms.FieldCountry)
		addr.Zip = f.Get(forms.FieldZip)
	}

	p := OrderPayload{
		BuyerIdentity: BuyerIdentity{
			Phone: f.Get(forms.FieldPhone),
			Email: f.Get(forms.FieldEmail),
			DeliveryAddressPreferences: []DeliveryAddressPreference{
				{DeliveryAddress: addr},
			},
		},
		CartID: "gid://shopify/Cart/" + sess.Cart.Token,
	}

	if !sess.Customer.IsGuest() && sess.Customer.CustomerID != 0 {
		p.CustomerID = sess.Customer.CustomerID
	}
	if a := sess.Customer.Address; a != nil && a.ID != 0 {
		p.AddressID = a.ID
	}
	return p, nil
}

// SubmissionRecord is the relay request body. It duplicates several form
// values plus derived fields, matching what the relay expects.
type SubmissionRecord struct {
	OrderID    string `json:"order_id"`
	Email      string `json:"email"`
	ShopType   string `json:"shop_type"`
	ShopURL    string `json:"shop_url"`
	HookURL    string `json:"hookUrl"`
	Currency   string `json:"currency"`
	Total      string `json:"total"`
	Timestamp  int64  `json:"timestamp"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
	FailURL    string `json:"fail_url"`
	CustomerID *int64 `json:"customer_id"`

	// full variant only
	Country        string `json:"country,omitempty"`
	City           string `json:"city,omitempty"`
	BillingAddress string `json:"billing_address,omitempty"`
	Postcode       string `json:"postcode,omitempty"`
}

// BuildSubmissionRecord builds the relay body from the session, the
// checkout URL returned by the create-order step, and the merchant's
// deployment config.
func BuildSubmissionRecord(sess *session.Checkout, m merchants.Merchant, checkoutURL string, now time.Time) SubmissionRecord {
	f := sess.Form

	rec := SubmissionRecord{
		OrderID:   sess.Cart.Token,
		Email:     f.Get(forms.FieldEmail),
		ShopType:  "shopify",
		ShopURL:   checkoutURL,
		HookURL:   m.ProcessorBaseURL + "/webhook/" + m.HookSecret + "/" + m.Code,
		Currency:  sess.Cart.Currency,
		Total:     sess.Cart.Total,
		Timestamp: now.UnixMilli(),
		FirstName: f.Get(forms.FieldFirstName),
		LastName:  f.Get(forms.FieldLastName),
		Phone:     f.Get(forms.FieldPhone),
		FailURL:   "https://" + m.ShopDomain + "/cart",
	}

	if !sess.Customer.IsGuest() && sess.Customer.CustomerID != 0 {
		id := sess.Customer.CustomerID
		rec.CustomerID = &id
	}

	if forms.CollectsAddress(sess.Mode) {
		rec.Country = f.Get(forms.FieldCountry)
		rec.City = f.Get(forms.FieldCity)
		rec.BillingAddress = "not included"
		rec.Postcode = f.Get(forms.FieldZip)
	}
	return rec
}
