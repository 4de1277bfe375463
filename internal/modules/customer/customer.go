package customer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sohepalslamat/shopify-front/internal/modules/forms"
)

// Profile is the customer record the storefront embeds on the trigger
// element (data-customer). It is treated as an immutable snapshot taken at
// modal-open time.
type Profile struct {
	Status     string   `json:"status"` // "guest" | "known"
	CustomerID int64    `json:"customer_id,omitempty"`
	Email      string   `json:"email,omitempty"`
	Address    *Address `json:"default_address,omitempty"`
}

type Address struct {
	ID        int64  `json:"id,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Address1  string `json:"address1,omitempty"`
	City      string `json:"city,omitempty"`
	Province  string `json:"province,omitempty"`
	Country   string `json:"country,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

var ErrNoProfile = errors.New("customer profile missing")

// Parse decodes the data-customer attribute value. The attribute is
// caller-controlled, so a missing or malformed value is an error the
// handler must deal with, never a crash.
func Parse(raw string) (Profile, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Profile{}, ErrNoProfile
	}
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Profile{}, fmt.Errorf("parse customer profile: %w", err)
	}
	if p.Status == "" {
		p.Status = "guest"
	}
	return p, nil
}

func (p Profile) IsGuest() bool { return !strings.EqualFold(p.Status, "known") }

// PrefillValues maps the profile onto logical form fields for one-time
// prefill. Guests get nothing (they are sent to login instead). The same
// profile always yields the same values, so re-opening the modal is
// idempotent.
func PrefillValues(p Profile) forms.Values {
	if p.IsGuest() {
		return forms.Values{}
	}

	v := forms.Values{forms.FieldEmail: p.Email}
	if a := p.Address; a != nil {
		v[forms.FieldFirstName] = a.FirstName
		v[forms.FieldLastName] = a.LastName
		v[forms.FieldPhone] = a.Phone
		v[forms.FieldCity] = a.City
		v[forms.FieldProvince] = a.Province
		v[forms.FieldCountry] = a.Country
		v[forms.FieldZip] = a.Zip
		v[forms.FieldAddress1] = a.Address1
	}
	return v
}
