package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sohepalslamat/shopify-front/internal/modules/cart"
	"github.com/sohepalslamat/shopify-front/internal/modules/customer"
	"github.com/sohepalslamat/shopify-front/internal/modules/forms"
)

// State is the modal lifecycle. Loading covers markup/country/cart fetches
// before the overlay becomes visible; Submitting guards against a second
// submit racing the first.
type State string

const (
	StateClosed     State = "closed"
	StateLoading    State = "loading"
	StateOpen       State = "open"
	StateSubmitting State = "submitting"
)

var (
	ErrSubmitInFlight = errors.New("a submission is already in flight")
	ErrNotOpen        = errors.New("session is not open")
)

// Checkout carries everything the workflow used to keep in window globals:
// customer snapshot, cart snapshot, form mode and values, and the merchant
// deployment it belongs to. One instance per modal open, threaded through
// every step.
type Checkout struct {
	ID           string            `json:"id"`
	MerchantCode string            `json:"merchant_code"`
	Mode         forms.Mode        `json:"mode"`
	State        State             `json:"state"`

	Customer customer.Profile `json:"customer"`
	Cart     cart.Snapshot    `json:"cart"`
	Form     forms.Values     `json:"form"`

	// CheckoutURL is set once the create-order step succeeded, so a retry
	// after a relay failure resumes at the relay step instead of creating
	// a second order.
	CheckoutURL string `json:"checkout_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func New(merchantCode string, mode forms.Mode, prof customer.Profile, snap cart.Snapshot) *Checkout {
	now := time.Now().UTC()
	return &Checkout{
		ID:           uuid.NewString(),
		MerchantCode: merchantCode,
		Mode:         mode,
		State:        StateOpen,
		Customer:     prof,
		Cart:         snap,
		Form:         customer.PrefillValues(prof),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ApplyForm overlays user edits onto the prefilled values.
func (s *Checkout) ApplyForm(values forms.Values) {
	if s.Form == nil {
		s.Form = forms.Values{}
	}
	for k, v := range values {
		s.Form[k] = v
	}
	s.UpdatedAt = time.Now().UTC()
}

// BeginSubmit transitions open -> submitting. A concurrent second click
// gets ErrSubmitInFlight instead of re-entering shared state.
func (s *Checkout) BeginSubmit() error {
	switch s.State {
	case StateSubmitting:
		return ErrSubmitInFlight
	case StateOpen:
		s.State = StateSubmitting
		s.UpdatedAt = time.Now().UTC()
		return nil
	default:
		return ErrNotOpen
	}
}

// EndSubmit returns to open after a failed attempt so the shopper can
// correct and resubmit.
func (s *Checkout) EndSubmit() {
	if s.State == StateSubmitting {
		s.State = StateOpen
		s.UpdatedAt = time.Now().UTC()
	}
}

func (s *Checkout) Close() {
	s.State = StateClosed
	s.UpdatedAt = time.Now().UTC()
}
