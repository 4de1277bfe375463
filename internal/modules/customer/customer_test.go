package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohepalslamat/shopify-front/internal/modules/forms"
)

func TestParseKnownCustomer(t *testing.T) {
	raw := `{
		"status": "known",
		"customer_id": 7012345,
		"email": "sara@example.com",
		"default_address": {
			"id": 99,
			"first_name": "Sara",
			"last_name": "Alqahtani",
			"address1": "King Fahd Rd 1",
			"city": "Riyadh",
			"province": "Riyadh",
			"country": "SA",
			"zip": "12211",
			"phone": "+966500000000"
		}
	}`

	p, err := Parse(raw)
	require.NoError(t, err)
	assert.False(t, p.IsGuest())
	assert.EqualValues(t, 7012345, p.CustomerID)
	require.NotNil(t, p.Address)
	assert.EqualValues(t, 99, p.Address.ID)
	assert.Equal(t, "Riyadh", p.Address.City)
}

func TestParseMalformedIsAnErrorNotACrash(t *testing.T) {
	_, err := Parse(`{"status": "known",`)
	require.Error(t, err)

	_, err = Parse("")
	require.ErrorIs(t, err, ErrNoProfile)

	_, err = Parse("   ")
	require.ErrorIs(t, err, ErrNoProfile)
}

func TestParseDefaultsToGuest(t *testing.T) {
	p, err := Parse(`{}`)
	require.NoError(t, err)
	assert.True(t, p.IsGuest())

	p, err = Parse(`{"status":"guest"}`)
	require.NoError(t, err)
	assert.True(t, p.IsGuest())
}

func TestPrefillValues(t *testing.T) {
	p := Profile{
		Status: "known",
		Email:  "sara@example.com",
		Address: &Address{
			FirstName: "Sara",
			LastName:  "Alqahtani",
			Phone:     "+966500000000",
			City:      "Riyadh",
			Country:   "SA",
			Zip:       "12211",
			Address1:  "King Fahd Rd 1",
		},
	}

	v := PrefillValues(p)
	assert.Equal(t, "sara@example.com", v.Get(forms.FieldEmail))
	assert.Equal(t, "Sara", v.Get(forms.FieldFirstName))
	assert.Equal(t, "Riyadh", v.Get(forms.FieldCity))

	// same profile, same values: re-opening the modal is idempotent
	assert.Equal(t, v, PrefillValues(p))

	// guests are redirected, never prefilled
	assert.Empty(t, PrefillValues(Profile{Status: "guest", Email: "x@y.co"}))
}

func TestPrefillValuesWithoutAddress(t *testing.T) {
	v := PrefillValues(Profile{Status: "known", Email: "only@mail.co"})
	assert.Equal(t, "only@mail.co", v.Get(forms.FieldEmail))
	assert.Equal(t, "", v.Get(forms.FieldCity))
}
