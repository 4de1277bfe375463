package forms

import "strings"

// Mode selects which field set the checkout form collects. The embedding
// script picks it via data-form-type; unknown values fall back to full.
type Mode string

const (
	ModeFull   Mode = "full"
	ModeSimple Mode = "simple"
)

func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeSimple)) {
		return ModeSimple
	}
	return ModeFull
}

// Logical field names. The widget maps these onto its input ids
// (the simple variant prefixes ids with "simple").
const (
	FieldFirstName = "firstname"
	FieldLastName  = "lastname"
	FieldEmail     = "email"
	FieldPhone     = "phone"
	FieldCity      = "city"
	FieldProvince  = "province"
	FieldCountry   = "country"
	FieldZip       = "zip"
	FieldAddress1  = "address1"
)

// Values holds the user-edited form state keyed by logical field name.
type Values map[string]string

func (v Values) Get(field string) string {
	return strings.TrimSpace(v[field])
}

// Required returns the required field set for the mode. Simple mode skips
// the address block entirely.
func Required(mode Mode) []string {
	base := []string{FieldFirstName, FieldLastName, FieldEmail, FieldPhone}
	if mode == ModeSimple {
		return base
	}
	return append(base, FieldCity, FieldCountry, FieldZip, FieldAddress1)
}

// CollectsAddress reports whether the mode nests a delivery address block
// into the order payload.
func CollectsAddress(mode Mode) bool { return mode != ModeSimple }
