package forms

import "regexp"

var (
	// Minimal local@domain.tld shape; full RFC 5322 is out of scope.
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// US ZIP: 5 digits or ZIP+4. Not locale-aware; see DESIGN.md.
	zipRe = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

func IsValidEmail(s string) bool { return emailRe.MatchString(s) }

func IsValidZip(s string) bool { return zipRe.MatchString(s) }

// FieldErrors maps a logical field name to a shopper-facing message.
// An empty map means the form passed.
type FieldErrors map[string]string

// Validate re-checks every required field for the mode from scratch, so a
// corrected field drops out of the result on the next call.
func Validate(v Values, mode Mode) FieldErrors {
	errs := FieldErrors{}

	for _, f := range Required(mode) {
		if v.Get(f) == "" {
			errs[f] = requiredMessage(f)
		}
	}

	if email := v.Get(FieldEmail); email != "" && !IsValidEmail(email) {
		errs[FieldEmail] = "Enter a valid email address."
	}
	if CollectsAddress(mode) {
		if zip := v.Get(FieldZip); zip != "" && !IsValidZip(zip) {
			errs[FieldZip] = "Enter a valid ZIP code."
		}
	}

	return errs
}

func requiredMessage(field string) string {
	switch field {
	case FieldEmail:
		return "Email is required."
	case FieldZip:
		return "ZIP code is required."
	case FieldCountry:
		return "Select a country."
	default:
		return "This field is required."
	}
}
