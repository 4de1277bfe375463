package merchants

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sohepalslamat/shopify-front/internal/modules/forms"
)

func TestModeResolution(t *testing.T) {
	m := Merchant{FormType: "simple"}

	assert.Equal(t, forms.ModeSimple, Mode(m, ""))
	assert.Equal(t, forms.ModeFull, Mode(m, "full"), "request override wins")
	assert.Equal(t, forms.ModeSimple, Mode(Merchant{FormType: "full"}, "simple"))
	assert.Equal(t, forms.ModeFull, Mode(Merchant{}, ""), "unknown defaults to full")
}

func TestCheckAPIKey(t *testing.T) {
	key := newAPIKey()
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	require.NoError(t, err)

	m := Merchant{Code: "ekhbqf-c1", APIKeyHash: string(hash)}

	assert.NoError(t, m.CheckAPIKey(key))
	assert.ErrorIs(t, m.CheckAPIKey("wk_wrong"), ErrBadAPIKey)
	assert.ErrorIs(t, Merchant{}.CheckAPIKey(key), ErrBadAPIKey)
}

func TestNewAPIKeyShape(t *testing.T) {
	k1 := newAPIKey()
	k2 := newAPIKey()

	assert.Regexp(t, `^wk_[0-9a-f]{48}$`, k1)
	assert.NotEqual(t, k1, k2)
}
