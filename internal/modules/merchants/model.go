package merchants

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Merchant is one widget deployment. Code is the data-code the embedding
// script tag carries; everything that used to be hard-coded in the script
// (endpoints, hook secret, default form variant) lives here.
type Merchant struct {
	ID   string `gorm:"column:id;primaryKey"`
	Code string `gorm:"column:code;uniqueIndex"`
	Name string `gorm:"column:name"`

	ShopDomain       string `gorm:"column:shop_domain"`
	FormType         string `gorm:"column:form_type"` // full | simple
	ProcessorBaseURL string `gorm:"column:processor_base_url"`
	RelayURL         string `gorm:"column:relay_url"`
	HookSecret       string `gorm:"column:hook_secret"`
	ModalAssetKey    string `gorm:"column:modal_asset_key"`

	APIKeyHash string `gorm:"column:api_key_hash"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Merchant) TableName() string { return "merchants" }

// CheckAPIKey verifies a merchant-scoped API key against the stored hash.
func (m Merchant) CheckAPIKey(apiKey string) error {
	if bcrypt.CompareHashAndPassword([]byte(m.APIKeyHash), []byte(apiKey)) != nil {
		return ErrBadAPIKey
	}
	return nil
}
