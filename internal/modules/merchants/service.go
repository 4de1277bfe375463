package merchants

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sohepalslamat/shopify-front/internal/modules/forms"
)

var (
	ErrCodeTaken     = errors.New("merchant code already registered")
	ErrBadAPIKey     = errors.New("invalid API key")
	ErrMissingConfig = errors.New("merchant config incomplete")
)

type Service struct {
	repo *Repo
}

func NewService(db *gorm.DB) *Service {
	return &Service{repo: NewRepo(db)}
}

func (s *Service) Repo() *Repo { return s.repo }

type RegisterInput struct {
	Code             string
	Name             string
	ShopDomain       string
	FormType         string
	ProcessorBaseURL string
	RelayURL         string
	HookSecret       string
}

type RegisterResult struct {
	Merchant Merchant
	// APIKey is returned exactly once; only its bcrypt hash is stored.
	APIKey string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" || strings.TrimSpace(in.ShopDomain) == "" ||
		strings.TrimSpace(in.ProcessorBaseURL) == "" || strings.TrimSpace(in.RelayURL) == "" {
		return RegisterResult{}, ErrMissingConfig
	}

	if _, err := s.repo.GetByCode(ctx, code); err == nil {
		return RegisterResult{}, ErrCodeTaken
	} else if !errors.Is(err, ErrNotFound) {
		return RegisterResult{}, err
	}

	apiKey := newAPIKey()
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		return RegisterResult{}, err
	}

	secret := strings.TrimSpace(in.HookSecret)
	if secret == "" {
		secret = randomHex(16)
	}

	now := time.Now()
	m := Merchant{
		ID:               uuid.NewString(),
		Code:             code,
		Name:             strings.TrimSpace(in.Name),
		ShopDomain:       strings.TrimSpace(in.ShopDomain),
		FormType:         string(forms.ParseMode(in.FormType)),
		ProcessorBaseURL: strings.TrimRight(strings.TrimSpace(in.ProcessorBaseURL), "/"),
		RelayURL:         strings.TrimSpace(in.RelayURL),
		HookSecret:       secret,
		APIKeyHash:       string(hash),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, &m); err != nil {
		return RegisterResult{}, err
	}
	return RegisterResult{Merchant: m, APIKey: apiKey}, nil
}

// Authenticate resolves a merchant by code and checks the merchant-scoped
// API key against the stored hash.
func (s *Service) Authenticate(ctx context.Context, code, apiKey string) (Merchant, error) {
	m, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return Merchant{}, err
	}
	if err := m.CheckAPIKey(apiKey); err != nil {
		return Merchant{}, err
	}
	return m, nil
}

// Mode resolves the active form variant: an explicit request override wins,
// otherwise the deployment default applies.
func Mode(m Merchant, override string) forms.Mode {
	if strings.TrimSpace(override) != "" {
		return forms.ParseMode(override)
	}
	return forms.ParseMode(m.FormType)
}

func newAPIKey() string { return "wk_" + randomHex(24) }

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(b)
}
