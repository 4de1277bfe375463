package merchants

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("merchant not found")

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) GetByCode(ctx context.Context, code string) (Merchant, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Merchant{}, ErrNotFound
	}

	var m Merchant
	err := r.db.WithContext(ctx).First(&m, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Merchant{}, ErrNotFound
	}
	if err != nil {
		return Merchant{}, err
	}
	return m, nil
}

func (r *Repo) Create(ctx context.Context, m *Merchant) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *Repo) Update(ctx context.Context, m *Merchant) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *Repo) List(ctx context.Context) ([]Merchant, error) {
	var out []Merchant
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *Repo) DeleteByCode(ctx context.Context, code string) error {
	res := r.db.WithContext(ctx).Where("code = ?", code).Delete(&Merchant{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) SetModalAssetKey(ctx context.Context, code, key string) error {
	res := r.db.WithContext(ctx).Model(&Merchant{}).
		Where("code = ?", code).
		Update("modal_asset_key", key)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
