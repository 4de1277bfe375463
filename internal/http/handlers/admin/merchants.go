package admin

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sohepalslamat/shopify-front/internal/http/middleware"
	"github.com/sohepalslamat/shopify-front/internal/http/validation"
	"github.com/sohepalslamat/shopify-front/internal/modules/assets"
	"github.com/sohepalslamat/shopify-front/internal/modules/merchants"
	"github.com/sohepalslamat/shopify-front/internal/shared/apperr"
	"github.com/sohepalslamat/shopify-front/internal/storage"
)

const maxModalUpload = 1 << 20 // 1 MiB of markup is plenty

// MerchantsHandler is the admin API for widget deployments: register a
// storefront, list deployments, upload per-merchant modal markup.
type MerchantsHandler struct {
	Merchants *merchants.Service
	Storage   storage.Storage
	Assets    *assets.Service
}

func NewMerchantsHandler(msvc *merchants.Service, store storage.Storage, asvc *assets.Service) *MerchantsHandler {
	return &MerchantsHandler{Merchants: msvc, Storage: store, Assets: asvc}
}

type registerInput struct {
	Code             string `json:"code" binding:"required,max=64"`
	Name             string `json:"name" binding:"omitempty,max=191"`
	ShopDomain       string `json:"shop_domain" binding:"required,hostname"`
	FormType         string `json:"form_type" binding:"omitempty,oneof=full simple"`
	ProcessorBaseURL string `json:"processor_base_url" binding:"required,url"`
	RelayURL         string `json:"relay_url" binding:"required,url"`
	HookSecret       string `json:"hook_secret" binding:"omitempty,max=128"`
}

func (h *MerchantsHandler) Register(c *gin.Context) {
	var in registerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		errs := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Request data is invalid.", errs))
		return
	}

	res, err := h.Merchants.Register(c.Request.Context(), merchants.RegisterInput{
		Code:             in.Code,
		Name:             in.Name,
		ShopDomain:       in.ShopDomain,
		FormType:         in.FormType,
		ProcessorBaseURL: in.ProcessorBaseURL,
		RelayURL:         in.RelayURL,
		HookSecret:       in.HookSecret,
	})
	if errors.Is(err, merchants.ErrCodeTaken) {
		middleware.Fail(c, apperr.ConflictErr("Widget code is already registered."))
		return
	}
	if errors.Is(err, merchants.ErrMissingConfig) {
		middleware.Fail(c, apperr.InvalidErr("Merchant config is incomplete.", nil))
		return
	}
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"merchant": merchantView(res.Merchant),
		// shown once; only the hash is stored
		"api_key": res.APIKey,
	})
}

func (h *MerchantsHandler) List(c *gin.Context) {
	list, err := h.Merchants.Repo().List(c.Request.Context())
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	out := make([]gin.H, 0, len(list))
	for _, m := range list {
		out = append(out, merchantView(m))
	}
	c.JSON(http.StatusOK, gin.H{"merchants": out})
}

type updateInput struct {
	Name             string `json:"name" binding:"omitempty,max=191"`
	ShopDomain       string `json:"shop_domain" binding:"omitempty,hostname"`
	FormType         string `json:"form_type" binding:"omitempty,oneof=full simple"`
	ProcessorBaseURL string `json:"processor_base_url" binding:"omitempty,url"`
	RelayURL         string `json:"relay_url" binding:"omitempty,url"`
	HookSecret       string `json:"hook_secret" binding:"omitempty,max=128"`
}

// Update patches the deployment config; empty fields keep their value.
func (h *MerchantsHandler) Update(c *gin.Context) {
	var in updateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		errs := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Request data is invalid.", errs))
		return
	}

	m, err := h.Merchants.Repo().GetByCode(c.Request.Context(), c.Param("code"))
	if errors.Is(err, merchants.ErrNotFound) {
		middleware.Fail(c, apperr.NotFoundErr("Unknown widget code."))
		return
	}
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	if in.Name != "" {
		m.Name = in.Name
	}
	if in.ShopDomain != "" {
		m.ShopDomain = in.ShopDomain
	}
	if in.FormType != "" {
		m.FormType = in.FormType
	}
	if in.ProcessorBaseURL != "" {
		m.ProcessorBaseURL = strings.TrimRight(in.ProcessorBaseURL, "/")
	}
	if in.RelayURL != "" {
		m.RelayURL = in.RelayURL
	}
	if in.HookSecret != "" {
		m.HookSecret = in.HookSecret
	}

	if err := h.Merchants.Repo().Update(c.Request.Context(), &m); err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"merchant": merchantView(m)})
}

func (h *MerchantsHandler) Delete(c *gin.Context) {
	err := h.Merchants.Repo().DeleteByCode(c.Request.Context(), c.Param("code"))
	if errors.Is(err, merchants.ErrNotFound) {
		middleware.Fail(c, apperr.NotFoundErr("Unknown widget code."))
		return
	}
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadModal stores new modal markup for a merchant and drops the cached
// copy so the next widget load picks it up.
func (h *MerchantsHandler) UploadModal(c *gin.Context) {
	code := c.Param("code")

	m, err := h.Merchants.Repo().GetByCode(c.Request.Context(), code)
	if errors.Is(err, merchants.ErrNotFound) {
		middleware.Fail(c, apperr.NotFoundErr("Unknown widget code."))
		return
	}
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	file, err := c.FormFile("markup")
	if err != nil {
		middleware.Fail(c, apperr.InvalidErr("A markup file is required.", nil))
		return
	}
	if file.Size > maxModalUpload {
		middleware.Fail(c, apperr.InvalidErr("Markup file is too large.", nil))
		return
	}

	src, err := file.Open()
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	defer src.Close()

	res, err := h.Storage.Put(c.Request.Context(), src, storage.PutInput{
		Filename:    file.Filename,
		ContentType: "text/html",
		Size:        file.Size,
	})
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	if err := h.Merchants.Repo().SetModalAssetKey(c.Request.Context(), m.Code, res.Key); err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	if m.ModalAssetKey != "" {
		h.Assets.Invalidate(m.ModalAssetKey)
	}
	h.Assets.Invalidate(res.Key)

	c.JSON(http.StatusOK, gin.H{"code": m.Code, "modal_asset_key": res.Key})
}

func merchantView(m merchants.Merchant) gin.H {
	return gin.H{
		"code":               m.Code,
		"name":               m.Name,
		"shop_domain":        m.ShopDomain,
		"form_type":          m.FormType,
		"processor_base_url": m.ProcessorBaseURL,
		"relay_url":          m.RelayURL,
		"modal_asset_key":    m.ModalAssetKey,
		"created_at":         m.CreatedAt,
	}
}
