package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sohepalslamat/shopify-front/internal/http/middleware"
	"github.com/sohepalslamat/shopify-front/internal/modules/assets"
	"github.com/sohepalslamat/shopify-front/internal/modules/countries"
	"github.com/sohepalslamat/shopify-front/internal/modules/merchants"
	"github.com/sohepalslamat/shopify-front/internal/shared/apperr"
)

// AssetsHandler serves the modal markup and the country list the widget
// injects into the host page.
type AssetsHandler struct {
	Merchants MerchantSource
	Countries *countries.Loader
	Assets    *assets.Service
}

func NewAssetsHandler(src MerchantSource, loader *countries.Loader, asvc *assets.Service) *AssetsHandler {
	return &AssetsHandler{Merchants: src, Countries: loader, Assets: asvc}
}

// ModalHTML returns the merchant's modal markup with country options
// already substituted. Missing markup renders as empty content rather
// than an error; the widget treats that as a no-op.
func (h *AssetsHandler) ModalHTML(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		middleware.Fail(c, apperr.InvalidErr("Missing widget code.", nil))
		return
	}

	m, err := h.Merchants.GetByCode(c.Request.Context(), code)
	if errors.Is(err, merchants.ErrNotFound) {
		middleware.Fail(c, apperr.NotFoundErr("Unknown widget code."))
		return
	}
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	list := h.Countries.List(c.Request.Context())
	markup := h.Assets.ModalHTML(c.Request.Context(), m.ModalAssetKey, list)

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(markup))
}

func (h *AssetsHandler) CountriesJSON(c *gin.Context) {
	c.JSON(http.StatusOK, h.Countries.List(c.Request.Context()))
}
