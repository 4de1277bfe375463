package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sohepalslamat/shopify-front/internal/http/middleware"
	"github.com/sohepalslamat/shopify-front/internal/http/validation"
	"github.com/sohepalslamat/shopify-front/internal/http/widgettoken"
	"github.com/sohepalslamat/shopify-front/internal/modules/cart"
	"github.com/sohepalslamat/shopify-front/internal/modules/customer"
	"github.com/sohepalslamat/shopify-front/internal/modules/forms"
	"github.com/sohepalslamat/shopify-front/internal/modules/merchants"
	"github.com/sohepalslamat/shopify-front/internal/modules/orders"
	"github.com/sohepalslamat/shopify-front/internal/modules/session"
	"github.com/sohepalslamat/shopify-front/internal/shared/apperr"
)

// MerchantSource is the slice of the merchant registry the widget needs.
type MerchantSource interface {
	GetByCode(ctx context.Context, code string) (merchants.Merchant, error)
}

type WidgetHandler struct {
	Merchants MerchantSource
	Sessions  session.Store
	Tokens    *widgettoken.Codec
	Cart      *cart.Client
	Pipeline  *orders.Pipeline
	LoginURL  string
}

func NewWidgetHandler(src MerchantSource, store session.Store, tokens *widgettoken.Codec, cartClient *cart.Client, pipe *orders.Pipeline) *WidgetHandler {
	return &WidgetHandler{
		Merchants: src,
		Sessions:  store,
		Tokens:    tokens,
		Cart:      cartClient,
		Pipeline:  pipe,
		LoginURL:  "/account/login",
	}
}

type openInput struct {
	Code     string `json:"code" binding:"required,max=64"`
	FormType string `json:"form_type" binding:"omitempty,oneof=full simple"`
	// Customer is the raw data-customer attribute from the trigger element.
	Customer string `json:"customer" binding:"required"`
	// Cart is the raw /cart.js document the embedding script fetched
	// same-origin. The cart is cookie-scoped, so only the shopper's
	// browser can read it; when absent the server falls back to an
	// uncredentialed fetch (dev/mock storefronts only).
	Cart json.RawMessage `json:"cart"`
}

type openResponse struct {
	SessionID string       `json:"session_id"`
	Token     string       `json:"token"`
	FormType  forms.Mode   `json:"form_type"`
	Prefill   forms.Values `json:"prefill"`
	Total     string       `json:"total"`
	Currency  string       `json:"currency"`
}

// Open runs the modal-open sequence: resolve the deployment, parse the
// customer snapshot, fetch and normalize the cart, create the session.
func (h *WidgetHandler) Open(c *gin.Context) {
	var in openInput
	if err := c.ShouldBindJSON(&in); err != nil {
		errs := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Request data is invalid.", errs))
		return
	}

	m, err := h.Merchants.GetByCode(c.Request.Context(), in.Code)
	if errors.Is(err, merchants.ErrNotFound) {
		middleware.Fail(c, apperr.NotFoundErr("Unknown widget code."))
		return
	}
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	prof, err := customer.Parse(in.Customer)
	if err != nil {
		log.Printf("widget open: bad customer data for code=%s: %v", m.Code, err)
		middleware.Fail(c, apperr.InvalidErr("Customer data is missing or invalid.", nil))
		return
	}

	if prof.IsGuest() {
		c.JSON(http.StatusOK, gin.H{"redirect": h.LoginURL})
		return
	}

	var snap cart.Snapshot
	if len(in.Cart) > 0 {
		raw, err := cart.Parse(in.Cart)
		if err == nil {
			snap, err = cart.Normalize(raw)
		}
		if err != nil {
			middleware.Fail(c, apperr.InvalidErr("Cart data is invalid.", nil))
			return
		}
	} else {
		raw, err := h.Cart.Fetch(c.Request.Context(), m.ShopDomain)
		if err != nil {
			middleware.Fail(c, apperr.UnavailableErr("Error fetching cart data. Please try again.", err))
			return
		}
		if snap, err = cart.Normalize(raw); err != nil {
			middleware.Fail(c, apperr.UnavailableErr("Error fetching cart data. Please try again.", err))
			return
		}
	}

	sess := session.New(m.Code, merchants.Mode(m, in.FormType), prof, snap)
	if err := h.Sessions.Put(c.Request.Context(), sess); err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, openResponse{
		SessionID: sess.ID,
		Token:     h.Tokens.Encode(sess.ID),
		FormType:  sess.Mode,
		Prefill:   sess.Form,
		Total:     snap.Total,
		Currency:  snap.Currency,
	})
}

type submitInput struct {
	Token  string            `json:"token" binding:"required"`
	Fields map[string]string `json:"fields" binding:"required"`
}

// Submit validates the form and runs the two-step submission pipeline.
// On success the widget navigates to the returned URL.
func (h *WidgetHandler) Submit(c *gin.Context) {
	var in submitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		errs := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Request data is invalid.", errs))
		return
	}

	id := c.Param("id")
	if tokenID, err := h.Tokens.Decode(in.Token); err != nil || tokenID != id {
		middleware.Fail(c, apperr.UnauthorizedErr("Invalid session token."))
		return
	}

	// Claim the submitting state in the store before doing anything else.
	// Two concurrent submits both reading an open session and then both
	// proceeding is exactly the double-order race this transition exists
	// to prevent, so the store performs it atomically.
	sess, err := h.Sessions.BeginSubmit(c.Request.Context(), id)
	switch {
	case errors.Is(err, session.ErrNotFound):
		middleware.Fail(c, apperr.NotFoundErr("Checkout session expired. Please reopen the form."))
		return
	case errors.Is(err, session.ErrSubmitInFlight):
		middleware.Fail(c, apperr.ConflictErr("A submission is already in progress."))
		return
	case errors.Is(err, session.ErrNotOpen):
		middleware.Fail(c, apperr.ConflictErr("The checkout form is not open."))
		return
	case err != nil:
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	m, err := h.Merchants.GetByCode(c.Request.Context(), sess.MerchantCode)
	if err != nil {
		h.releaseSubmit(c, sess)
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	sess.ApplyForm(forms.Values(in.Fields))

	if errs := forms.Validate(sess.Form, sess.Mode); len(errs) > 0 {
		// back to open, persisting edits so a corrected resubmit only
		// sends the fixed fields
		h.releaseSubmit(c, sess)
		middleware.Fail(c, apperr.InvalidErr("Please correct the highlighted fields.", errs))
		return
	}

	url, err := h.Pipeline.Submit(c.Request.Context(), m, sess)
	if err != nil {
		h.releaseSubmit(c, sess)
		middleware.Fail(c, submissionError(err))
		return
	}

	sess.Close()
	_ = h.Sessions.Delete(c.Request.Context(), sess.ID)

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// releaseSubmit returns a claimed session to open and persists it,
// keeping any form edits and pipeline progress (checkout URL) made on
// this attempt.
func (h *WidgetHandler) releaseSubmit(c *gin.Context, sess *session.Checkout) {
	sess.EndSubmit()
	_ = h.Sessions.Put(c.Request.Context(), sess)
}

// Close drops the session. Reopening creates a fresh one, which re-runs
// prefill from the latest profile.
func (h *WidgetHandler) Close(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		var body struct {
			Token string `json:"token"`
		}
		_ = c.ShouldBindJSON(&body)
		token = body.Token
	}

	sess, ok := h.authorizedSession(c, token)
	if !ok {
		return
	}

	_ = h.Sessions.Delete(c.Request.Context(), sess.ID)
	c.Status(http.StatusNoContent)
}

func (h *WidgetHandler) authorizedSession(c *gin.Context, token string) (*session.Checkout, bool) {
	id := c.Param("id")

	tokenID, err := h.Tokens.Decode(token)
	if err != nil || tokenID != id {
		middleware.Fail(c, apperr.UnauthorizedErr("Invalid session token."))
		return nil, false
	}

	sess, err := h.Sessions.Get(c.Request.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		middleware.Fail(c, apperr.NotFoundErr("Checkout session expired. Please reopen the form."))
		return nil, false
	}
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return nil, false
	}
	return sess, true
}

func submissionError(err error) error {
	var sf *orders.StepFailure
	if errors.As(err, &sf) && sf.Step == orders.StepRelay {
		return apperr.UnavailableErr("An error occurred while sending data. Please try again.", err)
	}
	if errors.Is(err, orders.ErrNoCartToken) || errors.Is(err, orders.ErrFormNotValid) {
		return apperr.InvalidErr("The checkout form is incomplete.", nil)
	}
	return apperr.UnavailableErr("An error occurred while creating the order.", err)
}
