package admin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sohepalslamat/shopify-front/internal/http/middleware"
	"github.com/sohepalslamat/shopify-front/internal/modules/orders"
	"github.com/sohepalslamat/shopify-front/internal/shared/apperr"
)

// JournalSource is the audit query the support endpoint needs.
type JournalSource interface {
	BySession(ctx context.Context, sessionID string) ([]orders.JournalEntry, error)
}

// JournalHandler exposes the relay journal for support: which pipeline
// steps ran for a session, with what outcome, and where a stuck saga
// stopped.
type JournalHandler struct {
	Journal JournalSource
}

func NewJournalHandler(j JournalSource) *JournalHandler {
	return &JournalHandler{Journal: j}
}

func (h *JournalHandler) BySession(c *gin.Context) {
	entries, err := h.Journal.BySession(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	if entries == nil {
		entries = []orders.JournalEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
