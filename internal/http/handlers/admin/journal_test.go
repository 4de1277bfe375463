package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohepalslamat/shopify-front/internal/http/middleware"
	"github.com/sohepalslamat/shopify-front/internal/modules/orders"
)

type stubJournal struct {
	entries []orders.JournalEntry
	err     error
}

func (s stubJournal) BySession(_ context.Context, _ string) ([]orders.JournalEntry, error) {
	return s.entries, s.err
}

func journalRouter(h *JournalHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler(logger))
	r.GET("/sessions/:id/journal", h.BySession)
	return r
}

func TestJournalBySession(t *testing.T) {
	h := NewJournalHandler(stubJournal{entries: []orders.JournalEntry{
		{ID: "e1", SessionID: "s1", Step: string(orders.StepCreateOrder), Status: "ok", ResultURL: "https://checkout.example.com/c/t", CreatedAt: time.Now()},
		{ID: "e2", SessionID: "s1", Step: string(orders.StepRelay), Status: "failed", ErrorMessage: "status 500", CreatedAt: time.Now()},
	}})
	r := journalRouter(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/s1/journal", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Entries []orders.JournalEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Entries, 2)
	assert.Equal(t, string(orders.StepRelay), body.Entries[1].Step)
	assert.Equal(t, "failed", body.Entries[1].Status)
}

func TestJournalBySessionEmpty(t *testing.T) {
	h := NewJournalHandler(stubJournal{})
	r := journalRouter(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/none/journal", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"entries":[]}`, w.Body.String())
}

func TestJournalBySessionError(t *testing.T) {
	h := NewJournalHandler(stubJournal{err: errors.New("db gone")})
	r := journalRouter(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/s1/journal", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
