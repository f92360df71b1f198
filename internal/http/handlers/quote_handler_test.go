// README: Handler tests for the session quote lookup endpoint.
package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"tripsure/internal/http/handlers"
	"tripsure/internal/modules/pricing"
	"tripsure/internal/types"
)

// stubQuoteService is a test double for the pricing lookup.
type stubQuoteService struct {
	quote *pricing.Quote
	err   error

	gotSession string
}

func (s *stubQuoteService) QuoteBySession(_ context.Context, sessionID string) (*pricing.Quote, error) {
	s.gotSession = sessionID
	return s.quote, s.err
}

func buildQuoteRouter(svc handlers.QuoteService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handlers.NewQuoteHandler(svc)
	r.GET("/api/sessions/:id/quote", h.BySession)
	return r
}

func TestQuoteBySession_OK(t *testing.T) {
	svc := &stubQuoteService{quote: &pricing.Quote{
		ID:            "q1",
		SessionID:     "sess1",
		Destination:   "Tokyo",
		Tier:          "tier1",
		DepartureDate: time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC),
		ReturnDate:    time.Date(2026, 6, 12, 0, 0, 0, 0, time.UTC),
		TravelerAges:  []int{30},
		Total:         types.Money{Amount: 9600, Currency: "USD"},
		Breakdown:     map[string]int64{"base": 9600},
		CreatedAt:     time.Now().UTC(),
	}}
	r := buildQuoteRouter(svc)

	w := doRequest(r, http.MethodGet, "/api/sessions/sess1/quote", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if svc.gotSession != "sess1" {
		t.Errorf("service received session %q", svc.gotSession)
	}
	var got pricing.Quote
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid quote json: %v", err)
	}
	if got.ID != "q1" || got.Destination != "Tokyo" || got.Total.Amount != 9600 {
		t.Errorf("quote did not serialize: %+v", got)
	}
}

func TestQuoteBySession_NotFound(t *testing.T) {
	r := buildQuoteRouter(&stubQuoteService{})

	if w := doRequest(r, http.MethodGet, "/api/sessions/sess1/quote", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 when nothing has been priced, got %d", w.Code)
	}
}

func TestQuoteBySession_BackendFailureIsRetryable(t *testing.T) {
	r := buildQuoteRouter(&stubQuoteService{err: errors.New("pg: connection refused")})

	if w := doRequest(r, http.MethodGet, "/api/sessions/sess1/quote", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestQuoteBySession_InvalidID(t *testing.T) {
	r := buildQuoteRouter(&stubQuoteService{})

	path := "/api/sessions/" + strings.Repeat("x", 65) + "/quote"
	if w := doRequest(r, http.MethodGet, path, nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an oversized session id, got %d", w.Code)
	}
}
