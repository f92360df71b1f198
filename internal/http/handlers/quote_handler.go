// README: Quote handler: support lookup of the priced quote for a session.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tripsure/internal/modules/pricing"
)

// QuoteService is the slice of the pricing service the HTTP layer needs.
type QuoteService interface {
	QuoteBySession(ctx context.Context, sessionID string) (*pricing.Quote, error)
}

type QuoteHandler struct {
	quotes QuoteService
}

func NewQuoteHandler(quotes QuoteService) *QuoteHandler {
	return &QuoteHandler{quotes: quotes}
}

// BySession handles GET /api/sessions/:id/quote (support tooling).
func (h *QuoteHandler) BySession(c *gin.Context) {
	sessionID := c.Param("id")
	if !isValidSessionID(sessionID) {
		writeError(c, http.StatusBadRequest, "invalid session id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	q, err := h.quotes.QuoteBySession(ctx, sessionID)
	if err != nil {
		writeError(c, http.StatusServiceUnavailable, "try again shortly")
		return
	}
	if q == nil {
		writeError(c, http.StatusNotFound, "no quote for session")
		return
	}
	writeJSON(c, http.StatusOK, q)
}
