// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripsure/internal/http/handlers"
	"tripsure/internal/http/middleware"
)

type ServerDeps struct {
	Turns  handlers.TurnService
	Quotes handlers.QuoteService
}

// NewRouter builds the gin engine with middleware and all routes registered.
func NewRouter(deps ServerDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logging())

	chat := handlers.NewChatHandler(deps.Turns)
	r.POST("/api/chat/turn", chat.Turn)
	r.GET("/api/sessions/:id/state", chat.State)

	quote := handlers.NewQuoteHandler(deps.Quotes)
	r.GET("/api/sessions/:id/quote", quote.BySession)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
