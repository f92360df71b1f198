// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripsure/internal/modules/conversation"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidSessionID keeps session identifiers opaque but bounded: printable
// ASCII without whitespace, at most 64 chars (covers UUIDs and similar).
func isValidSessionID(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, c := range v {
		if c <= ' ' || c > '~' {
			return false
		}
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeTurnError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, conversation.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, conversation.ErrSessionBusy):
		writeError(c, http.StatusConflict, err.Error())
	default:
		// Checkpoint store failures land here; the client retries the turn.
		writeError(c, http.StatusServiceUnavailable, "try again shortly")
	}
}
