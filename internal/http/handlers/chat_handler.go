// README: Chat handler: one dialogue turn per request.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tripsure/internal/modules/conversation"
)

// TurnService is the slice of the conversation service the HTTP layer needs.
type TurnService interface {
	HandleTurn(ctx context.Context, sessionID, utterance string) (conversation.TurnResult, error)
	State(ctx context.Context, sessionID string) (conversation.State, bool, error)
}

type ChatHandler struct {
	turns TurnService
}

func NewChatHandler(turns TurnService) *ChatHandler {
	return &ChatHandler{turns: turns}
}

type turnReq struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	UserID    string `json:"user_id,omitempty"`
}

type turnResp struct {
	Prompt string `json:"prompt"`
	Signal string `json:"terminal_signal,omitempty"`
}

// Turn handles POST /api/chat/turn.
func (h *ChatHandler) Turn(c *gin.Context) {
	var req turnReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	req.SessionID = strings.TrimSpace(req.SessionID)
	req.Message = strings.TrimSpace(req.Message)
	if req.SessionID == "" || req.Message == "" {
		writeError(c, http.StatusBadRequest, "missing session_id or message")
		return
	}
	if !isValidSessionID(req.SessionID) {
		writeError(c, http.StatusBadRequest, "invalid session_id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
	defer cancel()

	result, err := h.turns.HandleTurn(ctx, req.SessionID, req.Message)
	if err != nil {
		writeTurnError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, turnResp{Prompt: result.Prompt, Signal: string(result.Signal)})
}

// State handles GET /api/sessions/:id/state (support tooling).
func (h *ChatHandler) State(c *gin.Context) {
	sessionID := c.Param("id")
	if !isValidSessionID(sessionID) {
		writeError(c, http.StatusBadRequest, "invalid session id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	st, found, err := h.turns.State(ctx, sessionID)
	if err != nil {
		writeTurnError(c, err)
		return
	}
	if !found {
		writeError(c, http.StatusNotFound, "unknown session")
		return
	}
	writeJSON(c, http.StatusOK, st)
}
