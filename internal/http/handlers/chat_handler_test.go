// README: Handler tests for the chat turn and session state endpoints.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"tripsure/internal/http/handlers"
	"tripsure/internal/modules/conversation"
)

// stubTurnService is a test double for the conversation service.
type stubTurnService struct {
	result conversation.TurnResult
	state  conversation.State
	found  bool
	err    error

	gotSession string
	gotMessage string
}

func (s *stubTurnService) HandleTurn(_ context.Context, sessionID, utterance string) (conversation.TurnResult, error) {
	s.gotSession = sessionID
	s.gotMessage = utterance
	return s.result, s.err
}

func (s *stubTurnService) State(_ context.Context, _ string) (conversation.State, bool, error) {
	return s.state, s.found, s.err
}

func buildTestRouter(svc handlers.TurnService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handlers.NewChatHandler(svc)
	r.POST("/api/chat/turn", h.Turn)
	r.GET("/api/sessions/:id/state", h.State)
	return r
}

func doRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTurn_OK(t *testing.T) {
	svc := &stubTurnService{result: conversation.TurnResult{
		Prompt: "Where are you traveling to?",
	}}
	r := buildTestRouter(svc)

	w := doRequest(r, http.MethodPost, "/api/chat/turn", map[string]any{
		"session_id": "sess1",
		"message":    "hi, I need insurance",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if svc.gotSession != "sess1" || svc.gotMessage != "hi, I need insurance" {
		t.Errorf("service received (%q, %q)", svc.gotSession, svc.gotMessage)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if resp["prompt"] != "Where are you traveling to?" {
		t.Errorf("prompt = %v", resp["prompt"])
	}
	if _, present := resp["terminal_signal"]; present {
		t.Error("empty terminal_signal must be omitted")
	}
}

func TestTurn_TerminalSignalSerialized(t *testing.T) {
	svc := &stubTurnService{result: conversation.TurnResult{
		Prompt: "Connecting you with a human agent.",
		Signal: conversation.SignalHumanHandoff,
	}}
	r := buildTestRouter(svc)

	w := doRequest(r, http.MethodPost, "/api/chat/turn", map[string]any{
		"session_id": "sess1",
		"message":    "agent please",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["terminal_signal"] != "human_handoff" {
		t.Errorf("terminal_signal = %v, want human_handoff", resp["terminal_signal"])
	}
}

func TestTurn_BadRequests(t *testing.T) {
	r := buildTestRouter(&stubTurnService{})

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing session", map[string]any{"message": "hi"}},
		{"missing message", map[string]any{"session_id": "sess1"}},
		{"blank message", map[string]any{"session_id": "sess1", "message": "   "}},
		{"oversized session id", map[string]any{"session_id": strings.Repeat("x", 65), "message": "hi"}},
	}
	for _, tc := range cases {
		if w := doRequest(r, http.MethodPost, "/api/chat/turn", tc.body); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, w.Code)
		}
	}
}

func TestTurn_BusySessionConflicts(t *testing.T) {
	r := buildTestRouter(&stubTurnService{err: conversation.ErrSessionBusy})

	w := doRequest(r, http.MethodPost, "/api/chat/turn", map[string]any{
		"session_id": "sess1",
		"message":    "hi",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 for a busy session, got %d", w.Code)
	}
}

func TestTurn_BackendFailureIsRetryable(t *testing.T) {
	r := buildTestRouter(&stubTurnService{err: errors.New("redis: connection refused")})

	w := doRequest(r, http.MethodPost, "/api/chat/turn", map[string]any{
		"session_id": "sess1",
		"message":    "hi",
	})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestState_OKAndNotFound(t *testing.T) {
	known := &stubTurnService{state: conversation.State{Destination: "Tokyo", TurnCount: 3}, found: true}
	r := buildTestRouter(known)

	w := doRequest(r, http.MethodGet, "/api/sessions/sess1/state", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var st conversation.State
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("invalid state json: %v", err)
	}
	if st.Destination != "Tokyo" || st.TurnCount != 3 {
		t.Errorf("state did not serialize: %+v", st)
	}

	r = buildTestRouter(&stubTurnService{found: false})
	if w := doRequest(r, http.MethodGet, "/api/sessions/nope/state", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for an unknown session, got %d", w.Code)
	}
}
