// README: Escalation service: implements the conversation core's human handoff port.
package escalation

import (
	"context"
	"log"
	"time"

	"tripsure/internal/modules/conversation"
)

// Record is what a human agent sees when picking up an escalated session.
type Record struct {
	SessionID  string                        `json:"session_id"`
	Transcript []conversation.TranscriptLine `json:"transcript"`
	CreatedAt  time.Time                     `json:"created_at"`
}

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// Escalate queues the session for a human agent together with its recent
// transcript.
func (s *Service) Escalate(ctx context.Context, sessionID string, transcript []conversation.TranscriptLine) error {
	rec := &Record{
		SessionID:  sessionID,
		Transcript: transcript,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.Enqueue(ctx, rec); err != nil {
		return err
	}
	log.Printf("escalation: session %s queued for human agent (%d transcript lines)", sessionID, len(transcript))
	return nil
}
