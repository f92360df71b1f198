package ai

import (
	"context"
)

// Extractor defines the contract for turning a free-text utterance into
// structured quote facts. Implementations are fallible and non-deterministic;
// callers must tolerate partial or empty results.
type Extractor interface {
	// Extract analyzes the user's utterance in the light of the current
	// conversation snapshot. stateContext carries dynamic information such as
	// "current_date", "pending_question", and the already-collected facts.
	Extract(ctx context.Context, utterance string, stateContext map[string]string) (*Extraction, error)
}
