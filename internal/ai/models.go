package ai

// Intent labels the user's primary goal for a turn.
const (
	IntentProvideInfo = "provide_info"
	IntentConfirmYes  = "confirm_yes"
	IntentConfirmNo   = "confirm_no"
	IntentCorrection  = "correction"
	IntentQuestion    = "question"
	IntentHandoff     = "handoff_request"
	IntentChat        = "chat"
)

// Extraction captures the structured output of one extraction call.
// All fact fields are nullable: an absent field means the utterance said
// nothing about that fact, which is different from an explicit value.
type Extraction struct {
	// Intent describes the user's primary goal (e.g. "provide_info", "confirm_yes").
	Intent string `json:"intent"`

	// Confidence is the model's self-reported confidence in [0,1].
	Confidence float64 `json:"confidence"`

	// Destination is the trip destination as stated by the user.
	Destination *string `json:"destination,omitempty"`

	// DepartureDate and ReturnDate are returned as the raw date phrase the
	// user gave ("2026-01-05", "Jan 5", "next friday"); the dialogue core
	// owns parsing so that validation failures re-prompt instead of crash.
	DepartureDate *string `json:"departure_date,omitempty"`
	ReturnDate    *string `json:"return_date,omitempty"`

	// TravelerAges lists the ages mentioned this turn, in utterance order.
	TravelerAges []int `json:"traveler_ages,omitempty"`

	// AdventureSports is the stated preference for adventure-sports cover.
	AdventureSports *bool `json:"adventure_sports,omitempty"`

	// CorrectSlot names the fact a correction utterance targets
	// ("destination", "departure_date", "return_date", "traveler_ages",
	// "adventure_sports"). Only meaningful when Intent is "correction".
	CorrectSlot *string `json:"correct_slot,omitempty"`
}

// Empty reports whether the extraction carries no fact values at all.
func (e *Extraction) Empty() bool {
	if e == nil {
		return true
	}
	return e.Destination == nil && e.DepartureDate == nil && e.ReturnDate == nil &&
		len(e.TravelerAges) == 0 && e.AdventureSports == nil && e.CorrectSlot == nil
}
