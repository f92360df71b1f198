package conversation

import (
	"testing"

	"tripsure/internal/ai"
)

func awaitingState() State {
	st := filledState(boolPtr(false))
	st.AwaitingConfirmation = true
	return st
}

func TestConfirmAffirmative(t *testing.T) {
	for _, utterance := range []string{"yes", "yep, looks right", "sure"} {
		out := Confirm(awaitingState(), utterance, &ai.Extraction{Intent: ai.IntentConfirmYes})
		st := out.State
		if !st.Confirmed || st.AwaitingConfirmation {
			t.Errorf("%q: confirmed=%v awaiting=%v, want confirmed and not awaiting", utterance, st.Confirmed, st.AwaitingConfirmation)
		}
		if st.TerminalSignal != SignalProceedToPricing {
			t.Errorf("%q: signal = %q, want proceed_to_pricing", utterance, st.TerminalSignal)
		}
	}
}

func TestConfirmAffirmativeByKeywordAlone(t *testing.T) {
	// Extraction came back empty; the keyword table still recognizes the yes.
	out := Confirm(awaitingState(), "yes please", nil)
	if !out.State.Confirmed {
		t.Error("expected keyword-only affirmative to confirm")
	}
}

func TestConfirmCorrectionReopensSlot(t *testing.T) {
	ex := &ai.Extraction{
		Intent:      ai.IntentCorrection,
		CorrectSlot: strPtr("destination"),
		Destination: strPtr("Paris"),
	}
	out := Confirm(awaitingState(), "change the destination to Paris", ex)
	st := out.State

	if st.Destination != "" {
		t.Errorf("destination = %q, want cleared (value applied next turn, not here)", st.Destination)
	}
	if st.PendingQuestion != SlotDestination {
		t.Errorf("pending = %q, want destination", st.PendingQuestion)
	}
	if st.AwaitingConfirmation {
		t.Error("correction must reopen slot filling")
	}
	if st.Confirmed || st.TerminalSignal != SignalNone {
		t.Error("correction must not confirm or terminate")
	}
}

func TestConfirmCorrectionByKeywordsAlone(t *testing.T) {
	// No extractor help: the slot name in the utterance is enough.
	out := Confirm(awaitingState(), "that's wrong, the return date is off", nil)
	if out.State.PendingQuestion != SlotReturnDate {
		t.Errorf("pending = %q, want return_date", out.State.PendingQuestion)
	}
	if out.State.ReturnDate != nil {
		t.Error("return date should be cleared")
	}
}

func TestConfirmChangeDatesReopensBoth(t *testing.T) {
	out := Confirm(awaitingState(), "actually the dates are wrong", nil)
	st := out.State
	if st.DepartureDate != nil || st.ReturnDate != nil {
		t.Errorf("dates = (%v, %v), want both cleared", st.DepartureDate, st.ReturnDate)
	}
	if st.PendingQuestion != SlotDepartureDate {
		t.Errorf("pending = %q, want departure_date", st.PendingQuestion)
	}
}

func TestConfirmPlainRefusalAsksWhich(t *testing.T) {
	prev := awaitingState()
	out := Confirm(prev, "no", &ai.Extraction{Intent: ai.IntentConfirmNo})

	if !out.Rerender || !out.AskWhich {
		t.Errorf("rerender=%v askWhich=%v, want both true", out.Rerender, out.AskWhich)
	}
	if FactsChanged(prev, out.State) || !out.State.AwaitingConfirmation {
		t.Error("plain refusal must not mutate state")
	}
}

func TestConfirmUnrecognizedRerendersUnchanged(t *testing.T) {
	prev := awaitingState()
	out := Confirm(prev, "what's the weather like there?", &ai.Extraction{Intent: ai.IntentChat})

	if !out.Rerender {
		t.Error("expected a legitimate re-render")
	}
	if out.AskWhich {
		t.Error("unrecognized utterance should not nudge for a field")
	}
	if FactsChanged(prev, out.State) || !out.State.AwaitingConfirmation || out.State.Confirmed {
		t.Error("unrecognized utterance must be a pure no-op")
	}
}
