// README: Confirmation gate: summary approval, corrections, legitimate re-renders.
package conversation

import (
	"tripsure/internal/ai"
)

// ConfirmOutcome is the result of one turn at the confirmation gate.
type ConfirmOutcome struct {
	State State
	// Rerender marks the one legitimate no-op turn: the utterance was not
	// recognized, the summary is shown again unchanged, and the loop guard
	// must not treat it as a stall.
	Rerender bool
	// AskWhich adds a "which detail should I change?" nudge to the re-render
	// (set when the user refused without naming a fact).
	AskWhich bool
}

// Confirm processes a turn while awaiting the user's yes/no on the rendered
// summary. Corrections naming a known fact reopen that slot for the
// slot-filling engine; the new value is deliberately NOT applied here, so the
// first-write-wins rule never silently overwrites a confirmed answer.
func Confirm(state State, utterance string, ex *ai.Extraction) ConfirmOutcome {
	st := state.Clone()
	if ex == nil {
		ex = &ai.Extraction{}
	}

	// Corrections take priority: "no, change the destination" is a
	// correction, not a plain refusal.
	if slot, ok := correctionTarget(utterance, ex); ok {
		if slot == SlotDepartureDate && mentionsBothDates(utterance) {
			st.ClearSlot(SlotReturnDate)
		}
		st.ClearSlot(slot)
		st.PendingQuestion = slot
		st.AwaitingConfirmation = false
		return ConfirmOutcome{State: st}
	}

	kw, kwOK := MatchYesNo(utterance)

	switch {
	case ex.Intent == ai.IntentConfirmYes, kwOK && kw:
		st.Confirmed = true
		st.AwaitingConfirmation = false
		st.TerminalSignal = SignalProceedToPricing
		return ConfirmOutcome{State: st}

	case ex.Intent == ai.IntentConfirmNo, kwOK && !kw:
		// A refusal without a named fact: keep waiting, ask which detail to
		// change. No state mutation, so the re-render exemption applies.
		return ConfirmOutcome{State: st, Rerender: true, AskWhich: true}

	default:
		return ConfirmOutcome{State: st, Rerender: true}
	}
}

// correctionTarget resolves which slot a correction utterance points at,
// preferring the extractor's verdict and falling back to slot-name keywords.
func correctionTarget(utterance string, ex *ai.Extraction) (Slot, bool) {
	if ex.Intent == ai.IntentCorrection && ex.CorrectSlot != nil {
		if slot, ok := KnownSlot(*ex.CorrectSlot); ok {
			return slot, true
		}
	}
	tokens := normalizeTokens(utterance)
	if findTokenSeq(tokens, []string{"change"}) < 0 &&
		findTokenSeq(tokens, []string{"wrong"}) < 0 &&
		findTokenSeq(tokens, []string{"actually"}) < 0 &&
		ex.Intent != ai.IntentCorrection {
		return SlotNone, false
	}
	for _, sk := range slotKeywords {
		if findTokenSeq(tokens, normalizeTokens(sk.word)) >= 0 {
			return sk.slot, true
		}
	}
	return SlotNone, false
}

var slotKeywords = []struct {
	word string
	slot Slot
}{
	{"destination", SlotDestination},
	{"place", SlotDestination},
	{"country", SlotDestination},
	{"city", SlotDestination},
	{"departure", SlotDepartureDate},
	{"leaving", SlotDepartureDate},
	{"leave", SlotDepartureDate},
	{"dates", SlotDepartureDate},
	{"return", SlotReturnDate},
	{"back", SlotReturnDate},
	{"ages", SlotTravelerAges},
	{"age", SlotTravelerAges},
	{"travelers", SlotTravelerAges},
	{"travellers", SlotTravelerAges},
	{"adventure", SlotAdventure},
	{"sports", SlotAdventure},
	{"activities", SlotAdventure},
}

// mentionsBothDates reports whether a correction targets the date pair as a
// whole ("change the dates"), which reopens departure and return together.
func mentionsBothDates(utterance string) bool {
	tokens := normalizeTokens(utterance)
	return findTokenSeq(tokens, []string{"dates"}) >= 0
}
