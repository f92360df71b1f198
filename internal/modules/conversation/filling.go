// README: Slot-filling engine: merges extraction output into state, applies
// keyword fallbacks, validates, and selects the next question.
package conversation

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"tripsure/internal/ai"
	"tripsure/internal/geo"
)

const (
	minTravelerAge = 0
	maxTravelerAge = 120
)

// FillOutcome is the result of merging one turn into the state.
type FillOutcome struct {
	State State
	// Warnings are advisory notices rendered ahead of the next prompt
	// (rejected dates, dropped ages, implausible activity combinations).
	Warnings []string
	// LowConfidence is set when a keyword signal overrode a contradicting
	// extraction value; logged, never user-visible.
	LowConfidence bool
}

// Fill merges an extraction result and the raw utterance into the state.
// classify maps a destination to its geographic profile for the plausibility
// check; it must not be nil (use a stub returning the zero Profile in tests).
//
// Merge priority: explicit answer to the pending question, keyword fallback
// for the optional boolean, opportunistic first-write-wins fill, plausibility
// check, then next-slot selection. Fill is pure with respect to its inputs:
// the given state is never mutated.
func Fill(state State, utterance string, ex *ai.Extraction, now time.Time, classify func(string) geo.Profile) FillOutcome {
	st := state.Clone()
	out := FillOutcome{}
	if ex == nil {
		ex = &ai.Extraction{}
	}

	// An explicit correction may reopen an already-filled slot; this is the
	// only way a later turn overwrites an earlier answer.
	if ex.Intent == ai.IntentCorrection && ex.CorrectSlot != nil {
		if slot, ok := KnownSlot(*ex.CorrectSlot); ok {
			st.ClearSlot(slot)
			st.PendingQuestion = slot
		}
	}

	adventureBefore := st.AdventureSports

	// Step 1: explicit answer to the pending question.
	pending := st.PendingQuestion
	if pending != SlotNone {
		out.applyPendingAnswer(&st, pending, utterance, ex, now)
	}

	// Step 2: keyword fallback for the optional boolean. The turn must
	// progress even when extraction and keywords both come up empty, so the
	// slot defaults to no-cover rather than stalling the dialogue.
	if pending == SlotAdventure && st.AdventureSports == nil {
		if v, ok := MatchYesNo(utterance); ok {
			st.AdventureSports = &v
		} else {
			v := false
			st.AdventureSports = &v
			out.Warnings = append(out.Warnings,
				"I couldn't tell either way, so I've assumed no adventure sports cover. Say \"change adventure sports\" if that's wrong.")
		}
	}

	// Step 3: opportunistic fill. Extracted values for slots other than the
	// pending one are accepted only into empty slots; first write wins.
	out.applyOpportunistic(&st, pending, ex, now)

	// Step 4: plausibility check between the activity preference and the
	// destination's terrain, only when cover was switched on this turn.
	turnedOn := st.AdventureSports != nil && *st.AdventureSports &&
		(adventureBefore == nil || !*adventureBefore)
	if turnedOn && st.Destination != "" {
		if warn := implausibleActivity(utterance, classify(st.Destination), st.Destination); warn != "" {
			v := false
			st.AdventureSports = &v
			out.Warnings = append(out.Warnings, warn)
		}
	}

	// Step 5: next-slot selection in fixed declared order.
	if missing := st.MissingRequired(); missing != SlotNone {
		st.PendingQuestion = missing
	} else if st.AdventureSports == nil {
		st.PendingQuestion = SlotAdventure
	} else {
		st.PendingQuestion = SlotNone
		st.AwaitingConfirmation = true
	}

	out.State = st
	return out
}

// applyPendingAnswer merges the value the user gave for the slot they were
// just asked about.
func (out *FillOutcome) applyPendingAnswer(st *State, pending Slot, utterance string, ex *ai.Extraction, now time.Time) {
	switch pending {
	case SlotDestination:
		if ex.Destination != nil && *ex.Destination != "" {
			st.Destination = *ex.Destination
		}
	case SlotDepartureDate:
		raw := ""
		if ex.DepartureDate != nil {
			raw = *ex.DepartureDate
		} else if ex.Empty() {
			// Extraction came back empty; the utterance itself is often just
			// the date ("Jan 5"), so try it directly.
			raw = utterance
		}
		if raw != "" {
			out.setDeparture(st, raw, now)
		}
	case SlotReturnDate:
		raw := ""
		if ex.ReturnDate != nil {
			raw = *ex.ReturnDate
		} else if ex.DepartureDate != nil {
			// A lone date answered to the return-date question sometimes
			// lands in the wrong field; the pending slot wins.
			raw = *ex.DepartureDate
		} else if ex.Empty() {
			raw = utterance
		}
		if raw != "" {
			out.setReturn(st, raw, now)
		}
	case SlotTravelerAges:
		ages := ex.TravelerAges
		if len(ages) == 0 && ex.Empty() {
			ages = agesFromTokens(utterance)
		}
		if len(ages) > 0 {
			out.setAges(st, ages)
		}
	case SlotAdventure:
		if ex.AdventureSports != nil {
			val := *ex.AdventureSports
			// An unambiguous keyword in the raw utterance beats a
			// contradicting extraction value.
			if kw, ok := MatchYesNo(utterance); ok && kw != val {
				log.Printf("conversation: low-confidence merge, keyword %t overrides extraction %t (utterance=%q)", kw, val, utterance)
				out.LowConfidence = true
				val = kw
			}
			st.AdventureSports = &val
		}
	}
}

// applyOpportunistic accepts extracted values for non-pending slots into
// empty slots only.
func (out *FillOutcome) applyOpportunistic(st *State, pending Slot, ex *ai.Extraction, now time.Time) {
	if pending != SlotDestination && !st.SlotFilled(SlotDestination) &&
		ex.Destination != nil && *ex.Destination != "" {
		st.Destination = *ex.Destination
	}
	if pending != SlotDepartureDate && !st.SlotFilled(SlotDepartureDate) && ex.DepartureDate != nil {
		out.setDeparture(st, *ex.DepartureDate, now)
	}
	if pending != SlotReturnDate && !st.SlotFilled(SlotReturnDate) && ex.ReturnDate != nil {
		out.setReturn(st, *ex.ReturnDate, now)
	}
	if pending != SlotTravelerAges && !st.SlotFilled(SlotTravelerAges) && len(ex.TravelerAges) > 0 {
		out.setAges(st, ex.TravelerAges)
	}
	if pending != SlotAdventure && st.AdventureSports == nil && ex.AdventureSports != nil {
		v := *ex.AdventureSports
		st.AdventureSports = &v
	}
}

// setDeparture parses and validates a departure date. A rejected value leaves
// the slot empty so the next prompt re-asks it.
func (out *FillOutcome) setDeparture(st *State, raw string, now time.Time) {
	d, err := ParseFlexibleDate(raw, now)
	if err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("I couldn't read %q as a date.", raw))
		return
	}
	if d.Before(midnight(now)) {
		out.Warnings = append(out.Warnings, fmt.Sprintf("%s is in the past; I need a future departure date.", formatDate(d)))
		return
	}
	if st.ReturnDate != nil && d.After(*st.ReturnDate) {
		out.Warnings = append(out.Warnings, fmt.Sprintf("A departure on %s would be after your return on %s.", formatDate(d), formatDate(*st.ReturnDate)))
		return
	}
	st.DepartureDate = &d
}

// setReturn parses and validates a return date against a known departure.
func (out *FillOutcome) setReturn(st *State, raw string, now time.Time) {
	d, err := ParseFlexibleDate(raw, now)
	if err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("I couldn't read %q as a date.", raw))
		return
	}
	if st.DepartureDate != nil && d.Before(*st.DepartureDate) {
		out.Warnings = append(out.Warnings, fmt.Sprintf("A return on %s would be before your departure on %s.", formatDate(d), formatDate(*st.DepartureDate)))
		return
	}
	st.ReturnDate = &d
}

// setAges keeps the in-range entries and reports the dropped ones. Rejection
// is per entry, never for the whole list.
func (out *FillOutcome) setAges(st *State, ages []int) {
	var valid []int
	var dropped []int
	for _, a := range ages {
		if a < minTravelerAge || a > maxTravelerAge {
			dropped = append(dropped, a)
			continue
		}
		valid = append(valid, a)
	}
	if len(dropped) > 0 {
		out.Warnings = append(out.Warnings, fmt.Sprintf("I skipped %d age value(s) outside 0-120.", len(dropped)))
	}
	if len(valid) > 0 {
		st.TravelerAges = valid
	}
}

// agesFromTokens pulls plausible ages out of a raw utterance when extraction
// returned nothing ("30 and 28" while ages are pending).
func agesFromTokens(utterance string) []int {
	var ages []int
	for _, tok := range normalizeTokens(utterance) {
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		if n >= minTravelerAge && n <= maxTravelerAge {
			ages = append(ages, n)
		}
	}
	return ages
}

var alpineActivityWords = []string{"ski", "skiing", "snowboard", "snowboarding", "ice climbing", "glacier"}
var marineActivityWords = []string{"scuba", "dive", "diving", "snorkel", "snorkeling", "surf", "surfing", "kitesurf"}

// implausibleActivity flags physically implausible activity/destination
// combinations. Returns the advisory warning, or "" when plausible.
func implausibleActivity(utterance string, profile geo.Profile, destination string) string {
	if !profile.Resolved {
		return ""
	}
	tokens := normalizeTokens(utterance)
	has := func(words []string) bool {
		for _, w := range words {
			if findTokenSeq(tokens, normalizeTokens(w)) >= 0 {
				return true
			}
		}
		return false
	}
	if profile.Tropical && !profile.Alpine && has(alpineActivityWords) {
		return fmt.Sprintf("Heads up: %s has no snow sports, so I've left adventure sports cover off. Say \"change adventure sports\" if you still want it.", destination)
	}
	if profile.Landlocked && has(marineActivityWords) {
		return fmt.Sprintf("Heads up: %s is landlocked, so water sports cover wouldn't apply; I've left adventure sports cover off.", destination)
	}
	return ""
}
