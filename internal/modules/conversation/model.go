// README: Conversation state model: slots, terminal signals, and invariant helpers.
package conversation

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Slot names a single fact the dialogue collects.
type Slot string

const (
	SlotNone          Slot = ""
	SlotDestination   Slot = "destination"
	SlotDepartureDate Slot = "departure_date"
	SlotReturnDate    Slot = "return_date"
	SlotTravelerAges  Slot = "traveler_ages"
	SlotAdventure     Slot = "adventure_sports"
)

// RequiredSlots is the fixed prompting order. Next-slot selection always scans
// this list front to back; SlotAdventure is optional and asked last.
var RequiredSlots = [...]Slot{SlotDestination, SlotDepartureDate, SlotReturnDate, SlotTravelerAges}

// KnownSlot maps an external slot name (e.g. from an extraction result) to a
// Slot, reporting whether the name is recognized.
func KnownSlot(name string) (Slot, bool) {
	switch Slot(strings.ToLower(strings.TrimSpace(name))) {
	case SlotDestination:
		return SlotDestination, true
	case SlotDepartureDate:
		return SlotDepartureDate, true
	case SlotReturnDate:
		return SlotReturnDate, true
	case SlotTravelerAges:
		return SlotTravelerAges, true
	case SlotAdventure:
		return SlotAdventure, true
	}
	return SlotNone, false
}

// TerminalSignal marks how a session leaves this core's control.
type TerminalSignal string

const (
	// SignalNone is the zero value: the dialogue is still in progress.
	SignalNone             TerminalSignal = ""
	SignalProceedToPricing TerminalSignal = "proceed_to_pricing"
	SignalHumanHandoff     TerminalSignal = "human_handoff"
)

// State is the full accumulated fact set for one session. It is owned by the
// orchestrator during a turn and by the checkpoint store between turns; no
// other component mutates it.
//
// AdventureSports is a tri-state: nil means the question has not been
// answered yet, which is different from an explicit false.
type State struct {
	Destination     string     `json:"destination,omitempty"`
	DepartureDate   *time.Time `json:"departure_date,omitempty"`
	ReturnDate      *time.Time `json:"return_date,omitempty"`
	TravelerAges    []int      `json:"traveler_ages,omitempty"`
	AdventureSports *bool      `json:"adventure_sports,omitempty"`

	PendingQuestion      Slot           `json:"pending_question,omitempty"`
	AwaitingConfirmation bool           `json:"awaiting_confirmation,omitempty"`
	Confirmed            bool           `json:"confirmed,omitempty"`
	TerminalSignal       TerminalSignal `json:"terminal_signal,omitempty"`

	TurnCount       int `json:"turn_count"`
	NoProgressCount int `json:"no_progress_count"`
}

// NewState returns the empty state a session starts from.
func NewState() State {
	return State{}
}

// Clone returns a deep copy; Fill and Confirm operate on copies so a failed
// turn never leaks partial mutations into the caller's state.
func (s State) Clone() State {
	out := s
	if s.DepartureDate != nil {
		d := *s.DepartureDate
		out.DepartureDate = &d
	}
	if s.ReturnDate != nil {
		d := *s.ReturnDate
		out.ReturnDate = &d
	}
	if s.TravelerAges != nil {
		out.TravelerAges = append([]int(nil), s.TravelerAges...)
	}
	if s.AdventureSports != nil {
		b := *s.AdventureSports
		out.AdventureSports = &b
	}
	return out
}

// SlotFilled reports whether the given slot holds a value.
func (s State) SlotFilled(slot Slot) bool {
	switch slot {
	case SlotDestination:
		return s.Destination != ""
	case SlotDepartureDate:
		return s.DepartureDate != nil
	case SlotReturnDate:
		return s.ReturnDate != nil
	case SlotTravelerAges:
		return len(s.TravelerAges) > 0
	case SlotAdventure:
		return s.AdventureSports != nil
	}
	return false
}

// ClearSlot empties the given slot (used by the confirmation gate to reopen a
// corrected fact).
func (s *State) ClearSlot(slot Slot) {
	switch slot {
	case SlotDestination:
		s.Destination = ""
	case SlotDepartureDate:
		s.DepartureDate = nil
	case SlotReturnDate:
		s.ReturnDate = nil
	case SlotTravelerAges:
		s.TravelerAges = nil
	case SlotAdventure:
		s.AdventureSports = nil
	}
}

// MissingRequired returns the first unfilled required slot in prompting
// order, or SlotNone when all required facts are present.
func (s State) MissingRequired() Slot {
	for _, slot := range RequiredSlots {
		if !s.SlotFilled(slot) {
			return slot
		}
	}
	return SlotNone
}

// RequiredComplete reports whether every required slot is filled.
func (s State) RequiredComplete() bool {
	return s.MissingRequired() == SlotNone
}

// Terminal reports whether the session has left this core's control.
func (s State) Terminal() bool {
	return s.TerminalSignal != SignalNone
}

// FactsChanged reports whether any slot value differs between two states.
// Control flags and counters are deliberately excluded: the loop guard only
// cares about fact-level progress.
func FactsChanged(a, b State) bool {
	if a.Destination != b.Destination {
		return true
	}
	if !sameDate(a.DepartureDate, b.DepartureDate) || !sameDate(a.ReturnDate, b.ReturnDate) {
		return true
	}
	if len(a.TravelerAges) != len(b.TravelerAges) {
		return true
	}
	for i := range a.TravelerAges {
		if a.TravelerAges[i] != b.TravelerAges[i] {
			return true
		}
	}
	if (a.AdventureSports == nil) != (b.AdventureSports == nil) {
		return true
	}
	if a.AdventureSports != nil && *a.AdventureSports != *b.AdventureSports {
		return true
	}
	return false
}

func sameDate(a, b *time.Time) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || a.Equal(*b)
}

// KnownFacts renders the filled slots as a compact "key=value" line, injected
// into the extraction prompt so the model sees what is already settled.
func (s State) KnownFacts() string {
	var parts []string
	if s.Destination != "" {
		parts = append(parts, "destination="+s.Destination)
	}
	if s.DepartureDate != nil {
		parts = append(parts, "departure_date="+s.DepartureDate.Format("2006-01-02"))
	}
	if s.ReturnDate != nil {
		parts = append(parts, "return_date="+s.ReturnDate.Format("2006-01-02"))
	}
	if len(s.TravelerAges) > 0 {
		parts = append(parts, "traveler_ages="+joinAges(s.TravelerAges))
	}
	if s.AdventureSports != nil {
		parts = append(parts, fmt.Sprintf("adventure_sports=%t", *s.AdventureSports))
	}
	return strings.Join(parts, "; ")
}

func joinAges(ages []int) string {
	strs := make([]string, len(ages))
	for i, a := range ages {
		strs[i] = fmt.Sprintf("%d", a)
	}
	return strings.Join(strs, ",")
}

// FactsSnapshot is the immutable payload handed to the pricing collaborator
// once the user confirms. Built only from a complete, confirmed state.
type FactsSnapshot struct {
	SessionID       string    `json:"session_id"`
	Destination     string    `json:"destination"`
	DepartureDate   time.Time `json:"departure_date"`
	ReturnDate      time.Time `json:"return_date"`
	TravelerAges    []int     `json:"traveler_ages"`
	AdventureSports bool      `json:"adventure_sports"`
}

// Snapshot freezes the collected facts for the pricing handoff. It must only
// be called once RequiredComplete() holds and AdventureSports is resolved.
func (s State) Snapshot(sessionID string) FactsSnapshot {
	snap := FactsSnapshot{
		SessionID:    sessionID,
		Destination:  s.Destination,
		TravelerAges: append([]int(nil), s.TravelerAges...),
	}
	if s.DepartureDate != nil {
		snap.DepartureDate = *s.DepartureDate
	}
	if s.ReturnDate != nil {
		snap.ReturnDate = *s.ReturnDate
	}
	if s.AdventureSports != nil {
		snap.AdventureSports = *s.AdventureSports
	}
	return snap
}

// TripDays returns the inclusive trip length in days, minimum 1.
func (f FactsSnapshot) TripDays() int {
	days := int(f.ReturnDate.Sub(f.DepartureDate).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	return days
}

// OldestTraveler returns the highest age in the snapshot.
func (f FactsSnapshot) OldestTraveler() int {
	ages := append([]int(nil), f.TravelerAges...)
	sort.Ints(ages)
	if len(ages) == 0 {
		return 0
	}
	return ages[len(ages)-1]
}
