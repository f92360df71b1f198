// README: Prompt and summary rendering. All user-facing wording lives here.
package conversation

import (
	"fmt"
	"strings"
)

var slotPrompts = map[Slot]string{
	SlotDestination:   "Where are you traveling to?",
	SlotDepartureDate: "When do you depart?",
	SlotReturnDate:    "And when do you return?",
	SlotTravelerAges:  "How old is each traveler? (e.g. \"34 and 31\")",
	SlotAdventure:     "Will anyone be doing adventure sports, like skiing or scuba diving? (yes/no)",
}

// promptFor returns the question for a slot. The re-ask variant is used when
// the same slot is prompted twice in a row, so the user hears an
// acknowledgement instead of a verbatim repeat.
func promptFor(slot Slot, reask bool) string {
	p, ok := slotPrompts[slot]
	if !ok {
		return "Could you tell me a bit more about your trip?"
	}
	if reask {
		return "Sorry, I didn't catch that. " + p
	}
	return p
}

// renderSummary shows everything collected and asks for the final go-ahead.
func renderSummary(st State, askWhich bool) string {
	var b strings.Builder
	b.WriteString("Here's what I have for your quote:\n")
	fmt.Fprintf(&b, "- Destination: %s\n", st.Destination)
	if st.DepartureDate != nil {
		fmt.Fprintf(&b, "- Departure: %s\n", formatDate(*st.DepartureDate))
	}
	if st.ReturnDate != nil {
		fmt.Fprintf(&b, "- Return: %s\n", formatDate(*st.ReturnDate))
	}
	fmt.Fprintf(&b, "- Travelers: %s\n", describeAges(st.TravelerAges))
	cover := "no"
	if st.AdventureSports != nil && *st.AdventureSports {
		cover = "yes"
	}
	fmt.Fprintf(&b, "- Adventure sports cover: %s\n", cover)
	if askWhich {
		b.WriteString("No problem - which detail should I change? (destination, dates, ages, or adventure sports)")
	} else {
		b.WriteString("Shall I price this for you? (yes/no)")
	}
	return b.String()
}

func describeAges(ages []int) string {
	if len(ages) == 0 {
		return "unknown"
	}
	if len(ages) == 1 {
		return fmt.Sprintf("1 traveler, age %d", ages[0])
	}
	return fmt.Sprintf("%d travelers, ages %s", len(ages), joinAges(ages))
}

const (
	pricingMessage = "Great, give me a moment - I'm preparing your quote now."
	handoffMessage = "I'm handing you over to one of our agents, who will pick this up with the full conversation so far. One moment please."
)

// terminalMessage is the reply for any turn on an already-terminal session.
func terminalMessage(signal TerminalSignal) string {
	switch signal {
	case SignalProceedToPricing:
		return pricingMessage
	case SignalHumanHandoff:
		return handoffMessage
	}
	return ""
}

// joinWarnings prefixes advisory notices onto a prompt.
func joinWarnings(warnings []string, prompt string) string {
	if len(warnings) == 0 {
		return prompt
	}
	return strings.Join(warnings, "\n") + "\n" + prompt
}
