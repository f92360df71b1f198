// README: Quote and rate definitions for the pricing collaborator.
package pricing

import (
	"time"

	"tripsure/internal/types"
)

// Rate is the per-traveler-day premium for one destination price tier.
type Rate struct {
	Tier           string
	PerTravelerDay int64 // minor units
	Currency       string
}

// Loadings applied on top of the base premium, in percent.
const (
	// Travelers 65 and older carry a medical loading.
	seniorAgeThreshold = 65
	seniorLoadPercent  = 50
	// Adventure-sports cover loads the whole premium.
	adventureLoadPercent = 30
)

// Quote is the priced result persisted for one confirmed conversation.
type Quote struct {
	ID              string           `json:"id"`
	SessionID       string           `json:"session_id"`
	Destination     string           `json:"destination"`
	Tier            string           `json:"tier"`
	DepartureDate   time.Time        `json:"departure_date"`
	ReturnDate      time.Time        `json:"return_date"`
	TravelerAges    []int            `json:"traveler_ages"`
	AdventureSports bool             `json:"adventure_sports"`
	Total           types.Money      `json:"total"`
	Breakdown       map[string]int64 `json:"breakdown"`
	CreatedAt       time.Time        `json:"created_at"`
}
