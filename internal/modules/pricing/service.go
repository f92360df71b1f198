// README: Pricing service: rates a confirmed fact snapshot into a quote.
package pricing

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"tripsure/internal/geo"
	"tripsure/internal/modules/conversation"
	"tripsure/internal/types"
)

// defaultRates backs the service when the rates table is empty or no database
// is wired; amounts are minor units per traveler per day.
var defaultRates = map[geo.PriceTier]Rate{
	geo.Tier1: {Tier: string(geo.Tier1), PerTravelerDay: 1200, Currency: "USD"},
	geo.Tier2: {Tier: string(geo.Tier2), PerTravelerDay: 800, Currency: "USD"},
	geo.Tier3: {Tier: string(geo.Tier3), PerTravelerDay: 500, Currency: "USD"},
}

// Service implements the conversation core's PricingHandoff port.
type Service struct {
	store    *Store
	resolver geo.Resolver
}

func NewService(store *Store, resolver geo.Resolver) *Service {
	return &Service{store: store, resolver: resolver}
}

// QuoteRequested receives the frozen snapshot after confirmation, prices it,
// and persists the quote. The conversation core neither waits for nor reads
// the price.
func (s *Service) QuoteRequested(ctx context.Context, snap conversation.FactsSnapshot) error {
	q, err := s.Price(ctx, snap)
	if err != nil {
		return err
	}
	if s.store != nil {
		if err := s.store.SaveQuote(ctx, q); err != nil {
			return err
		}
	}
	log.Printf("pricing: quote %s for session %s: %d %s (%s, %d travelers, %d days)",
		q.ID, q.SessionID, q.Total.Amount, q.Total.Currency, q.Tier,
		len(q.TravelerAges), snap.TripDays())
	return nil
}

// Price rates a snapshot: tier base per traveler-day, a senior loading per
// traveler 65+, and an adventure-sports loading on the total.
func (s *Service) Price(ctx context.Context, snap conversation.FactsSnapshot) (*Quote, error) {
	if len(snap.TravelerAges) == 0 {
		return nil, errors.New("snapshot has no travelers")
	}

	tier := geo.Tier3
	if s.resolver != nil {
		if profile, err := s.resolver.Resolve(ctx, snap.Destination); err == nil && profile.Resolved {
			tier = profile.Tier
		}
	}

	rate := s.lookupRate(ctx, tier)
	days := int64(snap.TripDays())

	breakdown := make(map[string]int64)
	var total int64
	for _, age := range snap.TravelerAges {
		premium := rate.PerTravelerDay * days
		if age >= seniorAgeThreshold {
			loading := premium * seniorLoadPercent / 100
			premium += loading
			breakdown["senior_loading"] += loading
		}
		total += premium
	}
	breakdown["base"] = rate.PerTravelerDay * days * int64(len(snap.TravelerAges))

	if snap.AdventureSports {
		loading := total * adventureLoadPercent / 100
		breakdown["adventure_loading"] = loading
		total += loading
	}

	return &Quote{
		ID:              newID(),
		SessionID:       snap.SessionID,
		Destination:     snap.Destination,
		Tier:            string(tier),
		DepartureDate:   snap.DepartureDate,
		ReturnDate:      snap.ReturnDate,
		TravelerAges:    append([]int(nil), snap.TravelerAges...),
		AdventureSports: snap.AdventureSports,
		Total:           types.Money{Amount: total, Currency: rate.Currency},
		Breakdown:       breakdown,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// QuoteBySession returns the stored quote for a session, or nil when nothing
// has been priced yet (support tooling).
func (s *Service) QuoteBySession(ctx context.Context, sessionID string) (*Quote, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.GetQuoteBySession(ctx, sessionID)
}

func (s *Service) lookupRate(ctx context.Context, tier geo.PriceTier) Rate {
	if s.store != nil {
		r, err := s.store.GetRate(ctx, string(tier))
		if err == nil {
			return r
		}
		if !errors.Is(err, ErrRateNotFound) {
			log.Printf("pricing: rate lookup failed for %s, using defaults: %v", tier, err)
		}
	}
	return defaultRates[tier]
}

func newID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
