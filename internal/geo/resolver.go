package geo

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"
)

// PriceTier buckets destinations by expected medical and evacuation cost.
type PriceTier string

const (
	// Tier1 covers the most expensive markets (USA, Japan, Switzerland...).
	Tier1 PriceTier = "tier1"
	// Tier2 covers most of Europe and developed Asia-Pacific.
	Tier2 PriceTier = "tier2"
	// Tier3 is everything else.
	Tier3 PriceTier = "tier3"
)

// Profile describes what the underwriter needs to know about a destination:
// its price tier plus the terrain traits that gate adventure-sports cover.
type Profile struct {
	Country    string
	Tier       PriceTier
	Tropical   bool
	Alpine     bool
	Landlocked bool
	// Resolved is false when the destination could not be classified at all;
	// callers then fall back to Tier3 with no terrain knowledge.
	Resolved bool
}

// Resolver maps a free-text destination to a Profile.
type Resolver interface {
	Resolve(ctx context.Context, destination string) (Profile, error)
}

// Service resolves destinations through the Google Maps Geocoding API, with a
// static country table as fallback when no client is configured or the API errs.
type Service struct {
	client *maps.Client
}

// NewService creates a Service. An empty apiKey is allowed and yields a
// resolver that only uses the static table.
func NewService(apiKey string) (*Service, error) {
	if apiKey == "" {
		return &Service{}, nil
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Service{client: client}, nil
}

// Resolve classifies a destination. It never fails hard: an unknown place
// comes back as an unresolved Tier3 profile rather than an error, because a
// quote with a conservative tier beats a stalled conversation.
func (s *Service) Resolve(ctx context.Context, destination string) (Profile, error) {
	if p, ok := staticLookup(destination); ok {
		return p, nil
	}

	if s.client != nil {
		results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{
			Address:  destination,
			Language: "en",
		})
		if err == nil && len(results) > 0 {
			for _, comp := range results[0].AddressComponents {
				for _, t := range comp.Types {
					if t == "country" {
						if p, ok := countryProfile(comp.LongName); ok {
							return p, nil
						}
						// Known country name but not in our table: generic Tier3.
						return Profile{Country: comp.LongName, Tier: Tier3, Resolved: true}, nil
					}
				}
			}
		}
	}

	return Profile{Tier: Tier3}, nil
}

// staticLookup covers the city and country names that show up constantly in
// quotes, so the common path works with no Maps client at all.
func staticLookup(destination string) (Profile, bool) {
	key := strings.ToLower(strings.TrimSpace(destination))
	if p, ok := cityProfiles[key]; ok {
		return p, true
	}
	return countryProfile(key)
}

func countryProfile(country string) (Profile, bool) {
	p, ok := countryProfiles[strings.ToLower(strings.TrimSpace(country))]
	return p, ok
}

var countryProfiles = map[string]Profile{
	"united states":  {Country: "United States", Tier: Tier1, Resolved: true},
	"usa":            {Country: "United States", Tier: Tier1, Resolved: true},
	"japan":          {Country: "Japan", Tier: Tier1, Alpine: true, Resolved: true},
	"switzerland":    {Country: "Switzerland", Tier: Tier1, Alpine: true, Landlocked: true, Resolved: true},
	"austria":        {Country: "Austria", Tier: Tier2, Alpine: true, Landlocked: true, Resolved: true},
	"france":         {Country: "France", Tier: Tier2, Alpine: true, Resolved: true},
	"italy":          {Country: "Italy", Tier: Tier2, Alpine: true, Resolved: true},
	"germany":        {Country: "Germany", Tier: Tier2, Resolved: true},
	"united kingdom": {Country: "United Kingdom", Tier: Tier2, Resolved: true},
	"spain":          {Country: "Spain", Tier: Tier2, Resolved: true},
	"australia":      {Country: "Australia", Tier: Tier2, Resolved: true},
	"new zealand":    {Country: "New Zealand", Tier: Tier2, Alpine: true, Resolved: true},
	"singapore":      {Country: "Singapore", Tier: Tier2, Tropical: true, Resolved: true},
	"thailand":       {Country: "Thailand", Tier: Tier3, Tropical: true, Resolved: true},
	"indonesia":      {Country: "Indonesia", Tier: Tier3, Tropical: true, Resolved: true},
	"malaysia":       {Country: "Malaysia", Tier: Tier3, Tropical: true, Resolved: true},
	"vietnam":        {Country: "Vietnam", Tier: Tier3, Tropical: true, Resolved: true},
	"philippines":    {Country: "Philippines", Tier: Tier3, Tropical: true, Resolved: true},
	"maldives":       {Country: "Maldives", Tier: Tier3, Tropical: true, Resolved: true},
	"fiji":           {Country: "Fiji", Tier: Tier3, Tropical: true, Resolved: true},
	"nepal":          {Country: "Nepal", Tier: Tier3, Alpine: true, Landlocked: true, Resolved: true},
	"bolivia":        {Country: "Bolivia", Tier: Tier3, Alpine: true, Landlocked: true, Resolved: true},
	"mongolia":       {Country: "Mongolia", Tier: Tier3, Landlocked: true, Resolved: true},
	"laos":           {Country: "Laos", Tier: Tier3, Tropical: true, Landlocked: true, Resolved: true},
	"taiwan":         {Country: "Taiwan", Tier: Tier2, Tropical: true, Resolved: true},
}

var cityProfiles = map[string]Profile{
	"tokyo":      {Country: "Japan", Tier: Tier1, Resolved: true},
	"new york":   {Country: "United States", Tier: Tier1, Resolved: true},
	"honolulu":   {Country: "United States", Tier: Tier1, Tropical: true, Resolved: true},
	"zurich":     {Country: "Switzerland", Tier: Tier1, Alpine: true, Landlocked: true, Resolved: true},
	"geneva":     {Country: "Switzerland", Tier: Tier1, Alpine: true, Landlocked: true, Resolved: true},
	"zermatt":    {Country: "Switzerland", Tier: Tier1, Alpine: true, Landlocked: true, Resolved: true},
	"paris":      {Country: "France", Tier: Tier2, Resolved: true},
	"chamonix":   {Country: "France", Tier: Tier2, Alpine: true, Resolved: true},
	"london":     {Country: "United Kingdom", Tier: Tier2, Resolved: true},
	"vienna":     {Country: "Austria", Tier: Tier2, Landlocked: true, Resolved: true},
	"innsbruck":  {Country: "Austria", Tier: Tier2, Alpine: true, Landlocked: true, Resolved: true},
	"sydney":     {Country: "Australia", Tier: Tier2, Resolved: true},
	"queenstown": {Country: "New Zealand", Tier: Tier2, Alpine: true, Resolved: true},
	"bangkok":    {Country: "Thailand", Tier: Tier3, Tropical: true, Resolved: true},
	"phuket":     {Country: "Thailand", Tier: Tier3, Tropical: true, Resolved: true},
	"bali":       {Country: "Indonesia", Tier: Tier3, Tropical: true, Resolved: true},
	"kathmandu":  {Country: "Nepal", Tier: Tier3, Alpine: true, Landlocked: true, Resolved: true},
	"taipei":     {Country: "Taiwan", Tier: Tier2, Tropical: true, Resolved: true},
}
