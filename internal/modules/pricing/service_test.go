package pricing

import (
	"context"
	"testing"
	"time"

	"tripsure/internal/geo"
	"tripsure/internal/modules/conversation"
)

type fixedResolver struct {
	profile geo.Profile
}

func (r fixedResolver) Resolve(_ context.Context, _ string) (geo.Profile, error) {
	return r.profile, nil
}

func snapshot(ages []int, adventure bool) conversation.FactsSnapshot {
	return conversation.FactsSnapshot{
		SessionID:       "s1",
		Destination:     "Tokyo",
		DepartureDate:   time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC),
		ReturnDate:      time.Date(2026, 6, 12, 0, 0, 0, 0, time.UTC),
		TravelerAges:    ages,
		AdventureSports: adventure,
	}
}

func TestPriceBasePerTravelerDay(t *testing.T) {
	svc := NewService(nil, fixedResolver{geo.Profile{Country: "Japan", Tier: geo.Tier1, Resolved: true}})

	// 8 inclusive days, 2 travelers under 65, tier1 at 1200/day.
	q, err := svc.Price(context.Background(), snapshot([]int{30, 40}, false))
	if err != nil {
		t.Fatal(err)
	}
	want := int64(1200 * 8 * 2)
	if q.Total.Amount != want {
		t.Errorf("total = %d, want %d", q.Total.Amount, want)
	}
	if q.Total.Currency != "USD" {
		t.Errorf("currency = %q, want USD", q.Total.Currency)
	}
	if q.Tier != "tier1" {
		t.Errorf("tier = %q, want tier1", q.Tier)
	}
	if q.Breakdown["base"] != want {
		t.Errorf("base breakdown = %d, want %d", q.Breakdown["base"], want)
	}
}

func TestPriceSeniorLoading(t *testing.T) {
	svc := NewService(nil, fixedResolver{geo.Profile{Country: "Japan", Tier: geo.Tier1, Resolved: true}})

	// The 70-year-old carries a 50% loading; the 30-year-old does not.
	q, err := svc.Price(context.Background(), snapshot([]int{30, 70}, false))
	if err != nil {
		t.Fatal(err)
	}
	base := int64(1200 * 8)
	senior := base * 50 / 100
	if q.Total.Amount != base*2+senior {
		t.Errorf("total = %d, want %d", q.Total.Amount, base*2+senior)
	}
	if q.Breakdown["senior_loading"] != senior {
		t.Errorf("senior loading = %d, want %d", q.Breakdown["senior_loading"], senior)
	}
}

func TestPriceSeniorThresholdBoundary(t *testing.T) {
	svc := NewService(nil, fixedResolver{geo.Profile{Country: "Japan", Tier: geo.Tier1, Resolved: true}})

	at64, _ := svc.Price(context.Background(), snapshot([]int{64}, false))
	at65, _ := svc.Price(context.Background(), snapshot([]int{65}, false))
	if at64.Breakdown["senior_loading"] != 0 {
		t.Errorf("64 carried a senior loading of %d", at64.Breakdown["senior_loading"])
	}
	if at65.Breakdown["senior_loading"] == 0 {
		t.Error("65 must carry the senior loading")
	}
}

func TestPriceAdventureLoadingOnTotal(t *testing.T) {
	svc := NewService(nil, fixedResolver{geo.Profile{Country: "Japan", Tier: geo.Tier1, Resolved: true}})

	// Adventure loading applies after the senior loading.
	q, err := svc.Price(context.Background(), snapshot([]int{70}, true))
	if err != nil {
		t.Fatal(err)
	}
	base := int64(1200 * 8)
	withSenior := base + base*50/100
	adventure := withSenior * 30 / 100
	if q.Total.Amount != withSenior+adventure {
		t.Errorf("total = %d, want %d", q.Total.Amount, withSenior+adventure)
	}
	if q.Breakdown["adventure_loading"] != adventure {
		t.Errorf("adventure loading = %d, want %d", q.Breakdown["adventure_loading"], adventure)
	}
}

func TestPriceUnresolvedDestinationDefaultsTier3(t *testing.T) {
	svc := NewService(nil, fixedResolver{geo.Profile{}})

	q, err := svc.Price(context.Background(), snapshot([]int{30}, false))
	if err != nil {
		t.Fatal(err)
	}
	if q.Tier != "tier3" {
		t.Errorf("tier = %q, want tier3 for an unresolved destination", q.Tier)
	}
	if q.Total.Amount != 500*8 {
		t.Errorf("total = %d, want %d", q.Total.Amount, 500*8)
	}
}

func TestPriceSameDayTripIsOneDay(t *testing.T) {
	svc := NewService(nil, fixedResolver{geo.Profile{Country: "Japan", Tier: geo.Tier2, Resolved: true}})

	snap := snapshot([]int{30}, false)
	snap.ReturnDate = snap.DepartureDate
	q, err := svc.Price(context.Background(), snap)
	if err != nil {
		t.Fatal(err)
	}
	if q.Total.Amount != 800 {
		t.Errorf("total = %d, want one tier2 traveler-day", q.Total.Amount)
	}
}

func TestPriceRejectsEmptyTravelers(t *testing.T) {
	svc := NewService(nil, nil)
	if _, err := svc.Price(context.Background(), snapshot(nil, false)); err == nil {
		t.Fatal("expected an error for a snapshot with no travelers")
	}
}
