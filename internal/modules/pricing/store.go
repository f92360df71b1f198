// README: Pricing store backed by PostgreSQL (rates table, quotes table).
package pricing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrRateNotFound = errors.New("no rate for tier")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// GetRate loads the per-traveler-day rate for a price tier.
func (s *Store) GetRate(ctx context.Context, tier string) (Rate, error) {
	var r Rate
	err := s.db.QueryRow(ctx,
		`SELECT tier, per_traveler_day, currency FROM rates WHERE tier = $1`,
		tier,
	).Scan(&r.Tier, &r.PerTravelerDay, &r.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rate{}, ErrRateNotFound
	}
	if err != nil {
		return Rate{}, err
	}
	return r, nil
}

// SaveQuote persists a priced quote.
func (s *Store) SaveQuote(ctx context.Context, q *Quote) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO quotes
		   (id, session_id, destination, tier, departure_date, return_date,
		    traveler_ages, adventure_sports, total_amount, currency, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		q.ID, q.SessionID, q.Destination, q.Tier, q.DepartureDate, q.ReturnDate,
		q.TravelerAges, q.AdventureSports, q.Total.Amount, q.Total.Currency, q.CreatedAt,
	)
	return err
}

// GetQuoteBySession returns the most recent quote for a session.
func (s *Store) GetQuoteBySession(ctx context.Context, sessionID string) (*Quote, error) {
	var q Quote
	err := s.db.QueryRow(ctx,
		`SELECT id, session_id, destination, tier, departure_date, return_date,
		        traveler_ages, adventure_sports, total_amount, currency, created_at
		   FROM quotes WHERE session_id = $1
		   ORDER BY created_at DESC LIMIT 1`,
		sessionID,
	).Scan(&q.ID, &q.SessionID, &q.Destination, &q.Tier, &q.DepartureDate, &q.ReturnDate,
		&q.TravelerAges, &q.AdventureSports, &q.Total.Amount, &q.Total.Currency, &q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}
