package postgres

import (
	"context"
	"fmt"

	"reservation-sync/internal/core/domain"

	"github.com/google/uuid"
)

// CapacityRepo implements ports.CapacityRepository.
type CapacityRepo struct {
	pool Pool
}

// NewCapacityRepo creates a new CapacityRepo.
func NewCapacityRepo(pool Pool) *CapacityRepo {
	return &CapacityRepo{pool: pool}
}

// ListByVenue returns the capacity rows of a venue ordered by zone and opening time.
func (r *CapacityRepo) ListByVenue(ctx context.Context, venueID uuid.UUID) ([]domain.VenueCapacity, error) {
	query := `SELECT venue_id, zone, seating_type, weekday, opens_at, closes_at, slot_minutes,
		duration_minutes, min_party_size, max_party_size, tables_per_slot,
		deposit_required, deposit_amount, minimum_spend
		FROM venue_capacity
		WHERE venue_id = $1
		ORDER BY zone, opens_at`

	rows, err := r.pool.Query(ctx, query, venueID)
	if err != nil {
		return nil, fmt.Errorf("list venue capacity: %w", err)
	}
	defer rows.Close()

	var out []domain.VenueCapacity
	for rows.Next() {
		var c domain.VenueCapacity
		if err := rows.Scan(
			&c.VenueID, &c.Zone, &c.SeatingType, &c.Weekday, &c.OpensAt, &c.ClosesAt, &c.SlotMinutes,
			&c.DurationMinutes, &c.MinPartySize, &c.MaxPartySize, &c.TablesPerSlot,
			&c.DepositRequired, &c.DepositAmount, &c.MinimumSpend,
		); err != nil {
			return nil, fmt.Errorf("scan venue capacity: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
