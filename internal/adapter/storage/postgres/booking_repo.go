package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reservation-sync/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BookingRepo implements ports.BookingRepository over the local bookings table.
type BookingRepo struct {
	pool Pool
}

// NewBookingRepo creates a new BookingRepo.
func NewBookingRepo(pool Pool) *BookingRepo {
	return &BookingRepo{pool: pool}
}

// GetByID fetches a booking by id.
func (r *BookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	query := `SELECT id, venue_id, user_id, guest_name, guest_email, guest_phone, party_size,
		starts_at, seating_type, notes, status, created_at, updated_at
		FROM bookings WHERE id = $1`

	b := &domain.Booking{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.VenueID, &b.UserID, &b.GuestName, &b.GuestEmail, &b.GuestPhone, &b.PartySize,
		&b.StartsAt, &b.SeatingType, &b.Notes, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// UpdateStatus sets the booking status. It reports false when the booking is
// missing or already had that status.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND status <> $1`,
		status, id,
	)
	if err != nil {
		return false, fmt.Errorf("update booking status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountByStartTime counts a venue's non-cancelled bookings on day, keyed by
// local start time "HH:MM" in loc.
func (r *BookingRepo) CountByStartTime(ctx context.Context, venueID uuid.UUID, day time.Time, loc *time.Location) (map[string]int, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	query := `SELECT to_char(starts_at AT TIME ZONE $1, 'HH24:MI') AS slot, COUNT(*)
		FROM bookings
		WHERE venue_id = $2 AND starts_at >= $3 AND starts_at < $4 AND status <> 'cancelled'
		GROUP BY slot`

	rows, err := r.pool.Query(ctx, query, loc.String(), venueID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("count bookings by start time: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var slot string
		var n int
		if err := rows.Scan(&slot, &n); err != nil {
			return nil, fmt.Errorf("scan booking count: %w", err)
		}
		out[slot] = n
	}
	return out, rows.Err()
}
