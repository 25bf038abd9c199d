package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the local booking state.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusSeated    BookingStatus = "seated"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusNoShow    BookingStatus = "no_show"
)

// Booking is the local system-of-record reservation.
type Booking struct {
	ID          uuid.UUID     `json:"id"`
	VenueID     uuid.UUID     `json:"venue_id"`
	UserID      *uuid.UUID    `json:"user_id,omitempty"`
	GuestName   string        `json:"guest_name"`
	GuestEmail  *string       `json:"guest_email,omitempty"`
	GuestPhone  *string       `json:"guest_phone,omitempty"`
	PartySize   int           `json:"party_size"`
	StartsAt    time.Time     `json:"starts_at"`
	SeatingType *string       `json:"seating_type,omitempty"`
	Notes       *string       `json:"notes,omitempty"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// IsCancelled returns true if the booking is cancelled.
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}
