package domain

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilitySource says where a slot list came from.
type AvailabilitySource string

const (
	AvailabilitySourceCache    AvailabilitySource = "cache"
	AvailabilitySourceProvider AvailabilitySource = "provider"
	AvailabilitySourceLocal    AvailabilitySource = "local"
)

// Slot is one bookable time window.
type Slot struct {
	Date            string `json:"date"`       // YYYY-MM-DD in venue time
	StartTime       string `json:"start_time"` // HH:MM
	EndTime         string `json:"end_time"`   // HH:MM
	DurationMinutes int    `json:"duration_minutes"`
	MinPartySize    int    `json:"min_party_size"`
	MaxPartySize    int    `json:"max_party_size"`
	Zone            string `json:"zone,omitempty"`
	DepositRequired bool   `json:"deposit_required"`
	DepositAmount   int64  `json:"deposit_amount,omitempty"`
	MinimumSpend    int64  `json:"minimum_spend,omitempty"`
	Remaining       int    `json:"remaining"`
	ProviderSlotID  string `json:"provider_slot_id,omitempty"`
}

// AvailabilityResult is what the availability query returns.
type AvailabilityResult struct {
	Slots          []Slot             `json:"slots"`
	Source         AvailabilitySource `json:"source"`
	Provider       *Provider          `json:"provider,omitempty"`
	FallbackReason string             `json:"fallback_reason,omitempty"`
}

// VenueCapacity is the local capacity configuration used when no provider answers.
type VenueCapacity struct {
	VenueID         uuid.UUID `json:"venue_id"`
	Zone            string    `json:"zone"`
	SeatingType     *string   `json:"seating_type,omitempty"`
	Weekday         *int      `json:"weekday,omitempty"` // 0=Sunday; nil applies every day
	OpensAt         string    `json:"opens_at"`          // HH:MM
	ClosesAt        string    `json:"closes_at"`         // HH:MM
	SlotMinutes     int       `json:"slot_minutes"`
	DurationMinutes int       `json:"duration_minutes"`
	MinPartySize    int       `json:"min_party_size"`
	MaxPartySize    int       `json:"max_party_size"`
	TablesPerSlot   int       `json:"tables_per_slot"`
	DepositRequired bool      `json:"deposit_required"`
	DepositAmount   int64     `json:"deposit_amount"`
	MinimumSpend    int64     `json:"minimum_spend"`
}

// AppliesTo returns true if the capacity row serves the given day, party and seating.
func (c *VenueCapacity) AppliesTo(day time.Weekday, partySize int, seatingType string) bool {
	if c.Weekday != nil && time.Weekday(*c.Weekday) != day {
		return false
	}
	if partySize < c.MinPartySize || partySize > c.MaxPartySize {
		return false
	}
	if seatingType != "" && c.SeatingType != nil && *c.SeatingType != seatingType {
		return false
	}
	return true
}
