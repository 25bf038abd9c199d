package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a message for a guest (UserID set) or venue staff (UserID nil).
type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	VenueID   *uuid.UUID `json:"venue_id,omitempty"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	DeepLink  string     `json:"deep_link,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
