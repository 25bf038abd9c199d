package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProcessingStatus is the state of an inbound webhook event.
type ProcessingStatus string

const (
	ProcessingStatusReceived   ProcessingStatus = "received"
	ProcessingStatusProcessing ProcessingStatus = "processing"
	ProcessingStatusProcessed  ProcessingStatus = "processed"
	ProcessingStatusFailed     ProcessingStatus = "failed"
)

// WebhookEvent is one row of the inbound event log.
// (Provider, EventID) is unique; that constraint is the dedup guarantee.
type WebhookEvent struct {
	ID                 uuid.UUID         `json:"id"`
	Provider           Provider          `json:"provider"`
	EventID            string            `json:"event_id"`
	EventType          string            `json:"event_type"`
	Payload            json.RawMessage   `json:"payload"`
	Headers            map[string]string `json:"headers"`
	Signature          *string           `json:"signature,omitempty"`
	SignatureVerified  bool              `json:"signature_verified"`
	ProcessingStatus   ProcessingStatus  `json:"processing_status"`
	ProcessingAttempts int               `json:"processing_attempts"`
	ErrorMessage       *string           `json:"error_message,omitempty"`
	DuplicateCount     int               `json:"duplicate_count"`
	ReceivedAt         time.Time         `json:"received_at"`
	LastReceivedAt     time.Time         `json:"last_received_at"`
	ProcessedAt        *time.Time        `json:"processed_at,omitempty"`
}

// EventKind is the provider-independent meaning of a webhook event.
type EventKind string

const (
	EventKindCreated   EventKind = "created"
	EventKindConfirmed EventKind = "confirmed"
	EventKindModified  EventKind = "modified"
	EventKindCancelled EventKind = "cancelled"
	EventKindSeated    EventKind = "seated"
	EventKindCompleted EventKind = "completed"
	EventKindNoShow    EventKind = "no_show"
	EventKindUnknown   EventKind = "unknown"
)

// EventTypeUnknown is stored for payloads whose type cannot be read.
const EventTypeUnknown = "unknown"

// ProviderEvent is a webhook payload decoded by a provider adapter.
type ProviderEvent struct {
	EventID               string
	EventType             string
	Kind                  EventKind
	ProviderReservationID string
	ProviderVenueID       string
	IdempotencyKey        string // our key echoed back by the provider, if any
	BookingReference      string // our booking id echoed back, if any
	ProviderStatus        string
	ConfirmationNumber    string
	OccurredAt            *time.Time
}
