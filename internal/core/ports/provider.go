package ports

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"reservation-sync/internal/core/domain"

	"github.com/google/uuid"
)

// ProviderAdapter is the capability set of one external reservation system.
// One implementation exists per provider; it is chosen from the mapping's provider.
type ProviderAdapter interface {
	Provider() domain.Provider
	CreateReservation(ctx context.Context, req ReservationRequest) (*ProviderReservation, error)
	UpdateReservation(ctx context.Context, providerReservationID string, req ReservationRequest) (*ProviderReservation, error)
	CancelReservation(ctx context.Context, providerReservationID string, idempotencyKey string) (*ProviderReservation, error)
	GetAvailability(ctx context.Context, req AvailabilityRequest) ([]domain.Slot, error)
	// VerifySignature checks the provider HMAC over the raw body. It returns the
	// signature as received (empty if absent) and whether it matched.
	VerifySignature(headers http.Header, body []byte) (string, bool)
	MapWebhookEvent(body []byte) (*domain.ProviderEvent, error)
}

// AdapterFactory builds provider adapters.
type AdapterFactory interface {
	// ForMapping returns an adapter authenticated with the mapping's credentials.
	ForMapping(m *domain.ProviderMapping, creds domain.ProviderCredentials) (ProviderAdapter, error)
	// ForProvider returns an unauthenticated adapter for webhook decoding and verification.
	ForProvider(p domain.Provider) (ProviderAdapter, error)
}

// ReservationRequest is the normalized outbound reservation body.
type ReservationRequest struct {
	IdempotencyKey  string
	ProviderVenueID string
	BookingID       uuid.UUID
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	PartySize       int
	StartsAt        time.Time
	Location        *time.Location
	SeatingType     string
	Notes           string
}

// ProviderReservation is the normalized provider answer to a reservation call.
type ProviderReservation struct {
	ProviderReservationID string
	ConfirmationNumber    string
	Status                string
	Raw                   json.RawMessage
}

// AvailabilityRequest is the normalized availability query.
type AvailabilityRequest struct {
	ProviderVenueID string
	Date            string // YYYY-MM-DD in venue time
	PartySize       int
	SeatingType     string
}

// ProviderError is a failed provider call.
// Transient errors (transport, timeout, 408, 429, 5xx) are retried with backoff.
type ProviderError struct {
	Provider   domain.Provider
	StatusCode int // 0 for transport failures
	Message    string
	Transient  bool
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsTransientStatus reports whether an HTTP status is worth retrying.
func IsTransientStatus(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= 500
}
