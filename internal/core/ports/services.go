package ports

import (
	"context"
	"net/http"
	"time"

	"reservation-sync/internal/core/domain"

	"github.com/google/uuid"
)

// EncryptionService handles AES-256-GCM encryption/decryption.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureEncoding is how a provider transmits its HMAC digest.
type SignatureEncoding string

const (
	SignatureHex    SignatureEncoding = "hex"
	SignatureBase64 SignatureEncoding = "base64"
)

// SignatureService handles HMAC-SHA256 signing and verification of raw bodies.
type SignatureService interface {
	Sign(secret string, body []byte, enc SignatureEncoding) string
	Verify(secret string, body []byte, signature string, enc SignatureEncoding) bool
}

// TokenService handles operator JWT operations.
type TokenService interface {
	Generate(subject string, venueIDs []uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject  string
	VenueIDs []uuid.UUID // empty means all venues
}

// AvailabilityCache is the short-lived Redis cache in front of provider availability.
type AvailabilityCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // nil on miss
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ChangeFeed is the realtime feed of ExternalReservation changes keyed by booking.
type ChangeFeed interface {
	Publish(ctx context.Context, r *domain.ExternalReservation) error
	// Subscribe returns a channel of JSON-encoded rows and a function that ends the subscription.
	Subscribe(ctx context.Context, bookingID uuid.UUID) (<-chan []byte, func(), error)
}

// NotificationPublisher fans created notifications out to delivery workers.
type NotificationPublisher interface {
	Publish(ctx context.Context, n *domain.Notification) error
}

// --- Service Ports (Business Logic) ---

// MappingService manages venue-to-provider bindings.
type MappingService interface {
	Create(ctx context.Context, req CreateMappingRequest) (*domain.ProviderMapping, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ProviderMapping, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateMappingRequest) (*domain.ProviderMapping, error)
	Delete(ctx context.Context, id uuid.UUID) error
	TestConnection(ctx context.Context, id uuid.UUID) error
	ListByVenue(ctx context.Context, venueID uuid.UUID) ([]domain.ProviderMapping, error)
}

// CreateMappingRequest holds validated input for a new mapping.
type CreateMappingRequest struct {
	VenueID         uuid.UUID
	Provider        domain.Provider
	ProviderVenueID string
	Credentials     domain.ProviderCredentials
	Policies        domain.MappingPolicies
	SeatingTypes    []string
	Timezone        string
	SyncEnabled     bool
}

// UpdateMappingRequest holds a partial mapping update; nil fields are left untouched.
type UpdateMappingRequest struct {
	ProviderVenueID *string
	Credentials     *domain.ProviderCredentials
	Policies        *domain.MappingPolicies
	SeatingTypes    []string
	Timezone        *string
	SyncEnabled     *bool
}

// AvailabilityService answers slot queries.
type AvailabilityService interface {
	GetAvailability(ctx context.Context, q AvailabilityQuery) (*domain.AvailabilityResult, error)
}

// AvailabilityQuery is a slot query for one venue and day.
type AvailabilityQuery struct {
	VenueID     uuid.UUID
	Date        time.Time // calendar day; only Y-M-D is read
	PartySize   int
	SeatingType string
}

// SyncService drives outbound synchronization of bookings to providers.
type SyncService interface {
	SyncBooking(ctx context.Context, bookingID uuid.UUID, op domain.SyncOperation) ([]domain.ExternalReservation, error)
	RetrySync(ctx context.Context, externalReservationID uuid.UUID) (*domain.ExternalReservation, error)
	GetExternalReservations(ctx context.Context, bookingID uuid.UUID) ([]domain.ExternalReservation, error)
	ListByVenue(ctx context.Context, params ExternalReservationListParams) ([]domain.ExternalReservation, int64, error)
	StatsByVenue(ctx context.Context, venueID uuid.UUID) (*SyncStats, error)
	SweepDue(ctx context.Context) (int, error)
}

// WebhookService ingests inbound provider events.
type WebhookService interface {
	HandleWebhook(ctx context.Context, provider string, headers http.Header, body []byte) (*WebhookAck, error)
	ReplayEvent(ctx context.Context, id uuid.UUID) (*domain.WebhookEvent, error)
	ListEvents(ctx context.Context, params WebhookEventListParams) ([]domain.WebhookEvent, int64, error)
}

// WebhookAck is returned to the provider for every accepted delivery.
type WebhookAck struct {
	Status  string // "received" or "duplicate"
	EventID string
}

const (
	AckReceived  = "received"
	AckDuplicate = "duplicate"
)

// NotificationService creates user and staff notifications.
type NotificationService interface {
	CreateNotification(ctx context.Context, n NotificationRequest) error
}

// NotificationRequest holds a notification to create. A nil UserID addresses venue staff.
type NotificationRequest struct {
	UserID   *uuid.UUID
	VenueID  *uuid.UUID
	Title    string
	Body     string
	DeepLink string
}

// AuditService records audit entries.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
