package ports

import (
	"context"
	"errors"
	"time"

	"reservation-sync/internal/core/domain"

	"github.com/google/uuid"
)

// ErrConflict is returned by repositories when a unique constraint rejects a write.
var ErrConflict = errors.New("conflicting record exists")

// MappingRepository defines persistence operations for provider mappings.
type MappingRepository interface {
	Create(ctx context.Context, m *domain.ProviderMapping) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ProviderMapping, error)
	Update(ctx context.Context, m *domain.ProviderMapping) error
	Deactivate(ctx context.Context, id uuid.UUID) (bool, error)
	ListByVenue(ctx context.Context, venueID uuid.UUID, activeOnly bool) ([]domain.ProviderMapping, error)
	GetActiveByProviderVenue(ctx context.Context, provider domain.Provider, providerVenueID string) (*domain.ProviderMapping, error)
	TouchLastSync(ctx context.Context, id uuid.UUID, at time.Time) error
}

// ExternalReservationRepository defines persistence for provider mirrors of bookings.
// Updates are compare-and-set on sync_status; no lock is held across provider calls.
type ExternalReservationRepository interface {
	Create(ctx context.Context, r *domain.ExternalReservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ExternalReservation, error)
	// GetOpenByBooking returns the non-cancelled row for (booking, provider), if any.
	GetOpenByBooking(ctx context.Context, bookingID uuid.UUID, provider domain.Provider) (*domain.ExternalReservation, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.ExternalReservation, error)
	GetByProviderReservationID(ctx context.Context, provider domain.Provider, providerReservationID string) (*domain.ExternalReservation, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.ExternalReservation, error)
	// UpdateIfStatus persists r only if the stored sync_status still equals expected
	// and the stored operation_seq is not greater than r's.
	UpdateIfStatus(ctx context.Context, r *domain.ExternalReservation, expected domain.SyncStatus) (bool, error)
	// ClaimDue atomically claims due failed rows (moved to pending) and pending or
	// syncing rows not updated since staleBefore, and returns them.
	ClaimDue(ctx context.Context, now, staleBefore time.Time, limit int) ([]domain.ExternalReservation, error)
	List(ctx context.Context, params ExternalReservationListParams) ([]domain.ExternalReservation, int64, error)
	StatsByVenue(ctx context.Context, venueID uuid.UUID) (*SyncStats, error)
}

// ExternalReservationListParams holds filter + pagination for listing a venue's mirrors.
type ExternalReservationListParams struct {
	VenueID  uuid.UUID
	Status   *domain.SyncStatus
	Provider *domain.Provider
	Page     int
	PageSize int
}

// SyncStats holds per-status counts for a venue's sync badges.
type SyncStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Syncing   int64 `json:"syncing"`
	Synced    int64 `json:"synced"`
	Failed    int64 `json:"failed"`
	Cancelled int64 `json:"cancelled"`
	Modified  int64 `json:"modified"`
	// RetryScheduled counts failed rows that the sweeper will pick up.
	RetryScheduled int64 `json:"retry_scheduled"`
}

// WebhookEventRepository defines persistence for the inbound event log.
type WebhookEventRepository interface {
	Get(ctx context.Context, provider domain.Provider, eventID string) (*domain.WebhookEvent, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WebhookEvent, error)
	// Insert stores the event unless (provider, event_id) exists. Returns false on conflict.
	Insert(ctx context.Context, e *domain.WebhookEvent) (bool, error)
	RecordDuplicate(ctx context.Context, provider domain.Provider, eventID string, at time.Time) error
	UpdateStatus(ctx context.Context, e *domain.WebhookEvent) error
	List(ctx context.Context, params WebhookEventListParams) ([]domain.WebhookEvent, int64, error)
}

// WebhookEventListParams holds filter + pagination for the operator event view.
type WebhookEventListParams struct {
	Provider *domain.Provider
	Status   *domain.ProcessingStatus
	Page     int
	PageSize int
}

// BookingRepository is the local booking store.
type BookingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	// UpdateStatus sets the status and reports whether the row changed.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (bool, error)
	CountByStartTime(ctx context.Context, venueID uuid.UUID, day time.Time, loc *time.Location) (map[string]int, error)
}

// CapacityRepository reads local capacity configuration.
type CapacityRepository interface {
	ListByVenue(ctx context.Context, venueID uuid.UUID) ([]domain.VenueCapacity, error)
}

// NotificationRepository persists notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}
