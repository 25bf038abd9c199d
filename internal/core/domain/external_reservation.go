package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SyncStatus is the lifecycle state of an ExternalReservation.
type SyncStatus string

const (
	SyncStatusPending   SyncStatus = "pending"
	SyncStatusSyncing   SyncStatus = "syncing"
	SyncStatusSynced    SyncStatus = "synced"
	SyncStatusFailed    SyncStatus = "failed"
	SyncStatusCancelled SyncStatus = "cancelled"
	SyncStatusModified  SyncStatus = "modified"
)

// AllSyncStatuses lists every state, in badge display order.
func AllSyncStatuses() []SyncStatus {
	return []SyncStatus{
		SyncStatusPending,
		SyncStatusSyncing,
		SyncStatusSynced,
		SyncStatusFailed,
		SyncStatusCancelled,
		SyncStatusModified,
	}
}

// IsValid returns true if s is a known state.
func (s SyncStatus) IsValid() bool {
	for _, v := range AllSyncStatuses() {
		if s == v {
			return true
		}
	}
	return false
}

// transitions lists the legal moves between distinct states.
// Moves into cancelled are handled separately.
var transitions = map[SyncStatus][]SyncStatus{
	SyncStatusPending:  {SyncStatusSyncing},
	SyncStatusSyncing:  {SyncStatusSynced, SyncStatusFailed},
	SyncStatusFailed:   {SyncStatusPending},
	SyncStatusSynced:   {SyncStatusModified, SyncStatusSyncing},
	SyncStatusModified: {SyncStatusSynced, SyncStatusSyncing},
}

// CanTransition reports whether from -> to is a legal move.
// Same-state moves are legal no-ops except out of cancelled, which is final.
func CanTransition(from, to SyncStatus) bool {
	if from == SyncStatusCancelled {
		return to == SyncStatusCancelled
	}
	if from == to {
		return true
	}
	if to == SyncStatusCancelled {
		return true
	}
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// TransitionError is returned for a move the state machine does not allow.
type TransitionError struct {
	From SyncStatus
	To   SyncStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal sync transition %s -> %s", e.From, e.To)
}

// SyncOperation is a logical outbound operation.
type SyncOperation string

const (
	SyncOperationCreate SyncOperation = "create"
	SyncOperationUpdate SyncOperation = "update"
	SyncOperationCancel SyncOperation = "cancel"
)

// IsValid returns true if op is a known operation.
func (op SyncOperation) IsValid() bool {
	return op == SyncOperationCreate || op == SyncOperationUpdate || op == SyncOperationCancel
}

// ExternalReservation mirrors one local booking in one provider.
// Rows are never deleted; cancelled rows stay as history.
type ExternalReservation struct {
	ID                         uuid.UUID       `json:"id"`
	BookingID                  *uuid.UUID      `json:"booking_id,omitempty"` // nil until matched to a local booking
	VenueID                    uuid.UUID       `json:"venue_id"`
	Provider                   Provider        `json:"provider"`
	ProviderReservationID      *string         `json:"provider_reservation_id,omitempty"`
	IdempotencyKey             string          `json:"idempotency_key"` // immutable once assigned
	Operation                  SyncOperation   `json:"operation"`
	OperationSeq               int             `json:"operation_seq"`
	SyncStatus                 SyncStatus      `json:"sync_status"`
	ProviderStatus             *string         `json:"provider_status,omitempty"`
	ProviderConfirmationNumber *string         `json:"provider_confirmation_number,omitempty"`
	ProviderResponse           json.RawMessage `json:"provider_response,omitempty"`
	ErrorMessage               *string         `json:"error_message,omitempty"`
	ErrorPermanent             bool            `json:"error_permanent"`
	RetryCount                 int             `json:"retry_count"`
	NextRetryAt                *time.Time      `json:"next_retry_at,omitempty"`
	LastSyncedAt               *time.Time      `json:"last_synced_at,omitempty"`
	CreatedAt                  time.Time       `json:"created_at"`
	UpdatedAt                  time.Time       `json:"updated_at"`
}

// NewExternalReservation creates a pending row with a fresh idempotency key.
func NewExternalReservation(bookingID *uuid.UUID, venueID uuid.UUID, provider Provider, op SyncOperation) *ExternalReservation {
	now := time.Now().UTC()
	return &ExternalReservation{
		ID:             uuid.New(),
		BookingID:      bookingID,
		VenueID:        venueID,
		Provider:       provider,
		IdempotencyKey: uuid.NewString(),
		Operation:      op,
		OperationSeq:   1,
		SyncStatus:     SyncStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// TransitionTo moves the reservation to the given state.
// It returns false without error for a same-state move.
func (r *ExternalReservation) TransitionTo(to SyncStatus) (bool, error) {
	if !CanTransition(r.SyncStatus, to) {
		return false, &TransitionError{From: r.SyncStatus, To: to}
	}
	if r.SyncStatus == to {
		return false, nil
	}
	r.SyncStatus = to
	r.UpdatedAt = time.Now().UTC()
	return true, nil
}

// BeginOperation starts a new logical operation on an existing row.
// Retries of the same operation must not call this; they reuse OperationKey.
func (r *ExternalReservation) BeginOperation(op SyncOperation) {
	r.Operation = op
	r.OperationSeq++
	r.RetryCount = 0
	r.NextRetryAt = nil
	r.ErrorMessage = nil
	r.ErrorPermanent = false
}

// OperationKey is the idempotency key sent to the provider for the current
// logical operation. The first create uses the bare key.
func (r *ExternalReservation) OperationKey() string {
	if r.Operation == SyncOperationCreate && r.OperationSeq <= 1 {
		return r.IdempotencyKey
	}
	return fmt.Sprintf("%s:%s:%d", r.IdempotencyKey, r.Operation, r.OperationSeq)
}

// SentUpdateKey reports whether key is the operation key of an update this row
// already sent, so a provider event carrying it describes our own change.
func (r *ExternalReservation) SentUpdateKey(key string) bool {
	rest, ok := strings.CutPrefix(key, r.IdempotencyKey+":"+string(SyncOperationUpdate)+":")
	if !ok {
		return false
	}
	seq, err := strconv.Atoi(rest)
	return err == nil && seq > 1 && seq <= r.OperationSeq
}

// HasProviderReservation returns true once the provider has assigned an id.
func (r *ExternalReservation) HasProviderReservation() bool {
	return r.ProviderReservationID != nil && *r.ProviderReservationID != ""
}

// NeedsProviderReservation reports whether the current operation targets a
// provider reservation whose create has not landed yet.
func (r *ExternalReservation) NeedsProviderReservation() bool {
	return r.Operation != SyncOperationCreate && !r.HasProviderReservation()
}

// IsRetryable returns true if a manual retry is allowed.
func (r *ExternalReservation) IsRetryable() bool {
	return r.SyncStatus == SyncStatusFailed
}

// IsTerminal returns true if no further transition is possible.
func (r *ExternalReservation) IsTerminal() bool {
	return r.SyncStatus == SyncStatusCancelled
}

// RetryPolicy computes exponential backoff for failed sync attempts.
type RetryPolicy struct {
	Base        time.Duration
	Cap         time.Duration
	MaxAttempts int
}

// Delay returns min(base * 2^(attempt-1), cap) for attempt >= 1.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := p.Base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.Cap || d <= 0 {
			return p.Cap
		}
	}
	if d > p.Cap {
		return p.Cap
	}
	return d
}

// NextRetryAt returns when the given failed attempt should be retried,
// or nil when the error is permanent or attempts are exhausted.
func (p RetryPolicy) NextRetryAt(now time.Time, attempt int, permanent bool) *time.Time {
	if permanent || attempt >= p.MaxAttempts {
		return nil
	}
	t := now.Add(p.Delay(attempt))
	return &t
}
