package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"reservation-sync/internal/core/domain"
	"reservation-sync/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func newTestLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// memReservations is a stateful ExternalReservationRepository with real compare-and-set.
type memReservations struct {
	mu   sync.Mutex
	rows map[uuid.UUID]domain.ExternalReservation
	// beforeUpdate runs once before the next UpdateIfStatus, outside the lock.
	beforeUpdate func()
}

func newMemReservations() *memReservations {
	return &memReservations{rows: make(map[uuid.UUID]domain.ExternalReservation)}
}

func (m *memReservations) Create(_ context.Context, r *domain.ExternalReservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.IdempotencyKey == r.IdempotencyKey {
			return ports.ErrConflict
		}
		if r.BookingID != nil && row.BookingID != nil && *row.BookingID == *r.BookingID &&
			row.Provider == r.Provider && row.SyncStatus != domain.SyncStatusCancelled {
			return ports.ErrConflict
		}
	}
	m.rows[r.ID] = *r
	return nil
}

func (m *memReservations) GetByID(_ context.Context, id uuid.UUID) (*domain.ExternalReservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (m *memReservations) GetOpenByBooking(_ context.Context, bookingID uuid.UUID, provider domain.Provider) (*domain.ExternalReservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.BookingID != nil && *row.BookingID == bookingID && row.Provider == provider && row.SyncStatus != domain.SyncStatusCancelled {
			r := row
			return &r, nil
		}
	}
	return nil, nil
}

func (m *memReservations) ListByBooking(_ context.Context, bookingID uuid.UUID) ([]domain.ExternalReservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ExternalReservation
	for _, row := range m.rows {
		if row.BookingID != nil && *row.BookingID == bookingID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memReservations) GetByProviderReservationID(_ context.Context, provider domain.Provider, prid string) (*domain.ExternalReservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Provider == provider && row.ProviderReservationID != nil && *row.ProviderReservationID == prid {
			r := row
			return &r, nil
		}
	}
	return nil, nil
}

func (m *memReservations) GetByIdempotencyKey(_ context.Context, key string) (*domain.ExternalReservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.IdempotencyKey == key {
			r := row
			return &r, nil
		}
	}
	return nil, nil
}

func (m *memReservations) UpdateIfStatus(_ context.Context, r *domain.ExternalReservation, expected domain.SyncStatus) (bool, error) {
	if hook := m.beforeUpdate; hook != nil {
		m.beforeUpdate = nil
		hook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[r.ID]
	if !ok || row.SyncStatus != expected || row.OperationSeq > r.OperationSeq {
		return false, nil
	}
	m.rows[r.ID] = *r
	return true, nil
}

func (m *memReservations) ClaimDue(_ context.Context, now, staleBefore time.Time, limit int) ([]domain.ExternalReservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ExternalReservation
	for id, row := range m.rows {
		if len(out) >= limit {
			break
		}
		due := row.SyncStatus == domain.SyncStatusFailed && row.NextRetryAt != nil && !row.NextRetryAt.After(now)
		stale := (row.SyncStatus == domain.SyncStatusPending || row.SyncStatus == domain.SyncStatusSyncing) &&
			row.BookingID != nil && row.UpdatedAt.Before(staleBefore)
		if !due && !stale {
			continue
		}
		if due {
			row.SyncStatus = domain.SyncStatusPending
		}
		row.NextRetryAt = nil
		row.UpdatedAt = now
		m.rows[id] = row
		out = append(out, row)
	}
	return out, nil
}

func (m *memReservations) List(_ context.Context, params ports.ExternalReservationListParams) ([]domain.ExternalReservation, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ExternalReservation
	for _, row := range m.rows {
		if row.VenueID != params.VenueID {
			continue
		}
		if params.Status != nil && row.SyncStatus != *params.Status {
			continue
		}
		out = append(out, row)
	}
	return out, int64(len(out)), nil
}

func (m *memReservations) StatsByVenue(_ context.Context, venueID uuid.UUID) (*ports.SyncStats, error) {
	return &ports.SyncStats{}, nil
}

func (m *memReservations) only() domain.ExternalReservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		return row
	}
	return domain.ExternalReservation{}
}

func (m *memReservations) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *memReservations) put(r domain.ExternalReservation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[r.ID] = r
}

type memBookings struct {
	mu   sync.Mutex
	rows map[uuid.UUID]domain.Booking
}

func newMemBookings(bs ...domain.Booking) *memBookings {
	m := &memBookings{rows: make(map[uuid.UUID]domain.Booking)}
	for _, b := range bs {
		m.rows[b.ID] = b
	}
	return m
}

func (m *memBookings) GetByID(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *memBookings) UpdateStatus(_ context.Context, id uuid.UUID, status domain.BookingStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok || b.Status == status {
		return false, nil
	}
	b.Status = status
	m.rows[id] = b
	return true, nil
}

func (m *memBookings) CountByStartTime(context.Context, uuid.UUID, time.Time, *time.Location) (map[string]int, error) {
	return map[string]int{}, nil
}

func (m *memBookings) status(id uuid.UUID) domain.BookingStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id].Status
}

type memMappings struct {
	rows []domain.ProviderMapping
}

func (m *memMappings) Create(context.Context, *domain.ProviderMapping) error { return nil }

func (m *memMappings) GetByID(_ context.Context, id uuid.UUID) (*domain.ProviderMapping, error) {
	for i := range m.rows {
		if m.rows[i].ID == id {
			row := m.rows[i]
			return &row, nil
		}
	}
	return nil, nil
}

func (m *memMappings) Update(context.Context, *domain.ProviderMapping) error { return nil }

func (m *memMappings) Deactivate(context.Context, uuid.UUID) (bool, error) { return false, nil }

func (m *memMappings) ListByVenue(_ context.Context, venueID uuid.UUID, activeOnly bool) ([]domain.ProviderMapping, error) {
	var out []domain.ProviderMapping
	for _, row := range m.rows {
		if row.VenueID == venueID && (!activeOnly || row.IsActive) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memMappings) GetActiveByProviderVenue(_ context.Context, provider domain.Provider, providerVenueID string) (*domain.ProviderMapping, error) {
	for i := range m.rows {
		if m.rows[i].Provider == provider && m.rows[i].ProviderVenueID == providerVenueID && m.rows[i].IsActive {
			row := m.rows[i]
			return &row, nil
		}
	}
	return nil, nil
}

func (m *memMappings) TouchLastSync(context.Context, uuid.UUID, time.Time) error { return nil }

// fakeAdapter behaves like a provider that deduplicates on the idempotency key.
type fakeAdapter struct {
	mu        sync.Mutex
	provider  domain.Provider
	failures  []error // consumed one per reservation call before succeeding
	byKey     map[string]string
	calls     int
	created   int
	cancelled int
	keys      []string
	// during runs inside each reservation call, after the failure queue is checked.
	during func()
}

func newFakeAdapter(p domain.Provider) *fakeAdapter {
	return &fakeAdapter{provider: p, byKey: make(map[string]string)}
}

func (a *fakeAdapter) Provider() domain.Provider { return a.provider }

func (a *fakeAdapter) next(key string) error {
	a.mu.Lock()
	a.calls++
	a.keys = append(a.keys, key)
	var err error
	if len(a.failures) > 0 {
		err = a.failures[0]
		a.failures = a.failures[1:]
	}
	during := a.during
	a.mu.Unlock()
	if during != nil {
		during()
	}
	return err
}

func (a *fakeAdapter) CreateReservation(_ context.Context, req ports.ReservationRequest) (*ports.ProviderReservation, error) {
	if err := a.next(req.IdempotencyKey); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	id, ok := a.byKey[req.IdempotencyKey]
	if !ok {
		a.created++
		id = "prv-" + req.IdempotencyKey[:8]
		a.byKey[req.IdempotencyKey] = id
	}
	return &ports.ProviderReservation{ProviderReservationID: id, ConfirmationNumber: "CONF-1", Status: "booked"}, nil
}

func (a *fakeAdapter) UpdateReservation(_ context.Context, prid string, req ports.ReservationRequest) (*ports.ProviderReservation, error) {
	if err := a.next(req.IdempotencyKey); err != nil {
		return nil, err
	}
	return &ports.ProviderReservation{ProviderReservationID: prid, Status: "booked"}, nil
}

func (a *fakeAdapter) CancelReservation(_ context.Context, prid string, key string) (*ports.ProviderReservation, error) {
	if err := a.next(key); err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.cancelled++
	a.mu.Unlock()
	return &ports.ProviderReservation{ProviderReservationID: prid, Status: "cancelled"}, nil
}

func (a *fakeAdapter) GetAvailability(context.Context, ports.AvailabilityRequest) ([]domain.Slot, error) {
	return nil, nil
}

func (a *fakeAdapter) VerifySignature(headers http.Header, _ []byte) (string, bool) {
	sig := headers.Get("X-Test-Signature")
	return sig, sig == "valid"
}

// MapWebhookEvent decodes a minimal test vocabulary.
func (a *fakeAdapter) MapWebhookEvent(body []byte) (*domain.ProviderEvent, error) {
	var p struct {
		ID            string `json:"id"`
		Type          string `json:"type"`
		ReservationID string `json:"reservation_id"`
		VenueID       string `json:"venue_id"`
		Reference     string `json:"reference"`
		Key           string `json:"idempotency_key"`
		Status        string `json:"status"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	kinds := map[string]domain.EventKind{
		"reservation.created":   domain.EventKindCreated,
		"reservation.confirmed": domain.EventKindConfirmed,
		"reservation.updated":   domain.EventKindModified,
		"reservation.cancelled": domain.EventKindCancelled,
		"reservation.seated":    domain.EventKindSeated,
		"reservation.no_show":   domain.EventKindNoShow,
	}
	kind, ok := kinds[p.Type]
	if !ok {
		kind = domain.EventKindUnknown
	}
	return &domain.ProviderEvent{
		EventID:               p.ID,
		EventType:             p.Type,
		Kind:                  kind,
		ProviderReservationID: p.ReservationID,
		ProviderVenueID:       p.VenueID,
		IdempotencyKey:        p.Key,
		BookingReference:      p.Reference,
		ProviderStatus:        p.Status,
	}, nil
}

type fakeAdapters struct {
	adapters map[domain.Provider]*fakeAdapter
}

func (f *fakeAdapters) ForMapping(m *domain.ProviderMapping, _ domain.ProviderCredentials) (ports.ProviderAdapter, error) {
	return f.ForProvider(m.Provider)
}

func (f *fakeAdapters) ForProvider(p domain.Provider) (ports.ProviderAdapter, error) {
	a, ok := f.adapters[p]
	if !ok {
		return nil, &ports.ProviderError{Provider: p, Message: "no adapter"}
	}
	return a, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []ports.NotificationRequest
}

func (n *recordingNotifier) CreateNotification(_ context.Context, req ports.NotificationRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, req)
	return nil
}

func (n *recordingNotifier) titles() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.Title)
	}
	return out
}

type recordingFeed struct {
	mu       sync.Mutex
	statuses []domain.SyncStatus
}

func (f *recordingFeed) Publish(_ context.Context, r *domain.ExternalReservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, r.SyncStatus)
	return nil
}

func (f *recordingFeed) Subscribe(context.Context, uuid.UUID) (<-chan []byte, func(), error) {
	return nil, func() {}, nil
}

type memEvents struct {
	mu   sync.Mutex
	rows map[string]*domain.WebhookEvent
	// duplicateErr is returned by RecordDuplicate when set.
	duplicateErr error
}

func newMemEvents() *memEvents {
	return &memEvents{rows: make(map[string]*domain.WebhookEvent)}
}

func eventKey(p domain.Provider, id string) string { return string(p) + "|" + id }

func (m *memEvents) Get(_ context.Context, p domain.Provider, eventID string) (*domain.WebhookEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[eventKey(p, eventID)]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (m *memEvents) GetByID(_ context.Context, id uuid.UUID) (*domain.WebhookEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.rows {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memEvents) Insert(_ context.Context, e *domain.WebhookEvent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := eventKey(e.Provider, e.EventID)
	if _, ok := m.rows[k]; ok {
		return false, nil
	}
	cp := *e
	m.rows[k] = &cp
	return true, nil
}

func (m *memEvents) RecordDuplicate(_ context.Context, p domain.Provider, eventID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.duplicateErr != nil {
		return m.duplicateErr
	}
	if e, ok := m.rows[eventKey(p, eventID)]; ok {
		e.DuplicateCount++
		e.LastReceivedAt = at
	}
	return nil
}

func (m *memEvents) UpdateStatus(_ context.Context, e *domain.WebhookEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.rows[eventKey(e.Provider, e.EventID)] = &cp
	return nil
}

func (m *memEvents) List(_ context.Context, _ ports.WebhookEventListParams) ([]domain.WebhookEvent, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.WebhookEvent, 0, len(m.rows))
	for _, e := range m.rows {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (m *memEvents) only() domain.WebhookEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.rows {
		return *e
	}
	return domain.WebhookEvent{}
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []domain.AuditLog
}

func (a *recordingAudit) Log(_ context.Context, entry *domain.AuditLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, *entry)
}
