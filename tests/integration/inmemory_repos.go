package integration

import (
	"context"
	"sort"
	"sync"
	"time"

	"reservation-sync/internal/core/domain"
	"reservation-sync/internal/core/ports"

	"github.com/google/uuid"
)

// --- In-Memory Mapping Repo ---

type inMemoryMappingRepo struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]domain.ProviderMapping
}

func newInMemoryMappingRepo() *inMemoryMappingRepo {
	return &inMemoryMappingRepo{rows: make(map[uuid.UUID]domain.ProviderMapping)}
}

func (r *inMemoryMappingRepo) Create(ctx context.Context, m *domain.ProviderMapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.IsActive && existing.VenueID == m.VenueID && existing.Provider == m.Provider {
			return ports.ErrConflict
		}
	}
	r.rows[m.ID] = *m
	return nil
}

func (r *inMemoryMappingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProviderMapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *inMemoryMappingRepo) Update(ctx context.Context, m *domain.ProviderMapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.UpdatedAt = time.Now().UTC()
	r.rows[m.ID] = *m
	return nil
}

func (r *inMemoryMappingRepo) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok || !m.IsActive {
		return false, nil
	}
	m.IsActive = false
	r.rows[id] = m
	return true, nil
}

func (r *inMemoryMappingRepo) ListByVenue(ctx context.Context, venueID uuid.UUID, activeOnly bool) ([]domain.ProviderMapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.ProviderMapping
	for _, m := range r.rows {
		if m.VenueID == venueID && (!activeOnly || m.IsActive) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out, nil
}

func (r *inMemoryMappingRepo) GetActiveByProviderVenue(ctx context.Context, provider domain.Provider, providerVenueID string) (*domain.ProviderMapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.rows {
		if m.IsActive && m.Provider == provider && m.ProviderVenueID == providerVenueID {
			out := m
			return &out, nil
		}
	}
	return nil, nil
}

func (r *inMemoryMappingRepo) TouchLastSync(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.rows[id]; ok {
		m.LastSyncAt = &at
		r.rows[id] = m
	}
	return nil
}

// --- In-Memory External Reservation Repo ---

// inMemoryReservationRepo enforces the same uniqueness rules as the
// external_reservations indexes and applies UpdateIfStatus atomically.
type inMemoryReservationRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]domain.ExternalReservation
}

func newInMemoryReservationRepo() *inMemoryReservationRepo {
	return &inMemoryReservationRepo{rows: make(map[uuid.UUID]domain.ExternalReservation)}
}

func (r *inMemoryReservationRepo) Create(ctx context.Context, er *domain.ExternalReservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.IdempotencyKey == er.IdempotencyKey {
			return ports.ErrConflict
		}
		if er.BookingID != nil && row.BookingID != nil && *row.BookingID == *er.BookingID &&
			row.Provider == er.Provider && row.SyncStatus != domain.SyncStatusCancelled {
			return ports.ErrConflict
		}
	}
	r.rows[er.ID] = *er
	return nil
}

func (r *inMemoryReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExternalReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *inMemoryReservationRepo) GetOpenByBooking(ctx context.Context, bookingID uuid.UUID, provider domain.Provider) (*domain.ExternalReservation, error) {
	return r.find(func(row domain.ExternalReservation) bool {
		return row.BookingID != nil && *row.BookingID == bookingID &&
			row.Provider == provider && row.SyncStatus != domain.SyncStatusCancelled
	}), nil
}

func (r *inMemoryReservationRepo) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.ExternalReservation, error) {
	return r.filter(func(row domain.ExternalReservation) bool {
		return row.BookingID != nil && *row.BookingID == bookingID
	}), nil
}

func (r *inMemoryReservationRepo) GetByProviderReservationID(ctx context.Context, provider domain.Provider, providerReservationID string) (*domain.ExternalReservation, error) {
	return r.find(func(row domain.ExternalReservation) bool {
		return row.Provider == provider && row.ProviderReservationID != nil &&
			*row.ProviderReservationID == providerReservationID
	}), nil
}

func (r *inMemoryReservationRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.ExternalReservation, error) {
	return r.find(func(row domain.ExternalReservation) bool { return row.IdempotencyKey == key }), nil
}

func (r *inMemoryReservationRepo) UpdateIfStatus(ctx context.Context, er *domain.ExternalReservation, expected domain.SyncStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[er.ID]
	if !ok || row.SyncStatus != expected || row.OperationSeq > er.OperationSeq {
		return false, nil
	}
	r.rows[er.ID] = *er
	return true, nil
}

func (r *inMemoryReservationRepo) ClaimDue(ctx context.Context, now, staleBefore time.Time, limit int) ([]domain.ExternalReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ExternalReservation
	for id, row := range r.rows {
		if len(out) >= limit {
			break
		}
		due := row.SyncStatus == domain.SyncStatusFailed && !row.ErrorPermanent &&
			row.NextRetryAt != nil && !row.NextRetryAt.After(now)
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
		r.rows[id] = row
		out = append(out, row)
	}
	return out, nil
}

func (r *inMemoryReservationRepo) List(ctx context.Context, params ports.ExternalReservationListParams) ([]domain.ExternalReservation, int64, error) {
	rows := r.filter(func(row domain.ExternalReservation) bool {
		if row.VenueID != params.VenueID {
			return false
		}
		if params.Status != nil && row.SyncStatus != *params.Status {
			return false
		}
		return params.Provider == nil || row.Provider == *params.Provider
	})
	return rows, int64(len(rows)), nil
}

func (r *inMemoryReservationRepo) StatsByVenue(ctx context.Context, venueID uuid.UUID) (*ports.SyncStats, error) {
	s := &ports.SyncStats{}
	for _, row := range r.filter(func(row domain.ExternalReservation) bool { return row.VenueID == venueID }) {
		s.Total++
		switch row.SyncStatus {
		case domain.SyncStatusPending:
			s.Pending++
		case domain.SyncStatusSyncing:
			s.Syncing++
		case domain.SyncStatusSynced:
			s.Synced++
		case domain.SyncStatusFailed:
			s.Failed++
			if row.NextRetryAt != nil {
				s.RetryScheduled++
			}
		case domain.SyncStatusCancelled:
			s.Cancelled++
		case domain.SyncStatusModified:
			s.Modified++
		}
	}
	return s, nil
}

func (r *inMemoryReservationRepo) find(match func(domain.ExternalReservation) bool) *domain.ExternalReservation {
	rows := r.filter(match)
	if len(rows) == 0 {
		return nil
	}
	return &rows[0]
}

// filter returns matching rows newest first.
func (r *inMemoryReservationRepo) filter(match func(domain.ExternalReservation) bool) []domain.ExternalReservation {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ExternalReservation
	for _, row := range r.rows {
		if match(row) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// --- In-Memory Webhook Event Repo ---

type inMemoryWebhookEventRepo struct {
	mu   sync.Mutex
	rows map[string]domain.WebhookEvent
}

func newInMemoryWebhookEventRepo() *inMemoryWebhookEventRepo {
	return &inMemoryWebhookEventRepo{rows: make(map[string]domain.WebhookEvent)}
}

func webhookKey(p domain.Provider, eventID string) string {
	return string(p) + "|" + eventID
}

func (r *inMemoryWebhookEventRepo) Get(ctx context.Context, provider domain.Provider, eventID string) (*domain.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[webhookKey(provider, eventID)]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *inMemoryWebhookEventRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.rows {
		if e.ID == id {
			out := e
			return &out, nil
		}
	}
	return nil, nil
}

func (r *inMemoryWebhookEventRepo) Insert(ctx context.Context, e *domain.WebhookEvent) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := webhookKey(e.Provider, e.EventID)
	if _, ok := r.rows[k]; ok {
		return false, nil
	}
	r.rows[k] = *e
	return true, nil
}

func (r *inMemoryWebhookEventRepo) RecordDuplicate(ctx context.Context, provider domain.Provider, eventID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := webhookKey(provider, eventID)
	if e, ok := r.rows[k]; ok {
		e.DuplicateCount++
		e.LastReceivedAt = at
		r.rows[k] = e
	}
	return nil
}

func (r *inMemoryWebhookEventRepo) UpdateStatus(ctx context.Context, e *domain.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := webhookKey(e.Provider, e.EventID)
	row, ok := r.rows[k]
	if !ok {
		return nil
	}
	row.ProcessingStatus = e.ProcessingStatus
	row.ProcessingAttempts = e.ProcessingAttempts
	row.ErrorMessage = e.ErrorMessage
	row.ProcessedAt = e.ProcessedAt
	r.rows[k] = row
	return nil
}

func (r *inMemoryWebhookEventRepo) List(ctx context.Context, params ports.WebhookEventListParams) ([]domain.WebhookEvent, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WebhookEvent
	for _, e := range r.rows {
		if params.Provider != nil && e.Provider != *params.Provider {
			continue
		}
		if params.Status != nil && e.ProcessingStatus != *params.Status {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.After(out[j].ReceivedAt) })
	return out, int64(len(out)), nil
}

// --- In-Memory Booking Repo ---

type inMemoryBookingRepo struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]domain.Booking
}

func newInMemoryBookingRepo() *inMemoryBookingRepo {
	return &inMemoryBookingRepo{rows: make(map[uuid.UUID]domain.Booking)}
}

func (r *inMemoryBookingRepo) put(b domain.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[b.ID] = b
}

func (r *inMemoryBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *inMemoryBookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[id]
	if !ok || b.Status == status {
		return false, nil
	}
	b.Status = status
	b.UpdatedAt = time.Now().UTC()
	r.rows[id] = b
	return true, nil
}

func (r *inMemoryBookingRepo) CountByStartTime(ctx context.Context, venueID uuid.UUID, day time.Time, loc *time.Location) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	y, m, d := day.Date()
	out := map[string]int{}
	for _, b := range r.rows {
		if b.VenueID != venueID || b.IsCancelled() {
			continue
		}
		local := b.StartsAt.In(loc)
		by, bm, bd := local.Date()
		if by == y && bm == m && bd == d {
			out[local.Format("15:04")]++
		}
	}
	return out, nil
}

// --- In-Memory Capacity Repo ---

type inMemoryCapacityRepo struct {
	mu   sync.RWMutex
	rows []domain.VenueCapacity
}

func (r *inMemoryCapacityRepo) add(c domain.VenueCapacity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, c)
}

func (r *inMemoryCapacityRepo) ListByVenue(ctx context.Context, venueID uuid.UUID) ([]domain.VenueCapacity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.VenueCapacity
	for _, c := range r.rows {
		if c.VenueID == venueID {
			out = append(out, c)
		}
	}
	return out, nil
}

// --- In-Memory Notification Repo ---

type inMemoryNotificationRepo struct {
	mu   sync.Mutex
	rows []domain.Notification
}

func (r *inMemoryNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, *n)
	return nil
}

func (r *inMemoryNotificationRepo) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.rows))
	for _, n := range r.rows {
		out = append(out, n.Title)
	}
	return out
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu   sync.Mutex
	rows []domain.AuditLog
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, l *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, *l)
	return nil
}

func (r *inMemoryAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.rows))
	for _, l := range r.rows {
		out = append(out, string(l.Action))
	}
	return out
}
