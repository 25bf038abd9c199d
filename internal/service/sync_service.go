package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"reservation-sync/internal/core/domain"
	"reservation-sync/internal/core/ports"
	"reservation-sync/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	// outcomeAttempts bounds compare-and-set retries when a webhook races an outbound call.
	outcomeAttempts = 3
)

// SyncOptions configures the outbound sync engine.
type SyncOptions struct {
	Retry       domain.RetryPolicy
	CallTimeout time.Duration
	SweepBatch  int
}

// SyncServiceImpl implements ports.SyncService.
type SyncServiceImpl struct {
	bookings     ports.BookingRepository
	mappings     ports.MappingRepository
	reservations ports.ExternalReservationRepository
	adapters     ports.AdapterFactory
	encSvc       ports.EncryptionService
	notifier     ports.NotificationService
	feed         ports.ChangeFeed
	opts         SyncOptions
	now          func() time.Time
	log          zerolog.Logger
}

// NewSyncService creates a new SyncServiceImpl.
func NewSyncService(
	bookings ports.BookingRepository,
	mappings ports.MappingRepository,
	reservations ports.ExternalReservationRepository,
	adapters ports.AdapterFactory,
	encSvc ports.EncryptionService,
	notifier ports.NotificationService,
	feed ports.ChangeFeed,
	opts SyncOptions,
	log zerolog.Logger,
) *SyncServiceImpl {
	return &SyncServiceImpl{
		bookings:     bookings,
		mappings:     mappings,
		reservations: reservations,
		adapters:     adapters,
		encSvc:       encSvc,
		notifier:     notifier,
		feed:         feed,
		opts:         opts,
		now:          func() time.Time { return time.Now().UTC() },
		log:          log,
	}
}

// SyncBooking mirrors a local booking change to every sync-enabled provider of its venue.
// Provider failures are recorded on the ExternalReservation rows and do not fail the call.
func (s *SyncServiceImpl) SyncBooking(ctx context.Context, bookingID uuid.UUID, op domain.SyncOperation) ([]domain.ExternalReservation, error) {
	if !op.IsValid() {
		return nil, apperror.ErrInvalidOperation(string(op))
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get booking: %w", err))
	}
	if booking == nil {
		return nil, apperror.ErrNotFound("booking")
	}
	if booking.IsCancelled() && op != domain.SyncOperationCancel {
		return nil, apperror.Validation("booking is cancelled")
	}

	mappings, err := s.syncMappings(ctx, booking.VenueID)
	if err != nil {
		return nil, err
	}
	if len(mappings) == 0 {
		return nil, apperror.ErrSyncNotConfigured()
	}

	// Local cancel is optimistic: the booking is cancelled before any provider answers.
	if op == domain.SyncOperationCancel {
		if _, err := s.bookings.UpdateStatus(ctx, booking.ID, domain.BookingStatusCancelled); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("cancel booking: %w", err))
		}
		booking.Status = domain.BookingStatusCancelled
	}

	results := make([]domain.ExternalReservation, 0, len(mappings))
	for i := range mappings {
		rec, err := s.syncMapping(ctx, booking, &mappings[i], op)
		if err != nil {
			return results, err
		}
		if rec != nil {
			results = append(results, *rec)
		}
	}
	return results, nil
}

// RetrySync moves a failed reservation back to pending and runs its operation immediately.
// retry_count is kept so backoff continues from where it was.
func (s *SyncServiceImpl) RetrySync(ctx context.Context, id uuid.UUID) (*domain.ExternalReservation, error) {
	rec, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get external reservation: %w", err))
	}
	if rec == nil {
		return nil, apperror.ErrNotFound("external reservation")
	}
	if !rec.IsRetryable() || rec.BookingID == nil {
		return nil, apperror.ErrNotRetryable()
	}

	booking, mapping, err := s.loadContext(ctx, rec)
	if err != nil {
		return nil, err
	}

	if _, err := rec.TransitionTo(domain.SyncStatusPending); err != nil {
		return nil, apperror.ErrInvalidTransition(string(rec.SyncStatus), string(domain.SyncStatusPending))
	}
	rec.ErrorMessage = nil
	rec.ErrorPermanent = false
	rec.NextRetryAt = nil

	ok, err := s.reservations.UpdateIfStatus(ctx, rec, domain.SyncStatusFailed)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("reset external reservation: %w", err))
	}
	if !ok {
		return nil, apperror.ErrNotRetryable()
	}
	s.publish(ctx, rec)

	s.log.Info().
		Str("external_reservation_id", rec.ID.String()).
		Int("attempt", rec.RetryCount+1).
		Msg("manual sync retry")
	return s.execute(ctx, rec, booking, mapping)
}

// SweepDue re-runs failed reservations whose next_retry_at has passed, and
// resumes pending or syncing rows left behind by a worker that stopped mid-call.
func (s *SyncServiceImpl) SweepDue(ctx context.Context) (int, error) {
	due, err := s.reservations.ClaimDue(ctx, s.now(), s.staleCutoff(), s.opts.SweepBatch)
	if err != nil {
		return 0, fmt.Errorf("claim due reservations: %w", err)
	}

	processed := 0
	for i := range due {
		if ctx.Err() != nil {
			break
		}
		rec := &due[i]
		log := s.log.With().
			Str("external_reservation_id", rec.ID.String()).
			Str("provider", string(rec.Provider)).
			Int("attempt", rec.RetryCount+1).
			Logger()

		booking, mapping, err := s.loadContext(ctx, rec)
		if err != nil {
			// Record why claimed rows cannot run so they do not stall where they are.
			log.Warn().Err(err).Msg("scheduled retry cannot run")
			if ferr := s.failWithoutCall(ctx, rec, err); ferr != nil {
				log.Error().Err(ferr).Msg("failed to record retry failure")
			}
			continue
		}

		log.Info().Msg("running scheduled sync retry")
		if _, err := s.execute(ctx, rec, booking, mapping); err != nil {
			log.Error().Err(err).Msg("scheduled sync retry failed")
			continue
		}
		processed++
	}
	return processed, nil
}

// GetExternalReservations returns every mirror of a booking, newest first.
func (s *SyncServiceImpl) GetExternalReservations(ctx context.Context, bookingID uuid.UUID) ([]domain.ExternalReservation, error) {
	recs, err := s.reservations.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list external reservations: %w", err))
	}
	return recs, nil
}

// ListByVenue lists a venue's mirrors with pagination.
func (s *SyncServiceImpl) ListByVenue(ctx context.Context, params ports.ExternalReservationListParams) ([]domain.ExternalReservation, int64, error) {
	params.Page, params.PageSize = normalizePage(params.Page, params.PageSize)
	recs, total, err := s.reservations.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list external reservations: %w", err))
	}
	return recs, total, nil
}

// StatsByVenue returns per-status badge counts.
func (s *SyncServiceImpl) StatsByVenue(ctx context.Context, venueID uuid.UUID) (*ports.SyncStats, error) {
	stats, err := s.reservations.StatsByVenue(ctx, venueID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sync stats: %w", err))
	}
	return stats, nil
}

func (s *SyncServiceImpl) syncMappings(ctx context.Context, venueID uuid.UUID) ([]domain.ProviderMapping, error) {
	all, err := s.mappings.ListByVenue(ctx, venueID, true)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list mappings: %w", err))
	}
	out := all[:0]
	for _, m := range all {
		if m.CanSync() {
			out = append(out, m)
		}
	}
	return out, nil
}

// syncMapping resolves the row for (booking, provider) and decides what the operation means for it.
func (s *SyncServiceImpl) syncMapping(ctx context.Context, booking *domain.Booking, m *domain.ProviderMapping, op domain.SyncOperation) (*domain.ExternalReservation, error) {
	rec, err := s.reservations.GetOpenByBooking(ctx, booking.ID, m.Provider)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get external reservation: %w", err))
	}

	if rec == nil {
		if op == domain.SyncOperationCancel {
			// Nothing was ever sent to this provider.
			return nil, nil
		}
		rec = domain.NewExternalReservation(&booking.ID, booking.VenueID, m.Provider, domain.SyncOperationCreate)
		if err := s.reservations.Create(ctx, rec); err != nil {
			if !errors.Is(err, ports.ErrConflict) {
				return nil, apperror.InternalError(fmt.Errorf("create external reservation: %w", err))
			}
			// A concurrent call created the row first; continue with theirs.
			rec, err = s.reservations.GetOpenByBooking(ctx, booking.ID, m.Provider)
			if err != nil {
				return nil, apperror.InternalError(fmt.Errorf("reload external reservation: %w", err))
			}
			if rec == nil {
				return nil, apperror.InternalError(fmt.Errorf("external reservation for booking %s vanished after conflict", booking.ID))
			}
			return s.resumeExisting(ctx, rec, booking, m, op)
		}
		s.publish(ctx, rec)
		return s.execute(ctx, rec, booking, m)
	}
	return s.resumeExisting(ctx, rec, booking, m, op)
}

func (s *SyncServiceImpl) resumeExisting(ctx context.Context, rec *domain.ExternalReservation, booking *domain.Booking, m *domain.ProviderMapping, op domain.SyncOperation) (*domain.ExternalReservation, error) {
	log := s.log.With().
		Str("booking_id", booking.ID.String()).
		Str("external_reservation_id", rec.ID.String()).
		Str("provider", string(rec.Provider)).
		Str("status", string(rec.SyncStatus)).
		Logger()

	for i := 0; rec.SyncStatus == domain.SyncStatusSyncing && !s.isStale(rec); i++ {
		if i == outcomeAttempts || !canQueueBehind(rec, op) {
			log.Info().Str("operation", string(op)).Msg("sync already in flight")
			return rec, nil
		}
		queued := *rec
		queued.BeginOperation(op)
		ok, err := s.reservations.UpdateIfStatus(ctx, &queued, domain.SyncStatusSyncing)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("queue operation: %w", err))
		}
		if ok {
			log.Info().
				Str("operation", string(op)).
				Int("operation_seq", queued.OperationSeq).
				Msg("queued provider operation behind in-flight call")
			return &queued, nil
		}
		// The in-flight call landed first; decide again against the stored row.
		if rec, err = s.reload(ctx, rec.ID); err != nil {
			return nil, err
		}
	}
	if rec.IsTerminal() {
		return rec, nil
	}

	if !rec.HasProviderReservation() {
		switch op {
		case domain.SyncOperationCancel:
			// The provider never confirmed a reservation; cancel the mirror locally.
			return s.cancelLocally(ctx, rec)
		default:
			// The create has not landed yet; re-running it with the same key carries the latest booking data.
			if rec.SyncStatus == domain.SyncStatusSynced || rec.SyncStatus == domain.SyncStatusModified {
				return rec, nil
			}
			return s.execute(ctx, rec, booking, m)
		}
	}

	switch op {
	case domain.SyncOperationCreate:
		if rec.SyncStatus == domain.SyncStatusPending || rec.SyncStatus == domain.SyncStatusFailed || rec.SyncStatus == domain.SyncStatusSyncing {
			return s.execute(ctx, rec, booking, m)
		}
		// Already created at the provider.
		return rec, nil
	default:
		rec.BeginOperation(op)
		log.Info().Str("operation", string(op)).Int("operation_seq", rec.OperationSeq).Msg("starting provider operation")
		return s.execute(ctx, rec, booking, m)
	}
}

// canQueueBehind reports whether op can wait for the call in flight on rec.
// A second create is the same request, and nothing follows a cancel.
func canQueueBehind(rec *domain.ExternalReservation, op domain.SyncOperation) bool {
	return op != domain.SyncOperationCreate && rec.Operation != domain.SyncOperationCancel
}

// staleCutoff is the updated_at before which a syncing row is treated as abandoned.
func (s *SyncServiceImpl) staleCutoff() time.Time {
	return s.now().Add(-2 * s.opts.CallTimeout)
}

func (s *SyncServiceImpl) isStale(rec *domain.ExternalReservation) bool {
	return rec.UpdatedAt.Before(s.staleCutoff())
}

func (s *SyncServiceImpl) cancelLocally(ctx context.Context, rec *domain.ExternalReservation) (*domain.ExternalReservation, error) {
	return s.applyOutcome(ctx, rec, rec.SyncStatus, domain.SyncStatusCancelled, func(r *domain.ExternalReservation) {
		r.NextRetryAt = nil
	})
}

// execute runs the row's current operation against the provider and records the outcome.
// No lock is held across the provider call; outcomes are applied with compare-and-set.
// An operation queued on the row while the call was in flight runs next.
func (s *SyncServiceImpl) execute(ctx context.Context, rec *domain.ExternalReservation, booking *domain.Booking, m *domain.ProviderMapping) (*domain.ExternalReservation, error) {
	for {
		out, queued, err := s.executeOnce(ctx, rec, booking, m)
		if err != nil || !queued || ctx.Err() != nil {
			return out, err
		}
		// Queued operations carry the booking as it is now.
		if fresh, err := s.bookings.GetByID(ctx, booking.ID); err == nil && fresh != nil {
			booking = fresh
		}
		rec = out
	}
}

// executeOnce makes one provider call. queued is true when the row is synced and
// still has an operation to run: one queued during the call, or the operation
// that was waiting for the create to land.
func (s *SyncServiceImpl) executeOnce(ctx context.Context, rec *domain.ExternalReservation, booking *domain.Booking, m *domain.ProviderMapping) (*domain.ExternalReservation, bool, error) {
	log := s.log.With().
		Str("booking_id", booking.ID.String()).
		Str("external_reservation_id", rec.ID.String()).
		Str("provider", string(rec.Provider)).
		Str("operation", string(rec.Operation)).
		Int("operation_seq", rec.OperationSeq).
		Int("attempt", rec.RetryCount+1).
		Logger()

	callSeq := rec.OperationSeq
	creating := rec.NeedsProviderReservation()
	cancelling := rec.Operation == domain.SyncOperationCancel && !creating

	prev := rec.SyncStatus
	if prev == domain.SyncStatusFailed {
		if _, err := rec.TransitionTo(domain.SyncStatusPending); err != nil {
			return nil, false, apperror.ErrInvalidTransition(string(prev), string(domain.SyncStatusPending))
		}
	}
	if _, err := rec.TransitionTo(domain.SyncStatusSyncing); err != nil {
		log.Warn().Err(err).Msg("rejected sync transition")
		return nil, false, apperror.ErrInvalidTransition(string(rec.SyncStatus), string(domain.SyncStatusSyncing))
	}
	ok, err := s.reservations.UpdateIfStatus(ctx, rec, prev)
	if err != nil {
		return nil, false, apperror.InternalError(fmt.Errorf("mark syncing: %w", err))
	}
	if !ok {
		// Another worker or a webhook moved the row; report its current state.
		log.Info().Msg("external reservation changed concurrently, skipping call")
		out, err := s.reload(ctx, rec.ID)
		return out, false, err
	}
	s.publish(ctx, rec)

	res, callErr := s.callProvider(ctx, rec, booking, m)
	if callErr != nil {
		log.Warn().Err(callErr).Msg("provider call failed")
		out, err := s.applyOutcome(ctx, rec, domain.SyncStatusSyncing, domain.SyncStatusFailed, s.failureMutation(callErr))
		if err != nil {
			return nil, false, err
		}
		s.notifyFailure(ctx, out, booking)
		return out, false, nil
	}

	target := domain.SyncStatusSynced
	if cancelling {
		target = domain.SyncStatusCancelled
	}
	out, err := s.applyOutcome(ctx, rec, domain.SyncStatusSyncing, target, s.successMutation(res))
	if err != nil {
		return nil, false, err
	}
	log.Info().Str("status", string(out.SyncStatus)).Msg("provider sync completed")

	queued := out.SyncStatus == domain.SyncStatusSynced &&
		(out.OperationSeq != callSeq || creating && !out.NeedsProviderReservation())
	if queued {
		log.Info().
			Str("next_operation", string(out.Operation)).
			Int("next_operation_seq", out.OperationSeq).
			Msg("running operation queued behind provider call")
	}
	return out, queued, nil
}

func (s *SyncServiceImpl) callProvider(ctx context.Context, rec *domain.ExternalReservation, booking *domain.Booking, m *domain.ProviderMapping) (*ports.ProviderReservation, error) {
	creds, err := decryptCredentials(s.encSvc, m)
	if err != nil {
		return nil, &ports.ProviderError{Provider: m.Provider, Message: "credentials unavailable", Err: err}
	}
	adapter, err := s.adapters.ForMapping(m, creds)
	if err != nil {
		return nil, &ports.ProviderError{Provider: m.Provider, Message: err.Error(), Err: err}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
	defer cancel()

	req := reservationRequest(rec, booking, m)
	if rec.NeedsProviderReservation() {
		// Finish the create under its original key before the operation that depends on it.
		req.IdempotencyKey = rec.IdempotencyKey
		return adapter.CreateReservation(callCtx, req)
	}
	switch rec.Operation {
	case domain.SyncOperationUpdate:
		return adapter.UpdateReservation(callCtx, *rec.ProviderReservationID, req)
	case domain.SyncOperationCancel:
		return adapter.CancelReservation(callCtx, *rec.ProviderReservationID, rec.OperationKey())
	default:
		return adapter.CreateReservation(callCtx, req)
	}
}

func reservationRequest(rec *domain.ExternalReservation, b *domain.Booking, m *domain.ProviderMapping) ports.ReservationRequest {
	req := ports.ReservationRequest{
		IdempotencyKey:  rec.OperationKey(),
		ProviderVenueID: m.ProviderVenueID,
		BookingID:       b.ID,
		GuestName:       b.GuestName,
		PartySize:       b.PartySize,
		StartsAt:        b.StartsAt,
		Location:        m.Location(),
	}
	if b.GuestEmail != nil {
		req.GuestEmail = *b.GuestEmail
	}
	if b.GuestPhone != nil {
		req.GuestPhone = *b.GuestPhone
	}
	if b.SeatingType != nil {
		req.SeatingType = *b.SeatingType
	}
	if b.Notes != nil {
		req.Notes = *b.Notes
	}
	return req
}

func (s *SyncServiceImpl) successMutation(res *ports.ProviderReservation) func(*domain.ExternalReservation) {
	now := s.now()
	return func(r *domain.ExternalReservation) {
		if res != nil {
			if res.ProviderReservationID != "" {
				id := res.ProviderReservationID
				r.ProviderReservationID = &id
			}
			if res.ConfirmationNumber != "" {
				c := res.ConfirmationNumber
				r.ProviderConfirmationNumber = &c
			}
			if res.Status != "" {
				st := res.Status
				r.ProviderStatus = &st
			}
			if len(res.Raw) > 0 {
				r.ProviderResponse = res.Raw
			}
		}
		r.LastSyncedAt = &now
		r.ErrorMessage = nil
		r.ErrorPermanent = false
		r.RetryCount = 0
		r.NextRetryAt = nil
	}
}

func (s *SyncServiceImpl) failureMutation(callErr error) func(*domain.ExternalReservation) {
	now := s.now()
	permanent := !isTransient(callErr)
	msg := callErr.Error()
	return func(r *domain.ExternalReservation) {
		r.RetryCount++
		r.ErrorMessage = &msg
		r.ErrorPermanent = permanent
		r.NextRetryAt = s.opts.Retry.NextRetryAt(now, r.RetryCount, permanent)
		if raw := providerErrorPayload(callErr); raw != nil {
			r.ProviderResponse = raw
		}
	}
}

// applyOutcome moves rec from expected to target and applies mutate, reloading and
// re-deciding when a concurrent writer (usually a webhook) changed the row first.
func (s *SyncServiceImpl) applyOutcome(ctx context.Context, rec *domain.ExternalReservation, expected, target domain.SyncStatus, mutate func(*domain.ExternalReservation)) (*domain.ExternalReservation, error) {
	cur := rec
	for i := 0; i < outcomeAttempts; i++ {
		if !domain.CanTransition(cur.SyncStatus, target) {
			s.log.Warn().
				Str("external_reservation_id", cur.ID.String()).
				Str("from", string(cur.SyncStatus)).
				Str("to", string(target)).
				Msg("rejected sync transition; keeping current state")
			return cur, nil
		}
		next := *cur
		mutate(&next)
		if _, err := next.TransitionTo(target); err != nil {
			return nil, apperror.ErrInvalidTransition(string(cur.SyncStatus), string(target))
		}
		next.UpdatedAt = s.now()

		ok, err := s.reservations.UpdateIfStatus(ctx, &next, expected)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("update external reservation: %w", err))
		}
		if ok {
			*rec = next
			s.publish(ctx, rec)
			return rec, nil
		}

		reloaded, err := s.reload(ctx, cur.ID)
		if err != nil {
			return nil, err
		}
		cur = reloaded
		expected = cur.SyncStatus
	}
	return cur, nil
}

// failWithoutCall records an attempt that could not reach the provider at all.
// The cause is configuration, so the failure is permanent.
func (s *SyncServiceImpl) failWithoutCall(ctx context.Context, rec *domain.ExternalReservation, cause error) error {
	prev := rec.SyncStatus
	if _, err := rec.TransitionTo(domain.SyncStatusSyncing); err != nil {
		return err
	}
	ok, err := s.reservations.UpdateIfStatus(ctx, rec, prev)
	if err != nil || !ok {
		return err
	}
	failure := &ports.ProviderError{Provider: rec.Provider, Message: cause.Error(), Err: cause}
	_, err = s.applyOutcome(ctx, rec, domain.SyncStatusSyncing, domain.SyncStatusFailed, s.failureMutation(failure))
	return err
}

func (s *SyncServiceImpl) reload(ctx context.Context, id uuid.UUID) (*domain.ExternalReservation, error) {
	rec, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("reload external reservation: %w", err))
	}
	if rec == nil {
		return nil, apperror.ErrNotFound("external reservation")
	}
	return rec, nil
}

// loadContext fetches the booking and the active mapping a stored row needs to run.
func (s *SyncServiceImpl) loadContext(ctx context.Context, rec *domain.ExternalReservation) (*domain.Booking, *domain.ProviderMapping, error) {
	if rec.BookingID == nil {
		return nil, nil, apperror.ErrNotRetryable()
	}
	booking, err := s.bookings.GetByID(ctx, *rec.BookingID)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("get booking: %w", err))
	}
	if booking == nil {
		return nil, nil, apperror.ErrNotFound("booking")
	}
	mappings, err := s.syncMappings(ctx, rec.VenueID)
	if err != nil {
		return nil, nil, err
	}
	for i := range mappings {
		if mappings[i].Provider == rec.Provider {
			return booking, &mappings[i], nil
		}
	}
	return nil, nil, apperror.ErrSyncNotConfigured()
}

// notifyFailure tells staff when a failure needs attention: a provider cancellation
// that did not go through, or a sync that will not be retried automatically.
func (s *SyncServiceImpl) notifyFailure(ctx context.Context, rec *domain.ExternalReservation, booking *domain.Booking) {
	if rec.SyncStatus != domain.SyncStatusFailed {
		return
	}
	venueID := booking.VenueID
	link := "/bookings/" + booking.ID.String()
	reason := ""
	if rec.ErrorMessage != nil {
		reason = *rec.ErrorMessage
	}

	var req ports.NotificationRequest
	switch {
	case rec.Operation == domain.SyncOperationCancel && (rec.RetryCount == 1 || rec.NextRetryAt == nil):
		prid := ""
		if rec.ProviderReservationID != nil {
			prid = *rec.ProviderReservationID
		}
		req = ports.NotificationRequest{
			VenueID:  &venueID,
			Title:    "Provider reservation still active",
			Body:     fmt.Sprintf("Booking for %s was cancelled here, but %s reservation %s is still live: %s", booking.GuestName, rec.Provider, prid, reason),
			DeepLink: link,
		}
	case rec.NextRetryAt == nil:
		req = ports.NotificationRequest{
			VenueID:  &venueID,
			Title:    "Reservation sync needs attention",
			Body:     fmt.Sprintf("Syncing the booking for %s to %s failed and will not be retried automatically: %s", booking.GuestName, rec.Provider, reason),
			DeepLink: link,
		}
	default:
		return
	}

	if err := s.notifier.CreateNotification(ctx, req); err != nil {
		s.log.Error().Err(err).Str("booking_id", booking.ID.String()).Msg("failed to notify staff of sync failure")
	}
}

func (s *SyncServiceImpl) publish(ctx context.Context, rec *domain.ExternalReservation) {
	if s.feed == nil || rec.BookingID == nil {
		return
	}
	if err := s.feed.Publish(ctx, rec); err != nil {
		s.log.Warn().Err(err).Str("external_reservation_id", rec.ID.String()).Msg("change feed publish failed")
	}
}

// isTransient classifies provider call errors. Timeouts and unknown transport
// failures are transient; only explicit provider rejections are permanent.
func isTransient(err error) bool {
	var pe *ports.ProviderError
	if errors.As(err, &pe) {
		return pe.Transient
	}
	return true
}

func providerErrorPayload(err error) json.RawMessage {
	var pe *ports.ProviderError
	if !errors.As(err, &pe) || pe.StatusCode == 0 {
		return nil
	}
	raw, _ := json.Marshal(map[string]any{"status_code": pe.StatusCode, "message": pe.Message})
	return raw
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}
