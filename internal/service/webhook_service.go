package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"reservation-sync/internal/core/domain"
	"reservation-sync/internal/core/ports"
	"reservation-sync/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// errUnmatchedEvent marks an event that refers to no known reservation.
// The event is stored as failed so an operator can replay it once the row exists.
var errUnmatchedEvent = errors.New("no matching external reservation")

// redactedHeaders are never persisted with the event.
var redactedHeaders = map[string]bool{
	"authorization": true,
	"cookie":        true,
	"x-api-key":     true,
}

// WebhookOptions configures inbound event handling.
type WebhookOptions struct {
	// HoldUnverified leaves events with a bad signature in received for manual review.
	HoldUnverified bool
}

// WebhookServiceImpl implements ports.WebhookService.
type WebhookServiceImpl struct {
	events       ports.WebhookEventRepository
	reservations ports.ExternalReservationRepository
	mappings     ports.MappingRepository
	bookings     ports.BookingRepository
	adapters     ports.AdapterFactory
	notifier     ports.NotificationService
	audit        ports.AuditService
	feed         ports.ChangeFeed
	opts         WebhookOptions
	now          func() time.Time
	log          zerolog.Logger
}

// NewWebhookService creates a new WebhookServiceImpl.
func NewWebhookService(
	events ports.WebhookEventRepository,
	reservations ports.ExternalReservationRepository,
	mappings ports.MappingRepository,
	bookings ports.BookingRepository,
	adapters ports.AdapterFactory,
	notifier ports.NotificationService,
	audit ports.AuditService,
	feed ports.ChangeFeed,
	opts WebhookOptions,
	log zerolog.Logger,
) *WebhookServiceImpl {
	return &WebhookServiceImpl{
		events:       events,
		reservations: reservations,
		mappings:     mappings,
		bookings:     bookings,
		adapters:     adapters,
		notifier:     notifier,
		audit:        audit,
		feed:         feed,
		opts:         opts,
		now:          func() time.Time { return time.Now().UTC() },
		log:          log,
	}
}

// HandleWebhook stores and processes one provider delivery.
// Once the provider is known and the body is non-empty, processing errors are
// recorded on the event and never returned, so the provider always gets a 200.
func (s *WebhookServiceImpl) HandleWebhook(ctx context.Context, providerName string, headers http.Header, body []byte) (*ports.WebhookAck, error) {
	provider := domain.Provider(strings.ToLower(strings.TrimSpace(providerName)))
	if !provider.IsValid() {
		return nil, apperror.ErrUnknownWebhookProvider(providerName)
	}
	adapter, err := s.adapters.ForProvider(provider)
	if err != nil {
		return nil, apperror.ErrUnknownWebhookProvider(providerName)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, apperror.ErrMalformedWebhook("empty body")
	}

	log := s.log.With().Str("provider", string(provider)).Logger()
	now := s.now()

	payload, evt := s.decode(adapter, body, log)
	if evt.EventID == "" {
		evt.EventID = fmt.Sprintf("synthetic:%s:%d", provider, now.UnixNano())
		log.Warn().Str("event_id", evt.EventID).Msg("webhook has no event id, synthesized one")
	}
	log = log.With().Str("event_id", evt.EventID).Str("event_type", evt.EventType).Logger()

	existing, err := s.events.Get(ctx, provider, evt.EventID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get webhook event: %w", err))
	}
	if existing != nil {
		return s.duplicate(ctx, provider, evt.EventID, now, log)
	}

	signature, verified := adapter.VerifySignature(headers, body)
	row := &domain.WebhookEvent{
		ID:                uuid.New(),
		Provider:          provider,
		EventID:           evt.EventID,
		EventType:         evt.EventType,
		Payload:           payload,
		Headers:           flattenHeaders(headers),
		SignatureVerified: verified,
		ProcessingStatus:  domain.ProcessingStatusReceived,
		ReceivedAt:        now,
		LastReceivedAt:    now,
	}
	if signature != "" {
		row.Signature = &signature
	}

	inserted, err := s.events.Insert(ctx, row)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("insert webhook event: %w", err))
	}
	if !inserted {
		// Lost the race against a concurrent delivery of the same event.
		return s.duplicate(ctx, provider, evt.EventID, now, log)
	}
	log.Info().Bool("signature_verified", verified).Msg("webhook event received")

	if !verified {
		log.Warn().Bool("hold", s.opts.HoldUnverified).Msg("webhook signature not verified")
		s.auditUnverified(ctx, row)
		if s.opts.HoldUnverified {
			return &ports.WebhookAck{Status: ports.AckReceived, EventID: evt.EventID}, nil
		}
	}

	s.process(ctx, row, evt, log)
	return &ports.WebhookAck{Status: ports.AckReceived, EventID: evt.EventID}, nil
}

// ReplayEvent re-runs a stored event from its raw payload.
// Held unverified events are released this way.
func (s *WebhookServiceImpl) ReplayEvent(ctx context.Context, id uuid.UUID) (*domain.WebhookEvent, error) {
	row, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get webhook event: %w", err))
	}
	if row == nil {
		return nil, apperror.ErrNotFound("webhook event")
	}
	adapter, err := s.adapters.ForProvider(row.Provider)
	if err != nil {
		return nil, apperror.ErrUnknownWebhookProvider(string(row.Provider))
	}

	log := s.log.With().
		Str("provider", string(row.Provider)).
		Str("event_id", row.EventID).
		Str("event_type", row.EventType).
		Logger()

	_, evt := s.decode(adapter, row.Payload, log)
	evt.EventID = row.EventID
	log.Info().Int("attempt", row.ProcessingAttempts+1).Msg("replaying webhook event")
	s.process(ctx, row, evt, log)
	return row, nil
}

// ListEvents lists stored events for the operator view.
func (s *WebhookServiceImpl) ListEvents(ctx context.Context, params ports.WebhookEventListParams) ([]domain.WebhookEvent, int64, error) {
	params.Page, params.PageSize = normalizePage(params.Page, params.PageSize)
	events, total, err := s.events.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list webhook events: %w", err))
	}
	return events, total, nil
}

// decode maps the body to a provider event. Bodies that are not JSON are kept
// as {"raw": "..."} and handled as unknown events.
func (s *WebhookServiceImpl) decode(adapter ports.ProviderAdapter, body []byte, log zerolog.Logger) (json.RawMessage, *domain.ProviderEvent) {
	if !json.Valid(body) {
		raw, _ := json.Marshal(map[string]string{"raw": string(body)})
		log.Warn().Msg("webhook body is not JSON")
		return raw, &domain.ProviderEvent{EventType: domain.EventTypeUnknown, Kind: domain.EventKindUnknown}
	}
	evt, err := adapter.MapWebhookEvent(body)
	if err != nil || evt == nil {
		log.Warn().Err(err).Msg("webhook payload could not be mapped")
		return json.RawMessage(body), &domain.ProviderEvent{EventType: domain.EventTypeUnknown, Kind: domain.EventKindUnknown}
	}
	if evt.EventType == "" {
		evt.EventType = domain.EventTypeUnknown
	}
	if evt.Kind == "" {
		evt.Kind = domain.EventKindUnknown
	}
	return json.RawMessage(body), evt
}

func (s *WebhookServiceImpl) duplicate(ctx context.Context, provider domain.Provider, eventID string, at time.Time, log zerolog.Logger) (*ports.WebhookAck, error) {
	// The event is already stored, so a failed counter bump still acks.
	if err := s.events.RecordDuplicate(ctx, provider, eventID, at); err != nil {
		log.Error().Err(err).Msg("failed to record duplicate webhook delivery")
	}
	log.Info().Msg("duplicate webhook event ignored")
	return &ports.WebhookAck{Status: ports.AckDuplicate, EventID: eventID}, nil
}

// process runs the event handler and records the outcome on the event row.
func (s *WebhookServiceImpl) process(ctx context.Context, row *domain.WebhookEvent, evt *domain.ProviderEvent, log zerolog.Logger) {
	row.ProcessingStatus = domain.ProcessingStatusProcessing
	if err := s.events.UpdateStatus(ctx, row); err != nil {
		log.Error().Err(err).Msg("failed to mark webhook event processing")
		return
	}

	if err := s.apply(ctx, row, evt, log); err != nil {
		msg := err.Error()
		row.ProcessingStatus = domain.ProcessingStatusFailed
		row.ProcessingAttempts++
		row.ErrorMessage = &msg
		log.Error().Err(err).Int("attempts", row.ProcessingAttempts).Msg("webhook event processing failed")
	} else {
		now := s.now()
		row.ProcessingStatus = domain.ProcessingStatusProcessed
		row.ProcessedAt = &now
		row.ErrorMessage = nil
	}
	if err := s.events.UpdateStatus(ctx, row); err != nil {
		log.Error().Err(err).Msg("failed to record webhook event outcome")
	}
}

// apply dispatches on the event kind.
func (s *WebhookServiceImpl) apply(ctx context.Context, row *domain.WebhookEvent, evt *domain.ProviderEvent, log zerolog.Logger) error {
	if evt.Kind == domain.EventKindUnknown {
		log.Info().Msg("unhandled webhook event type")
		return nil
	}

	rec, err := s.correlate(ctx, row.Provider, evt)
	if err != nil {
		return err
	}
	if rec == nil {
		if evt.Kind == domain.EventKindCreated || evt.Kind == domain.EventKindConfirmed {
			return s.recordUnmatched(ctx, row, evt, log)
		}
		return errUnmatchedEvent
	}
	log = log.With().Str("external_reservation_id", rec.ID.String()).Logger()

	switch evt.Kind {
	case domain.EventKindCreated, domain.EventKindConfirmed:
		if _, err := s.transition(ctx, rec, domain.SyncStatusSynced, row, evt, log); err != nil {
			return err
		}
		// The outbound create usually lands first, so the row may already be synced.
		if rec.SyncStatus == domain.SyncStatusSynced {
			s.setBookingStatus(ctx, rec, domain.BookingStatusConfirmed, domain.BookingStatusPending, log)
		}
	case domain.EventKindModified:
		if rec.SentUpdateKey(evt.IdempotencyKey) {
			// The provider is reporting an update we sent; record it without flagging a change.
			log.Info().Str("idempotency_key", evt.IdempotencyKey).Msg("provider confirmed our update")
			_, err := s.transition(ctx, rec, "", row, evt, log)
			return err
		}
		changed, err := s.transition(ctx, rec, domain.SyncStatusModified, row, evt, log)
		if err != nil {
			return err
		}
		if changed {
			s.notifyStaffModified(ctx, rec, log)
		}
	case domain.EventKindCancelled:
		if rec.SyncStatus == domain.SyncStatusCancelled {
			log.Info().Msg("reservation already cancelled")
			return nil
		}
		changed, err := s.transition(ctx, rec, domain.SyncStatusCancelled, row, evt, log)
		if err != nil {
			return err
		}
		if changed {
			s.cancelBooking(ctx, rec, log)
		}
	case domain.EventKindSeated, domain.EventKindCompleted, domain.EventKindNoShow:
		if rec.SyncStatus == domain.SyncStatusCancelled {
			log.Warn().Msg("status event for cancelled reservation ignored")
			return nil
		}
		if _, err := s.transition(ctx, rec, "", row, evt, log); err != nil {
			return err
		}
		s.setBookingStatus(ctx, rec, bookingStatusForKind(evt.Kind), "", log)
	}
	return nil
}

// correlate finds the row an event refers to: by provider reservation id, then
// by the echoed idempotency key, then by the echoed booking id.
func (s *WebhookServiceImpl) correlate(ctx context.Context, provider domain.Provider, evt *domain.ProviderEvent) (*domain.ExternalReservation, error) {
	if evt.ProviderReservationID != "" {
		rec, err := s.reservations.GetByProviderReservationID(ctx, provider, evt.ProviderReservationID)
		if err != nil {
			return nil, fmt.Errorf("lookup by provider reservation id: %w", err)
		}
		if rec != nil {
			return rec, nil
		}
	}
	if evt.IdempotencyKey != "" {
		// Operation keys look like "<key>:<op>:<seq>"; the row stores the bare key.
		key, _, _ := strings.Cut(evt.IdempotencyKey, ":")
		rec, err := s.reservations.GetByIdempotencyKey(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("lookup by idempotency key: %w", err)
		}
		if rec != nil && rec.Provider == provider {
			return rec, nil
		}
	}
	if evt.BookingReference != "" {
		bookingID, err := uuid.Parse(evt.BookingReference)
		if err != nil {
			return nil, nil
		}
		rec, err := s.reservations.GetOpenByBooking(ctx, bookingID, provider)
		if err != nil {
			return nil, fmt.Errorf("lookup by booking: %w", err)
		}
		if rec != nil {
			return rec, nil
		}
		// A redelivered cancellation may only match a cancelled row.
		recs, err := s.reservations.ListByBooking(ctx, bookingID)
		if err != nil {
			return nil, fmt.Errorf("list by booking: %w", err)
		}
		for i := range recs {
			if recs[i].Provider == provider {
				return &recs[i], nil
			}
		}
	}
	return nil, nil
}

// transition applies the event to rec with compare-and-set, reloading when an
// outbound call wins the race. Illegal moves keep the current state. An empty
// target records the event's provider fields without changing state.
func (s *WebhookServiceImpl) transition(ctx context.Context, rec *domain.ExternalReservation, target domain.SyncStatus, row *domain.WebhookEvent, evt *domain.ProviderEvent, log zerolog.Logger) (bool, error) {
	cur := rec
	for i := 0; i < outcomeAttempts; i++ {
		to := target
		if to == "" {
			if cur.SyncStatus == domain.SyncStatusCancelled {
				return false, nil
			}
			to = cur.SyncStatus
		}
		if !domain.CanTransition(cur.SyncStatus, to) {
			log.Warn().
				Str("from", string(cur.SyncStatus)).
				Str("to", string(to)).
				Msg("rejected sync transition from webhook; keeping current state")
			return false, nil
		}
		expected := cur.SyncStatus
		next := *cur
		changed, _ := next.TransitionTo(to)
		if evt.ProviderReservationID != "" && !next.HasProviderReservation() {
			prid := evt.ProviderReservationID
			next.ProviderReservationID = &prid
		}
		if evt.ProviderStatus != "" {
			st := evt.ProviderStatus
			next.ProviderStatus = &st
		}
		if evt.ConfirmationNumber != "" {
			c := evt.ConfirmationNumber
			next.ProviderConfirmationNumber = &c
		}
		next.ProviderResponse = row.Payload
		next.UpdatedAt = s.now()

		ok, err := s.reservations.UpdateIfStatus(ctx, &next, expected)
		if err != nil {
			return false, fmt.Errorf("update external reservation: %w", err)
		}
		if ok {
			*rec = next
			s.publish(ctx, rec)
			if changed {
				log.Info().Str("from", string(expected)).Str("to", string(to)).Msg("external reservation updated from webhook")
			}
			return changed, nil
		}

		reloaded, err := s.reservations.GetByID(ctx, cur.ID)
		if err != nil {
			return false, fmt.Errorf("reload external reservation: %w", err)
		}
		if reloaded == nil {
			return false, errUnmatchedEvent
		}
		cur = reloaded
	}
	return false, fmt.Errorf("external reservation %s kept changing", rec.ID)
}

// recordUnmatched stores a provider-originated reservation no local booking knows about.
func (s *WebhookServiceImpl) recordUnmatched(ctx context.Context, row *domain.WebhookEvent, evt *domain.ProviderEvent, log zerolog.Logger) error {
	if evt.ProviderVenueID == "" {
		log.Warn().Msg("unmatched reservation event without venue, ignored")
		return nil
	}
	mapping, err := s.mappings.GetActiveByProviderVenue(ctx, row.Provider, evt.ProviderVenueID)
	if err != nil {
		return fmt.Errorf("lookup mapping: %w", err)
	}
	if mapping == nil {
		log.Warn().Str("provider_venue_id", evt.ProviderVenueID).Msg("unmatched reservation for unmapped venue, ignored")
		return nil
	}

	rec := domain.NewExternalReservation(nil, mapping.VenueID, row.Provider, domain.SyncOperationCreate)
	rec.SyncStatus = domain.SyncStatusSynced
	if evt.ProviderReservationID != "" {
		prid := evt.ProviderReservationID
		rec.ProviderReservationID = &prid
	}
	if evt.ProviderStatus != "" {
		st := evt.ProviderStatus
		rec.ProviderStatus = &st
	}
	if evt.ConfirmationNumber != "" {
		c := evt.ConfirmationNumber
		rec.ProviderConfirmationNumber = &c
	}
	rec.ProviderResponse = row.Payload
	now := s.now()
	rec.LastSyncedAt = &now

	if err := s.reservations.Create(ctx, rec); err != nil {
		if errors.Is(err, ports.ErrConflict) {
			return nil
		}
		return fmt.Errorf("create unmatched external reservation: %w", err)
	}
	log.Info().
		Str("external_reservation_id", rec.ID.String()).
		Str("venue_id", mapping.VenueID.String()).
		Msg("recorded unmatched provider reservation")
	return nil
}

// setBookingStatus moves the local booking unless it is cancelled. When only is
// set, the booking must currently be in that state.
func (s *WebhookServiceImpl) setBookingStatus(ctx context.Context, rec *domain.ExternalReservation, status, only domain.BookingStatus, log zerolog.Logger) {
	if rec.BookingID == nil {
		return
	}
	booking, err := s.bookings.GetByID(ctx, *rec.BookingID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load booking")
		return
	}
	if booking == nil || booking.IsCancelled() || (only != "" && booking.Status != only) {
		return
	}
	if _, err := s.bookings.UpdateStatus(ctx, booking.ID, status); err != nil {
		log.Error().Err(err).Str("booking_status", string(status)).Msg("failed to update booking status")
	}
}

func (s *WebhookServiceImpl) cancelBooking(ctx context.Context, rec *domain.ExternalReservation, log zerolog.Logger) {
	if rec.BookingID == nil {
		return
	}
	booking, err := s.bookings.GetByID(ctx, *rec.BookingID)
	if err != nil || booking == nil {
		log.Error().Err(err).Msg("failed to load booking for cancellation")
		return
	}
	changed, err := s.bookings.UpdateStatus(ctx, booking.ID, domain.BookingStatusCancelled)
	if err != nil {
		log.Error().Err(err).Msg("failed to cancel booking")
		return
	}
	if !changed || booking.UserID == nil {
		return
	}

	venueID := booking.VenueID
	err = s.notifier.CreateNotification(ctx, ports.NotificationRequest{
		UserID:   booking.UserID,
		VenueID:  &venueID,
		Title:    "Your reservation was cancelled",
		Body:     fmt.Sprintf("Your reservation for %d on %s was cancelled by the venue's booking provider.", booking.PartySize, booking.StartsAt.Format("2 Jan 2006 15:04")),
		DeepLink: "/bookings/" + booking.ID.String(),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to notify guest of cancellation")
	}
}

func (s *WebhookServiceImpl) notifyStaffModified(ctx context.Context, rec *domain.ExternalReservation, log zerolog.Logger) {
	venueID := rec.VenueID
	link := "/external-reservations/" + rec.ID.String()
	if rec.BookingID != nil {
		link = "/bookings/" + rec.BookingID.String()
	}
	err := s.notifier.CreateNotification(ctx, ports.NotificationRequest{
		VenueID:  &venueID,
		Title:    "Reservation changed at provider",
		Body:     fmt.Sprintf("A %s reservation was modified outside the app. Review the booking details.", rec.Provider),
		DeepLink: link,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to notify staff of modification")
	}
}

func (s *WebhookServiceImpl) auditUnverified(ctx context.Context, row *domain.WebhookEvent) {
	if s.audit == nil {
		return
	}
	details, _ := json.Marshal(map[string]any{
		"provider":   row.Provider,
		"event_id":   row.EventID,
		"event_type": row.EventType,
		"held":       s.opts.HoldUnverified,
	})
	s.audit.Log(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		Action:       domain.AuditActionWebhookUnverified,
		ResourceType: "webhook_event",
		ResourceID:   row.ID.String(),
		Details:      string(details),
		CreatedAt:    s.now(),
	})
}

func (s *WebhookServiceImpl) publish(ctx context.Context, rec *domain.ExternalReservation) {
	if s.feed == nil || rec.BookingID == nil {
		return
	}
	if err := s.feed.Publish(ctx, rec); err != nil {
		s.log.Warn().Err(err).Str("external_reservation_id", rec.ID.String()).Msg("change feed publish failed")
	}
}

func bookingStatusForKind(kind domain.EventKind) domain.BookingStatus {
	switch kind {
	case domain.EventKindSeated:
		return domain.BookingStatusSeated
	case domain.EventKindCompleted:
		return domain.BookingStatusCompleted
	default:
		return domain.BookingStatusNoShow
	}
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		lk := strings.ToLower(k)
		if redactedHeaders[lk] || len(v) == 0 {
			continue
		}
		out[lk] = v[0]
	}
	return out
}
