package provider

import (
	"reservation-sync/internal/core/domain"
	"reservation-sync/internal/core/ports"
)

// Profile describes how one provider's API differs from the normalized REST shape.
type Profile struct {
	Provider domain.Provider

	// AuthHeader carries the credential; AuthValue renders it.
	AuthHeader string
	AuthValue  func(c domain.ProviderCredentials) string

	// IdempotencyHeader is used when set; otherwise the key goes into the
	// request body under IdempotencyField.
	IdempotencyHeader string
	IdempotencyField  string

	SignatureHeader   string
	SignatureEncoding ports.SignatureEncoding

	// Response holds dotted JSON paths into reservation responses.
	Response ResponseSchema
	Events   EventSchema
}

// ResponseSchema locates reservation fields in a provider response.
type ResponseSchema struct {
	ID           string
	Confirmation string
	Status       string
}

// EventSchema locates event fields in a webhook payload and maps the
// provider's event vocabulary onto event kinds.
type EventSchema struct {
	EventID        string
	EventType      string
	ReservationID  string
	VenueID        string
	Reference      string
	IdempotencyKey string
	Status         string
	Confirmation   string
	OccurredAt     string
	Kinds          map[string]domain.EventKind
}

func bearer(token string) string {
	if token == "" {
		return ""
	}
	return "Bearer " + token
}

// Profiles returns the built-in profile of every supported provider.
func Profiles() map[domain.Provider]Profile {
	return map[domain.Provider]Profile{
		domain.ProviderTableCheck: {
			Provider:          domain.ProviderTableCheck,
			AuthHeader:        "Authorization",
			AuthValue:         func(c domain.ProviderCredentials) string { return c.APIKey },
			IdempotencyHeader: "Idempotency-Key",
			SignatureHeader:   "X-Tablecheck-Signature",
			SignatureEncoding: ports.SignatureHex,
			Response:          ResponseSchema{ID: "reservation.id", Confirmation: "reservation.ref", Status: "reservation.status"},
			Events: EventSchema{
				EventID:        "id",
				EventType:      "type",
				ReservationID:  "data.reservation.id",
				VenueID:        "data.reservation.shop_id",
				Reference:      "data.reservation.external_ref",
				IdempotencyKey: "data.reservation.idempotency_key",
				Status:         "data.reservation.status",
				Confirmation:   "data.reservation.ref",
				OccurredAt:     "created_at",
				Kinds: map[string]domain.EventKind{
					"reservation.created":   domain.EventKindCreated,
					"reservation.confirmed": domain.EventKindConfirmed,
					"reservation.updated":   domain.EventKindModified,
					"reservation.cancelled": domain.EventKindCancelled,
					"reservation.seated":    domain.EventKindSeated,
					"reservation.completed": domain.EventKindCompleted,
					"reservation.no_show":   domain.EventKindNoShow,
				},
			},
		},
		domain.ProviderOpenTable: {
			Provider:          domain.ProviderOpenTable,
			AuthHeader:        "Authorization",
			AuthValue:         func(c domain.ProviderCredentials) string { return bearer(c.AccessToken) },
			IdempotencyField:  "idempotency_token",
			SignatureHeader:   "X-OT-Signature",
			SignatureEncoding: ports.SignatureBase64,
			Response:          ResponseSchema{ID: "reservation_id", Confirmation: "confirmation_number", Status: "state"},
			Events: EventSchema{
				EventID:        "event_id",
				EventType:      "event_type",
				ReservationID:  "reservation.reservation_id",
				VenueID:        "reservation.rid",
				Reference:      "reservation.partner_reference",
				IdempotencyKey: "reservation.idempotency_token",
				Status:         "reservation.state",
				Confirmation:   "reservation.confirmation_number",
				OccurredAt:     "timestamp",
				Kinds: map[string]domain.EventKind{
					"ReservationCreated":   domain.EventKindCreated,
					"ReservationConfirmed": domain.EventKindConfirmed,
					"ReservationUpdated":   domain.EventKindModified,
					"ReservationCancelled": domain.EventKindCancelled,
					"GuestSeated":          domain.EventKindSeated,
					"ReservationDone":      domain.EventKindCompleted,
					"GuestNoShow":          domain.EventKindNoShow,
				},
			},
		},
		domain.ProviderSevenRooms: {
			Provider:          domain.ProviderSevenRooms,
			AuthHeader:        "Authorization",
			AuthValue:         func(c domain.ProviderCredentials) string { return bearer(c.AccessToken) },
			IdempotencyHeader: "X-Idempotency-Key",
			SignatureHeader:   "X-SevenRooms-Signature",
			SignatureEncoding: ports.SignatureHex,
			Response:          ResponseSchema{ID: "data.id", Confirmation: "data.reference_code", Status: "data.status"},
			Events: EventSchema{
				EventID:        "webhook_id",
				EventType:      "event",
				ReservationID:  "entity.id",
				VenueID:        "entity.venue_id",
				Reference:      "entity.external_reference",
				IdempotencyKey: "entity.client_token",
				Status:         "entity.status",
				Confirmation:   "entity.reference_code",
				OccurredAt:     "sent_at",
				Kinds: map[string]domain.EventKind{
					"reservation_created":  domain.EventKindCreated,
					"reservation_booked":   domain.EventKindConfirmed,
					"reservation_updated":  domain.EventKindModified,
					"reservation_canceled": domain.EventKindCancelled,
					"reservation_seated":   domain.EventKindSeated,
					"reservation_complete": domain.EventKindCompleted,
					"reservation_no_show":  domain.EventKindNoShow,
				},
			},
		},
		domain.ProviderChope: {
			Provider:          domain.ProviderChope,
			AuthHeader:        "X-Api-Key",
			AuthValue:         func(c domain.ProviderCredentials) string { return c.APIKey },
			IdempotencyField:  "request_id",
			SignatureHeader:   "X-Chope-Signature",
			SignatureEncoding: ports.SignatureHex,
			Response:          ResponseSchema{ID: "booking_id", Confirmation: "booking_code", Status: "booking_status"},
			Events: EventSchema{
				EventID:        "notification_id",
				EventType:      "action",
				ReservationID:  "booking.booking_id",
				VenueID:        "booking.restaurant_uid",
				Reference:      "booking.partner_booking_id",
				IdempotencyKey: "booking.request_id",
				Status:         "booking.booking_status",
				Confirmation:   "booking.booking_code",
				OccurredAt:     "sent_at",
				Kinds: map[string]domain.EventKind{
					"NEW":       domain.EventKindCreated,
					"CONFIRMED": domain.EventKindConfirmed,
					"AMENDED":   domain.EventKindModified,
					"CANCELLED": domain.EventKindCancelled,
					"ARRIVED":   domain.EventKindSeated,
					"COMPLETED": domain.EventKindCompleted,
					"NO_SHOW":   domain.EventKindNoShow,
				},
			},
		},
		domain.ProviderGrab: {
			Provider:          domain.ProviderGrab,
			AuthHeader:        "Authorization",
			AuthValue:         func(c domain.ProviderCredentials) string { return bearer(c.AccessToken) },
			IdempotencyHeader: "X-Request-Id",
			SignatureHeader:   "X-Grab-Signature",
			SignatureEncoding: ports.SignatureBase64,
			Response:          ResponseSchema{ID: "reservationID", Confirmation: "shortCode", Status: "state"},
			Events: EventSchema{
				EventID:        "eventID",
				EventType:      "eventType",
				ReservationID:  "payload.reservationID",
				VenueID:        "payload.merchantID",
				Reference:      "payload.partnerReservationID",
				IdempotencyKey: "payload.requestID",
				Status:         "payload.state",
				Confirmation:   "payload.shortCode",
				OccurredAt:     "eventTime",
				Kinds: map[string]domain.EventKind{
					"RESERVATION_CREATED":   domain.EventKindCreated,
					"RESERVATION_CONFIRMED": domain.EventKindConfirmed,
					"RESERVATION_MODIFIED":  domain.EventKindModified,
					"RESERVATION_CANCELLED": domain.EventKindCancelled,
					"RESERVATION_CHECKIN":   domain.EventKindSeated,
					"RESERVATION_COMPLETED": domain.EventKindCompleted,
					"RESERVATION_NO_SHOW":   domain.EventKindNoShow,
				},
			},
		},
		domain.ProviderResy: {
			Provider:          domain.ProviderResy,
			AuthHeader:        "Authorization",
			AuthValue: func(c domain.ProviderCredentials) string {
				if c.APIKey == "" {
					return ""
				}
				return `ResyAPI api_key="` + c.APIKey + `"`
			},
			IdempotencyField:  "idempotency_key",
			SignatureHeader:   "X-Resy-Signature",
			SignatureEncoding: ports.SignatureHex,
			Response:          ResponseSchema{ID: "resy_token", Confirmation: "reservation_id", Status: "status"},
			Events: EventSchema{
				EventID:        "id",
				EventType:      "topic",
				ReservationID:  "reservation.resy_token",
				VenueID:        "reservation.venue_id",
				Reference:      "reservation.partner_ref",
				IdempotencyKey: "reservation.idempotency_key",
				Status:         "reservation.status",
				Confirmation:   "reservation.reservation_id",
				OccurredAt:     "created",
				Kinds: map[string]domain.EventKind{
					"reservation/create":  domain.EventKindCreated,
					"reservation/confirm": domain.EventKindConfirmed,
					"reservation/change":  domain.EventKindModified,
					"reservation/cancel":  domain.EventKindCancelled,
					"reservation/seat":    domain.EventKindSeated,
					"reservation/close":   domain.EventKindCompleted,
					"reservation/noshow":  domain.EventKindNoShow,
				},
			},
		},
	}
}
