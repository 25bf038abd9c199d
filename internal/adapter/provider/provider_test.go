package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reservation-sync/internal/core/domain"
	"reservation-sync/internal/core/ports"
	"reservation-sync/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, p domain.Provider, handler http.HandlerFunc) *Registry {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRegistry(
		map[domain.Provider]Endpoint{p: {BaseURL: srv.URL + "/", WebhookSecret: "whsec"}},
		service.NewHMACSignatureService(),
		2*time.Second,
		zerolog.Nop(),
	)
}

func sampleRequest() ports.ReservationRequest {
	loc, _ := time.LoadLocation("Asia/Singapore")
	return ports.ReservationRequest{
		IdempotencyKey:  "key-123",
		ProviderVenueID: "venue-1",
		BookingID:       uuid.MustParse("7b0d3c52-2f35-4a43-9e61-5d6f6b2a9a10"),
		GuestName:       "Ana Lim",
		PartySize:       4,
		StartsAt:        time.Date(2026, 3, 14, 11, 30, 0, 0, time.UTC),
		Location:        loc,
	}
}

func TestRestAdapter_CreateReservation_HeaderIdempotency(t *testing.T) {
	var gotBody map[string]any
	reg := newTestRegistry(t, domain.ProviderTableCheck, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/reservations", r.URL.Path)
		assert.Equal(t, "tc-key", r.Header.Get("Authorization"))
		assert.Equal(t, "key-123", r.Header.Get("Idempotency-Key"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"reservation":{"id":"TC-1","ref":"R9","status":"confirmed"}}`))
	})

	a, err := reg.ForMapping(&domain.ProviderMapping{Provider: domain.ProviderTableCheck}, domain.ProviderCredentials{APIKey: "tc-key"})
	require.NoError(t, err)

	res, err := a.CreateReservation(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "TC-1", res.ProviderReservationID)
	assert.Equal(t, "R9", res.ConfirmationNumber)
	assert.Equal(t, "confirmed", res.Status)
	assert.NotEmpty(t, res.Raw)

	assert.Equal(t, "2026-03-14T19:30:00+08:00", gotBody["starts_at"], "start time is sent in venue time")
	assert.Equal(t, "7b0d3c52-2f35-4a43-9e61-5d6f6b2a9a10", gotBody["reference"])
	assert.NotContains(t, gotBody, "idempotency_key")
}

func TestRestAdapter_CreateReservation_BodyIdempotency(t *testing.T) {
	reg := newTestRegistry(t, domain.ProviderOpenTable, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer ot-token", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "key-123", body["idempotency_token"])
		_, _ = w.Write([]byte(`{"reservation_id":"OT-7","confirmation_number":"C7","state":"Booked"}`))
	})

	a, err := reg.ForMapping(&domain.ProviderMapping{Provider: domain.ProviderOpenTable}, domain.ProviderCredentials{AccessToken: "ot-token"})
	require.NoError(t, err)
	res, err := a.CreateReservation(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "OT-7", res.ProviderReservationID)
}

func TestRestAdapter_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		transient bool
		message   string
	}{
		{"service unavailable", http.StatusServiceUnavailable, ``, true, "Service Unavailable"},
		{"rate limited", http.StatusTooManyRequests, `{"message":"slow down"}`, true, "slow down"},
		{"request timeout", http.StatusRequestTimeout, ``, true, "Request Timeout"},
		{"validation", http.StatusUnprocessableEntity, `{"error":{"message":"party too large"}}`, false, "party too large"},
		{"not found", http.StatusNotFound, `{"errors":[{"message":"no such reservation"}]}`, false, "no such reservation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newTestRegistry(t, domain.ProviderSevenRooms, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			a, err := reg.ForMapping(&domain.ProviderMapping{Provider: domain.ProviderSevenRooms}, domain.ProviderCredentials{})
			require.NoError(t, err)

			_, err = a.UpdateReservation(context.Background(), "SR-1", sampleRequest())
			var pe *ports.ProviderError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.status, pe.StatusCode)
			assert.Equal(t, tt.transient, pe.Transient)
			assert.Equal(t, tt.message, pe.Message)
		})
	}
}

func TestRestAdapter_TimeoutIsTransient(t *testing.T) {
	reg := newTestRegistry(t, domain.ProviderGrab, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})
	a, err := reg.ForProvider(domain.ProviderGrab)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = a.CancelReservation(ctx, "G-1", "key-1:cancel:2")

	var pe *ports.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.True(t, pe.Transient)
	assert.Zero(t, pe.StatusCode)
	assert.Equal(t, "timeout", pe.Message)
}

func TestRestAdapter_CancelReservation(t *testing.T) {
	reg := newTestRegistry(t, domain.ProviderChope, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/reservations/CH-5", r.URL.Path)
		assert.Equal(t, "chope-key", r.Header.Get("X-Api-Key"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "key-1:cancel:2", body["request_id"])
		w.WriteHeader(http.StatusNoContent)
	})
	a, err := reg.ForMapping(&domain.ProviderMapping{Provider: domain.ProviderChope}, domain.ProviderCredentials{APIKey: "chope-key"})
	require.NoError(t, err)

	res, err := a.CancelReservation(context.Background(), "CH-5", "key-1:cancel:2")
	require.NoError(t, err)
	assert.Equal(t, "CH-5", res.ProviderReservationID)
	assert.Equal(t, "cancelled", res.Status)
}

func TestRestAdapter_GetAvailability(t *testing.T) {
	reg := newTestRegistry(t, domain.ProviderResy, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/availability", r.URL.Path)
		assert.Equal(t, "venue-1", r.URL.Query().Get("venue_id"))
		assert.Equal(t, "2026-03-14", r.URL.Query().Get("date"))
		assert.Equal(t, "2", r.URL.Query().Get("party_size"))
		assert.Equal(t, "bar", r.URL.Query().Get("seating_type"))
		_, _ = w.Write([]byte(`{"slots":[
			{"id":"s1","starts_at":"2026-03-14T19:00:00+08:00","ends_at":"2026-03-14T20:30:00+08:00","zone":"bar","min_party_size":1,"max_party_size":4,"available":3},
			{"id":"bad","starts_at":"19:00","ends_at":"20:00"}
		]}`))
	})
	a, err := reg.ForProvider(domain.ProviderResy)
	require.NoError(t, err)

	slots, err := a.GetAvailability(context.Background(), ports.AvailabilityRequest{
		ProviderVenueID: "venue-1", Date: "2026-03-14", PartySize: 2, SeatingType: "bar",
	})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, domain.Slot{
		Date: "2026-03-14", StartTime: "19:00", EndTime: "20:30", DurationMinutes: 90,
		MinPartySize: 1, MaxPartySize: 4, Zone: "bar", Remaining: 3, ProviderSlotID: "s1",
	}, slots[0])
}

func TestRestAdapter_VerifySignature(t *testing.T) {
	sig := service.NewHMACSignatureService()
	body := []byte(`{"id":"evt-1"}`)

	reg := newTestRegistry(t, domain.ProviderTableCheck, nil)
	a, err := reg.ForProvider(domain.ProviderTableCheck)
	require.NoError(t, err)

	h := http.Header{}
	h.Set("X-Tablecheck-Signature", sig.Sign("whsec", body, ports.SignatureHex))
	got, ok := a.VerifySignature(h, body)
	assert.True(t, ok)
	assert.NotEmpty(t, got)

	_, ok = a.VerifySignature(h, []byte(`{"id":"evt-2"}`))
	assert.False(t, ok)

	got, ok = a.VerifySignature(http.Header{}, body)
	assert.False(t, ok)
	assert.Empty(t, got)

	grab := newTestRegistry(t, domain.ProviderGrab, nil)
	ga, err := grab.ForProvider(domain.ProviderGrab)
	require.NoError(t, err)
	h = http.Header{}
	h.Set("X-Grab-Signature", sig.Sign("whsec", body, ports.SignatureBase64))
	_, ok = ga.VerifySignature(h, body)
	assert.True(t, ok)
}

func TestRestAdapter_MapWebhookEvent(t *testing.T) {
	reg := newTestRegistry(t, domain.ProviderTableCheck, nil)
	a, err := reg.ForProvider(domain.ProviderTableCheck)
	require.NoError(t, err)

	evt, err := a.MapWebhookEvent([]byte(`{
		"id": "evt-42",
		"type": "reservation.cancelled",
		"created_at": "2026-03-14T10:00:00Z",
		"data": {"reservation": {"id": "TC-1", "shop_id": "shop-9", "external_ref": "b-1", "status": "cancelled", "ref": 1042}}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "evt-42", evt.EventID)
	assert.Equal(t, domain.EventKindCancelled, evt.Kind)
	assert.Equal(t, "TC-1", evt.ProviderReservationID)
	assert.Equal(t, "shop-9", evt.ProviderVenueID)
	assert.Equal(t, "b-1", evt.BookingReference)
	assert.Equal(t, "1042", evt.ConfirmationNumber)
	require.NotNil(t, evt.OccurredAt)

	evt, err = a.MapWebhookEvent([]byte(`{"id":"evt-43","type":"shop.updated"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.EventKindUnknown, evt.Kind)
	assert.Equal(t, "shop.updated", evt.EventType)

	_, err = a.MapWebhookEvent([]byte(`[1,2]`))
	assert.Error(t, err)
	_, err = a.MapWebhookEvent([]byte(`nope`))
	assert.Error(t, err)
}

func TestRestAdapter_NumericIDsKeepPrecision(t *testing.T) {
	reg := newTestRegistry(t, domain.ProviderGrab, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"reservationID":9007199254740993,"shortCode":12,"state":"CONFIRMED"}`))
	})
	a, err := reg.ForMapping(&domain.ProviderMapping{Provider: domain.ProviderGrab}, domain.ProviderCredentials{AccessToken: "grab-token"})
	require.NoError(t, err)

	res, err := a.CreateReservation(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "9007199254740993", res.ProviderReservationID)
	assert.Equal(t, "12", res.ConfirmationNumber)

	evt, err := a.MapWebhookEvent([]byte(`{
		"eventID": "g-1",
		"eventType": "RESERVATION_CANCELLED",
		"payload": {"reservationID": 9007199254740993, "merchantID": 18446744073709551615}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "9007199254740993", evt.ProviderReservationID)
	assert.Equal(t, "18446744073709551615", evt.ProviderVenueID)
}

func TestRegistry_EveryProviderHasProfile(t *testing.T) {
	profiles := Profiles()
	for _, p := range domain.SupportedProviders() {
		profile, ok := profiles[p]
		require.True(t, ok, "missing profile for %s", p)
		assert.NotEmpty(t, profile.SignatureHeader)
		assert.True(t, profile.IdempotencyHeader != "" || profile.IdempotencyField != "")
		assert.NotEmpty(t, profile.Events.Kinds)
	}
}

func TestRegistry_Unconfigured(t *testing.T) {
	reg := NewRegistry(map[domain.Provider]Endpoint{}, service.NewHMACSignatureService(), time.Second, zerolog.Nop())
	_, err := reg.ForProvider(domain.ProviderResy)
	assert.Error(t, err)
	_, err = reg.ForProvider(domain.Provider("quandoo"))
	assert.Error(t, err)
}

func TestLookupString(t *testing.T) {
	var doc any
	require.NoError(t, json.Unmarshal([]byte(`{"a":{"b":[{"c":"x"},{"c":7}]},"t":true}`), &doc))
	assert.Equal(t, "x", lookupString(doc, "a.b.0.c"))
	assert.Equal(t, "7", lookupString(doc, "a.b.1.c"))
	assert.Equal(t, "true", lookupString(doc, "t"))
	assert.Empty(t, lookupString(doc, "a.b.5.c"))
	assert.Empty(t, lookupString(doc, "a.b"))
	assert.Empty(t, lookupString(doc, ""))

	doc, err := decodeDocument([]byte(`{"id":9007199254740993,"amount":12.50}`))
	require.NoError(t, err)
	assert.Equal(t, "9007199254740993", lookupString(doc, "id"))
	assert.Equal(t, "12.50", lookupString(doc, "amount"))
}
