package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpHandler "reservation-sync/internal/adapter/http/handler"
	"reservation-sync/internal/adapter/provider"
	redisStorage "reservation-sync/internal/adapter/storage/redis"
	"reservation-sync/internal/core/domain"
	"reservation-sync/internal/core/ports"
	"reservation-sync/internal/service"
	"reservation-sync/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey        = "tc-live-key"
	testWebhookSecret = "tc-webhook-secret"
	testProviderVenue = "shop-42"
)

// testApp wires the real HTTP layer, services, provider adapter and Redis
// stores end-to-end. Postgres is replaced by in-memory repos and the
// provider by an httptest stub.
type testApp struct {
	server       *httptest.Server
	providerSrv  *httptest.Server
	provider     *tableCheckStub
	redis        *miniredis.Miniredis
	mappings     *inMemoryMappingRepo
	bookings     *inMemoryBookingRepo
	reservations *inMemoryReservationRepo
	events       *inMemoryWebhookEventRepo
	capacity     *inMemoryCapacityRepo
	notes        *inMemoryNotificationRepo
	audits       *inMemoryAuditRepo
	sigSvc       *service.HMACSignatureService
	syncSvc      *service.SyncServiceImpl
	token        string
	venueID      uuid.UUID
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	stub := newTableCheckStub(testAPIKey)
	providerSrv := httptest.NewServer(stub)

	log := logger.New("error", false)

	encSvc, err := service.NewAESEncryptionService("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	sigSvc := service.NewHMACSignatureService()
	tokenSvc := service.NewJWTTokenService("test-jwt-secret-key-32bytes!!", time.Hour, "test-issuer")

	registry := provider.NewRegistry(map[domain.Provider]provider.Endpoint{
		domain.ProviderTableCheck: {BaseURL: providerSrv.URL, WebhookSecret: testWebhookSecret},
	}, sigSvc, 2*time.Second, log)

	app := &testApp{
		providerSrv:  providerSrv,
		provider:     stub,
		redis:        mr,
		mappings:     newInMemoryMappingRepo(),
		bookings:     newInMemoryBookingRepo(),
		reservations: newInMemoryReservationRepo(),
		events:       newInMemoryWebhookEventRepo(),
		capacity:     &inMemoryCapacityRepo{},
		notes:        &inMemoryNotificationRepo{},
		audits:       &inMemoryAuditRepo{},
		sigSvc:       sigSvc,
		venueID:      uuid.New(),
	}

	feed := redisStorage.NewChangeFeed(rdb, log)
	notifier := service.NewNotificationService(app.notes, nil, log)
	auditSvc := service.NewAuditService(app.audits, log)

	mappingSvc := service.NewMappingService(app.mappings, encSvc, registry, 2*time.Second, log)
	availabilitySvc := service.NewAvailabilityService(
		app.mappings, app.capacity, app.bookings, redisStorage.NewAvailabilityCache(rdb),
		registry, encSvc, time.Minute, 2*time.Second, log,
	)
	app.syncSvc = service.NewSyncService(app.bookings, app.mappings, app.reservations, registry, encSvc, notifier, feed,
		service.SyncOptions{
			Retry:       domain.RetryPolicy{Base: time.Second, Cap: time.Minute, MaxAttempts: 3},
			CallTimeout: 2 * time.Second,
			SweepBatch:  10,
		}, log)
	webhookSvc := service.NewWebhookService(app.events, app.reservations, app.mappings, app.bookings, registry,
		notifier, auditSvc, feed, service.WebhookOptions{}, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		MappingSvc:      mappingSvc,
		AvailabilitySvc: availabilitySvc,
		SyncSvc:         app.syncSvc,
		WebhookSvc:      webhookSvc,
		TokenSvc:        tokenSvc,
		Bookings:        app.bookings,
		Reservations:    app.reservations,
		ChangeFeed:      feed,
		RateLimitStore:  redisStorage.NewRateLimitStore(rdb),
		HealthCheckers:  []ports.HealthChecker{redisStorage.NewHealthCheck(rdb)},
		AuditSvc:        auditSvc,
		Logger:          log,
	})
	app.server = httptest.NewServer(router)

	app.token, _, err = tokenSvc.Generate("ops@venue", nil)
	require.NoError(t, err)
	return app
}

func (a *testApp) close() {
	a.server.Close()
	a.providerSrv.Close()
	a.redis.Close()
}

// do sends an authenticated operator request and returns status and body.
func (a *testApp) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

// webhook posts a TableCheck event signed with the shared secret.
func (a *testApp) webhook(t *testing.T, payload map[string]any, signed bool) (int, map[string]string) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, a.server.URL+"/webhooks/tablecheck", bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if signed {
		req.Header.Set("X-Tablecheck-Signature", a.sigSvc.Sign(testWebhookSecret, raw, ports.SignatureHex))
	} else {
		req.Header.Set("X-Tablecheck-Signature", "deadbeef")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var ack map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	return resp.StatusCode, ack
}

func (a *testApp) createMapping(t *testing.T) string {
	t.Helper()
	status, raw := a.do(t, http.MethodPost, "/api/v1/mappings", map[string]any{
		"venue_id":          a.venueID.String(),
		"provider":          "TableCheck",
		"provider_venue_id": testProviderVenue,
		"credentials":       map[string]string{"api_key": testAPIKey},
		"timezone":          "Asia/Bangkok",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	var body struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body.Data.ID
}

func (a *testApp) seedBooking(t *testing.T) domain.Booking {
	t.Helper()
	userID := uuid.New()
	email := "guest@example.com"
	loc, err := time.LoadLocation("Asia/Bangkok")
	require.NoError(t, err)
	b := domain.Booking{
		ID:         uuid.New(),
		VenueID:    a.venueID,
		UserID:     &userID,
		GuestName:  "Somchai P.",
		GuestEmail: &email,
		PartySize:  4,
		StartsAt:   time.Date(2026, 11, 20, 18, 0, 0, 0, loc),
		Status:     domain.BookingStatusPending,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	a.bookings.put(b)
	return b
}

func (a *testApp) syncBooking(t *testing.T, bookingID uuid.UUID, op string) []domain.ExternalReservation {
	t.Helper()
	status, raw := a.do(t, http.MethodPost, "/api/v1/bookings/"+bookingID.String()+"/sync", map[string]string{"operation": op})
	require.Equal(t, http.StatusOK, status, string(raw))
	var body struct {
		Data []domain.ExternalReservation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body.Data
}

func (a *testApp) bookingStatus(t *testing.T, id uuid.UUID) domain.BookingStatus {
	t.Helper()
	b, err := a.bookings.GetByID(t.Context(), id)
	require.NoError(t, err)
	require.NotNil(t, b)
	return b.Status
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_Unauthorized(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/api/v1/venues/" + app.venueID.String() + "/mappings")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_MappingLifecycle(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	id := app.createMapping(t)

	// A second active mapping for the same venue and provider is rejected.
	status, raw := app.do(t, http.MethodPost, "/api/v1/mappings", map[string]any{
		"venue_id":          app.venueID.String(),
		"provider":          "tablecheck",
		"provider_venue_id": "shop-43",
		"timezone":          "Asia/Bangkok",
	})
	assert.Equal(t, http.StatusConflict, status, string(raw))

	status, raw = app.do(t, http.MethodGet, "/api/v1/mappings/"+id, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(raw), testAPIKey)
	assert.Contains(t, string(raw), `"has_credentials":true`)

	status, raw = app.do(t, http.MethodPost, "/api/v1/mappings/"+id+"/test", nil)
	assert.Equal(t, http.StatusOK, status, string(raw))
	assert.Contains(t, app.provider.callLog(), "GET /availability")

	status, _ = app.do(t, http.MethodPatch, "/api/v1/mappings/"+id, map[string]any{"sync_enabled": false})
	assert.Equal(t, http.StatusOK, status)

	status, _ = app.do(t, http.MethodDelete, "/api/v1/mappings/"+id, nil)
	assert.Equal(t, http.StatusOK, status)

	status, raw = app.do(t, http.MethodGet, "/api/v1/venues/"+app.venueID.String()+"/mappings", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), `"data":[]`)

	// Audit entries are written asynchronously; the failed create is not audited.
	require.Eventually(t, func() bool { return len(app.audits.actions()) == 4 }, time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []string{"MAPPING_CREATE", "MAPPING_TEST", "MAPPING_UPDATE", "MAPPING_DELETE"}, app.audits.actions())
}

func TestIntegration_SyncCreateThenWebhookCancel(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.createMapping(t)
	booking := app.seedBooking(t)

	rows := app.syncBooking(t, booking.ID, "create")
	require.Len(t, rows, 1)
	rec := rows[0]
	assert.Equal(t, domain.SyncStatusSynced, rec.SyncStatus)
	require.NotNil(t, rec.ProviderReservationID)
	assert.Equal(t, "tc-1", *rec.ProviderReservationID)
	require.NotNil(t, rec.ProviderConfirmationNumber)
	assert.Equal(t, "REF-tc-1", *rec.ProviderConfirmationNumber)

	// Re-running create is a no-op against the provider.
	app.syncBooking(t, booking.ID, "create")
	assert.Equal(t, 1, app.provider.createdCount())

	status, ack := app.webhook(t, map[string]any{
		"id":         "evt-confirm-1",
		"type":       "reservation.confirmed",
		"created_at": "2026-11-01T10:00:00Z",
		"data": map[string]any{"reservation": map[string]any{
			"id": "tc-1", "shop_id": testProviderVenue, "status": "confirmed",
		}},
	}, true)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "received", ack["status"])
	assert.Equal(t, "evt-confirm-1", ack["eventId"])
	assert.Equal(t, domain.BookingStatusConfirmed, app.bookingStatus(t, booking.ID))

	cancel := map[string]any{
		"id":   "evt-cancel-1",
		"type": "reservation.cancelled",
		"data": map[string]any{"reservation": map[string]any{
			"id": "tc-1", "shop_id": testProviderVenue, "status": "cancelled",
		}},
	}
	status, ack = app.webhook(t, cancel, true)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "received", ack["status"])

	stored, err := app.reservations.GetByID(t.Context(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusCancelled, stored.SyncStatus)
	assert.Equal(t, domain.BookingStatusCancelled, app.bookingStatus(t, booking.ID))
	assert.Contains(t, app.notes.titles(), "Your reservation was cancelled")

	// Redelivery is acknowledged as a duplicate and changes nothing.
	status, ack = app.webhook(t, cancel, true)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "duplicate", ack["status"])

	evt, err := app.events.Get(t.Context(), domain.ProviderTableCheck, "evt-cancel-1")
	require.NoError(t, err)
	assert.Equal(t, 1, evt.DuplicateCount)
	assert.Equal(t, domain.ProcessingStatusProcessed, evt.ProcessingStatus)
	assert.True(t, evt.SignatureVerified)
}

func TestIntegration_SyncCancelReachesProvider(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.createMapping(t)
	booking := app.seedBooking(t)
	app.syncBooking(t, booking.ID, "create")

	rows := app.syncBooking(t, booking.ID, "cancel")
	require.Len(t, rows, 1)
	assert.Equal(t, domain.SyncStatusCancelled, rows[0].SyncStatus)
	assert.Equal(t, domain.BookingStatusCancelled, app.bookingStatus(t, booking.ID))
	assert.Contains(t, app.provider.callLog(), "DELETE /reservations/tc-1")
}

func TestIntegration_TransientFailureThenManualRetry(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.createMapping(t)
	booking := app.seedBooking(t)
	app.provider.failNextCalls(1)

	rows := app.syncBooking(t, booking.ID, "create")
	require.Len(t, rows, 1)
	rec := rows[0]
	assert.Equal(t, domain.SyncStatusFailed, rec.SyncStatus)
	assert.Equal(t, 1, rec.RetryCount)
	assert.NotNil(t, rec.NextRetryAt)
	assert.False(t, rec.ErrorPermanent)

	status, raw := app.do(t, http.MethodGet, "/api/v1/venues/"+app.venueID.String()+"/sync-stats", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), `"retry_scheduled":1`)

	status, raw = app.do(t, http.MethodPost, "/api/v1/external-reservations/"+rec.ID.String()+"/retry", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	var body struct {
		Data domain.ExternalReservation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, domain.SyncStatusSynced, body.Data.SyncStatus)

	// The retry reused the original idempotency key.
	keys := app.provider.idempotencyKeys()
	require.Len(t, keys, 2)
	assert.Equal(t, keys[0], keys[1])
	assert.Equal(t, rec.IdempotencyKey, keys[0])
	assert.Equal(t, 1, app.provider.createdCount())
}

func TestIntegration_SweepPicksUpDueFailures(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.createMapping(t)
	booking := app.seedBooking(t)
	app.provider.failNextCalls(1)
	rows := app.syncBooking(t, booking.ID, "create")
	require.Equal(t, domain.SyncStatusFailed, rows[0].SyncStatus)

	// Pull the retry time into the past.
	rec := rows[0]
	past := time.Now().Add(-time.Minute)
	rec.NextRetryAt = &past
	ok, err := app.reservations.UpdateIfStatus(t.Context(), &rec, domain.SyncStatusFailed)
	require.NoError(t, err)
	require.True(t, ok)

	n, err := app.syncSvc.SweepDue(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := app.reservations.GetByID(t.Context(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusSynced, stored.SyncStatus)
}

func TestIntegration_SweepResumesAbandonedSync(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.createMapping(t)
	booking := app.seedBooking(t)

	// A worker marked the row syncing a day ago and never came back.
	rec := domain.NewExternalReservation(&booking.ID, app.venueID, domain.ProviderTableCheck, domain.SyncOperationCreate)
	rec.SyncStatus = domain.SyncStatusSyncing
	rec.UpdatedAt = time.Now().Add(-24 * time.Hour)
	require.NoError(t, app.reservations.Create(t.Context(), rec))

	n, err := app.syncSvc.SweepDue(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := app.reservations.GetByID(t.Context(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusSynced, stored.SyncStatus)
	assert.Equal(t, []string{rec.IdempotencyKey}, app.provider.idempotencyKeys())
}

func TestIntegration_AvailabilityProviderThenCache(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.createMapping(t)
	path := "/api/v1/venues/" + app.venueID.String() + "/availability?date=2026-11-20&party_size=2"

	for _, want := range []string{"provider", "cache"} {
		status, raw := app.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, status, string(raw))
		var body struct {
			Data domain.AvailabilityResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, domain.AvailabilitySource(want), body.Data.Source)
		require.Len(t, body.Data.Slots, 1)
		assert.Equal(t, "18:00", body.Data.Slots[0].StartTime)
		assert.Equal(t, 90, body.Data.Slots[0].DurationMinutes)
	}

	calls := 0
	for _, c := range app.provider.callLog() {
		if c == "GET /availability" {
			calls++
		}
	}
	assert.Equal(t, 1, calls)
}

func TestIntegration_AvailabilityFallsBackToLocalCapacity(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.createMapping(t)
	app.seedBooking(t) // takes one 18:00 table
	app.capacity.add(domain.VenueCapacity{
		VenueID:         app.venueID,
		Zone:            "main",
		OpensAt:         "18:00",
		ClosesAt:        "20:00",
		SlotMinutes:     60,
		DurationMinutes: 60,
		MinPartySize:    1,
		MaxPartySize:    6,
		TablesPerSlot:   2,
	})
	app.provider.failNextCalls(1)

	status, raw := app.do(t, http.MethodGet,
		"/api/v1/venues/"+app.venueID.String()+"/availability?date=2026-11-20&party_size=2", nil)
	require.Equal(t, http.StatusOK, status, string(raw))

	var body struct {
		Data domain.AvailabilityResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, domain.AvailabilitySourceLocal, body.Data.Source)
	assert.True(t, strings.HasPrefix(body.Data.FallbackReason, "provider_error: "), body.Data.FallbackReason)
	require.Len(t, body.Data.Slots, 2)
	assert.Equal(t, "18:00", body.Data.Slots[0].StartTime)
	assert.Equal(t, 1, body.Data.Slots[0].Remaining)
	assert.Equal(t, "19:00", body.Data.Slots[1].StartTime)
	assert.Equal(t, 2, body.Data.Slots[1].Remaining)
}

func TestIntegration_UnverifiedWebhookIsAudited(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	status, ack := app.webhook(t, map[string]any{
		"id":   "evt-forged",
		"type": "reservation.cancelled",
		"data": map[string]any{"reservation": map[string]any{"id": "tc-404"}},
	}, false)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "received", ack["status"])

	evt, err := app.events.Get(t.Context(), domain.ProviderTableCheck, "evt-forged")
	require.NoError(t, err)
	require.NotNil(t, evt)
	assert.False(t, evt.SignatureVerified)

	assert.Eventually(t, func() bool {
		for _, a := range app.audits.actions() {
			if a == string(domain.AuditActionWebhookUnverified) {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestIntegration_UnknownWebhookProvider(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Post(app.server.URL+"/webhooks/eatigo", "application/json", strings.NewReader(`{"id":"x"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
