package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"reservation-sync/internal/core/domain"
	"reservation-sync/internal/core/ports"
	"reservation-sync/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type availabilityTestDeps struct {
	svc      ports.AvailabilityService
	mappings *mocks.MockMappingRepository
	capacity *mocks.MockCapacityRepository
	bookings *mocks.MockBookingRepository
	cache    *mocks.MockAvailabilityCache
	adapters *mocks.MockAdapterFactory
	adapter  *mocks.MockProviderAdapter
	encSvc   *mocks.MockEncryptionService
	ctrl     *gomock.Controller
}

func setupAvailabilityService(t *testing.T) *availabilityTestDeps {
	ctrl := gomock.NewController(t)
	d := &availabilityTestDeps{
		mappings: mocks.NewMockMappingRepository(ctrl),
		capacity: mocks.NewMockCapacityRepository(ctrl),
		bookings: mocks.NewMockBookingRepository(ctrl),
		cache:    mocks.NewMockAvailabilityCache(ctrl),
		adapters: mocks.NewMockAdapterFactory(ctrl),
		adapter:  mocks.NewMockProviderAdapter(ctrl),
		encSvc:   mocks.NewMockEncryptionService(ctrl),
		ctrl:     ctrl,
	}
	d.svc = NewAvailabilityService(d.mappings, d.capacity, d.bookings, d.cache, d.adapters, d.encSvc,
		time.Minute, 50*time.Millisecond, zerolog.Nop())
	return d
}

// Saturday 2026-03-14 dinner service: 18:00-21:00, 90 minute tables, 60 minute slots.
var testDate = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

func dinnerCapacity(venueID uuid.UUID) []domain.VenueCapacity {
	return []domain.VenueCapacity{{
		VenueID: venueID, Zone: "main", OpensAt: "18:00", ClosesAt: "21:00",
		SlotMinutes: 60, DurationMinutes: 90, MinPartySize: 1, MaxPartySize: 6,
		TablesPerSlot: 3, MinimumSpend: 5000,
	}}
}

func syncedMapping(venueID uuid.UUID) domain.ProviderMapping {
	return domain.ProviderMapping{
		ID: uuid.New(), VenueID: venueID, Provider: domain.ProviderTableCheck,
		ProviderVenueID: "tc-1", CredentialsEnc: "enc", Timezone: "UTC",
		SyncEnabled: true, IsActive: true,
	}
}

func TestAvailabilityService_NoMapping_Local(t *testing.T) {
	d := setupAvailabilityService(t)
	defer d.ctrl.Finish()

	venueID := uuid.New()
	d.mappings.EXPECT().ListByVenue(gomock.Any(), venueID, true).Return(nil, nil)
	d.capacity.EXPECT().ListByVenue(gomock.Any(), venueID).Return(dinnerCapacity(venueID), nil)
	d.bookings.EXPECT().CountByStartTime(gomock.Any(), venueID, gomock.Any(), gomock.Any()).
		Return(map[string]int{"18:00": 3, "19:00": 1}, nil)

	res, err := d.svc.GetAvailability(context.Background(), ports.AvailabilityQuery{VenueID: venueID, Date: testDate, PartySize: 2})
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilitySourceLocal, res.Source)
	assert.Equal(t, FallbackNoActiveMapping, res.FallbackReason)
	assert.Nil(t, res.Provider)

	// 18:00 is full; 19:00 has 2 left; 20:00 would end after close.
	require.Len(t, res.Slots, 1)
	assert.Equal(t, "19:00", res.Slots[0].StartTime)
	assert.Equal(t, "20:30", res.Slots[0].EndTime)
	assert.Equal(t, 2, res.Slots[0].Remaining)
	assert.Equal(t, "2026-03-14", res.Slots[0].Date)
	assert.Equal(t, int64(5000), res.Slots[0].MinimumSpend)
}

func TestAvailabilityService_SyncDisabled_Local(t *testing.T) {
	d := setupAvailabilityService(t)
	defer d.ctrl.Finish()

	venueID := uuid.New()
	m := syncedMapping(venueID)
	m.SyncEnabled = false
	d.mappings.EXPECT().ListByVenue(gomock.Any(), venueID, true).Return([]domain.ProviderMapping{m}, nil)
	d.capacity.EXPECT().ListByVenue(gomock.Any(), venueID).Return(nil, nil)

	res, err := d.svc.GetAvailability(context.Background(), ports.AvailabilityQuery{VenueID: venueID, Date: testDate, PartySize: 2})
	require.NoError(t, err)
	assert.Equal(t, FallbackSyncDisabled, res.FallbackReason)
	assert.Empty(t, res.Slots)
}

func TestAvailabilityService_Provider_SuccessIsCached(t *testing.T) {
	d := setupAvailabilityService(t)
	defer d.ctrl.Finish()

	venueID := uuid.New()
	m := syncedMapping(venueID)
	key := "avail:" + venueID.String() + ":tablecheck:2026-03-14:4:terrace"
	providerSlots := []domain.Slot{{Date: "2026-03-14", StartTime: "19:30", ProviderSlotID: "slot-9", Remaining: 1}}

	d.mappings.EXPECT().ListByVenue(gomock.Any(), venueID, true).Return([]domain.ProviderMapping{m}, nil)
	d.cache.EXPECT().Get(gomock.Any(), key).Return(nil, nil)
	d.encSvc.EXPECT().Decrypt("enc").Return(`{"api_key":"k"}`, nil)
	d.adapters.EXPECT().ForMapping(gomock.Any(), domain.ProviderCredentials{APIKey: "k"}).Return(d.adapter, nil)
	d.adapter.EXPECT().GetAvailability(gomock.Any(), ports.AvailabilityRequest{
		ProviderVenueID: "tc-1", Date: "2026-03-14", PartySize: 4, SeatingType: "terrace",
	}).Return(providerSlots, nil)
	d.cache.EXPECT().Set(gomock.Any(), key, gomock.Any(), time.Minute).Return(nil)

	res, err := d.svc.GetAvailability(context.Background(), ports.AvailabilityQuery{
		VenueID: venueID, Date: testDate, PartySize: 4, SeatingType: "terrace",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilitySourceProvider, res.Source)
	require.NotNil(t, res.Provider)
	assert.Equal(t, domain.ProviderTableCheck, *res.Provider)
	assert.Equal(t, providerSlots, res.Slots)
	assert.Empty(t, res.FallbackReason)
}

func TestAvailabilityService_CacheHit(t *testing.T) {
	d := setupAvailabilityService(t)
	defer d.ctrl.Finish()

	venueID := uuid.New()
	cached, _ := json.Marshal([]domain.Slot{{StartTime: "20:00", Remaining: 2}})
	d.mappings.EXPECT().ListByVenue(gomock.Any(), venueID, true).Return([]domain.ProviderMapping{syncedMapping(venueID)}, nil)
	d.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(cached, nil)

	res, err := d.svc.GetAvailability(context.Background(), ports.AvailabilityQuery{VenueID: venueID, Date: testDate, PartySize: 2})
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilitySourceCache, res.Source)
	require.Len(t, res.Slots, 1)
	assert.Equal(t, "20:00", res.Slots[0].StartTime)
}

func TestAvailabilityService_ProviderFailure_FallsBackToLocal(t *testing.T) {
	d := setupAvailabilityService(t)
	defer d.ctrl.Finish()

	venueID := uuid.New()
	d.mappings.EXPECT().ListByVenue(gomock.Any(), venueID, true).Return([]domain.ProviderMapping{syncedMapping(venueID)}, nil)
	d.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
	d.encSvc.EXPECT().Decrypt("enc").Return(`{}`, nil)
	d.adapters.EXPECT().ForMapping(gomock.Any(), gomock.Any()).Return(d.adapter, nil)
	d.adapter.EXPECT().GetAvailability(gomock.Any(), gomock.Any()).Return(nil, &ports.ProviderError{
		Provider: domain.ProviderTableCheck, StatusCode: 503, Message: "maintenance", Transient: true,
	})
	d.capacity.EXPECT().ListByVenue(gomock.Any(), venueID).Return(dinnerCapacity(venueID), nil)
	d.bookings.EXPECT().CountByStartTime(gomock.Any(), venueID, gomock.Any(), gomock.Any()).Return(map[string]int{}, nil)

	res, err := d.svc.GetAvailability(context.Background(), ports.AvailabilityQuery{VenueID: venueID, Date: testDate, PartySize: 2})
	require.NoError(t, err, "provider failure never reaches the caller")
	assert.Equal(t, domain.AvailabilitySourceLocal, res.Source)
	assert.Contains(t, res.FallbackReason, "provider_error: ")
	assert.Contains(t, res.FallbackReason, "maintenance")
	assert.NotEmpty(t, res.Slots)
	require.NotNil(t, res.Provider)
}

func TestAvailabilityService_ProviderTimeout_FallsBackToLocal(t *testing.T) {
	d := setupAvailabilityService(t)
	defer d.ctrl.Finish()

	venueID := uuid.New()
	d.mappings.EXPECT().ListByVenue(gomock.Any(), venueID, true).Return([]domain.ProviderMapping{syncedMapping(venueID)}, nil)
	d.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
	d.encSvc.EXPECT().Decrypt("enc").Return(`{}`, nil)
	d.adapters.EXPECT().ForMapping(gomock.Any(), gomock.Any()).Return(d.adapter, nil)
	d.adapter.EXPECT().GetAvailability(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ ports.AvailabilityRequest) ([]domain.Slot, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})
	d.capacity.EXPECT().ListByVenue(gomock.Any(), venueID).Return(dinnerCapacity(venueID), nil)
	d.bookings.EXPECT().CountByStartTime(gomock.Any(), venueID, gomock.Any(), gomock.Any()).Return(map[string]int{}, nil)

	res, err := d.svc.GetAvailability(context.Background(), ports.AvailabilityQuery{VenueID: venueID, Date: testDate, PartySize: 2})
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilitySourceLocal, res.Source)
	assert.Contains(t, res.FallbackReason, "deadline exceeded")
	assert.Len(t, res.Slots, 2)
}

func TestAvailabilityService_Validation(t *testing.T) {
	d := setupAvailabilityService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.GetAvailability(context.Background(), ports.AvailabilityQuery{VenueID: uuid.New(), Date: testDate, PartySize: 0})
	assert.Equal(t, "GEN_002", appCode(t, err))

	_, err = d.svc.GetAvailability(context.Background(), ports.AvailabilityQuery{VenueID: uuid.New(), PartySize: 2})
	assert.Equal(t, "GEN_002", appCode(t, err))
}

func TestBuildLocalSlots_FiltersPartyAndSeating(t *testing.T) {
	venueID := uuid.New()
	bar, indoor := "bar", "indoor"
	caps := dinnerCapacity(venueID)
	caps[0].SeatingType = &indoor
	caps = append(caps, domain.VenueCapacity{
		VenueID: venueID, Zone: "bar", SeatingType: &bar, OpensAt: "18:00", ClosesAt: "19:00",
		SlotMinutes: 30, DurationMinutes: 30, MinPartySize: 1, MaxPartySize: 2, TablesPerSlot: 4,
	})

	slots := buildLocalSlots(caps, testDate, 2, "bar", map[string]int{})
	require.Len(t, slots, 2)
	for _, s := range slots {
		assert.Equal(t, "bar", s.Zone)
	}

	slots = buildLocalSlots(caps, testDate, 5, "", map[string]int{})
	for _, s := range slots {
		assert.Equal(t, "main", s.Zone, "bar tables seat at most two")
	}
}
