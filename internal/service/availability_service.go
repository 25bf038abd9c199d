package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"reservation-sync/internal/core/domain"
	"reservation-sync/internal/core/ports"
	"reservation-sync/pkg/apperror"

	"github.com/rs/zerolog"
)

// Fallback reasons reported to the caller when slots come from local capacity.
const (
	FallbackNoActiveMapping = "no_active_mapping"
	FallbackSyncDisabled    = "sync_disabled"
	FallbackCredentials     = "credentials_unavailable"
	fallbackProviderPrefix  = "provider_error: "
)

type availabilityService struct {
	mappings        ports.MappingRepository
	capacity        ports.CapacityRepository
	bookings        ports.BookingRepository
	cache           ports.AvailabilityCache
	adapters        ports.AdapterFactory
	encSvc          ports.EncryptionService
	cacheTTL        time.Duration
	providerTimeout time.Duration
	log             zerolog.Logger
}

// NewAvailabilityService creates the availability query service.
func NewAvailabilityService(
	mappings ports.MappingRepository,
	capacity ports.CapacityRepository,
	bookings ports.BookingRepository,
	cache ports.AvailabilityCache,
	adapters ports.AdapterFactory,
	encSvc ports.EncryptionService,
	cacheTTL time.Duration,
	providerTimeout time.Duration,
	log zerolog.Logger,
) ports.AvailabilityService {
	return &availabilityService{
		mappings:        mappings,
		capacity:        capacity,
		bookings:        bookings,
		cache:           cache,
		adapters:        adapters,
		encSvc:          encSvc,
		cacheTTL:        cacheTTL,
		providerTimeout: providerTimeout,
		log:             log,
	}
}

// GetAvailability returns provider slots when possible and local slots otherwise.
// Provider failures never reach the caller; they surface as source=local with a fallback reason.
func (s *availabilityService) GetAvailability(ctx context.Context, q ports.AvailabilityQuery) (*domain.AvailabilityResult, error) {
	if q.PartySize < 1 {
		return nil, apperror.Validation("party_size must be at least 1")
	}
	if q.Date.IsZero() {
		return nil, apperror.Validation("date is required")
	}

	mappings, err := s.mappings.ListByVenue(ctx, q.VenueID, true)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list mappings: %w", err))
	}

	var mapping *domain.ProviderMapping
	for i := range mappings {
		if mappings[i].CanSync() {
			mapping = &mappings[i]
			break
		}
	}
	if mapping == nil {
		reason := FallbackNoActiveMapping
		if len(mappings) > 0 {
			reason = FallbackSyncDisabled
		}
		loc := time.UTC
		if len(mappings) > 0 {
			loc = mappings[0].Location()
		}
		return s.local(ctx, q, loc, nil, reason)
	}

	provider := mapping.Provider
	loc := mapping.Location()
	date := q.Date.Format(time.DateOnly)
	key := availabilityCacheKey(q, provider, date)

	if cached, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("availability cache read failed")
	} else if cached != nil {
		var slots []domain.Slot
		if err := json.Unmarshal(cached, &slots); err == nil {
			return &domain.AvailabilityResult{Slots: slots, Source: domain.AvailabilitySourceCache, Provider: &provider}, nil
		}
	}

	creds, err := decryptCredentials(s.encSvc, mapping)
	if err != nil {
		s.warnFallback(q, provider, FallbackCredentials, err)
		return s.local(ctx, q, loc, &provider, FallbackCredentials)
	}
	adapter, err := s.adapters.ForMapping(mapping, creds)
	if err != nil {
		reason := fallbackProviderPrefix + err.Error()
		s.warnFallback(q, provider, reason, err)
		return s.local(ctx, q, loc, &provider, reason)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	slots, err := adapter.GetAvailability(callCtx, ports.AvailabilityRequest{
		ProviderVenueID: mapping.ProviderVenueID,
		Date:            date,
		PartySize:       q.PartySize,
		SeatingType:     q.SeatingType,
	})
	if err != nil {
		reason := fallbackProviderPrefix + err.Error()
		s.warnFallback(q, provider, reason, err)
		return s.local(ctx, q, loc, &provider, reason)
	}
	if slots == nil {
		slots = []domain.Slot{}
	}

	if raw, err := json.Marshal(slots); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("availability cache write failed")
		}
	}

	return &domain.AvailabilityResult{Slots: slots, Source: domain.AvailabilitySourceProvider, Provider: &provider}, nil
}

func (s *availabilityService) warnFallback(q ports.AvailabilityQuery, provider domain.Provider, reason string, err error) {
	s.log.Warn().Err(err).
		Str("venue_id", q.VenueID.String()).
		Str("provider", string(provider)).
		Str("fallback_reason", reason).
		Msg("availability falling back to local capacity")
}

// local computes slots from venue capacity minus non-cancelled bookings.
func (s *availabilityService) local(ctx context.Context, q ports.AvailabilityQuery, loc *time.Location, provider *domain.Provider, reason string) (*domain.AvailabilityResult, error) {
	caps, err := s.capacity.ListByVenue(ctx, q.VenueID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list capacity: %w", err))
	}
	day := time.Date(q.Date.Year(), q.Date.Month(), q.Date.Day(), 0, 0, 0, 0, loc)

	booked := map[string]int{}
	if len(caps) > 0 {
		booked, err = s.bookings.CountByStartTime(ctx, q.VenueID, day, loc)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("count bookings: %w", err))
		}
	}

	slots := buildLocalSlots(caps, day, q.PartySize, q.SeatingType, booked)
	return &domain.AvailabilityResult{
		Slots:          slots,
		Source:         domain.AvailabilitySourceLocal,
		Provider:       provider,
		FallbackReason: reason,
	}, nil
}

// buildLocalSlots expands capacity rows into slots. booked maps "HH:MM" to taken tables.
func buildLocalSlots(caps []domain.VenueCapacity, day time.Time, partySize int, seatingType string, booked map[string]int) []domain.Slot {
	slots := []domain.Slot{}
	date := day.Format(time.DateOnly)

	for _, c := range caps {
		if !c.AppliesTo(day.Weekday(), partySize, seatingType) || c.SlotMinutes <= 0 {
			continue
		}
		opens, err1 := time.Parse("15:04", c.OpensAt)
		closes, err2 := time.Parse("15:04", c.ClosesAt)
		if err1 != nil || err2 != nil {
			continue
		}
		step := time.Duration(c.SlotMinutes) * time.Minute
		length := time.Duration(c.DurationMinutes) * time.Minute
		for start := opens; !start.Add(length).After(closes); start = start.Add(step) {
			label := start.Format("15:04")
			remaining := c.TablesPerSlot - booked[label]
			if remaining <= 0 {
				continue
			}
			slots = append(slots, domain.Slot{
				Date:            date,
				StartTime:       label,
				EndTime:         start.Add(length).Format("15:04"),
				DurationMinutes: c.DurationMinutes,
				MinPartySize:    c.MinPartySize,
				MaxPartySize:    c.MaxPartySize,
				Zone:            c.Zone,
				DepositRequired: c.DepositRequired,
				DepositAmount:   c.DepositAmount,
				MinimumSpend:    c.MinimumSpend,
				Remaining:       remaining,
			})
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].StartTime != slots[j].StartTime {
			return slots[i].StartTime < slots[j].StartTime
		}
		return slots[i].Zone < slots[j].Zone
	})
	return slots
}

func availabilityCacheKey(q ports.AvailabilityQuery, provider domain.Provider, date string) string {
	return fmt.Sprintf("avail:%s:%s:%s:%d:%s", q.VenueID, provider, date, q.PartySize, q.SeatingType)
}
