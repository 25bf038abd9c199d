package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"reservation-sync/internal/core/domain"
	"reservation-sync/internal/core/ports"
	"reservation-sync/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const testConnectionPartySize = 2

// MappingServiceImpl implements ports.MappingService.
type MappingServiceImpl struct {
	repo        ports.MappingRepository
	encSvc      ports.EncryptionService
	adapters    ports.AdapterFactory
	callTimeout time.Duration
	log         zerolog.Logger
}

// NewMappingService creates a new MappingServiceImpl.
func NewMappingService(
	repo ports.MappingRepository,
	encSvc ports.EncryptionService,
	adapters ports.AdapterFactory,
	callTimeout time.Duration,
	log zerolog.Logger,
) *MappingServiceImpl {
	return &MappingServiceImpl{
		repo:        repo,
		encSvc:      encSvc,
		adapters:    adapters,
		callTimeout: callTimeout,
		log:         log,
	}
}

// Create validates and stores a new mapping with encrypted credentials.
func (s *MappingServiceImpl) Create(ctx context.Context, req ports.CreateMappingRequest) (*domain.ProviderMapping, error) {
	if !req.Provider.IsValid() {
		return nil, apperror.ErrUnsupportedProvider(string(req.Provider))
	}
	if strings.TrimSpace(req.ProviderVenueID) == "" {
		return nil, apperror.Validation("provider_venue_id is required")
	}
	if err := validateTimezone(req.Timezone); err != nil {
		return nil, err
	}

	credsEnc, err := s.encryptCredentials(req.Credentials)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	m := &domain.ProviderMapping{
		ID:              uuid.New(),
		VenueID:         req.VenueID,
		Provider:        req.Provider,
		ProviderVenueID: strings.TrimSpace(req.ProviderVenueID),
		CredentialsEnc:  credsEnc,
		Policies:        req.Policies,
		SeatingTypes:    normalizeSeatingTypes(req.SeatingTypes),
		Timezone:        req.Timezone,
		SyncEnabled:     req.SyncEnabled,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		if errors.Is(err, ports.ErrConflict) {
			return nil, apperror.ErrMappingAlreadyActive()
		}
		return nil, apperror.InternalError(fmt.Errorf("create mapping: %w", err))
	}

	s.log.Info().
		Str("mapping_id", m.ID.String()).
		Str("venue_id", m.VenueID.String()).
		Str("provider", string(m.Provider)).
		Msg("provider mapping created")
	return m, nil
}

// GetByID returns an active mapping.
func (s *MappingServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProviderMapping, error) {
	return s.getActive(ctx, id)
}

// Update applies a partial update. Credential fields left empty keep their stored value.
func (s *MappingServiceImpl) Update(ctx context.Context, id uuid.UUID, req ports.UpdateMappingRequest) (*domain.ProviderMapping, error) {
	m, err := s.getActive(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ProviderVenueID != nil {
		if strings.TrimSpace(*req.ProviderVenueID) == "" {
			return nil, apperror.Validation("provider_venue_id cannot be empty")
		}
		m.ProviderVenueID = strings.TrimSpace(*req.ProviderVenueID)
	}
	if req.Timezone != nil {
		if err := validateTimezone(*req.Timezone); err != nil {
			return nil, err
		}
		m.Timezone = *req.Timezone
	}
	if req.Policies != nil {
		m.Policies = *req.Policies
	}
	if req.SeatingTypes != nil {
		m.SeatingTypes = normalizeSeatingTypes(req.SeatingTypes)
	}
	if req.SyncEnabled != nil {
		m.SyncEnabled = *req.SyncEnabled
	}
	if req.Credentials != nil && !req.Credentials.IsEmpty() {
		current, err := s.decryptCredentials(m)
		if err != nil {
			return nil, err
		}
		enc, err := s.encryptCredentials(current.Merge(*req.Credentials))
		if err != nil {
			return nil, err
		}
		m.CredentialsEnc = enc
	}
	m.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update mapping: %w", err))
	}
	return m, nil
}

// Delete soft-deletes a mapping by clearing is_active.
func (s *MappingServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("deactivate mapping: %w", err))
	}
	if !ok {
		return apperror.ErrMappingNotFound()
	}
	s.log.Info().Str("mapping_id", id.String()).Msg("provider mapping deactivated")
	return nil
}

// TestConnection issues a harmless availability read for today, party of two.
func (s *MappingServiceImpl) TestConnection(ctx context.Context, id uuid.UUID) error {
	m, err := s.getActive(ctx, id)
	if err != nil {
		return err
	}
	creds, err := s.decryptCredentials(m)
	if err != nil {
		return err
	}
	adapter, err := s.adapters.ForMapping(m, creds)
	if err != nil {
		return apperror.ErrUnsupportedProvider(string(m.Provider))
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	_, err = adapter.GetAvailability(callCtx, ports.AvailabilityRequest{
		ProviderVenueID: m.ProviderVenueID,
		Date:            time.Now().In(m.Location()).Format(time.DateOnly),
		PartySize:       testConnectionPartySize,
	})
	if err != nil {
		s.log.Warn().Err(err).
			Str("mapping_id", m.ID.String()).
			Str("provider", string(m.Provider)).
			Msg("provider connection test failed")
		return apperror.ErrProviderRejected(err)
	}

	if err := s.repo.TouchLastSync(ctx, m.ID, time.Now().UTC()); err != nil {
		s.log.Warn().Err(err).Str("mapping_id", m.ID.String()).Msg("failed to record last_sync_at")
	}
	return nil
}

// ListByVenue returns the venue's active mappings.
func (s *MappingServiceImpl) ListByVenue(ctx context.Context, venueID uuid.UUID) ([]domain.ProviderMapping, error) {
	mappings, err := s.repo.ListByVenue(ctx, venueID, true)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list mappings: %w", err))
	}
	return mappings, nil
}

func (s *MappingServiceImpl) getActive(ctx context.Context, id uuid.UUID) (*domain.ProviderMapping, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get mapping: %w", err))
	}
	if m == nil || !m.IsActive {
		return nil, apperror.ErrMappingNotFound()
	}
	return m, nil
}

func (s *MappingServiceImpl) encryptCredentials(c domain.ProviderCredentials) (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("marshal credentials: %w", err))
	}
	enc, err := s.encSvc.Encrypt(string(raw))
	if err != nil {
		return "", apperror.ErrEncryptionFailure(fmt.Errorf("encrypt credentials: %w", err))
	}
	return enc, nil
}

func (s *MappingServiceImpl) decryptCredentials(m *domain.ProviderMapping) (domain.ProviderCredentials, error) {
	return decryptCredentials(s.encSvc, m)
}

// decryptCredentials opens a mapping's credential blob. An empty blob yields empty credentials.
func decryptCredentials(encSvc ports.EncryptionService, m *domain.ProviderMapping) (domain.ProviderCredentials, error) {
	var creds domain.ProviderCredentials
	if m.CredentialsEnc == "" {
		return creds, nil
	}
	plain, err := encSvc.Decrypt(m.CredentialsEnc)
	if err != nil {
		return creds, apperror.ErrEncryptionFailure(fmt.Errorf("decrypt credentials: %w", err))
	}
	if err := json.Unmarshal([]byte(plain), &creds); err != nil {
		return creds, apperror.InternalError(fmt.Errorf("unmarshal credentials: %w", err))
	}
	return creds, nil
}

func validateTimezone(tz string) error {
	if tz == "" {
		return apperror.Validation("timezone is required")
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return apperror.Validation(fmt.Sprintf("unknown timezone %q", tz))
	}
	return nil
}

func normalizeSeatingTypes(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
