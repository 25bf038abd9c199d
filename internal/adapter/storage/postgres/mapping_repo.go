package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"reservation-sync/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const mappingColumns = `id, venue_id, provider, provider_venue_id, credentials_enc, policies,
	seating_types, timezone, sync_enabled, is_active, last_sync_at, created_at, updated_at`

// MappingRepo implements ports.MappingRepository.
type MappingRepo struct {
	pool Pool
}

// NewMappingRepo creates a new MappingRepo.
func NewMappingRepo(pool Pool) *MappingRepo {
	return &MappingRepo{pool: pool}
}

// Create inserts a mapping. A second active mapping for the venue and provider
// violates uq_provider_mappings_active and returns ports.ErrConflict.
func (r *MappingRepo) Create(ctx context.Context, m *domain.ProviderMapping) error {
	policies, err := json.Marshal(m.Policies)
	if err != nil {
		return fmt.Errorf("marshal policies: %w", err)
	}
	query := `INSERT INTO provider_mappings (` + mappingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = r.pool.Exec(ctx, query,
		m.ID, m.VenueID, m.Provider, m.ProviderVenueID, m.CredentialsEnc, policies,
		seatingTypes(m.SeatingTypes), m.Timezone, m.SyncEnabled, m.IsActive, m.LastSyncAt,
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert provider mapping: %w", mapConflict(err))
	}
	return nil
}

// GetByID fetches a mapping, active or not.
func (r *MappingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProviderMapping, error) {
	query := `SELECT ` + mappingColumns + ` FROM provider_mappings WHERE id = $1`
	m, err := scanMapping(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get provider mapping: %w", err)
	}
	return m, nil
}

// Update writes every mutable column.
func (r *MappingRepo) Update(ctx context.Context, m *domain.ProviderMapping) error {
	policies, err := json.Marshal(m.Policies)
	if err != nil {
		return fmt.Errorf("marshal policies: %w", err)
	}
	m.UpdatedAt = time.Now().UTC()
	query := `UPDATE provider_mappings
		SET provider_venue_id = $1, credentials_enc = $2, policies = $3, seating_types = $4,
			timezone = $5, sync_enabled = $6, updated_at = $7
		WHERE id = $8`

	_, err = r.pool.Exec(ctx, query,
		m.ProviderVenueID, m.CredentialsEnc, policies, seatingTypes(m.SeatingTypes),
		m.Timezone, m.SyncEnabled, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return fmt.Errorf("update provider mapping: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a mapping. It reports false when no active row matched.
func (r *MappingRepo) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE provider_mappings SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`, id)
	if err != nil {
		return false, fmt.Errorf("deactivate provider mapping: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListByVenue returns a venue's mappings ordered by provider.
func (r *MappingRepo) ListByVenue(ctx context.Context, venueID uuid.UUID, activeOnly bool) ([]domain.ProviderMapping, error) {
	query := `SELECT ` + mappingColumns + ` FROM provider_mappings
		WHERE venue_id = $1 AND (is_active OR NOT $2)
		ORDER BY provider, created_at`

	rows, err := r.pool.Query(ctx, query, venueID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list provider mappings: %w", err)
	}
	defer rows.Close()

	var out []domain.ProviderMapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("scan provider mapping: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// GetActiveByProviderVenue resolves a provider's venue id to the active mapping.
func (r *MappingRepo) GetActiveByProviderVenue(ctx context.Context, provider domain.Provider, providerVenueID string) (*domain.ProviderMapping, error) {
	query := `SELECT ` + mappingColumns + ` FROM provider_mappings
		WHERE provider = $1 AND provider_venue_id = $2 AND is_active
		LIMIT 1`
	m, err := scanMapping(r.pool.QueryRow(ctx, query, provider, providerVenueID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get provider mapping by provider venue: %w", err)
	}
	return m, nil
}

// TouchLastSync records a successful provider round trip.
func (r *MappingRepo) TouchLastSync(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE provider_mappings SET last_sync_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("touch provider mapping: %w", err)
	}
	return nil
}

func scanMapping(row pgx.Row) (*domain.ProviderMapping, error) {
	m := &domain.ProviderMapping{}
	var policies []byte
	if err := row.Scan(
		&m.ID, &m.VenueID, &m.Provider, &m.ProviderVenueID, &m.CredentialsEnc, &policies,
		&m.SeatingTypes, &m.Timezone, &m.SyncEnabled, &m.IsActive, &m.LastSyncAt,
		&m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(policies) > 0 {
		if err := json.Unmarshal(policies, &m.Policies); err != nil {
			return nil, fmt.Errorf("decode policies: %w", err)
		}
	}
	return m, nil
}

func seatingTypes(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
