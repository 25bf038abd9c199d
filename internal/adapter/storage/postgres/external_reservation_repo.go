package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"reservation-sync/internal/core/domain"
	"reservation-sync/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const externalReservationColumns = `id, booking_id, venue_id, provider, provider_reservation_id,
	idempotency_key, operation, operation_seq, sync_status, provider_status,
	provider_confirmation_number, provider_response, error_message, error_permanent,
	retry_count, next_retry_at, last_synced_at, created_at, updated_at`

// ExternalReservationRepo implements ports.ExternalReservationRepository.
type ExternalReservationRepo struct {
	pool Pool
}

// NewExternalReservationRepo creates a new ExternalReservationRepo.
func NewExternalReservationRepo(pool Pool) *ExternalReservationRepo {
	return &ExternalReservationRepo{pool: pool}
}

// Create inserts a new mirror row. A second open row for the same booking and
// provider returns ports.ErrConflict.
func (r *ExternalReservationRepo) Create(ctx context.Context, er *domain.ExternalReservation) error {
	query := `INSERT INTO external_reservations (` + externalReservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	_, err := r.pool.Exec(ctx, query,
		er.ID, er.BookingID, er.VenueID, er.Provider, er.ProviderReservationID,
		er.IdempotencyKey, er.Operation, er.OperationSeq, er.SyncStatus, er.ProviderStatus,
		er.ProviderConfirmationNumber, nullJSON(er.ProviderResponse), er.ErrorMessage, er.ErrorPermanent,
		er.RetryCount, er.NextRetryAt, er.LastSyncedAt, er.CreatedAt, er.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert external reservation: %w", mapConflict(err))
	}
	return nil
}

// GetByID fetches a mirror row by id.
func (r *ExternalReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExternalReservation, error) {
	query := `SELECT ` + externalReservationColumns + ` FROM external_reservations WHERE id = $1`
	return r.getOne(ctx, "get external reservation", query, id)
}

// GetOpenByBooking returns the non-cancelled row for a booking and provider.
func (r *ExternalReservationRepo) GetOpenByBooking(ctx context.Context, bookingID uuid.UUID, provider domain.Provider) (*domain.ExternalReservation, error) {
	query := `SELECT ` + externalReservationColumns + ` FROM external_reservations
		WHERE booking_id = $1 AND provider = $2 AND sync_status <> 'cancelled'
		LIMIT 1`
	return r.getOne(ctx, "get open external reservation", query, bookingID, provider)
}

// GetByProviderReservationID looks a row up by the provider's own id.
// The newest row wins if a provider reused an id.
func (r *ExternalReservationRepo) GetByProviderReservationID(ctx context.Context, provider domain.Provider, providerReservationID string) (*domain.ExternalReservation, error) {
	query := `SELECT ` + externalReservationColumns + ` FROM external_reservations
		WHERE provider = $1 AND provider_reservation_id = $2
		ORDER BY created_at DESC
		LIMIT 1`
	return r.getOne(ctx, "get external reservation by provider id", query, provider, providerReservationID)
}

// GetByIdempotencyKey looks a row up by its base idempotency key.
func (r *ExternalReservationRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.ExternalReservation, error) {
	query := `SELECT ` + externalReservationColumns + ` FROM external_reservations WHERE idempotency_key = $1`
	return r.getOne(ctx, "get external reservation by idempotency key", query, key)
}

func (r *ExternalReservationRepo) getOne(ctx context.Context, op, query string, args ...any) (*domain.ExternalReservation, error) {
	er, err := scanExternalReservation(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return er, nil
}

// ListByBooking returns every row of a booking, newest first.
func (r *ExternalReservationRepo) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.ExternalReservation, error) {
	query := `SELECT ` + externalReservationColumns + ` FROM external_reservations
		WHERE booking_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list external reservations by booking: %w", err)
	}
	return collectExternalReservations(rows)
}

// UpdateIfStatus writes the mutable columns only while sync_status still
// equals expected and the stored operation is not newer than er's. False means
// another writer moved the row first or queued a later operation on it.
func (r *ExternalReservationRepo) UpdateIfStatus(ctx context.Context, er *domain.ExternalReservation, expected domain.SyncStatus) (bool, error) {
	query := `UPDATE external_reservations
		SET booking_id = $1, provider_reservation_id = $2, operation = $3, operation_seq = $4,
			sync_status = $5, provider_status = $6, provider_confirmation_number = $7,
			provider_response = $8, error_message = $9, error_permanent = $10,
			retry_count = $11, next_retry_at = $12, last_synced_at = $13, updated_at = $14
		WHERE id = $15 AND sync_status = $16 AND operation_seq <= $4`

	tag, err := r.pool.Exec(ctx, query,
		er.BookingID, er.ProviderReservationID, er.Operation, er.OperationSeq,
		er.SyncStatus, er.ProviderStatus, er.ProviderConfirmationNumber,
		nullJSON(er.ProviderResponse), er.ErrorMessage, er.ErrorPermanent,
		er.RetryCount, er.NextRetryAt, er.LastSyncedAt, er.UpdatedAt,
		er.ID, expected,
	)
	if err != nil {
		return false, fmt.Errorf("update external reservation: %w", mapConflict(err))
	}
	return tag.RowsAffected() == 1, nil
}

// ClaimDue picks up rows the sweeper should run: failed rows whose retry time
// has passed, and pending or syncing rows untouched since staleBefore (a worker
// died mid-attempt). Failed rows move to pending; stale rows keep their state.
// Every claimed row gets updated_at = now so it is not claimed again at once.
// Concurrent sweepers skip each other's rows.
func (r *ExternalReservationRepo) ClaimDue(ctx context.Context, now, staleBefore time.Time, limit int) ([]domain.ExternalReservation, error) {
	query := `WITH due AS (
			SELECT id FROM external_reservations
			WHERE (sync_status = 'failed' AND NOT error_permanent
					AND next_retry_at IS NOT NULL AND next_retry_at <= $1)
				OR (sync_status IN ('pending', 'syncing') AND booking_id IS NOT NULL AND updated_at < $2)
			ORDER BY COALESCE(next_retry_at, updated_at)
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		UPDATE external_reservations er
		SET sync_status = CASE WHEN er.sync_status = 'failed' THEN 'pending' ELSE er.sync_status END,
			next_retry_at = NULL, updated_at = $1
		FROM due
		WHERE er.id = due.id
		RETURNING ` + prefixColumns("er.", externalReservationColumns)

	rows, err := r.pool.Query(ctx, query, now, staleBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("claim due external reservations: %w", err)
	}
	return collectExternalReservations(rows)
}

// List returns a filtered, paginated page of a venue's rows plus the total count.
func (r *ExternalReservationRepo) List(ctx context.Context, params ports.ExternalReservationListParams) ([]domain.ExternalReservation, int64, error) {
	where := "WHERE venue_id = $1"
	args := []any{params.VenueID}
	argIdx := 2

	if params.Status != nil {
		where += fmt.Sprintf(" AND sync_status = $%d", argIdx)
		args = append(args, *params.Status)
		argIdx++
	}
	if params.Provider != nil {
		where += fmt.Sprintf(" AND provider = $%d", argIdx)
		args = append(args, *params.Provider)
		argIdx++
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM external_reservations "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count external reservations: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM external_reservations %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, externalReservationColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset(params.Page, params.PageSize))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list external reservations: %w", err)
	}
	out, err := collectExternalReservations(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// StatsByVenue counts a venue's rows per sync status.
func (r *ExternalReservationRepo) StatsByVenue(ctx context.Context, venueID uuid.UUID) (*ports.SyncStats, error) {
	query := `SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE sync_status = 'pending'),
			COUNT(*) FILTER (WHERE sync_status = 'syncing'),
			COUNT(*) FILTER (WHERE sync_status = 'synced'),
			COUNT(*) FILTER (WHERE sync_status = 'failed'),
			COUNT(*) FILTER (WHERE sync_status = 'cancelled'),
			COUNT(*) FILTER (WHERE sync_status = 'modified'),
			COUNT(*) FILTER (WHERE sync_status = 'failed' AND next_retry_at IS NOT NULL)
		FROM external_reservations
		WHERE venue_id = $1`

	s := &ports.SyncStats{}
	err := r.pool.QueryRow(ctx, query, venueID).Scan(
		&s.Total, &s.Pending, &s.Syncing, &s.Synced,
		&s.Failed, &s.Cancelled, &s.Modified, &s.RetryScheduled,
	)
	if err != nil {
		return nil, fmt.Errorf("external reservation stats: %w", err)
	}
	return s, nil
}

func collectExternalReservations(rows pgx.Rows) ([]domain.ExternalReservation, error) {
	defer rows.Close()

	var out []domain.ExternalReservation
	for rows.Next() {
		er, err := scanExternalReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan external reservation: %w", err)
		}
		out = append(out, *er)
	}
	return out, rows.Err()
}

func scanExternalReservation(row pgx.Row) (*domain.ExternalReservation, error) {
	er := &domain.ExternalReservation{}
	var response []byte
	if err := row.Scan(
		&er.ID, &er.BookingID, &er.VenueID, &er.Provider, &er.ProviderReservationID,
		&er.IdempotencyKey, &er.Operation, &er.OperationSeq, &er.SyncStatus, &er.ProviderStatus,
		&er.ProviderConfirmationNumber, &response, &er.ErrorMessage, &er.ErrorPermanent,
		&er.RetryCount, &er.NextRetryAt, &er.LastSyncedAt, &er.CreatedAt, &er.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(response) > 0 {
		er.ProviderResponse = response
	}
	return er, nil
}

// nullJSON stores an empty document as SQL NULL.
func nullJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func prefixColumns(prefix, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = prefix + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
