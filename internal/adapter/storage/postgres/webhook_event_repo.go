package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"reservation-sync/internal/core/domain"
	"reservation-sync/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const webhookEventColumns = `id, provider, event_id, event_type, payload, headers, signature,
	signature_verified, processing_status, processing_attempts, error_message,
	duplicate_count, received_at, last_received_at, processed_at`

// WebhookEventRepo implements ports.WebhookEventRepository.
type WebhookEventRepo struct {
	pool Pool
}

// NewWebhookEventRepo creates a new WebhookEventRepo.
func NewWebhookEventRepo(pool Pool) *WebhookEventRepo {
	return &WebhookEventRepo{pool: pool}
}

// Get fetches an event by its provider-scoped id.
func (r *WebhookEventRepo) Get(ctx context.Context, provider domain.Provider, eventID string) (*domain.WebhookEvent, error) {
	query := `SELECT ` + webhookEventColumns + ` FROM webhook_events WHERE provider = $1 AND event_id = $2`
	e, err := scanWebhookEvent(r.pool.QueryRow(ctx, query, provider, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get webhook event: %w", err)
	}
	return e, nil
}

// GetByID fetches an event by row id.
func (r *WebhookEventRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.WebhookEvent, error) {
	query := `SELECT ` + webhookEventColumns + ` FROM webhook_events WHERE id = $1`
	e, err := scanWebhookEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get webhook event by id: %w", err)
	}
	return e, nil
}

// Insert stores the event. It returns false when (provider, event_id) already
// exists, which is how concurrent redeliveries lose the race.
func (r *WebhookEventRepo) Insert(ctx context.Context, e *domain.WebhookEvent) (bool, error) {
	headers, err := json.Marshal(e.Headers)
	if err != nil {
		return false, fmt.Errorf("marshal webhook headers: %w", err)
	}
	query := `INSERT INTO webhook_events (` + webhookEventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (provider, event_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query,
		e.ID, e.Provider, e.EventID, e.EventType, string(e.Payload), headers, e.Signature,
		e.SignatureVerified, e.ProcessingStatus, e.ProcessingAttempts, e.ErrorMessage,
		e.DuplicateCount, e.ReceivedAt, e.LastReceivedAt, e.ProcessedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert webhook event: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// RecordDuplicate bumps the redelivery counter of an existing event.
func (r *WebhookEventRepo) RecordDuplicate(ctx context.Context, provider domain.Provider, eventID string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE webhook_events SET duplicate_count = duplicate_count + 1, last_received_at = $1
		 WHERE provider = $2 AND event_id = $3`,
		at, provider, eventID,
	)
	if err != nil {
		return fmt.Errorf("record duplicate webhook event: %w", err)
	}
	return nil
}

// UpdateStatus persists the processing outcome of an event.
func (r *WebhookEventRepo) UpdateStatus(ctx context.Context, e *domain.WebhookEvent) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE webhook_events
		 SET processing_status = $1, processing_attempts = $2, error_message = $3, processed_at = $4
		 WHERE id = $5`,
		e.ProcessingStatus, e.ProcessingAttempts, e.ErrorMessage, e.ProcessedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("update webhook event status: %w", err)
	}
	return nil
}

// List returns a filtered, paginated page of events plus the total count.
func (r *WebhookEventRepo) List(ctx context.Context, params ports.WebhookEventListParams) ([]domain.WebhookEvent, int64, error) {
	where := "WHERE 1=1"
	args := []any{}
	argIdx := 1

	if params.Provider != nil {
		where += fmt.Sprintf(" AND provider = $%d", argIdx)
		args = append(args, *params.Provider)
		argIdx++
	}
	if params.Status != nil {
		where += fmt.Sprintf(" AND processing_status = $%d", argIdx)
		args = append(args, *params.Status)
		argIdx++
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM webhook_events "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count webhook events: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM webhook_events %s
		ORDER BY received_at DESC
		LIMIT $%d OFFSET $%d`, webhookEventColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset(params.Page, params.PageSize))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list webhook events: %w", err)
	}
	defer rows.Close()

	var out []domain.WebhookEvent
	for rows.Next() {
		e, err := scanWebhookEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan webhook event: %w", err)
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
}

func scanWebhookEvent(row pgx.Row) (*domain.WebhookEvent, error) {
	e := &domain.WebhookEvent{}
	var payload, headers []byte
	if err := row.Scan(
		&e.ID, &e.Provider, &e.EventID, &e.EventType, &payload, &headers, &e.Signature,
		&e.SignatureVerified, &e.ProcessingStatus, &e.ProcessingAttempts, &e.ErrorMessage,
		&e.DuplicateCount, &e.ReceivedAt, &e.LastReceivedAt, &e.ProcessedAt,
	); err != nil {
		return nil, err
	}
	e.Payload = payload
	if len(headers) > 0 {
		if err := json.Unmarshal(headers, &e.Headers); err != nil {
			return nil, fmt.Errorf("decode webhook headers: %w", err)
		}
	}
	return e, nil
}
