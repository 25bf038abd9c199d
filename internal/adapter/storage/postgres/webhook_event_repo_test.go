package postgres

import (
	"context"
	"testing"

	"reservation-sync/internal/core/domain"
	"reservation-sync/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWebhookEvent() *domain.WebhookEvent {
	return &domain.WebhookEvent{
		ID:               uuid.New(),
		Provider:         domain.ProviderSevenRooms,
		EventID:          "evt_1001",
		EventType:        "reservation_canceled",
		Payload:          []byte(`{"webhook_id":"evt_1001"}`),
		Headers:          map[string]string{"content-type": "application/json"},
		Signature:        strPtr("abc123"),
		ProcessingStatus: domain.ProcessingStatusReceived,
		ReceivedAt:       fixedTime(),
		LastReceivedAt:   fixedTime(),
	}
}

func webhookEventRow(e *domain.WebhookEvent) *pgxmock.Rows {
	cols := []string{"id", "provider", "event_id", "event_type", "payload", "headers", "signature",
		"signature_verified", "processing_status", "processing_attempts", "error_message",
		"duplicate_count", "received_at", "last_received_at", "processed_at"}
	return pgxmock.NewRows(cols).AddRow(
		e.ID, e.Provider, e.EventID, e.EventType, []byte(e.Payload),
		[]byte(`{"content-type":"application/json"}`), e.Signature,
		e.SignatureVerified, e.ProcessingStatus, e.ProcessingAttempts, e.ErrorMessage,
		e.DuplicateCount, e.ReceivedAt, e.LastReceivedAt, e.ProcessedAt,
	)
}

func TestWebhookEventRepo_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	e := newTestWebhookEvent()

	mock.ExpectExec("INSERT INTO webhook_events .+ ON CONFLICT \\(provider, event_id\\) DO NOTHING").
		WithArgs(e.ID, e.Provider, e.EventID, e.EventType, string(e.Payload),
			[]byte(`{"content-type":"application/json"}`), e.Signature,
			e.SignatureVerified, e.ProcessingStatus, e.ProcessingAttempts, e.ErrorMessage,
			e.DuplicateCount, e.ReceivedAt, e.LastReceivedAt, e.ProcessedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	inserted, err := repo.Insert(context.Background(), e)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_Insert_Conflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)

	mock.ExpectExec("INSERT INTO webhook_events").
		WithArgs(anyArgs(15)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	inserted, err := repo.Insert(context.Background(), newTestWebhookEvent())
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	e := newTestWebhookEvent()

	mock.ExpectQuery("SELECT .+ FROM webhook_events WHERE provider = \\$1 AND event_id = \\$2").
		WithArgs(e.Provider, e.EventID).
		WillReturnRows(webhookEventRow(e))

	got, err := repo.Get(context.Background(), e.Provider, e.EventID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "application/json", got.Headers["content-type"])
	assert.JSONEq(t, `{"webhook_id":"evt_1001"}`, string(got.Payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM webhook_events WHERE id").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_RecordDuplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)

	mock.ExpectExec("UPDATE webhook_events SET duplicate_count = duplicate_count \\+ 1").
		WithArgs(fixedTime(), domain.ProviderSevenRooms, "evt_1001").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.RecordDuplicate(context.Background(), domain.ProviderSevenRooms, "evt_1001", fixedTime())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	e := newTestWebhookEvent()
	processed := fixedTime()
	e.ProcessingStatus = domain.ProcessingStatusProcessed
	e.ProcessedAt = &processed

	mock.ExpectExec("UPDATE webhook_events\\s+SET processing_status").
		WithArgs(e.ProcessingStatus, e.ProcessingAttempts, e.ErrorMessage, e.ProcessedAt, e.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.UpdateStatus(context.Background(), e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	e := newTestWebhookEvent()
	status := domain.ProcessingStatusFailed

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM webhook_events WHERE 1=1 AND processing_status = \\$1").
		WithArgs(status).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT .+ FROM webhook_events WHERE .+ LIMIT \\$2 OFFSET \\$3").
		WithArgs(status, 50, 0).
		WillReturnRows(webhookEventRow(e))

	list, total, err := repo.List(context.Background(), ports.WebhookEventListParams{Status: &status, Page: 1, PageSize: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, e.EventID, list[0].EventID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
