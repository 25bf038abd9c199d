package postgres

import (
	"context"
	"testing"
	"time"

	"reservation-sync/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBookingRepo(mock)
	b := &domain.Booking{
		ID:        uuid.New(),
		VenueID:   uuid.New(),
		GuestName: "Mei Lin",
		PartySize: 4,
		StartsAt:  fixedTime(),
		Status:    domain.BookingStatusPending,
		CreatedAt: fixedTime(),
		UpdatedAt: fixedTime(),
	}
	cols := []string{"id", "venue_id", "user_id", "guest_name", "guest_email", "guest_phone", "party_size",
		"starts_at", "seating_type", "notes", "status", "created_at", "updated_at"}

	mock.ExpectQuery("SELECT .+ FROM bookings WHERE id").
		WithArgs(b.ID).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(
			b.ID, b.VenueID, b.UserID, b.GuestName, b.GuestEmail, b.GuestPhone, b.PartySize,
			b.StartsAt, b.SeatingType, b.Notes, b.Status, b.CreatedAt, b.UpdatedAt,
		))

	got, err := repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Mei Lin", got.GuestName)
	assert.Equal(t, domain.BookingStatusPending, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBookingRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM bookings WHERE id").WithArgs(id).WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestBookingRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBookingRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE bookings SET status = \\$1, updated_at = NOW\\(\\) WHERE id = \\$2 AND status <> \\$1").
		WithArgs(domain.BookingStatusCancelled, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE bookings").
		WithArgs(domain.BookingStatusCancelled, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	changed, err := repo.UpdateStatus(context.Background(), id, domain.BookingStatusCancelled)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.UpdateStatus(context.Background(), id, domain.BookingStatusCancelled)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_CountByStartTime(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBookingRepo(mock)
	venueID := uuid.New()
	loc, err := time.LoadLocation("Asia/Singapore")
	require.NoError(t, err)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)

	mock.ExpectQuery("SELECT to_char\\(starts_at AT TIME ZONE \\$1, 'HH24:MI'\\) AS slot, COUNT\\(\\*\\)").
		WithArgs("Asia/Singapore", venueID,
			time.Date(2026, 3, 9, 16, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)).
		WillReturnRows(pgxmock.NewRows([]string{"slot", "count"}).
			AddRow("18:00", 3).
			AddRow("19:30", 1))

	counts, err := repo.CountByStartTime(context.Background(), venueID, day, loc)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"18:00": 3, "19:30": 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
