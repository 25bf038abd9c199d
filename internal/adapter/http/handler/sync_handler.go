package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"reservation-sync/internal/adapter/http/dto"
	"reservation-sync/internal/core/domain"
	"reservation-sync/internal/core/ports"
	"reservation-sync/pkg/apperror"
	"reservation-sync/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const streamKeepAlive = 15 * time.Second

// SyncHandler handles outbound sync, external reservation and badge endpoints.
type SyncHandler struct {
	syncSvc      ports.SyncService
	bookings     ports.BookingRepository
	reservations ports.ExternalReservationRepository
	feed         ports.ChangeFeed
	keepAlive    time.Duration
	log          zerolog.Logger
}

// NewSyncHandler creates a new SyncHandler. The repositories resolve venue
// scope for booking and reservation ids.
func NewSyncHandler(
	syncSvc ports.SyncService,
	bookings ports.BookingRepository,
	reservations ports.ExternalReservationRepository,
	feed ports.ChangeFeed,
	log zerolog.Logger,
) *SyncHandler {
	return &SyncHandler{
		syncSvc:      syncSvc,
		bookings:     bookings,
		reservations: reservations,
		feed:         feed,
		keepAlive:    streamKeepAlive,
		log:          log,
	}
}

// SyncBooking handles POST /api/v1/bookings/:id/sync.
func (h *SyncHandler) SyncBooking(c *gin.Context) {
	bookingID, ok := h.bookingInScope(c)
	if !ok {
		return
	}

	var req dto.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	rows, err := h.syncSvc.SyncBooking(c.Request.Context(), bookingID, domain.SyncOperation(strings.ToLower(req.Operation)))
	if err != nil {
		response.Error(c, err)
		return
	}
	if rows == nil {
		rows = []domain.ExternalReservation{}
	}
	response.OK(c, rows)
}

// GetExternalReservation handles GET /api/v1/bookings/:id/external-reservation.
func (h *SyncHandler) GetExternalReservation(c *gin.Context) {
	bookingID, ok := h.bookingInScope(c)
	if !ok {
		return
	}

	rows, err := h.syncSvc.GetExternalReservations(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if rows == nil {
		rows = []domain.ExternalReservation{}
	}
	response.OK(c, rows)
}

// StreamExternalReservation handles GET /api/v1/bookings/:id/external-reservation/stream.
// It sends the current rows as a snapshot event, then every change from the feed.
func (h *SyncHandler) StreamExternalReservation(c *gin.Context) {
	bookingID, ok := h.bookingInScope(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	changes, stop, err := h.feed.Subscribe(ctx, bookingID)
	if err != nil {
		response.Error(c, apperror.InternalError(fmt.Errorf("subscribe change feed: %w", err)))
		return
	}
	defer stop()

	snapshot, err := h.syncSvc.GetExternalReservations(ctx, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if snapshot == nil {
		snapshot = []domain.ExternalReservation{}
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("snapshot", snapshot)
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-changes:
			if !ok {
				return false
			}
			c.SSEvent("external_reservation", json.RawMessage(msg))
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})
	h.log.Debug().Str("booking_id", bookingID.String()).Msg("change stream closed")
}

// Retry handles POST /api/v1/external-reservations/:id/retry.
func (h *SyncHandler) Retry(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	rec, err := h.reservations.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}
	if rec == nil {
		response.Error(c, apperror.ErrNotFound("external reservation"))
		return
	}
	if !requireVenue(c, rec.VenueID) {
		return
	}

	updated, err := h.syncSvc.RetrySync(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, updated)
}

// ListByVenue handles GET /api/v1/venues/:id/external-reservations.
func (h *SyncHandler) ListByVenue(c *gin.Context) {
	venueID, ok := paramID(c, "id")
	if !ok || !requireVenue(c, venueID) {
		return
	}

	var q dto.ExternalReservationListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	page, pageSize := pageDefaults(q.ListQuery)

	params := ports.ExternalReservationListParams{
		VenueID:  venueID,
		Page:     page,
		PageSize: pageSize,
	}
	if q.Status != "" {
		status := domain.SyncStatus(strings.ToLower(q.Status))
		params.Status = &status
	}
	if q.Provider != "" {
		provider := domain.Provider(strings.ToLower(q.Provider))
		params.Provider = &provider
	}

	rows, total, err := h.syncSvc.ListByVenue(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewListResponse(rows, total, page, pageSize))
}

// Stats handles GET /api/v1/venues/:id/sync-stats.
func (h *SyncHandler) Stats(c *gin.Context) {
	venueID, ok := paramID(c, "id")
	if !ok || !requireVenue(c, venueID) {
		return
	}

	stats, err := h.syncSvc.StatsByVenue(c.Request.Context(), venueID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

// bookingInScope parses the :id booking and checks the operator's venue scope.
func (h *SyncHandler) bookingInScope(c *gin.Context) (uuid.UUID, bool) {
	bookingID, ok := paramID(c, "id")
	if !ok {
		return uuid.Nil, false
	}

	booking, err := h.bookings.GetByID(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return uuid.Nil, false
	}
	if booking == nil {
		response.Error(c, apperror.ErrNotFound("booking"))
		return uuid.Nil, false
	}
	if !requireVenue(c, booking.VenueID) {
		return uuid.Nil, false
	}
	return bookingID, true
}
