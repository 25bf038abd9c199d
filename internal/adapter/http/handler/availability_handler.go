package handler

import (
	"time"

	"reservation-sync/internal/adapter/http/dto"
	"reservation-sync/internal/core/ports"
	"reservation-sync/pkg/apperror"
	"reservation-sync/pkg/response"

	"github.com/gin-gonic/gin"
)

// AvailabilityHandler serves slot queries.
type AvailabilityHandler struct {
	availabilitySvc ports.AvailabilityService
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(availabilitySvc ports.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilitySvc: availabilitySvc}
}

// Get handles GET /api/v1/venues/:id/availability.
func (h *AvailabilityHandler) Get(c *gin.Context) {
	venueID, ok := paramID(c, "id")
	if !ok || !requireVenue(c, venueID) {
		return
	}

	var q dto.AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	date, err := time.Parse("2006-01-02", q.Date)
	if err != nil {
		response.Error(c, apperror.Validation("date must be YYYY-MM-DD"))
		return
	}

	result, err := h.availabilitySvc.GetAvailability(c.Request.Context(), ports.AvailabilityQuery{
		VenueID:     venueID,
		Date:        date,
		PartySize:   q.PartySize,
		SeatingType: q.SeatingType,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
