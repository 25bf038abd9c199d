package handler

import (
	"reservation-sync/internal/adapter/http/dto"
	"reservation-sync/internal/adapter/http/middleware"
	"reservation-sync/pkg/apperror"
	"reservation-sync/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
)

// paramID parses a uuid path parameter, writing a 400 on failure.
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, apperror.Validation("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// requireVenue writes a 403 unless the operator token covers venueID.
func requireVenue(c *gin.Context, venueID uuid.UUID) bool {
	if !middleware.VenueAllowed(c, venueID) {
		response.Error(c, apperror.ErrVenueForbidden())
		return false
	}
	return true
}

func pageDefaults(q dto.ListQuery) (int, int) {
	page, size := q.Page, q.PageSize
	if page < 1 {
		page = defaultPage
	}
	if size < 1 {
		size = defaultPageSize
	}
	return page, size
}
