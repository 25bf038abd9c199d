package handler

import (
	"context"
	"net/http"
	"testing"

	"reservation-sync/internal/core/domain"
	"reservation-sync/internal/core/ports"
	"reservation-sync/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestAvailability_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mocks.NewMockAvailabilityService(ctrl)
	h := NewAvailabilityHandler(svc)

	venueID := uuid.New()
	svc.EXPECT().GetAvailability(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, q ports.AvailabilityQuery) (*domain.AvailabilityResult, error) {
			assert.Equal(t, venueID, q.VenueID)
			assert.Equal(t, "2026-03-01", q.Date.Format("2006-01-02"))
			assert.Equal(t, 4, q.PartySize)
			assert.Equal(t, "terrace", q.SeatingType)
			return &domain.AvailabilityResult{
				Slots:  []domain.Slot{{Date: "2026-03-01", StartTime: "19:00", EndTime: "20:30", Remaining: 2}},
				Source: domain.AvailabilitySourceLocal,
			}, nil
		},
	)

	c, w := newContext(http.MethodGet, "/?date=2026-03-01&party_size=4&seating_type=terrace", nil, venueID)
	c.Params = gin.Params{{Key: "id", Value: venueID.String()}}

	h.Get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "local", data["source"])
	assert.Len(t, data["slots"], 1)
}

func TestAvailability_InvalidQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewAvailabilityHandler(mocks.NewMockAvailabilityService(ctrl))
	venueID := uuid.New()

	for _, target := range []string{
		"/?party_size=2",
		"/?date=01-03-2026&party_size=2",
		"/?date=2026-03-01&party_size=0",
	} {
		c, w := newContext(http.MethodGet, target, nil)
		c.Params = gin.Params{{Key: "id", Value: venueID.String()}}

		h.Get(c)

		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestAvailability_ForeignVenue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewAvailabilityHandler(mocks.NewMockAvailabilityService(ctrl))

	c, w := newContext(http.MethodGet, "/?date=2026-03-01&party_size=2", nil, uuid.New())
	c.Params = gin.Params{{Key: "id", Value: uuid.NewString()}}

	h.Get(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
