package handler

import (
	"strings"

	"reservation-sync/internal/adapter/http/dto"
	"reservation-sync/internal/adapter/http/middleware"
	"reservation-sync/internal/core/domain"
	"reservation-sync/internal/core/ports"
	"reservation-sync/pkg/apperror"
	"reservation-sync/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MappingHandler handles provider mapping endpoints.
type MappingHandler struct {
	mappingSvc ports.MappingService
}

// NewMappingHandler creates a new MappingHandler.
func NewMappingHandler(mappingSvc ports.MappingService) *MappingHandler {
	return &MappingHandler{mappingSvc: mappingSvc}
}

// Create handles POST /api/v1/mappings.
func (h *MappingHandler) Create(c *gin.Context) {
	var req dto.CreateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	venueID := uuid.MustParse(req.VenueID)
	if !requireVenue(c, venueID) {
		return
	}

	syncEnabled := true
	if req.SyncEnabled != nil {
		syncEnabled = *req.SyncEnabled
	}

	m, err := h.mappingSvc.Create(c.Request.Context(), ports.CreateMappingRequest{
		VenueID:         venueID,
		Provider:        domain.Provider(strings.ToLower(req.Provider)),
		ProviderVenueID: req.ProviderVenueID,
		Credentials:     req.Credentials.ToDomain(),
		Policies:        req.Policies.ToDomain(),
		SeatingTypes:    req.SeatingTypes,
		Timezone:        req.Timezone,
		SyncEnabled:     syncEnabled,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxCreatedID, m.ID.String())
	response.Created(c, dto.NewMappingResponse(m))
}

// Get handles GET /api/v1/mappings/:id.
func (h *MappingHandler) Get(c *gin.Context) {
	m, ok := h.load(c)
	if !ok {
		return
	}
	response.OK(c, dto.NewMappingResponse(m))
}

// Update handles PATCH /api/v1/mappings/:id.
func (h *MappingHandler) Update(c *gin.Context) {
	m, ok := h.load(c)
	if !ok {
		return
	}

	var req dto.UpdateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	upd := ports.UpdateMappingRequest{
		ProviderVenueID: req.ProviderVenueID,
		SeatingTypes:    req.SeatingTypes,
		Timezone:        req.Timezone,
		SyncEnabled:     req.SyncEnabled,
	}
	if req.Credentials != nil {
		creds := req.Credentials.ToDomain()
		upd.Credentials = &creds
	}
	if req.Policies != nil {
		policies := req.Policies.ToDomain()
		upd.Policies = &policies
	}

	updated, err := h.mappingSvc.Update(c.Request.Context(), m.ID, upd)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewMappingResponse(updated))
}

// Delete handles DELETE /api/v1/mappings/:id.
func (h *MappingHandler) Delete(c *gin.Context) {
	m, ok := h.load(c)
	if !ok {
		return
	}
	if err := h.mappingSvc.Delete(c.Request.Context(), m.ID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "mapping deactivated"})
}

// TestConnection handles POST /api/v1/mappings/:id/test.
func (h *MappingHandler) TestConnection(c *gin.Context) {
	m, ok := h.load(c)
	if !ok {
		return
	}
	if err := h.mappingSvc.TestConnection(c.Request.Context(), m.ID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "connection ok", "provider": string(m.Provider)})
}

// ListByVenue handles GET /api/v1/venues/:id/mappings.
func (h *MappingHandler) ListByVenue(c *gin.Context) {
	venueID, ok := paramID(c, "id")
	if !ok || !requireVenue(c, venueID) {
		return
	}

	mappings, err := h.mappingSvc.ListByVenue(c.Request.Context(), venueID)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.MappingResponse, 0, len(mappings))
	for i := range mappings {
		out = append(out, dto.NewMappingResponse(&mappings[i]))
	}
	response.OK(c, out)
}

// load resolves the :id mapping and checks the operator's venue scope.
func (h *MappingHandler) load(c *gin.Context) (*domain.ProviderMapping, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	m, err := h.mappingSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	if !requireVenue(c, m.VenueID) {
		return nil, false
	}
	return m, true
}
