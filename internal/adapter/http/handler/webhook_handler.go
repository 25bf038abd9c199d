package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"reservation-sync/internal/adapter/http/dto"
	"reservation-sync/internal/adapter/http/middleware"
	"reservation-sync/internal/core/domain"
	"reservation-sync/internal/core/ports"
	"reservation-sync/pkg/apperror"
	"reservation-sync/pkg/response"

	"github.com/gin-gonic/gin"
)

// WebhookHandler handles inbound provider webhooks and the operator event log.
type WebhookHandler struct {
	webhookSvc ports.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(webhookSvc ports.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookSvc: webhookSvc}
}

// Receive handles POST /webhooks/:provider. The raw body is passed through
// untouched because signatures are computed over the exact bytes.
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, apperror.ErrPayloadTooLarge())
			return
		}
		response.Error(c, apperror.ErrMalformedWebhook("unreadable body"))
		return
	}

	ack, err := h.webhookSvc.HandleWebhook(c.Request.Context(), c.Param("provider"), c.Request.Header, body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Ack(c, ack.Status, ack.EventID)
}

// ListEvents handles GET /api/v1/webhook-events.
func (h *WebhookHandler) ListEvents(c *gin.Context) {
	if !requireAllVenues(c) {
		return
	}

	var q dto.WebhookEventListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	page, pageSize := pageDefaults(q.ListQuery)

	params := ports.WebhookEventListParams{Page: page, PageSize: pageSize}
	if q.Provider != "" {
		provider := domain.Provider(strings.ToLower(q.Provider))
		params.Provider = &provider
	}
	if q.Status != "" {
		status := domain.ProcessingStatus(q.Status)
		params.Status = &status
	}

	events, total, err := h.webhookSvc.ListEvents(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.WebhookEventResponse, 0, len(events))
	for i := range events {
		out = append(out, dto.NewWebhookEventResponse(&events[i]))
	}
	response.OK(c, dto.NewListResponse(out, total, page, pageSize))
}

// Replay handles POST /api/v1/webhook-events/:id/replay.
func (h *WebhookHandler) Replay(c *gin.Context) {
	if !requireAllVenues(c) {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	event, err := h.webhookSvc.ReplayEvent(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewWebhookEventResponse(event))
}

// requireAllVenues guards cross-venue views such as the webhook event log.
func requireAllVenues(c *gin.Context) bool {
	if !middleware.AllVenues(c) {
		response.Error(c, apperror.ErrVenueForbidden())
		return false
	}
	return true
}
