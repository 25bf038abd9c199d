package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"reservation-sync/internal/core/domain"
	"reservation-sync/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type auditRoute struct {
	action   domain.AuditAction
	resource string
}

// auditRoutes maps "METHOD route-template" to the audited action.
var auditRoutes = map[string]auditRoute{
	"POST /api/v1/mappings":                        {domain.AuditActionMappingCreate, "provider_mapping"},
	"PATCH /api/v1/mappings/:id":                   {domain.AuditActionMappingUpdate, "provider_mapping"},
	"DELETE /api/v1/mappings/:id":                  {domain.AuditActionMappingDelete, "provider_mapping"},
	"POST /api/v1/mappings/:id/test":               {domain.AuditActionMappingTest, "provider_mapping"},
	"POST /api/v1/bookings/:id/sync":               {domain.AuditActionSyncRequest, "booking"},
	"POST /api/v1/external-reservations/:id/retry": {domain.AuditActionSyncRetry, "external_reservation"},
	"POST /api/v1/webhook-events/:id/replay":       {domain.AuditActionWebhookReplay, "webhook_event"},
}

// AuditLog records successful operator writes after the handler has run.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}

		route, ok := auditRoutes[c.Request.Method+" "+c.FullPath()]
		if !ok {
			return
		}

		var actor *string
		if op, ok := Operator(c); ok {
			actor = &op
		}

		resourceID := c.Param("id")
		if route.action == domain.AuditActionMappingCreate {
			if id, ok := c.Get(CtxCreatedID); ok {
				resourceID, _ = id.(string)
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": status,
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			ActorID:      actor,
			Action:       route.action,
			ResourceType: route.resource,
			ResourceID:   resourceID,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now().UTC(),
		})
	}
}
