package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionMappingCreate     AuditAction = "MAPPING_CREATE"
	AuditActionMappingUpdate     AuditAction = "MAPPING_UPDATE"
	AuditActionMappingDelete     AuditAction = "MAPPING_DELETE"
	AuditActionMappingTest       AuditAction = "MAPPING_TEST"
	AuditActionSyncRequest       AuditAction = "SYNC_REQUEST"
	AuditActionSyncRetry         AuditAction = "SYNC_RETRY"
	AuditActionWebhookReplay     AuditAction = "WEBHOOK_REPLAY"
	AuditActionWebhookUnverified AuditAction = "WEBHOOK_UNVERIFIED"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	ActorID      *string     `json:"actor_id,omitempty"` // operator subject, nil for provider-originated events
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
