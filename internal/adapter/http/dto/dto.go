package dto

import (
	"time"

	"reservation-sync/internal/core/domain"
)

// CredentialsRequest carries provider credentials in plaintext.
// They are encrypted before storage and never echoed back.
type CredentialsRequest struct {
	APIKey      string `json:"api_key,omitempty"`
	APISecret   string `json:"api_secret,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	ClientID    string `json:"client_id,omitempty"`
}

// ToDomain converts the request into domain credentials.
func (c CredentialsRequest) ToDomain() domain.ProviderCredentials {
	return domain.ProviderCredentials{
		APIKey:      c.APIKey,
		APISecret:   c.APISecret,
		AccessToken: c.AccessToken,
		ClientID:    c.ClientID,
	}
}

// PoliciesRequest is the provider-facing policy blob.
type PoliciesRequest struct {
	CancellationWindowHours int    `json:"cancellation_window_hours" binding:"gte=0,lte=720"`
	DepositRequired         bool   `json:"deposit_required"`
	DepositAmount           int64  `json:"deposit_amount" binding:"gte=0"`
	Currency                string `json:"currency" binding:"omitempty,len=3"`
}

// ToDomain converts the request into domain policies.
func (p PoliciesRequest) ToDomain() domain.MappingPolicies {
	return domain.MappingPolicies{
		CancellationWindowHours: p.CancellationWindowHours,
		DepositRequired:         p.DepositRequired,
		DepositAmount:           p.DepositAmount,
		Currency:                p.Currency,
	}
}

// CreateMappingRequest is the request body for POST /mappings.
type CreateMappingRequest struct {
	VenueID         string             `json:"venue_id" binding:"required,uuid"`
	Provider        string             `json:"provider" binding:"required,provider"`
	ProviderVenueID string             `json:"provider_venue_id" binding:"required,max=128,safe_id"`
	Credentials     CredentialsRequest `json:"credentials"`
	Policies        PoliciesRequest    `json:"policies"`
	SeatingTypes    []string           `json:"seating_types" binding:"omitempty,dive,safe_id"`
	Timezone        string             `json:"timezone" binding:"required,timezone"`
	SyncEnabled     *bool              `json:"sync_enabled,omitempty"`
}

// UpdateMappingRequest is the request body for PATCH /mappings/:id.
// Omitted fields keep their stored value.
type UpdateMappingRequest struct {
	ProviderVenueID *string             `json:"provider_venue_id,omitempty" binding:"omitempty,max=128,safe_id"`
	Credentials     *CredentialsRequest `json:"credentials,omitempty"`
	Policies        *PoliciesRequest    `json:"policies,omitempty"`
	SeatingTypes    []string            `json:"seating_types,omitempty" binding:"omitempty,dive,safe_id"`
	Timezone        *string             `json:"timezone,omitempty" binding:"omitempty,timezone"`
	SyncEnabled     *bool               `json:"sync_enabled,omitempty"`
}

// MappingResponse is a mapping without its credentials.
type MappingResponse struct {
	ID              string                 `json:"id"`
	VenueID         string                 `json:"venue_id"`
	Provider        string                 `json:"provider"`
	ProviderVenueID string                 `json:"provider_venue_id"`
	Policies        domain.MappingPolicies `json:"policies"`
	SeatingTypes    []string               `json:"seating_types"`
	Timezone        string                 `json:"timezone"`
	SyncEnabled     bool                   `json:"sync_enabled"`
	IsActive        bool                   `json:"is_active"`
	HasCredentials  bool                   `json:"has_credentials"`
	LastSyncAt      *string                `json:"last_sync_at,omitempty"`
	CreatedAt       string                 `json:"created_at"`
	UpdatedAt       string                 `json:"updated_at"`
}

// NewMappingResponse converts a domain mapping for output.
func NewMappingResponse(m *domain.ProviderMapping) MappingResponse {
	seating := m.SeatingTypes
	if seating == nil {
		seating = []string{}
	}
	return MappingResponse{
		ID:              m.ID.String(),
		VenueID:         m.VenueID.String(),
		Provider:        string(m.Provider),
		ProviderVenueID: m.ProviderVenueID,
		Policies:        m.Policies,
		SeatingTypes:    seating,
		Timezone:        m.Timezone,
		SyncEnabled:     m.SyncEnabled,
		IsActive:        m.IsActive,
		HasCredentials:  m.CredentialsEnc != "",
		LastSyncAt:      formatTime(m.LastSyncAt),
		CreatedAt:       m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       m.UpdatedAt.Format(time.RFC3339),
	}
}

// AvailabilityQuery is bound from the availability query string.
type AvailabilityQuery struct {
	Date        string `form:"date" binding:"required,datetime=2006-01-02"`
	PartySize   int    `form:"party_size" binding:"required,gte=1,lte=100"`
	SeatingType string `form:"seating_type" binding:"omitempty,safe_id"`
}

// SyncRequest is the request body for POST /bookings/:id/sync.
type SyncRequest struct {
	Operation string `json:"operation" binding:"required,sync_op"`
}

// ListQuery holds pagination shared by list endpoints.
type ListQuery struct {
	Page     int `form:"page" binding:"omitempty,gte=1"`
	PageSize int `form:"page_size" binding:"omitempty,gte=1,lte=100"`
}

// ExternalReservationListQuery filters a venue's external reservations.
type ExternalReservationListQuery struct {
	ListQuery
	Status   string `form:"status" binding:"omitempty,sync_status"`
	Provider string `form:"provider" binding:"omitempty,provider"`
}

// WebhookEventListQuery filters the webhook event log.
type WebhookEventListQuery struct {
	ListQuery
	Provider string `form:"provider" binding:"omitempty,provider"`
	Status   string `form:"status" binding:"omitempty,oneof=received processing processed failed"`
}

// ListResponse wraps a paginated list.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewListResponse computes the page count for a list.
func NewListResponse[T any](items []T, total int64, page, pageSize int) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return ListResponse[T]{Items: items, Total: total, Page: page, PageSize: pageSize, TotalPages: pages}
}

// WebhookEventResponse is the operator view of a webhook event.
// Stored headers are returned as-is; secrets were redacted on ingest.
type WebhookEventResponse struct {
	ID                 string            `json:"id"`
	Provider           string            `json:"provider"`
	EventID            string            `json:"event_id"`
	EventType          string            `json:"event_type"`
	Payload            any               `json:"payload"`
	Headers            map[string]string `json:"headers"`
	SignatureVerified  bool              `json:"signature_verified"`
	ProcessingStatus   string            `json:"processing_status"`
	ProcessingAttempts int               `json:"processing_attempts"`
	ErrorMessage       *string           `json:"error_message,omitempty"`
	DuplicateCount     int               `json:"duplicate_count"`
	ReceivedAt         string            `json:"received_at"`
	LastReceivedAt     string            `json:"last_received_at"`
	ProcessedAt        *string           `json:"processed_at,omitempty"`
}

// NewWebhookEventResponse converts a stored event for output.
func NewWebhookEventResponse(e *domain.WebhookEvent) WebhookEventResponse {
	return WebhookEventResponse{
		ID:                 e.ID.String(),
		Provider:           string(e.Provider),
		EventID:            e.EventID,
		EventType:          e.EventType,
		Payload:            e.Payload,
		Headers:            e.Headers,
		SignatureVerified:  e.SignatureVerified,
		ProcessingStatus:   string(e.ProcessingStatus),
		ProcessingAttempts: e.ProcessingAttempts,
		ErrorMessage:       e.ErrorMessage,
		DuplicateCount:     e.DuplicateCount,
		ReceivedAt:         e.ReceivedAt.Format(time.RFC3339),
		LastReceivedAt:     e.LastReceivedAt.Format(time.RFC3339),
		ProcessedAt:        formatTime(e.ProcessedAt),
	}
}

// TokenResponse is returned by token issuance.
type TokenResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
