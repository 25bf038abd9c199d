package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProviderMapping binds a venue to one provider account.
// At most one active mapping exists per (venue, provider).
type ProviderMapping struct {
	ID              uuid.UUID       `json:"id"`
	VenueID         uuid.UUID       `json:"venue_id"`
	Provider        Provider        `json:"provider"`
	ProviderVenueID string          `json:"provider_venue_id"`
	CredentialsEnc  string          `json:"-"` // AES-256-GCM encrypted ProviderCredentials JSON
	Policies        MappingPolicies `json:"policies"`
	SeatingTypes    []string        `json:"seating_types"`
	Timezone        string          `json:"timezone"` // IANA name
	SyncEnabled     bool            `json:"sync_enabled"`
	IsActive        bool            `json:"is_active"`
	LastSyncAt      *time.Time      `json:"last_sync_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CanSync returns true if outbound calls may be made through this mapping.
func (m *ProviderMapping) CanSync() bool {
	return m.IsActive && m.SyncEnabled
}

// Location resolves the mapping timezone, defaulting to UTC.
func (m *ProviderMapping) Location() *time.Location {
	if m.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(m.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MappingPolicies is the venue's provider-facing policy blob.
type MappingPolicies struct {
	CancellationWindowHours int    `json:"cancellation_window_hours,omitempty"`
	DepositRequired         bool   `json:"deposit_required,omitempty"`
	DepositAmount           int64  `json:"deposit_amount,omitempty"` // smallest currency unit
	Currency                string `json:"currency,omitempty"`
}

// ProviderCredentials is the plaintext form of a mapping's API credentials.
// It is only ever held in memory; storage sees the encrypted JSON.
type ProviderCredentials struct {
	APIKey      string `json:"api_key,omitempty"`
	APISecret   string `json:"api_secret,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	ClientID    string `json:"client_id,omitempty"`
}

// Merge overlays the non-empty fields of patch onto c.
// An empty field in patch never clears a stored value.
func (c ProviderCredentials) Merge(patch ProviderCredentials) ProviderCredentials {
	out := c
	if patch.APIKey != "" {
		out.APIKey = patch.APIKey
	}
	if patch.APISecret != "" {
		out.APISecret = patch.APISecret
	}
	if patch.AccessToken != "" {
		out.AccessToken = patch.AccessToken
	}
	if patch.ClientID != "" {
		out.ClientID = patch.ClientID
	}
	return out
}

// IsEmpty returns true if no credential field is set.
func (c ProviderCredentials) IsEmpty() bool {
	return c == ProviderCredentials{}
}
