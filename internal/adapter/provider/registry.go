package provider

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"reservation-sync/internal/core/domain"
	"reservation-sync/internal/core/ports"

	"github.com/rs/zerolog"
)

// Endpoint is the configured API root and webhook secret of one provider.
type Endpoint struct {
	BaseURL       string
	WebhookSecret string
}

// Registry implements ports.AdapterFactory by selecting a profile from the provider.
type Registry struct {
	profiles  map[domain.Provider]Profile
	endpoints map[domain.Provider]Endpoint
	signer    ports.SignatureService
	client    *http.Client
	log       zerolog.Logger
}

// NewRegistry creates a Registry. Providers without an endpoint have no adapter.
// timeout bounds each HTTP call in addition to the caller's context.
func NewRegistry(endpoints map[domain.Provider]Endpoint, signer ports.SignatureService, timeout time.Duration, log zerolog.Logger) *Registry {
	return &Registry{
		profiles:  Profiles(),
		endpoints: endpoints,
		signer:    signer,
		client:    &http.Client{Timeout: timeout},
		log:       log,
	}
}

// ForMapping returns an adapter authenticated with the mapping's credentials.
func (r *Registry) ForMapping(m *domain.ProviderMapping, creds domain.ProviderCredentials) (ports.ProviderAdapter, error) {
	return r.build(m.Provider, creds)
}

// ForProvider returns an adapter for webhook verification and decoding.
func (r *Registry) ForProvider(p domain.Provider) (ports.ProviderAdapter, error) {
	return r.build(p, domain.ProviderCredentials{})
}

func (r *Registry) build(p domain.Provider, creds domain.ProviderCredentials) (*restAdapter, error) {
	profile, ok := r.profiles[p]
	if !ok {
		return nil, fmt.Errorf("no adapter for provider %q", p)
	}
	ep, ok := r.endpoints[p]
	if !ok || ep.BaseURL == "" {
		return nil, fmt.Errorf("provider %q is not configured", p)
	}
	return &restAdapter{
		profile: profile,
		baseURL: strings.TrimRight(ep.BaseURL, "/"),
		creds:   creds,
		secret:  ep.WebhookSecret,
		signer:  r.signer,
		client:  r.client,
		log:     r.log,
	}, nil
}
