package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reservation-sync/internal/core/domain"
	"reservation-sync/internal/core/ports"

	"github.com/rs/zerolog"
)

// maxResponseBytes bounds how much of a provider response is read.
const maxResponseBytes = 1 << 20

// restAdapter implements ports.ProviderAdapter over the normalized REST shape.
type restAdapter struct {
	profile Profile
	baseURL string
	creds   domain.ProviderCredentials
	secret  string
	signer  ports.SignatureService
	client  *http.Client
	log     zerolog.Logger
}

// reservationBody is the normalized outbound reservation payload.
type reservationBody struct {
	VenueID     string `json:"venue_id"`
	Reference   string `json:"reference"`
	GuestName   string `json:"guest_name"`
	GuestEmail  string `json:"guest_email,omitempty"`
	GuestPhone  string `json:"guest_phone,omitempty"`
	PartySize   int    `json:"party_size"`
	StartsAt    string `json:"starts_at"`
	SeatingType string `json:"seating_type,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type availabilityResponse struct {
	Slots []struct {
		ID              string `json:"id"`
		StartsAt        string `json:"starts_at"`
		EndsAt          string `json:"ends_at"`
		Zone            string `json:"zone"`
		MinPartySize    int    `json:"min_party_size"`
		MaxPartySize    int    `json:"max_party_size"`
		Available       int    `json:"available"`
		DepositRequired bool   `json:"deposit_required"`
		DepositAmount   int64  `json:"deposit_amount"`
		MinimumSpend    int64  `json:"minimum_spend"`
	} `json:"slots"`
}

func (a *restAdapter) Provider() domain.Provider { return a.profile.Provider }

func (a *restAdapter) CreateReservation(ctx context.Context, req ports.ReservationRequest) (*ports.ProviderReservation, error) {
	return a.reservationCall(ctx, http.MethodPost, "/reservations", req.IdempotencyKey, a.body(req))
}

func (a *restAdapter) UpdateReservation(ctx context.Context, providerReservationID string, req ports.ReservationRequest) (*ports.ProviderReservation, error) {
	path := "/reservations/" + url.PathEscape(providerReservationID)
	return a.reservationCall(ctx, http.MethodPatch, path, req.IdempotencyKey, a.body(req))
}

func (a *restAdapter) CancelReservation(ctx context.Context, providerReservationID string, idempotencyKey string) (*ports.ProviderReservation, error) {
	path := "/reservations/" + url.PathEscape(providerReservationID)
	var body map[string]any
	if a.profile.IdempotencyHeader == "" {
		body = map[string]any{}
	}
	res, err := a.reservationCall(ctx, http.MethodDelete, path, idempotencyKey, body)
	if err != nil {
		return nil, err
	}
	if res.ProviderReservationID == "" {
		res.ProviderReservationID = providerReservationID
	}
	if res.Status == "" {
		res.Status = "cancelled"
	}
	return res, nil
}

func (a *restAdapter) GetAvailability(ctx context.Context, req ports.AvailabilityRequest) ([]domain.Slot, error) {
	q := url.Values{}
	q.Set("venue_id", req.ProviderVenueID)
	q.Set("date", req.Date)
	q.Set("party_size", strconv.Itoa(req.PartySize))
	if req.SeatingType != "" {
		q.Set("seating_type", req.SeatingType)
	}

	raw, err := a.do(ctx, http.MethodGet, "/availability?"+q.Encode(), "", nil)
	if err != nil {
		return nil, err
	}
	var resp availabilityResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &ports.ProviderError{Provider: a.profile.Provider, Message: "malformed availability response", Err: err}
	}

	slots := make([]domain.Slot, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		start, err := time.Parse(time.RFC3339, s.StartsAt)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, s.EndsAt)
		if err != nil || !end.After(start) {
			continue
		}
		slots = append(slots, domain.Slot{
			Date:            start.Format("2006-01-02"),
			StartTime:       start.Format("15:04"),
			EndTime:         end.Format("15:04"),
			DurationMinutes: int(end.Sub(start) / time.Minute),
			MinPartySize:    s.MinPartySize,
			MaxPartySize:    s.MaxPartySize,
			Zone:            s.Zone,
			DepositRequired: s.DepositRequired,
			DepositAmount:   s.DepositAmount,
			MinimumSpend:    s.MinimumSpend,
			Remaining:       s.Available,
			ProviderSlotID:  s.ID,
		})
	}
	return slots, nil
}

func (a *restAdapter) VerifySignature(headers http.Header, body []byte) (string, bool) {
	sig := strings.TrimSpace(headers.Get(a.profile.SignatureHeader))
	if sig == "" || a.secret == "" {
		return sig, false
	}
	return sig, a.signer.Verify(a.secret, body, sig, a.profile.SignatureEncoding)
}

func (a *restAdapter) body(req ports.ReservationRequest) map[string]any {
	loc := req.Location
	if loc == nil {
		loc = time.UTC
	}
	b := reservationBody{
		VenueID:     req.ProviderVenueID,
		Reference:   req.BookingID.String(),
		GuestName:   req.GuestName,
		GuestEmail:  req.GuestEmail,
		GuestPhone:  req.GuestPhone,
		PartySize:   req.PartySize,
		StartsAt:    req.StartsAt.In(loc).Format(time.RFC3339),
		SeatingType: req.SeatingType,
		Notes:       req.Notes,
	}
	raw, _ := json.Marshal(b)
	out := map[string]any{}
	_ = json.Unmarshal(raw, &out)
	return out
}

func (a *restAdapter) reservationCall(ctx context.Context, method, path, idempotencyKey string, body map[string]any) (*ports.ProviderReservation, error) {
	if body != nil && a.profile.IdempotencyHeader == "" && idempotencyKey != "" {
		body[a.profile.IdempotencyField] = idempotencyKey
	}
	header := ""
	if a.profile.IdempotencyHeader != "" {
		header = idempotencyKey
	}

	var payload any
	if body != nil {
		payload = body
	}
	raw, err := a.do(ctx, method, path, header, payload)
	if err != nil {
		return nil, err
	}
	res := &ports.ProviderReservation{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return res, nil
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, &ports.ProviderError{Provider: a.profile.Provider, Message: "malformed reservation response", Err: err}
	}
	res.Raw = json.RawMessage(raw)
	res.ProviderReservationID = lookupString(doc, a.profile.Response.ID)
	res.ConfirmationNumber = lookupString(doc, a.profile.Response.Confirmation)
	res.Status = lookupString(doc, a.profile.Response.Status)
	return res, nil
}

// do sends one request and classifies failures into *ports.ProviderError.
func (a *restAdapter) do(ctx context.Context, method, path, idempotencyKey string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return nil, &ports.ProviderError{Provider: a.profile.Provider, Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if v := a.profile.AuthValue(a.creds); v != "" {
		req.Header.Set(a.profile.AuthHeader, v)
	}
	if idempotencyKey != "" && a.profile.IdempotencyHeader != "" {
		req.Header.Set(a.profile.IdempotencyHeader, idempotencyKey)
	}

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		msg := "transport error"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "timeout"
		}
		return nil, &ports.ProviderError{Provider: a.profile.Provider, Message: msg, Transient: true, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &ports.ProviderError{Provider: a.profile.Provider, StatusCode: resp.StatusCode, Message: "read response", Transient: true, Err: err}
	}

	a.log.Debug().
		Str("provider", string(a.profile.Provider)).
		Str("method", method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("provider call")

	if resp.StatusCode >= 300 {
		return nil, &ports.ProviderError{
			Provider:   a.profile.Provider,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw, resp.StatusCode),
			Transient:  ports.IsTransientStatus(resp.StatusCode),
		}
	}
	return raw, nil
}

// errorMessage extracts a readable message from a provider error body.
func errorMessage(raw []byte, status int) string {
	if doc, err := decodeDocument(raw); err == nil {
		for _, p := range []string{"message", "error.message", "error", "detail", "errors.0.message"} {
			if s := lookupString(doc, p); s != "" {
				return s
			}
		}
	}
	return http.StatusText(status)
}
