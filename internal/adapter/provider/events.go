package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"reservation-sync/internal/core/domain"
)

// MapWebhookEvent decodes a webhook payload with the provider's event schema.
// Unrecognised event types map to EventKindUnknown.
func (a *restAdapter) MapWebhookEvent(body []byte) (*domain.ProviderEvent, error) {
	doc, err := decodeDocument(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s webhook: %w", a.profile.Provider, err)
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, fmt.Errorf("decode %s webhook: payload is not an object", a.profile.Provider)
	}

	s := a.profile.Events
	evt := &domain.ProviderEvent{
		EventID:               lookupString(doc, s.EventID),
		EventType:             lookupString(doc, s.EventType),
		ProviderReservationID: lookupString(doc, s.ReservationID),
		ProviderVenueID:       lookupString(doc, s.VenueID),
		IdempotencyKey:        lookupString(doc, s.IdempotencyKey),
		BookingReference:      lookupString(doc, s.Reference),
		ProviderStatus:        lookupString(doc, s.Status),
		ConfirmationNumber:    lookupString(doc, s.Confirmation),
		Kind:                  domain.EventKindUnknown,
	}
	if kind, ok := s.Kinds[evt.EventType]; ok {
		evt.Kind = kind
	}
	if ts := lookupString(doc, s.OccurredAt); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			evt.OccurredAt = &t
		}
	}
	return evt, nil
}

// decodeDocument decodes JSON for lookupString. Numbers stay json.Number so
// large numeric ids keep every digit.
func decodeDocument(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// lookupString walks a dotted path ("data.reservation.id", "errors.0.message")
// through decoded JSON and renders the leaf as a string.
func lookupString(doc any, path string) string {
	if path == "" {
		return ""
	}
	cur := doc
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			cur = node[part]
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return ""
			}
			cur = node[i]
		default:
			return ""
		}
	}
	switch v := cur.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
