package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// tableCheckStub mimics the TableCheck partner API closely enough for the
// REST adapter: bearer-less API key auth, Idempotency-Key dedupe and the
// nested reservation response document.
type tableCheckStub struct {
	mu       sync.Mutex
	apiKey   string
	byKey    map[string]string
	seq      int
	created  int
	calls    []string
	keys     []string
	failNext int
}

func newTableCheckStub(apiKey string) *tableCheckStub {
	return &tableCheckStub{apiKey: apiKey, byKey: make(map[string]string)}
}

func (p *tableCheckStub) failNextCalls(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failNext = n
}

func (p *tableCheckStub) createdCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}

// idempotencyKeys lists the key of every keyed call, failed ones included.
func (p *tableCheckStub) idempotencyKeys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

func (p *tableCheckStub) callLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *tableCheckStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != p.apiKey {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid api key"})
		return
	}

	p.mu.Lock()
	p.calls = append(p.calls, r.Method+" "+r.URL.Path)
	if k := r.Header.Get("Idempotency-Key"); k != "" {
		p.keys = append(p.keys, k)
	}
	if p.failNext > 0 {
		p.failNext--
		p.mu.Unlock()
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "maintenance window"})
		return
	}
	p.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/availability":
		date := r.URL.Query().Get("date")
		writeJSON(w, http.StatusOK, map[string]any{
			"slots": []map[string]any{{
				"id":             "slot-1800",
				"starts_at":      date + "T18:00:00+07:00",
				"ends_at":        date + "T19:30:00+07:00",
				"zone":           "main",
				"min_party_size": 1,
				"max_party_size": 6,
				"available":      3,
			}},
		})
	case r.Method == http.MethodPost && r.URL.Path == "/reservations":
		key := r.Header.Get("Idempotency-Key")
		p.mu.Lock()
		id, ok := p.byKey[key]
		if !ok {
			p.seq++
			p.created++
			id = fmt.Sprintf("tc-%d", p.seq)
			p.byKey[key] = id
		}
		p.mu.Unlock()
		writeJSON(w, http.StatusCreated, reservationDoc(id, "booked"))
	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/reservations/"):
		writeJSON(w, http.StatusOK, reservationDoc(strings.TrimPrefix(r.URL.Path, "/reservations/"), "booked"))
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/reservations/"):
		writeJSON(w, http.StatusOK, reservationDoc(strings.TrimPrefix(r.URL.Path, "/reservations/"), "cancelled"))
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
	}
}

func reservationDoc(id, status string) map[string]any {
	return map[string]any{
		"reservation": map[string]any{
			"id":     id,
			"ref":    "REF-" + id,
			"status": status,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
