package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"capworks/internal/transport/http/api"
)

const IdempotencyHeader = "Idempotency-Key"

var ErrIdempotencyConflict = errors.New("idempotency key conflicts with existing request")

type storedResponse struct {
	requestHash string
	status      int
	contentType string
	body        []byte
	expires     time.Time
}

// IdempotencyStore remembers successful responses per endpoint and key for
// a limited time.
type IdempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]storedResponse
	now     func() time.Time
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{ttl: ttl, entries: map[string]storedResponse{}, now: time.Now}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func (s *IdempotencyStore) check(endpoint, key, requestHash string) (storedResponse, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[endpoint+"|"+key]
	if !ok {
		return storedResponse{}, false, nil
	}
	if s.now().After(entry.expires) {
		delete(s.entries, endpoint+"|"+key)
		return storedResponse{}, false, nil
	}
	if entry.requestHash != requestHash {
		return storedResponse{}, false, ErrIdempotencyConflict
	}
	return entry, true, nil
}

func (s *IdempotencyStore) save(endpoint, key string, entry storedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.expires = s.now().Add(s.ttl)
	s.entries[endpoint+"|"+key] = entry
}

type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	c.buf.Write(b)
	return c.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a POST repeats an
// Idempotency-Key with the same body. A different body under the same key is
// refused with 409. Requests without the header pass through.
func Idempotency(store *IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if store == nil || key == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				api.Fail(w, http.StatusBadRequest, "invalid_payload", "unable to read request body", GetRequestID(r.Context()))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			endpoint := r.Method + " " + r.URL.Path
			hash := RequestHash(body)
			stored, found, err := store.check(endpoint, key, hash)
			if errors.Is(err, ErrIdempotencyConflict) {
				api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), GetRequestID(r.Context()))
				return
			}
			if found {
				w.Header().Set("Content-Type", stored.contentType)
				w.Header().Set("Idempotent-Replay", "true")
				w.WriteHeader(stored.status)
				_, _ = w.Write(stored.body)
				return
			}

			capture := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)
			if capture.status < 300 {
				store.save(endpoint, key, storedResponse{
					requestHash: hash,
					status:      capture.status,
					contentType: capture.Header().Get("Content-Type"),
					body:        capture.buf.Bytes(),
				})
			}
		})
	}
}
