package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"capworks/internal/platform/metrics"
	"capworks/internal/requestctx"
)

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func TestRequestIDGeneratesAndPropagates(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rec.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("expected generated id in context and header, got %q / %q", seen, rec.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-supplied")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "client-supplied" {
		t.Fatalf("expected client id to be kept, got %q", seen)
	}
}

func TestLoggerRecordsRequests(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	collector := metrics.New()
	h := RequestID(Logger(zap.New(core), collector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestctx.Logger(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/cap-types", nil))

	entries := logs.FilterMessage("request completed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one request log, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["status"] != int64(http.StatusTeapot) || ctx["path"] != "/api/v1/cap-types" || ctx["requestId"] == "" {
		t.Fatalf("unexpected log fields: %v", ctx)
	}
	if logs.FilterMessage("inside handler").Len() != 1 {
		t.Fatal("expected handler to log through the request logger")
	}
	if got := collector.Snapshot()["clientErrorsTotal"].(uint64); got != 1 {
		t.Fatalf("expected metrics to record the request, got %d", got)
	}
}

func TestRecovererReturns500(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "internal_error") {
		t.Fatalf("expected 500 envelope, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestBodyLimit(t *testing.T) {
	h := BodyLimit(8)(http.HandlerFunc(noContent))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64))))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected GET to pass, got %d", rec.Code)
	}
}

func TestSecureHeaders(t *testing.T) {
	h := SecureHeaders(true)(http.HandlerFunc(noContent))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/wages", nil))
	for _, header := range []string{"X-Content-Type-Options", "X-Frame-Options", "Strict-Transport-Security", "Cache-Control"} {
		if rec.Header().Get(header) == "" {
			t.Fatalf("expected %s to be set", header)
		}
	}

	rec = httptest.NewRecorder()
	SecureHeaders(false)(http.HandlerFunc(noContent)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Header().Get("Strict-Transport-Security") != "" || rec.Header().Get("Cache-Control") != "" {
		t.Fatal("expected no HSTS or cache header outside production api paths")
	}
}

func TestRateLimitByIP(t *testing.T) {
	limited := RateLimit(1, time.Minute)(http.HandlerFunc(noContent))

	first := httptest.NewRequest(http.MethodPost, "/api/v1/workers", nil)
	first.RemoteAddr = "203.0.113.10:4444"
	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, first)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/workers", nil)
	second.RemoteAddr = "203.0.113.10:5555"
	rec = httptest.NewRecorder()
	limited.ServeHTTP(rec, second)
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected second request to be throttled, got %d", rec.Code)
	}

	other := httptest.NewRequest(http.MethodPost, "/api/v1/workers", nil)
	other.RemoteAddr = "198.51.100.7:1111"
	rec = httptest.NewRecorder()
	limited.ServeHTTP(rec, other)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected a different client to pass, got %d", rec.Code)
	}
}

func TestRateLimitWindowReset(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limited := RateLimit(1, time.Minute, withClock(func() time.Time { return now }))(http.HandlerFunc(noContent))

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.20:1111"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}
	if send() != http.StatusNoContent || send() != http.StatusTooManyRequests {
		t.Fatal("expected second request in window to be throttled")
	}
	now = now.Add(61 * time.Second)
	if code := send(); code != http.StatusNoContent {
		t.Fatalf("expected reset after window, got %d", code)
	}
}

func TestRateLimitCustomKey(t *testing.T) {
	limited := RateLimit(1, time.Minute, WithKeyFunc(func(r *http.Request) string {
		return r.Header.Get("X-Device")
	}))(http.HandlerFunc(noContent))

	for i, device := range []string{"a", "b"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Device", device)
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: expected pass, got %d", i, rec.Code)
		}
	}
}

func TestRequestHashDeterministic(t *testing.T) {
	if RequestHash([]byte("payload")) != RequestHash([]byte("payload")) {
		t.Fatal("expected deterministic hash")
	}
	if RequestHash([]byte("payload")) == RequestHash([]byte("other")) {
		t.Fatal("expected different hash for different payload")
	}
}

func TestIdempotencyReplaysAndConflicts(t *testing.T) {
	calls := 0
	h := Idempotency(NewIdempotencyStore(time.Hour))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"p1"}`))
	}))

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewBufferString(body))
		req.Header.Set(IdempotencyHeader, "key-1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := send(`{"amount":1}`)
	replay := send(`{"amount":1}`)
	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if replay.Code != http.StatusCreated || replay.Body.String() != first.Body.String() || replay.Header().Get("Idempotent-Replay") != "true" {
		t.Fatalf("unexpected replay: %d %s", replay.Code, replay.Body.String())
	}
	if conflict := send(`{"amount":2}`); conflict.Code != http.StatusConflict {
		t.Fatalf("expected 409 for reused key, got %d", conflict.Code)
	}
}

func TestIdempotencyWithoutKeyPassesThrough(t *testing.T) {
	calls := 0
	h := Idempotency(NewIdempotencyStore(0))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))
	for i := 0; i < 2; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`)))
	}
	if calls != 2 {
		t.Fatalf("expected both requests handled, got %d", calls)
	}
}
