package middleware_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carebridge/carebridge-api/pkg/logger"
	mw "github.com/carebridge/carebridge-api/pkg/middleware"
)

type memoryStore struct {
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string]string)}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	return m.values[key], nil
}

func (m *memoryStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.values[key] = value
	return nil
}

func TestRequestIDGenerated(t *testing.T) {
	handler := mw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated X-Request-ID header")
	}
}

func TestRequestIDPreserved(t *testing.T) {
	handler := mw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("X-Request-ID = %q, want req-123", got)
	}
}

func TestHealthEndpoint(t *testing.T) {
	handler := mw.Health(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/other", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("pass-through status = %d, want 418", rec.Code)
	}
}

func TestRecovererConvertsPanic(t *testing.T) {
	handler := mw.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestIdempotencyReplaysCachedResponse(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	handler := mw.IdempotencyMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"id":%d}`, calls)
	}))

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/book", nil)
	req.Header.Set("Idempotency-Key", "abc-123")
	handler.ServeHTTP(first, req)

	second := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodPost, "/book", nil)
	req2.Header.Set("Idempotency-Key", "abc-123")
	handler.ServeHTTP(second, req2)

	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}
	if second.Body.String() != `{"id":1}` {
		t.Errorf("replayed body = %q", second.Body.String())
	}
}

func TestIdempotencyScopedPerActor(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	handler := mw.IdempotencyMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"id":%d}`, calls)
	}))

	send := func(actorID int64) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/book", nil)
		req.Header.Set("Idempotency-Key", "shared-key")
		ctx := context.WithValue(req.Context(), logger.ActorIDKey, actorID)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req.WithContext(ctx))
		return rec
	}

	first := send(1)
	second := send(2)

	if calls != 2 {
		t.Errorf("handler called %d times, want 2 (keys are per actor)", calls)
	}
	if second.Body.String() == first.Body.String() {
		t.Error("one actor's cached response leaked to another")
	}

	replay := send(1)
	if calls != 2 {
		t.Errorf("handler called %d times after replay, want 2", calls)
	}
	if replay.Body.String() != first.Body.String() {
		t.Errorf("replay body = %q, want %q", replay.Body.String(), first.Body.String())
	}
}

func TestIdempotencySkipsFailedResponses(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	handler := mw.IdempotencyMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusConflict)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/book", nil)
		req.Header.Set("Idempotency-Key", "abc-123")
		handler.ServeHTTP(rec, req)
	}

	if calls != 2 {
		t.Errorf("handler called %d times, want 2 (errors are not cached)", calls)
	}
}

func TestIdempotencyIgnoresRequestsWithoutKey(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	handler := mw.IdempotencyMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/book", nil))
	}

	if calls != 2 {
		t.Errorf("handler called %d times, want 2", calls)
	}
	if len(store.values) != 0 {
		t.Error("nothing should be cached without a key")
	}
}
