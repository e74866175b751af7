package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// memIdempotency is an in-memory stand-in for the Redis idempotency store.
type memIdempotency struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeStore() *memIdempotency {
	return &memIdempotency{data: map[string]string{}}
}

func (m *memIdempotency) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memIdempotency) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.data[key]; taken {
		return false, nil
	}
	m.data[key], _ = value.(string)
	return true, nil
}

func (m *memIdempotency) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key], _ = value.(string)
	return nil
}

func (m *memIdempotency) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memIdempotency) IdempotencyKey(scope, id string) string {
	return "mem:" + scope + ":" + id
}

func requestWithPattern(method, url, pattern string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, url, body)
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

// keyedPost builds a POST routed at path carrying an Idempotency-Key.
func keyedPost(path, key, body string) *http.Request {
	req := requestWithPattern(http.MethodPost, path, path, strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouteTTLSelection(t *testing.T) {
	tests := []struct {
		method, pattern string
		want            time.Duration
		ok              bool
	}{
		{http.MethodPost, "/api/v1/orders", criticalIdempotencyTTL, true},
		{http.MethodPost, "/api/v1/orders/", criticalIdempotencyTTL, true},
		{http.MethodPost, "/api/v1/auth/register", defaultIdempotencyTTL, true},
		{http.MethodPost, "/api/v1/admin/products", defaultIdempotencyTTL, true},
		{http.MethodGet, "/api/v1/orders", 0, false},
		{http.MethodPost, "/api/v1/auth/login", 0, false},
	}
	for _, tt := range tests {
		ttl, ok := routeTTL(tt.method, tt.pattern)
		if ok != tt.ok || (ok && ttl != tt.want) {
			t.Fatalf("%s %s: got (%v, %v), want (%v, %v)", tt.method, tt.pattern, ttl, ok, tt.want, tt.ok)
		}
	}
}

func TestIdempotencyMiddlewareRequiresHeader(t *testing.T) {
	reached := false
	h := Idempotency(newFakeStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	rec := serve(h, keyedPost("/api/v1/auth/register", "", `{"email":"a@b.co"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if reached {
		t.Fatalf("handler ran without an idempotency key")
	}
}

func TestIdempotencyMiddlewareReplaysStoredResponse(t *testing.T) {
	var calls int
	h := Idempotency(newFakeStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"u-1"}`))
	}))

	first := serve(h, keyedPost("/api/v1/auth/register", "reg-1", `{"email":"a@b.co"}`))
	if first.Code != http.StatusCreated || first.Header().Get(ReplayHeader) != "" {
		t.Fatalf("unexpected first response %d replay=%q", first.Code, first.Header().Get(ReplayHeader))
	}

	again := serve(h, keyedPost("/api/v1/auth/register", "reg-1", `{"email":"a@b.co"}`))
	switch {
	case again.Code != http.StatusCreated:
		t.Fatalf("expected replayed 201, got %d", again.Code)
	case again.Header().Get("Content-Type") != "application/json":
		t.Fatalf("content type not replayed")
	case strings.TrimSpace(again.Body.String()) != `{"id":"u-1"}`:
		t.Fatalf("unexpected replay body %s", again.Body.String())
	case again.Header().Get(ReplayHeader) != "true":
		t.Fatalf("expected %s header", ReplayHeader)
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
}

func TestIdempotencyMiddlewareRejectsInFlightDuplicate(t *testing.T) {
	var h http.Handler
	var calls int
	h = Idempotency(newFakeStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// The duplicate lands while the first checkout is still running.
			dup := serve(h, keyedPost("/api/v1/orders", "checkout-1", `{"payment_method":"COD"}`))
			if dup.Code != http.StatusConflict || dup.Header().Get("Retry-After") == "" {
				t.Errorf("expected 409 with Retry-After, got %d %q", dup.Code, dup.Header().Get("Retry-After"))
			}
		}
		w.WriteHeader(http.StatusCreated)
	}))

	if rec := serve(h, keyedPost("/api/v1/orders", "checkout-1", `{"payment_method":"COD"}`)); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
}

func TestIdempotencyMiddlewareReleasesKeyOnServerError(t *testing.T) {
	var calls int
	h := Idempotency(newFakeStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	serve(h, keyedPost("/api/v1/orders", "retry-me", `{}`))
	if rec := serve(h, keyedPost("/api/v1/orders", "retry-me", `{}`)); rec.Code != http.StatusCreated {
		t.Fatalf("expected retry to succeed, got %d", rec.Code)
	}
	if calls != 2 {
		t.Fatalf("expected retry after server error to reach the handler, got %d calls", calls)
	}
}

func TestIdempotencyMiddlewareRejectsLongKey(t *testing.T) {
	h := Idempotency(newFakeStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run")
	}))
	rec := serve(h, keyedPost("/api/v1/orders", strings.Repeat("k", maxIdempotencyKeyLen+1), `{}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestIdempotencyMiddlewareDetectsBodyChange(t *testing.T) {
	h := Idempotency(newFakeStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	serve(h, keyedPost("/api/v1/auth/register", "reg-2", `{"email":"a@b.co"}`))
	rec := serve(h, keyedPost("/api/v1/auth/register", "reg-2", `{"email":"c@d.co"}`))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec.Body.Bytes()); code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected %s, got %s", pkgerrors.CodeIdempotency, code)
	}
}

func TestRoutePatternFallsBackForGroupWildcard(t *testing.T) {
	req := requestWithPattern(http.MethodPost, "/api/v1/orders", "/api/v1/*", nil)
	if got := routePattern(req); got != "/api/v1/orders" {
		t.Fatalf("expected request path, got %s", got)
	}
}

func TestIdempotencyScopesByUser(t *testing.T) {
	var calls int
	h := Idempotency(newFakeStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for _, user := range []string{"user-a", "user-b"} {
		req := keyedPost("/api/v1/orders", "same", `{}`)
		serve(h, req.WithContext(WithUserID(req.Context(), user)))
	}
	if calls != 2 {
		t.Fatalf("expected both users to reach the handler, got %d calls", calls)
	}
}
