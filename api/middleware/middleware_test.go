package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type recordedObservation struct {
	method string
	route  string
	status int
}

type fakeObserver struct {
	seen []recordedObservation
}

func (f *fakeObserver) Observe(method, route string, status int, _ time.Duration) {
	f.seen = append(f.seen, recordedObservation{method: method, route: route, status: status})
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	observer := &fakeObserver{}
	r := chi.NewRouter()
	r.Use(Metrics(observer))
	r.Get("/api/v1/orders/{orderId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/123", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	if len(observer.seen) != 1 {
		t.Fatalf("expected one observation, got %d", len(observer.seen))
	}
	got := observer.seen[0]
	if got.route != "/api/v1/orders/{orderId}" || got.status != http.StatusTeapot || got.method != http.MethodGet {
		t.Fatalf("unexpected observation %+v", got)
	}
}

func TestRecovererReturns500(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestRequestIDEchoesHeader(t *testing.T) {
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-123")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if got := resp.Header().Get(requestIDHeader); got != "req-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestRequestIDReplacesUnsafeHeader(t *testing.T) {
	var seen string
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "bad id\nwith newline")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	got := resp.Header().Get(requestIDHeader)
	if got == "bad id\nwith newline" || got == "" {
		t.Fatalf("expected a generated id, got %q", got)
	}
	if seen != got {
		t.Fatalf("context id %q does not match header %q", seen, got)
	}
}

func TestRecovererReraisesAbort(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Fatalf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestLoggingRecordsDefaultStatus(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	_, _ = rec.Write([]byte("ok"))
	if rec.status != http.StatusOK {
		t.Fatalf("expected implicit 200, got %d", rec.status)
	}
	if rec.bytes != 2 {
		t.Fatalf("expected 2 bytes counted, got %d", rec.bytes)
	}
}
