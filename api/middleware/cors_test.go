package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

func preflight(t *testing.T, cfg config.CORSConfig, origin string) *httptest.ResponseRecorder {
	t.Helper()
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	cfg := config.CORSConfig{
		AllowedOrigins:   []string{" https://shop.example.com/ "},
		AllowCredentials: true,
		MaxAge:           time.Minute,
	}

	rec := preflight(t, cfg, "https://shop.example.com")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example.com" {
		t.Fatalf("expected origin echoed, got %q", got)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("expected credentials allowed")
	}

	rec = preflight(t, cfg, "https://evil.example.com")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected origin %q", got)
	}
}

func TestCORSWildcardDropsCredentials(t *testing.T) {
	rec := preflight(t, config.CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true}, "https://any.example.com")
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("wildcard should allow any origin")
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Fatalf("credentials must be off for wildcard origins")
	}
}
