package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-backend/api/responses"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/storefront-backend/pkg/redis"
)

const (
	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 7 * 24 * time.Hour
	// inFlightTTL bounds how long a crashed request can hold its key.
	inFlightTTL          = 30 * time.Second
	maxIdempotencyKeyLen = 255

	idempotencyHeader = "Idempotency-Key"

	recordPending  = "pending"
	recordComplete = "complete"

	// ReplayHeader marks a response served from the idempotency store.
	ReplayHeader = "Idempotent-Replayed"
)

// idempotencyRoutes maps "METHOD pattern" to how long a response is kept.
var idempotencyRoutes = map[string]time.Duration{
	http.MethodPost + " /api/v1/auth/register":    defaultIdempotencyTTL,
	http.MethodPost + " /api/v1/admin/products":   defaultIdempotencyTTL,
	http.MethodPost + " /api/v1/admin/categories": defaultIdempotencyTTL,
	// Checkout decrements stock, so replays are honoured for a full week.
	http.MethodPost + " /api/v1/orders": criticalIdempotencyTTL,
}

type idempotencyStore interface {
	pkgredis.IdempotencyStore
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type idempotencyRecord struct {
	State       string            `json:"state"`
	Status      int               `json:"status,omitempty"`
	Body        string            `json:"body,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency makes the configured POST routes safe to retry. The first
// request reserves its key before reaching the handler, a concurrent
// duplicate is rejected while it runs, and later duplicates get the stored
// response. Server errors release the key so the client can retry.
func Idempotency(store idempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, ok := routeTTL(r.Method, routePattern(r))
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			idempotencyKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if idempotencyKey == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}
			if len(idempotencyKey) > maxIdempotencyKeyLen {
				responses.WriteError(ctx, logg, w, pkgerrors.Newf(pkgerrors.CodeValidation, "Idempotency-Key must be at most %d characters", maxIdempotencyKeyLen))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unable to read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			key := store.IdempotencyKey(buildScope(r), idempotencyKey)

			pending, err := json.Marshal(idempotencyRecord{State: recordPending, RequestHash: requestHash})
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode idempotency record"))
				return
			}
			reserved, err := store.SetNX(ctx, key, string(pending), inFlightTTL)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key"))
				return
			}
			if !reserved {
				replayExisting(ctx, logg, w, store, key, requestHash)
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := defaultStatus(rec.status)
			if status >= http.StatusInternalServerError {
				if delErr := store.Del(ctx, key); delErr != nil {
					logError(ctx, logg, "release idempotency key", delErr)
				}
				return
			}

			record := idempotencyRecord{
				State:       recordComplete,
				Status:      status,
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				RequestHash: requestHash,
			}
			if ct := rec.Header().Get("Content-Type"); ct != "" {
				record.Headers = map[string]string{"Content-Type": ct}
			}
			payload, err := json.Marshal(record)
			if err != nil {
				logError(ctx, logg, "marshal idempotency record", err)
				return
			}
			if err := store.Set(ctx, key, string(payload), ttl); err != nil {
				logError(ctx, logg, "persist idempotency record", err)
			}
		})
	}
}

func replayExisting(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, store idempotencyStore, key, requestHash string) {
	stored, err := store.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		// The holder released the key between our SetNX and Get.
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "request with this Idempotency-Key is being retried, please retry"))
		return
	}
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
		return
	}
	record, err := decodeRecord(stored)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	if record.RequestHash != requestHash {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
		return
	}
	if record.State != recordComplete {
		w.Header().Set("Retry-After", "1")
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "a request with this Idempotency-Key is still in progress").
			WithDetails(map[string]any{"in_progress": true}))
		return
	}
	writeStoredResponse(w, record)
}

func buildScope(r *http.Request) string {
	parts := []string{
		UserIDFromContext(r.Context()),
		r.Method,
		r.URL.Path,
	}
	return strings.Join(parts, "|")
}

func decodeRecord(payload string) (*idempotencyRecord, error) {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func writeStoredResponse(w http.ResponseWriter, record *idempotencyRecord) {
	if ct, ok := record.Headers["Content-Type"]; ok && ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set(ReplayHeader, "true")
	w.WriteHeader(defaultStatus(record.Status))
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func defaultStatus(value int) int {
	if value == 0 {
		return http.StatusOK
	}
	return value
}

func routePattern(r *http.Request) string {
	if r == nil {
		return ""
	}
	// Group level middleware only sees a partial pattern ending in "/*".
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		if pattern := ctx.RoutePattern(); pattern != "" && !strings.HasSuffix(pattern, "*") {
			return pattern
		}
	}
	return r.URL.Path
}

func routeTTL(method, pattern string) (time.Duration, bool) {
	if pattern == "" {
		return 0, false
	}
	if len(pattern) > 1 {
		pattern = strings.TrimSuffix(pattern, "/")
	}
	ttl, ok := idempotencyRoutes[method+" "+pattern]
	return ttl, ok
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
