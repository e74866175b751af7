package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/internal/users"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// maxRateLimitBody bounds how much of the body is buffered to find the email.
const maxRateLimitBody = 64 << 10

type rateLimiterStore interface {
	FixedWindow(ctx context.Context, scope string, limit int64, window time.Duration) (redis.RateWindow, error)
}

// RateLimitPolicy throttles one route. Each scope counts separately and a
// zero limit turns that scope off. The user scope only applies behind Auth.
type RateLimitPolicy struct {
	Name       string
	Window     time.Duration
	IPLimit    int
	EmailLimit int
	UserLimit  int
}

func (p RateLimitPolicy) enabled() bool {
	return p.Window > 0 && (p.IPLimit > 0 || p.EmailLimit > 0 || p.UserLimit > 0)
}

func (p RateLimitPolicy) name() string {
	if name := strings.ToLower(strings.TrimSpace(p.Name)); name != "" {
		return name
	}
	return "default"
}

type rateCheck struct {
	scope string
	value string
	limit int
}

// RateLimit enforces the policy with fixed-window counters in Redis. A
// blocked request gets 429 with a Retry-After header.
func RateLimit(policy RateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			checks := make([]rateCheck, 0, 3)
			if policy.IPLimit > 0 {
				if ip := clientIP(r); ip != "" {
					checks = append(checks, rateCheck{scope: "ip", value: ip, limit: policy.IPLimit})
				}
			}
			if policy.UserLimit > 0 {
				if userID := UserIDFromContext(ctx); userID != "" {
					checks = append(checks, rateCheck{scope: "user", value: userID, limit: policy.UserLimit})
				}
			}
			if policy.EmailLimit > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxRateLimitBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unable to read request body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				if email := users.NormalizeEmail(extractEmail(body)); email != "" {
					checks = append(checks, rateCheck{scope: "email", value: hashValue(email), limit: policy.EmailLimit})
				}
			}

			for _, check := range checks {
				scope := policy.name() + ":" + check.scope + ":" + check.value
				win, err := store.FixedWindow(ctx, scope, int64(check.limit), policy.Window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting unavailable"))
					return
				}
				if !win.Allowed() {
					respondRateLimited(ctx, logg, w, policy, check, win)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy RateLimitPolicy, check rateCheck, win redis.RateWindow) {
	retryAfter := int(math.Ceil(win.ResetIn.Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{
			"policy":   policy.name(),
			"scope":    check.scope,
			"attempts": win.Count,
			"limit":    check.limit,
		})
		logg.Warn(logCtx, "rate_limit.blocked")
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	err := pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests, please slow down").
		WithDetails(map[string]any{
			"scope":               check.scope,
			"retry_after_seconds": retryAfter,
		})
	responses.WriteError(ctx, nil, w, err)
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func extractEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Email
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
