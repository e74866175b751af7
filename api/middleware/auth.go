package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-backend/api/responses"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const bearerScheme = "bearer"

// Auth admits requests carrying a valid access token whose session is still
// live, then seeds the context with the caller's user id and role.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(r.Context(), cfg, verifier, BearerToken(r))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			userID := claims.UserID.String()
			ctx := WithRole(WithUserID(r.Context(), userID), string(claims.Role))
			if logg != nil {
				ctx = logg.WithActorRole(logg.WithUserID(ctx, userID), string(claims.Role))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(ctx context.Context, cfg config.JWTConfig, verifier session.AccessSessionChecker, token string) (*pkgAuth.AccessTokenClaims, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if !claims.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown role")
	}

	if verifier == nil {
		return claims, nil
	}
	live, err := verifier.HasSession(ctx, claims.ID)
	switch {
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
	case !live:
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
	}
	return claims, nil
}

// BearerToken returns the credential of an "Authorization: Bearer <token>"
// header. Other schemes yield an empty string.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return ""
	}
	return strings.TrimSpace(token)
}
