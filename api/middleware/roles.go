package middleware

import (
	"net/http"
	"slices"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// RequireRole admits only callers whose authenticated role is one of allowed.
// It must run after Auth.
func RequireRole(logg *logger.Logger, allowed ...enums.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := enums.ParseRole(RoleFromContext(r.Context()))
			if err != nil || !slices.Contains(allowed, role) {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeForbidden, "role required").
						WithDetails(map[string]any{"allowed": allowed}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
