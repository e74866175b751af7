package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/go-chi/cors"
)

// CORS applies the browser origin policy from cfg. A wildcard origin turns
// credentialed requests off since browsers refuse that combination.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := make([]string, 0, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
			origins = append(origins, origin)
		}
	}
	credentials := cfg.AllowCredentials && !slices.Contains(origins, "*")

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", idempotencyHeader, requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, ReplayHeader, "Retry-After"},
		AllowCredentials: credentials,
		MaxAge:           int(cfg.MaxAge.Seconds()),
	}).Handler
}
