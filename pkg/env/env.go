// Package env reads process environment values that live outside the
// envconfig-managed Config, such as platform-injected PORT.
package env

import (
	"os"
	"strings"
)

// Get returns the first non-blank value among keys, or fallback.
func Get(fallback string, keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return fallback
}
