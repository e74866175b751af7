// Package enums holds the closed string sets stored in the database and
// accepted over the wire.
package enums

import (
	"fmt"
	"slices"
	"strings"
)

// parse matches raw against valid after trimming and case folding with fold.
// A blank raw returns fallback when it is set.
func parse[T ~string](raw, kind string, valid []T, fold func(string) string, fallback T) (T, error) {
	normalized := fold(strings.TrimSpace(raw))
	if normalized == "" && fallback != "" {
		return fallback, nil
	}
	if v := T(normalized); slices.Contains(valid, v) {
		return v, nil
	}
	return "", fmt.Errorf("invalid %s %q", kind, raw)
}
