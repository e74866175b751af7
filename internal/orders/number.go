package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// newOrderNumber renders a human-readable reference such as SF-20260301-9F2C41A7.
func newOrderNumber(now time.Time, id uuid.UUID) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
	return "SF-" + now.UTC().Format("20060102") + "-" + suffix
}
