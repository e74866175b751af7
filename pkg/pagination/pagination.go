// Package pagination implements keyset paging over (created_at, id), newest
// first. Cursors are opaque to clients.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ErrInvalidCursor is returned for cursors this package did not produce.
var ErrInvalidCursor = errors.New("invalid cursor")

// Params are the raw paging inputs taken from a request.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor identifies the last row of the previous page.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

type wireCursor struct {
	At int64     `json:"t"`
	ID uuid.UUID `json:"id"`
}

// NormalizeLimit clamps limit into [1, MaxLimit], defaulting non-positive
// values to DefaultLimit.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer fetches one extra row so Trim can tell whether a next page exists.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

func EncodeCursor(c Cursor) string {
	raw, _ := json.Marshal(wireCursor{At: c.CreatedAt.UnixNano(), ID: c.ID})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// ParseCursor decodes value; a blank value means the first page and yields nil.
func ParseCursor(value string) (*Cursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	var wc wireCursor
	if err := json.Unmarshal(raw, &wc); err != nil || wc.At <= 0 || wc.ID == uuid.Nil {
		return nil, ErrInvalidCursor
	}
	return &Cursor{CreatedAt: time.Unix(0, wc.At).UTC(), ID: wc.ID}, nil
}

// Keyset is a GORM scope that applies the cursor predicate, newest-first
// ordering and the buffered limit.
func Keyset(cursor *Cursor, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if cursor != nil {
			db = db.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
				cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
		}
		return db.Order("created_at DESC").Order("id DESC").Limit(LimitWithBuffer(limit))
	}
}

// Trim cuts a buffered page down to limit and reports whether more rows follow.
func Trim[T any](rows []T, limit int) ([]T, bool) {
	if limit = NormalizeLimit(limit); len(rows) > limit {
		return rows[:limit], true
	}
	return rows, false
}
