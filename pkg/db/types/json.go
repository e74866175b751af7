package dbtypes

import (
	"database/sql/driver"
	"fmt"

	"gorm.io/datatypes"
)

// SliceValue encodes s for a json/jsonb column. A nil slice is stored as an
// empty array, never NULL.
func SliceValue[T any](s []T) (driver.Value, error) {
	if s == nil {
		s = []T{}
	}
	return datatypes.NewJSONSlice(s).Value()
}

// ScanSlice decodes a json/jsonb array column. NULL decodes to an empty slice.
func ScanSlice[T any](src any) ([]T, error) {
	if src == nil {
		return []T{}, nil
	}
	var out datatypes.JSONSlice[T]
	if err := out.Scan(src); err != nil {
		return nil, fmt.Errorf("dbtypes: decode json array: %w", err)
	}
	if out == nil {
		return []T{}, nil
	}
	return []T(out), nil
}

// ObjectValue encodes v for a json/jsonb column.
func ObjectValue[T any](v T) (driver.Value, error) {
	return datatypes.NewJSONType(v).Value()
}

// ScanObject decodes a json/jsonb object column. NULL decodes to the zero value.
func ScanObject[T any](src any) (T, error) {
	var out datatypes.JSONType[T]
	if src == nil {
		return out.Data(), nil
	}
	if err := out.Scan(src); err != nil {
		var zero T
		return zero, fmt.Errorf("dbtypes: decode json object: %w", err)
	}
	return out.Data(), nil
}
