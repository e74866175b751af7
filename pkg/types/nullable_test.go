package types

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestNullableUnmarshal(t *testing.T) {
	type payload struct {
		Line2 Nullable[string] `json:"line2"`
	}

	var got payload
	if err := json.Unmarshal([]byte(`{"line2": "Flat 4B"}`), &got); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if !got.Line2.Valid || got.Line2.Value == nil || *got.Line2.Value != "Flat 4B" {
		t.Fatalf("expected set value, got %+v", got.Line2)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{"line2": null}`), &got); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !got.Line2.Valid || got.Line2.Value != nil {
		t.Fatalf("expected null to be valid but nil, got %+v", got.Line2)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{}`), &got); err != nil {
		t.Fatalf("unmarshal missing: %v", err)
	}
	if got.Line2.Valid {
		t.Fatalf("expected invalid flag for missing field, got %+v", got.Line2)
	}
}

func TestNullableUUIDRejectsGarbage(t *testing.T) {
	var n Nullable[uuid.UUID]
	if err := json.Unmarshal([]byte(`"not-a-uuid"`), &n); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNullableClone(t *testing.T) {
	original := Set("a")
	clone := original.Clone()
	*clone.Value = "b"
	if *original.Value != "a" {
		t.Fatalf("clone shares memory with original")
	}
	if empty := Null[string]().Clone(); !empty.Valid || empty.Value != nil {
		t.Fatalf("unexpected clone of null: %+v", empty)
	}
}
