package dbtypes

import "testing"

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSliceValueAndScan(t *testing.T) {
	value, err := SliceValue([]sample{{Name: "a", Count: 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := ScanSlice[sample](value)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(out) != 1 || out[0].Name != "a" || out[0].Count != 2 {
		t.Fatalf("unexpected decode %+v", out)
	}

	text, ok := value.(string)
	if !ok {
		t.Fatalf("expected string value, got %T", value)
	}
	out, err = ScanSlice[sample]([]byte(text))
	if err != nil || len(out) != 1 {
		t.Fatalf("scan bytes: %v %+v", err, out)
	}
}

func TestSliceNilHandling(t *testing.T) {
	value, err := SliceValue[sample](nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "[]" {
		t.Fatalf("expected empty array, got %v", value)
	}

	out, err := ScanSlice[sample](nil)
	if err != nil {
		t.Fatalf("nil scan should succeed: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty slice, got %#v", out)
	}
}

func TestObjectValueAndScan(t *testing.T) {
	value, err := ObjectValue(sample{Name: "addr", Count: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := ScanObject[sample](value)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if got.Name != "addr" || got.Count != 1 {
		t.Fatalf("unexpected decode %+v", got)
	}

	zero, err := ScanObject[sample](nil)
	if err != nil || zero.Name != "" {
		t.Fatalf("expected zero value for NULL, got %+v err=%v", zero, err)
	}
	if _, err := ScanObject[sample](42); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}
