package snapshot

import (
	"testing"
	"time"
)

func TestCanonicalKeyOrderAndNulls(t *testing.T) {
	// Key order and null-valued keys must not affect the encoding
	a := map[string]interface{}{"b": 1, "a": nil, "c": 2}
	b := map[string]interface{}{"c": 2, "b": 1}

	ca, err := Canonical(a)
	if err != nil {
		t.Fatalf("Canonical(a): %v", err)
	}
	cb, err := Canonical(b)
	if err != nil {
		t.Fatalf("Canonical(b): %v", err)
	}

	if string(ca) != string(cb) {
		t.Errorf("canonical forms differ: %s vs %s", ca, cb)
	}
	if string(ca) != `{"b":1,"c":2}` {
		t.Errorf("canonical = %s, want {\"b\":1,\"c\":2}", ca)
	}
}

func TestCanonicalNestedContainers(t *testing.T) {
	v := map[string]interface{}{
		"outer": map[string]interface{}{
			"z":    1,
			"gone": nil,
			"a":    []interface{}{map[string]interface{}{"y": nil, "x": 1}},
		},
	}

	c, err := Canonical(v)
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	want := `{"outer":{"a":[{"x":1}],"z":1}}`
	if string(c) != want {
		t.Errorf("canonical = %s, want %s", c, want)
	}
}

func TestCanonicalDatesAsRFC3339(t *testing.T) {
	v := map[string]interface{}{
		"from": time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	}

	c, err := Canonical(v)
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	want := `{"from":"2026-01-05T00:00:00Z"}`
	if string(c) != want {
		t.Errorf("canonical = %s, want %s", c, want)
	}
}

func TestFilterHash(t *testing.T) {
	a := map[string]interface{}{"athlete_id": int64(42), "types": []interface{}{"Run"}, "limit": nil}
	b := map[string]interface{}{"types": []interface{}{"Run"}, "athlete_id": int64(42)}

	ha, err := FilterHash(a)
	if err != nil {
		t.Fatalf("FilterHash(a): %v", err)
	}
	hb, err := FilterHash(b)
	if err != nil {
		t.Fatalf("FilterHash(b): %v", err)
	}

	if ha != hb {
		t.Errorf("hashes differ for equivalent filters: %s vs %s", ha, hb)
	}
	if len(ha) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(ha))
	}

	// Order of array elements is significant
	c := map[string]interface{}{"athlete_id": int64(42), "types": []interface{}{"Ride", "Run"}}
	hc, err := FilterHash(c)
	if err != nil {
		t.Fatalf("FilterHash(c): %v", err)
	}
	if hc == ha {
		t.Error("different type lists must hash differently")
	}
}
