package values

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestString(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"nil", nil, ""},
		{"string", "abc", "abc"},
		{"int", 7, "7"},
		{"int64", int64(-3), "-3"},
		{"integral float", 4.0, "4"},
		{"fraction", 3.5, "3.5"},
		{"bool", true, "true"},
		{"list", []any{"a", 1.0}, `["a",1]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := String(tt.value); got != tt.expected {
				t.Errorf("String(%v) = %q, want %q", tt.value, got, tt.expected)
			}
		})
	}
}

func TestTruthy(t *testing.T) {
	tests := map[string]bool{
		"":      false,
		"0":     false,
		"false": false,
		"FALSE": false,
		"False": false,
		"1":     true,
		"true":  true,
		"abc":   true,
		"00":    true,
	}

	for input, expected := range tests {
		if got := Truthy(input); got != expected {
			t.Errorf("Truthy(%q) = %v, want %v", input, got, expected)
		}
	}
}

func TestStringSlice(t *testing.T) {
	got, err := StringSlice([]any{"image", 2.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"image", "2"}, got); diff != "" {
		t.Errorf("StringSlice mismatch:\n%s", diff)
	}

	// Скаляр превращается в список
	got, err = StringSlice("sequence")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"sequence"}, got); diff != "" {
		t.Errorf("StringSlice mismatch:\n%s", diff)
	}

	_, err = StringSlice(map[string]any{"a": 1})
	if !errors.Is(err, ErrInvalidShape) {
		t.Errorf("expected ErrInvalidShape, got %v", err)
	}
}

func TestGetStringSliceMap(t *testing.T) {
	m := map[string]any{
		"match.vars": map[string]any{
			"imageType": []any{"sequence"},
			"ext":       "exr",
		},
		"broken": "value",
	}

	got, err := GetStringSliceMap(m, "match.vars")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string][]string{
		"imageType": {"sequence"},
		"ext":       {"exr"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetStringSliceMap mismatch:\n%s", diff)
	}

	if _, err := GetStringSliceMap(m, "broken"); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("expected ErrInvalidShape, got %v", err)
	}

	got, err = GetStringSliceMap(m, "missing")
	if err != nil || got != nil {
		t.Errorf("missing key should return nil, nil; got %v, %v", got, err)
	}
}

func TestCopy_Independent(t *testing.T) {
	type point struct {
		X int `json:"x"`
	}
	original := map[string]any{
		"list":  []any{"a", "b"},
		"obj":   map[string]any{"k": "v"},
		"point": point{X: 1},
	}

	copied := CopyMap(original)
	if diff := cmp.Diff(map[string]any{"x": 1.0}, copied["point"]); diff != "" {
		t.Errorf("unknown composite should be copied through JSON:\n%s", diff)
	}

	copied["obj"].(map[string]any)["k"] = "changed"
	copied["list"].([]any)[0] = "z"

	if original["obj"].(map[string]any)["k"] != "v" {
		t.Error("nested map should not be shared")
	}
	if original["list"].([]any)[0] != "a" {
		t.Error("nested list should not be shared")
	}
}

func TestGetters(t *testing.T) {
	m := map[string]any{
		"s":   "text",
		"b":   true,
		"env": map[string]any{"A": "1", "B": 2.0},
	}

	if GetString(m, "s") != "text" {
		t.Error("GetString failed")
	}
	if !GetBool(m, "b", false) || !GetBool(m, "missing", true) {
		t.Error("GetBool failed")
	}

	env, err := GetStringMap(m, "env")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"A": "1", "B": "2"}, env); diff != "" {
		t.Errorf("GetStringMap mismatch:\n%s", diff)
	}
}

func TestCopy_KeepsScalarTypes(t *testing.T) {
	original := map[string]any{
		"frame":  1001,
		"list":   []string{"a"},
		"nested": map[string]any{"n": int64(2)},
	}

	copied := CopyMap(original)
	if copied["frame"] != 1001 {
		t.Errorf("int should stay int, got %T", copied["frame"])
	}
	if copied["nested"].(map[string]any)["n"] != int64(2) {
		t.Error("nested int64 should stay int64")
	}

	copied["list"].([]string)[0] = "b"
	if original["list"].([]string)[0] != "a" {
		t.Error("slices should not be shared")
	}
}
