package engine

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ramgopal99/centipede/internal/crawler"
)

func newItem(typ string, vars map[string]any) crawler.Crawler {
	c := crawler.New(typ)
	for k, v := range vars {
		c.SetVar(k, v, false)
	}
	return c
}

func TestMatcher_Accepts(t *testing.T) {
	m := NewMatcher([]string{"image"}, map[string][]string{"imageType": {"sequence"}})

	tests := []struct {
		name     string
		item     crawler.Crawler
		expected bool
	}{
		{"type and var match", newItem("image", map[string]any{"imageType": "sequence"}), true},
		{"var outside accepted", newItem("image", map[string]any{"imageType": "single"}), false},
		{"type outside accepted", newItem("video", map[string]any{"imageType": "sequence"}), false},
		{"var missing", newItem("image", nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Accepts(tt.item); got != tt.expected {
				t.Errorf("Accepts() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMatcher_EmptyAcceptsAnything(t *testing.T) {
	m := NewMatcher(nil, nil)
	if !m.Accepts(newItem("whatever", nil)) {
		t.Error("empty matcher should accept any crawler")
	}
}

func TestMatcher_ComparesStringForm(t *testing.T) {
	m := NewMatcher(nil, map[string][]string{"frame": {"1001"}})
	if !m.Accepts(newItem("exr", map[string]any{"frame": 1001})) {
		t.Error("int 1001 should match \"1001\"")
	}
	if !m.Accepts(newItem("exr", map[string]any{"frame": 1001.0})) {
		t.Error("float 1001 should match \"1001\"")
	}
}

func TestMatcherFromMetadata(t *testing.T) {
	meta := map[string]any{
		"match.types": []any{"exr", "dpx"},
		"match.vars": map[string]any{
			"imageType": "sequence",
		},
	}

	m, err := MatcherFromMetadata(meta)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"dpx", "exr"}, m.Types()); diff != "" {
		t.Errorf("Types mismatch:\n%s", diff)
	}
	if diff := cmp.Diff(map[string][]string{"imageType": {"sequence"}}, m.Vars()); diff != "" {
		t.Errorf("Vars mismatch:\n%s", diff)
	}

	// Без metadata — принимает всё
	m, err = MatcherFromMetadata(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Accepts(newItem("mov", nil)) {
		t.Error("matcher without metadata should accept anything")
	}

	_, err = MatcherFromMetadata(map[string]any{"match.vars": "broken"})
	if !errors.Is(err, ErrInvalidMatchMetadata) {
		t.Errorf("expected ErrInvalidMatchMetadata, got %v", err)
	}
}
