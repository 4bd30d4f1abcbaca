package utils

import (
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if len(id) != 12 {
			t.Fatalf("expected 12-char id, got %q", id)
		}
		for _, r := range id {
			if !strings.ContainsRune(AlphaNum, r) {
				t.Fatalf("unexpected character %q in id %q", r, id)
			}
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestNewReqID(t *testing.T) {
	first := NewReqID()
	second := NewReqID()
	if first == "" || second == "" {
		t.Fatal("expected non-empty request id")
	}
	if first == second {
		t.Fatalf("expected distinct request ids, got %q twice", first)
	}
}
