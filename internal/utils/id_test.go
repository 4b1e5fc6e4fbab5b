package utils

import (
	"strings"
	"testing"
)

func TestNewTokenAlphabetAndLength(t *testing.T) {
	tok, err := NewToken(16)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	if len(tok) != 16 {
		t.Fatalf("expected length 16, got %d", len(tok))
	}
	for _, r := range tok {
		if !strings.ContainsRune(alphanumeric, r) {
			t.Fatalf("unexpected rune %q in %q", r, tok)
		}
	}
}

func TestNewTokenUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		tok, err := NewToken(12)
		if err != nil {
			t.Fatalf("NewToken: %v", err)
		}
		if _, dup := seen[tok]; dup {
			t.Fatalf("duplicate token %q", tok)
		}
		seen[tok] = struct{}{}
	}
}

func TestMask(t *testing.T) {
	if got := Mask("abcdef12"); got != "ab******" {
		t.Fatalf("unexpected mask: %q", got)
	}
	if got := Mask(""); got != "" {
		t.Fatalf("expected empty mask, got %q", got)
	}
}
