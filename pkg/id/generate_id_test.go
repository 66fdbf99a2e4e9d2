package id

import (
	"encoding/hex"
	"strings"
	"testing"
)

func TestNewID32_FormatAndDecode(t *testing.T) {
	got := NewID32()

	// length
	if len(got) != 32 {
		t.Fatalf("length = %d, want 32 (got=%q)", len(got), got)
	}
	// lowercase hex only (no separators/prefixes)
	if !Valid(got) {
		t.Fatalf("not 32-char lowercase hex: %q", got)
	}
	// decodes to exactly 16 bytes
	b, err := hex.DecodeString(got)
	if err != nil {
		t.Fatalf("hex.DecodeString error: %v", err)
	}
	if len(b) != 16 {
		t.Fatalf("decoded bytes = %d, want 16", len(b))
	}
}

func TestNewID32_Uniqueness(t *testing.T) {
	const n = 200
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := NewID32()
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate id after %d iterations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestNewID32_NoUppercaseOrHyphen(t *testing.T) {
	id := NewID32()
	for _, r := range id {
		if r >= 'A' && r <= 'Z' {
			t.Fatalf("found uppercase letter in id: %q", id)
		}
		if r == '-' {
			t.Fatalf("found hyphen in id: %q", id)
		}
	}
}

func TestValid(t *testing.T) {
	for _, s := range []string{strings.Repeat("a", 32), "3f9a6a1b3d544fbe8b3a6b3e8d6b2c88", NewID32()} {
		if !Valid(s) {
			t.Fatalf("Valid(%q) = false", s)
		}
	}
	for _, s := range []string{
		"",
		strings.Repeat("A", 32),                // uppercase
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8",      // 31 chars
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c880",    // 33 chars
		"3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88", // uuid with hyphens
		strings.Repeat("g", 32),
	} {
		if Valid(s) {
			t.Fatalf("Valid(%q) = true", s)
		}
	}
}
