package utils

import (
	"encoding/base64"
	"testing"
)

func TestNewShareTokenShape(t *testing.T) {
	token := NewShareToken()
	if len(token) != 43 {
		t.Fatalf("token length = %d, want 43", len(token))
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("token is not url-safe base64: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("decoded length = %d, want 32", len(raw))
	}
}

func TestNewShareTokenUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		token := NewShareToken()
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token after %d draws", i)
		}
		seen[token] = struct{}{}
	}
}
