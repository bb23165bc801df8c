package utils

import (
	"crypto/rand"
	"encoding/base64"
	"log"
)

const shareTokenBytes = 32

// NewShareToken returns an unguessable link token: 256 random bits from the
// OS CSPRNG, base64url without padding. Never derived from file ids or
// timestamps.
func NewShareToken() string {
	buf := make([]byte, shareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		log.Fatal("read random fail", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
