package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sign computes the hex HMAC-SHA256 of payload under secret. The same
// primitive covers inbound verification and outbound signing.
func Sign(secret string, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// Verify checks an inbound signature header against the exact request body.
// The comparison is constant time. A "sha256=" prefix on the header is
// accepted for senders that follow that convention.
func Verify(payload []byte, header, secret string) bool {
	provided := strings.TrimPrefix(header, "sha256=")
	expected := Sign(secret, payload)
	return hmac.Equal([]byte(expected), []byte(provided))
}
