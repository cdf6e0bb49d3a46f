// Package signature authenticates Framer webhook deliveries.
//
// A delivery is signed with HMAC-SHA256 over the raw request body followed by
// the submission identifier, so a signature cannot be replayed against another
// submission. The header value has the form "sha256=<64 lowercase hex chars>".
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

const (
	// Prefix precedes the hex digest in the Framer-Signature header.
	Prefix = "sha256="

	// Length is the exact length of a well-formed header value.
	Length = len(Prefix) + sha256.Size*2
)

// Verify reports whether candidate is the signature of body and submissionID
// under secret. Values of the wrong length are rejected before any MAC work.
func Verify(secret, submissionID string, body []byte, candidate string) bool {
	if len(candidate) != Length {
		return false
	}

	expected := Sign(secret, submissionID, body)

	return hmac.Equal([]byte(candidate), []byte(expected))
}

// Sign computes the Framer-Signature header value for body and submissionID.
func Sign(secret, submissionID string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	mac.Write([]byte(submissionID))

	return Prefix + hex.EncodeToString(mac.Sum(nil))
}
