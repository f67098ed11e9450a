package auth

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/mauritsl/restapir"
)

// Token is an issued bearer token: a 32-byte random value, base64url
// encoded, tied to a user id. TTL of zero means no expiry, matching the
// distilled spec's default, extended per its own Open Question to allow a
// configurable lifetime.
type Token struct {
	Token    string
	UserID   string
	IssuedAt time.Time
	TTL      time.Duration
}

// Expired reports whether t has an expiry and it has passed, relative to
// now.
func (t Token) Expired(now time.Time) bool {
	if t.TTL <= 0 {
		return false
	}
	return now.After(t.IssuedAt.Add(t.TTL))
}

// newTokenString generates a 32-byte random token, base64url-encoded
// (unpadded) as spec.md §3 specifies.
func newTokenString() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", restapir.Newf(restapir.Unknown, "auth: generating token: %v", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
