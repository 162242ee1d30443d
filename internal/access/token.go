package access

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

const secretBytes = 32

// Token is a channel-scoped capability granting elevated access to one
// product page. Secret is the opaque bearer value embedded in share URLs;
// ID is the internal identifier used for audit linkage and never reaches
// the redaction layer.
type Token struct {
	ID          string
	Secret      string
	ProductID   string
	OrgID       string
	ChannelID   string
	ChannelName string
	Level       Level
	ExpiresAt   *time.Time
	CreatedBy   string
	Notes       string
	CreatedAt   time.Time
}

// Valid reports whether the token is still live at the given instant.
// A nil ExpiresAt means the token never expires.
func (t *Token) Valid(now time.Time) bool {
	if t.ExpiresAt == nil {
		return true
	}
	return now.Before(*t.ExpiresAt)
}

// newSecret draws a bearer secret from crypto/rand. 32 bytes of entropy;
// treat the result with the same care as a password.
func newSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
