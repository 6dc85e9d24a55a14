package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"

	"github.com/oklog/ulid/v2"
)

// Session token format: qbs_{id}_{secret}
// Example: qbs_01J9ZK3V5W8XHQ2M4N6P8R0T2V_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b
//
// The ULID part is safe to log and ties a session to its audit trail;
// the secret part never appears in logs or storage (only its hash does).
const tokenSecretLen = 32 // hex encoded 16 bytes

// SessionCookieName is the cookie browsers carry the session token in.
// API clients may send the same token as a bearer token instead.
const SessionCookieName = "qb_session"

var (
	// ErrInvalidTokenFormat indicates the session token format is invalid.
	ErrInvalidTokenFormat = errors.New("invalid session token format")
	// tokenFormatRegex validates the token format.
	tokenFormatRegex = regexp.MustCompile(`^qbs_([0-9A-HJKMNP-TV-Z]{26})_([a-f0-9]{32})$`)
)

// SessionToken contains the parts of a newly generated session token.
type SessionToken struct {
	Plaintext string // Full token, handed to the client once
	ID        string // ULID part, safe for logs
}

// NewSessionToken creates a new opaque session token.
func NewSessionToken() (*SessionToken, error) {
	id := ulid.Make().String()

	secretBytes := make([]byte, tokenSecretLen/2)
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	secret := hex.EncodeToString(secretBytes)

	return &SessionToken{
		Plaintext: fmt.Sprintf("qbs_%s_%s", id, secret),
		ID:        id,
	}, nil
}

// ParseSessionToken validates the token format and returns the loggable
// session ID. Returns an error if the format is invalid.
func ParseSessionToken(token string) (string, error) {
	matches := tokenFormatRegex.FindStringSubmatch(token)
	if matches == nil {
		return "", ErrInvalidTokenFormat
	}
	return matches[1], nil
}
