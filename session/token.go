package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes is the entropy of a session token. 256 bits of CSPRNG output
// makes guessing and collisions practically impossible; collisions are not
// defended against beyond that.
const tokenBytes = 32

// NewToken returns a fresh opaque session token: tokenBytes of
// cryptographically secure randomness encoded as lowercase hex.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
