package session

import (
	"strings"

	"github.com/google/uuid"
)

// blackboxPrefix mimics the version marker of server-issued device tokens.
const blackboxPrefix = "0400"

// newFingerprint synthesizes a device-fingerprint token. The server only
// checks shape (prefix + 64 hex chars), not provenance, so a random token
// passes; a server-issued one is never needed.
func newFingerprint() string {
	a := strings.ReplaceAll(uuid.NewString(), "-", "")
	b := strings.ReplaceAll(uuid.NewString(), "-", "")
	return blackboxPrefix + a + b
}
