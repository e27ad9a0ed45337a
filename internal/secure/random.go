package secure

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// SessionID is a 256-bit session identifier. Collisions are treated as
// negligible; no duplicate detection happens anywhere in the module.
type SessionID [32]byte

// NewSessionID returns a SessionID drawn from the platform CSPRNG.
func NewSessionID() (SessionID, error) {
	var sid SessionID
	_, err := rand.Read(sid[:])
	return sid, err
}

func (s SessionID) Bytes() []byte {
	return s[:]
}

// String renders the identifier as lowercase hexadecimal, the transport form
// used as both store key and cookie value.
func (s SessionID) String() string {
	return hex.EncodeToString(s[:])
}

// ParseSessionID decodes the transport form back into a SessionID.
func ParseSessionID(sessionID string) (SessionID, error) {
	var sid SessionID

	raw, err := hex.DecodeString(sessionID)
	if err != nil {
		return sid, err
	}
	if len(raw) != len(sid) {
		return sid, errors.New("invalid session id size")
	}

	copy(sid[:], raw)
	return sid, nil
}
