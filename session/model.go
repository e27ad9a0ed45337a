package session

// Record is the server-side proof that a bearer token corresponds to an
// authenticated administrator. ID doubles as the store key.
type Record struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt"`
	ExpiresAt int64  `json:"expiresAt"`
	// UserAgent is the client's User-Agent at creation time, when known.
	// A later mismatch against a non-empty caller value is a hijack signal.
	UserAgent string `json:"userAgent,omitempty"`
}
