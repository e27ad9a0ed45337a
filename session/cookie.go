package session

import (
	"strconv"
	"strings"
	"time"
)

// CookieName is the session cookie issued to authenticated administrators.
const CookieName = "sid"

// Cookie renders the Set-Cookie directive for a freshly minted token.
func Cookie(token string, ttl time.Duration) string {
	return strings.Join([]string{
		CookieName + "=" + token,
		"Path=/",
		"HttpOnly",
		"Secure",
		"SameSite=Strict",
		"Max-Age=" + strconv.Itoa(int(ttl/time.Second)),
	}, "; ")
}

// ClearCookie renders the Set-Cookie directive that removes the session
// cookie. Identical attributes, empty value, Max-Age=0.
func ClearCookie() string {
	return strings.Join([]string{
		CookieName + "=",
		"Path=/",
		"HttpOnly",
		"Secure",
		"SameSite=Strict",
		"Max-Age=0",
	}, "; ")
}

// TokenFromCookieHeader extracts the session token from a raw Cookie header.
// Returns "" when the header carries no session cookie.
func TokenFromCookieHeader(header string) string {
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		name, value, found := strings.Cut(part, "=")
		if found && name == CookieName {
			return value
		}
	}
	return ""
}
