package kanri

import "context"

type clientIPContextKey struct{}
type userAgentContextKey struct{}

// localIdentity is the grouping key used when no client address can be
// resolved, e.g. direct connections in local development.
const localIdentity = "127.0.0.1"

// WithClientIP attaches the caller's network address to ctx. The Engine uses
// it as the rate-limit grouping key; it is never validated as a well-formed
// address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithUserAgent attaches the HTTP User-Agent string to ctx. Sessions record
// it at creation time; a later mismatch is treated as a hijack signal.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return localIdentity
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	if ip == "" {
		return localIdentity
	}
	return ip
}

func userAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	userAgent, _ := ctx.Value(userAgentContextKey{}).(string)
	return userAgent
}
