package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/shiroyama-web/kanri"
	"github.com/shiroyama-web/kanri/session"
)

type sessionContextKey struct{}

// SessionFromContext returns the validated session record stored by
// [API.RequireSession].
func SessionFromContext(ctx context.Context) (*session.Record, bool) {
	rec, ok := ctx.Value(sessionContextKey{}).(*session.Record)
	return rec, ok
}

// RequireSession authenticates the sid cookie on every guarded request.
// Invalid sessions answer 401 with a clearing cookie; store outages answer
// 503 so operators can tell infrastructure failure from brute-force noise.
func (a *API) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if cookie, err := r.Cookie(session.CookieName); err == nil {
			token = cookie.Value
		}

		ctx := kanri.WithUserAgent(r.Context(), r.UserAgent())
		rec, err := a.engine.Validate(ctx, token)
		if err != nil {
			if errors.Is(err, kanri.ErrStoreUnavailable) {
				sessionValidationsTotal.WithLabelValues(outcomeError).Inc()
				storeErrorsTotal.Inc()
				a.log.Error().Err(err).Msg("session validation store failure")
				writeError(w, http.StatusServiceUnavailable, "service unavailable")
				return
			}
			sessionValidationsTotal.WithLabelValues(outcomeInvalid).Inc()
			w.Header().Set("Set-Cookie", session.ClearCookie())
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		sessionValidationsTotal.WithLabelValues(outcomeSuccess).Inc()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionContextKey{}, rec)))
	})
}
