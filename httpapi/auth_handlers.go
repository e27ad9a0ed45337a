package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shiroyama-web/kanri"
	"github.com/shiroyama-web/kanri/session"
)

const maxAuthBodySize = 4 << 10

type loginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

// handleLogin implements POST /api/auth.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAuthBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be JSON")
		return
	}
	if req.ID == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "id and password are required")
		return
	}

	ip := clientIP(r)
	ctx := kanri.WithClientIP(r.Context(), ip)
	ctx = kanri.WithUserAgent(ctx, r.UserAgent())

	result, err := a.engine.Authenticate(ctx, req.ID, req.Password)
	if err != nil {
		var rateErr *kanri.RateLimitedError
		switch {
		case errors.As(err, &rateErr):
			loginsTotal.WithLabelValues(outcomeRateLimited).Inc()
			a.log.Warn().Str("ip", ip).Int64("retry_after", rateErr.RetryAfter).Msg("login rate limited")
			seconds := rateErr.RetryAfter - time.Now().Unix()
			if seconds < 0 {
				seconds = 0
			}
			w.Header().Set("Retry-After", strconv.FormatInt(seconds, 10))
			writeError(w, http.StatusTooManyRequests, "too many attempts, retry later")
		case errors.Is(err, kanri.ErrInvalidCredentials):
			loginsTotal.WithLabelValues(outcomeInvalid).Inc()
			a.log.Warn().Str("ip", ip).Msg("login rejected")
			writeError(w, http.StatusUnauthorized, "invalid id or password")
		default:
			loginsTotal.WithLabelValues(outcomeError).Inc()
			storeErrorsTotal.Inc()
			a.log.Error().Err(err).Str("ip", ip).Msg("login store failure")
			writeError(w, http.StatusServiceUnavailable, "service unavailable")
		}
		return
	}

	loginsTotal.WithLabelValues(outcomeSuccess).Inc()
	a.log.Info().Str("ip", ip).Msg("administrator logged in")
	w.Header().Set("Set-Cookie", result.Cookie)
	writeJSON(w, http.StatusOK, apiResponse{Success: true})
}

// handleLogout implements DELETE /api/auth. Always clears the cookie and
// answers 204; revoking an absent session is success.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	var token string
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		token = cookie.Value
	}

	if err := a.engine.Revoke(r.Context(), token); err != nil {
		storeErrorsTotal.Inc()
		a.log.Error().Err(err).Msg("logout store failure")
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	w.Header().Set("Set-Cookie", session.ClearCookie())
	w.WriteHeader(http.StatusNoContent)
}
