package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "kanri"

var (
	// loginsTotal counts login attempts by outcome.
	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Login attempts by outcome.",
	}, []string{"outcome"})

	// sessionValidationsTotal counts guarded-request session checks by outcome.
	sessionValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_validations_total",
		Help:      "Session validations on guarded routes by outcome.",
	}, []string{"outcome"})

	// storeErrorsTotal counts requests failed on store outages.
	storeErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_errors_total",
		Help:      "Requests failed because the backing store was unavailable.",
	})
)

const (
	outcomeSuccess     = "success"
	outcomeInvalid     = "invalid"
	outcomeRateLimited = "rate_limited"
	outcomeError       = "error"
)
