package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Auth metrics. Standalone package to avoid import cycles between the HTTP
// middlewares and the services that also record them.

var (
	TokenVerifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_token_verifications_total",
		Help: "Session token verifications by outcome (ok|expired|invalid)",
	}, []string{"outcome"})

	LoginsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_logins_started_total",
		Help: "Login flows initiated via /login",
	})

	OAuthCallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_oauth_callbacks_total",
		Help: "OAuth callback results (linked|failed)",
	}, []string{"result"})

	UpstreamLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "auth_upstream_latency_ms",
		Help:    "Identity provider call latency in milliseconds",
		Buckets: prometheus.ExponentialBuckets(1, 2, 14),
	}, []string{"endpoint"})

	UpstreamFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_upstream_failures_total",
		Help: "Identity provider call failures (timeout|error)",
	}, []string{"kind"})
)

// Register registers the auth metrics on the given registry (or the default
// if nil). Tolerates double registration.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		TokenVerifications,
		LoginsStarted,
		OAuthCallbacks,
		UpstreamLatency,
		UpstreamFailures,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
