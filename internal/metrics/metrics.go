package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK    atomic.Bool
	gatherer atomic.Pointer[prometheus.Gatherer]

	dependencyChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quicklaunch",
			Name:      "dependency_checks_total",
			Help:      "Number of dependency checks by dependency and result (found, missing).",
		}, []string{"dependency", "result"},
	)
	launches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quicklaunch",
			Name:      "launches_total",
			Help:      "Number of external processes started, by target and mode (detached, blocking).",
		}, []string{"target", "mode"},
	)
	launchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quicklaunch",
			Name:      "launch_failures_total",
			Help:      "Number of external processes that could not be started.",
		}, []string{"target"},
	)
	serverRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "quicklaunch",
			Subsystem: "server",
			Name:      "running",
			Help:      "1 while the launcher is blocked on the file server process.",
		},
	)
	serverRunSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "quicklaunch",
			Subsystem: "server",
			Name:      "run_seconds",
			Help:      "How long the file server process ran before exiting.",
			Buckets:   []float64{1, 10, 60, 300, 1800, 3600, 4 * 3600, 12 * 3600},
		},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
// When r is also a Gatherer (a *prometheus.Registry is), Handler serves it.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{dependencyChecks, launches, launchFailures, serverRunning, serverRunSeconds}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			// If already registered, ignore (allows double Register with default registry)
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	if g, ok := r.(prometheus.Gatherer); ok {
		gatherer.Store(&g)
	}
	regOK.Store(true)
	return nil
}

// Gatherer returns the registry metrics were registered with, or the
// DefaultGatherer before registration or for a registerer that cannot gather.
func Gatherer() prometheus.Gatherer {
	if g := gatherer.Load(); g != nil {
		return *g
	}
	return prometheus.DefaultGatherer
}

// Handler returns an http.Handler that serves Prometheus metrics from Gatherer.
// The registry is resolved per request so the handler may be mounted before Register.
// The caller is responsible for starting an HTTP server and wiring the route.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		promhttp.HandlerFor(Gatherer(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}

// Below are lightweight helpers used by internal packages to record metrics.
// They no-op if Register hasn't been called.

func IncCheck(dependency string, found bool) {
	if regOK.Load() {
		result := "missing"
		if found {
			result = "found"
		}
		dependencyChecks.WithLabelValues(dependency, result).Inc()
	}
}

func IncLaunch(target string, blocking bool) {
	if regOK.Load() {
		mode := "detached"
		if blocking {
			mode = "blocking"
		}
		launches.WithLabelValues(target, mode).Inc()
	}
}

func IncLaunchFailure(target string) {
	if regOK.Load() {
		launchFailures.WithLabelValues(target).Inc()
	}
}

func SetServerRunning(running bool) {
	if regOK.Load() {
		var v float64
		if running {
			v = 1
		}
		serverRunning.Set(v)
	}
}

func ObserveServerRun(seconds float64) {
	if regOK.Load() {
		serverRunSeconds.Observe(seconds)
	}
}
