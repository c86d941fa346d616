package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/history"
	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/risk"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequestsTotal counts requests by matched route and status code.
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskscore_http_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"route", "code"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "riskscore_http_request_duration_seconds",
		Help:    "HTTP request duration by route",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"route"})

	profilesComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskscore_profiles_computed_total",
		Help: "Risk profiles computed by resulting level",
	}, []string{"level"})

	signalsFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskscore_signals_fired_total",
		Help: "Risk signals fired by rule name",
	}, []string{"signal"})

	// levelChanges counts agents whose level moved since their previous score.
	levelChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskscore_level_changes_total",
		Help: "Risk level transitions between consecutive scores of an agent",
	}, []string{"from", "to"})
)

func observeProfile(p risk.Profile) {
	profilesComputed.WithLabelValues(string(p.RiskLevel)).Inc()
	for _, s := range p.Signals {
		signalsFired.WithLabelValues(s.Name).Inc()
	}
}

// observeLevelChange reports whether the level moved from previous and counts it.
func observeLevelChange(previous history.Snapshot, p risk.Profile) bool {
	if previous.RiskLevel == p.RiskLevel {
		return false
	}
	levelChanges.WithLabelValues(string(previous.RiskLevel), string(p.RiskLevel)).Inc()
	return true
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument records request count and latency per matched mux pattern.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(started).Seconds())
	})
}

type requestIDKey struct{}

const requestIDHeader = "X-Request-ID"

// withRequestID propagates the caller's request id or assigns a new one.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
