package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/archive"
	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/dashboard"
	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/history"
	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/risk"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ApiV1Router manages routes for API version 1.
// Callers post the record sets they fetched from the data providers and get
// risk profiles back; every computed profile is also recorded in the score
// history and the archive.
type ApiV1Router struct {
	// scorer: computes one profile per agent.
	scorer *risk.Scorer
	// history: recent snapshots per agent.
	history *history.Repository
	// archive: sink for computed profiles.
	archive archive.Archive
	// options: roster filter and default alert list length.
	options dashboard.Options
	// maxBodyBytes: request bodies beyond this size are rejected.
	maxBodyBytes int64
	// now: clock used when a request carries no asOf.
	now func() time.Time
}

// Mux returns the API handler. Registered routes:
// - POST /api/v1/risk/report: full page report for a snapshot
// - POST /api/v1/risk/agents: profile of a single agent
// - GET /api/v1/agents/{id}/history: recent scores of an agent
// - GET /metrics: Prometheus metrics
// - GET /healthz: liveness probe
func (ar *ApiV1Router) Mux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/risk/report", ar.reportHandler)
	mux.HandleFunc("POST /api/v1/risk/agents", ar.agentHandler)
	mux.HandleFunc("GET /api/v1/agents/{id}/history", ar.historyHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return withRequestID(instrument(mux))
}

// reportHandler scores every roster member of the posted snapshot and
// returns the dashboard report.
func (ar *ApiV1Router) reportHandler(w http.ResponseWriter, r *http.Request) {
	var request ReportRequest
	if !ar.decode(w, r, &request) {
		return
	}
	if err := request.Validate(); err != nil {
		slog.Warn("Invalid report request", "error", err, "request_id", requestID(r.Context()))
		ar.fail(w, r, http.StatusUnprocessableEntity, err)
		return
	}

	options := ar.options
	if request.TopAlerts > 0 {
		options.TopAlerts = request.TopAlerts
	}
	asOf := ar.asOf(request.AsOf)

	report := dashboard.Build(ar.scorer, request.Snapshot, asOf, options)
	for _, p := range report.Profiles {
		ar.keep(r, p, asOf)
	}

	slog.Info("Report computed",
		"request_id", requestID(r.Context()),
		"agents", report.Summary.TotalAgents,
		"critical", report.Summary.Critical,
		"high", report.Summary.High,
	)
	ar.respond(w, r, report)
}

// agentHandler computes the profile of one agent.
func (ar *ApiV1Router) agentHandler(w http.ResponseWriter, r *http.Request) {
	var request AgentRequest
	if !ar.decode(w, r, &request) {
		return
	}
	if err := request.Validate(); err != nil {
		slog.Warn("Invalid agent request", "error", err, "request_id", requestID(r.Context()))
		ar.fail(w, r, http.StatusUnprocessableEntity, err)
		return
	}

	asOf := ar.asOf(request.AsOf)
	profile := ar.scorer.Compute(
		request.Agent,
		request.Closed,
		request.Pending,
		request.Listings,
		request.TotalBrokerageVolume,
		asOf,
	)
	ar.keep(r, profile, asOf)

	ar.respond(w, r, profile)
}

// historyHandler returns the recorded snapshots of the agent in the path.
// Agents are keyed by roster id, or by lowercased name without one.
func (ar *ApiV1Router) historyHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	snapshots, err := ar.history.Get(id)
	if err != nil {
		var notFound *history.NotFoundError
		if errors.As(err, &notFound) {
			ar.fail(w, r, http.StatusNotFound, err)
			return
		}
		slog.Error("History lookup", "error", err, "id", id)
		ar.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	ar.respond(w, r, snapshots)
}

func (ar *ApiV1Router) decode(w http.ResponseWriter, r *http.Request, into any) bool {
	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, ar.maxBodyBytes))
	if err != nil {
		slog.Warn("Unable to read request body", "error", err, "request_id", requestID(r.Context()))
		ar.fail(w, r, http.StatusUnprocessableEntity, err)
		return false
	}

	if err := json.Unmarshal(body, into); err != nil {
		slog.Warn("Unable to unmarshal request body", "error", err, "request_id", requestID(r.Context()))
		ar.fail(w, r, http.StatusUnprocessableEntity, err)
		return false
	}

	return true
}

func (ar *ApiV1Router) asOf(requested *Date) time.Time {
	if requested != nil && !requested.IsZero() {
		return requested.UTC()
	}
	return ar.now().UTC()
}

func (ar *ApiV1Router) keep(r *http.Request, p risk.Profile, asOf time.Time) {
	observeProfile(p)
	if previous, found := ar.history.Record(p, asOf); found && observeLevelChange(previous, p) {
		slog.Info("Risk level changed",
			"request_id", requestID(r.Context()),
			"agent", history.Key(p),
			"from", previous.RiskLevel,
			"to", p.RiskLevel,
			"score", p.RiskScore,
		)
	}
	ar.archive.Append(requestID(r.Context()), p)
}

func (ar *ApiV1Router) respond(w http.ResponseWriter, r *http.Request, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Unable to marshal response", "error", err, "request_id", requestID(r.Context()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (ar *ApiV1Router) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	body, _ := json.Marshal(ErrorResponse{Error: err.Error(), RequestID: requestID(r.Context())})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// NewApiV1Router creates a new API v1 router.
// Parameters:
// - scorer: risk scorer
// - historyRepo: score history
// - profileArchive: archive for computed profiles
// - options: roster filter and default alert list length
// - maxBodyBytes: request body limit
func NewApiV1Router(
	scorer *risk.Scorer,
	historyRepo *history.Repository,
	profileArchive archive.Archive,
	options dashboard.Options,
	maxBodyBytes int64,
) *ApiV1Router {
	return &ApiV1Router{
		scorer:       scorer,
		history:      historyRepo,
		archive:      profileArchive,
		options:      options,
		maxBodyBytes: maxBodyBytes,
		now:          time.Now,
	}
}
