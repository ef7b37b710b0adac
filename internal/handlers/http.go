package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/payshield/payment-triage/internal/failure"
	"github.com/payshield/payment-triage/internal/metrics"
	"github.com/payshield/payment-triage/internal/overlay"
	"github.com/payshield/payment-triage/internal/router"
	"github.com/payshield/payment-triage/internal/rules"
)

// Handler contains all HTTP handlers.
type Handler struct {
	engine    *rules.Engine
	assessor  *overlay.Assessor
	analyzer  *failure.Analyzer
	router    *router.Router
	collector *metrics.Collector
	logger    *zap.Logger
}

// NewHandler creates the HTTP handler set.
func NewHandler(
	engine *rules.Engine,
	assessor *overlay.Assessor,
	analyzer *failure.Analyzer,
	rt *router.Router,
	collector *metrics.Collector,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		engine:    engine,
		assessor:  assessor,
		analyzer:  analyzer,
		router:    rt,
		collector: collector,
		logger:    logger,
	}
}

// SetupRoutes configures HTTP routes.
func (h *Handler) SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.requestID)

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/validate", h.Validate).Methods("POST")
	api.HandleFunc("/assess", h.Assess).Methods("POST")
	api.HandleFunc("/failure", h.AnalyzeFailure).Methods("POST")
	api.HandleFunc("/route", h.Route).Methods("POST")

	return r
}

type messageRequest struct {
	Message string `json:"message"`
}

// requestID tags every response with a generated request identifier and
// logs the request under it, so a response can be matched to its log lines.
func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		h.logger.Debug("handling request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

// HealthCheck reports service liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Validate runs base rule validation over the posted message.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { h.collector.ObserveRequest("validate", time.Since(start)) }()

	req, ok := h.decodeMessage(w, r)
	if !ok {
		return
	}

	report := h.engine.Validate(req.Message)
	h.collector.RecordMessage(string(report.DetectedKind))
	h.collector.RecordFindings(report.ErrorCount, report.WarnCount)

	h.writeJSON(w, http.StatusOK, report)
}

// Assess runs base validation plus the SR overlay.
func (h *Handler) Assess(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { h.collector.ObserveRequest("assess", time.Since(start)) }()

	req, ok := h.decodeMessage(w, r)
	if !ok {
		return
	}

	report := h.assessor.Assess(req.Message)
	h.collector.RecordMessage(string(report.DetectedKind))
	h.collector.RecordFindings(report.ErrorCount, report.WarnCount)

	h.writeJSON(w, http.StatusOK, report)
}

// AnalyzeFailure classifies a failure notification.
func (h *Handler) AnalyzeFailure(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { h.collector.ObserveRequest("failure", time.Since(start)) }()

	req, ok := h.decodeMessage(w, r)
	if !ok {
		return
	}

	report := h.analyzer.Analyze(req.Message)
	h.collector.RecordMessage(string(report.Overview.DetectedKind))

	h.writeJSON(w, http.StatusOK, report)
}

// Route classifies the input and runs the matching pipeline subset.
func (h *Handler) Route(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { h.collector.ObserveRequest("route", time.Since(start)) }()

	req, ok := h.decodeMessage(w, r)
	if !ok {
		return
	}

	result := h.router.Route(r.Context(), req.Message)
	h.collector.RecordRoute(result.Kind)

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) decodeMessage(w http.ResponseWriter, r *http.Request) (messageRequest, bool) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if req.Message == "" {
		h.writeError(w, http.StatusBadRequest, "message is required")
		return req, false
	}
	return req, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
