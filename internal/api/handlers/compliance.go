// Package handlers provides HTTP handlers for the compliance API.
package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/caretrack/go-cce/internal/api/middleware"
	"github.com/caretrack/go-cce/internal/compliance"
	"github.com/caretrack/go-cce/internal/domain/submission"
	"github.com/caretrack/go-cce/internal/infrastructure/redpanda"
	"github.com/caretrack/go-cce/internal/observability/metrics"
	"github.com/caretrack/go-cce/pkg/circuitbreaker"
)

// ComplianceHandler handles compliance engine endpoints
type ComplianceHandler struct {
	engine  *compliance.Engine
	repo    *submission.Repository
	stats   compliance.StatsSource
	breaker *circuitbreaker.CircuitBreaker
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewComplianceHandler creates a new handler. repo, stats, and breaker may be
// nil; the corresponding endpoints then run without persistence or report
// statistics.
func NewComplianceHandler(engine *compliance.Engine, repo *submission.Repository, stats compliance.StatsSource, breaker *circuitbreaker.CircuitBreaker, m *metrics.Metrics, logger *zap.Logger) *ComplianceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplianceHandler{
		engine:  engine,
		repo:    repo,
		stats:   stats,
		breaker: breaker,
		metrics: m,
		logger:  logger,
	}
}

// Routes returns the handler routes
func (h *ComplianceHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/requirements", h.GetRequirements)
	r.Post("/documents/validate", h.ValidateDocument)
	r.Post("/forms/template", h.GenerateTemplate)
	r.Post("/forms/validate", h.ValidateForm)
	r.Post("/reports", h.GenerateReport)
	r.Get("/submissions/{id}", h.GetSubmission)
	r.Get("/submissions/{id}/events", h.GetSubmissionEvents)
	return r
}

// RequirementsResponse is the response for GET /requirements
type RequirementsResponse struct {
	States []compliance.RuleSet          `json:"states"`
	Merged compliance.MergedRequirements `json:"merged"`
}

// GetRequirements handles GET /requirements?states=GA,FL
func (h *ComplianceHandler) GetRequirements(w http.ResponseWriter, r *http.Request) {
	codes := parseStates(r.URL.Query().Get("states"))
	if len(codes) == 0 {
		h.jsonError(w, "states query parameter is required", http.StatusBadRequest)
		return
	}

	resp := RequirementsResponse{
		States: h.engine.StateRequirements(codes),
		Merged: h.engine.MergedRequirements(codes),
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// ValidateDocumentRequest is the request body for document validation
type ValidateDocumentRequest struct {
	Document     compliance.Document `json:"document"`
	States       []string            `json:"states"`
	SubmissionID string              `json:"submission_id,omitempty"`
}

// ValidateDocumentResponse is the validation outcome plus submission tracking
type ValidateDocumentResponse struct {
	SubmissionID string                      `json:"submission_id,omitempty"`
	Status       string                      `json:"status,omitempty"`
	Result       compliance.ValidationResult `json:"result"`
}

// ValidateDocument handles POST /documents/validate
func (h *ComplianceHandler) ValidateDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tracer := otel.Tracer("compliance-handler")
	ctx, span := tracer.Start(ctx, "validate_document")
	defer span.End()

	var req ValidateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Document == nil {
		h.jsonError(w, "document is required", http.StatusBadRequest)
		return
	}
	if len(req.States) == 0 {
		h.jsonError(w, "states is required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	result := h.engine.ValidateDocumentation(req.Document, req.States)

	if h.metrics != nil {
		h.metrics.ValidationDuration.Observe(time.Since(start).Seconds())
		h.metrics.ComplianceScore.Observe(float64(result.ComplianceScore))
		outcome := "compliant"
		if !result.IsValid {
			outcome = "non_compliant"
		}
		h.metrics.DocumentsValidated.WithLabelValues(outcome).Inc()
	}
	span.SetAttributes(
		attribute.Bool("is_valid", result.IsValid),
		attribute.Int("compliance_score", result.ComplianceScore),
	)

	resp := ValidateDocumentResponse{Result: result}

	if h.repo != nil {
		agg, err := h.recordSubmission(r, &req, result)
		if err != nil {
			h.logger.Error("submission persistence failed",
				zap.Error(err),
				zap.String("request_id", middleware.GetRequestID(ctx)))
			h.jsonError(w, "failed to record submission", http.StatusInternalServerError)
			return
		}
		resp.SubmissionID = agg.ID()
		resp.Status = string(agg.Status())
		span.SetAttributes(attribute.String("submission_id", agg.ID()))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// recordSubmission persists the validated document as submission events. A
// request carrying a submission ID amends the existing aggregate; otherwise a
// new one is received. Events and outbox entries commit in one transaction.
func (h *ComplianceHandler) recordSubmission(r *http.Request, req *ValidateDocumentRequest, result compliance.ValidationResult) (*submission.Aggregate, error) {
	ctx := r.Context()
	hash := documentHash(req.Document)
	docType, _ := req.Document[compliance.FieldType].(string)

	var agg *submission.Aggregate
	if req.SubmissionID != "" {
		loaded, err := h.repo.Load(ctx, req.SubmissionID)
		if err != nil {
			return nil, err
		}
		if err := loaded.Amend(hash); err != nil {
			return nil, err
		}
		agg = loaded
	} else {
		agg = submission.NewAggregate(uuid.New().String())
		data := &submission.SubmissionReceivedData{
			SubmissionID:  agg.ID(),
			AgencyID:      middleware.GetAgencyID(ctx),
			DocumentType:  docType,
			Jurisdictions: req.States,
			DocumentHash:  hash,
			ReceivedAt:    time.Now().UTC(),
		}
		if err := agg.Receive(data); err != nil {
			return nil, err
		}
	}

	validated := &submission.SubmissionValidatedData{
		SubmissionID:    agg.ID(),
		IsValid:         result.IsValid,
		ComplianceScore: result.ComplianceScore,
		ErrorCount:      len(result.Errors),
		WarningCount:    len(result.Warnings),
		ValidatedAt:     time.Now().UTC(),
	}
	if err := agg.RecordValidation(validated); err != nil {
		return nil, err
	}

	return agg, h.repo.SaveWithOutbox(ctx, agg, redpanda.TopicComplianceEvents, redpanda.TopicAuditTrail)
}

// TemplateRequest is the request body for form template generation
type TemplateRequest struct {
	States            []string `json:"states"`
	DocumentationType string   `json:"documentation_type"`
}

// GenerateTemplate handles POST /forms/template
func (h *ComplianceHandler) GenerateTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.States) == 0 {
		h.jsonError(w, "states is required", http.StatusBadRequest)
		return
	}

	tmpl := h.engine.GenerateFormTemplate(req.States, req.DocumentationType)
	if h.metrics != nil {
		h.metrics.TemplatesGenerated.Inc()
	}
	h.writeJSON(w, http.StatusOK, tmpl)
}

// ValidateFormRequest is the request body for form validation. When no
// template is supplied one is regenerated from states and documentation type.
type ValidateFormRequest struct {
	FormData          compliance.FormData      `json:"form_data"`
	Template          *compliance.FormTemplate `json:"template,omitempty"`
	States            []string                 `json:"states,omitempty"`
	DocumentationType string                   `json:"documentation_type,omitempty"`
}

// ValidateForm handles POST /forms/validate
func (h *ComplianceHandler) ValidateForm(w http.ResponseWriter, r *http.Request) {
	var req ValidateFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.FormData == nil {
		h.jsonError(w, "form_data is required", http.StatusBadRequest)
		return
	}

	tmpl := req.Template
	if tmpl == nil {
		if len(req.States) == 0 {
			h.jsonError(w, "template or states is required", http.StatusBadRequest)
			return
		}
		tmpl = h.engine.GenerateFormTemplate(req.States, req.DocumentationType)
	}

	result := compliance.ValidateFormData(req.FormData, tmpl)
	if h.metrics != nil {
		outcome := "valid"
		if !result.IsValid {
			outcome = "invalid"
		}
		h.metrics.FormsValidated.WithLabelValues(outcome).Inc()
	}
	h.writeJSON(w, http.StatusOK, result)
}

// ReportRequest is the request body for compliance report generation
type ReportRequest struct {
	AgencyID      string   `json:"agency_id"`
	States        []string `json:"states"`
	TimeRangeDays int      `json:"time_range_days"`
}

// GenerateReport handles POST /reports
func (h *ComplianceHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tracer := otel.Tracer("compliance-handler")
	ctx, span := tracer.Start(ctx, "generate_report")
	defer span.End()

	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.AgencyID == "" {
		req.AgencyID = middleware.GetAgencyID(ctx)
	}
	if req.AgencyID == "" {
		h.jsonError(w, "agency_id is required", http.StatusBadRequest)
		return
	}
	if len(req.States) == 0 {
		h.jsonError(w, "states is required", http.StatusBadRequest)
		return
	}

	days := req.TimeRangeDays
	if days <= 0 {
		days = compliance.DefaultReportRangeDays
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	stats, err := h.fetchStats(ctx, req.AgencyID, since)
	if err != nil {
		h.logger.Error("stats fetch failed",
			zap.Error(err),
			zap.String("agency_id", req.AgencyID),
			zap.String("request_id", middleware.GetRequestID(ctx)))
		h.jsonError(w, "statistics unavailable", http.StatusServiceUnavailable)
		return
	}

	report := h.engine.BuildComplianceReport(req.AgencyID, req.States, req.TimeRangeDays, stats)
	if h.metrics != nil {
		h.metrics.ReportsGenerated.Inc()
	}
	span.SetAttributes(attribute.String("report_id", report.ReportID))

	h.writeJSON(w, http.StatusOK, report)
}

// fetchStats reads agency statistics, routed through the circuit breaker when
// one is configured. Without a stats source reports carry zero counts.
func (h *ComplianceHandler) fetchStats(ctx context.Context, agencyID string, since time.Time) (compliance.DocumentStats, error) {
	if h.stats == nil {
		return compliance.DocumentStats{}, nil
	}
	if h.breaker == nil {
		return h.stats.AgencyStats(ctx, agencyID, since)
	}

	result, err := h.breaker.Execute(ctx, func() (interface{}, error) {
		return h.stats.AgencyStats(ctx, agencyID, since)
	})
	if err != nil {
		return compliance.DocumentStats{}, err
	}
	return result.(compliance.DocumentStats), nil
}

// GetSubmission handles GET /submissions/{id}
func (h *ComplianceHandler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		h.jsonError(w, "submission store not configured", http.StatusNotImplemented)
		return
	}

	id := chi.URLParam(r, "id")
	agg, err := h.repo.Load(r.Context(), id)
	if err != nil {
		h.jsonError(w, "submission not found", http.StatusNotFound)
		return
	}

	resp := map[string]interface{}{
		"id":               agg.ID(),
		"status":           agg.Status(),
		"version":          agg.Version(),
		"agency_id":        agg.AgencyID(),
		"compliance_score": agg.ComplianceScore(),
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// GetSubmissionEvents handles GET /submissions/{id}/events
func (h *ComplianceHandler) GetSubmissionEvents(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		h.jsonError(w, "submission store not configured", http.StatusNotImplemented)
		return
	}

	id := chi.URLParam(r, "id")
	events, err := h.repo.GetEvents(r.Context(), id)
	if err != nil {
		h.jsonError(w, "failed to get events", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, events)
}

func parseStates(raw string) []string {
	var codes []string
	for _, part := range strings.Split(raw, ",") {
		if code := strings.TrimSpace(part); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// documentHash returns the SHA-256 of the canonical JSON encoding. The hash
// is the only document-derived value persisted on audit events.
func documentHash(doc compliance.Document) string {
	payload, err := json.Marshal(doc)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func (h *ComplianceHandler) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func (h *ComplianceHandler) jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
