package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/petralab/lithograph/internal/catalog"
	"github.com/petralab/lithograph/internal/config"
	"github.com/petralab/lithograph/internal/history"
	"github.com/petralab/lithograph/internal/i18n"
	"github.com/petralab/lithograph/internal/report"
	"github.com/petralab/lithograph/pkg/types"
)

// ReportGenerator runs the report pipeline for one mineral. The concrete
// implementation is report.Service; tests stub it.
type ReportGenerator interface {
	Generate(ctx context.Context, mineral *types.Mineral, request types.ReportRequest, lang i18n.Language) (*types.ReportArtifacts, error)
}

// RunRecorder appends report runs to the audit log.
type RunRecorder interface {
	Record(ctx context.Context, run history.Run) (*history.Run, error)
}

// EventBroadcaster pushes report lifecycle events to connected clients.
type EventBroadcaster interface {
	Broadcast(event ReportEvent)
}

// ReportHandlers contains the report generation endpoint.
type ReportHandlers struct {
	store     *catalog.Store
	config    *config.Config
	generator ReportGenerator
	runs      RunRecorder
	events    EventBroadcaster
}

// NewReportHandlers creates a new ReportHandlers instance. runs and events
// are optional; nil disables history recording or event broadcasting.
func NewReportHandlers(store *catalog.Store, cfg *config.Config, generator ReportGenerator, runs RunRecorder, events EventBroadcaster) *ReportHandlers {
	return &ReportHandlers{
		store:     store,
		config:    cfg,
		generator: generator,
		runs:      runs,
		events:    events,
	}
}

// GenerateReportRequest is the request body for POST /api/minerals/{slug}/report.
// Every field is optional.
type GenerateReportRequest struct {
	Language    string `json:"language,omitempty"`
	Audience    string `json:"audience,omitempty"`
	Purpose     string `json:"purpose,omitempty"`
	SiteContext string `json:"site_context,omitempty"`
}

// GenerateReportResponse is the success response for POST /api/minerals/{slug}/report.
type GenerateReportResponse struct {
	MarkupPath   string `json:"markup_path"`
	ArtifactPath string `json:"artifact_path"`
	Summary      string `json:"summary"`
	DurationMS   int64  `json:"duration_ms"`
}

// GenerateReport handles POST /api/minerals/{slug}/report - runs the full
// report pipeline and returns the artifact locations. Failures name the
// pipeline stage and carry the toolchain diagnostics verbatim.
func (h *ReportHandlers) GenerateReport(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		respondError(w, http.StatusBadRequest, "mineral slug is required", nil)
		return
	}

	var req GenerateReportRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "failed to parse request body", err)
			return
		}
	}

	mineral, err := h.store.Get(slug)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, http.StatusNotFound, "mineral not found", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get mineral", err)
		return
	}

	lang := requestLanguage(r, h.config)
	if req.Language != "" {
		parsed, ok := i18n.FromCode(req.Language)
		if !ok {
			respondError(w, http.StatusBadRequest, "unsupported language", nil)
			return
		}
		lang = parsed
	}

	request := types.ReportRequest{
		Audience:    req.Audience,
		Purpose:     req.Purpose,
		SiteContext: req.SiteContext,
	}
	request.ApplyDefaults()

	h.broadcast(ReportEvent{Type: "report.started", Slug: slug})

	start := time.Now()
	artifacts, err := h.generator.Generate(r.Context(), mineral, request, lang)
	duration := time.Since(start).Milliseconds()

	if err != nil {
		h.respondReportFailure(w, r, slug, request, lang, duration, err)
		return
	}

	h.record(r.Context(), history.Run{
		Slug:       slug,
		Language:   lang.Code(),
		Audience:   request.Audience,
		Purpose:    request.Purpose,
		Succeeded:  true,
		Summary:    artifacts.Summary,
		DurationMS: duration,
	})
	h.broadcast(ReportEvent{Type: "report.succeeded", Slug: slug, Summary: artifacts.Summary})

	respondJSON(w, http.StatusOK, GenerateReportResponse{
		MarkupPath:   artifacts.MarkupPath,
		ArtifactPath: artifacts.ArtifactPath,
		Summary:      artifacts.Summary,
		DurationMS:   duration,
	})
}

// respondReportFailure maps a pipeline error to an HTTP response, records
// the failed run, and broadcasts the failure event.
func (h *ReportHandlers) respondReportFailure(w http.ResponseWriter, r *http.Request, slug string, request types.ReportRequest, lang i18n.Language, duration int64, err error) {
	stage := ""
	diagnostic := err.Error()
	status := http.StatusInternalServerError
	message := "report generation failed"

	var reportErr *report.Error
	if errors.As(err, &reportErr) {
		stage = string(reportErr.Stage)
		diagnostic = reportErr.Diagnostic()
		switch reportErr.Stage {
		case report.StageRender:
			status = http.StatusUnprocessableEntity
			message = "report rendering failed"
		case report.StagePersist:
			status = http.StatusInternalServerError
			message = "failed to persist report documents"
		case report.StageBuild:
			status = http.StatusInternalServerError
			message = "document build failed"
		case report.StageBuildTimeout:
			status = http.StatusGatewayTimeout
			message = "document build timed out"
		}
	}

	h.record(r.Context(), history.Run{
		Slug:       slug,
		Language:   lang.Code(),
		Audience:   request.Audience,
		Purpose:    request.Purpose,
		Succeeded:  false,
		Stage:      stage,
		Diagnostic: diagnostic,
		DurationMS: duration,
	})
	h.broadcast(ReportEvent{Type: "report.failed", Slug: slug, Stage: stage})

	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  http.StatusText(status),
		Details: map[string]interface{}{
			"stage":      stage,
			"diagnostic": diagnostic,
		},
	})
}

func (h *ReportHandlers) record(ctx context.Context, run history.Run) {
	if h.runs == nil {
		return
	}
	if _, err := h.runs.Record(ctx, run); err != nil {
		log.Error().Err(err).Str("slug", run.Slug).Msg("failed to record report run")
	}
}

func (h *ReportHandlers) broadcast(event ReportEvent) {
	if h.events != nil {
		h.events.Broadcast(event)
	}
}
