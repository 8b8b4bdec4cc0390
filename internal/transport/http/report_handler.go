package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "vettoo/internal/errors"
	"vettoo/internal/middleware"
	"vettoo/pkg/contracts/domain"
)

// ReportHandler handles report-related HTTP requests.
type ReportHandler struct {
	service      ReportService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a new report handler.
func NewReportHandler(service ReportService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the report routes.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/statuses", h.GetStatuses)

	r.Group(func(r chi.Router) {
		r.Use(h.StatusCtx)
		r.Get("/packages", h.GetPackages)
		r.Get("/qualifications", h.GetQualifications)
		r.Get("/report", h.GetReport)
		r.Get("/report/export", h.ExportReport)
	})
	return r
}

// StatusCtx validates the status query parameter common to all selection
// endpoints.
func (h *ReportHandler) StatusCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("status")
		if raw == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("status", "Training contract status is required"))
			return
		}
		if _, err := domain.ParseStatus(raw); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("status", fmt.Sprintf("Unknown status %q", raw)))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetStatuses handles GET /api/statuses.
func (h *ReportHandler) GetStatuses(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{"statuses": h.service.Statuses(r.Context())})
}

// GetPackages handles GET /api/packages?status=.
func (h *ReportHandler) GetPackages(w http.ResponseWriter, r *http.Request) {
	status, _ := domain.ParseStatus(r.URL.Query().Get("status"))
	packages, err := h.service.Packages(r.Context(), status)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"packages": packages})
}

// GetQualifications handles GET /api/qualifications. The packages parameter
// repeats, one value per selected package, since package and qualification
// names can themselves contain commas. Only qualifications aligned to the
// selected packages are returned.
func (h *ReportHandler) GetQualifications(w http.ResponseWriter, r *http.Request) {
	status, _ := domain.ParseStatus(r.URL.Query().Get("status"))
	packages := listParam(r.URL.Query()["packages"])
	qualifications, err := h.service.Qualifications(r.Context(), status, packages)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"qualifications": qualifications})
}

// GetReport handles GET /api/report: the display table, chart series and
// metadata for the current selection.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	sel, apiErr := parseSelection(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	h.logger.InfoContext(r.Context(), "computing report",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("status", string(sel.Status)),
		slog.Bool("aggregate", sel.Aggregate))

	rep, err := h.service.Compute(r.Context(), sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, rep)
}

// ExportReport handles GET /api/report/export: streams the two-sheet
// workbook as an attachment.
func (h *ReportHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	sel, apiErr := parseSelection(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	// Buffer the workbook so a mid-write failure can still produce a
	// problem response instead of a truncated file.
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), sel, &buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := h.service.ExportFilename(sel)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.ErrorContext(r.Context(), "export download interrupted",
			slog.String("error", err.Error()),
			slog.String("filename", filename))
	}
}

// parseSelection builds the selection tuple from query parameters.
func parseSelection(r *http.Request) (domain.Selection, *apierrors.APIError) {
	q := r.URL.Query()

	status, err := domain.ParseStatus(q.Get("status"))
	if err != nil {
		return domain.Selection{}, apierrors.ErrValidation("status", err.Error())
	}

	sel := domain.Selection{
		Status:         status,
		Packages:       listParam(q["packages"]),
		Qualifications: listParam(q["qualifications"]),
	}

	if sel.YearFrom, err = intParam(q.Get("from")); err != nil {
		return domain.Selection{}, apierrors.ErrValidation("from", "must be a 4-digit year")
	}
	if sel.YearTo, err = intParam(q.Get("to")); err != nil {
		return domain.Selection{}, apierrors.ErrValidation("to", "must be a 4-digit year")
	}
	if sel.YearFrom != 0 && sel.YearTo != 0 && sel.YearTo < sel.YearFrom {
		return domain.Selection{}, apierrors.ErrValidation("to", "year range is reversed")
	}

	if sel.Aggregate, err = boolParam(q.Get("aggregate")); err != nil {
		return domain.Selection{}, apierrors.ErrValidation("aggregate", "must be true or false")
	}
	if sel.Round, err = boolParam(q.Get("round")); err != nil {
		return domain.Selection{}, apierrors.ErrValidation("round", "must be true or false")
	}
	return sel, nil
}

// listParam collects a repeated query parameter. Values pass through whole;
// splitting on commas would break names that contain them.
func listParam(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func boolParam(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}
