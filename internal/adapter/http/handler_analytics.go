package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fixora/assetdash/internal/domain"
	"github.com/fixora/assetdash/internal/logger"
	"github.com/fixora/assetdash/internal/ports"
	"github.com/fixora/assetdash/internal/usecase"
)

const maxReportBodyBytes = 1 << 20

// AnalyticsUseCase defines the behavior the handler depends on
type AnalyticsUseCase interface {
	Execute(ctx context.Context, q *domain.AnalyticsQuery) (*usecase.AnalyticsResponse, error)
}

// ReportUseCase defines the report behavior the handler depends on
type ReportUseCase interface {
	Generate(ctx context.Context, req domain.ReportRequest) (*usecase.CustomReport, error)
}

// AnalyticsHandler handles HTTP requests for dashboard analytics and custom reports
type AnalyticsHandler struct {
	analytics   AnalyticsUseCase
	reports     ReportUseCase
	identity    ports.IdentityProvider
	permissions domain.Permissions
	logger      logger.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics AnalyticsUseCase, reports ReportUseCase, identity ports.IdentityProvider, log logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		reports:   reports,
		identity:  identity,
		logger:    log,
	}
}

// RegisterRoutes registers analytics routes on the /api/v1 subrouter
func (h *AnalyticsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/analytics", h.GetAnalytics).Methods(http.MethodGet)
	router.HandleFunc("/analytics/reports", h.CreateReport).Methods(http.MethodPost)
}

// GetAnalytics handles analytics queries
func (h *AnalyticsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	staff, ok := h.authorize(w, r, h.permissions.CanViewReports)
	if !ok {
		return
	}

	params := queryParameters(r)
	q, err := usecase.ParseAnalyticsQuery(params)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.analytics.Execute(r.Context(), q)
	if err != nil {
		h.logger.Error(r.Context(), "Failed to answer analytics query", err, map[string]interface{}{
			"staff_id": staff.ID,
			"type":     q.Type,
		})
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp.Data, &Metadata{
		Timestamp:    time.Now().UTC(),
		ResponseTime: time.Since(start).Round(time.Millisecond).String(),
		Cached:       resp.Cached,
		Parameters:   params,
	})
}

// CreateReport handles custom report generation
func (h *AnalyticsHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	staff, ok := h.authorize(w, r, h.permissions.IsAdmin)
	if !ok {
		return
	}

	var req domain.ReportRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReportBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		verr := &domain.ValidationError{}
		verr.Add("body", "must be a valid JSON report definition")
		writeError(w, verr)
		return
	}

	report, err := h.reports.Generate(r.Context(), req)
	if err != nil {
		h.logger.Error(r.Context(), "Failed to generate report", err, map[string]interface{}{
			"staff_id": staff.ID,
			"report":   req.Name,
		})
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, report, nil)
}

// authorize resolves the caller and applies the capability check, writing
// the 401 or 403 response itself when the caller is turned away.
func (h *AnalyticsHandler) authorize(w http.ResponseWriter, r *http.Request, allowed func(*domain.Staff) bool) (*domain.Staff, bool) {
	staff, err := h.identity.CurrentStaff(r)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if staff == nil {
		writeError(w, domain.ErrUnauthenticated)
		return nil, false
	}
	if !allowed(staff) {
		logger.LogSecurityEvent(r.Context(), h.logger, "permission_denied", "LOW", map[string]interface{}{
			"staff_id": staff.ID,
			"role":     staff.Role,
			"path":     r.URL.Path,
		})
		writeError(w, domain.ErrForbidden)
		return nil, false
	}
	return staff, true
}

// queryParameters collects the recognised query parameters that were supplied
func queryParameters(r *http.Request) map[string]string {
	values := r.URL.Query()
	params := make(map[string]string)
	for _, name := range []string{
		usecase.ParamType,
		usecase.ParamDepartment,
		usecase.ParamCategory,
		usecase.ParamDateRange,
		usecase.ParamGroupBy,
		usecase.ParamMetrics,
	} {
		if values.Has(name) {
			params[name] = values.Get(name)
		}
	}
	return params
}
