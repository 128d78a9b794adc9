package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/blackwell-systems/reportwatch/internal/engine"
	"github.com/blackwell-systems/reportwatch/internal/store"
	"github.com/rs/zerolog"
)

// Insights runs detection and recommendations for HTTP callers.
type Insights interface {
	RunAnomalyDetection(ctx context.Context, userID, companyID string, start, end time.Time) (*engine.DetectionResult, error)
	RunRecommendations(ctx context.Context, userID, companyID, role string) (*engine.RecommendationResult, error)
}

// FindingsLister reads the persisted findings log.
type FindingsLister interface {
	ListFindings(ctx context.Context, filter store.FindingFilter) ([]store.FindingRow, error)
}

const defaultFindingsLimit = 50

// Handler serves the insight endpoints.
type Handler struct {
	insights Insights
	findings FindingsLister
	now      func() time.Time
}

// NewHandler creates a Handler.
func NewHandler(insights Insights, findings FindingsLister) *Handler {
	return &Handler{insights: insights, findings: findings, now: time.Now}
}

type errorResponse struct {
	Error string `json:"error"`
}

// errBadRequest marks caller mistakes.
var errBadRequest = errors.New("bad request")

type requestError struct{ msg string }

func (e requestError) Error() string { return e.msg }
func (e requestError) Is(target error) bool { return target == errBadRequest }

func badRequest(msg string) error { return requestError{msg: msg} }

func identity(r *http.Request) (string, string, error) {
	q := r.URL.Query()
	userID, companyID := q.Get("user_id"), q.Get("company_id")
	if userID == "" || companyID == "" {
		return "", "", badRequest("user_id and company_id are required")
	}
	return userID, companyID, nil
}

// GetAnomalies runs anomaly detection for the requested period.
func (h *Handler) GetAnomalies(w http.ResponseWriter, r *http.Request) {
	userID, companyID, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	start, end, err := engine.ParsePeriod(q.Get("start"), q.Get("end"), h.now())
	if err != nil {
		writeError(w, r, badRequest(err.Error()))
		return
	}

	res, err := h.insights.RunAnomalyDetection(r.Context(), userID, companyID, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// GetRecommendations returns ranked report recommendations.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, companyID, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.insights.RunRecommendations(r.Context(), userID, companyID, r.URL.Query().Get("role"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// ListFindings returns persisted findings, newest first.
func (h *Handler) ListFindings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.FindingFilter{
		UserID:    q.Get("user_id"),
		CompanyID: q.Get("company_id"),
		Kind:      q.Get("kind"),
		Limit:     defaultFindingsLimit,
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, r, badRequest("limit must be a positive integer"))
			return
		}
		filter.Limit = n
	}

	rows, err := h.findings.ListFindings(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []store.FindingRow{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"findings": rows})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

// writeError maps caller mistakes to 400 and unavailable collaborators to 502.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var upstream *engine.UpstreamError
	switch {
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.As(err, &upstream):
		status = http.StatusBadGateway
	}

	ev := zerolog.Ctx(r.Context()).Warn()
	if status == http.StatusInternalServerError {
		ev = zerolog.Ctx(r.Context()).Error()
	}
	ev.Err(err).Int("status", status).Msg("request failed")

	writeJSON(w, r, status, errorResponse{Error: err.Error()})
}
