// Package api exposes HTTP handlers for the workload service.
package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/workload/internal/auth"
	"example.com/workload/internal/correlation"
	"example.com/workload/internal/domain"
	"example.com/workload/internal/observability"
)

// Applier applies a validated workload event to the aggregate store.
type Applier interface {
	Apply(ctx context.Context, event domain.WorkloadEvent) error
}

// Summarizer renders the trainer's monthly totals.
type Summarizer interface {
	Summarize(ctx context.Context, trainerUsername string) (*domain.Summary, error)
}

// Reporter produces the per-trainer totals for one calendar month.
type Reporter interface {
	MonthlyReport(ctx context.Context, year, month int) ([]domain.MonthlyWorkload, error)
}

// Handler coordinates HTTP requests with the aggregation service.
type Handler struct {
	applier    Applier
	summarizer Summarizer
	reporter   Reporter
	logger     *log.Logger
}

// NewHandler builds a Handler.
func NewHandler(applier Applier, summarizer Summarizer, reporter Reporter) *Handler {
	return &Handler{
		applier:    applier,
		summarizer: summarizer,
		reporter:   reporter,
		logger:     log.New(log.Writer(), "[api] ", log.LstdFlags),
	}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/workload", h.workload)
	mux.HandleFunc("/v1/workload/", h.workloadByTrainer)
	mux.HandleFunc("/v1/reports/monthly", h.monthlyReport)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) workload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	h.updateWorkload(w, r)
}

// updateWorkload is the synchronous inbound path: the profile-management
// side posts a workload change directly instead of going through the queue.
func (h *Handler) updateWorkload(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeWorkloadWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope workload:write required")
		return
	}

	var event domain.WorkloadEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := event.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	corrID, _ := correlation.FromContext(r.Context())
	h.logger.Printf("correlationId=%s received %s request for trainer %s, duration %d mins, date %s",
		corrID, event.ActionType, event.TrainerUsername, event.TrainingDuration, event.TrainingDate)

	if err := h.applier.Apply(r.Context(), event); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) workloadByTrainer(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimPrefix(r.URL.Path, "/v1/workload/")
	if username == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing trainer username")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeWorkloadRead) && !claims.HasScope(auth.ScopeWorkloadWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope workload:read required")
		return
	}

	summary, err := h.summarizer.Summarize(r.Context(), username)
	if err != nil {
		if errors.Is(err, domain.ErrTrainerNotFound) {
			observability.RecordSummaryServed("not_found")
			writeError(w, http.StatusNotFound, "not_found", "no workload recorded for trainer")
			return
		}
		observability.RecordSummaryServed("error")
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	observability.RecordSummaryServed("ok")
	writeJSON(w, http.StatusOK, toSummaryView(summary))
}

// monthlyReport streams a per-trainer workload summary for one calendar
// month as CSV. Defaults to the current month; trainers with a zero total
// are omitted from the report.
func (h *Handler) monthlyReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeWorkloadRead) && !claims.HasScope(auth.ScopeWorkloadWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope workload:read required")
		return
	}

	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())
	var err error
	if raw := r.URL.Query().Get("year"); raw != "" {
		if year, err = strconv.Atoi(raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "year must be an integer")
			return
		}
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		if month, err = strconv.Atoi(raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "month must be an integer")
			return
		}
	}
	if month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid_request", "month must be 1-12")
		return
	}

	rows, err := h.reporter.MonthlyReport(r.Context(), year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="Trainers_Trainings_summary_%04d_%02d.csv"`, year, month))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Trainer First Name", "Trainer Last Name", "Training Duration (mins)"})
	for _, row := range rows {
		_ = cw.Write([]string{row.TrainerFirstName, row.TrainerLastName, strconv.Itoa(row.TotalDuration)})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Printf("report write failed: %v", err)
	}
}

// TrainerSummaryView is the response body for GET /v1/workload/{username}.
type TrainerSummaryView struct {
	TrainerUsername  string            `json:"trainerUsername"`
	TrainerFirstName string            `json:"trainerFirstName"`
	TrainerLastName  string            `json:"trainerLastName"`
	TrainerStatus    bool              `json:"trainerStatus"`
	Years            []YearSummaryView `json:"years"`
}

// YearSummaryView groups month entries under one year.
type YearSummaryView struct {
	Year   int                `json:"year"`
	Months []MonthSummaryView `json:"months"`
}

// MonthSummaryView carries one month's accumulated minutes.
type MonthSummaryView struct {
	Month                   int `json:"month"`
	TrainingSummaryDuration int `json:"trainingSummaryDuration"`
}

func toSummaryView(summary *domain.Summary) TrainerSummaryView {
	view := TrainerSummaryView{
		TrainerUsername:  summary.TrainerUsername,
		TrainerFirstName: summary.TrainerFirstName,
		TrainerLastName:  summary.TrainerLastName,
		TrainerStatus:    summary.TrainerStatus,
		Years:            make([]YearSummaryView, 0, len(summary.Years)),
	}
	for _, year := range summary.Years {
		months := make([]MonthSummaryView, 0, len(year.Months))
		for _, month := range year.Months {
			months = append(months, MonthSummaryView{
				Month:                   month.Month,
				TrainingSummaryDuration: month.TotalDuration,
			})
		}
		view.Years = append(view.Years, YearSummaryView{Year: year.Year, Months: months})
	}
	return view
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
