package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/talentops/rfh/internal/requirement/auth"
	"github.com/talentops/rfh/internal/requirement/models"
	"github.com/talentops/rfh/internal/requirement/reports"
	"go.uber.org/zap"
)

// RequirementController defines the business logic the handlers invoke.
type RequirementController interface {
	ProposeCreate(ctx context.Context, req *models.Requirement) (*models.CreateResult, error)
	ForceCreate(ctx context.Context, req *models.Requirement) (*models.Requirement, error)
	CheckDuplicate(ctx context.Context, req *models.Requirement) ([]*models.Requirement, models.MatchType, error)
	GetRequirement(ctx context.Context, requestID string) (*models.Requirement, error)
	UpdateRequirement(ctx context.Context, update *models.RequirementUpdate, actor models.Actor) (*models.Requirement, error)
	Archive(ctx context.Context, requestID string, actor models.Actor) error
	Restore(ctx context.Context, requestID string, actor models.Actor) error
	List(ctx context.Context, filter models.ListFilter) ([]*models.Requirement, error)
	ListClosed(ctx context.Context) ([]*models.Requirement, error)
	ListArchived(ctx context.Context) ([]*models.Requirement, error)
	Stats(ctx context.Context) (*models.TrackerStats, error)
	PostJob(ctx context.Context, requestID, email string, actor models.Actor) (*models.Requirement, error)
}

// EnumController manages the extensible selection lists.
type EnumController interface {
	RegisterValue(ctx context.Context, rawType, rawValue string, actor models.Actor) (*models.EnumValue, error)
	ListValues(ctx context.Context, rawType string) ([]string, error)
}

// SLAController manages the per-step time budgets.
type SLAController interface {
	ListConfig(ctx context.Context) ([]*models.SLAConfig, error)
	UpdateStep(ctx context.Context, stepName string, hours, days int, description string, actor models.Actor) error
	InitializeDefaults(ctx context.Context, actor models.Actor) error
}

// ReportsController builds the exportable reports.
type ReportsController interface {
	Recruitment(ctx context.Context, from, to time.Time, company string) ([]reports.RecruitmentRow, error)
	InternalTracker(ctx context.Context, from, to time.Time) ([]reports.InternalTrackerRow, error)
}

// Handler maps HTTP requests onto the controllers.
type Handler struct {
	requirements RequirementController
	enums        EnumController
	sla          SLAController
	reports      ReportsController
	logger       *zap.Logger
}

func NewHandler(
	requirements RequirementController,
	enums EnumController,
	sla SLAController,
	reportsCtl ReportsController,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		requirements: requirements,
		enums:        enums,
		sla:          sla,
		reports:      reportsCtl,
		logger:       logger.Named("http_handler"),
	}
}

// Routes builds the full route tree. Reads are open; every mutating route
// sits behind the JWT middleware.
func (h *Handler) Routes(jwtSecret string) chi.Router {
	r := chi.NewRouter()

	r.Get("/tracker", h.ListTracker)
	r.Get("/tracker/stats", h.TrackerStats)
	r.Get("/tracker/closed", h.ListClosed)
	r.Get("/tracker/archived", h.ListArchived)
	r.Get("/tracker/{requestID}", h.GetRequirement)
	r.Get("/get-enum-values", h.ListEnumValues)
	r.Get("/sla/config", h.ListSLAConfig)
	r.Get("/reports/recruitment", h.RecruitmentReport)
	r.Get("/reports/internal-tracker", h.InternalTrackerReport)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(jwtSecret))

		r.Post("/requirements", h.CreateRequirement)
		r.Post("/requirements/force-create", h.ForceCreateRequirement)
		r.Post("/requirements/check-duplicate", h.CheckDuplicate)
		r.Put("/tracker/{requestID}", h.UpdateRequirement)
		r.Delete("/tracker/{requestID}", h.ArchiveRequirement)
		r.Post("/tracker/{requestID}/restore", h.RestoreRequirement)
		r.Post("/tracker/{requestID}/post-job", h.PostJob)
		r.Post("/add-enum-value", h.AddEnumValue)
		r.Put("/sla/config/{stepName}", h.UpdateSLAConfig)
		r.Post("/sla/config/initialize", h.InitializeSLAConfig)
	})

	return r
}

func actorFrom(r *http.Request) (models.Actor, bool) {
	return auth.ActorFromContext(r.Context())
}

// CreateRequirement runs the duplicate gate: 201 with the created record,
// or 409 with the duplicate set for the caller to decide on.
func (h *Handler) CreateRequirement(w http.ResponseWriter, r *http.Request) {
	var payload requirementPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.requirements.ProposeCreate(r.Context(), payloadToModel(&payload))
	if err != nil {
		h.mapServiceError(w, err)
		return
	}

	if !result.Created() {
		writeJSON(w, http.StatusConflict, duplicatesPayload{
			HasDuplicates: true,
			MatchType:     string(result.MatchType),
			Matches:       modelsToPayloads(result.Duplicates),
		})
		return
	}
	writeJSON(w, http.StatusCreated, modelToPayload(result.Requirement))
}

// ForceCreateRequirement bypasses the duplicate gate.
func (h *Handler) ForceCreateRequirement(w http.ResponseWriter, r *http.Request) {
	var payload requirementPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.requirements.ForceCreate(r.Context(), payloadToModel(&payload))
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, modelToPayload(created))
}

// CheckDuplicate runs the duplicate query without committing anything.
func (h *Handler) CheckDuplicate(w http.ResponseWriter, r *http.Request) {
	var payload requirementPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	matches, matchType, err := h.requirements.CheckDuplicate(r.Context(), payloadToModel(&payload))
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, duplicatesPayload{
		HasDuplicates: len(matches) > 0,
		MatchType:     string(matchType),
		Matches:       modelsToPayloads(matches),
	})
}

func (h *Handler) GetRequirement(w http.ResponseWriter, r *http.Request) {
	req, err := h.requirements.GetRequirement(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, modelToPayload(req))
}

func (h *Handler) UpdateRequirement(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var payload requirementUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	update, err := payloadToUpdate(chi.URLParam(r, "requestID"), &payload)
	if err != nil {
		h.mapServiceError(w, err)
		return
	}

	updated, err := h.requirements.UpdateRequirement(r.Context(), update, actor)
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, modelToPayload(updated))
}

func (h *Handler) ArchiveRequirement(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	if err := h.requirements.Archive(r.Context(), chi.URLParam(r, "requestID"), actor); err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}

func (h *Handler) RestoreRequirement(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	if err := h.requirements.Restore(r.Context(), chi.URLParam(r, "requestID"), actor); err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}

func (h *Handler) ListTracker(w http.ResponseWriter, r *http.Request) {
	filter := models.ListFilter{
		Status:    r.URL.Query().Get("status"),
		Company:   r.URL.Query().Get("company"),
		Recruiter: r.URL.Query().Get("recruiter"),
	}
	reqs, err := h.requirements.List(r.Context(), filter)
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, modelsToPayloads(reqs))
}

func (h *Handler) ListClosed(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.requirements.ListClosed(r.Context())
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, modelsToPayloads(reqs))
}

func (h *Handler) ListArchived(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.requirements.ListArchived(r.Context())
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, modelsToPayloads(reqs))
}

func (h *Handler) TrackerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.requirements.Stats(r.Context())
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"by_status":      stats.ByStatus,
		"total_active":   stats.TotalActive,
		"total_archived": stats.TotalArchived,
	})
}

type postJobRequest struct {
	Email string `json:"email"`
}

func (h *Handler) PostJob(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var payload postJobRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	req, err := h.requirements.PostJob(r.Context(), chi.URLParam(r, "requestID"), payload.Email, actor)
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, modelToPayload(req))
}

func (h *Handler) ListEnumValues(w http.ResponseWriter, r *http.Request) {
	values, err := h.enums.ListValues(r.Context(), r.URL.Query().Get("enum_type"))
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"values": values})
}

type addEnumValueRequest struct {
	EnumType string `json:"enum_type"`
	NewValue string `json:"new_value"`
}

func (h *Handler) AddEnumValue(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var payload addEnumValueRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	value, err := h.enums.RegisterValue(r.Context(), payload.EnumType, payload.NewValue, actor)
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"added_value":   value.SanitizedValue,
		"display_value": value.DisplayValue,
	})
}

type slaConfigPayload struct {
	StepName    string `json:"step_name"`
	SLAHours    int    `json:"sla_hours"`
	SLADays     int    `json:"sla_days"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
}

func (h *Handler) ListSLAConfig(w http.ResponseWriter, r *http.Request) {
	entries, err := h.sla.ListConfig(r.Context())
	if err != nil {
		h.mapServiceError(w, err)
		return
	}

	payloads := make([]slaConfigPayload, 0, len(entries))
	for _, entry := range entries {
		payloads = append(payloads, slaConfigPayload{
			StepName:    entry.StepName,
			SLAHours:    entry.SLAHours,
			SLADays:     entry.SLADays,
			Description: entry.Description,
			Priority:    entry.Priority,
		})
	}
	writeJSON(w, http.StatusOK, payloads)
}

func (h *Handler) UpdateSLAConfig(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var payload slaConfigPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	stepName := chi.URLParam(r, "stepName")
	if err := h.sla.UpdateStep(r.Context(), stepName, payload.SLAHours, payload.SLADays, payload.Description, actor); err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) InitializeSLAConfig(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	if err := h.sla.InitializeDefaults(r.Context(), actor); err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "initialized"})
}

// reportWindow parses date_from/date_to query params. Missing bounds default
// to the last 30 days.
func reportWindow(r *http.Request) (time.Time, time.Time, error) {
	const layout = "2006-01-02"
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := r.URL.Query().Get("date_from"); raw != "" {
		parsed, err := time.Parse(layout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid date_from %q", raw)
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("date_to"); raw != "" {
		parsed, err := time.Parse(layout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid date_to %q", raw)
		}
		// Inclusive end date.
		to = parsed.AddDate(0, 0, 1)
	}
	return from, to, nil
}

func wantsCSV(r *http.Request) bool {
	if r.URL.Query().Get("format") == "csv" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/csv")
}

func (h *Handler) RecruitmentReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := reportWindow(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := h.reports.Recruitment(r.Context(), from, to, r.URL.Query().Get("company"))
	if err != nil {
		h.mapServiceError(w, err)
		return
	}

	if wantsCSV(r) {
		records := make([][]string, 0, len(rows))
		for _, row := range rows {
			records = append(records, row.Record())
		}
		writeCSV(w, "recruitment_report.csv", reports.RecruitmentHeader, records)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) InternalTrackerReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := reportWindow(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := h.reports.InternalTracker(r.Context(), from, to)
	if err != nil {
		h.mapServiceError(w, err)
		return
	}

	if wantsCSV(r) {
		records := make([][]string, 0, len(rows))
		for _, row := range rows {
			records = append(records, row.Record())
		}
		writeCSV(w, "internal_tracker_report.csv", reports.InternalTrackerHeader, records)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeCSV(w http.ResponseWriter, filename string, header []string, records [][]string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_ = reports.WriteCSV(w, header, records)
}
