package handlers

import (
	"errors"
	"net/http"
	"time"

	e "github.com/talentops/rfh/internal/requirement/errors"
	"github.com/talentops/rfh/internal/requirement/models"
	"go.uber.org/zap"
)

// requirementPayload is the JSON shape of a requirement on the wire.
type requirementPayload struct {
	RequestID           string   `json:"request_id,omitempty"`
	JobTitle            string   `json:"job_title"`
	Company             string   `json:"company"`
	Department          string   `json:"department"`
	Location            string   `json:"location"`
	Shift               string   `json:"shift"`
	JobType             string   `json:"job_type"`
	HiringManager       string   `json:"hiring_manager,omitempty"`
	ExperienceRange     string   `json:"experience_range,omitempty"`
	Skills              []string `json:"skills,omitempty"`
	MinQualification    string   `json:"min_qualification,omitempty"`
	Positions           int      `json:"positions,omitempty"`
	Budget              string   `json:"budget,omitempty"`
	Priority            string   `json:"priority"`
	TentativeDOJ        string   `json:"tentative_doj,omitempty"`
	Remarks             string   `json:"remarks,omitempty"`
	EmailSubject        string   `json:"email_subject,omitempty"`
	EmailSender         string   `json:"email_sender,omitempty"`
	IsManualRequirement bool     `json:"is_manual_requirement,omitempty"`
	JDPath              string   `json:"jd_path,omitempty"`
	JDFilename          string   `json:"jd_filename,omitempty"`
	JDText              string   `json:"jd_text,omitempty"`
	JobPosted           bool     `json:"job_posted,omitempty"`
	Status              string   `json:"status,omitempty"`
	StatusDisplay       string   `json:"status_display,omitempty"`
	AssignedRecruiters  []string `json:"assigned_recruiters,omitempty"`
	CreatedAt           string   `json:"created_at,omitempty"`
	UpdatedAt           string   `json:"updated_at,omitempty"`
	DeletedAt           string   `json:"deleted_at,omitempty"`
	DeletedBy           string   `json:"deleted_by,omitempty"`
}

// payloadToModel converts an inbound payload to the domain model. Status is
// ignored on input: new requirements always start Open.
func payloadToModel(p *requirementPayload) *models.Requirement {
	return &models.Requirement{
		JobTitle:            p.JobTitle,
		Company:             p.Company,
		Department:          p.Department,
		Location:            p.Location,
		Shift:               p.Shift,
		JobType:             p.JobType,
		HiringManager:       p.HiringManager,
		ExperienceRange:     p.ExperienceRange,
		Skills:              p.Skills,
		MinQualification:    p.MinQualification,
		Positions:           p.Positions,
		Budget:              p.Budget,
		Priority:            p.Priority,
		TentativeDOJ:        p.TentativeDOJ,
		Remarks:             p.Remarks,
		EmailSubject:        p.EmailSubject,
		EmailSender:         p.EmailSender,
		IsManualRequirement: p.IsManualRequirement,
		JDPath:              p.JDPath,
		JDFilename:          p.JDFilename,
		JDText:              p.JDText,
	}
}

func modelToPayload(req *models.Requirement) *requirementPayload {
	p := &requirementPayload{
		RequestID:           req.RequestID,
		JobTitle:            req.JobTitle,
		Company:             req.Company,
		Department:          req.Department,
		Location:            req.Location,
		Shift:               req.Shift,
		JobType:             req.JobType,
		HiringManager:       req.HiringManager,
		ExperienceRange:     req.ExperienceRange,
		Skills:              req.Skills,
		MinQualification:    req.MinQualification,
		Positions:           req.Positions,
		Budget:              req.Budget,
		Priority:            req.Priority,
		TentativeDOJ:        req.TentativeDOJ,
		Remarks:             req.Remarks,
		EmailSubject:        req.EmailSubject,
		EmailSender:         req.EmailSender,
		IsManualRequirement: req.IsManualRequirement,
		JDPath:              req.JDPath,
		JDFilename:          req.JDFilename,
		JDText:              req.JDText,
		JobPosted:           req.JobPosted,
		Status:              string(req.Status),
		StatusDisplay:       models.DisplayStatus(req.Status),
		AssignedRecruiters:  req.AssignedRecruiters,
		CreatedAt:           req.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           req.UpdatedAt.Format(time.RFC3339),
		DeletedBy:           req.DeletedBy,
	}
	if req.Archived() {
		p.DeletedAt = req.DeletedAt.Time.Format(time.RFC3339)
	}
	return p
}

func modelsToPayloads(reqs []*models.Requirement) []*requirementPayload {
	out := make([]*requirementPayload, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, modelToPayload(req))
	}
	return out
}

// requirementUpdatePayload carries a partial update; absent fields stay
// untouched.
type requirementUpdatePayload struct {
	JobTitle           *string   `json:"job_title"`
	Company            *string   `json:"company"`
	Department         *string   `json:"department"`
	Location           *string   `json:"location"`
	Shift              *string   `json:"shift"`
	JobType            *string   `json:"job_type"`
	HiringManager      *string   `json:"hiring_manager"`
	ExperienceRange    *string   `json:"experience_range"`
	Skills             *[]string `json:"skills"`
	MinQualification   *string   `json:"min_qualification"`
	Positions          *int      `json:"positions"`
	Budget             *string   `json:"budget"`
	Priority           *string   `json:"priority"`
	TentativeDOJ       *string   `json:"tentative_doj"`
	Remarks            *string   `json:"remarks"`
	Status             *string   `json:"status"`
	AssignedRecruiters *[]string `json:"assigned_recruiters"`
}

func payloadToUpdate(requestID string, p *requirementUpdatePayload) (*models.RequirementUpdate, error) {
	update := &models.RequirementUpdate{
		RequestID:          requestID,
		JobTitle:           p.JobTitle,
		Company:            p.Company,
		Department:         p.Department,
		Location:           p.Location,
		Shift:              p.Shift,
		JobType:            p.JobType,
		HiringManager:      p.HiringManager,
		ExperienceRange:    p.ExperienceRange,
		Skills:             p.Skills,
		MinQualification:   p.MinQualification,
		Positions:          p.Positions,
		Budget:             p.Budget,
		Priority:           p.Priority,
		TentativeDOJ:       p.TentativeDOJ,
		Remarks:            p.Remarks,
		AssignedRecruiters: p.AssignedRecruiters,
	}
	if p.Status != nil {
		status, err := models.ParseStatus(*p.Status)
		if err != nil {
			return nil, err
		}
		update.Status = &status
	}
	return update, nil
}

// duplicatesPayload is the DuplicatesFound branch of the create result.
type duplicatesPayload struct {
	HasDuplicates bool                  `json:"has_duplicates"`
	MatchType     string                `json:"match_type"`
	Matches       []*requirementPayload `json:"matches"`
}

// mapServiceError maps domain errors to HTTP status codes.
func (h *Handler) mapServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, e.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, e.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, e.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, e.ErrDuplicate):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("internal server error", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
