// Package reports builds the recruitment and internal-tracker report rows
// and serializes them to CSV. SLA breach evaluation lives here, on the
// reporting side; the workflow itself never consults the budgets.
package reports

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/talentops/rfh/internal/requirement/models"
	"go.uber.org/zap"
)

// Repository is the subset of storage the reports need.
type Repository interface {
	ListCreatedBetween(ctx context.Context, from, to time.Time, company string) ([]*models.Requirement, error)
	ListSLAConfig(ctx context.Context) ([]*models.SLAConfig, error)
}

type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.Named("reports"),
		now:    time.Now,
	}
}

// RecruitmentHeader is the column list of the recruitment report, in order.
var RecruitmentHeader = []string{
	"request_id", "job_title", "company", "department", "location",
	"priority", "status", "positions", "recruiters", "created_at", "age_days",
}

// RecruitmentRow is one line of the recruitment report.
type RecruitmentRow struct {
	RequestID  string
	JobTitle   string
	Company    string
	Department string
	Location   string
	Priority   string
	Status     string
	Positions  int
	Recruiters []string
	CreatedAt  time.Time
	AgeDays    int
}

// Record renders the row in RecruitmentHeader order.
func (r RecruitmentRow) Record() []string {
	return []string{
		r.RequestID, r.JobTitle, r.Company, r.Department, r.Location,
		r.Priority, r.Status, strconv.Itoa(r.Positions),
		strings.Join(r.Recruiters, "; "),
		r.CreatedAt.Format("2006-01-02"),
		strconv.Itoa(r.AgeDays),
	}
}

// Recruitment builds the recruitment report for requirements created inside
// [from, to), optionally restricted to one company.
func (s *Service) Recruitment(ctx context.Context, from, to time.Time, company string) ([]RecruitmentRow, error) {
	reqs, err := s.repo.ListCreatedBetween(ctx, from, to, company)
	if err != nil {
		return nil, fmt.Errorf("failed to load recruitment report data: %w", err)
	}

	now := s.now()
	rows := make([]RecruitmentRow, 0, len(reqs))
	for _, req := range reqs {
		rows = append(rows, RecruitmentRow{
			RequestID:  req.RequestID,
			JobTitle:   req.JobTitle,
			Company:    req.Company,
			Department: req.Department,
			Location:   req.Location,
			Priority:   req.Priority,
			Status:     models.DisplayStatus(req.Status),
			Positions:  req.Positions,
			Recruiters: req.AssignedRecruiters,
			CreatedAt:  req.CreatedAt,
			AgeDays:    int(now.Sub(req.CreatedAt).Hours() / 24),
		})
	}
	return rows, nil
}

// InternalTrackerHeader is the column list of the internal tracker report.
var InternalTrackerHeader = []string{
	"request_id", "job_title", "company", "status", "recruiters",
	"sla_hours", "hours_in_status", "within_sla",
}

// InternalTrackerRow is one line of the internal tracker report.
type InternalTrackerRow struct {
	RequestID     string
	JobTitle      string
	Company       string
	Status        string
	Recruiters    []string
	SLAHours      int
	HoursInStatus int
	WithinSLA     bool
}

// Record renders the row in InternalTrackerHeader order.
func (r InternalTrackerRow) Record() []string {
	return []string{
		r.RequestID, r.JobTitle, r.Company, r.Status,
		strings.Join(r.Recruiters, "; "),
		strconv.Itoa(r.SLAHours), strconv.Itoa(r.HoursInStatus),
		strconv.FormatBool(r.WithinSLA),
	}
}

// InternalTracker builds the internal tracker report, annotating each
// requirement with its current step's SLA budget. Time in status is
// approximated by the last update timestamp. A zero budget means no
// expectation, which always counts as within SLA.
func (s *Service) InternalTracker(ctx context.Context, from, to time.Time) ([]InternalTrackerRow, error) {
	reqs, err := s.repo.ListCreatedBetween(ctx, from, to, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load tracker report data: %w", err)
	}

	entries, err := s.repo.ListSLAConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load SLA config: %w", err)
	}
	budgets := make(map[string]int, len(entries))
	for _, entry := range entries {
		budgets[models.NormalizeStatus(entry.StepName)] = entry.SLAHours
	}

	now := s.now()
	rows := make([]InternalTrackerRow, 0, len(reqs))
	for _, req := range reqs {
		budget := budgets[models.NormalizeStatus(string(req.Status))]
		elapsed := int(now.Sub(req.UpdatedAt).Hours())
		rows = append(rows, InternalTrackerRow{
			RequestID:     req.RequestID,
			JobTitle:      req.JobTitle,
			Company:       req.Company,
			Status:        models.DisplayStatus(req.Status),
			Recruiters:    req.AssignedRecruiters,
			SLAHours:      budget,
			HoursInStatus: elapsed,
			WithinSLA:     budget == 0 || elapsed <= budget,
		})
	}
	return rows, nil
}
