// Package controller implements the business logic (service layer) for the
// requirement tracker: the duplicate-detection gate, the status workflow,
// archival and restore, and the enum/SLA registries.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/talentops/rfh/internal/requirement/db"
	e "github.com/talentops/rfh/internal/requirement/errors"
	"github.com/talentops/rfh/internal/requirement/events"
	"github.com/talentops/rfh/internal/requirement/ids"
	"github.com/talentops/rfh/internal/requirement/models"
	"go.uber.org/zap"
)

type EventProducer interface {
	Produce(eventType events.EventType, req *models.Requirement)
}

// Repository defines the storage interface for requirement records.
type Repository interface {
	CreateRequirement(ctx context.Context, req *models.Requirement) error
	GetRequirement(ctx context.Context, requestID string) (*models.Requirement, error)
	UpdateRequirement(ctx context.Context, update *models.RequirementUpdate) (*models.Requirement, error)
	ListActive(ctx context.Context, filter models.ListFilter) ([]*models.Requirement, error)
	ListClosed(ctx context.Context) ([]*models.Requirement, error)
	ListArchived(ctx context.Context) ([]*models.Requirement, error)
	ListCreatedBetween(ctx context.Context, from, to time.Time, company string) ([]*models.Requirement, error)
	Stats(ctx context.Context) (*models.TrackerStats, error)
	FindDuplicates(ctx context.Context, jobTitle, company, department string) ([]*models.Requirement, models.MatchType, error)
	Archive(ctx context.Context, requestID, actor string) (*models.Requirement, bool, error)
	Restore(ctx context.Context, requestID string) (*models.Requirement, bool, error)
	WithTransaction(ctx context.Context, fn func(repo *db.Repository) error) error
	Close() error
}

// JobPoster delivers a job posting to the configured external endpoint in a
// single synchronous attempt.
type JobPoster interface {
	PostJob(ctx context.Context, jobTitle, jobDescription, email string) error
}

// RequirementService provides requirement lifecycle operations on top of the
// repository, publishing lifecycle events as a side effect.
type RequirementService struct {
	repo     Repository
	producer EventProducer
	poster   JobPoster
	logger   *zap.Logger
}

// NewRequirementService constructs a RequirementService with a repository,
// an event producer, a webhook client, and a logger.
func NewRequirementService(repo Repository, producer EventProducer, poster JobPoster, logger *zap.Logger) *RequirementService {
	return &RequirementService{
		repo:     repo,
		producer: producer,
		poster:   poster,
		logger:   logger.Named("requirement_service"),
	}
}

// requiredFields lists the fields that must be present before any duplicate
// check or write runs.
func validateRequired(req *models.Requirement) error {
	required := map[string]string{
		"job_title":  req.JobTitle,
		"company":    req.Company,
		"department": req.Department,
		"location":   req.Location,
		"shift":      req.Shift,
		"job_type":   req.JobType,
		"priority":   req.Priority,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s is required", e.ErrInvalidInput, field)
		}
	}
	if req.Positions < 0 {
		return fmt.Errorf("%w: positions must not be negative", e.ErrInvalidInput)
	}
	return nil
}

// ProposeCreate validates the candidate fields, runs the duplicate gate and
// commits only when no duplicates are found. A found duplicate set is a
// decision point for the caller, not an error.
func (s *RequirementService) ProposeCreate(ctx context.Context, req *models.Requirement) (*models.CreateResult, error) {
	if err := validateRequired(req); err != nil {
		return nil, err
	}

	matches, matchType, err := s.repo.FindDuplicates(ctx, req.JobTitle, req.Company, req.Department)
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicates: %w", err)
	}
	if len(matches) > 0 {
		return &models.CreateResult{Duplicates: matches, MatchType: matchType}, nil
	}

	created, err := s.create(ctx, req)
	if err != nil {
		return nil, err
	}
	return &models.CreateResult{Requirement: created}, nil
}

// ForceCreate bypasses the duplicate gate and commits the requirement. Field
// validation still applies.
func (s *RequirementService) ForceCreate(ctx context.Context, req *models.Requirement) (*models.Requirement, error) {
	if err := validateRequired(req); err != nil {
		return nil, err
	}
	return s.create(ctx, req)
}

// CheckDuplicate runs the duplicate query without side effects.
func (s *RequirementService) CheckDuplicate(ctx context.Context, req *models.Requirement) ([]*models.Requirement, models.MatchType, error) {
	if err := validateRequired(req); err != nil {
		return nil, models.MatchNone, err
	}
	return s.repo.FindDuplicates(ctx, req.JobTitle, req.Company, req.Department)
}

func (s *RequirementService) create(ctx context.Context, req *models.Requirement) (*models.Requirement, error) {
	requestID, err := ids.NewRequestID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate request ID: %w", err)
	}
	req.RequestID = requestID
	req.Status = models.StatusOpen

	if err := s.repo.CreateRequirement(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create requirement: %w", err)
	}
	go func() {
		s.producer.Produce(events.RequirementCreated, req)
	}()
	return req, nil
}

// GetRequirement retrieves an active requirement by request ID.
func (s *RequirementService) GetRequirement(ctx context.Context, requestID string) (*models.Requirement, error) {
	req, err := s.repo.GetRequirement(ctx, requestID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get requirement: %w", err)
	}
	return req, nil
}

// UpdateRequirement applies a partial update, enforcing the workflow role
// gate: recruiters may not touch on-hold requirements at all, and may not
// move a requirement into or out of On_Hold.
func (s *RequirementService) UpdateRequirement(ctx context.Context, update *models.RequirementUpdate, actor models.Actor) (*models.Requirement, error) {
	if update.RequestID == "" {
		return nil, fmt.Errorf("%w: request ID required", e.ErrInvalidInput)
	}

	current, err := s.repo.GetRequirement(ctx, update.RequestID)
	if err != nil {
		return nil, err
	}

	if actor.Role == models.RoleRecruiter && current.Status == models.StatusOnHold {
		return nil, fmt.Errorf("%w: recruiters cannot modify on-hold requirements", e.ErrForbidden)
	}

	statusChanged := false
	if update.Status != nil {
		if err := models.CanTransition(actor.Role, current.Status, *update.Status); err != nil {
			return nil, err
		}
		statusChanged = !models.StatusEqual(string(current.Status), string(*update.Status))
	}

	updated, err := s.repo.UpdateRequirement(ctx, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update requirement: %w", err)
	}

	eventType := events.RequirementUpdated
	if statusChanged {
		eventType = events.StatusChanged
	}
	go func() {
		s.producer.Produce(eventType, updated)
	}()
	return updated, nil
}

// Transition moves a requirement to a new workflow status.
func (s *RequirementService) Transition(ctx context.Context, requestID string, newStatus models.Status, actor models.Actor) (*models.Requirement, error) {
	status := newStatus
	return s.UpdateRequirement(ctx, &models.RequirementUpdate{
		RequestID: requestID,
		Status:    &status,
	}, actor)
}

// AssignRecruiters replaces the set of recruiters responsible for a
// requirement.
func (s *RequirementService) AssignRecruiters(ctx context.Context, requestID string, recruiters []string, actor models.Actor) (*models.Requirement, error) {
	return s.UpdateRequirement(ctx, &models.RequirementUpdate{
		RequestID:          requestID,
		AssignedRecruiters: &recruiters,
	}, actor)
}

// Archive soft-deletes a requirement. Admin only; archiving an archived
// record succeeds without doing anything.
func (s *RequirementService) Archive(ctx context.Context, requestID string, actor models.Actor) error {
	if actor.Role != models.RoleAdmin {
		return fmt.Errorf("%w: only admins can archive requirements", e.ErrForbidden)
	}

	req, changed, err := s.repo.Archive(ctx, requestID, actor.ID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to archive requirement: %w", err)
	}
	if changed {
		go func() {
			s.producer.Produce(events.RequirementArchived, req)
		}()
	}
	return nil
}

// Restore returns an archived requirement to active views. Admin only;
// restoring an active record succeeds without doing anything.
func (s *RequirementService) Restore(ctx context.Context, requestID string, actor models.Actor) error {
	if actor.Role != models.RoleAdmin {
		return fmt.Errorf("%w: only admins can restore requirements", e.ErrForbidden)
	}

	req, changed, err := s.repo.Restore(ctx, requestID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to restore requirement: %w", err)
	}
	if changed {
		go func() {
			s.producer.Produce(events.RequirementRestored, req)
		}()
	}
	return nil
}

// List returns active requirements matching the filter.
func (s *RequirementService) List(ctx context.Context, filter models.ListFilter) ([]*models.Requirement, error) {
	return s.repo.ListActive(ctx, filter)
}

// ListClosed returns requirements in the Closed status.
func (s *RequirementService) ListClosed(ctx context.Context) ([]*models.Requirement, error) {
	return s.repo.ListClosed(ctx)
}

// ListArchived returns soft-deleted requirements.
func (s *RequirementService) ListArchived(ctx context.Context) ([]*models.Requirement, error) {
	return s.repo.ListArchived(ctx)
}

// Stats returns per-status counts for the dashboard.
func (s *RequirementService) Stats(ctx context.Context) (*models.TrackerStats, error) {
	return s.repo.Stats(ctx)
}

// PostJob delivers the requirement's posting to the external webhook in one
// synchronous attempt and marks the record as posted only on success.
// Failure is surfaced to the caller; there is no retry.
func (s *RequirementService) PostJob(ctx context.Context, requestID, email string, actor models.Actor) (*models.Requirement, error) {
	req, err := s.repo.GetRequirement(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleRecruiter && req.Status == models.StatusOnHold {
		return nil, fmt.Errorf("%w: recruiters cannot modify on-hold requirements", e.ErrForbidden)
	}

	if err := s.poster.PostJob(ctx, req.JobTitle, req.JDText, email); err != nil {
		s.logger.Warn("job posting webhook failed",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		return nil, fmt.Errorf("job posting failed: %w", err)
	}

	posted := true
	updated, err := s.repo.UpdateRequirement(ctx, &models.RequirementUpdate{
		RequestID: requestID,
		JobPosted: &posted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mark job as posted: %w", err)
	}
	return updated, nil
}
