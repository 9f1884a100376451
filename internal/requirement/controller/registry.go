package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	e "github.com/talentops/rfh/internal/requirement/errors"
	"github.com/talentops/rfh/internal/requirement/models"
	"go.uber.org/zap"
)

// EnumRepository is the storage interface for registered enum values.
type EnumRepository interface {
	ListEnumValues(ctx context.Context, enumType models.EnumType) ([]*models.EnumValue, error)
	FindEnumValue(ctx context.Context, enumType models.EnumType, sanitized string) (*models.EnumValue, error)
	CreateEnumValue(ctx context.Context, value *models.EnumValue) error
}

// EnumService manages runtime extension of the fixed selection lists.
type EnumService struct {
	repo   EnumRepository
	logger *zap.Logger
}

func NewEnumService(repo EnumRepository, logger *zap.Logger) *EnumService {
	return &EnumService{
		repo:   repo,
		logger: logger.Named("enum_service"),
	}
}

// RegisterValue adds a new allowed value to a selection list. The trimmed
// raw input becomes the display value and its sanitized form the storage
// value. Registration is idempotent: re-registering an existing value
// returns the stored pair. A sanitized value that shadows a predefined
// member of the same type is rejected.
func (s *EnumService) RegisterValue(ctx context.Context, rawType, rawValue string, actor models.Actor) (*models.EnumValue, error) {
	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can register enum values", e.ErrForbidden)
	}

	enumType, err := models.ParseEnumType(rawType)
	if err != nil {
		return nil, err
	}

	display := strings.TrimSpace(rawValue)
	if display == "" {
		return nil, fmt.Errorf("%w: value must not be empty", e.ErrInvalidInput)
	}

	sanitized := models.SanitizeEnumValue(display)
	if models.CollidesWithPredefined(enumType, sanitized) {
		return nil, fmt.Errorf("%w: %q collides with a predefined %s value", e.ErrDuplicate, display, enumType)
	}

	existing, err := s.repo.FindEnumValue(ctx, enumType, sanitized)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, e.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up enum value: %w", err)
	}

	value := &models.EnumValue{
		EnumType:       enumType,
		SanitizedValue: sanitized,
		DisplayValue:   display,
	}
	if err := s.repo.CreateEnumValue(ctx, value); err != nil {
		if errors.Is(err, e.ErrDuplicate) {
			// Lost a race with a concurrent registration of the same value.
			return s.repo.FindEnumValue(ctx, enumType, sanitized)
		}
		return nil, fmt.Errorf("failed to register enum value: %w", err)
	}
	return value, nil
}

// ListValues returns the display values of an enum type: predefined members
// first, then registered extensions.
func (s *EnumService) ListValues(ctx context.Context, rawType string) ([]string, error) {
	enumType, err := models.ParseEnumType(rawType)
	if err != nil {
		return nil, err
	}

	values := models.PredefinedEnumValues(enumType)
	registered, err := s.repo.ListEnumValues(ctx, enumType)
	if err != nil {
		return nil, fmt.Errorf("failed to list enum values: %w", err)
	}
	for _, v := range registered {
		values = append(values, v.DisplayValue)
	}
	return values, nil
}

// SLARepository is the storage interface for SLA step configuration.
type SLARepository interface {
	ListSLAConfig(ctx context.Context) ([]*models.SLAConfig, error)
	UpdateSLAConfig(ctx context.Context, stepName string, hours, days int, description string) error
	ResetSLAConfig(ctx context.Context, entries []*models.SLAConfig) error
}

// SLAService manages the per-step time budgets. The budgets are purely
// descriptive: nothing here blocks a workflow transition.
type SLAService struct {
	repo   SLARepository
	logger *zap.Logger
}

func NewSLAService(repo SLARepository, logger *zap.Logger) *SLAService {
	return &SLAService{
		repo:   repo,
		logger: logger.Named("sla_service"),
	}
}

// ListConfig returns all SLA entries in priority order.
func (s *SLAService) ListConfig(ctx context.Context) ([]*models.SLAConfig, error) {
	return s.repo.ListSLAConfig(ctx)
}

// UpdateStep edits one step's budget. Admin only.
func (s *SLAService) UpdateStep(ctx context.Context, stepName string, hours, days int, description string, actor models.Actor) error {
	if actor.Role != models.RoleAdmin {
		return fmt.Errorf("%w: only admins can edit SLA configuration", e.ErrForbidden)
	}
	if hours < 0 || days < 0 {
		return fmt.Errorf("%w: SLA budgets must not be negative", e.ErrInvalidInput)
	}
	if err := s.repo.UpdateSLAConfig(ctx, stepName, hours, days, description); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update SLA config: %w", err)
	}
	return nil
}

// InitializeDefaults resets the whole SLA table to the shipped defaults.
// Admin only.
func (s *SLAService) InitializeDefaults(ctx context.Context, actor models.Actor) error {
	if actor.Role != models.RoleAdmin {
		return fmt.Errorf("%w: only admins can reset SLA configuration", e.ErrForbidden)
	}
	if err := s.repo.ResetSLAConfig(ctx, models.DefaultSLAConfig()); err != nil {
		return fmt.Errorf("failed to reset SLA config: %w", err)
	}
	return nil
}
