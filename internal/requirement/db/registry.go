package db

import (
	"context"
	"errors"
	"fmt"

	e "github.com/talentops/rfh/internal/requirement/errors"
	"github.com/talentops/rfh/internal/requirement/models"
	"gorm.io/gorm"
)

func (r *Repository) ListEnumValues(ctx context.Context, enumType models.EnumType) ([]*models.EnumValue, error) {
	var values []*models.EnumValue
	result := r.db.WithContext(ctx).
		Where("enum_type = ?", string(enumType)).
		Order("display_value ASC").
		Find(&values)
	if result.Error != nil {
		return nil, result.Error
	}
	return values, nil
}

func (r *Repository) FindEnumValue(ctx context.Context, enumType models.EnumType, sanitized string) (*models.EnumValue, error) {
	var value models.EnumValue
	result := r.db.WithContext(ctx).
		First(&value, "enum_type = ? AND sanitized_value = ?", string(enumType), sanitized)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return &value, nil
}

func (r *Repository) CreateEnumValue(ctx context.Context, value *models.EnumValue) error {
	result := r.db.WithContext(ctx).Create(value)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s/%s", e.ErrDuplicate, value.EnumType, value.SanitizedValue)
		}
		return result.Error
	}
	return nil
}

func (r *Repository) ListSLAConfig(ctx context.Context) ([]*models.SLAConfig, error) {
	var entries []*models.SLAConfig
	result := r.db.WithContext(ctx).Order("priority ASC").Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}
	return entries, nil
}

func (r *Repository) UpdateSLAConfig(ctx context.Context, stepName string, hours, days int, description string) error {
	result := r.db.WithContext(ctx).Model(&models.SLAConfig{}).
		Where("step_name = ?", stepName).
		Updates(map[string]interface{}{
			"sla_hours":   hours,
			"sla_days":    days,
			"description": description,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// ResetSLAConfig replaces the whole table with the given entries in one
// transaction.
func (r *Repository) ResetSLAConfig(ctx context.Context, entries []*models.SLAConfig) error {
	return r.WithTransaction(ctx, func(repo *Repository) error {
		if result := repo.db.WithContext(ctx).Where("1 = 1").Delete(&models.SLAConfig{}); result.Error != nil {
			return result.Error
		}
		for _, entry := range entries {
			if result := repo.db.WithContext(ctx).Create(entry); result.Error != nil {
				return result.Error
			}
		}
		return nil
	})
}
