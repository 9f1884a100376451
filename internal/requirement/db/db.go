package db

import (
	"context"
	"errors"
	"fmt"

	e "github.com/talentops/rfh/internal/requirement/errors"
	"github.com/talentops/rfh/internal/requirement/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func NewRepository(cfg *Config) (*Repository, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{db: db}, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Requirement{},
		&models.EnumValue{},
		&models.SLAConfig{},
	)
}

func (r *Repository) CreateRequirement(ctx context.Context, req *models.Requirement) error {
	result := r.db.WithContext(ctx).Create(req)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: request_id %s", e.ErrDuplicate, req.RequestID)
		}
		return result.Error
	}
	return nil
}

// GetRequirement returns an active requirement by request ID. Archived
// records are not visible here; use GetArchivedRequirement.
func (r *Repository) GetRequirement(ctx context.Context, requestID string) (*models.Requirement, error) {
	var req models.Requirement
	result := r.db.WithContext(ctx).First(&req, "request_id = ?", requestID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return &req, nil
}

// getAnyRequirement looks the record up regardless of archival state.
func (r *Repository) getAnyRequirement(ctx context.Context, requestID string) (*models.Requirement, error) {
	var req models.Requirement
	result := r.db.WithContext(ctx).Unscoped().First(&req, "request_id = ?", requestID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return &req, nil
}

// UpdateRequirement applies the non-nil fields of the update to the stored
// record. The record is loaded first so JSON-serialized columns round-trip
// through the model schema.
func (r *Repository) UpdateRequirement(ctx context.Context, update *models.RequirementUpdate) (*models.Requirement, error) {
	req, err := r.GetRequirement(ctx, update.RequestID)
	if err != nil {
		return nil, err
	}

	applyUpdate(req, update)

	if result := r.db.WithContext(ctx).Save(req); result.Error != nil {
		return nil, result.Error
	}
	return req, nil
}

func applyUpdate(req *models.Requirement, u *models.RequirementUpdate) {
	if u.JobTitle != nil {
		req.JobTitle = *u.JobTitle
	}
	if u.Company != nil {
		req.Company = *u.Company
	}
	if u.Department != nil {
		req.Department = *u.Department
	}
	if u.Location != nil {
		req.Location = *u.Location
	}
	if u.Shift != nil {
		req.Shift = *u.Shift
	}
	if u.JobType != nil {
		req.JobType = *u.JobType
	}
	if u.HiringManager != nil {
		req.HiringManager = *u.HiringManager
	}
	if u.ExperienceRange != nil {
		req.ExperienceRange = *u.ExperienceRange
	}
	if u.Skills != nil {
		req.Skills = *u.Skills
	}
	if u.MinQualification != nil {
		req.MinQualification = *u.MinQualification
	}
	if u.Positions != nil {
		req.Positions = *u.Positions
	}
	if u.Budget != nil {
		req.Budget = *u.Budget
	}
	if u.Priority != nil {
		req.Priority = *u.Priority
	}
	if u.TentativeDOJ != nil {
		req.TentativeDOJ = *u.TentativeDOJ
	}
	if u.Remarks != nil {
		req.Remarks = *u.Remarks
	}
	if u.JDPath != nil {
		req.JDPath = *u.JDPath
	}
	if u.JDFilename != nil {
		req.JDFilename = *u.JDFilename
	}
	if u.JDText != nil {
		req.JDText = *u.JDText
	}
	if u.JobPosted != nil {
		req.JobPosted = *u.JobPosted
	}
	if u.Status != nil {
		req.Status = *u.Status
	}
	if u.AssignedRecruiters != nil {
		req.AssignedRecruiters = *u.AssignedRecruiters
	}
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// Exec runs a raw statement. Integration tests use it to reset state.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	return r.db.WithContext(ctx).Exec(sql).Error
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
