package db

import (
	"context"
	"strings"
	"time"

	"github.com/talentops/rfh/internal/requirement/models"
	"gorm.io/gorm"
)

// ListActive returns non-archived, non-closed requirements matching the
// filter. Status and recruiter filters compare in Go because normalization
// and JSON-array membership cannot be expressed portably in SQL.
func (r *Repository) ListActive(ctx context.Context, filter models.ListFilter) ([]*models.Requirement, error) {
	q := r.db.WithContext(ctx).
		Where("status <> ?", string(models.StatusClosed)).
		Order("created_at DESC")
	if filter.Company != "" {
		q = q.Where("LOWER(company) = LOWER(?)", filter.Company)
	}

	var reqs []*models.Requirement
	if result := q.Find(&reqs); result.Error != nil {
		return nil, result.Error
	}
	return filterInMemory(reqs, filter), nil
}

func filterInMemory(reqs []*models.Requirement, filter models.ListFilter) []*models.Requirement {
	out := make([]*models.Requirement, 0, len(reqs))
	for _, req := range reqs {
		if filter.Status != "" && !models.StatusEqual(string(req.Status), filter.Status) {
			continue
		}
		if filter.Recruiter != "" && !containsFold(req.AssignedRecruiters, filter.Recruiter) {
			continue
		}
		out = append(out, req)
	}
	return out
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

// ListClosed returns non-archived requirements in the Closed status.
func (r *Repository) ListClosed(ctx context.Context) ([]*models.Requirement, error) {
	var reqs []*models.Requirement
	result := r.db.WithContext(ctx).
		Where("status = ?", string(models.StatusClosed)).
		Order("updated_at DESC").
		Find(&reqs)
	if result.Error != nil {
		return nil, result.Error
	}
	return reqs, nil
}

// ListArchived returns soft-deleted requirements.
func (r *Repository) ListArchived(ctx context.Context) ([]*models.Requirement, error) {
	var reqs []*models.Requirement
	result := r.db.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL").
		Order("deleted_at DESC").
		Find(&reqs)
	if result.Error != nil {
		return nil, result.Error
	}
	return reqs, nil
}

// ListCreatedBetween returns non-archived requirements created inside the
// window, optionally restricted to one company. Used by reporting.
func (r *Repository) ListCreatedBetween(ctx context.Context, from, to time.Time, company string) ([]*models.Requirement, error) {
	q := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC")
	if company != "" {
		q = q.Where("LOWER(company) = LOWER(?)", company)
	}

	var reqs []*models.Requirement
	if result := q.Find(&reqs); result.Error != nil {
		return nil, result.Error
	}
	return reqs, nil
}

// Stats counts active requirements per status plus archive totals.
func (r *Repository) Stats(ctx context.Context) (*models.TrackerStats, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	result := r.db.WithContext(ctx).Model(&models.Requirement{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	stats := &models.TrackerStats{ByStatus: make(map[string]int64, len(rows))}
	for _, rw := range rows {
		stats.ByStatus[models.NormalizeStatus(rw.Status)] += rw.Count
		stats.TotalActive += rw.Count
	}

	result = r.db.WithContext(ctx).Unscoped().Model(&models.Requirement{}).
		Where("deleted_at IS NOT NULL").
		Count(&stats.TotalArchived)
	if result.Error != nil {
		return nil, result.Error
	}
	return stats, nil
}

// FindDuplicates looks for active requirements resembling the proposed one.
// Exact: same title, company and department. Similar: same title plus one of
// company or department. Comparison is case-insensitive on trimmed values;
// an exact match wins over similar ones.
func (r *Repository) FindDuplicates(ctx context.Context, jobTitle, company, department string) ([]*models.Requirement, models.MatchType, error) {
	var candidates []*models.Requirement
	result := r.db.WithContext(ctx).
		Where("LOWER(job_title) = LOWER(?)", strings.TrimSpace(jobTitle)).
		Find(&candidates)
	if result.Error != nil {
		return nil, models.MatchNone, result.Error
	}

	var exact, similar []*models.Requirement
	for _, c := range candidates {
		sameCompany := strings.EqualFold(strings.TrimSpace(c.Company), strings.TrimSpace(company))
		sameDept := strings.EqualFold(strings.TrimSpace(c.Department), strings.TrimSpace(department))
		switch {
		case sameCompany && sameDept:
			exact = append(exact, c)
		case sameCompany || sameDept:
			similar = append(similar, c)
		}
	}

	if len(exact) > 0 {
		return exact, models.MatchExact, nil
	}
	if len(similar) > 0 {
		return similar, models.MatchSimilar, nil
	}
	return nil, models.MatchNone, nil
}

// Archive soft-deletes a requirement, recording who archived it. Archiving
// an already-archived record is a no-op; the returned bool reports whether
// anything changed. updated_at is deliberately left untouched so that a
// later restore returns the record to its pre-archive state.
func (r *Repository) Archive(ctx context.Context, requestID, actor string) (*models.Requirement, bool, error) {
	req, err := r.getAnyRequirement(ctx, requestID)
	if err != nil {
		return nil, false, err
	}
	if req.Archived() {
		return req, false, nil
	}

	now := time.Now()
	result := r.db.WithContext(ctx).Unscoped().Model(&models.Requirement{}).
		Where("request_id = ?", requestID).
		UpdateColumns(map[string]interface{}{
			"deleted_at": gorm.DeletedAt{Time: now, Valid: true},
			"deleted_by": actor,
		})
	if result.Error != nil {
		return nil, false, result.Error
	}
	req.DeletedAt = gorm.DeletedAt{Time: now, Valid: true}
	req.DeletedBy = actor
	return req, true, nil
}

// Restore clears the archival marks. Restoring an already-active record is
// a no-op.
func (r *Repository) Restore(ctx context.Context, requestID string) (*models.Requirement, bool, error) {
	req, err := r.getAnyRequirement(ctx, requestID)
	if err != nil {
		return nil, false, err
	}
	if !req.Archived() {
		return req, false, nil
	}

	result := r.db.WithContext(ctx).Unscoped().Model(&models.Requirement{}).
		Where("request_id = ?", requestID).
		UpdateColumns(map[string]interface{}{
			"deleted_at": nil,
			"deleted_by": "",
		})
	if result.Error != nil {
		return nil, false, result.Error
	}
	req.DeletedAt = gorm.DeletedAt{}
	req.DeletedBy = ""
	return req, true, nil
}
