package persistence

import (
	"context"

	"github.com/bizdir/backend/internal/domain/moderation"
	"github.com/bizdir/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReportRepository implements moderation.Repository using GORM
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// Create inserts a new report
func (r *GormReportRepository) Create(ctx context.Context, rp *moderation.Report) error {
	return r.db.WithContext(ctx).Create(models.ReportModelFromDomain(rp)).Error
}

// Update saves all report columns
func (r *GormReportRepository) Update(ctx context.Context, rp *moderation.Report) error {
	return r.db.WithContext(ctx).Save(models.ReportModelFromDomain(rp)).Error
}

// FindByID finds a report by its ID
func (r *GormReportRepository) FindByID(ctx context.Context, id uuid.UUID) (*moderation.Report, error) {
	var model models.ReportModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// List pages through reports, oldest first so the queue is worked in order
func (r *GormReportRepository) List(ctx context.Context, filter moderation.ListFilter) ([]*moderation.Report, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ReportModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.TargetType != nil {
		query = query.Where("target_type = ?", *filter.TargetType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ReportModel
	if err := query.Order("created_at ASC, id").
		Scopes(paginate(filter.Page, filter.PageSize)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	reports := make([]*moderation.Report, len(rows))
	for i := range rows {
		reports[i] = rows[i].ToDomain()
	}
	return reports, total, nil
}

// HasOpenReport reports whether the reporter has a pending or investigating report on the target
func (r *GormReportRepository) HasOpenReport(ctx context.Context, reporterID uuid.UUID, targetType moderation.TargetType, targetID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ReportModel{}).
		Where("reporter_id = ? AND target_type = ? AND target_id = ?", reporterID, targetType, targetID).
		Where("status IN ?", []moderation.Status{moderation.StatusPending, moderation.StatusInvestigating}).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByStatus counts reports per status
func (r *GormReportRepository) CountByStatus(ctx context.Context) (map[moderation.Status]int64, error) {
	var rows []struct {
		Status moderation.Status
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.ReportModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[moderation.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

var _ moderation.Repository = (*GormReportRepository)(nil)
