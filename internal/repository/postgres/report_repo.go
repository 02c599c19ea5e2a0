package postgres

import (
	"context"

	"github.com/dom/donutdot/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *reportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	return translate(r.db.WithContext(ctx).Create(report).Error, nil)
}

func (r *reportRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	var report domain.Report
	err := r.db.WithContext(ctx).First(&report, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, domain.ErrReportNotFound)
	}
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, status *domain.ReportStatus, limit int) ([]*domain.Report, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var reports []*domain.Report
	if err := q.Find(&reports).Error; err != nil {
		return nil, translate(err, nil)
	}
	return reports, nil
}

func (r *reportRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Report{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return translate(result.Error, nil)
	}
	if result.RowsAffected == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}
