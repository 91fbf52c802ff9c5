package repository

import (
	"context"

	"classifieds/internal/domain"

	"gorm.io/gorm"
)

type ReportFilters struct {
	Status domain.ReportStatus
	Reason domain.ReportReason
	Limit  int
}

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, rep *domain.Report) error {
	return translate("create report", r.db.WithContext(ctx).Omit("Listing").Create(rep).Error)
}

func (r *ReportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	var rep domain.Report
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rep).Error; err != nil {
		return nil, translate("get report", err)
	}
	return &rep, nil
}

// Resolve writes the moderator's verdict.
func (r *ReportRepository) Resolve(ctx context.Context, rep *domain.Report) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Report{}).
		Where("id = ?", rep.ID).
		Updates(map[string]any{
			"status":      rep.Status,
			"admin_notes": rep.AdminNotes,
			"reviewed_by": rep.ReviewedBy,
			"reviewed_at": rep.ReviewedAt,
		})
	return notFoundIfNone("resolve report", res)
}

func withListingTitle(db *gorm.DB) *gorm.DB {
	return db.Select("id", "title", "status")
}

// ListPending returns pending reports oldest first with listing id and title.
func (r *ReportRepository) ListPending(ctx context.Context) ([]domain.Report, error) {
	var reports []domain.Report
	err := r.db.WithContext(ctx).
		Preload("Listing", withListingTitle).
		Where("status = ?", domain.ReportPending).
		Order("created_at ASC").
		Find(&reports).Error
	if err != nil {
		return nil, translate("list pending reports", err)
	}
	return reports, nil
}

// List returns reports newest first.
func (r *ReportRepository) List(ctx context.Context, f ReportFilters) ([]domain.Report, error) {
	q := r.db.WithContext(ctx).Preload("Listing", withListingTitle)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Reason != "" {
		q = q.Where("reason = ?", f.Reason)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var reports []domain.Report
	if err := q.Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, translate("list reports", err)
	}
	return reports, nil
}

func (r *ReportRepository) CountByStatus(ctx context.Context, status domain.ReportStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Report{}).Where("status = ?", status).Count(&n).Error
	return n, translate("count reports", err)
}
