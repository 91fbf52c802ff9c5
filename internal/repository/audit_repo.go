package repository

import (
	"context"

	"classifieds/internal/domain"

	"gorm.io/gorm"
)

// AuditRepository is append-only by construction: it has no update or
// delete methods.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, entry *domain.AdminActionLog) error {
	return translate("write admin log", r.db.WithContext(ctx).Create(entry).Error)
}

// List returns the newest entries first.
func (r *AuditRepository) List(ctx context.Context, limit int) ([]domain.AdminActionLog, error) {
	var logs []domain.AdminActionLog
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, translate("list admin logs", err)
	}
	return logs, nil
}

func (r *AuditRepository) ListForTarget(ctx context.Context, targetType, targetID string) ([]domain.AdminActionLog, error) {
	var logs []domain.AdminActionLog
	err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at ASC").
		Find(&logs).Error
	if err != nil {
		return nil, translate("list admin logs", err)
	}
	return logs, nil
}
