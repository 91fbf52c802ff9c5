package repository

import (
	"context"
	"errors"
	"time"

	"classifieds/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) ListActive(ctx context.Context) ([]domain.Plan, error) {
	var plans []domain.Plan
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("price ASC").Find(&plans).Error
	if err != nil {
		return nil, translate("list plans", err)
	}
	return plans, nil
}

// Upsert inserts or refreshes a plan by name.
func (r *PlanRepository) Upsert(ctx context.Context, p *domain.Plan) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "price", "duration_days", "max_photos", "max_highlights", "priority_level", "is_featured", "is_active"}),
		}).
		Create(p).Error
	return translate("upsert plan", err)
}

// CurrentSubscription returns the advertiser's subscription active at now,
// or nil when there is none.
func (r *PlanRepository) CurrentSubscription(ctx context.Context, advertiserID string, now time.Time) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("advertiser_id = ? AND is_active = ? AND starts_at <= ? AND expires_at > ?", advertiserID, true, now, now).
		Order("expires_at DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("current subscription", err)
	}
	return &sub, nil
}
