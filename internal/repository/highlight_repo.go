package repository

import (
	"context"
	"time"

	"classifieds/internal/domain"

	"gorm.io/gorm"
)

type HighlightRepository struct {
	db *gorm.DB
}

func NewHighlightRepository(db *gorm.DB) *HighlightRepository {
	return &HighlightRepository{db: db}
}

func (r *HighlightRepository) Create(ctx context.Context, h *domain.Highlight) error {
	return translate("create highlight", r.db.WithContext(ctx).Create(h).Error)
}

func (r *HighlightRepository) GetByID(ctx context.Context, id string) (*domain.Highlight, error) {
	var h domain.Highlight
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&h).Error; err != nil {
		return nil, translate("get highlight", err)
	}
	return &h, nil
}

func (r *HighlightRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Highlight{})
	return notFoundIfNone("delete highlight", res)
}

func (r *HighlightRepository) CountLive(ctx context.Context, listingID string, now time.Time) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Highlight{}).
		Where("listing_id = ? AND is_active = ? AND expires_at > ?", listingID, true, now).
		Count(&n).Error
	return int(n), translate("count highlights", err)
}

// DeactivateExpired flips is_active off for highlights past expires_at.
func (r *HighlightRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Highlight{}).
		Where("is_active = ? AND expires_at <= ?", true, now).
		Update("is_active", false)
	return res.RowsAffected, translate("deactivate highlights", res.Error)
}
