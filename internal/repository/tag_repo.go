package repository

import (
	"context"

	"classifieds/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) ListActive(ctx context.Context) ([]domain.ServiceTag, error) {
	var tags []domain.ServiceTag
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&tags).Error
	if err != nil {
		return nil, translate("list tags", err)
	}
	return tags, nil
}

// ActiveIDs returns which of ids name active tags.
func (r *TagRepository) ActiveIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []string
	err := r.db.WithContext(ctx).
		Model(&domain.ServiceTag{}).
		Where("id IN ? AND is_active = ?", ids, true).
		Pluck("id", &found).Error
	if err != nil {
		return nil, translate("lookup tags", err)
	}
	return found, nil
}

func (r *TagRepository) Create(ctx context.Context, t *domain.ServiceTag) error {
	return translate("create tag", r.db.WithContext(ctx).Create(t).Error)
}

func (r *TagRepository) SetActive(ctx context.Context, id string, active bool) error {
	res := r.db.WithContext(ctx).Model(&domain.ServiceTag{}).Where("id = ?", id).Update("is_active", active)
	return notFoundIfNone("set tag active", res)
}

// Upsert inserts or refreshes a tag by slug.
func (r *TagRepository) Upsert(ctx context.Context, t *domain.ServiceTag) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "is_active"}),
		}).
		Create(t).Error
	return translate("upsert tag", err)
}
