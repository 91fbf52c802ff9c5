package repository

import (
	"context"
	"time"

	"classifieds/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdvertiserRepository struct {
	db *gorm.DB
}

func NewAdvertiserRepository(db *gorm.DB) *AdvertiserRepository {
	return &AdvertiserRepository{db: db}
}

// Create inserts the profile and grants the advertiser role in one
// transaction.
func (r *AdvertiserRepository) Create(ctx context.Context, a *domain.AdvertiserProfile) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&domain.UserRole{UserID: a.UserID, Role: domain.RoleAdvertiser}).Error
	})
	return translate("create advertiser", err)
}

func (r *AdvertiserRepository) GetByID(ctx context.Context, id string) (*domain.AdvertiserProfile, error) {
	var a domain.AdvertiserProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, translate("get advertiser", err)
	}
	return &a, nil
}

func (r *AdvertiserRepository) GetByUserID(ctx context.Context, userID string) (*domain.AdvertiserProfile, error) {
	var a domain.AdvertiserProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&a).Error; err != nil {
		return nil, translate("get advertiser by user", err)
	}
	return &a, nil
}

// UpdateProfile writes the editable profile fields only.
func (r *AdvertiserRepository) UpdateProfile(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.AdvertiserProfile{}).Where("id = ?", id).Updates(fields)
	return notFoundIfNone("update advertiser", res)
}

// SetVerification writes verification_status and is_verified together.
func (r *AdvertiserRepository) SetVerification(ctx context.Context, id string, status domain.VerificationStatus) error {
	var a domain.AdvertiserProfile
	a.SetVerification(status)
	res := r.db.WithContext(ctx).
		Model(&domain.AdvertiserProfile{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"verification_status": a.VerificationStatus,
			"is_verified":         a.IsVerified,
		})
	return notFoundIfNone("set verification", res)
}

func (r *AdvertiserRepository) CountByVerification(ctx context.Context, status domain.VerificationStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.AdvertiserProfile{}).
		Where("verification_status = ?", status).
		Where("EXISTS (SELECT 1 FROM verification_documents d WHERE d.advertiser_id = advertiser_profiles.id AND d.reviewed_at IS NULL)").
		Count(&n).Error
	return n, translate("count verifications", err)
}

type VerificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) Create(ctx context.Context, d *domain.VerificationDocument) error {
	return translate("create verification document", r.db.WithContext(ctx).Omit("Advertiser").Create(d).Error)
}

func (r *VerificationRepository) GetByID(ctx context.Context, id string) (*domain.VerificationDocument, error) {
	var d domain.VerificationDocument
	if err := r.db.WithContext(ctx).Preload("Advertiser").Where("id = ?", id).First(&d).Error; err != nil {
		return nil, translate("get verification document", err)
	}
	return &d, nil
}

// ListPending returns unreviewed submissions, oldest first.
func (r *VerificationRepository) ListPending(ctx context.Context) ([]domain.VerificationDocument, error) {
	var docs []domain.VerificationDocument
	err := r.db.WithContext(ctx).
		Preload("Advertiser").
		Where("reviewed_at IS NULL").
		Order("created_at ASC").
		Find(&docs).Error
	if err != nil {
		return nil, translate("list pending verifications", err)
	}
	return docs, nil
}

// Review stamps the document and sets the advertiser's verification in one
// transaction.
func (r *VerificationRepository) Review(ctx context.Context, doc *domain.VerificationDocument, reviewerID string, status domain.VerificationStatus, notes *string, at time.Time) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.VerificationDocument{}).
			Where("id = ? AND reviewed_at IS NULL", doc.ID).
			Updates(map[string]any{"reviewed_by": reviewerID, "reviewed_at": at, "notes": notes})
		if err := notFoundIfNone("review verification", res); err != nil {
			return err
		}
		return NewAdvertiserRepository(tx).SetVerification(ctx, doc.AdvertiserID, status)
	})
	return translate("review verification", err)
}
