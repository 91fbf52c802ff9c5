package advertiser

import (
	"context"
	"time"

	"classifieds/internal/domain"
	"classifieds/internal/modules/storage"
)

type ProfileStore interface {
	Create(ctx context.Context, a *domain.AdvertiserProfile) error
	GetByUserID(ctx context.Context, userID string) (*domain.AdvertiserProfile, error)
	UpdateProfile(ctx context.Context, id string, fields map[string]any) error
	SetVerification(ctx context.Context, id string, status domain.VerificationStatus) error
}

type DocumentStore interface {
	Create(ctx context.Context, d *domain.VerificationDocument) error
	GetByID(ctx context.Context, id string) (*domain.VerificationDocument, error)
}

type Objects interface {
	Put(ctx context.Context, bucket storage.Bucket, prefix string, kind storage.Kind, f storage.File) (*storage.Object, error)
	Delete(ctx context.Context, bucket storage.Bucket, objectPath string) error
	SignedURL(bucket storage.Bucket, objectPath string, ttl time.Duration) (string, error)
}
