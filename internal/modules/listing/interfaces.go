package listing

import (
	"context"
	"time"

	"classifieds/internal/domain"
	"classifieds/internal/modules/storage"
	"classifieds/internal/repository"
)

type Store interface {
	Create(ctx context.Context, l *domain.Listing, photos []domain.ListingPhoto, tagIDs []string) error
	Edit(ctx context.Context, id string, e repository.ListingEdit) ([]domain.ListingPhoto, error)
	Transition(ctx context.Context, id string, from []domain.ListingStatus, fields map[string]any) (bool, error)
	Delete(ctx context.Context, id string) ([]domain.ListingPhoto, []domain.Highlight, error)
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	GetStatus(ctx context.Context, id string) (*domain.Listing, error)
	ListByAdvertiser(ctx context.Context, advertiserID string) ([]domain.Listing, error)
	StatsForAdvertiser(ctx context.Context, advertiserID string) (*repository.AdvertiserStats, error)
	ListByStatus(ctx context.Context, status domain.ListingStatus, limit, offset int) ([]domain.Listing, int64, error)
}

type TagChecker interface {
	ActiveIDs(ctx context.Context, ids []string) ([]string, error)
}

type PlanReader interface {
	CurrentSubscription(ctx context.Context, advertiserID string, now time.Time) (*domain.Subscription, error)
}

type Objects interface {
	Put(ctx context.Context, bucket storage.Bucket, prefix string, kind storage.Kind, f storage.File) (*storage.Object, error)
	Delete(ctx context.Context, bucket storage.Bucket, objectPath string) error
}

type Auditor interface {
	Record(ctx context.Context, adminID, action, targetType, targetID string, details map[string]any)
}
