package moderation

import (
	"context"
	"time"

	"classifieds/internal/domain"
	"classifieds/internal/modules/advertiser"
)

type VerificationStore interface {
	GetByID(ctx context.Context, id string) (*domain.VerificationDocument, error)
	ListPending(ctx context.Context) ([]domain.VerificationDocument, error)
	Review(ctx context.Context, doc *domain.VerificationDocument, reviewerID string, status domain.VerificationStatus, notes *string, at time.Time) error
}

// Linker signs document URLs for reviewers.
type Linker interface {
	Links(doc *domain.VerificationDocument) (*advertiser.DocumentLinks, error)
}

type ListingCounter interface {
	CountByStatus(ctx context.Context, status domain.ListingStatus) (int64, error)
}

type ReportCounter interface {
	CountByStatus(ctx context.Context, status domain.ReportStatus) (int64, error)
}

type AdvertiserCounter interface {
	CountByVerification(ctx context.Context, status domain.VerificationStatus) (int64, error)
}

type LogReader interface {
	List(ctx context.Context, limit int) ([]domain.AdminActionLog, error)
}

type TagStore interface {
	Create(ctx context.Context, t *domain.ServiceTag) error
	SetActive(ctx context.Context, id string, active bool) error
}

// TagInvalidator drops the cached tag vocabulary. Optional.
type TagInvalidator interface {
	InvalidateTags(ctx context.Context) error
}

type Auditor interface {
	Record(ctx context.Context, adminID, action, targetType, targetID string, details map[string]any)
}
