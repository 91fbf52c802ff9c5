package report

import (
	"context"

	"classifieds/internal/domain"
	"classifieds/internal/repository"
)

type Store interface {
	Create(ctx context.Context, rep *domain.Report) error
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	Resolve(ctx context.Context, rep *domain.Report) error
	ListPending(ctx context.Context) ([]domain.Report, error)
	List(ctx context.Context, f repository.ReportFilters) ([]domain.Report, error)
}

type ListingLookup interface {
	GetStatus(ctx context.Context, id string) (*domain.Listing, error)
}

type Auditor interface {
	Record(ctx context.Context, adminID, action, targetType, targetID string, details map[string]any)
}
