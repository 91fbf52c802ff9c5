package catalog

import (
	"context"
	"time"

	"classifieds/internal/domain"
	"classifieds/internal/repository"
)

type ListingReader interface {
	Search(ctx context.Context, f repository.ListingFilters) ([]domain.Listing, error)
	TaggedAmong(ctx context.Context, listingIDs, tagIDs []string) ([]string, error)
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	Increment(ctx context.Context, id, column string, now time.Time) error
}

type TagReader interface {
	ListActive(ctx context.Context) ([]domain.ServiceTag, error)
}

type PlanReader interface {
	ListActive(ctx context.Context) ([]domain.Plan, error)
}

// TagCache is optional; a nil cache reads straight from the store.
type TagCache interface {
	Tags(ctx context.Context) ([]domain.ServiceTag, bool, error)
	SetTags(ctx context.Context, tags []domain.ServiceTag) error
}
