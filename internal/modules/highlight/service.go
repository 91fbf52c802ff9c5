// Package highlight manages short-lived stories attached to listings.
package highlight

import (
	"context"
	"strings"
	"time"

	"classifieds/internal/domain"
	"classifieds/internal/modules/access"
	"classifieds/internal/modules/storage"

	"github.com/sirupsen/logrus"
)

type Store interface {
	Create(ctx context.Context, h *domain.Highlight) error
	GetByID(ctx context.Context, id string) (*domain.Highlight, error)
	Delete(ctx context.Context, id string) error
	CountLive(ctx context.Context, listingID string, now time.Time) (int, error)
}

type ListingLookup interface {
	GetStatus(ctx context.Context, id string) (*domain.Listing, error)
}

type PlanReader interface {
	CurrentSubscription(ctx context.Context, advertiserID string, now time.Time) (*domain.Subscription, error)
}

type Objects interface {
	Put(ctx context.Context, bucket storage.Bucket, prefix string, kind storage.Kind, f storage.File) (*storage.Object, error)
	Delete(ctx context.Context, bucket storage.Bucket, objectPath string) error
}

type Service struct {
	highlights Store
	listings   ListingLookup
	plans      PlanReader
	objects    Objects
	log        logrus.FieldLogger
	lifetime   time.Duration
	now        func() time.Time
}

func NewService(highlights Store, listings ListingLookup, plans PlanReader, objects Objects, log logrus.FieldLogger, lifetime time.Duration) *Service {
	if lifetime <= 0 {
		lifetime = domain.DefaultHighlightLifetime
	}
	return &Service{
		highlights: highlights,
		listings:   listings,
		plans:      plans,
		objects:    objects,
		log:        log,
		lifetime:   lifetime,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Publish uploads a story for the owner's listing. It goes live at once
// and expires after the configured lifetime.
func (s *Service) Publish(ctx context.Context, who access.Identity, listingID string, f storage.File) (*domain.Highlight, error) {
	l, err := s.listings.GetStatus(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if err := access.AuthorizeOwned(who, access.HighlightManage, access.Resource{OwnerAdvertiserID: l.AdvertiserID}, "listing", listingID); err != nil {
		return nil, err
	}
	if l.Status != domain.ListingApproved {
		return nil, &domain.TransitionError{Action: "highlight", From: l.Status}
	}
	mimeType, err := storage.Detect(storage.KindHighlight, f)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.checkLimit(ctx, l, now); err != nil {
		return nil, err
	}

	obj, err := s.objects.Put(ctx, storage.BucketHighlights, l.ID, storage.KindHighlight, f)
	if err != nil {
		return nil, err
	}
	h := &domain.Highlight{
		ListingID:   l.ID,
		ContentURL:  obj.URL,
		StoragePath: obj.Path,
		ContentType: contentType(mimeType),
		StartsAt:    now,
		ExpiresAt:   now.Add(s.lifetime),
		IsActive:    true,
	}
	if err := s.highlights.Create(ctx, h); err != nil {
		if derr := s.objects.Delete(ctx, obj.Bucket, obj.Path); derr != nil {
			s.log.WithError(derr).Warn("highlight object cleanup failed")
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"highlight_id": h.ID, "listing_id": l.ID, "expires_at": h.ExpiresAt}).Info("highlight published")
	return h, nil
}

// Remove deletes a highlight and its media for the listing owner.
func (s *Service) Remove(ctx context.Context, who access.Identity, id string) error {
	h, err := s.highlights.GetByID(ctx, id)
	if err != nil {
		return err
	}
	l, err := s.listings.GetStatus(ctx, h.ListingID)
	if err != nil {
		return err
	}
	if err := access.AuthorizeOwned(who, access.HighlightManage, access.Resource{OwnerAdvertiserID: l.AdvertiserID}, "highlight", id); err != nil {
		return err
	}
	if err := s.highlights.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.objects.Delete(ctx, storage.BucketHighlights, h.StoragePath); err != nil {
		s.log.WithFields(logrus.Fields{"highlight_id": id, "error": err.Error()}).Warn("highlight object cleanup failed")
	}
	return nil
}

// checkLimit caps live highlights per listing by the plan's
// max_highlights.
func (s *Service) checkLimit(ctx context.Context, l *domain.Listing, now time.Time) error {
	limit, plan := domain.FreePlanMaxHighlights, "free"
	sub, err := s.plans.CurrentSubscription(ctx, l.AdvertiserID, now)
	if err != nil {
		return err
	}
	if sub != nil && sub.Plan != nil {
		limit, plan = sub.Plan.MaxHighlights, sub.Plan.Name
	}
	live, err := s.highlights.CountLive(ctx, l.ID, now)
	if err != nil {
		return err
	}
	if live >= limit {
		return &domain.LimitError{Resource: "highlights", Current: live, Limit: limit, PlanName: plan}
	}
	return nil
}

func contentType(mimeType string) domain.HighlightContentType {
	if strings.HasPrefix(mimeType, "video/") {
		return domain.HighlightVideo
	}
	return domain.HighlightImage
}
