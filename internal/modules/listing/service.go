package listing

import (
	"context"
	"strings"
	"time"

	"classifieds/internal/domain"
	"classifieds/internal/modules/access"
	"classifieds/internal/modules/storage"
	"classifieds/internal/pkg/metrics"
	"classifieds/internal/pkg/validator"
	"classifieds/internal/repository"

	"github.com/sirupsen/logrus"
)

type Service struct {
	listings Store
	tags     TagChecker
	plans    PlanReader
	objects  Objects
	audit    Auditor
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
	lifetime time.Duration
	now      func() time.Time
}

// NewService wires the lifecycle. lifetime > 0 gives newly approved
// listings an expiry; zero keeps them open-ended.
func NewService(listings Store, tags TagChecker, plans PlanReader, objects Objects, auditor Auditor, log logrus.FieldLogger, m *metrics.Metrics, lifetime time.Duration) *Service {
	return &Service{
		listings: listings,
		tags:     tags,
		plans:    plans,
		objects:  objects,
		audit:    auditor,
		log:      log,
		metrics:  m,
		lifetime: lifetime,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new pending listing with its photos and tags. Objects are
// uploaded first and removed again if the database write fails.
func (s *Service) Create(ctx context.Context, who access.Identity, in CreateInput, photos []storage.File) (*domain.Listing, error) {
	if err := access.Authorize(who, access.ListingCreate, access.None); err != nil {
		return nil, err
	}
	in.Title, in.Description = strings.TrimSpace(in.Title), strings.TrimSpace(in.Description)
	in.State, in.City = strings.TrimSpace(in.State), strings.TrimSpace(in.City)
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	tagIDs, err := s.checkTags(ctx, in.TagIDs)
	if err != nil {
		return nil, err
	}
	if err := s.checkPhotoLimit(ctx, who.AdvertiserID, len(photos)); err != nil {
		return nil, err
	}

	l := &domain.Listing{
		AdvertiserID: who.AdvertiserID,
		Title:        in.Title,
		Description:  in.Description,
		State:        in.State,
		City:         in.City,
		Neighborhood: trimmed(in.Neighborhood),
		Price:        in.Price,
		PriceInfo:    trimmed(in.PriceInfo),
		Age:          in.Age,
		Status:       domain.ListingPending,
	}

	rows, uploaded, err := s.uploadPhotos(ctx, who.AdvertiserID, photos, 0, false)
	if err != nil {
		return nil, err
	}
	if err := s.listings.Create(ctx, l, rows, tagIDs); err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"listing_id": l.ID, "advertiser_id": l.AdvertiserID, "photos": len(rows)}).Info("listing created")
	return s.listings.GetByID(ctx, l.ID)
}

// Edit applies a content change from the owner. Any edit sends the listing
// back to review and clears moderation reasons.
func (s *Service) Edit(ctx context.Context, who access.Identity, id string, in EditInput, photos []storage.File) (*domain.Listing, error) {
	cur, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.AuthorizeOwned(who, access.ListingEdit, access.Resource{OwnerAdvertiserID: cur.AdvertiserID}, "listing", id); err != nil {
		return nil, err
	}
	for _, v := range []*string{in.Title, in.Description, in.State, in.City} {
		if v != nil {
			*v = strings.TrimSpace(*v)
		}
	}
	if err := validator.Struct(in); err != nil {
		return nil, err
	}

	fields := map[string]any{
		"status":            domain.ListingPending,
		"rejection_reason":  nil,
		"suspension_reason": nil,
		"updated_at":        s.now(),
	}
	setText(fields, "title", in.Title)
	setText(fields, "description", in.Description)
	setText(fields, "state", in.State)
	setText(fields, "city", in.City)
	setOptionalText(fields, "neighborhood", in.Neighborhood)
	setOptionalText(fields, "price_info", in.PriceInfo)
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	if in.Age != nil {
		fields["age"] = *in.Age
	}

	edit := repository.ListingEdit{Fields: fields, RemovePhotoIDs: in.RemovePhotoIDs}
	if in.TagIDs != nil {
		tagIDs, err := s.checkTags(ctx, *in.TagIDs)
		if err != nil {
			return nil, err
		}
		edit.TagIDs = &tagIDs
	}

	remove := make(map[string]bool, len(in.RemovePhotoIDs))
	for _, pid := range in.RemovePhotoIDs {
		remove[pid] = true
	}
	kept := 0
	for _, p := range cur.Photos {
		if !remove[p.ID] {
			kept++
		}
	}
	if len(photos) > 0 {
		if err := s.checkPhotoLimit(ctx, cur.AdvertiserID, kept+len(photos)); err != nil {
			return nil, err
		}
	}

	rows, uploaded, err := s.uploadPhotos(ctx, cur.AdvertiserID, photos, kept, kept > 0)
	if err != nil {
		return nil, err
	}
	edit.NewPhotos = rows

	removed, err := s.listings.Edit(ctx, id, edit)
	if err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}
	for _, p := range removed {
		s.discard(ctx, []storage.Object{{Bucket: storage.BucketListingPhotos, Path: p.StoragePath}})
	}

	s.log.WithFields(logrus.Fields{"listing_id": id, "from": cur.Status}).Info("listing edited, back to review")
	return s.listings.GetByID(ctx, id)
}

// AddPhotos appends photos to a listing. It is an edit and resets review.
func (s *Service) AddPhotos(ctx context.Context, who access.Identity, id string, photos []storage.File) (*domain.Listing, error) {
	if len(photos) == 0 {
		return nil, domain.Invalid("photos", "at least one photo is required")
	}
	return s.Edit(ctx, who, id, EditInput{}, photos)
}

// Delete removes a listing for its owner or an admin. Stored objects are
// cleaned up after the rows are gone.
func (s *Service) Delete(ctx context.Context, who access.Identity, id string) error {
	cur, err := s.listings.GetStatus(ctx, id)
	if err != nil {
		return err
	}
	if err := access.AuthorizeOwned(who, access.ListingDelete, access.Resource{OwnerAdvertiserID: cur.AdvertiserID}, "listing", id); err != nil {
		return err
	}

	photos, highlights, err := s.listings.Delete(ctx, id)
	if err != nil {
		return err
	}
	objs := make([]storage.Object, 0, len(photos)+len(highlights))
	for _, p := range photos {
		objs = append(objs, storage.Object{Bucket: storage.BucketListingPhotos, Path: p.StoragePath})
	}
	for _, h := range highlights {
		objs = append(objs, storage.Object{Bucket: storage.BucketHighlights, Path: h.StoragePath})
	}
	s.discard(ctx, objs)

	if cur.AdvertiserID != who.AdvertiserID {
		s.audit.Record(ctx, who.UserID, domain.ActionDelete, domain.TargetListing, id, map[string]any{"status": cur.Status})
	}
	s.counted("delete")
	s.log.WithFields(logrus.Fields{"listing_id": id, "by": who.UserID}).Info("listing deleted")
	return nil
}

func (s *Service) ListMine(ctx context.Context, who access.Identity) ([]MyListing, error) {
	if err := access.Authorize(who, access.ListingCreate, access.None); err != nil {
		return nil, err
	}
	rows, err := s.listings.ListByAdvertiser(ctx, who.AdvertiserID)
	if err != nil {
		return nil, err
	}
	out := make([]MyListing, 0, len(rows))
	for _, l := range rows {
		item := MyListing{
			ID:               l.ID,
			Title:            l.Title,
			State:            l.State,
			City:             l.City,
			Status:           l.Status,
			ViewsCount:       l.ViewsCount,
			ContactClicks:    l.ContactClicks,
			RejectionReason:  l.RejectionReason,
			SuspensionReason: l.SuspensionReason,
			ExpiresAt:        l.ExpiresAt,
			CreatedAt:        l.CreatedAt,
		}
		for _, p := range l.Photos {
			if p.IsMain {
				url := p.PhotoURL
				item.MainPhotoURL = &url
				break
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *Service) Stats(ctx context.Context, who access.Identity) (*repository.AdvertiserStats, error) {
	if err := access.Authorize(who, access.ListingCreate, access.None); err != nil {
		return nil, err
	}
	return s.listings.StatsForAdvertiser(ctx, who.AdvertiserID)
}

func (s *Service) checkTags(ctx context.Context, ids []string) ([]string, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return unique, nil
	}
	active, err := s.tags.ActiveIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(active) != len(unique) {
		return nil, domain.Invalid("tag_ids", "unknown or inactive tag")
	}
	return unique, nil
}

// checkPhotoLimit enforces the plan's max_photos, falling back to the free
// allowance when the advertiser has no current subscription.
func (s *Service) checkPhotoLimit(ctx context.Context, advertiserID string, total int) error {
	limit, plan := domain.FreePlanMaxPhotos, "free"
	sub, err := s.plans.CurrentSubscription(ctx, advertiserID, s.now())
	if err != nil {
		return err
	}
	if sub != nil && sub.Plan != nil {
		limit, plan = sub.Plan.MaxPhotos, sub.Plan.Name
	}
	if limit > MaxPhotosPerListing {
		limit = MaxPhotosPerListing
	}
	if total > limit {
		return &domain.LimitError{Resource: "photos", Current: total, Limit: limit, PlanName: plan}
	}
	return nil
}

// uploadPhotos validates every file before writing any, then stores them
// and returns the photo rows to insert. The first photo becomes main when
// the listing has none.
func (s *Service) uploadPhotos(ctx context.Context, advertiserID string, files []storage.File, offset int, hasMain bool) ([]domain.ListingPhoto, []storage.Object, error) {
	for _, f := range files {
		if _, err := storage.Detect(storage.KindPhoto, f); err != nil {
			return nil, nil, err
		}
	}

	rows := make([]domain.ListingPhoto, 0, len(files))
	uploaded := make([]storage.Object, 0, len(files))
	for i, f := range files {
		obj, err := s.objects.Put(ctx, storage.BucketListingPhotos, advertiserID, storage.KindPhoto, f)
		if err != nil {
			s.discard(ctx, uploaded)
			return nil, nil, err
		}
		uploaded = append(uploaded, *obj)
		rows = append(rows, domain.ListingPhoto{
			PhotoURL:     obj.URL,
			StoragePath:  obj.Path,
			IsMain:       !hasMain && i == 0,
			DisplayOrder: offset + i,
		})
	}
	return rows, uploaded, nil
}

// discard removes objects best effort.
func (s *Service) discard(ctx context.Context, objs []storage.Object) {
	for _, o := range objs {
		if o.Path == "" {
			continue
		}
		if err := s.objects.Delete(ctx, o.Bucket, o.Path); err != nil {
			s.log.WithFields(logrus.Fields{"bucket": o.Bucket, "path": o.Path, "error": err.Error()}).Warn("object cleanup failed")
		}
	}
}

func (s *Service) counted(action string) {
	if s.metrics != nil {
		s.metrics.ListingTransitions.WithLabelValues(action).Inc()
	}
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func setText(fields map[string]any, column string, v *string) {
	if v != nil {
		fields[column] = strings.TrimSpace(*v)
	}
}

// setOptionalText writes NULL for a blank value so a field can be cleared.
func setOptionalText(fields map[string]any, column string, v *string) {
	if v == nil {
		return
	}
	if t := trimmed(v); t != nil {
		fields[column] = *t
		return
	}
	fields[column] = nil
}
