package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"classifieds/internal/domain"

	"gorm.io/gorm"
)

type ListingSort string

const (
	SortPriority  ListingSort = "priority"
	SortRecent    ListingSort = "recent"
	SortPriceAsc  ListingSort = "price_asc"
	SortPriceDesc ListingSort = "price_desc"
	SortViews     ListingSort = "views"
)

// ListingFilters are the catalog predicates. Zero values mean unfiltered.
type ListingFilters struct {
	State    string
	City     string
	MinPrice *float64
	MaxPrice *float64
	MinAge   *int
	MaxAge   *int
	Search   string
	Sort     ListingSort
	Limit    int
	Offset   int
	Now      time.Time
}

// ListingEdit carries a content edit applied in one transaction.
type ListingEdit struct {
	Fields         map[string]any
	RemovePhotoIDs []string
	NewPhotos      []domain.ListingPhoto
	TagIDs         *[]string
}

type AdvertiserStats struct {
	TotalViews      int64 `json:"total_views"`
	TotalClicks     int64 `json:"total_clicks"`
	ActiveListings  int64 `json:"active_listings"`
	PendingListings int64 `json:"pending_listings"`
}

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// Search returns one page of publicly visible listings with advertiser,
// photos and live highlights preloaded.
func (r *ListingRepository) Search(ctx context.Context, f ListingFilters) ([]domain.Listing, error) {
	q := r.db.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("status = ?", domain.ListingApproved).
		Where("(expires_at IS NULL OR expires_at > ?)", f.Now)

	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	if city := strings.ToLower(strings.TrimSpace(f.City)); city != "" {
		q = q.Where("LOWER(city) LIKE ?", "%"+city+"%")
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.MinAge != nil {
		q = q.Where("age >= ?", *f.MinAge)
	}
	if f.MaxAge != nil {
		q = q.Where("age <= ?", *f.MaxAge)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		like := "%" + s + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}

	for _, expr := range orderFor(f.Sort) {
		q = q.Order(expr)
	}

	var listings []domain.Listing
	err := q.
		Preload("Advertiser").
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Preload("Highlights", "is_active = ? AND expires_at > ?", true, f.Now).
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&listings).Error
	if err != nil {
		return nil, translate("search listings", err)
	}
	return listings, nil
}

// orderFor whitelists sort expressions. id is the final tiebreaker so
// offset pages never overlap.
func orderFor(sort ListingSort) []string {
	switch sort {
	case SortRecent:
		return []string{"created_at DESC", "id ASC"}
	case SortPriceAsc:
		return []string{"CASE WHEN price IS NULL THEN 1 ELSE 0 END", "price ASC", "id ASC"}
	case SortPriceDesc:
		return []string{"CASE WHEN price IS NULL THEN 1 ELSE 0 END", "price DESC", "id ASC"}
	case SortViews:
		return []string{"views_count DESC", "id ASC"}
	default:
		return []string{"is_featured DESC", "priority_level DESC", "created_at DESC", "id ASC"}
	}
}

// TaggedAmong returns the subset of listingIDs carrying any of tagIDs.
func (r *ListingRepository) TaggedAmong(ctx context.Context, listingIDs, tagIDs []string) ([]string, error) {
	if len(listingIDs) == 0 || len(tagIDs) == 0 {
		return nil, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&domain.ListingTag{}).
		Distinct("listing_id").
		Where("listing_id IN ? AND tag_id IN ?", listingIDs, tagIDs).
		Pluck("listing_id", &ids).Error
	if err != nil {
		return nil, translate("tagged listings", err)
	}
	return ids, nil
}

// GetByID loads a listing with its relations and tags.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	var l domain.Listing
	err := r.db.WithContext(ctx).
		Preload("Advertiser").
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Preload("Highlights", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("id = ?", id).
		First(&l).Error
	if err != nil {
		return nil, translate("get listing", err)
	}

	tags, err := r.TagsFor(ctx, []string{l.ID})
	if err != nil {
		return nil, err
	}
	l.Tags = tags[l.ID]
	return &l, nil
}

// GetStatus is a light read used by the lifecycle guards.
func (r *ListingRepository) GetStatus(ctx context.Context, id string) (*domain.Listing, error) {
	var l domain.Listing
	err := r.db.WithContext(ctx).
		Select("id", "advertiser_id", "status", "published_at", "expires_at").
		Where("id = ?", id).
		First(&l).Error
	if err != nil {
		return nil, translate("get listing status", err)
	}
	return &l, nil
}

// TagsFor maps each listing to its active tags. Deactivated tags stay linked
// but are left out, matching the public vocabulary.
func (r *ListingRepository) TagsFor(ctx context.Context, listingIDs []string) (map[string][]domain.ServiceTag, error) {
	out := make(map[string][]domain.ServiceTag, len(listingIDs))
	if len(listingIDs) == 0 {
		return out, nil
	}

	type row struct {
		ListingID string
		domain.ServiceTag
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("listing_tags").
		Select("listing_tags.listing_id AS listing_id, service_tags.*").
		Joins("JOIN service_tags ON service_tags.id = listing_tags.tag_id").
		Where("listing_tags.listing_id IN ? AND service_tags.is_active = ?", listingIDs, true).
		Order("service_tags.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, translate("listing tags", err)
	}
	for _, rw := range rows {
		out[rw.ListingID] = append(out[rw.ListingID], rw.ServiceTag)
	}
	return out, nil
}

// Create inserts the listing, its photo rows and tag links atomically.
func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing, photos []domain.ListingPhoto, tagIDs []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Advertiser", "Photos", "Highlights").Create(l).Error; err != nil {
			return err
		}
		for i := range photos {
			photos[i].ListingID = l.ID
		}
		if len(photos) > 0 {
			if err := tx.Create(&photos).Error; err != nil {
				return err
			}
		}
		return replaceTags(tx, l.ID, tagIDs)
	})
	if err != nil {
		return translate("create listing", err)
	}
	l.Photos = photos
	return nil
}

// Edit applies field updates, photo removals, photo additions and an
// optional tag replacement in one transaction. Remaining photos are
// renumbered densely before new ones are appended, and the first photo
// becomes main when none is left.
func (r *ListingRepository) Edit(ctx context.Context, id string, e ListingEdit) ([]domain.ListingPhoto, error) {
	var removed []domain.ListingPhoto
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Listing{}).Where("id = ?", id).Updates(e.Fields)
		if err := notFoundIfNone("edit listing", res); err != nil {
			return err
		}

		if len(e.RemovePhotoIDs) > 0 {
			if err := tx.Where("listing_id = ? AND id IN ?", id, e.RemovePhotoIDs).Find(&removed).Error; err != nil {
				return err
			}
			if err := tx.Where("listing_id = ? AND id IN ?", id, e.RemovePhotoIDs).Delete(&domain.ListingPhoto{}).Error; err != nil {
				return err
			}
		}

		var remaining []domain.ListingPhoto
		if err := tx.Where("listing_id = ?", id).Order("display_order ASC").Find(&remaining).Error; err != nil {
			return err
		}
		hasMain := false
		for i, p := range remaining {
			hasMain = hasMain || p.IsMain
			if p.DisplayOrder != i {
				if err := tx.Model(&domain.ListingPhoto{}).Where("id = ?", p.ID).Update("display_order", i).Error; err != nil {
					return err
				}
			}
		}

		if !hasMain && len(remaining) > 0 {
			if err := tx.Model(&domain.ListingPhoto{}).Where("id = ?", remaining[0].ID).Update("is_main", true).Error; err != nil {
				return err
			}
			hasMain = true
		}

		next := len(remaining)
		for i := range e.NewPhotos {
			e.NewPhotos[i].ListingID = id
			e.NewPhotos[i].DisplayOrder = next + i
			e.NewPhotos[i].IsMain = !hasMain && i == 0
		}
		if len(e.NewPhotos) > 0 {
			if err := tx.Create(&e.NewPhotos).Error; err != nil {
				return err
			}
		}

		if e.TagIDs != nil {
			return replaceTags(tx, id, *e.TagIDs)
		}
		return nil
	})
	if err != nil {
		return nil, translate("edit listing", err)
	}
	return removed, nil
}

func replaceTags(tx *gorm.DB, listingID string, tagIDs []string) error {
	if err := tx.Where("listing_id = ?", listingID).Delete(&domain.ListingTag{}).Error; err != nil {
		return err
	}
	seen := make(map[string]bool, len(tagIDs))
	links := make([]domain.ListingTag, 0, len(tagIDs))
	for _, t := range tagIDs {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		links = append(links, domain.ListingTag{ListingID: listingID, TagID: t})
	}
	if len(links) == 0 {
		return nil
	}
	return tx.Create(&links).Error
}

// Transition is a compare-and-set on status: the update applies only when
// the current status is one of from. It reports whether a row changed.
func (r *ListingRepository) Transition(ctx context.Context, id string, from []domain.ListingStatus, fields map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(fields)
	if res.Error != nil {
		return false, translate("transition listing", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the listing and every dependent row. The removed photo
// and highlight rows are returned so their objects can be cleaned up.
func (r *ListingRepository) Delete(ctx context.Context, id string) ([]domain.ListingPhoto, []domain.Highlight, error) {
	var (
		photos     []domain.ListingPhoto
		highlights []domain.Highlight
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", id).Find(&photos).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Find(&highlights).Error; err != nil {
			return err
		}
		for _, model := range []any{&domain.ListingPhoto{}, &domain.Highlight{}, &domain.ListingTag{}, &domain.Report{}} {
			if err := tx.Where("listing_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", id).Delete(&domain.Listing{})
		return notFoundIfNone("delete listing", res)
	})
	if err != nil {
		return nil, nil, translate("delete listing", err)
	}
	return photos, highlights, nil
}

var counterColumns = map[string]bool{
	"views_count":    true,
	"contact_clicks": true,
}

// Increment bumps a counter atomically on a publicly visible listing.
func (r *ListingRepository) Increment(ctx context.Context, id, column string, now time.Time) error {
	if !counterColumns[column] {
		return fmt.Errorf("increment %q: %w", column, domain.ErrValidation)
	}
	res := r.db.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("id = ? AND status = ?", id, domain.ListingApproved).
		Where("(expires_at IS NULL OR expires_at > ?)", now).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	return notFoundIfNone("increment "+column, res)
}

func (r *ListingRepository) ListByAdvertiser(ctx context.Context, advertiserID string) ([]domain.Listing, error) {
	var listings []domain.Listing
	err := r.db.WithContext(ctx).
		Where("advertiser_id = ?", advertiserID).
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Order("created_at DESC").
		Find(&listings).Error
	if err != nil {
		return nil, translate("list advertiser listings", err)
	}
	return listings, nil
}

func (r *ListingRepository) StatsForAdvertiser(ctx context.Context, advertiserID string) (*AdvertiserStats, error) {
	var stats AdvertiserStats
	err := r.db.WithContext(ctx).
		Model(&domain.Listing{}).
		Select(
			"COALESCE(SUM(views_count), 0) AS total_views, "+
				"COALESCE(SUM(contact_clicks), 0) AS total_clicks, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS active_listings, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending_listings",
			domain.ListingApproved, domain.ListingPending,
		).
		Where("advertiser_id = ?", advertiserID).
		Scan(&stats).Error
	if err != nil {
		return nil, translate("advertiser stats", err)
	}
	return &stats, nil
}

// ListByStatus returns a page of listings in status, oldest first.
func (r *ListingRepository) ListByStatus(ctx context.Context, status domain.ListingStatus, limit, offset int) ([]domain.Listing, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&domain.Listing{}).Where("status = ?", status)
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate("count listings", err)
	}

	var listings []domain.Listing
	err := base.
		Preload("Advertiser").
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&listings).Error
	if err != nil {
		return nil, 0, translate("list listings by status", err)
	}
	return listings, total, nil
}

func (r *ListingRepository) CountByStatus(ctx context.Context, status domain.ListingStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Listing{}).Where("status = ?", status).Count(&n).Error
	return n, translate("count listings", err)
}

func (r *ListingRepository) CountPhotos(ctx context.Context, listingID string) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.ListingPhoto{}).Where("listing_id = ?", listingID).Count(&n).Error
	return int(n), translate("count photos", err)
}

// ExpireDue moves approved listings whose expires_at has passed to expired.
func (r *ListingRepository) ExpireDue(ctx context.Context, now time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Listing{}).
			Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", domain.ListingApproved, now).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&domain.Listing{}).
			Where("id IN ? AND status = ?", ids, domain.ListingApproved).
			Updates(map[string]any{"status": domain.ListingExpired, "updated_at": now}).Error
	})
	if err != nil {
		return nil, translate("expire listings", err)
	}
	return ids, nil
}
