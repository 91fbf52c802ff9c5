package catalog

import (
	"sort"
	"time"

	"classifieds/internal/domain"
)

// ProjectCard derives the catalog card from a listing row and its
// preloaded relations. It is pure: same input and now, same output.
func ProjectCard(l domain.Listing, now time.Time) Card {
	card := Card{
		ID:             l.ID,
		Title:          l.Title,
		State:          l.State,
		City:           l.City,
		Neighborhood:   l.Neighborhood,
		Price:          l.Price,
		PriceInfo:      l.PriceInfo,
		Age:            l.Age,
		MainPhotoURL:   mainPhotoURL(l.Photos),
		AdvertiserName: l.Advertiser.Name(),
		IsFeatured:     l.IsFeatured,
		PriorityLevel:  l.PriorityLevel,
		ViewsCount:     l.ViewsCount,
		CreatedAt:      l.CreatedAt,
	}
	if l.Advertiser != nil {
		card.AdvertiserVerified = l.Advertiser.IsVerified
	}
	for _, h := range l.Highlights {
		if h.Live(now) {
			card.HasActiveHighlight = true
			break
		}
	}
	return card
}

// mainPhotoURL prefers the flagged main photo, then the lowest
// display_order.
func mainPhotoURL(photos []domain.ListingPhoto) *string {
	var best *domain.ListingPhoto
	for i := range photos {
		p := &photos[i]
		if p.IsMain {
			url := p.PhotoURL
			return &url
		}
		if best == nil || p.DisplayOrder < best.DisplayOrder {
			best = p
		}
	}
	if best == nil {
		return nil
	}
	url := best.PhotoURL
	return &url
}

// Promote stably reorders a page: listings with a live highlight first,
// then featured ones. Database order is kept within each group.
func Promote(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		a, b := cards[i], cards[j]
		if a.HasActiveHighlight != b.HasActiveHighlight {
			return a.HasActiveHighlight
		}
		if a.IsFeatured != b.IsFeatured {
			return a.IsFeatured
		}
		return false
	})
}

func projectDetail(l domain.Listing, now time.Time) Detail {
	d := Detail{
		Card:         ProjectCard(l, now),
		Description:  l.Description,
		PublishedAt:  l.PublishedAt,
		AdvertiserID: l.AdvertiserID,
		Photos:       make([]PhotoView, 0, len(l.Photos)),
		Highlights:   []HighlightView{},
		Tags:         l.Tags,
	}
	if d.Tags == nil {
		d.Tags = []domain.ServiceTag{}
	}
	if a := l.Advertiser; a != nil {
		d.AdvertiserBio = a.Bio
		d.Contact = ContactChannels{
			Whatsapp:  nonEmpty(a.Whatsapp),
			Telegram:  nonEmpty(a.Telegram),
			Instagram: nonEmpty(a.Instagram),
		}
	}

	photos := append([]domain.ListingPhoto(nil), l.Photos...)
	sort.SliceStable(photos, func(i, j int) bool {
		if photos[i].IsMain != photos[j].IsMain {
			return photos[i].IsMain
		}
		return photos[i].DisplayOrder < photos[j].DisplayOrder
	})
	for _, p := range photos {
		d.Photos = append(d.Photos, PhotoView{URL: p.PhotoURL, IsMain: p.IsMain, DisplayOrder: p.DisplayOrder})
	}
	for _, h := range l.Highlights {
		if h.Live(now) {
			d.Highlights = append(d.Highlights, HighlightView{ID: h.ID, ContentURL: h.ContentURL, ContentType: h.ContentType, ExpiresAt: h.ExpiresAt})
		}
	}
	return d
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}
