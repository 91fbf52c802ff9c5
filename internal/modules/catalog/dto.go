package catalog

import (
	"math"
	"time"

	"classifieds/internal/domain"
	"classifieds/internal/repository"
)

// PageSize is the fixed catalog page length.
const PageSize = 12

// MaxPage keeps page*PageSize inside a 32-bit offset.
const MaxPage = math.MaxInt32 / PageSize

// Filters are the visitor's catalog predicates. Nil or empty means
// unfiltered.
type Filters struct {
	State      string
	City       string
	MinPrice   *float64
	MaxPrice   *float64
	MinAge     *int
	MaxAge     *int
	SearchText string
	TagIDs     []string
}

type Sort = repository.ListingSort

// Card is the enriched projection rendered in the catalog grid.
type Card struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	State              string    `json:"state"`
	City               string    `json:"city"`
	Neighborhood       *string   `json:"neighborhood,omitempty"`
	Price              *float64  `json:"price,omitempty"`
	PriceInfo          *string   `json:"price_info,omitempty"`
	Age                *int      `json:"age,omitempty"`
	MainPhotoURL       *string   `json:"main_photo_url"`
	AdvertiserName     string    `json:"advertiser_name"`
	AdvertiserVerified bool      `json:"advertiser_verified"`
	HasActiveHighlight bool      `json:"has_active_highlight"`
	IsFeatured         bool      `json:"is_featured"`
	PriorityLevel      int       `json:"priority_level"`
	ViewsCount         int64     `json:"views_count"`
	CreatedAt          time.Time `json:"created_at"`
}

type Page struct {
	Listings []Card `json:"listings"`
	Page     int    `json:"page"`
	HasMore  bool   `json:"has_more"`
}

type PhotoView struct {
	URL          string `json:"url"`
	IsMain       bool   `json:"is_main"`
	DisplayOrder int    `json:"display_order"`
}

type HighlightView struct {
	ID          string                      `json:"id"`
	ContentURL  string                      `json:"content_url"`
	ContentType domain.HighlightContentType `json:"content_type"`
	ExpiresAt   time.Time                   `json:"expires_at"`
}

type ContactChannels struct {
	Whatsapp  bool `json:"whatsapp"`
	Telegram  bool `json:"telegram"`
	Instagram bool `json:"instagram"`
}

// Detail is the public view of one listing.
type Detail struct {
	Card
	Description   string              `json:"description"`
	PublishedAt   *time.Time          `json:"published_at,omitempty"`
	AdvertiserID  string              `json:"advertiser_id"`
	AdvertiserBio *string             `json:"advertiser_bio,omitempty"`
	Contact       ContactChannels     `json:"contact"`
	Photos        []PhotoView         `json:"photos"`
	Highlights    []HighlightView     `json:"highlights"`
	Tags          []domain.ServiceTag `json:"tags"`
}

type ContactRequest struct {
	Channel string `json:"channel" binding:"required,oneof=whatsapp telegram instagram"`
}
