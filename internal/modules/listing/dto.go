package listing

import (
	"time"

	"classifieds/internal/domain"
)

// MaxPhotosPerListing caps the gallery whatever the plan allows.
const MaxPhotosPerListing = 10

// CreateInput is the advertiser's new listing. Bound from JSON or a
// multipart form; photos travel as "photos" form files.
type CreateInput struct {
	Title        string   `json:"title" form:"title" validate:"required,max=120"`
	Description  string   `json:"description" form:"description" validate:"required,max=5000"`
	State        string   `json:"state" form:"state" validate:"required,max=64"`
	City         string   `json:"city" form:"city" validate:"required,max=120"`
	Neighborhood *string  `json:"neighborhood" form:"neighborhood" validate:"omitempty,max=120"`
	Price        *float64 `json:"price" form:"price" validate:"omitempty,gte=0"`
	PriceInfo    *string  `json:"price_info" form:"price_info" validate:"omitempty,max=255"`
	Age          *int     `json:"age" form:"age" validate:"omitempty,gte=18,lte=120"`
	TagIDs       []string `json:"tag_ids" form:"tag_ids"`
}

// EditInput is a partial update. Nil fields are left as they are; TagIDs,
// when present, replaces the whole set.
type EditInput struct {
	Title          *string   `json:"title" form:"title" validate:"omitempty,min=1,max=120"`
	Description    *string   `json:"description" form:"description" validate:"omitempty,min=1,max=5000"`
	State          *string   `json:"state" form:"state" validate:"omitempty,min=1,max=64"`
	City           *string   `json:"city" form:"city" validate:"omitempty,min=1,max=120"`
	Neighborhood   *string   `json:"neighborhood" form:"neighborhood" validate:"omitempty,max=120"`
	Price          *float64  `json:"price" form:"price" validate:"omitempty,gte=0"`
	PriceInfo      *string   `json:"price_info" form:"price_info" validate:"omitempty,max=255"`
	Age            *int      `json:"age" form:"age" validate:"omitempty,gte=18,lte=120"`
	TagIDs         *[]string `json:"tag_ids" form:"tag_ids"`
	RemovePhotoIDs []string  `json:"remove_photo_ids" form:"remove_photo_ids"`
}

type ReasonRequest struct {
	Reason string `json:"reason"`
}

// MyListing is the advertiser dashboard row.
type MyListing struct {
	ID               string               `json:"id"`
	Title            string               `json:"title"`
	State            string               `json:"state"`
	City             string               `json:"city"`
	Status           domain.ListingStatus `json:"status"`
	ViewsCount       int64                `json:"views_count"`
	ContactClicks    int64                `json:"contact_clicks"`
	MainPhotoURL     *string              `json:"main_photo_url"`
	RejectionReason  *string              `json:"rejection_reason,omitempty"`
	SuspensionReason *string              `json:"suspension_reason,omitempty"`
	ExpiresAt        *time.Time           `json:"expires_at,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
}

type PendingPage struct {
	Listings []domain.Listing `json:"listings"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}
