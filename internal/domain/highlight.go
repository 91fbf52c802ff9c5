package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HighlightContentType string

const (
	HighlightImage HighlightContentType = "image"
	HighlightVideo HighlightContentType = "video"
)

const DefaultHighlightLifetime = 24 * time.Hour

// Highlight is a short-lived story attached to a listing.
type Highlight struct {
	ID          string               `gorm:"column:id;primaryKey;size:36" json:"id"`
	ListingID   string               `gorm:"column:listing_id;size:36;not null;index" json:"listing_id"`
	ContentURL  string               `gorm:"column:content_url;not null" json:"content_url"`
	StoragePath string               `gorm:"column:storage_path;not null" json:"-"`
	ContentType HighlightContentType `gorm:"column:content_type;size:8;not null" json:"content_type"`
	StartsAt    time.Time            `gorm:"column:starts_at;not null" json:"starts_at"`
	ExpiresAt   time.Time            `gorm:"column:expires_at;not null;index" json:"expires_at"`
	IsActive    bool                 `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt   time.Time            `gorm:"column:created_at" json:"created_at"`
}

func (Highlight) TableName() string { return "highlights" }

func (h *Highlight) BeforeCreate(_ *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	return nil
}

// Live reports whether the highlight is displayable at now.
func (h Highlight) Live(now time.Time) bool {
	return h.IsActive && now.Before(h.ExpiresAt)
}
