package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListingStatus string

const (
	ListingPending   ListingStatus = "pending"
	ListingApproved  ListingStatus = "approved"
	ListingRejected  ListingStatus = "rejected"
	ListingSuspended ListingStatus = "suspended"
	ListingExpired   ListingStatus = "expired"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingPending, ListingApproved, ListingRejected, ListingSuspended, ListingExpired:
		return true
	}
	return false
}

// Listing is an advertiser's public ad. RejectionReason is non-nil exactly
// when Status is rejected; SuspensionReason only while suspended.
type Listing struct {
	ID               string        `gorm:"column:id;primaryKey;size:36" json:"id"`
	AdvertiserID     string        `gorm:"column:advertiser_id;size:36;not null;index" json:"advertiser_id"`
	Title            string        `gorm:"column:title;size:120;not null" json:"title"`
	Description      string        `gorm:"column:description;type:text;not null" json:"description"`
	State            string        `gorm:"column:state;size:64;not null;index" json:"state"`
	City             string        `gorm:"column:city;size:120;not null" json:"city"`
	Neighborhood     *string       `gorm:"column:neighborhood;size:120" json:"neighborhood,omitempty"`
	Price            *float64      `gorm:"column:price" json:"price,omitempty"`
	PriceInfo        *string       `gorm:"column:price_info;size:255" json:"price_info,omitempty"`
	Age              *int          `gorm:"column:age" json:"age,omitempty"`
	Status           ListingStatus `gorm:"column:status;size:16;not null;index" json:"status"`
	PriorityLevel    int           `gorm:"column:priority_level;not null;default:0" json:"priority_level"`
	IsFeatured       bool          `gorm:"column:is_featured;not null;default:false" json:"is_featured"`
	ViewsCount       int64         `gorm:"column:views_count;not null;default:0" json:"views_count"`
	ContactClicks    int64         `gorm:"column:contact_clicks;not null;default:0" json:"contact_clicks"`
	PublishedAt      *time.Time    `gorm:"column:published_at" json:"published_at,omitempty"`
	ExpiresAt        *time.Time    `gorm:"column:expires_at;index" json:"expires_at,omitempty"`
	RejectionReason  *string       `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`
	SuspensionReason *string       `gorm:"column:suspension_reason;type:text" json:"suspension_reason,omitempty"`
	CreatedAt        time.Time     `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"column:updated_at" json:"updated_at"`

	Advertiser *AdvertiserProfile `gorm:"foreignKey:AdvertiserID" json:"advertiser,omitempty"`
	Photos     []ListingPhoto     `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"photos,omitempty"`
	Highlights []Highlight        `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"highlights,omitempty"`
	Tags       []ServiceTag       `gorm:"-" json:"tags,omitempty"`
}

func (Listing) TableName() string { return "listings" }

func (l *Listing) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

// PubliclyVisible reports whether the catalog may show the listing at now.
func (l *Listing) PubliclyVisible(now time.Time) bool {
	if l.Status != ListingApproved {
		return false
	}
	return l.ExpiresAt == nil || l.ExpiresAt.After(now)
}

type ListingPhoto struct {
	ID           string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	ListingID    string    `gorm:"column:listing_id;size:36;not null;uniqueIndex:idx_listing_photo_order" json:"listing_id"`
	PhotoURL     string    `gorm:"column:photo_url;not null" json:"photo_url"`
	StoragePath  string    `gorm:"column:storage_path;not null" json:"-"`
	IsMain       bool      `gorm:"column:is_main;not null;default:false" json:"is_main"`
	DisplayOrder int       `gorm:"column:display_order;not null;uniqueIndex:idx_listing_photo_order" json:"display_order"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (ListingPhoto) TableName() string { return "listing_photos" }

func (p *ListingPhoto) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

type ServiceTag struct {
	ID        string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Name      string    `gorm:"column:name;size:80;not null" json:"name"`
	Slug      string    `gorm:"column:slug;size:80;not null;uniqueIndex" json:"slug"`
	IsActive  bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (ServiceTag) TableName() string { return "service_tags" }

func (t *ServiceTag) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// ListingTag links a listing to a service tag.
type ListingTag struct {
	ListingID string `gorm:"column:listing_id;primaryKey;size:36"`
	TagID     string `gorm:"column:tag_id;primaryKey;size:36;index"`
}

func (ListingTag) TableName() string { return "listing_tags" }
