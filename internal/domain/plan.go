package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Allowances for advertisers without an active subscription.
const (
	FreePlanMaxPhotos     = 5
	FreePlanMaxHighlights = 1
)

// Plan is a static offering. Billing is out of scope; rows are seeded.
type Plan struct {
	ID            string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Name          string    `gorm:"column:name;size:80;not null;uniqueIndex" json:"name"`
	Description   *string   `gorm:"column:description;type:text" json:"description,omitempty"`
	Price         float64   `gorm:"column:price;not null" json:"price"`
	DurationDays  int       `gorm:"column:duration_days;not null" json:"duration_days"`
	MaxPhotos     int       `gorm:"column:max_photos;not null" json:"max_photos"`
	MaxHighlights int       `gorm:"column:max_highlights;not null" json:"max_highlights"`
	PriorityLevel int       `gorm:"column:priority_level;not null" json:"priority_level"`
	IsFeatured    bool      `gorm:"column:is_featured;not null" json:"is_featured"`
	IsActive      bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Plan) TableName() string { return "plans" }

func (p *Plan) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

type Subscription struct {
	ID           string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	AdvertiserID string    `gorm:"column:advertiser_id;size:36;not null;index" json:"advertiser_id"`
	PlanID       string    `gorm:"column:plan_id;size:36;not null" json:"plan_id"`
	StartsAt     time.Time `gorm:"column:starts_at;not null" json:"starts_at"`
	ExpiresAt    time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
	IsActive     bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`

	Plan *Plan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

func (Subscription) TableName() string { return "subscriptions" }

func (s *Subscription) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// Current reports whether the subscription is usable at now.
func (s *Subscription) Current(now time.Time) bool {
	return s.IsActive && !now.Before(s.StartsAt) && now.Before(s.ExpiresAt)
}
