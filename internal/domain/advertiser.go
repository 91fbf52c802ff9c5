package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// DefaultAdvertiserName is shown when a listing's advertiser has no display name.
const DefaultAdvertiserName = "Anonymous"

type AdvertiserProfile struct {
	ID                 string             `gorm:"column:id;primaryKey;size:36" json:"id"`
	UserID             string             `gorm:"column:user_id;size:36;not null;uniqueIndex" json:"user_id"`
	DisplayName        string             `gorm:"column:display_name;size:120;not null" json:"display_name"`
	Bio                *string            `gorm:"column:bio;type:text" json:"bio,omitempty"`
	Whatsapp           *string            `gorm:"column:whatsapp;size:32" json:"whatsapp,omitempty"`
	Telegram           *string            `gorm:"column:telegram;size:64" json:"telegram,omitempty"`
	Instagram          *string            `gorm:"column:instagram;size:64" json:"instagram,omitempty"`
	VerificationStatus VerificationStatus `gorm:"column:verification_status;size:16;not null" json:"verification_status"`
	IsVerified         bool               `gorm:"column:is_verified;not null;default:false" json:"is_verified"`
	CreatedAt          time.Time          `gorm:"column:created_at" json:"created_at"`
	UpdatedAt          time.Time          `gorm:"column:updated_at" json:"updated_at"`
}

func (AdvertiserProfile) TableName() string { return "advertiser_profiles" }

func (a *AdvertiserProfile) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.VerificationStatus == "" {
		a.SetVerification(VerificationPending)
	}
	return nil
}

// SetVerification is the only writer of the verification pair.
func (a *AdvertiserProfile) SetVerification(status VerificationStatus) {
	a.VerificationStatus = status
	a.IsVerified = status == VerificationApproved
}

// Name falls back to DefaultAdvertiserName for blank profiles.
func (a *AdvertiserProfile) Name() string {
	if a == nil || a.DisplayName == "" {
		return DefaultAdvertiserName
	}
	return a.DisplayName
}

// VerificationDocument is an identity submission kept in the private bucket.
type VerificationDocument struct {
	ID           string     `gorm:"column:id;primaryKey;size:36" json:"id"`
	AdvertiserID string     `gorm:"column:advertiser_id;size:36;not null;index" json:"advertiser_id"`
	DocumentPath string     `gorm:"column:document_path;not null" json:"-"`
	SelfiePath   *string    `gorm:"column:selfie_path" json:"-"`
	Notes        *string    `gorm:"column:notes;type:text" json:"notes,omitempty"`
	ReviewedBy   *string    `gorm:"column:reviewed_by;size:36" json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`

	Advertiser *AdvertiserProfile `gorm:"foreignKey:AdvertiserID" json:"advertiser,omitempty"`
}

func (VerificationDocument) TableName() string { return "verification_documents" }

func (d *VerificationDocument) BeforeCreate(_ *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}
