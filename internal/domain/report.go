package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportReason string

const (
	ReasonMisleading    ReportReason = "misleading"
	ReasonFake          ReportReason = "fake"
	ReasonInappropriate ReportReason = "inappropriate"
	ReasonScam          ReportReason = "scam"
	ReasonOther         ReportReason = "other"
)

func (r ReportReason) Valid() bool {
	switch r {
	case ReasonMisleading, ReasonFake, ReasonInappropriate, ReasonScam, ReasonOther:
		return true
	}
	return false
}

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportReviewed  ReportStatus = "reviewed"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportReviewed, ReportResolved, ReportDismissed:
		return true
	}
	return false
}

// Terminal statuses are the ones a moderator may resolve a report into.
func (s ReportStatus) Terminal() bool {
	return s == ReportReviewed || s == ReportResolved || s == ReportDismissed
}

type Report struct {
	ID            string       `gorm:"column:id;primaryKey;size:36" json:"id"`
	ListingID     string       `gorm:"column:listing_id;size:36;not null;index" json:"listing_id"`
	Reason        ReportReason `gorm:"column:reason;size:16;not null;index" json:"reason"`
	Details       *string      `gorm:"column:details;type:text" json:"details,omitempty"`
	ReporterEmail *string      `gorm:"column:reporter_email;size:255" json:"reporter_email,omitempty"`
	Status        ReportStatus `gorm:"column:status;size:16;not null;index" json:"status"`
	AdminNotes    *string      `gorm:"column:admin_notes;type:text" json:"admin_notes,omitempty"`
	ReviewedBy    *string      `gorm:"column:reviewed_by;size:36" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time   `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt     time.Time    `gorm:"column:created_at;index" json:"created_at"`

	Listing *Listing `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"listing,omitempty"`
}

func (Report) TableName() string { return "reports" }

func (r *Report) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
