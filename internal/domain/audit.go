package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionApprove              = "approve"
	ActionReject               = "reject"
	ActionSuspend              = "suspend"
	ActionDelete               = "delete"
	ActionResolveReport        = "resolve_report"
	ActionApproveVerification  = "approve_verification"
	ActionRejectVerification   = "reject_verification"
	ActionCreateServiceTag     = "create_tag"
	ActionDeactivateServiceTag = "deactivate_tag"

	TargetListing    = "listing"
	TargetReport     = "report"
	TargetAdvertiser = "advertiser"
	TargetTag        = "service_tag"
)

// AdminActionLog is append-only.
type AdminActionLog struct {
	ID         string         `gorm:"column:id;primaryKey;size:36" json:"id"`
	AdminID    string         `gorm:"column:admin_id;size:36;not null;index" json:"admin_id"`
	ActionType string         `gorm:"column:action_type;size:32;not null" json:"action_type"`
	TargetType string         `gorm:"column:target_type;size:32;not null" json:"target_type"`
	TargetID   string         `gorm:"column:target_id;size:36;not null;index" json:"target_id"`
	Details    datatypes.JSON `gorm:"column:details" json:"details,omitempty"`
	CreatedAt  time.Time      `gorm:"column:created_at;index" json:"created_at"`
}

func (AdminActionLog) TableName() string { return "admin_action_logs" }

func (l *AdminActionLog) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}
