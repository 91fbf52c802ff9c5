package report

import "classifieds/internal/domain"

type CreateInput struct {
	ListingID     string              `json:"listing_id" validate:"required"`
	Reason        domain.ReportReason `json:"reason" validate:"required"`
	Details       *string             `json:"details" validate:"omitempty,max=2000"`
	ReporterEmail *string             `json:"reporter_email"`
}

type ResolveInput struct {
	Status     domain.ReportStatus `json:"status"`
	AdminNotes *string             `json:"admin_notes"`
}
