package moderation

import (
	"classifieds/internal/domain"
	"classifieds/internal/modules/advertiser"
)

// DefaultLogLimit is the admin log page length.
const DefaultLogLimit = 50

type PendingVerification struct {
	domain.VerificationDocument
	Links *advertiser.DocumentLinks `json:"links,omitempty"`
}

type ReviewRequest struct {
	Notes string `json:"notes"`
}

type Stats struct {
	PendingListings      int64 `json:"pending_listings"`
	ApprovedListings     int64 `json:"approved_listings"`
	PendingReports       int64 `json:"pending_reports"`
	PendingVerifications int64 `json:"pending_verifications"`
}

type CreateTagRequest struct {
	Name string `json:"name" validate:"required,max=80"`
}
