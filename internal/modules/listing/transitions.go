package listing

import (
	"context"
	"strings"

	"classifieds/internal/domain"
	"classifieds/internal/modules/access"

	"github.com/sirupsen/logrus"
)

// Allowed source states per moderation action. Repeating an action on a
// listing already in the target state is accepted and rewrites the same
// fields.
var (
	approveFrom = []domain.ListingStatus{domain.ListingPending, domain.ListingApproved, domain.ListingSuspended}
	rejectFrom  = []domain.ListingStatus{domain.ListingPending, domain.ListingRejected}
	suspendFrom = []domain.ListingStatus{domain.ListingApproved, domain.ListingSuspended}
)

// Approve publishes a listing. published_at is kept from the first
// approval; with a configured lifetime, expires_at is set once.
func (s *Service) Approve(ctx context.Context, who access.Identity, id string) error {
	if err := access.Authorize(who, access.ListingModerate, access.None); err != nil {
		return err
	}
	cur, err := s.guard(ctx, id, domain.ActionApprove, approveFrom)
	if err != nil {
		return err
	}

	now := s.now()
	published := now
	if cur.PublishedAt != nil {
		published = *cur.PublishedAt
	}
	fields := map[string]any{
		"status":            domain.ListingApproved,
		"published_at":      published,
		"rejection_reason":  nil,
		"suspension_reason": nil,
		"updated_at":        now,
	}
	if s.lifetime > 0 && cur.ExpiresAt == nil {
		fields["expires_at"] = published.Add(s.lifetime)
	}

	if err := s.apply(ctx, id, domain.ActionApprove, approveFrom, fields); err != nil {
		return err
	}
	s.audit.Record(ctx, who.UserID, domain.ActionApprove, domain.TargetListing, id, nil)
	return nil
}

// Reject requires a non-blank reason, checked before anything is written.
func (s *Service) Reject(ctx context.Context, who access.Identity, id, reason string) error {
	if err := access.Authorize(who, access.ListingModerate, access.None); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.Invalid("reason", "a rejection reason is required")
	}
	if _, err := s.guard(ctx, id, domain.ActionReject, rejectFrom); err != nil {
		return err
	}

	fields := map[string]any{
		"status":            domain.ListingRejected,
		"rejection_reason":  reason,
		"suspension_reason": nil,
		"updated_at":        s.now(),
	}
	if err := s.apply(ctx, id, domain.ActionReject, rejectFrom, fields); err != nil {
		return err
	}
	s.audit.Record(ctx, who.UserID, domain.ActionReject, domain.TargetListing, id, map[string]any{"reason": reason})
	return nil
}

// Suspend takes an approved listing out of the catalog.
func (s *Service) Suspend(ctx context.Context, who access.Identity, id, reason string) error {
	if err := access.Authorize(who, access.ListingModerate, access.None); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.Invalid("reason", "a suspension reason is required")
	}
	if _, err := s.guard(ctx, id, domain.ActionSuspend, suspendFrom); err != nil {
		return err
	}

	fields := map[string]any{
		"status":            domain.ListingSuspended,
		"suspension_reason": reason,
		"rejection_reason":  nil,
		"updated_at":        s.now(),
	}
	if err := s.apply(ctx, id, domain.ActionSuspend, suspendFrom, fields); err != nil {
		return err
	}
	s.audit.Record(ctx, who.UserID, domain.ActionSuspend, domain.TargetListing, id, map[string]any{"reason": reason})
	return nil
}

// ListPending is the moderation queue, oldest first.
func (s *Service) ListPending(ctx context.Context, who access.Identity, page, limit int) (*PendingPage, error) {
	if err := access.Authorize(who, access.ModerationView, access.None); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page < 0 {
		page = 0
	}
	rows, total, err := s.listings.ListByStatus(ctx, domain.ListingPending, limit, page*limit)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.Listing{}
	}
	return &PendingPage{Listings: rows, Total: total, Page: page, Limit: limit}, nil
}

func (s *Service) guard(ctx context.Context, id, action string, from []domain.ListingStatus) (*domain.Listing, error) {
	cur, err := s.listings.GetStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	if !allowed(cur.Status, from) {
		return nil, &domain.TransitionError{Action: action, From: cur.Status}
	}
	return cur, nil
}

// apply writes fields only if the listing is still in one of from. A lost
// race is reported with the state that won.
func (s *Service) apply(ctx context.Context, id, action string, from []domain.ListingStatus, fields map[string]any) error {
	ok, err := s.listings.Transition(ctx, id, from, fields)
	if err != nil {
		return err
	}
	if !ok {
		cur, err := s.listings.GetStatus(ctx, id)
		if err != nil {
			return err
		}
		return &domain.TransitionError{Action: action, From: cur.Status}
	}
	s.counted(action)
	s.log.WithFields(logrus.Fields{"listing_id": id, "action": action, "to": fields["status"]}).Info("listing status changed")
	return nil
}

func allowed(status domain.ListingStatus, from []domain.ListingStatus) bool {
	for _, f := range from {
		if f == status {
			return true
		}
	}
	return false
}
