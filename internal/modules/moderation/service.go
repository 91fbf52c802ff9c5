package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"classifieds/internal/domain"
	"classifieds/internal/modules/access"
	"classifieds/internal/pkg/validator"

	"github.com/sirupsen/logrus"
)

type Service struct {
	verifications VerificationStore
	linker        Linker
	listings      ListingCounter
	reports       ReportCounter
	advertisers   AdvertiserCounter
	logs          LogReader
	tags          TagStore
	tagCache      TagInvalidator
	audit         Auditor
	log           logrus.FieldLogger
	now           func() time.Time
}

type Deps struct {
	Verifications VerificationStore
	Linker        Linker
	Listings      ListingCounter
	Reports       ReportCounter
	Advertisers   AdvertiserCounter
	Logs          LogReader
	Tags          TagStore
	TagCache      TagInvalidator
	Audit         Auditor
	Log           logrus.FieldLogger
}

func NewService(d Deps) *Service {
	return &Service{
		verifications: d.Verifications,
		linker:        d.Linker,
		listings:      d.Listings,
		reports:       d.Reports,
		advertisers:   d.Advertisers,
		logs:          d.Logs,
		tags:          d.Tags,
		tagCache:      d.TagCache,
		audit:         d.Audit,
		log:           d.Log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// PendingVerifications lists unreviewed submissions oldest first, each
// with signed links to its files.
func (s *Service) PendingVerifications(ctx context.Context, who access.Identity) ([]PendingVerification, error) {
	if err := access.Authorize(who, access.VerificationReview, access.None); err != nil {
		return nil, err
	}
	docs, err := s.verifications.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PendingVerification, 0, len(docs))
	for _, d := range docs {
		item := PendingVerification{VerificationDocument: d}
		links, err := s.linker.Links(&d)
		if err != nil {
			s.log.WithFields(logrus.Fields{"document_id": d.ID, "error": err.Error()}).Warn("cannot sign verification links")
		} else {
			item.Links = links
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *Service) ApproveVerification(ctx context.Context, who access.Identity, documentID, notes string) error {
	return s.review(ctx, who, documentID, domain.VerificationApproved, notes)
}

// RejectVerification requires notes explaining the refusal.
func (s *Service) RejectVerification(ctx context.Context, who access.Identity, documentID, notes string) error {
	return s.review(ctx, who, documentID, domain.VerificationRejected, notes)
}

func (s *Service) review(ctx context.Context, who access.Identity, documentID string, status domain.VerificationStatus, notes string) error {
	if err := access.Authorize(who, access.VerificationReview, access.None); err != nil {
		return err
	}
	if status == domain.VerificationRejected && strings.TrimSpace(notes) == "" {
		return domain.Invalid("notes", "rejection notes are required")
	}
	doc, err := s.verifications.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.ReviewedAt != nil {
		return fmt.Errorf("verification %s already reviewed: %w", documentID, domain.ErrConflict)
	}

	var notesPtr *string
	if t := strings.TrimSpace(notes); t != "" {
		notesPtr = &t
	}
	if err := s.verifications.Review(ctx, doc, who.UserID, status, notesPtr, s.now()); err != nil {
		return err
	}

	action := domain.ActionApproveVerification
	if status == domain.VerificationRejected {
		action = domain.ActionRejectVerification
	}
	details := map[string]any{"document_id": doc.ID}
	if notesPtr != nil {
		details["notes"] = *notesPtr
	}
	s.audit.Record(ctx, who.UserID, action, domain.TargetAdvertiser, doc.AdvertiserID, details)
	s.log.WithFields(logrus.Fields{"advertiser_id": doc.AdvertiserID, "status": status}).Info("verification reviewed")
	return nil
}

func (s *Service) Stats(ctx context.Context, who access.Identity) (*Stats, error) {
	if err := access.Authorize(who, access.ModerationView, access.None); err != nil {
		return nil, err
	}
	var (
		st  Stats
		err error
	)
	if st.PendingListings, err = s.listings.CountByStatus(ctx, domain.ListingPending); err != nil {
		return nil, err
	}
	if st.ApprovedListings, err = s.listings.CountByStatus(ctx, domain.ListingApproved); err != nil {
		return nil, err
	}
	if st.PendingReports, err = s.reports.CountByStatus(ctx, domain.ReportPending); err != nil {
		return nil, err
	}
	if st.PendingVerifications, err = s.advertisers.CountByVerification(ctx, domain.VerificationPending); err != nil {
		return nil, err
	}
	return &st, nil
}

// Logs returns the newest admin actions.
func (s *Service) Logs(ctx context.Context, who access.Identity, limit int) ([]domain.AdminActionLog, error) {
	if err := access.Authorize(who, access.ModerationView, access.None); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = DefaultLogLimit
	}
	return s.logs.List(ctx, limit)
}

func (s *Service) CreateTag(ctx context.Context, who access.Identity, req CreateTagRequest) (*domain.ServiceTag, error) {
	if err := access.Authorize(who, access.TagManage, access.None); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	slug := Slugify(req.Name)
	if slug == "" {
		return nil, domain.Invalid("name", "must contain letters or digits")
	}

	tag := &domain.ServiceTag{Name: req.Name, Slug: slug, IsActive: true}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, err
	}
	s.invalidateTags(ctx)
	s.audit.Record(ctx, who.UserID, domain.ActionCreateServiceTag, domain.TargetTag, tag.ID, map[string]any{"slug": tag.Slug})
	return tag, nil
}

func (s *Service) DeactivateTag(ctx context.Context, who access.Identity, id string) error {
	if err := access.Authorize(who, access.TagManage, access.None); err != nil {
		return err
	}
	if err := s.tags.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.invalidateTags(ctx)
	s.audit.Record(ctx, who.UserID, domain.ActionDeactivateServiceTag, domain.TargetTag, id, nil)
	return nil
}

func (s *Service) invalidateTags(ctx context.Context) {
	if s.tagCache == nil {
		return
	}
	if err := s.tagCache.InvalidateTags(ctx); err != nil {
		s.log.WithError(err).Warn("tag cache invalidation failed")
	}
}
