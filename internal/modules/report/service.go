package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"classifieds/internal/domain"
	"classifieds/internal/modules/access"
	"classifieds/internal/pkg/metrics"
	"classifieds/internal/pkg/validator"
	"classifieds/internal/repository"

	"github.com/sirupsen/logrus"
)

// ListLimit caps the moderator's report browser.
const ListLimit = 200

type Service struct {
	reports  Store
	listings ListingLookup
	audit    Auditor
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(reports Store, listings ListingLookup, auditor Auditor, log logrus.FieldLogger, m *metrics.Metrics) *Service {
	return &Service{
		reports:  reports,
		listings: listings,
		audit:    auditor,
		log:      log,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create files an anonymous report against a publicly visible listing.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Report, error) {
	in.ListingID = strings.TrimSpace(in.ListingID)
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	if !in.Reason.Valid() {
		return nil, domain.Invalid("reason", "must be one of misleading, fake, inappropriate, scam, other")
	}
	email := blankToNil(in.ReporterEmail)
	if email != nil && !validator.IsEmail(*email) {
		return nil, domain.Invalid("reporter_email", "must be a valid email address")
	}

	l, err := s.listings.GetStatus(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	if !l.PubliclyVisible(s.now()) {
		return nil, fmt.Errorf("listing %s: %w", in.ListingID, domain.ErrNotFound)
	}

	rep := &domain.Report{
		ListingID:     in.ListingID,
		Reason:        in.Reason,
		Details:       blankToNil(in.Details),
		ReporterEmail: email,
		Status:        domain.ReportPending,
	}
	if err := s.reports.Create(ctx, rep); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ReportsCreated.WithLabelValues(string(rep.Reason)).Inc()
	}
	s.log.WithFields(logrus.Fields{"report_id": rep.ID, "listing_id": rep.ListingID, "reason": rep.Reason}).Info("report filed")
	return rep, nil
}

// Resolve records a moderator's verdict on a report.
func (s *Service) Resolve(ctx context.Context, who access.Identity, id string, in ResolveInput) (*domain.Report, error) {
	if err := access.Authorize(who, access.ReportResolve, access.None); err != nil {
		return nil, err
	}
	if !in.Status.Terminal() {
		return nil, domain.Invalid("status", "must be one of reviewed, resolved, dismissed")
	}

	rep, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	reviewer := who.UserID
	rep.Status = in.Status
	rep.AdminNotes = blankToNil(in.AdminNotes)
	rep.ReviewedBy = &reviewer
	rep.ReviewedAt = &now

	if err := s.reports.Resolve(ctx, rep); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, who.UserID, domain.ActionResolveReport, domain.TargetReport, rep.ID, map[string]any{
		"status":     rep.Status,
		"listing_id": rep.ListingID,
	})
	return rep, nil
}

func (s *Service) ListPending(ctx context.Context, who access.Identity) ([]domain.Report, error) {
	if err := access.Authorize(who, access.ModerationView, access.None); err != nil {
		return nil, err
	}
	return s.reports.ListPending(ctx)
}

func (s *Service) List(ctx context.Context, who access.Identity, status domain.ReportStatus, reason domain.ReportReason) ([]domain.Report, error) {
	if err := access.Authorize(who, access.ModerationView, access.None); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, domain.Invalid("status", "unknown report status")
	}
	if reason != "" && !reason.Valid() {
		return nil, domain.Invalid("reason", "unknown report reason")
	}
	return s.reports.List(ctx, repository.ReportFilters{Status: status, Reason: reason, Limit: ListLimit})
}

func blankToNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
