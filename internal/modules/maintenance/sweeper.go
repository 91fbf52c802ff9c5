// Package maintenance holds the time-driven sweeps run by cmd/maintenance.
package maintenance

import (
	"context"
	"time"

	"classifieds/internal/pkg/metrics"

	"github.com/sirupsen/logrus"
)

type ListingExpirer interface {
	ExpireDue(ctx context.Context, now time.Time) ([]string, error)
}

type HighlightExpirer interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type Result struct {
	ExpiredListings       []string
	DeactivatedHighlights int64
}

type Sweeper struct {
	listings   ListingExpirer
	highlights HighlightExpirer
	log        logrus.FieldLogger
	metrics    *metrics.Metrics
}

func NewSweeper(listings ListingExpirer, highlights HighlightExpirer, log logrus.FieldLogger, m *metrics.Metrics) *Sweeper {
	return &Sweeper{listings: listings, highlights: highlights, log: log, metrics: m}
}

// Run expires approved listings past expires_at and switches off highlights
// past their lifetime. Both sweeps run even if the first one fails.
func (s *Sweeper) Run(ctx context.Context, now time.Time) (Result, error) {
	var res Result

	ids, listErr := s.listings.ExpireDue(ctx, now)
	if listErr != nil {
		s.log.WithError(listErr).Error("listing expiry failed")
	} else {
		res.ExpiredListings = ids
		s.metrics.ListingTransitions.WithLabelValues("expire").Add(float64(len(ids)))
	}

	n, hlErr := s.highlights.DeactivateExpired(ctx, now)
	if hlErr != nil {
		s.log.WithError(hlErr).Error("highlight expiry failed")
	} else {
		res.DeactivatedHighlights = n
	}

	s.log.WithFields(logrus.Fields{
		"expired_listings":       len(res.ExpiredListings),
		"deactivated_highlights": res.DeactivatedHighlights,
	}).Info("maintenance sweep finished")

	if listErr != nil {
		return res, listErr
	}
	return res, hlErr
}
