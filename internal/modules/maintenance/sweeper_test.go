package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"classifieds/internal/database/dbtest"
	"classifieds/internal/domain"
	"classifieds/internal/pkg/logger"
	"classifieds/internal/pkg/metrics"
	"classifieds/internal/repository"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func seedAdvertiser(t *testing.T, db *gorm.DB) string {
	t.Helper()
	u := &domain.User{Email: "adv@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	a := &domain.AdvertiserProfile{UserID: u.ID, DisplayName: "Adv"}
	require.NoError(t, db.Create(a).Error)
	return a.ID
}

func seedListing(t *testing.T, db *gorm.DB, advertiserID string, status domain.ListingStatus, expiresAt *time.Time) *domain.Listing {
	t.Helper()
	l := &domain.Listing{AdvertiserID: advertiserID, Title: "T", Description: "D", State: "SP", City: "Santos", Status: status, ExpiresAt: expiresAt}
	require.NoError(t, db.Omit("Advertiser", "Photos", "Highlights").Create(l).Error)
	return l
}

func TestSweeper_Run(t *testing.T) {
	db := dbtest.New(t)
	m := metrics.Noop()
	s := NewSweeper(repository.NewListingRepository(db), repository.NewHighlightRepository(db), logger.Discard(), m)

	adv := seedAdvertiser(t, db)
	past, future := now.Add(-time.Hour), now.Add(time.Hour)
	due := seedListing(t, db, adv, domain.ListingApproved, &past)
	notYet := seedListing(t, db, adv, domain.ListingApproved, &future)
	suspended := seedListing(t, db, adv, domain.ListingSuspended, &past)
	forever := seedListing(t, db, adv, domain.ListingApproved, nil)

	for _, exp := range []time.Time{past, future} {
		require.NoError(t, db.Create(&domain.Highlight{
			ListingID: notYet.ID, ContentURL: "u", StoragePath: "p", ContentType: domain.HighlightImage,
			StartsAt: exp.Add(-24 * time.Hour), ExpiresAt: exp, IsActive: true,
		}).Error)
	}

	res, err := s.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, []string{due.ID}, res.ExpiredListings)
	assert.Equal(t, int64(1), res.DeactivatedHighlights)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ListingTransitions.WithLabelValues("expire")))

	statuses := map[string]domain.ListingStatus{}
	var rows []domain.Listing
	require.NoError(t, db.Find(&rows).Error)
	for _, r := range rows {
		statuses[r.ID] = r.Status
	}
	assert.Equal(t, domain.ListingExpired, statuses[due.ID])
	assert.Equal(t, domain.ListingApproved, statuses[notYet.ID])
	assert.Equal(t, domain.ListingSuspended, statuses[suspended.ID])
	assert.Equal(t, domain.ListingApproved, statuses[forever.ID])

	res, err = s.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, res.ExpiredListings)
	assert.Zero(t, res.DeactivatedHighlights)
}

type failingListings struct{}

func (failingListings) ExpireDue(context.Context, time.Time) ([]string, error) {
	return nil, domain.StoreError("expire listings", errors.New("db down"))
}

type countingHighlights struct{ calls int }

func (c *countingHighlights) DeactivateExpired(context.Context, time.Time) (int64, error) {
	c.calls++
	return 2, nil
}

func TestSweeper_HighlightsRunAfterListingFailure(t *testing.T) {
	hl := &countingHighlights{}
	s := NewSweeper(failingListings{}, hl, logger.Discard(), metrics.Noop())

	res, err := s.Run(context.Background(), now)
	assert.ErrorIs(t, err, domain.ErrStore)
	assert.Equal(t, 1, hl.calls)
	assert.Equal(t, int64(2), res.DeactivatedHighlights)
}
