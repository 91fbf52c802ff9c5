package highlight

import (
	"context"
	"testing"
	"time"

	"classifieds/internal/database/dbtest"
	"classifieds/internal/domain"
	"classifieds/internal/modules/access"
	"classifieds/internal/modules/storage"
	"classifieds/internal/pkg/jwt"
	"classifieds/internal/pkg/logger"
	"classifieds/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	mp4Header = []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom")
)

type env struct {
	db      *gorm.DB
	svc     *Service
	owner   access.Identity
	other   access.Identity
	listing *domain.Listing
	now     time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := dbtest.New(t)
	objects := storage.NewService(t.TempDir(), "http://cdn.test", jwt.New("secret", time.Hour))
	svc := NewService(repository.NewHighlightRepository(db), repository.NewListingRepository(db), repository.NewPlanRepository(db), objects, logger.Discard(), 0)
	now := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	e := &env{db: db, svc: svc, now: now}
	var ownerAdv *domain.AdvertiserProfile
	e.owner, ownerAdv = e.advertiser(t, "owner")
	e.other, _ = e.advertiser(t, "other")

	e.listing = &domain.Listing{AdvertiserID: ownerAdv.ID, Title: "t", Description: "d", State: "SP", City: "X", Status: domain.ListingApproved}
	require.NoError(t, db.Omit("Advertiser", "Photos", "Highlights").Create(e.listing).Error)
	return e
}

func (e *env) advertiser(t *testing.T, name string) (access.Identity, *domain.AdvertiserProfile) {
	t.Helper()
	u := &domain.User{Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, e.db.Create(u).Error)
	a := &domain.AdvertiserProfile{UserID: u.ID, DisplayName: name}
	require.NoError(t, e.db.Create(a).Error)
	return access.Identity{UserID: u.ID, AdvertiserID: a.ID, Roles: []domain.Role{domain.RoleAdvertiser}}, a
}

func TestPublish_DefaultLifetime(t *testing.T) {
	e := newEnv(t)

	h, err := e.svc.Publish(context.Background(), e.owner, e.listing.ID, storage.File{Name: "s.png", Data: pngHeader})
	require.NoError(t, err)

	assert.Equal(t, domain.HighlightImage, h.ContentType)
	assert.True(t, h.ExpiresAt.Equal(e.now.Add(24*time.Hour)))
	assert.True(t, h.Live(e.now))
	assert.True(t, h.Live(e.now.Add(23*time.Hour)))
	assert.False(t, h.Live(e.now.Add(24*time.Hour)))
}

func TestPublish_VideoAndPlanLimit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Publish(ctx, e.owner, e.listing.ID, storage.File{Name: "a.mp4", Data: mp4Header})
	require.NoError(t, err)

	_, err = e.svc.Publish(ctx, e.owner, e.listing.ID, storage.File{Name: "b.png", Data: pngHeader})
	var lerr *domain.LimitError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, domain.FreePlanMaxHighlights, lerr.Limit)

	plan := &domain.Plan{Name: "gold", MaxPhotos: 10, MaxHighlights: 3, DurationDays: 30, IsActive: true}
	require.NoError(t, e.db.Create(plan).Error)
	require.NoError(t, e.db.Create(&domain.Subscription{
		AdvertiserID: e.listing.AdvertiserID, PlanID: plan.ID, IsActive: true,
		StartsAt: e.now.Add(-time.Hour), ExpiresAt: e.now.Add(time.Hour),
	}).Error)

	h, err := e.svc.Publish(ctx, e.owner, e.listing.ID, storage.File{Name: "b.png", Data: pngHeader})
	require.NoError(t, err)
	assert.Equal(t, domain.HighlightImage, h.ContentType)

	var video domain.Highlight
	require.NoError(t, e.db.Where("content_type = ?", domain.HighlightVideo).First(&video).Error)
	assert.Equal(t, e.listing.ID, video.ListingID)
}

func TestPublish_OwnerOnly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Publish(ctx, e.other, e.listing.ID, storage.File{Name: "s.png", Data: pngHeader})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.svc.Publish(ctx, access.Identity{UserID: "u-1"}, e.listing.ID, storage.File{Name: "s.png", Data: pngHeader})
	assert.ErrorIs(t, err, domain.ErrPermission)

	_, err = e.svc.Publish(ctx, e.owner, "missing", storage.File{Name: "s.png", Data: pngHeader})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.svc.Publish(ctx, e.owner, e.listing.ID, storage.File{Name: "s.txt", Data: []byte("text")})
	assert.ErrorIs(t, err, domain.ErrUpload)
}

func TestRemove(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	h, err := e.svc.Publish(ctx, e.owner, e.listing.ID, storage.File{Name: "s.png", Data: pngHeader})
	require.NoError(t, err)

	assert.ErrorIs(t, e.svc.Remove(ctx, e.other, h.ID), domain.ErrNotFound)
	require.NoError(t, e.svc.Remove(ctx, e.owner, h.ID))
	assert.ErrorIs(t, e.svc.Remove(ctx, e.owner, h.ID), domain.ErrNotFound)

	_, err = e.svc.Publish(ctx, e.owner, e.listing.ID, storage.File{Name: "s.png", Data: pngHeader})
	assert.NoError(t, err)
}

func TestPublish_RequiresApprovedListing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for _, status := range []domain.ListingStatus{domain.ListingPending, domain.ListingRejected, domain.ListingSuspended, domain.ListingExpired} {
		require.NoError(t, e.db.Model(&domain.Listing{}).Where("id = ?", e.listing.ID).Update("status", status).Error)

		_, err := e.svc.Publish(ctx, e.owner, e.listing.ID, storage.File{Name: "s.png", Data: pngHeader})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, status)
	}

	var n int64
	require.NoError(t, e.db.Model(&domain.Highlight{}).Count(&n).Error)
	assert.Zero(t, n)
}
