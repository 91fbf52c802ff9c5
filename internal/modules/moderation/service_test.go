package moderation

import (
	"context"
	"testing"
	"time"

	"classifieds/internal/cache"
	"classifieds/internal/database/dbtest"
	"classifieds/internal/domain"
	"classifieds/internal/modules/access"
	"classifieds/internal/modules/advertiser"
	"classifieds/internal/modules/audit"
	"classifieds/internal/modules/storage"
	"classifieds/internal/pkg/jwt"
	"classifieds/internal/pkg/logger"
	"classifieds/internal/pkg/metrics"
	"classifieds/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var pdfHeader = []byte("%PDF-1.4\n%test")

type env struct {
	db          *gorm.DB
	svc         *Service
	advertisers *advertiser.Service
	tagCache    *cache.Cache
	user        access.Identity
	mod         access.Identity
	admin       access.Identity
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := dbtest.New(t)
	log := logger.Discard()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	tagCache := cache.New(client, time.Minute)

	objects := storage.NewService(t.TempDir(), "http://cdn.test", jwt.New("secret", time.Hour))
	advertisers := advertiser.NewService(repository.NewAdvertiserRepository(db), repository.NewVerificationRepository(db), objects, log, 15*time.Minute)
	auditRepo := repository.NewAuditRepository(db)

	svc := NewService(Deps{
		Verifications: repository.NewVerificationRepository(db),
		Linker:        advertisers,
		Listings:      repository.NewListingRepository(db),
		Reports:       repository.NewReportRepository(db),
		Advertisers:   repository.NewAdvertiserRepository(db),
		Logs:          auditRepo,
		Tags:          repository.NewTagRepository(db),
		TagCache:      tagCache,
		Audit:         audit.NewRecorder(auditRepo, log, metrics.Noop()),
		Log:           log,
	})

	u := &domain.User{Email: "ana@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)

	return &env{
		db:          db,
		svc:         svc,
		advertisers: advertisers,
		tagCache:    tagCache,
		user:        access.Identity{UserID: u.ID},
		mod:         access.Identity{UserID: "mod-1", Roles: []domain.Role{domain.RoleModerator}},
		admin:       access.Identity{UserID: "admin-1", Roles: []domain.Role{domain.RoleAdmin}},
	}
}

func (e *env) submit(t *testing.T) *domain.VerificationDocument {
	t.Helper()
	ctx := context.Background()
	p, err := e.advertisers.CreateProfile(ctx, e.user, advertiser.CreateProfileInput{DisplayName: "Ana"})
	require.NoError(t, err)
	who := access.Identity{UserID: e.user.UserID, AdvertiserID: p.ID, Roles: []domain.Role{domain.RoleAdvertiser}}
	doc, err := e.advertisers.SubmitVerification(ctx, who, storage.File{Name: "id.pdf", Data: pdfHeader}, nil, nil)
	require.NoError(t, err)
	return doc
}

func TestPendingVerifications_SignsLinks(t *testing.T) {
	e := newEnv(t)
	doc := e.submit(t)

	items, err := e.svc.PendingVerifications(context.Background(), e.mod)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, doc.ID, items[0].ID)
	require.NotNil(t, items[0].Links)
	assert.Contains(t, items[0].Links.DocumentURL, "token=")
	assert.Nil(t, items[0].Links.SelfieURL)
	require.NotNil(t, items[0].Advertiser)
	assert.Equal(t, "Ana", items[0].Advertiser.DisplayName)

	_, err = e.svc.PendingVerifications(context.Background(), e.user)
	assert.ErrorIs(t, err, domain.ErrPermission)
}

func TestApproveVerification(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	doc := e.submit(t)

	require.NoError(t, e.svc.ApproveVerification(ctx, e.admin, doc.ID, ""))

	p, err := repository.NewAdvertiserRepository(e.db).GetByID(ctx, doc.AdvertiserID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationApproved, p.VerificationStatus)
	assert.True(t, p.IsVerified)

	items, err := e.svc.PendingVerifications(ctx, e.mod)
	require.NoError(t, err)
	assert.Empty(t, items)

	logs, err := repository.NewAuditRepository(e.db).ListForTarget(ctx, domain.TargetAdvertiser, doc.AdvertiserID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.ActionApproveVerification, logs[0].ActionType)
	assert.Equal(t, "admin-1", logs[0].AdminID)

	err = e.svc.ApproveVerification(ctx, e.admin, doc.ID, "")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRejectVerification_RequiresNotes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	doc := e.submit(t)

	err := e.svc.RejectVerification(ctx, e.mod, doc.ID, "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, e.svc.RejectVerification(ctx, e.mod, doc.ID, "blurry photo"))

	p, err := repository.NewAdvertiserRepository(e.db).GetByID(ctx, doc.AdvertiserID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationRejected, p.VerificationStatus)
	assert.False(t, p.IsVerified)

	logs, err := repository.NewAuditRepository(e.db).ListForTarget(ctx, domain.TargetAdvertiser, doc.AdvertiserID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.ActionRejectVerification, logs[0].ActionType)
	assert.Contains(t, string(logs[0].Details), "blurry photo")
}

func TestReviewVerification_Guards(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	doc := e.submit(t)

	assert.ErrorIs(t, e.svc.ApproveVerification(ctx, e.user, doc.ID, ""), domain.ErrPermission)
	assert.ErrorIs(t, e.svc.ApproveVerification(ctx, e.mod, "missing", ""), domain.ErrNotFound)
}

func TestStats(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	doc := e.submit(t)

	for i, status := range []domain.ListingStatus{domain.ListingPending, domain.ListingPending, domain.ListingApproved, domain.ListingRejected} {
		l := &domain.Listing{AdvertiserID: doc.AdvertiserID, Title: "L", Description: "d", State: "SP", City: "São Paulo", Status: status}
		require.NoError(t, e.db.Omit("Advertiser", "Photos", "Highlights").Create(l).Error, i)
		if status == domain.ListingApproved {
			require.NoError(t, e.db.Create(&domain.Report{ListingID: l.ID, Reason: domain.ReasonScam, Status: domain.ReportPending}).Error)
			require.NoError(t, e.db.Create(&domain.Report{ListingID: l.ID, Reason: domain.ReasonFake, Status: domain.ReportDismissed}).Error)
		}
	}

	st, err := e.svc.Stats(ctx, e.mod)
	require.NoError(t, err)
	assert.Equal(t, Stats{PendingListings: 2, ApprovedListings: 1, PendingReports: 1, PendingVerifications: 1}, *st)

	_, err = e.svc.Stats(ctx, access.Identity{})
	assert.ErrorIs(t, err, domain.ErrPermission)
}

func TestLogs_Limit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for _, name := range []string{"Massagem", "Acompanhante", "Jantar"} {
		_, err := e.svc.CreateTag(ctx, e.admin, CreateTagRequest{Name: name})
		require.NoError(t, err)
	}

	logs, err := e.svc.Logs(ctx, e.mod, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.ActionCreateServiceTag, logs[0].ActionType)

	logs, err = e.svc.Logs(ctx, e.mod, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}

func TestCreateTag_InvalidatesCache(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.tagCache.SetTags(ctx, []domain.ServiceTag{{ID: "old", Slug: "old"}}))

	tag, err := e.svc.CreateTag(ctx, e.admin, CreateTagRequest{Name: "  Massagem Relaxante "})
	require.NoError(t, err)
	assert.Equal(t, "Massagem Relaxante", tag.Name)
	assert.Equal(t, "massagem-relaxante", tag.Slug)
	assert.True(t, tag.IsActive)

	_, ok, err := e.tagCache.Tags(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = e.svc.CreateTag(ctx, e.admin, CreateTagRequest{Name: "Massagem relaxante"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = e.svc.CreateTag(ctx, e.user, CreateTagRequest{Name: "Other"})
	assert.ErrorIs(t, err, domain.ErrPermission)
}

func TestDeactivateTag(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tag, err := e.svc.CreateTag(ctx, e.admin, CreateTagRequest{Name: "Jantar"})
	require.NoError(t, err)

	require.NoError(t, e.svc.DeactivateTag(ctx, e.admin, tag.ID))
	active, err := repository.NewTagRepository(e.db).ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	assert.ErrorIs(t, e.svc.DeactivateTag(ctx, e.admin, "missing"), domain.ErrNotFound)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Massagem":           "massagem",
		"São Paulo":          "sao-paulo",
		"  Jantar & Viagem ": "jantar-viagem",
		"24h!":               "24h",
		"---":                "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}
