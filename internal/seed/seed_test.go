package seed

import (
	"context"
	"strings"
	"testing"

	"classifieds/internal/database/dbtest"
	"classifieds/internal/domain"
	"classifieds/internal/pkg/logger"
	"classifieds/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `
tags:
  - name: Massagem
  - name: Jantar a dois
    slug: jantar
  - name: Antigo
    inactive: true
plans:
  - name: Destaque
    price: 49.9
    duration_days: 30
    max_photos: 10
    max_highlights: 3
    priority_level: 2
    featured: true
staff:
  - email: Admin@Example.com
    password: admin-password
    role: admin
`

func TestLoadAndApply_Idempotent(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	f, err := Load(strings.NewReader(fixture))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		sum, err := Apply(ctx, db, f, logger.Discard())
		require.NoError(t, err)
		assert.Equal(t, Summary{Tags: 3, Plans: 1, Staff: 1}, sum)
	}

	active, err := repository.NewTagRepository(db).ListActive(ctx)
	require.NoError(t, err)
	slugs := make([]string, 0, len(active))
	for _, tag := range active {
		slugs = append(slugs, tag.Slug)
	}
	assert.ElementsMatch(t, []string{"massagem", "jantar"}, slugs)

	plans, err := repository.NewPlanRepository(db).ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, 3, plans[0].MaxHighlights)
	assert.True(t, plans[0].IsFeatured)

	users := repository.NewUserRepository(db)
	admin, err := users.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	roles, err := users.Roles(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Role{domain.RoleAdmin}, roles)
}

func TestLoad_Rejects(t *testing.T) {
	_, err := Load(strings.NewReader("staff:\n  - email: a@b.c\n    password: longenough\n    role: advertiser\n"))
	assert.ErrorContains(t, err, "role must be admin or moderator")

	_, err = Load(strings.NewReader("staff:\n  - email: a@b.c\n    password: short\n    role: admin\n"))
	assert.ErrorContains(t, err, "at least 8")

	_, err = Load(strings.NewReader("tagz: []\n"))
	assert.Error(t, err)
}
