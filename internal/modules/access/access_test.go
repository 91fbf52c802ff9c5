package access

import (
	"testing"

	"classifieds/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestCan(t *testing.T) {
	anon := Identity{}
	owner := Identity{UserID: "u1", Roles: []domain.Role{domain.RoleAdvertiser}, AdvertiserID: "adv-1"}
	other := Identity{UserID: "u2", Roles: []domain.Role{domain.RoleAdvertiser}, AdvertiserID: "adv-2"}
	moderator := Identity{UserID: "u3", Roles: []domain.Role{domain.RoleModerator}}
	admin := Identity{UserID: "u4", Roles: []domain.Role{domain.RoleAdmin}}
	ownRes := Resource{OwnerAdvertiserID: "adv-1"}

	cases := []struct {
		name   string
		id     Identity
		action Action
		res    Resource
		want   bool
	}{
		{"anon reads catalog", anon, CatalogRead, None, true},
		{"anon files report", anon, ReportCreate, None, true},
		{"anon cannot create listing", anon, ListingCreate, None, false},
		{"advertiser creates listing", owner, ListingCreate, None, true},
		{"user without profile cannot create", Identity{UserID: "u9"}, ListingCreate, None, false},
		{"owner edits", owner, ListingEdit, ownRes, true},
		{"other advertiser cannot edit", other, ListingEdit, ownRes, false},
		{"moderator cannot edit content", moderator, ListingEdit, ownRes, false},
		{"owner deletes", owner, ListingDelete, ownRes, true},
		{"admin deletes", admin, ListingDelete, ownRes, true},
		{"moderator cannot delete", moderator, ListingDelete, ownRes, false},
		{"moderator moderates", moderator, ListingModerate, ownRes, true},
		{"admin moderates", admin, ListingModerate, ownRes, true},
		{"advertiser cannot moderate", owner, ListingModerate, ownRes, false},
		{"moderator resolves reports", moderator, ReportResolve, None, true},
		{"anon cannot resolve reports", anon, ReportResolve, None, false},
		{"owner manages highlights", owner, HighlightManage, ownRes, true},
		{"empty owner never matches", Identity{UserID: "u5"}, HighlightManage, Resource{}, false},
		{"unknown action denied", admin, Action("nope"), None, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Can(tc.id, tc.action, tc.res))
		})
	}
}

func TestAuthorize_WrapsPermission(t *testing.T) {
	err := Authorize(Identity{}, ListingModerate, None)
	assert.ErrorIs(t, err, domain.ErrPermission)
	assert.NoError(t, Authorize(Identity{UserID: "a", Roles: []domain.Role{domain.RoleAdmin}}, ListingModerate, None))
}

func TestAuthorizeOwned_HidesOtherAdvertisersRows(t *testing.T) {
	owner := Resource{OwnerAdvertiserID: "adv-1"}

	assert.NoError(t, AuthorizeOwned(Identity{UserID: "u1", AdvertiserID: "adv-1"}, ListingEdit, owner, "listing", "l-1"))

	err := AuthorizeOwned(Identity{UserID: "u2", AdvertiserID: "adv-2"}, ListingEdit, owner, "listing", "l-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrPermission)

	err = AuthorizeOwned(Identity{UserID: "u3"}, ListingEdit, owner, "listing", "l-1")
	assert.ErrorIs(t, err, domain.ErrPermission)

	mod := Identity{UserID: "m", Roles: []domain.Role{domain.RoleModerator}}
	assert.ErrorIs(t, AuthorizeOwned(mod, ListingDelete, owner, "listing", "l-1"), domain.ErrPermission)
	admin := Identity{UserID: "a", Roles: []domain.Role{domain.RoleAdmin}}
	assert.NoError(t, AuthorizeOwned(admin, ListingDelete, owner, "listing", "l-1"))
}
