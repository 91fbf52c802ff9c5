// Package access holds the single capability policy for the service.
// Handlers and services ask Authorize; nothing else inspects roles.
package access

import (
	"fmt"

	"classifieds/internal/domain"

	"github.com/gin-gonic/gin"
)

type Action string

const (
	CatalogRead        Action = "catalog.read"
	ReportCreate       Action = "report.create"
	ListingCreate      Action = "listing.create"
	ListingEdit        Action = "listing.edit"
	ListingDelete      Action = "listing.delete"
	ListingModerate    Action = "listing.moderate"
	HighlightManage    Action = "highlight.manage"
	ReportResolve      Action = "report.resolve"
	ModerationView     Action = "moderation.view"
	VerificationReview Action = "verification.review"
	TagManage          Action = "tag.manage"
	ProfileManage      Action = "profile.manage"
)

// Identity is the resolved caller. The zero value is an anonymous visitor.
type Identity struct {
	UserID       string
	Roles        []domain.Role
	AdvertiserID string
}

func (i Identity) Authenticated() bool { return i.UserID != "" }

func (i Identity) Has(role domain.Role) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Staff is true for admins and moderators; the two are interchangeable for
// every moderation capability.
func (i Identity) Staff() bool {
	return i.Has(domain.RoleAdmin) || i.Has(domain.RoleModerator)
}

// Resource identifies what an action targets. OwnerAdvertiserID is the
// advertiser owning the listing, highlight or profile, when applicable.
type Resource struct {
	OwnerAdvertiserID string
}

// None is used for actions that do not target an owned resource.
var None = Resource{}

// Can reports whether id may perform action on res.
func Can(id Identity, action Action, res Resource) bool {
	switch action {
	case CatalogRead, ReportCreate:
		return true
	case ProfileManage:
		return id.Authenticated()
	case ListingCreate:
		return id.Authenticated() && id.AdvertiserID != ""
	case ListingEdit, HighlightManage:
		return owns(id, res)
	case ListingDelete:
		return owns(id, res) || id.Has(domain.RoleAdmin)
	case ListingModerate, ReportResolve, ModerationView, VerificationReview, TagManage:
		return id.Staff()
	}
	return false
}

func owns(id Identity, res Resource) bool {
	return id.AdvertiserID != "" && res.OwnerAdvertiserID == id.AdvertiserID
}

// Authorize is Can returning a PermissionError.
func Authorize(id Identity, action Action, res Resource) error {
	if Can(id, action, res) {
		return nil
	}
	return fmt.Errorf("%s: %w", action, domain.ErrPermission)
}

// AuthorizeOwned is Authorize for a row owned by an advertiser. Another
// advertiser's row is reported as not found, the same as an absent id;
// callers failing the role gate still get a PermissionError.
func AuthorizeOwned(id Identity, action Action, res Resource, kind, resourceID string) error {
	err := Authorize(id, action, res)
	if err == nil || id.AdvertiserID == "" || id.Staff() {
		return err
	}
	return fmt.Errorf("%s %s: %w", kind, resourceID, domain.ErrNotFound)
}

const contextKey = "identity"

// Set stores the resolved identity on the request.
func Set(c *gin.Context, id Identity) {
	c.Set(contextKey, id)
}

// FromContext returns the identity resolved by middleware, or an anonymous
// one.
func FromContext(c *gin.Context) Identity {
	if v, ok := c.Get(contextKey); ok {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	return Identity{}
}
