package policies

import (
	"errors"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("authz: principal required")
	ErrForbidden       = errors.New("authz: not allowed for this resource")
)

const RoleAdmin = "admin"

// Principal is the already-authenticated caller identity supplied by the
// identity collaborator.
type Principal struct {
	ID    string
	Roles []string
}

func (p Principal) HasRole(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return false
	}
	for _, r := range p.Roles {
		if strings.ToLower(r) == role {
			return true
		}
	}
	return false
}

func (p Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}

// Authorize is the single ownership check used by every operation: the
// resource owner and admins pass, everyone else is rejected.
func Authorize(p Principal, ownerID string) error {
	if p.ID == "" {
		return ErrUnauthenticated
	}
	if p.IsAdmin() {
		return nil
	}
	if ownerID != "" && p.ID == ownerID {
		return nil
	}
	return ErrForbidden
}

// AuthorizeAny passes when the principal owns any of the listed resources.
func AuthorizeAny(p Principal, ownerIDs ...string) error {
	if p.ID == "" {
		return ErrUnauthenticated
	}
	if p.IsAdmin() {
		return nil
	}
	for _, owner := range ownerIDs {
		if owner != "" && p.ID == owner {
			return nil
		}
	}
	return ErrForbidden
}
