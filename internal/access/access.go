// Package access holds the role model and the permission predicates used by the
// HTTP API. Every rule is a pure function of the request method, the requester's
// role and whether the requester authored the target object.
package access

import (
	"fmt"
	"net/http"
	"strings"
)

type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ParseRole accepts the three stored roles. Anonymous is never stored, so it is
// rejected here.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleUser, RoleModerator, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string { return string(r) }

func (r Role) IsAuthenticated() bool {
	return r == RoleUser || r == RoleModerator || r == RoleAdmin
}

func (r Role) IsStaff() bool {
	return r == RoleModerator || r == RoleAdmin
}

// Actor is the authenticated identity a request acts as. A nil *Actor is an
// anonymous request.
type Actor struct {
	UserID   string
	Username string
	Role     Role
}

// RoleOf returns the role of a possibly nil actor.
func RoleOf(a *Actor) Role {
	if a == nil {
		return RoleAnonymous
	}
	return a.Role
}

// Owns reports whether the actor is the author identified by authorID.
func (a *Actor) Owns(authorID string) bool {
	return a != nil && a.UserID != "" && a.UserID == authorID
}

// Rule decides whether a method may be performed.
type Rule func(method string, role Role, isOwner bool) bool

// IsSafe reports whether method only reads.
func IsSafe(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// General guards categories, genres and titles: reads for everyone, writes for
// admins.
func General(method string, role Role, _ bool) bool {
	return IsSafe(method) || role == RoleAdmin
}

// AuthorModeratorAdmin guards reviews and comments.
func AuthorModeratorAdmin(method string, role Role, isOwner bool) bool {
	if IsSafe(method) {
		return true
	}
	if !role.IsAuthenticated() {
		return false
	}
	return isOwner || role.IsStaff()
}

// AdminOnly guards user management.
func AdminOnly(_ string, role Role, _ bool) bool {
	return role == RoleAdmin
}

// Authenticated guards the self-service profile.
func Authenticated(_ string, role Role, _ bool) bool {
	return role.IsAuthenticated()
}
