package core

import "github.com/google/uuid"

// Roles
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

// AllRoles lists the roles a user may be given.
var AllRoles = []string{RoleUser, RoleAdmin}

var (
	errNotOwner  = "only the owner or an admin can modify this resource"
	errNotAdmin  = "only an admin can perform this action"
	errNoCaller  = "authentication required"
	errBadCaller = "invalid caller identity"
)

func HasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func IsAdmin(roles []string) bool {
	return HasRole(roles, RoleAdmin)
}

// CheckOwnerOrAdmin fails with an *AuthorizationError unless roles contain RoleAdmin or userID is ownerID.
func CheckOwnerOrAdmin(roles []string, userID, ownerID uuid.UUID) error {
	if IsAdmin(roles) {
		return nil
	}
	if userID == uuid.Nil {
		return NewAuthorizationError(errNoCaller)
	}
	if ownerID == uuid.Nil {
		return NewAuthorizationError(errBadCaller)
	}
	if userID != ownerID {
		return NewAuthorizationError(errNotOwner)
	}
	return nil
}

// CheckAdmin fails with an *AuthorizationError unless roles contain RoleAdmin.
func CheckAdmin(roles []string) error {
	if !IsAdmin(roles) {
		return NewAuthorizationError(errNotAdmin)
	}
	return nil
}
