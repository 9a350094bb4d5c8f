package service

import (
	"fmt"
	"strings"

	"github.com/storekit/admission/internal/domain/models"
	"github.com/storekit/admission/pkg/constants"
)

// The RBAC resolver is a set of pure functions over the declared permission
// table in internal/domain/models. No decision here performs I/O; callers
// build audit records from the returned detail.

// HasRole reports whether the user satisfies the required role. An inactive
// principal satisfies no role requirement, including an exact match.
//
// The hierarchy is re-derived from the permission table rather than compared
// as strings: a role satisfies a requirement when its declared permission
// set is a superset of the required role's set. Adding a role therefore only
// requires updating the table.
func HasRole(user models.User, required constants.Role) bool {
	if !user.IsActive {
		return false
	}
	if !required.Valid() || !user.Role.Valid() {
		return false
	}
	for _, perm := range models.PermissionsFor(required) {
		if !models.RoleHolds(user.Role, perm) {
			return false
		}
	}
	return true
}

// HasPermission reports whether the role's declared set contains the permission.
func HasPermission(role constants.Role, perm models.Permission) bool {
	return models.RoleHolds(role, perm)
}

// HasAnyPermission reports whether the role holds at least one of the permissions.
func HasAnyPermission(role constants.Role, perms ...models.Permission) bool {
	for _, perm := range perms {
		if models.RoleHolds(role, perm) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the role holds every one of the permissions.
func HasAllPermissions(role constants.Role, perms ...models.Permission) bool {
	for _, perm := range perms {
		if !models.RoleHolds(role, perm) {
			return false
		}
	}
	return true
}

// CanManageRole reports whether the assigner may assign the target role.
// Only ADMIN may mutate role assignments at all; this is a conservative,
// escalation-resistant default.
func CanManageRole(assigner constants.Role, target constants.Role) bool {
	if !target.Valid() {
		return false
	}
	return assigner == constants.RoleAdmin
}

// ResourceAccessDecision is the structured outcome of a resource access
// check, carrying enough detail for the caller to build an audit record.
type ResourceAccessDecision struct {
	Allowed    bool
	Role       constants.Role
	UserID     string
	Permission models.Permission
	ResourceID string
	Reason     string
}

// ValidateResourceAccess composes a permission check with an ownership
// predicate. Permissions scoped ":all" bypass ownership; permissions scoped
// ":own" additionally require the resource's owner id to equal the caller's
// id. Failure of either check is a denial, never a partial grant.
func ValidateResourceAccess(
	role constants.Role,
	userID string,
	resourceID string,
	resourceOwnerID string,
	perm models.Permission,
) ResourceAccessDecision {
	decision := ResourceAccessDecision{
		Role:       role,
		UserID:     userID,
		Permission: perm,
		ResourceID: resourceID,
	}

	if !models.RoleHolds(role, perm) {
		decision.Reason = fmt.Sprintf("role %s does not hold %s", role, perm)
		return decision
	}

	if strings.HasSuffix(string(perm), ":own") && resourceOwnerID != userID {
		decision.Reason = "resource is not owned by the caller"
		return decision
	}

	decision.Allowed = true
	return decision
}

// AuditRecordFor converts a resource access decision into an audit record.
func AuditRecordFor(decision ResourceAccessDecision, action string) models.AccessAuditRecord {
	return models.AccessAuditRecord{
		UserID:     decision.UserID,
		Role:       decision.Role,
		Permission: decision.Permission,
		ResourceID: decision.ResourceID,
		Action:     action,
		Allowed:    decision.Allowed,
		Reason:     decision.Reason,
	}
}
