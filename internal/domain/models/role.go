package models

import "github.com/storekit/admission/pkg/constants"

// Permission is a capability tag. The scope suffix is load-bearing:
// ":own" permissions additionally require resource ownership, ":all"
// permissions bypass the ownership check.
type Permission string

const (
	PermOrderReadOwn   Permission = "order:read:own"
	PermOrderReadAll   Permission = "order:read:all"
	PermOrderWriteOwn  Permission = "order:write:own"
	PermOrderWriteAll  Permission = "order:write:all"
	PermProductRead    Permission = "product:read"
	PermProductWrite   Permission = "product:write"
	PermSubsReadOwn    Permission = "subscription:read:own"
	PermSubsReadAll    Permission = "subscription:read:all"
	PermSubsWriteOwn   Permission = "subscription:write:own"
	PermSubsWriteAll   Permission = "subscription:write:all"
	PermProfileReadOwn Permission = "profile:read:own"
	PermProfileWrite   Permission = "profile:write:own"
	PermUserRead       Permission = "user:read"
	PermUserWrite      Permission = "user:write"
	PermAuditRead      Permission = "audit:read"
)

// rolePermissions is the single source of truth mapping each role to its
// permission set. Each role's set is independently declared; the superset
// relation ADMIN ⊇ SUPPORT ⊇ CUSTOMER is maintained by construction and
// checked in tests, not derived at runtime.
var rolePermissions = map[constants.Role][]Permission{
	constants.RoleCustomer: {
		PermOrderReadOwn,
		PermOrderWriteOwn,
		PermProductRead,
		PermSubsReadOwn,
		PermSubsWriteOwn,
		PermProfileReadOwn,
		PermProfileWrite,
	},
	constants.RoleSupport: {
		PermOrderReadOwn,
		PermOrderWriteOwn,
		PermOrderReadAll,
		PermProductRead,
		PermSubsReadOwn,
		PermSubsWriteOwn,
		PermSubsReadAll,
		PermProfileReadOwn,
		PermProfileWrite,
		PermUserRead,
	},
	constants.RoleAdmin: {
		PermOrderReadOwn,
		PermOrderWriteOwn,
		PermOrderReadAll,
		PermOrderWriteAll,
		PermProductRead,
		PermProductWrite,
		PermSubsReadOwn,
		PermSubsWriteOwn,
		PermSubsReadAll,
		PermSubsWriteAll,
		PermProfileReadOwn,
		PermProfileWrite,
		PermUserRead,
		PermUserWrite,
		PermAuditRead,
	},
}

// PermissionsFor returns the permission set declared for the role.
// Unknown roles map to the empty set.
func PermissionsFor(role constants.Role) []Permission {
	return rolePermissions[role]
}

// RoleHolds reports whether the role's declared set contains the permission.
func RoleHolds(role constants.Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}
