package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storekit/admission/internal/domain/models"
	"github.com/storekit/admission/internal/domain/service"
	"github.com/storekit/admission/pkg/constants"
)

func userWith(role constants.Role, active bool) models.User {
	return models.User{
		ID:       "user-1",
		Email:    "user-1@example.com",
		Role:     role,
		IsActive: active,
	}
}

func TestHasRole_Hierarchy(t *testing.T) {
	roles := []constants.Role{constants.RoleCustomer, constants.RoleSupport, constants.RoleAdmin}
	rank := map[constants.Role]int{
		constants.RoleCustomer: 0,
		constants.RoleSupport:  1,
		constants.RoleAdmin:    2,
	}

	// Higher or equal roles satisfy lower requirements, never the reverse.
	for _, held := range roles {
		for _, required := range roles {
			want := rank[held] >= rank[required]
			got := service.HasRole(userWith(held, true), required)
			assert.Equal(t, want, got, "held=%s required=%s", held, required)
		}
	}
}

func TestHasRole_InactivePrincipal(t *testing.T) {
	// An inactive principal satisfies no role requirement, including the
	// exact match.
	for _, role := range []constants.Role{constants.RoleCustomer, constants.RoleSupport, constants.RoleAdmin} {
		assert.False(t, service.HasRole(userWith(role, false), role))
		assert.False(t, service.HasRole(userWith(role, false), constants.RoleCustomer))
	}
}

func TestHasRole_UnknownRoles(t *testing.T) {
	assert.False(t, service.HasRole(userWith("SUPERUSER", true), constants.RoleCustomer))
	assert.False(t, service.HasRole(userWith(constants.RoleAdmin, true), "SUPERUSER"))
}

func TestPermissionSets_MonotonicUnderHierarchy(t *testing.T) {
	// The table is declared per role; the superset relation is an invariant
	// that must hold by construction.
	supersets := [][2]constants.Role{
		{constants.RoleSupport, constants.RoleCustomer},
		{constants.RoleAdmin, constants.RoleSupport},
	}
	for _, pair := range supersets {
		higher, lower := pair[0], pair[1]
		assert.NotEmpty(t, models.PermissionsFor(lower))
		for _, perm := range models.PermissionsFor(lower) {
			assert.True(t, models.RoleHolds(higher, perm),
				"%s should hold %s held by %s", higher, perm, lower)
		}
	}
}

func TestHasPermission(t *testing.T) {
	assert.True(t, service.HasPermission(constants.RoleCustomer, models.PermOrderReadOwn))
	assert.False(t, service.HasPermission(constants.RoleCustomer, models.PermOrderReadAll))
	assert.True(t, service.HasPermission(constants.RoleSupport, models.PermOrderReadAll))
	assert.False(t, service.HasPermission(constants.RoleSupport, models.PermUserWrite))
	assert.True(t, service.HasPermission(constants.RoleAdmin, models.PermUserWrite))
}

func TestHasAnyAndAllPermissions(t *testing.T) {
	assert.True(t, service.HasAnyPermission(constants.RoleCustomer,
		models.PermOrderReadAll, models.PermOrderReadOwn))
	assert.False(t, service.HasAnyPermission(constants.RoleCustomer,
		models.PermOrderReadAll, models.PermUserWrite))

	assert.True(t, service.HasAllPermissions(constants.RoleAdmin,
		models.PermOrderReadAll, models.PermUserWrite, models.PermAuditRead))
	assert.False(t, service.HasAllPermissions(constants.RoleSupport,
		models.PermOrderReadAll, models.PermUserWrite))
}

func TestCanManageRole(t *testing.T) {
	// Only ADMIN may assign roles at all, ADMIN assignments included.
	assert.True(t, service.CanManageRole(constants.RoleAdmin, constants.RoleAdmin))
	assert.True(t, service.CanManageRole(constants.RoleAdmin, constants.RoleSupport))
	assert.True(t, service.CanManageRole(constants.RoleAdmin, constants.RoleCustomer))

	assert.False(t, service.CanManageRole(constants.RoleSupport, constants.RoleCustomer))
	assert.False(t, service.CanManageRole(constants.RoleCustomer, constants.RoleCustomer))
	assert.False(t, service.CanManageRole(constants.RoleAdmin, "SUPERUSER"))
}

func TestValidateResourceAccess(t *testing.T) {
	t.Run("own-scoped permission requires ownership", func(t *testing.T) {
		decision := service.ValidateResourceAccess(
			constants.RoleCustomer, "user-1", "order-9", "user-1", models.PermOrderReadOwn)
		assert.True(t, decision.Allowed)

		decision = service.ValidateResourceAccess(
			constants.RoleCustomer, "user-1", "order-9", "user-2", models.PermOrderReadOwn)
		assert.False(t, decision.Allowed)
		assert.NotEmpty(t, decision.Reason)
	})

	t.Run("all-scoped permission bypasses ownership", func(t *testing.T) {
		decision := service.ValidateResourceAccess(
			constants.RoleSupport, "agent-1", "order-9", "user-2", models.PermOrderReadAll)
		assert.True(t, decision.Allowed)
	})

	t.Run("missing permission denies regardless of ownership", func(t *testing.T) {
		decision := service.ValidateResourceAccess(
			constants.RoleCustomer, "user-1", "order-9", "user-1", models.PermOrderReadAll)
		assert.False(t, decision.Allowed)
	})

	t.Run("decision detail feeds an audit record", func(t *testing.T) {
		decision := service.ValidateResourceAccess(
			constants.RoleCustomer, "user-1", "order-9", "user-2", models.PermOrderWriteOwn)
		record := service.AuditRecordFor(decision, "order.update")

		assert.Equal(t, "user-1", record.UserID)
		assert.Equal(t, constants.RoleCustomer, record.Role)
		assert.Equal(t, models.PermOrderWriteOwn, record.Permission)
		assert.Equal(t, "order-9", record.ResourceID)
		assert.Equal(t, "order.update", record.Action)
		assert.False(t, record.Allowed)
		assert.NotEmpty(t, record.Reason)
	})
}
