package service

import (
	"testing"

	"github.com/Invcxze/TaskTracker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdatePermissionsFlags(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	staff := true
	updated, err := svc.UpdatePermissions(user.ID, PermissionUpdate{IsStaff: &staff})
	require.NoError(t, err)
	assert.True(t, updated.IsStaff)
	assert.False(t, updated.IsSuperuser)
}

func TestUpdatePermissionsRolesRequireWorkspace(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	role := createRole(t, db)

	roleIDs := []uint{role.ID}
	_, err := svc.UpdatePermissions(user.ID, PermissionUpdate{RoleIDs: &roleIDs})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workspace_id is required")
}

func TestUpdatePermissionsReplacesRoles(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	ws := createWorkspace(t, db, "Alpha")
	otherWs := createWorkspace(t, db, "Beta")
	roleA := createRole(t, db)
	roleB := createRole(t, db)
	roleC := createRole(t, db)

	// Existing grants: A and B in Alpha, C in Beta.
	for _, r := range []uint{roleA.ID, roleB.ID} {
		require.NoError(t, db.Create(&model.UserWorkspaceRole{UserID: user.ID, WorkspaceID: ws.ID, RoleID: r}).Error)
	}
	require.NoError(t, db.Create(&model.UserWorkspaceRole{UserID: user.ID, WorkspaceID: otherWs.ID, RoleID: roleC.ID}).Error)

	roleIDs := []uint{roleB.ID}
	_, err := svc.UpdatePermissions(user.ID, PermissionUpdate{RoleIDs: &roleIDs, WorkspaceID: &ws.ID})
	require.NoError(t, err)

	var inAlpha []model.UserWorkspaceRole
	require.NoError(t, db.Where("user_id = ? AND workspace_id = ?", user.ID, ws.ID).Find(&inAlpha).Error)
	require.Len(t, inAlpha, 1, "replace, not merge")
	assert.Equal(t, roleB.ID, inAlpha[0].RoleID)

	// Grants in other workspaces are untouched.
	var inBeta int64
	db.Model(&model.UserWorkspaceRole{}).Where("user_id = ? AND workspace_id = ?", user.ID, otherWs.ID).Count(&inBeta)
	assert.EqualValues(t, 1, inBeta)
}

func TestUpdatePermissionsUnknownRoleRollsBack(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	ws := createWorkspace(t, db, "Alpha")
	role := createRole(t, db)
	require.NoError(t, db.Create(&model.UserWorkspaceRole{UserID: user.ID, WorkspaceID: ws.ID, RoleID: role.ID}).Error)

	roleIDs := []uint{role.ID, 9999}
	_, err := svc.UpdatePermissions(user.ID, PermissionUpdate{RoleIDs: &roleIDs, WorkspaceID: &ws.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role not found")

	// The failed replace must not have dropped the original grant.
	var count int64
	db.Model(&model.UserWorkspaceRole{}).Where("user_id = ? AND workspace_id = ?", user.ID, ws.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}
