package service

import (
	"testing"

	"github.com/Invcxze/TaskTracker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceCreateDoesNotGrantMembership(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkspaceService(db, newTestProjector(t, db))

	creator := createUser(t, db, "creator@example.com")
	ws, err := svc.Create("Alpha", "", creator.ID)
	require.NoError(t, err)
	require.NotNil(t, ws.CreatedByID)
	assert.Equal(t, creator.ID, *ws.CreatedByID)

	// Without an explicit role grant the creator cannot even see it.
	_, err = svc.GetByID(creator.ID, ws.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40401")

	list, err := svc.List(creator.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWorkspaceListScopedToMembers(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkspaceService(db, newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	mine := createWorkspace(t, db, "Mine")
	createWorkspace(t, db, "Other")
	grantMembership(t, db, user.ID, mine.ID)

	list, err := svc.List(user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)
}

func TestAddMemberDuplicateTriple(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkspaceService(db, newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	ws := createWorkspace(t, db, "Alpha")
	roleA := createRole(t, db)
	roleB := createRole(t, db)

	_, err := svc.AddMember(ws.ID, user.ID, roleA.ID)
	require.NoError(t, err)

	// Same role again conflicts.
	_, err = svc.AddMember(ws.ID, user.ID, roleA.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40902")

	// A second distinct role is fine.
	_, err = svc.AddMember(ws.ID, user.ID, roleB.ID)
	require.NoError(t, err)
}

func TestUpdateMemberRoleConflict(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkspaceService(db, newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	ws := createWorkspace(t, db, "Alpha")
	roleA := createRole(t, db)
	roleB := createRole(t, db)

	first, err := svc.AddMember(ws.ID, user.ID, roleA.ID)
	require.NoError(t, err)
	second, err := svc.AddMember(ws.ID, user.ID, roleB.ID)
	require.NoError(t, err)

	// Moving the second row onto the first row's role collides.
	_, err = svc.UpdateMember(ws.ID, second.ID, roleA.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40902")

	roleC := createRole(t, db)
	updated, err := svc.UpdateMember(ws.ID, first.ID, roleC.ID)
	require.NoError(t, err)
	assert.Equal(t, roleC.ID, updated.RoleID)
}

func TestRemoveMember(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkspaceService(db, newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	ws := createWorkspace(t, db, "Alpha")
	role := createRole(t, db)

	member, err := svc.AddMember(ws.ID, user.ID, role.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveMember(ws.ID, member.ID))

	err = svc.RemoveMember(ws.ID, member.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40401")
}

func TestWorkspaceDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkspaceService(db, newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	ws := createWorkspace(t, db, "Alpha")
	grantMembership(t, db, user.ID, ws.ID)
	createTask(t, db, ws.ID, "Doomed")

	require.NoError(t, svc.Delete(user.ID, ws.ID))

	var tasks int64
	db.Model(&model.Task{}).Where("workspace_id = ?", ws.ID).Count(&tasks)
	assert.EqualValues(t, 0, tasks)
	var members int64
	db.Model(&model.UserWorkspaceRole{}).Where("workspace_id = ?", ws.ID).Count(&members)
	assert.EqualValues(t, 0, members)
}
