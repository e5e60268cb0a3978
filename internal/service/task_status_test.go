package service

import (
	"testing"

	"github.com/Invcxze/TaskTracker/internal/access"
	"github.com/Invcxze/TaskTracker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCreateDeniedPersistsNothing(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskStatusService(db, access.NewEvaluator(db), newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	other := createWorkspace(t, db, "Other")

	_, err := svc.Create(user.ID, TaskStatusInput{Name: "Open", WorkspaceID: other.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40301")

	var count int64
	db.Model(&model.TaskStatus{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestStatusNameUniquePerWorkspace(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskStatusService(db, access.NewEvaluator(db), newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	wsA := createWorkspace(t, db, "Alpha")
	wsB := createWorkspace(t, db, "Beta")
	grantMembership(t, db, user.ID, wsA.ID)
	grantMembership(t, db, user.ID, wsB.ID)

	_, err := svc.Create(user.ID, TaskStatusInput{Name: "Open", WorkspaceID: wsA.ID})
	require.NoError(t, err)

	_, err = svc.Create(user.ID, TaskStatusInput{Name: "Open", WorkspaceID: wsA.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40905")

	// Same name in another workspace is allowed.
	_, err = svc.Create(user.ID, TaskStatusInput{Name: "Open", WorkspaceID: wsB.ID})
	require.NoError(t, err)
}

func TestStatusListOrderedByOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskStatusService(db, access.NewEvaluator(db), newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	ws := createWorkspace(t, db, "Alpha")
	grantMembership(t, db, user.ID, ws.ID)

	_, err := svc.Create(user.ID, TaskStatusInput{Name: "Done", WorkspaceID: ws.ID, Order: 2, IsClosed: true})
	require.NoError(t, err)
	_, err = svc.Create(user.ID, TaskStatusInput{Name: "Open", WorkspaceID: ws.ID, Order: 1})
	require.NoError(t, err)

	statuses, err := svc.List(user.ID, &ws.ID)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, "Open", statuses[0].Name)
	assert.Equal(t, "Done", statuses[1].Name)
}

func TestLabelCreateDeniedPersistsNothing(t *testing.T) {
	db := newTestDB(t)
	svc := NewLabelService(db, access.NewEvaluator(db), newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	other := createWorkspace(t, db, "Other")

	_, err := svc.Create(user.ID, other.ID, "bug", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40301")

	var count int64
	db.Model(&model.Label{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestLabelNameUniquePerWorkspace(t *testing.T) {
	db := newTestDB(t)
	svc := NewLabelService(db, access.NewEvaluator(db), newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	ws := createWorkspace(t, db, "Alpha")
	grantMembership(t, db, user.ID, ws.ID)

	_, err := svc.Create(user.ID, ws.ID, "bug", "#ff0000")
	require.NoError(t, err)

	_, err = svc.Create(user.ID, ws.ID, "bug", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40904")
}

func TestLabelUpdateChecksCurrentWorkspace(t *testing.T) {
	db := newTestDB(t)
	svc := NewLabelService(db, access.NewEvaluator(db), newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	ws := createWorkspace(t, db, "Alpha")
	member := grantMembership(t, db, user.ID, ws.ID)

	label, err := svc.Create(user.ID, ws.ID, "bug", "")
	require.NoError(t, err)

	// Losing membership makes the label invisible again.
	require.NoError(t, db.Delete(member).Error)
	name := "defect"
	_, err = svc.Update(user.ID, label.ID, &name, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40401")
}
