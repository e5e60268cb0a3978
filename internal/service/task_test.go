package service

import (
	"testing"

	"github.com/Invcxze/TaskTracker/internal/access"
	"github.com/Invcxze/TaskTracker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskCreateDeniedOutsideWorkspace(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db, access.NewEvaluator(db), newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	mine := createWorkspace(t, db, "Mine")
	other := createWorkspace(t, db, "Other")
	grantMembership(t, db, user.ID, mine.ID)

	_, err := svc.Create(user.ID, TaskInput{Title: "Sneaky", WorkspaceID: other.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40301")

	var count int64
	db.Model(&model.Task{}).Count(&count)
	assert.EqualValues(t, 0, count, "denied create must persist nothing")
}

func TestTaskCreateDefaultsPriority(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db, access.NewEvaluator(db), newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	ws := createWorkspace(t, db, "Alpha")
	grantMembership(t, db, user.ID, ws.ID)

	task, err := svc.Create(user.ID, TaskInput{Title: "Plain", WorkspaceID: ws.ID})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	require.NotNil(t, task.CreatorID)
	assert.Equal(t, user.ID, *task.CreatorID)

	_, err = svc.Create(user.ID, TaskInput{Title: "Bad", WorkspaceID: ws.ID, Priority: "urgent"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40001")
}

func TestTaskCreateRejectsCrossWorkspaceRefs(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db, access.NewEvaluator(db), newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	ws := createWorkspace(t, db, "Alpha")
	other := createWorkspace(t, db, "Beta")
	grantMembership(t, db, user.ID, ws.ID)
	grantMembership(t, db, user.ID, other.ID)

	foreignStatus := &model.TaskStatus{Name: "Open", WorkspaceID: other.ID}
	require.NoError(t, db.Create(foreignStatus).Error)
	foreignParent := createTask(t, db, other.ID, "Parent")
	foreignLabel := &model.Label{Name: "bug", WorkspaceID: other.ID}
	require.NoError(t, db.Create(foreignLabel).Error)

	_, err := svc.Create(user.ID, TaskInput{Title: "T", WorkspaceID: ws.ID, StatusID: &foreignStatus.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different workspace")

	_, err = svc.Create(user.ID, TaskInput{Title: "T", WorkspaceID: ws.ID, ParentTaskID: &foreignParent.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different workspace")

	_, err = svc.Create(user.ID, TaskInput{Title: "T", WorkspaceID: ws.ID, LabelIDs: []uint{foreignLabel.ID}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40001")
}

func TestTaskGetOutsideScopeIsNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db, access.NewEvaluator(db), newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	other := createWorkspace(t, db, "Other")
	task := createTask(t, db, other.ID, "Hidden")

	_, err := svc.GetByID(user.ID, task.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40402")
}

func TestTaskUpdateWritesLog(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db, access.NewEvaluator(db), newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	ws := createWorkspace(t, db, "Alpha")
	grantMembership(t, db, user.ID, ws.ID)

	task, err := svc.Create(user.ID, TaskInput{Title: "Before", WorkspaceID: ws.ID})
	require.NoError(t, err)

	title := "After"
	_, err = svc.Update(user.ID, task.ID, TaskUpdate{Title: &title})
	require.NoError(t, err)

	var logs []model.TaskLog
	require.NoError(t, db.Where("task_id = ?", task.ID).Order("id").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Equal(t, model.LogActionCreate, logs[0].Action)
	assert.Equal(t, model.LogActionUpdate, logs[1].Action)
	assert.Equal(t, "After", logs[1].Changes["title"])
}

func TestWatcherAddIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db, access.NewEvaluator(db), newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	watcher := createUser(t, db, "watcher@example.com")
	ws := createWorkspace(t, db, "Alpha")
	grantMembership(t, db, user.ID, ws.ID)
	task := createTask(t, db, ws.ID, "Watched")

	require.NoError(t, svc.AddWatcher(user.ID, task.ID, watcher.ID))
	require.NoError(t, svc.AddWatcher(user.ID, task.ID, watcher.ID))

	var count int64
	db.Table("task_watchers").Where("task_id = ?", task.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestWatcherRemoveAbsentIsNoop(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db, access.NewEvaluator(db), newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	stranger := createUser(t, db, "stranger@example.com")
	ws := createWorkspace(t, db, "Alpha")
	grantMembership(t, db, user.ID, ws.ID)
	task := createTask(t, db, ws.ID, "Watched")

	require.NoError(t, svc.RemoveWatcher(user.ID, task.ID, stranger.ID))
}

func TestTaskListFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db, access.NewEvaluator(db), newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	ws := createWorkspace(t, db, "Alpha")
	grantMembership(t, db, user.ID, ws.ID)

	high, err := svc.Create(user.ID, TaskInput{Title: "High", WorkspaceID: ws.ID, Priority: model.PriorityHigh})
	require.NoError(t, err)
	_, err = svc.Create(user.ID, TaskInput{Title: "Low", WorkspaceID: ws.ID, Priority: model.PriorityLow})
	require.NoError(t, err)

	tasks, err := svc.List(user.ID, TaskListFilters{Priority: model.PriorityHigh})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, high.ID, tasks[0].ID)
}

func TestTaskListPagination(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db, access.NewEvaluator(db), newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	ws := createWorkspace(t, db, "Alpha")
	grantMembership(t, db, user.ID, ws.ID)

	a := createTask(t, db, ws.ID, "A")
	b := createTask(t, db, ws.ID, "B")
	c := createTask(t, db, ws.ID, "C")

	first, err := svc.List(user.ID, TaskListFilters{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, a.ID, first[0].ID)
	assert.Equal(t, b.ID, first[1].ID)

	second, err := svc.List(user.ID, TaskListFilters{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, c.ID, second[0].ID)

	// PageSize zero keeps the list unpaginated.
	all, err := svc.List(user.ID, TaskListFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFetchByIDsPreservesOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db, access.NewEvaluator(db), newTestProjector(t, db))

	user := createUser(t, db, "user@example.com")
	ws := createWorkspace(t, db, "Alpha")
	other := createWorkspace(t, db, "Other")
	grantMembership(t, db, user.ID, ws.ID)

	a := createTask(t, db, ws.ID, "A")
	b := createTask(t, db, ws.ID, "B")
	c := createTask(t, db, ws.ID, "C")
	hidden := createTask(t, db, other.ID, "Hidden")

	tasks, err := svc.FetchByIDs(user.ID, []uint{c.ID, hidden.ID, a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []uint{c.ID, a.ID, b.ID}, []uint{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}
