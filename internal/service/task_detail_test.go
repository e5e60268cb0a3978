package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Invcxze/TaskTracker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskDetailService(db, newTestProjector(t, db), t.TempDir())

	user := createUser(t, db, "user@example.com")
	ws := createWorkspace(t, db, "Alpha")
	grantMembership(t, db, user.ID, ws.ID)
	task := createTask(t, db, ws.ID, "Commented")

	comment, err := svc.CreateComment(user.ID, task.ID, "first", false)
	require.NoError(t, err)
	require.NotNil(t, comment.AuthorID)
	assert.Equal(t, user.ID, *comment.AuthorID)

	// Comment creation leaves an audit record pointing at the comment.
	var logs []model.TaskLog
	require.NoError(t, db.Where("task_id = ?", task.ID).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, model.LogActionComment, logs[0].Action)
	assert.Equal(t, model.RelatedComment, logs[0].RelatedType)
	require.NotNil(t, logs[0].RelatedID)
	assert.Equal(t, comment.ID, *logs[0].RelatedID)

	pinned := true
	_, err = svc.UpdateComment(user.ID, task.ID, comment.ID, nil, &pinned)
	require.NoError(t, err)

	comments, err := svc.ListComments(user.ID, task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.True(t, comments[0].IsPinned)

	require.NoError(t, svc.DeleteComment(user.ID, task.ID, comment.ID))
	comments, err = svc.ListComments(user.ID, task.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCommentsHiddenTaskIsNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskDetailService(db, newTestProjector(t, db), t.TempDir())

	stranger := createUser(t, db, "stranger@example.com")
	ws := createWorkspace(t, db, "Alpha")
	task := createTask(t, db, ws.ID, "Hidden")

	_, err := svc.ListComments(stranger.ID, task.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40402")
}

func TestChecklistCompletionStamping(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskDetailService(db, newTestProjector(t, db), t.TempDir())

	user := createUser(t, db, "user@example.com")
	ws := createWorkspace(t, db, "Alpha")
	grantMembership(t, db, user.ID, ws.ID)
	task := createTask(t, db, ws.ID, "Checked")

	item, err := svc.CreateChecklistItem(user.ID, task.ID, "step one", 1)
	require.NoError(t, err)
	assert.Nil(t, item.CompletedAt)

	done := true
	item, err = svc.UpdateChecklistItem(user.ID, task.ID, item.ID, nil, &done, nil)
	require.NoError(t, err)
	require.NotNil(t, item.CompletedAt)
	stamped := *item.CompletedAt

	// Re-completing does not move the timestamp.
	item, err = svc.UpdateChecklistItem(user.ID, task.ID, item.ID, nil, &done, nil)
	require.NoError(t, err)
	require.NotNil(t, item.CompletedAt)
	assert.Equal(t, stamped.UTC(), item.CompletedAt.UTC())

	// Unchecking clears it.
	undone := false
	item, err = svc.UpdateChecklistItem(user.ID, task.ID, item.ID, nil, &undone, nil)
	require.NoError(t, err)
	assert.Nil(t, item.CompletedAt)
}

func TestChecklistOrdering(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskDetailService(db, newTestProjector(t, db), t.TempDir())

	user := createUser(t, db, "user@example.com")
	ws := createWorkspace(t, db, "Alpha")
	grantMembership(t, db, user.ID, ws.ID)
	task := createTask(t, db, ws.ID, "Ordered")

	_, err := svc.CreateChecklistItem(user.ID, task.ID, "second", 2)
	require.NoError(t, err)
	_, err = svc.CreateChecklistItem(user.ID, task.ID, "first", 1)
	require.NoError(t, err)

	items, err := svc.ListChecklist(user.ID, task.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].Text)
	assert.Equal(t, "second", items[1].Text)
}

func TestAttachmentUploadAndDelete(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()
	svc := NewTaskDetailService(db, newTestProjector(t, db), dir)

	user := createUser(t, db, "user@example.com")
	ws := createWorkspace(t, db, "Alpha")
	grantMembership(t, db, user.ID, ws.ID)
	task := createTask(t, db, ws.ID, "Attached")

	content := "hello attachment"
	attachment, err := svc.CreateAttachment(user.ID, task.ID, strings.NewReader(content), "report.txt", "", int64(len(content)))
	require.NoError(t, err)
	assert.Equal(t, "report.txt", attachment.FileName)
	assert.EqualValues(t, len(content), attachment.FileSize)
	assert.Equal(t, ".txt", filepath.Ext(attachment.FilePath))
	assert.NotContains(t, attachment.FilePath, "report", "stored name must not reuse the original")

	data, err := os.ReadFile(attachment.FilePath)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))

	// Upload leaves an audit record.
	var logs []model.TaskLog
	require.NoError(t, db.Where("task_id = ? AND action = ?", task.ID, model.LogActionAttachment).Find(&logs).Error)
	require.Len(t, logs, 1)

	require.NoError(t, svc.DeleteAttachment(user.ID, task.ID, attachment.ID))
	_, err = os.Stat(attachment.FilePath)
	assert.True(t, os.IsNotExist(err))
}

func TestAttachmentExplicitName(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskDetailService(db, newTestProjector(t, db), t.TempDir())

	user := createUser(t, db, "user@example.com")
	ws := createWorkspace(t, db, "Alpha")
	grantMembership(t, db, user.ID, ws.ID)
	task := createTask(t, db, ws.ID, "Attached")

	attachment, err := svc.CreateAttachment(user.ID, task.ID, strings.NewReader("x"), "raw.bin", "Quarterly report", 0)
	require.NoError(t, err)
	assert.Equal(t, "Quarterly report", attachment.FileName)
	assert.EqualValues(t, 1, attachment.FileSize, "size falls back to bytes written")
}

func TestTaskLogsListNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskDetailService(db, newTestProjector(t, db), t.TempDir())

	user := createUser(t, db, "user@example.com")
	ws := createWorkspace(t, db, "Alpha")
	grantMembership(t, db, user.ID, ws.ID)
	task := createTask(t, db, ws.ID, "Logged")

	first, err := svc.CreateComment(user.ID, task.ID, "one", false)
	require.NoError(t, err)
	second, err := svc.CreateComment(user.ID, task.ID, "two", false)
	require.NoError(t, err)

	logs, err := svc.ListLogs(user.ID, task.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, second.ID, *logs[0].RelatedID)
	assert.Equal(t, first.ID, *logs[1].RelatedID)

	related, err := svc.ResolveRelated(&logs[0])
	require.NoError(t, err)
	comment, ok := related.(*model.TaskComment)
	require.True(t, ok)
	assert.Equal(t, "two", comment.Content)
}
