package service

import (
	"fmt"
	"io"
	"testing"

	"github.com/Invcxze/TaskTracker/internal/model"
	"github.com/Invcxze/TaskTracker/internal/search"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the in-memory database alive and shared.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.AuthToken{},
		&model.Role{},
		&model.Permission{},
		&model.RolePermission{},
		&model.Workspace{},
		&model.UserWorkspaceRole{},
		&model.TaskType{},
		&model.TaskStatus{},
		&model.Label{},
		&model.Task{},
		&model.TaskDependency{},
		&model.TaskComment{},
		&model.TaskAttachment{},
		&model.TaskChecklistItem{},
		&model.TaskLog{},
	))
	return db
}

func newTestIndex(t *testing.T) search.Index {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return search.NewRedisIndex(rdb)
}

// newTestProjector builds a projector that buffers notifications without a
// running worker; tests that care about index state call Apply directly.
func newTestProjector(t *testing.T, db *gorm.DB) *search.Projector {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return search.NewProjector(db, newTestIndex(t), log)
}

var fixtureSeq int

func createUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	u := &model.User{
		Email:        email,
		FIO:          "Test User",
		PasswordHash: "x",
		IsActive:     true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createWorkspace(t *testing.T, db *gorm.DB, name string) *model.Workspace {
	t.Helper()
	ws := &model.Workspace{Name: name}
	require.NoError(t, db.Create(ws).Error)
	return ws
}

func createRole(t *testing.T, db *gorm.DB) *model.Role {
	t.Helper()
	fixtureSeq++
	r := &model.Role{Name: fmt.Sprintf("role-%d", fixtureSeq)}
	require.NoError(t, db.Create(r).Error)
	return r
}

func grantMembership(t *testing.T, db *gorm.DB, userID, workspaceID uint) *model.UserWorkspaceRole {
	t.Helper()
	role := createRole(t, db)
	uwr := &model.UserWorkspaceRole{UserID: userID, WorkspaceID: workspaceID, RoleID: role.ID}
	require.NoError(t, db.Create(uwr).Error)
	return uwr
}

func createTask(t *testing.T, db *gorm.DB, workspaceID uint, title string) *model.Task {
	t.Helper()
	task := &model.Task{Title: title, WorkspaceID: workspaceID, Priority: model.PriorityMedium}
	require.NoError(t, db.Create(task).Error)
	return task
}
