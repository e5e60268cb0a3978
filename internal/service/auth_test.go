package service

import (
	"testing"

	"github.com/Invcxze/TaskTracker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUpIssuesToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	user, token, err := svc.SignUp("Alice@Example.com", "Alice A", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Len(t, token, 64)

	got, err := svc.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	_, _, err := svc.SignUp("alice@example.com", "Alice A", "supersecret")
	require.NoError(t, err)

	_, _, err = svc.SignUp("ALICE@example.com", "Alice B", "supersecret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40901")
}

func TestLogInReusesToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	_, first, err := svc.SignUp("alice@example.com", "Alice A", "supersecret")
	require.NoError(t, err)

	_, second, err := svc.LogIn("alice@example.com", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var count int64
	db.Model(&model.AuthToken{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestLogInWrongPassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	_, _, err := svc.SignUp("alice@example.com", "Alice A", "supersecret")
	require.NoError(t, err)

	_, _, err = svc.LogIn("alice@example.com", "not-the-password")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40001")
}

func TestLogOutRevokesToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	_, token, err := svc.SignUp("alice@example.com", "Alice A", "supersecret")
	require.NoError(t, err)

	require.NoError(t, svc.LogOut(token))

	_, err = svc.Authenticate(token)
	require.Error(t, err)

	// A second log-out has no token left to revoke.
	err = svc.LogOut(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40301")
}

func TestLogOutWithoutToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	err := svc.LogOut("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40301")
}

func TestLogInDisabledUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	user, _, err := svc.SignUp("alice@example.com", "Alice A", "supersecret")
	require.NoError(t, err)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, _, err = svc.LogIn("alice@example.com", "supersecret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40301")
}
