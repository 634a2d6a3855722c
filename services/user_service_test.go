package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dependify/DemoeCRM/models"
)

func TestAuthenticate(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newTestConfig())

	require.NoError(t, db.Create(&models.User{
		Name:     "Grace Nwosu",
		Email:    "grace@test.local",
		Role:     models.RoleFollowupWorker,
		IsActive: true,
		Password: "Secret@123",
	}).Error)

	user, err := svc.Authenticate(testCtx(), "grace@test.local", "Secret@123")
	require.NoError(t, err)
	assert.Equal(t, "Grace Nwosu", user.Name)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newTestConfig())

	require.NoError(t, db.Create(&models.User{
		Name:     "Grace Nwosu",
		Email:    "grace@test.local",
		Role:     models.RoleFollowupWorker,
		IsActive: true,
		Password: "Secret@123",
	}).Error)

	_, err := svc.Authenticate(testCtx(), "grace@test.local", "wrong")
	require.ErrorIs(t, err, ErrBadCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newTestConfig())

	_, err := svc.Authenticate(testCtx(), "nobody@test.local", "whatever")
	require.ErrorIs(t, err, ErrBadCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newTestConfig())

	user := &models.User{
		Name:     "Former Worker",
		Email:    "former@test.local",
		Role:     models.RoleFollowupWorker,
		IsActive: true,
		Password: "Secret@123",
	}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err := svc.Authenticate(testCtx(), "former@test.local", "Secret@123")
	require.ErrorIs(t, err, ErrBadCredentials)
}

func TestGetUserByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newTestConfig())

	_, err := svc.GetUserByID(testCtx(), 9999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetAllUsersPaginated(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newTestConfig())

	emails := []string{"a@test.local", "b@test.local", "c@test.local"}
	for _, email := range emails {
		require.NoError(t, db.Create(&models.User{
			Name:     "Worker",
			Email:    email,
			Role:     models.RoleFollowupWorker,
			IsActive: true,
			Password: "Secret@123",
		}).Error)
	}

	users, total, err := svc.GetAllUsers(testCtx(), 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, users, 2)
}
