package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"corpsite/internal/auth"
	"corpsite/internal/models"
)

func setupAccounts(t *testing.T) (*Accounts, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return NewAccounts(db, auth.Hasher{Cost: bcrypt.MinCost}, zap.NewNop().Sugar()), db
}

func TestSignupCreatesFreshUser(t *testing.T) {
	accounts, db := setupAccounts(t)

	u, err := accounts.Signup(context.Background(), "alice", "secret")
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, db.First(&stored, u.ID).Error)
	assert.Equal(t, "alice", stored.Username)
	assert.True(t, stored.IsActive)
	assert.False(t, stored.IsLoggedIn)
	assert.Equal(t, 0, stored.FailedLoginAttempts)
	assert.NotEqual(t, "secret", stored.PasswordHash)
}

func TestSignupDuplicateUsername(t *testing.T) {
	accounts, db := setupAccounts(t)

	_, err := accounts.Signup(context.Background(), "alice", "secret")
	require.NoError(t, err)

	_, err = accounts.Signup(context.Background(), "alice", "other")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestLoginSuccessSetsSessionFlag(t *testing.T) {
	accounts, db := setupAccounts(t)
	_, err := accounts.Signup(context.Background(), "alice", "secret")
	require.NoError(t, err)

	u, err := accounts.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.True(t, u.IsLoggedIn)
	assert.Equal(t, 0, u.FailedLoginAttempts)
	require.NotNil(t, u.LastLoginAttempt)

	var stored models.User
	require.NoError(t, db.First(&stored, "username = ?", "alice").Error)
	assert.True(t, stored.IsLoggedIn)
}

func TestLoginSecondSessionRejected(t *testing.T) {
	accounts, _ := setupAccounts(t)
	_, err := accounts.Signup(context.Background(), "alice", "secret")
	require.NoError(t, err)

	_, err = accounts.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	_, err = accounts.Login(context.Background(), "alice", "secret")
	assert.ErrorIs(t, err, ErrAlreadyLoggedIn)
}

func TestLoginUnknownUser(t *testing.T) {
	accounts, _ := setupAccounts(t)
	_, err := accounts.Login(context.Background(), "nobody", "secret")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLoginWrongPasswordCountsDown(t *testing.T) {
	accounts, db := setupAccounts(t)
	_, err := accounts.Signup(context.Background(), "alice", "secret")
	require.NoError(t, err)

	_, err = accounts.Login(context.Background(), "alice", "wrong")
	var cerr *CredentialsError
	require.ErrorAs(t, err, &cerr)
	assert.False(t, cerr.Locked)
	assert.Equal(t, MaxFailedLogins-1, cerr.RemainingAttempts)

	var stored models.User
	require.NoError(t, db.First(&stored, "username = ?", "alice").Error)
	assert.Equal(t, 1, stored.FailedLoginAttempts)
	assert.True(t, stored.IsActive)
	assert.NotNil(t, stored.LastLoginAttempt)
}

func TestLoginLockoutAfterMaxFailures(t *testing.T) {
	accounts, db := setupAccounts(t)
	_, err := accounts.Signup(context.Background(), "alice", "secret")
	require.NoError(t, err)

	for i := 0; i < MaxFailedLogins; i++ {
		_, err = accounts.Login(context.Background(), "alice", "wrong")
		var cerr *CredentialsError
		require.ErrorAs(t, err, &cerr)
		if i == MaxFailedLogins-1 {
			assert.True(t, cerr.Locked)
		} else {
			assert.Equal(t, MaxFailedLogins-1-i, cerr.RemainingAttempts)
		}
	}

	var stored models.User
	require.NoError(t, db.First(&stored, "username = ?", "alice").Error)
	assert.False(t, stored.IsActive)
	assert.Equal(t, MaxFailedLogins, stored.FailedLoginAttempts)

	// Correct password no longer helps: the disabled check runs before
	// any hash comparison.
	_, err = accounts.Login(context.Background(), "alice", "secret")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestLoginIPLookupFailureIsNonFatal(t *testing.T) {
	accounts, db := setupAccounts(t)
	accounts.LookupIP = func(ctx context.Context) (string, error) {
		return "", errors.New("network down")
	}
	_, err := accounts.Signup(context.Background(), "alice", "secret")
	require.NoError(t, err)

	u, err := accounts.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Nil(t, u.IPAddress)

	var stored models.User
	require.NoError(t, db.First(&stored, "username = ?", "alice").Error)
	assert.Nil(t, stored.IPAddress)
	assert.True(t, stored.IsLoggedIn)
}

func TestLoginIPLookupStored(t *testing.T) {
	accounts, db := setupAccounts(t)
	accounts.LookupIP = func(ctx context.Context) (string, error) {
		return "203.0.113.7", nil
	}
	_, err := accounts.Signup(context.Background(), "alice", "secret")
	require.NoError(t, err)

	_, err = accounts.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, db.First(&stored, "username = ?", "alice").Error)
	require.NotNil(t, stored.IPAddress)
	assert.Equal(t, "203.0.113.7", *stored.IPAddress)
}

func TestLogoutClearsSessionFlag(t *testing.T) {
	accounts, db := setupAccounts(t)
	_, err := accounts.Signup(context.Background(), "alice", "secret")
	require.NoError(t, err)
	_, err = accounts.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	require.NoError(t, accounts.Logout(context.Background(), "alice"))

	var stored models.User
	require.NoError(t, db.First(&stored, "username = ?", "alice").Error)
	assert.False(t, stored.IsLoggedIn)

	// Idempotent for users who were never logged in.
	require.NoError(t, accounts.Logout(context.Background(), "alice"))
}

func TestDeleteUser(t *testing.T) {
	accounts, db := setupAccounts(t)
	u, err := accounts.Signup(context.Background(), "alice", "secret")
	require.NoError(t, err)

	require.NoError(t, accounts.Delete(context.Background(), u.ID))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	assert.ErrorIs(t, accounts.Delete(context.Background(), u.ID), ErrUserNotFound)
}
