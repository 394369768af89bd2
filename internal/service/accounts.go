package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"corpsite/internal/auth"
	"corpsite/internal/models"
)

// MaxFailedLogins is the failed-attempt ceiling: reaching it deactivates the
// account until an administrator re-enables it.
const MaxFailedLogins = 5

// Accounts owns credential verification and the lockout policy.
type Accounts struct {
	db     *gorm.DB
	hasher auth.Hasher
	lg     *zap.SugaredLogger

	// LookupIP resolves the server's public address during login. Its
	// failure is logged and the field left empty, never fatal.
	LookupIP func(ctx context.Context) (string, error)
}

func NewAccounts(db *gorm.DB, hasher auth.Hasher, lg *zap.SugaredLogger) *Accounts {
	return &Accounts{db: db, hasher: hasher, lg: lg}
}

// Signup creates a fresh active user. A taken username reports
// ErrUsernameTaken without creating a row.
func (a *Accounts) Signup(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u := models.User{
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := a.db.WithContext(ctx).Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return &u, nil
}

// Login verifies credentials and applies the lockout policy. The inactive
// and already-logged-in checks run before any bcrypt work. A failed check
// folds counter increment, timestamp, and possible deactivation into one
// conditional UPDATE so concurrent failures cannot lose an increment.
func (a *Accounts) Login(ctx context.Context, username, password string) (*models.User, error) {
	var u models.User
	if err := a.db.WithContext(ctx).First(&u, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}
	if u.IsLoggedIn {
		return nil, ErrAlreadyLoggedIn
	}

	now := time.Now()
	if err := a.hasher.Check(u.PasswordHash, password); err != nil {
		res := a.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", u.ID).
			Updates(map[string]any{
				"failed_login_attempts": gorm.Expr("failed_login_attempts + 1"),
				"last_login_attempt":    now,
				"is_active":             gorm.Expr("failed_login_attempts + 1 < ?", MaxFailedLogins),
			})
		if res.Error != nil {
			return nil, res.Error
		}
		failed := u.FailedLoginAttempts + 1
		cerr := &CredentialsError{Locked: failed >= MaxFailedLogins}
		if !cerr.Locked {
			cerr.RemainingAttempts = MaxFailedLogins - failed
		}
		a.lg.Infow("login failed", "username", username, "failedAttempts", failed, "locked", cerr.Locked)
		return nil, cerr
	}

	var ip *string
	if a.LookupIP != nil {
		if addr, err := a.LookupIP(ctx); err != nil {
			a.lg.Warnw("public ip lookup failed", "error", err)
		} else {
			ip = &addr
		}
	}

	updates := map[string]any{
		"failed_login_attempts": 0,
		"last_login_attempt":    now,
		"is_logged_in":          true,
	}
	if ip != nil {
		updates["ip_address"] = *ip
	}
	if err := a.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", u.ID).Updates(updates).Error; err != nil {
		return nil, err
	}

	u.FailedLoginAttempts = 0
	u.LastLoginAttempt = &now
	u.IsLoggedIn = true
	if ip != nil {
		u.IPAddress = ip
	}
	return &u, nil
}

// Logout clears the single-session flag. Missing users are not an error: the
// cookie is expired either way.
func (a *Accounts) Logout(ctx context.Context, username string) error {
	return a.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).
		Update("is_logged_in", false).Error
}

// Delete removes a user by id. Already-issued tokens stay valid until expiry.
func (a *Accounts) Delete(ctx context.Context, id uint) error {
	res := a.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
