package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// GetUserByResetToken only matches tokens whose expiry is after now.
	GetUserByResetToken(ctx context.Context, token string, now time.Time) (*User, error)
	SetResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	// ConsumeResetToken replaces the password hash and clears the reset
	// fields only if token is still the user's current reset token.
	ConsumeResetToken(ctx context.Context, userID uuid.UUID, token, passwordHash string) error

	FindPendingAccount(ctx context.Context, email, username string) (*PendingAccount, error)
	GetPendingAccountByToken(ctx context.Context, email, token string) (*PendingAccount, error)
	// CreatePendingAccount inserts the account unless a user or another
	// pending account already owns its email or username.
	CreatePendingAccount(ctx context.Context, pending *PendingAccount) error
	// PromotePendingAccount creates the user and deletes the pending
	// account in one transaction.
	PromotePendingAccount(ctx context.Context, pending *PendingAccount) (*User, error)
	DeletePendingAccount(ctx context.Context, id uuid.UUID) error
	DeleteExpiredPendingAccounts(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.firstUser(ctx, "id = ?", id)
}

func (r *repository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return r.firstUser(ctx, "username = ?", username)
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.firstUser(ctx, "email = ?", email)
}

func (r *repository) GetUserByResetToken(ctx context.Context, token string, now time.Time) (*User, error) {
	return r.firstUser(ctx, "reset_password_token = ? AND reset_password_expires_at > ?", token, now)
}

func (r *repository) firstUser(ctx context.Context, query string, args ...interface{}) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) SetResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"reset_password_token":      token,
			"reset_password_expires_at": expiresAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) ConsumeResetToken(ctx context.Context, userID uuid.UUID, token, passwordHash string) error {
	result := r.db.WithContext(ctx).Model(&User{}).
		Where("id = ? AND reset_password_token = ?", userID, token).
		Updates(map[string]interface{}{
			"password_hash":             passwordHash,
			"reset_password_token":      nil,
			"reset_password_expires_at": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) FindPendingAccount(ctx context.Context, email, username string) (*PendingAccount, error) {
	var pending PendingAccount
	err := r.db.WithContext(ctx).
		Where("email = ? OR username = ?", email, username).
		First(&pending).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPendingNotFound
		}
		return nil, err
	}
	return &pending, nil
}

func (r *repository) GetPendingAccountByToken(ctx context.Context, email, token string) (*PendingAccount, error) {
	var pending PendingAccount
	err := r.db.WithContext(ctx).
		Where("email = ? AND token = ?", email, token).
		First(&pending).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPendingNotFound
		}
		return nil, err
	}
	return &pending, nil
}

func (r *repository) CreatePendingAccount(ctx context.Context, pending *PendingAccount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var users int64
		if err := tx.Model(&User{}).
			Where("email = ? OR username = ?", pending.Email, pending.Username).
			Count(&users).Error; err != nil {
			return err
		}
		if users > 0 {
			return ErrUserExists
		}

		if err := tx.Create(pending).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrPendingExists
			}
			return err
		}
		return nil
	})
}

func (r *repository) PromotePendingAccount(ctx context.Context, pending *PendingAccount) (*User, error) {
	user := pending.toUser()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUserExists
			}
			return err
		}

		result := tx.Where("id = ?", pending.ID).Delete(&PendingAccount{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Already promoted by a concurrent activation.
			return ErrPendingNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *repository) DeletePendingAccount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&PendingAccount{}).Error
}

func (r *repository) DeleteExpiredPendingAccounts(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&PendingAccount{})
	return result.RowsAffected, result.Error
}
