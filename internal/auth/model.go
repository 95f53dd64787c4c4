package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                     uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Username               string     `gorm:"uniqueIndex;not null"`
	Email                  string     `gorm:"uniqueIndex;not null"`
	PasswordHash           string     `gorm:"not null"`
	Avatar                 *string    `gorm:"default:null"`
	ResetPasswordToken     *string    `gorm:"index"`
	ResetPasswordExpiresAt *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// PendingAccount is a registration waiting for its activation link to be followed.
type PendingAccount struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Token        string    `gorm:"not null"`
	Avatar       *string   `gorm:"default:null"`
	CreatedAt    time.Time
	ExpiresAt    time.Time `gorm:"index;not null"`
}

func (PendingAccount) TableName() string {
	return "pending_accounts"
}

func (p *PendingAccount) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// toUser carries the stored hash over verbatim.
func (p *PendingAccount) toUser() *User {
	return &User{
		Username:     p.Username,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Avatar:       p.Avatar,
	}
}

// PublicUser is the client-facing view of a User. It never carries the
// password hash or reset token fields.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
