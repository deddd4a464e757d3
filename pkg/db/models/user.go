package models

import "time"

// User represents the canonical identity entity.
type User struct {
	ID                          uint       `gorm:"column:id;primaryKey;autoIncrement"`
	Name                        string     `gorm:"column:name;not null"`
	Email                       string     `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash                string     `gorm:"column:password_hash;not null"`
	IsActive                    bool       `gorm:"column:is_active;not null"`
	EmailVerified               bool       `gorm:"column:email_verified;not null"`
	VerificationToken           *string    `gorm:"column:verification_token;uniqueIndex"`
	VerificationTokenExpiresAt  *time.Time `gorm:"column:verification_token_expires_at"`
	FailedLoginAttempts         int        `gorm:"column:failed_login_attempts;not null"`
	AccountLockedUntil          *time.Time `gorm:"column:account_locked_until"`
	PasswordResetToken          *string    `gorm:"column:password_reset_token;uniqueIndex"`
	PasswordResetTokenExpiresAt *time.Time `gorm:"column:password_reset_token_expires_at"`
	ReferralDiscountUsed        bool       `gorm:"column:referral_discount_used;not null"`
	LastLoginAt                 *time.Time `gorm:"column:last_login_at"`
	CreatedAt                   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// IsLocked reports whether a lockout window is still open at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.AccountLockedUntil != nil && u.AccountLockedUntil.After(now)
}
