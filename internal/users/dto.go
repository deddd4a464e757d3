package users

import (
	"time"

	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
)

// UserDTO is the transport shape that omits credentials and tokens.
type UserDTO struct {
	ID                   uint       `json:"id"`
	Name                 string     `json:"name"`
	Email                string     `json:"email"`
	IsActive             bool       `json:"isActive"`
	EmailVerified        bool       `json:"emailVerified"`
	ReferralDiscountUsed bool       `json:"referralDiscountUsed"`
	LastLoginAt          *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Name                       string
	Email                      string
	PasswordHash               string
	EmailVerified              bool
	VerificationToken          *string
	VerificationTokenExpiresAt *time.Time
	IsActive                   *bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:                   u.ID,
		Name:                 u.Name,
		Email:                u.Email,
		IsActive:             u.IsActive,
		EmailVerified:        u.EmailVerified,
		ReferralDiscountUsed: u.ReferralDiscountUsed,
		LastLoginAt:          u.LastLoginAt,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}

	return &models.User{
		Name:                       c.Name,
		Email:                      NormalizeEmail(c.Email),
		PasswordHash:               c.PasswordHash,
		IsActive:                   isActive,
		EmailVerified:              c.EmailVerified,
		VerificationToken:          c.VerificationToken,
		VerificationTokenExpiresAt: c.VerificationTokenExpiresAt,
	}
}
