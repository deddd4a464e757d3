package models

import (
	"time"

	"github.com/angelmondragon/streamflix-backend/pkg/enums"
)

// Invitation is a single-use referral code issued by one user for an invitee email.
type Invitation struct {
	ID                   uint                   `gorm:"column:id;primaryKey;autoIncrement"`
	Code                 string                 `gorm:"column:code;not null;uniqueIndex"`
	InviterID            uint                   `gorm:"column:inviter_id;not null;index"`
	InviteeEmail         string                 `gorm:"column:invitee_email;not null;index"`
	Status               enums.InvitationStatus `gorm:"column:status;not null"`
	DiscountPercent      int                    `gorm:"column:discount_percent;not null"`
	DiscountDurationDays int                    `gorm:"column:discount_duration_days;not null"`
	ExpiresAt            time.Time              `gorm:"column:expires_at;not null"`
	RedeemedAt           *time.Time             `gorm:"column:redeemed_at"`
	SubscriptionID       *uint                  `gorm:"column:subscription_id;uniqueIndex"`
	CreatedAt            time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// IsExpired reports whether the invitation is past its window at now.
func (i *Invitation) IsExpired(now time.Time) bool {
	return i.ExpiresAt.Before(now)
}
