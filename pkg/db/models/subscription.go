package models

import (
	"time"

	"github.com/angelmondragon/streamflix-backend/pkg/enums"
)

// Subscription is a user's membership on a plan. At most one non-canceled row exists per user.
type Subscription struct {
	ID                 uint                     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID             uint                     `gorm:"column:user_id;not null;index"`
	PlanID             uint                     `gorm:"column:plan_id;not null"`
	Status             enums.SubscriptionStatus `gorm:"column:status;not null"`
	CurrentPeriodStart time.Time                `gorm:"column:current_period_start;not null"`
	CurrentPeriodEnd   time.Time                `gorm:"column:current_period_end;not null"`
	TrialEndsAt        *time.Time               `gorm:"column:trial_ends_at"`
	AutoRenew          bool                     `gorm:"column:auto_renew;not null"`
	DiscountPercent    int                      `gorm:"column:discount_percent;not null"`
	DiscountEndsAt     *time.Time               `gorm:"column:discount_ends_at"`
	InvitedByUserID    *uint                    `gorm:"column:invited_by_user_id"`
	CreatedAt          time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                `gorm:"column:updated_at;autoUpdateTime"`

	Plan       *SubscriptionPlan `gorm:"foreignKey:PlanID"`
	Invitation *Invitation       `gorm:"foreignKey:SubscriptionID"`
}
