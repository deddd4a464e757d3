package models

import (
	"time"

	"github.com/angelmondragon/streamflix-backend/pkg/enums"
)

// SubscriptionPlan is immutable catalog data seeded by cmd/seed.
type SubscriptionPlan struct {
	ID                uint              `gorm:"column:id;primaryKey;autoIncrement"`
	Code              string            `gorm:"column:code;not null;uniqueIndex"`
	Name              string            `gorm:"column:name;not null"`
	PriceCents        int64             `gorm:"column:price_cents;not null"`
	Currency          enums.Currency    `gorm:"column:currency;not null"`
	MaxQuality        enums.QualityName `gorm:"column:max_quality;not null"`
	ConcurrentStreams int               `gorm:"column:concurrent_streams;not null"`
	TrialDays         int               `gorm:"column:trial_days;not null"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (SubscriptionPlan) TableName() string { return "subscription_plans" }
