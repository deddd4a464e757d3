package subscriptions

import (
	"time"

	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
)

// CreateSubscriptionInput is the body of POST /subscriptions.
type CreateSubscriptionInput struct {
	UserID         uint    `json:"userId" validate:"required,min=1"`
	PlanCode       string  `json:"planCode" validate:"required"`
	InvitationCode *string `json:"invitationCode,omitempty" validate:"omitempty,max=64"`
}

// UpdateSubscriptionInput carries the optional PATCH fields; nil means untouched.
type UpdateSubscriptionInput struct {
	PlanCode          *string `json:"planCode,omitempty" validate:"omitempty,min=1"`
	AutoRenew         *bool   `json:"autoRenew,omitempty"`
	Status            *string `json:"status,omitempty"`
	CancelAtPeriodEnd *bool   `json:"cancelAtPeriodEnd,omitempty"`
}

// CreateInvitationInput is the body of POST /subscriptions/invitations.
type CreateInvitationInput struct {
	InviterUserID        uint   `json:"inviterUserId" validate:"required,min=1"`
	InviteeEmail         string `json:"inviteeEmail" validate:"required,email"`
	DiscountPercent      *int   `json:"discountPercent,omitempty" validate:"omitempty,min=0,max=100"`
	DiscountDurationDays *int   `json:"discountDurationDays,omitempty" validate:"omitempty,min=1"`
}

// RedeemInvitationInput is the body of POST /subscriptions/invitations/redeem.
type RedeemInvitationInput struct {
	Code   string `json:"code" validate:"required,notblank"`
	UserID uint   `json:"userId" validate:"required,min=1"`
}

type PlanDTO struct {
	ID                uint   `json:"id"`
	Code              string `json:"code"`
	Name              string `json:"name"`
	PriceCents        int64  `json:"priceCents"`
	Price             string `json:"price"`
	Currency          string `json:"currency"`
	MaxQuality        string `json:"maxQuality"`
	ConcurrentStreams int    `json:"concurrentStreams"`
	TrialDays         int    `json:"trialDays"`
}

type InvitationDTO struct {
	ID                   uint       `json:"id"`
	Code                 string     `json:"code"`
	InviterID            uint       `json:"inviterId"`
	InviteeEmail         string     `json:"inviteeEmail"`
	Status               string     `json:"status"`
	DiscountPercent      int        `json:"discountPercent"`
	DiscountDurationDays int        `json:"discountDurationDays"`
	ExpiresAt            time.Time  `json:"expiresAt"`
	RedeemedAt           *time.Time `json:"redeemedAt,omitempty"`
	SubscriptionID       *uint      `json:"subscriptionId,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
}

type SubscriptionDTO struct {
	ID                 uint           `json:"id"`
	UserID             uint           `json:"userId"`
	PlanID             uint           `json:"planId"`
	Status             string         `json:"status"`
	CurrentPeriodStart time.Time      `json:"currentPeriodStart"`
	CurrentPeriodEnd   time.Time      `json:"currentPeriodEnd"`
	TrialEndsAt        *time.Time     `json:"trialEndsAt,omitempty"`
	AutoRenew          bool           `json:"autoRenew"`
	DiscountPercent    int            `json:"discountPercent"`
	DiscountEndsAt     *time.Time     `json:"discountEndsAt,omitempty"`
	InvitedByUserID    *uint          `json:"invitedByUserId,omitempty"`
	Plan               *PlanDTO       `json:"plan,omitempty"`
	Invitation         *InvitationDTO `json:"invitation,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

func PlanFromModel(p *models.SubscriptionPlan) *PlanDTO {
	if p == nil {
		return nil
	}
	return &PlanDTO{
		ID:                p.ID,
		Code:              p.Code,
		Name:              p.Name,
		PriceCents:        p.PriceCents,
		Price:             p.Currency.FormatMinor(p.PriceCents),
		Currency:          p.Currency.String(),
		MaxQuality:        p.MaxQuality.String(),
		ConcurrentStreams: p.ConcurrentStreams,
		TrialDays:         p.TrialDays,
	}
}

func PlansFromModels(plans []models.SubscriptionPlan) []PlanDTO {
	out := make([]PlanDTO, 0, len(plans))
	for i := range plans {
		out = append(out, *PlanFromModel(&plans[i]))
	}
	return out
}

func InvitationFromModel(inv *models.Invitation) *InvitationDTO {
	if inv == nil {
		return nil
	}
	return &InvitationDTO{
		ID:                   inv.ID,
		Code:                 inv.Code,
		InviterID:            inv.InviterID,
		InviteeEmail:         inv.InviteeEmail,
		Status:               inv.Status.String(),
		DiscountPercent:      inv.DiscountPercent,
		DiscountDurationDays: inv.DiscountDurationDays,
		ExpiresAt:            inv.ExpiresAt,
		RedeemedAt:           inv.RedeemedAt,
		SubscriptionID:       inv.SubscriptionID,
		CreatedAt:            inv.CreatedAt,
	}
}

func SubscriptionFromModel(sub *models.Subscription) *SubscriptionDTO {
	if sub == nil {
		return nil
	}
	return &SubscriptionDTO{
		ID:                 sub.ID,
		UserID:             sub.UserID,
		PlanID:             sub.PlanID,
		Status:             sub.Status.String(),
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		TrialEndsAt:        sub.TrialEndsAt,
		AutoRenew:          sub.AutoRenew,
		DiscountPercent:    sub.DiscountPercent,
		DiscountEndsAt:     sub.DiscountEndsAt,
		InvitedByUserID:    sub.InvitedByUserID,
		Plan:               PlanFromModel(sub.Plan),
		Invitation:         InvitationFromModel(sub.Invitation),
		CreatedAt:          sub.CreatedAt,
		UpdatedAt:          sub.UpdatedAt,
	}
}
