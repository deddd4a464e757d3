package subscriptions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/streamflix-backend/pkg/db"
	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
	"github.com/angelmondragon/streamflix-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
	"github.com/angelmondragon/streamflix-backend/pkg/logger"
	"github.com/angelmondragon/streamflix-backend/pkg/metrics"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	billingPeriodDays           = 30
	invitationLifetimeDays      = 30
	defaultDiscountPercent      = 25
	defaultDiscountDurationDays = 30
)

const (
	msgInvitationUsed     = "Invitation already used or canceled"
	msgInvitationExpired  = "Invitation expired"
	msgInvitationMismatch = "Invitation email mismatch"
	msgInvitationNotFound = "Invitation not found"
	msgReferralUsed       = "Referral discount already used by this account"
	msgActiveInvitation   = "An active invitation already exists for this email."
	msgOpenSubscription   = "User already has an open subscription"
)

type subscriptionRepository interface {
	ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error)
	FindPlanByCode(ctx context.Context, code string) (*models.SubscriptionPlan, error)
	FindByID(ctx context.Context, id uint) (*models.Subscription, error)
	FindLatestOpen(ctx context.Context, userID uint) (*models.Subscription, error)
	FindLatestActive(ctx context.Context, userID uint) (*models.Subscription, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	Save(ctx context.Context, sub *models.Subscription) error
	SaveWithTx(tx *gorm.DB, sub *models.Subscription) error
	UpdateDiscountWithTx(tx *gorm.DB, id uint, percent int, endsAt time.Time) error
	FindInvitationByCode(ctx context.Context, code string) (*models.Invitation, error)
	FindPendingInvitation(ctx context.Context, inviterID uint, email string, now time.Time) (*models.Invitation, error)
	CreateInvitation(ctx context.Context, inv *models.Invitation) error
	MarkInvitationExpired(ctx context.Context, id uint) error
	RedeemInvitationWithTx(tx *gorm.DB, id, subscriptionID uint, at time.Time) (bool, error)
}

type userRepository interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	MarkReferralDiscountUsedWithTx(tx *gorm.DB, id uint) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the subscription lifecycle and referral surface.
type Service interface {
	ListPlans(ctx context.Context) ([]PlanDTO, error)
	CreateOrUpdate(ctx context.Context, input CreateSubscriptionInput) (*SubscriptionDTO, error)
	Get(ctx context.Context, id uint) (*SubscriptionDTO, error)
	Update(ctx context.Context, id uint, input UpdateSubscriptionInput) (*SubscriptionDTO, error)
	CreateInvitation(ctx context.Context, input CreateInvitationInput) (*InvitationDTO, error)
	RedeemInvitation(ctx context.Context, input RedeemInvitationInput) (*InvitationDTO, error)
}

// ServiceParams groups dependencies for the subscription service.
type ServiceParams struct {
	Repo              subscriptionRepository
	Users             userRepository
	TransactionRunner txRunner
	Logger            *logger.Logger
	Metrics           *metrics.SubscriptionMetrics
	PlanCacheTTL      time.Duration
	Clock             func() time.Time
	CodeGenerator     func() (string, error)
}

type service struct {
	repo     subscriptionRepository
	users    userRepository
	txRunner txRunner
	logg     *logger.Logger
	metrics  *metrics.SubscriptionMetrics
	plans    *planCache
	now      func() time.Time
	newCode  func() (string, error)
}

// NewService builds a subscription service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("subscription repo required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user repo required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	newCode := params.CodeGenerator
	if newCode == nil {
		newCode = generateInvitationCode
	}
	return &service{
		repo:     params.Repo,
		users:    params.Users,
		txRunner: params.TransactionRunner,
		logg:     params.Logger,
		metrics:  params.Metrics,
		plans:    newPlanCache(params.PlanCacheTTL),
		now:      func() time.Time { return clock().UTC() },
		newCode:  newCode,
	}, nil
}

func (s *service) ListPlans(ctx context.Context) ([]PlanDTO, error) {
	if cached, ok := s.plans.get(); ok {
		return PlansFromModels(cached), nil
	}
	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list plans")
	}
	s.plans.set(plans)
	return PlansFromModels(plans), nil
}

func (s *service) Get(ctx context.Context, id uint) (*SubscriptionDTO, error) {
	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return SubscriptionFromModel(sub), nil
}

// CreateOrUpdate subscribes the user to a plan, or moves their open
// subscription onto it, optionally redeeming an invitation on the way.
func (s *service) CreateOrUpdate(ctx context.Context, input CreateSubscriptionInput) (*SubscriptionDTO, error) {
	now := s.now()
	planCode := strings.TrimSpace(input.PlanCode)

	user, plan, err := s.resolveUserAndPlan(ctx, input.UserID, planCode)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindLatestOpen(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load open subscription")
	}
	count, err := s.repo.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count subscriptions")
	}

	var trialEndsAt *time.Time
	periodStart := now
	switch {
	case existing != nil:
		trialEndsAt = existing.TrialEndsAt
	case count == 0 && plan.TrialDays > 0:
		trialEnd := addDays(now, plan.TrialDays)
		trialEndsAt = &trialEnd
		periodStart = trialEnd
	}

	var invitation *models.Invitation
	if code := strings.TrimSpace(derefString(input.InvitationCode)); code != "" {
		invitation, err = s.ensureInvitation(ctx, code, user)
		if err != nil {
			return nil, err
		}
	}

	sub := &models.Subscription{UserID: user.ID}
	outcome := metrics.OutcomeCreated
	if existing != nil {
		sub = existing
		outcome = metrics.OutcomeUpdated
	}
	sub.PlanID = plan.ID
	sub.Status = enums.SubscriptionStatusActive
	sub.CurrentPeriodStart = periodStart
	sub.CurrentPeriodEnd = addDays(periodStart, billingPeriodDays)
	sub.TrialEndsAt = trialEndsAt
	sub.AutoRenew = true

	if invitation != nil {
		discountEnds := addDays(periodStart, invitation.DiscountDurationDays)
		inviterID := invitation.InviterID
		sub.DiscountPercent = invitation.DiscountPercent
		sub.DiscountEndsAt = &discountEnds
		sub.InvitedByUserID = &inviterID
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.SaveWithTx(tx, sub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save subscription")
		}
		if invitation == nil {
			return nil
		}
		redeemed, err := s.repo.RedeemInvitationWithTx(tx, invitation.ID, sub.ID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "redeem invitation")
		}
		if !redeemed {
			s.metrics.IncInvitationRejected("not_pending")
			return pkgerrors.New(pkgerrors.CodeValidation, msgInvitationUsed)
		}
		latched, err := s.users.MarkReferralDiscountUsedWithTx(tx, user.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark referral discount used")
		}
		if !latched {
			s.metrics.IncInvitationRejected("discount_used")
			return pkgerrors.New(pkgerrors.CodeValidation, msgReferralUsed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncUpserted(outcome)

	if invitation != nil {
		s.metrics.IncInvitationRedeemed()
		if err := s.applyInviterDiscount(ctx, invitation.InviterID, invitation); err != nil {
			s.metrics.IncInviterDiscount(metrics.OutcomeFailed)
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"inviter_id":    invitation.InviterID,
				"invitation_id": invitation.ID,
				"error_code":    pkgerrors.CodeOf(err),
			})
			s.logg.Error(logCtx, "inviter discount not applied", err)
		}
	}

	return s.Get(ctx, sub.ID)
}

func (s *service) resolveUserAndPlan(ctx context.Context, userID uint, planCode string) (*models.User, *models.SubscriptionPlan, error) {
	var (
		user *models.User
		plan *models.SubscriptionPlan
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := s.users.FindByID(gctx, userID)
		user = found
		return err
	})
	g.Go(func() error {
		found, err := s.repo.FindPlanByCode(gctx, planCode)
		plan = found
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve user and plan")
	}
	if user == nil {
		return nil, nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "User %d not found", userID)
	}
	if plan == nil {
		return nil, nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "Plan %s not found", planCode)
	}
	return user, plan, nil
}

// Update applies a partial change. Plan switches restart the period, and the
// explicit status, when present, wins over every other field.
func (s *service) Update(ctx context.Context, id uint, input UpdateSubscriptionInput) (*SubscriptionDTO, error) {
	var status *enums.SubscriptionStatus
	if input.Status != nil {
		parsed, err := enums.ParseSubscriptionStatus(strings.TrimSpace(*input.Status))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "status must be one of ACTIVE, CANCELED, PAST_DUE, EXPIRED")
		}
		status = &parsed
	}

	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()

	if input.PlanCode != nil {
		code := strings.TrimSpace(*input.PlanCode)
		plan, err := s.repo.FindPlanByCode(ctx, code)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plan")
		}
		if plan == nil {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "Plan %s not found", code)
		}
		sub.PlanID = plan.ID
		sub.Plan = nil
		sub.Status = enums.SubscriptionStatusActive
		sub.CurrentPeriodStart = now
		sub.CurrentPeriodEnd = addDays(now, billingPeriodDays)
		sub.AutoRenew = true
	}
	if input.AutoRenew != nil {
		sub.AutoRenew = *input.AutoRenew
	}
	if input.CancelAtPeriodEnd != nil && *input.CancelAtPeriodEnd {
		// Takes effect immediately; the period end is kept for reference only.
		sub.AutoRenew = false
		sub.Status = enums.SubscriptionStatusCanceled
	}
	if status != nil {
		sub.Status = *status
	}

	if err := s.repo.Save(ctx, sub); err != nil {
		// Reactivating a row while another open subscription exists trips the
		// one-open-subscription-per-user index.
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, msgOpenSubscription)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update subscription")
	}
	return s.Get(ctx, sub.ID)
}

func (s *service) load(ctx context.Context, id uint) (*models.Subscription, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription")
	}
	if sub == nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "Subscription %d not found", id)
	}
	return sub, nil
}

func addDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
